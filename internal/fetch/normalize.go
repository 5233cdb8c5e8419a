package fetch

import (
	"net/url"
	"strings"
)

// Normalizer rewrites a provider-specific URL into the canonical
// raw-content URL to retrieve. Normalizers are pure and perform no I/O.
type Normalizer func(rawURL string) (string, error)

// NormalizeNBViewer handles nbviewer URLs wrapping notebooks on GitHub,
// in Gists, and on the raw web. The second path segment names the kind
// of reference being wrapped.
func NormalizeNBViewer(rawURL string) (string, error) {
	segs, _, err := pathSegments(rawURL)
	if err != nil {
		return "", err
	}
	if len(segs) < 2 {
		return "", invalidURL("unknown nbviewer URL type in %s", rawURL)
	}

	kind := segs[1]
	switch kind {
	case "gist":
		if len(segs) < 3 {
			return "", invalidURL("nbviewer gist URL %s is missing its gist reference", rawURL)
		}
		return "https://gist.githubusercontent.com/" + strings.Join(segs[2:], "/") + "/raw", nil
	case "github":
		// segs[2:4] is user/repo, segs[4] is the blob marker, segs[5:]
		// is branch plus file path.
		if len(segs) < 4 {
			return "", invalidURL("nbviewer github URL %s is missing its repository reference", rawURL)
		}
		var rest string
		if len(segs) > 5 {
			rest = strings.Join(segs[5:], "/")
		}
		return "https://raw.githubusercontent.com/" + strings.Join(segs[2:4], "/") + "/" + rest, nil
	case "url":
		if len(segs) < 3 {
			return "", invalidURL("nbviewer url reference %s is missing its target", rawURL)
		}
		return "http://" + strings.Join(segs[2:], "/"), nil
	default:
		return "", invalidURL("unknown nbviewer URL type %s", kind)
	}
}

// NormalizeGitHub handles URLs pointing directly at files on github.com
// or at gists on gist.github.com.
func NormalizeGitHub(rawURL string) (string, error) {
	segs, host, err := pathSegments(rawURL)
	if err != nil {
		return "", err
	}
	if len(segs) <= 2 {
		return "", invalidURL("unknown github URL type %s", rawURL)
	}

	switch host {
	case "gist.github.com":
		return "https://gist.githubusercontent.com/" + strings.Join(segs[1:3], "/") + "/raw", nil
	case "github.com":
		// segs[1:3] is user/repo, segs[3] is the blob marker, segs[4:]
		// is branch plus file path.
		var rest string
		if len(segs) > 4 {
			rest = strings.Join(segs[4:], "/")
		}
		return "https://raw.githubusercontent.com/" + strings.Join(segs[1:3], "/") + "/" + rest, nil
	default:
		return "", invalidURL("unknown github URL type %s", rawURL)
	}
}

// NormalizeIdentity passes the URL through unchanged.
func NormalizeIdentity(rawURL string) (string, error) {
	return rawURL, nil
}

// pathSegments splits the URL path on "/". The leading slash yields an
// empty first segment, matching how the provider rules index segments.
func pathSegments(rawURL string) ([]string, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", invalidURL("malformed URL %s", rawURL)
	}
	return strings.Split(u.Path, "/"), u.Host, nil
}
