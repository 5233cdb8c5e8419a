package fetch

import "regexp"

// Rule pairs a URL pattern with the normalizer applied when it matches.
type Rule struct {
	Pattern    *regexp.Regexp
	Normalizer Normalizer
}

// DefaultRules returns the ordered dispatch table. Rules are evaluated
// top to bottom, first match wins. The final pattern matches everything,
// so dispatch always selects a normalizer.
func DefaultRules() []Rule {
	return []Rule{
		{regexp.MustCompile(`^http://nbviewer\.ipython\.org/.*`), NormalizeNBViewer},
		{regexp.MustCompile(`^https?://(gist\.)?github\.com/.*`), NormalizeGitHub},
		{regexp.MustCompile(`.*`), NormalizeIdentity},
	}
}

// Resolve applies the first matching rule's normalizer to rawURL.
func Resolve(rules []Rule, rawURL string) (string, error) {
	for _, rule := range rules {
		if rule.Pattern.MatchString(rawURL) {
			return rule.Normalizer(rawURL)
		}
	}
	// Reachable only with a rule table that lacks a catch-all.
	return rawURL, nil
}
