package utils

import (
	"net/url"
	"strings"
)

// NormalizeDomain reduces raw input ("https://WWW.Example.com/path/") to a
// bare lowercase hostname ("example.com").
func NormalizeDomain(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return ""
	}
	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil && u.Host != "" {
			s = u.Host
		}
	}
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSuffix(s, ".")
}

// CompanyNameFromDomain derives a search-friendly company name from a
// hostname: the first label, with dashes and underscores as spaces, in title
// case ("acme-labs.io" -> "Acme Labs").
func CompanyNameFromDomain(domain string) string {
	d := NormalizeDomain(domain)
	if d == "" {
		return ""
	}
	label, _, _ := strings.Cut(d, ".")
	label = strings.NewReplacer("-", " ", "_", " ").Replace(label)
	words := strings.Fields(label)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ToAbsoluteURL converts a relative URL to an absolute URL given a base URL.
func ToAbsoluteURL(base *url.URL, relative string) (string, error) {
	relURL, err := url.Parse(relative)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(relURL).String(), nil
}
