package urlutil

import (
	"net"
	"net/url"
	"sort"

	"golang.org/x/net/publicsuffix"
)

// IsIP reports whether the host part of rawURL is an IP literal.
// A URL that cannot be parsed is never an IP.
func IsIP(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return net.ParseIP(u.Hostname()) != nil
}

// ExtractDomain returns the registrable domain (eTLD+1) of rawURL.
//
// For IP literals the URL's host including any port is returned, so
// "http://10.0.0.1:8080/x" yields "10.0.0.1:8080". An empty string is
// returned when the URL has no host or no registrable domain (for example
// "http://localhost/").
func ExtractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	if host == "" {
		return ""
	}
	if net.ParseIP(host) != nil {
		return u.Host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return domain
}

// DiceCoefficient returns the Sørensen–Dice coefficient of the character
// bigram multisets of a and b.
//
// Empty inputs score 0, identical inputs score 1, and when either input is a
// single character the result is 0 because no bigram can be shared.
func DiceCoefficient(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	if a == b {
		return 1.0
	}
	if len(a) == 1 || len(b) == 1 {
		return 0.0
	}

	aBigrams := bigrams(a)
	bBigrams := bigrams(b)

	matches := 0
	i, j := 0, 0
	for i < len(aBigrams) && j < len(bBigrams) {
		switch {
		case aBigrams[i] == bBigrams[j]:
			matches += 2
			i++
			j++
		case aBigrams[i] < bBigrams[j]:
			i++
		default:
			j++
		}
	}

	return float64(matches) / float64(len(aBigrams)+len(bBigrams))
}

// bigrams returns the sorted byte bigrams of s.
func bigrams(s string) []string {
	out := make([]string, 0, len(s)-1)
	for i := 0; i < len(s)-1; i++ {
		out = append(out, s[i:i+2])
	}
	sort.Strings(out)
	return out
}
