package lines

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	nonWordRe    = regexp.MustCompile(`[^a-z0-9 ]+`)
	viscosityRe  = regexp.MustCompile(`(?i)\b\d[wW]\d+\b`)
	volumeRe     = regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)?)\s*(?:l|litres?)\b`)
)

// normalizeText lowercases, strips accents and punctuation. Used for
// similarity and keyword matching so "Plaquettes de frein" and
// "plaquettes frein" compare on the same footing.
func normalizeText(s string) string {
	out, _, err := transform.String(stripAccents, strings.ToLower(s))
	if err != nil {
		out = strings.ToLower(s)
	}
	out = nonWordRe.ReplaceAllString(out, " ")
	return strings.Join(strings.Fields(out), " ")
}

// NormalizeKey is the normalized form used as lookup key for the price
// memory. Same rules as internal similarity matching.
func NormalizeKey(s string) string {
	return normalizeText(s)
}

func wordSet(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range strings.Fields(normalizeText(s)) {
		set[w] = struct{}{}
	}
	return set
}

// jaccard computes word-set similarity between two descriptions.
func jaccard(a, b string) float64 {
	sa, sb := wordSet(a), wordSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	inter := 0
	for w := range sa {
		if _, ok := sb[w]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	return float64(inter) / float64(union)
}

// containsAll reports whether the normalized description contains every
// given fragment (fragments are given pre-normalized).
func containsAll(desc string, fragments ...string) bool {
	n := normalizeText(desc)
	for _, f := range fragments {
		if !strings.Contains(n, f) {
			return false
		}
	}
	return true
}

// viscosityOf extracts an engine-oil viscosity code ("5W30") if present.
func viscosityOf(desc string) string {
	return strings.ToUpper(viscosityRe.FindString(desc))
}

// volumeOf extracts a liter volume ("4L") if present.
func volumeOf(desc string) string {
	m := volumeRe.FindStringSubmatch(desc)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[1], ",", ".") + "L"
}

// lowerFirst lowercases the first rune, used when splicing a description
// into the middle of another one.
func lowerFirst(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
