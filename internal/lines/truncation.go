package lines

import (
	"regexp"
	"strings"
	"unicode"
)

// Truncation detection is intentionally over-eager: a false positive only
// routes the description through reformulation, which degrades to a generic
// per-type label instead of corrupting text.

var (
	badEndings = []string{"...", "…", "(", "—", "+", "-", "/", ","}

	// Tokens that look like a unit or reference ("5W30", "4L", "12V", "2").
	unitTokenRe = regexp.MustCompile(`^\d+(?:[a-zA-Z]\d*)?$`)
	unitWords   = map[string]struct{}{"km": {}, "kg": {}, "mm": {}, "cv": {}, "ch": {}, "l": {}, "h": {}}

	// Stems the upstream generator is known to cut mid-word.
	incompleteStems = []string{
		"remplac", "plaquett", "consommabl", "vidang", "filtr",
		"distribut", "amortiss", "nettoy", "etrier", "échappem",
	}
)

// IsTruncated reports whether a description looks incomplete.
// Rules are evaluated in order, first match wins.
func IsTruncated(desc string) bool {
	s := strings.TrimSpace(desc)
	if s == "" {
		return true
	}
	for _, end := range badEndings {
		if strings.HasSuffix(s, end) {
			return true
		}
	}
	if strings.Count(s, "(") > strings.Count(s, ")") {
		return true
	}
	runes := []rune(s)
	if len(runes) < 15 && !containsDigit(s) && !strings.Contains(s, "-") && !unicode.IsUpper(runes[0]) {
		return true
	}
	words := strings.Fields(s)
	last := words[len(words)-1]
	lastRunes := []rune(last)
	if len(lastRunes) == 1 && unicode.IsUpper(lastRunes[0]) {
		return !isAcronymContext(words)
	}
	if len(lastRunes) <= 2 && !unitToken(last) && len(runes) < 30 {
		return true
	}
	lw := strings.ToLower(strings.Trim(last, ".,;:"))
	for _, stem := range incompleteStems {
		if len(lw) >= 4 && lw != stem && strings.HasPrefix(stem, lw) {
			return true
		}
		if lw == stem {
			return true
		}
	}
	return false
}

func unitToken(w string) bool {
	if unitTokenRe.MatchString(w) {
		return true
	}
	_, ok := unitWords[strings.ToLower(w)]
	return ok
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// isAcronymContext allows trailing single capitals that belong to a model
// or class designation ("classe A", "type R") rather than a cut-off word.
func isAcronymContext(words []string) bool {
	if len(words) < 2 {
		return false
	}
	prev := strings.ToLower(words[len(words)-2])
	return prev == "classe" || prev == "type" || prev == "norme"
}
