package lines

import (
	"regexp"
	"strings"
)

const maxLabelLength = 50

// marketingQualifierRe matches parenthetical qualifiers the generator likes
// to tack on ("(contrôle offert)", "(essai routier inclus)").
var marketingQualifierRe = regexp.MustCompile(`(?i)\s*\([^)]*(contr[oô]le|inclus|essai|v[eé]rification)[^)]*\)`)

// vagueReplacements maps generic labels to business-approved phrasing.
// Matching is exact on the trimmed description, case-insensitive.
var vagueReplacements = map[string]string{
	"service moteur":     "Contrôle et entretien moteur",
	"entretien vehicule": "Entretien périodique du véhicule",
	"entretien véhicule": "Entretien périodique du véhicule",
	"revision":           "Révision périodique constructeur",
	"révision":           "Révision périodique constructeur",
	"main d'oeuvre":      "Main d'œuvre atelier",
	"main d'œuvre":       "Main d'œuvre atelier",
	"forfait":            "Forfait atelier",
	"diagnostic":         "Diagnostic électronique",
	"intervention":       "Intervention mécanique",
}

// ImproveVague strips marketing qualifiers, replaces known vague phrases and
// caps non-option labels at a readable length.
func ImproveVague(ls []Line) []Line {
	out := clone(ls)
	for i, l := range out {
		d := strings.TrimSpace(marketingQualifierRe.ReplaceAllString(l.Description, ""))
		if repl, ok := vagueReplacements[strings.ToLower(d)]; ok {
			d = repl
		}
		if !l.IsOption {
			d = capLabel(d, maxLabelLength)
		}
		out[i].Description = d
	}
	return out
}

// capLabel truncates at a word boundary without adding an ellipsis (an
// ellipsis would read as a truncated description downstream).
func capLabel(s string, maxRunes int) string {
	if len([]rune(s)) <= maxRunes {
		return s
	}
	words := strings.Fields(s)
	out := ""
	for _, w := range words {
		candidate := out
		if candidate != "" {
			candidate += " "
		}
		candidate += w
		if len([]rune(candidate)) > maxRunes {
			break
		}
		out = candidate
	}
	if out == "" {
		return string([]rune(s)[:maxRunes])
	}
	return strings.TrimRight(out, " ,;—-+/")
}

const optionSuffix = "(option recommandée)"

// vagueOptionLabels are option labels recognizable as generic; a trailing
// stray single letter ("Option recommandée — N…") marks a truncated one.
var (
	vagueOptionLabels = []string{
		"option atelier",
		"option securite",
		"option recommandee",
		"option",
	}
	truncatedOptionRe = regexp.MustCompile(`^option recommandee [a-z]$`)
)

// ImproveOptions rewrites vague or truncated option labels into explicit
// phrasing inferred from the domain of the sibling non-option lines, and
// appends the recommendation suffix to short option labels.
func ImproveOptions(ls []Line) []Line {
	domain := siblingDomain(ls)
	out := clone(ls)
	for i, l := range out {
		if !l.IsOption {
			continue
		}
		d := strings.TrimSpace(l.Description)
		if isVagueOption(d) || IsTruncated(d) {
			d = optionPhraseFor(domain)
		}
		if len([]rune(d)) < 15 && !strings.Contains(strings.ToLower(d), "option recommand") {
			d += " " + optionSuffix
		}
		out[i].Description = d
	}
	return out
}

func siblingDomain(ls []Line) string {
	for _, l := range ls {
		if l.IsOption {
			continue
		}
		switch Family(l.Description) {
		case "freinage":
			return "freinage"
		case "vidange":
			return "vidange"
		}
	}
	return ""
}

func isVagueOption(d string) bool {
	n := normalizeText(d)
	for _, label := range vagueOptionLabels {
		if n == label {
			return true
		}
	}
	return truncatedOptionRe.MatchString(n)
}

func optionPhraseFor(domain string) string {
	switch domain {
	case "freinage":
		return "Remplacement des disques de frein " + optionSuffix
	case "vidange":
		return "Forfait révision complète " + optionSuffix
	}
	return "Option d'entretien complémentaire " + optionSuffix
}
