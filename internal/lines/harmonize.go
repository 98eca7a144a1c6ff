package lines

import (
	"regexp"
	"strings"
)

// HarmonizeWording rewrites labor descriptions so they reuse the exact noun
// phrases of the part lines they relate to: when the quote bills
// "Plaquettes de frein avant" as a part, the labor line should not say
// "plaquettes AV" or just "freinage".

var (
	brakeLaborRe = regexp.MustCompile(`(?i)^freinage\s*[—–-]\s*remplacement$`)
	padWordRe    = regexp.MustCompile(`(?i)plaquettes?(\s+(av|avant|arr|arri[eè]re))?`)
	discWordRe   = regexp.MustCompile(`(?i)disques?(\s+(av|avant|arr|arri[eè]re))?`)
)

type partTerms struct {
	pads   string // "plaquettes de frein avant"
	discs  string // "disques de frein"
	oil    string // "huile 5W30"
	filter string // "filtre à huile"
	tires  string // "pneus avant"
}

func collectPartTerms(ls []Line) partTerms {
	var t partTerms
	for _, l := range ls {
		if l.Type != TypePiece || l.IsOption {
			continue
		}
		n := normalizeText(l.Description)
		switch {
		case strings.Contains(n, "plaquett") && t.pads == "":
			t.pads = "plaquettes de frein " + brakePosition(n)
		case strings.Contains(n, "disque") && t.discs == "":
			t.discs = "disques de frein"
		case strings.Contains(n, "filtre") && strings.Contains(n, "huile") && t.filter == "":
			t.filter = "filtre à huile"
		case strings.Contains(n, "huile") && t.oil == "":
			if v := viscosityOf(l.Description); v != "" {
				t.oil = "huile " + v
			}
		case strings.Contains(n, "pneu") && t.tires == "":
			t.tires = "pneus " + brakePosition(n)
		}
	}
	return t
}

func HarmonizeWording(ls []Line) []Line {
	terms := collectPartTerms(ls)
	out := clone(ls)
	for i, l := range out {
		if l.Type != TypeMainOeuvre || l.IsOption {
			continue
		}
		out[i].Description = harmonizeLabor(l.Description, terms)
	}
	return out
}

func harmonizeLabor(desc string, t partTerms) string {
	n := normalizeText(desc)
	if brakeLaborRe.MatchString(strings.TrimSpace(desc)) && t.pads != "" {
		return "Remplacement des " + t.pads
	}
	if strings.Contains(n, "plaquett") && !strings.Contains(n, "frein") && t.pads != "" {
		return padWordRe.ReplaceAllString(desc, t.pads)
	}
	if strings.Contains(n, "disque") && !strings.Contains(n, "frein") && t.discs != "" {
		return discWordRe.ReplaceAllString(desc, t.discs)
	}
	if strings.Contains(n, "vidange") && t.oil != "" && !strings.Contains(n, normalizeText(t.oil)) {
		return desc + " (" + t.oil + ")"
	}
	return desc
}
