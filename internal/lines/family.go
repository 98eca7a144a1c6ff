package lines

import "strings"

// Coarse work families used only for labor-grouping decisions. Order matters:
// the first family whose keyword list matches wins, so the more specific
// families come before the generic engine bucket.

type familyDef struct {
	name     string
	keywords []string
}

var families = []familyDef{
	{"freinage", []string{"frein", "plaquette", "disque", "etrier", "purge"}},
	{"vidange", []string{"vidange", "huile", "filtre"}},
	{"distribution", []string{"distribution", "courroie", "galet", "pompe a eau"}},
	{"climatisation", []string{"climatisation", "clim", "recharge", "condenseur", "habitacle"}},
	{"pneumatiques", []string{"pneu", "roue", "equilibrage", "geometrie", "valve", "parallelisme"}},
	{"batterie", []string{"batterie", "alternateur", "demarreur"}},
	{"eclairage", []string{"ampoule", "phare", "feu", "eclairage", "optique"}},
	{"suspension", []string{"amortisseur", "suspension", "triangle", "rotule", "silent bloc", "biellette"}},
	{"moteur", []string{"moteur", "bougie", "injecteur", "admission", "allumage", "echappement"}},
}

// Family maps a description to its work family, or "" when none matches.
func Family(desc string) string {
	n := normalizeText(desc)
	for _, f := range families {
		for _, kw := range f.keywords {
			if strings.Contains(n, kw) {
				return f.name
			}
		}
	}
	return ""
}
