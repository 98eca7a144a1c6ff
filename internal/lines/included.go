package lines

import "strings"

const includedFallbackTail = "et autres contrôles"

// CollapseIncluded folds zero-price included lines into the main labor line
// when one qualifies, or into a single synthetic "Contrôles & sécurité" line
// otherwise. The validation schema requires a positive quantity even on free
// lines, hence the coercion to 1.
func CollapseIncluded(ls []Line) []Line {
	var included []Line
	rest := make([]Line, 0, len(ls))
	for _, l := range ls {
		if !l.IsOption && l.IsIncluded && l.UnitPriceHT == 0 {
			included = append(included, l)
			continue
		}
		rest = append(rest, l)
	}
	if len(included) == 0 {
		return ls
	}

	mainIdx := qualifyingLaborIndex(rest)

	if len(included) == 1 {
		inc := included[0]
		if mainIdx >= 0 {
			rest[mainIdx].Description += " — " + lowerFirst(strings.TrimSpace(inc.Description)) + " inclus"
			return rest
		}
		if inc.Quantity < 1 {
			inc.Quantity = 1
		}
		return append(rest, inc)
	}

	descs := dedupDescriptions(included)
	joined := strings.Join(truncateList(descs, 3), " — ")
	if len(descs) > 3 {
		joined += " — " + includedFallbackTail
	}
	if mainIdx >= 0 {
		rest[mainIdx].Description += " — " + lowerFirst(joined) + " inclus"
		return rest
	}
	synthetic := Line{
		Type:        TypeMainOeuvre,
		Description: "Contrôles & sécurité (Inclus) — " + joined,
		Quantity:    1,
		Unit:        UnitHeure,
		UnitPriceHT: 0,
		IsIncluded:  true,
	}
	return append(rest, synthetic)
}

// qualifyingLaborIndex finds a labor line big enough to absorb included
// mentions without already carrying one.
func qualifyingLaborIndex(ls []Line) int {
	for i, l := range ls {
		if l.IsOption || l.IsIncluded || l.Type != TypeMainOeuvre {
			continue
		}
		if l.Quantity >= 0.5 && !strings.Contains(strings.ToLower(l.Description), "inclus") {
			return i
		}
	}
	return -1
}

func dedupDescriptions(ls []Line) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		d := strings.TrimSpace(l.Description)
		key := normalizeText(d)
		if d == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return out
}

func truncateList(ss []string, n int) []string {
	if len(ss) <= n {
		return ss
	}
	return ss[:n]
}
