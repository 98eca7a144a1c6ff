package lines

import "strings"

// ReconcileOil collapses duplicate engine-oil part lines to a single
// viscosity. The first oil line carrying a viscosity code sets the
// reference: later lines with the same code are merged into it
// (quantity sum, weighted price). Conflicting viscosities are dropped only
// when they carry no price — a priced line is never silently discarded, so
// the pipeline's total stays intact by construction.
func ReconcileOil(ls []Line) []Line {
	refIdx := -1
	refVisc := ""
	distinct := map[string]struct{}{}
	for i, l := range ls {
		if !isEngineOil(l) {
			continue
		}
		v := viscosityOf(l.Description)
		if v == "" {
			continue
		}
		distinct[v] = struct{}{}
		if refIdx < 0 {
			refIdx = i
			refVisc = v
		}
	}
	if refIdx < 0 || len(distinct) <= 1 {
		return ls
	}

	merged := ls[refIdx]
	qty := merged.Quantity
	value := merged.Amount()
	out := make([]Line, 0, len(ls))
	mergedAt := -1
	for i, l := range ls {
		if i == refIdx {
			mergedAt = len(out)
			out = append(out, merged)
			continue
		}
		if !isEngineOil(l) {
			out = append(out, l)
			continue
		}
		v := viscosityOf(l.Description)
		switch {
		case v == refVisc:
			qty += l.Quantity
			value += l.Amount()
		case v != "" && l.UnitPriceHT == 0:
			// conflicting free line: drop
		default:
			out = append(out, l)
		}
	}
	merged.Quantity = qty
	if qty > 0 {
		merged.UnitPriceHT = value / qty
	}
	out[mergedAt] = merged
	return out
}

func isEngineOil(l Line) bool {
	if l.Type != TypePiece {
		return false
	}
	n := normalizeText(l.Description)
	return strings.Contains(n, "huile") && strings.Contains(n, "moteur")
}
