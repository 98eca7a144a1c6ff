package lines

import "sort"

const (
	maxDisplayedParts = 3
	maxDisplayedLabor = 2
	simpleQuoteMaxLen = 15
)

// simpleInterventionFamilies are the single-system jobs for which the quote
// display is capped; complex multi-system quotes are left alone.
var simpleInterventionFamilies = map[string]struct{}{
	"freinage":     {},
	"vidange":      {},
	"pneumatiques": {},
	"batterie":     {},
}

// LimitSections caps displayed parts (3) and labor (2) lines on simple
// single-system quotes, folding the overflow into aggregate lines with
// value-preserving weighted prices. Options, flat fees and included lines
// pass through unlimited.
func LimitSections(ls []Line) []Line {
	if !looksSimple(ls) {
		return ls
	}
	ls = limitParts(ls)
	return limitLabor(ls)
}

func looksSimple(ls []Line) bool {
	if len(ls) > simpleQuoteMaxLen {
		return false
	}
	for _, l := range ls {
		if _, ok := simpleInterventionFamilies[Family(l.Description)]; ok {
			return true
		}
	}
	return false
}

func limitParts(ls []Line) []Line {
	var partIdx []int
	for i, l := range ls {
		if l.Type == TypePiece && !l.IsOption && !l.IsIncluded {
			partIdx = append(partIdx, i)
		}
	}
	if len(partIdx) <= maxDisplayedParts {
		return ls
	}
	// Keep the highest-value parts, fold the rest into one aggregate line.
	sorted := append([]int(nil), partIdx...)
	sort.SliceStable(sorted, func(a, b int) bool {
		return ls[sorted[a]].Amount() > ls[sorted[b]].Amount()
	})
	kept := map[int]struct{}{}
	for _, i := range sorted[:maxDisplayedParts] {
		kept[i] = struct{}{}
	}

	var foldQty, foldValue float64
	lastKeptPart := -1
	out := make([]Line, 0, len(ls))
	for i, l := range ls {
		if l.Type == TypePiece && !l.IsOption && !l.IsIncluded {
			if _, ok := kept[i]; !ok {
				foldQty += l.Quantity
				foldValue += l.Amount()
				continue
			}
			lastKeptPart = len(out)
		}
		out = append(out, l)
	}
	if foldQty <= 0 {
		return ls
	}
	agg := Line{
		Type:        TypePiece,
		Description: "Autres pièces et consommables",
		Quantity:    foldQty,
		Unit:        UnitUnite,
		UnitPriceHT: foldValue / foldQty,
	}
	result := make([]Line, 0, len(out)+1)
	result = append(result, out[:lastKeptPart+1]...)
	result = append(result, agg)
	result = append(result, out[lastKeptPart+1:]...)
	return result
}

func limitLabor(ls []Line) []Line {
	var laborIdx []int
	for i, l := range ls {
		if l.Type == TypeMainOeuvre && !l.IsOption && !l.IsIncluded {
			laborIdx = append(laborIdx, i)
		}
	}
	if len(laborIdx) <= maxDisplayedLabor {
		return ls
	}
	sorted := append([]int(nil), laborIdx...)
	sort.SliceStable(sorted, func(a, b int) bool {
		return ls[sorted[a]].Quantity > ls[sorted[b]].Quantity
	})
	kept := map[int]struct{}{}
	for _, i := range sorted[:maxDisplayedLabor] {
		kept[i] = struct{}{}
	}

	// Overflow is folded into the first kept labor line.
	var foldQty, foldValue float64
	out := make([]Line, 0, len(ls))
	firstKept := -1
	for i, l := range ls {
		if l.Type == TypeMainOeuvre && !l.IsOption && !l.IsIncluded {
			if _, ok := kept[i]; !ok {
				foldQty += l.Quantity
				foldValue += l.Amount()
				continue
			}
			if firstKept < 0 {
				firstKept = len(out)
			}
		}
		out = append(out, l)
	}
	if foldQty > 0 && firstKept >= 0 {
		target := out[firstKept]
		value := target.Amount() + foldValue
		target.Quantity += foldQty
		if target.Quantity > 0 {
			target.UnitPriceHT = value / target.Quantity
		}
		target.Description += " + autres opérations"
		out[firstKept] = target
	}
	return out
}
