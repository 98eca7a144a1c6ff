package lines

import "math"

const (
	similarityThreshold = 0.75
	priceEpsilon        = 0.01
	priceRelTolerance   = 0.05
)

// samePartSignatures are hard-coded detectors for "physically the same part"
// regardless of wording. Every fragment of a signature must appear in both
// normalized descriptions for the pair to match.
var samePartSignatures = [][]string{
	{"plaquette", "frein"},
	{"disque", "frein"},
	{"huile moteur"},
	{"filtre", "huile"},
	{"batterie"},
	{"pneu"},
}

// Deduplicate merges near-identical non-option lines of the same type and
// unit: quantities are summed, the longest description wins and the unit
// price is recomputed so the merged line carries the exact combined value.
// Greedy single pass: the first line of a group absorbs all later matches.
func Deduplicate(ls []Line) []Line {
	consumed := make([]bool, len(ls))
	out := make([]Line, 0, len(ls))
	for i := range ls {
		if consumed[i] {
			continue
		}
		group := []Line{ls[i]}
		if !ls[i].IsOption {
			for j := i + 1; j < len(ls); j++ {
				if consumed[j] || ls[j].IsOption {
					continue
				}
				if !mergeable(ls[i], ls[j]) {
					continue
				}
				consumed[j] = true
				group = append(group, ls[j])
			}
		}
		out = append(out, mergeGroup(group))
	}
	return out
}

func mergeable(a, b Line) bool {
	if a.Type != b.Type || a.Unit != b.Unit {
		return false
	}
	if !priceClose(a.UnitPriceHT, b.UnitPriceHT) {
		return false
	}
	if jaccard(a.Description, b.Description) > similarityThreshold {
		return true
	}
	return samePart(a.Description, b.Description)
}

func priceClose(a, b float64) bool {
	diff := math.Abs(a - b)
	if diff < priceEpsilon {
		return true
	}
	return diff < priceRelTolerance*math.Max(a, b)
}

func samePart(a, b string) bool {
	for _, sig := range samePartSignatures {
		if containsAll(a, sig...) && containsAll(b, sig...) {
			return true
		}
	}
	return false
}

func mergeGroup(group []Line) Line {
	if len(group) == 1 {
		return group[0]
	}
	merged := group[0]
	var qty, value float64
	allIncluded := true
	for _, l := range group {
		qty += l.Quantity
		value += l.Amount()
		if len(l.Description) > len(merged.Description) {
			merged.Description = l.Description
		}
		if !l.IsIncluded {
			allIncluded = false
		}
	}
	merged.Quantity = qty
	if qty > 0 {
		merged.UnitPriceHT = value / qty
	}
	merged.IsIncluded = allIncluded
	return merged
}
