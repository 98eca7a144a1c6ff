package lines

import "strings"

// GroupLabor merges micro labor lines (<0.5h, or flagged included) into the
// dominant labor line of the same family. Billable quantity only grows by the
// paid micro lines; included micros enrich the description without touching
// the price. Output ordering: parts, grouped labor, options, flat fees.
func GroupLabor(ls []Line) []Line {
	var parts, labor, options, forfaits []Line
	for _, l := range ls {
		switch {
		case l.IsOption:
			options = append(options, l)
		case l.Type == TypeMainOeuvre:
			labor = append(labor, l)
		case l.Type == TypeForfait:
			forfaits = append(forfaits, l)
		default:
			parts = append(parts, l)
		}
	}

	var mains []Line
	var micros []Line
	for _, l := range labor {
		if !l.IsIncluded && l.Quantity >= 0.5 {
			mains = append(mains, l)
		} else {
			micros = append(micros, l)
		}
	}

	claimed := make([]bool, len(micros))
	grouped := make([]Line, 0, len(labor))
	for _, main := range mains {
		fam := Family(main.Description)
		var paid, included []Line
		for i, m := range micros {
			if claimed[i] {
				continue
			}
			sameJob := fam != "" && Family(m.Description) == fam
			if !sameJob && !m.IsIncluded {
				continue
			}
			claimed[i] = true
			if m.UnitPriceHT > 0 {
				paid = append(paid, m)
			} else {
				included = append(included, m)
			}
		}
		grouped = append(grouped, mergeLabor(main, paid, included))
	}
	// Micro lines never claimed by a main line pass through unchanged.
	for i, m := range micros {
		if !claimed[i] {
			grouped = append(grouped, m)
		}
	}

	out := make([]Line, 0, len(ls))
	out = append(out, parts...)
	out = append(out, grouped...)
	out = append(out, options...)
	out = append(out, forfaits...)
	return out
}

func mergeLabor(main Line, paid, included []Line) Line {
	newQty := main.Quantity
	totalValue := main.Amount()
	for _, p := range paid {
		newQty += p.Quantity
		totalValue += p.Amount()
	}
	merged := main
	merged.Quantity = newQty
	if newQty > 0 {
		merged.UnitPriceHT = totalValue / newQty
	}

	desc := main.Description
	appended := 0
	for _, p := range paid {
		if appended >= 2 {
			break
		}
		frag := lowerFirst(strings.TrimSpace(p.Description))
		if frag == "" || strings.Contains(strings.ToLower(desc), strings.ToLower(frag)) {
			continue
		}
		desc += " + " + frag
		appended++
	}
	for _, inc := range included {
		frag := lowerFirst(strings.TrimSpace(inc.Description))
		if frag == "" || strings.Contains(strings.ToLower(desc), strings.ToLower(frag)) {
			continue
		}
		desc += " — " + frag + " inclus"
	}
	merged.Description = desc
	return merged
}
