package lines

import "math"

const (
	minLaborHours  = 0.25
	laborGridHours = 0.05
)

// NormalizeDurations clamps labor quantities to the realistic billing grid:
// at least a quarter hour, rounded to 0.05h steps. Included labor lines keep
// their display quantity untouched.
func NormalizeDurations(ls []Line) []Line {
	out := make([]Line, 0, len(ls))
	for _, l := range ls {
		if l.Type != TypeMainOeuvre || l.IsIncluded {
			out = append(out, l)
			continue
		}
		if l.Quantity < minLaborHours {
			l.Quantity = minLaborHours
		}
		l.Quantity = math.Round(l.Quantity*20) / 20
		if l.Quantity <= 0 {
			continue
		}
		out = append(out, l)
	}
	return out
}
