package lines

import (
	"math"
	"regexp"
)

const totalTolerance = 0.01

// placeholderDescRe matches descriptions that are just a number or a bare
// hour figure ("2", "1.5 h") left behind by the generator.
var placeholderDescRe = regexp.MustCompile(`^\d+\.?\d*\s*h?$`)

// PostProcess grooms an AI-generated quote-line set: fixes truncated
// descriptions, merges duplicates and micro labor, collapses included lines,
// harmonizes wording and caps the display. Money is the one thing it is
// never allowed to be wrong about: if the pre-tax total drifts by a cent or
// any stage panics, the original input is returned unchanged.
func PostProcess(input []Line) (out []Line) {
	if len(input) == 0 {
		return input
	}
	orig := clone(input)
	defer func() {
		if r := recover(); r != nil {
			out = orig
		}
	}()

	ls := clone(input)
	ls = fixTruncated(ls)
	ls = ImproveVague(ls)
	ls = Deduplicate(ls)
	ls = ReconcileOil(ls)
	ls = GroupLabor(ls)
	ls = CollapseIncluded(ls)
	// Grouping and collapsing splice descriptions together and can
	// re-introduce truncation, hence the re-pass.
	ls = fixTruncated(ls)
	ls = HarmonizeWording(ls)
	ls = ImproveOptions(ls)
	ls = NormalizeDurations(ls)
	ls = LimitSections(ls)
	ls = fixTruncated(ls)
	ls = dropInvalid(ls)

	if math.Abs(Total(ls)-Total(orig)) >= totalTolerance {
		return orig
	}
	return ls
}

func fixTruncated(ls []Line) []Line {
	out := clone(ls)
	for i, l := range out {
		if IsTruncated(l.Description) {
			out[i].Description = Reformulate(l.Description, l.Type)
		}
	}
	return out
}

func dropInvalid(ls []Line) []Line {
	out := make([]Line, 0, len(ls))
	for _, l := range ls {
		d := l.Description
		if d == "" || placeholderDescRe.MatchString(d) {
			continue
		}
		out = append(out, l)
	}
	return out
}
