package lines

// Quote line model used by the AI normalization pipeline. These values are
// transient: they come from the LLM response and are persisted by the caller
// only after grooming.

type Type string

const (
	TypePiece      Type = "piece"
	TypeMainOeuvre Type = "main_oeuvre"
	TypeForfait    Type = "forfait"
)

type Unit string

const (
	UnitUnite Unit = "unite"
	UnitHeure Unit = "heure"
)

type Line struct {
	Type        Type    `json:"type"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        Unit    `json:"unit"`
	UnitPriceHT float64 `json:"unit_price_ht"`
	IsOption    bool    `json:"is_option"`
	IsIncluded  bool    `json:"is_included"`
}

// Amount returns the pre-tax value of the line.
func (l Line) Amount() float64 { return l.Quantity * l.UnitPriceHT }

// Total sums quantity × unit price over all lines.
func Total(ls []Line) float64 {
	var t float64
	for _, l := range ls {
		t += l.Amount()
	}
	return t
}

func clone(ls []Line) []Line {
	out := make([]Line, len(ls))
	copy(out, ls)
	return out
}
