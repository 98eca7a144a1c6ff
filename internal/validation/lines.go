package validation

import (
	"fmt"
	"strings"

	"github.com/mkeita/garage-app/internal/lines"
)

// QuoteLine vérifie le schéma d'une ligne de devis.
func QuoteLine(field string, l lines.Line, v Violations) {
	switch l.Type {
	case lines.TypePiece, lines.TypeMainOeuvre, lines.TypeForfait:
	default:
		v[field+".type"] = "invalid_type"
	}
	switch l.Unit {
	case lines.UnitUnite, lines.UnitHeure:
	default:
		v[field+".unit"] = "invalid_unit"
	}
	if l.Type == lines.TypeMainOeuvre && l.Unit != lines.UnitHeure {
		v[field+".unit"] = "labor_requires_hours"
	}
	if strings.TrimSpace(l.Description) == "" {
		v[field+".description"] = "required"
	}
	if l.Quantity <= 0 {
		v[field+".quantity"] = "must_be_positive"
	}
	if l.UnitPriceHT < 0 {
		v[field+".unit_price_ht"] = "must_not_be_negative"
	}
	if l.IsIncluded && l.UnitPriceHT != 0 {
		v[field+".unit_price_ht"] = "included_must_be_free"
	}
}

// QuoteLines applique QuoteLine à chaque élément, champs indexés lignes[i].
func QuoteLines(ls []lines.Line, v Violations) {
	if len(ls) == 0 {
		v["lignes"] = "required"
		return
	}
	for i, l := range ls {
		QuoteLine(fmt.Sprintf("lignes[%d]", i), l, v)
	}
}
