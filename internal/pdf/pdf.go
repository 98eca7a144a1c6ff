package pdf

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type CompanyData struct {
	Name    string
	Address string
	SIRET   string
	Phone   string
	Email   string
}

type ClientData struct {
	Name    string
	Address string
	Email   string
}

type VehicleData struct {
	Label           string // ex: "Peugeot 208 1.2 PureTech"
	Immatriculation string
	Kilometrage     int
}

type LineData struct {
	Description string
	Quantity    float64
	Unit        string
	UnitPriceHT float64
	TotalHT     float64
	IsOption    bool
	IsIncluded  bool
}

type DocumentData struct {
	Title     string // "DEVIS" ou "FACTURE"
	Reference string
	Date      string
	DueDate   string
	Company   CompanyData
	Client    ClientData
	Vehicle   VehicleData
	Lines     []LineData
	TotalHT   float64
	TVARate   float64
	TotalTVA  float64
	TotalTTC  float64
	Footer    string
}

// QuotePDF renders a quote document.
func QuotePDF(data DocumentData) ([]byte, error) {
	if data.Title == "" {
		data.Title = "DEVIS"
	}
	return render(data)
}

// InvoicePDF renders an invoice document.
func InvoicePDF(data DocumentData) ([]byte, error) {
	if data.Title == "" {
		data.Title = "FACTURE"
	}
	return render(data)
}

func render(data DocumentData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(12).
		WithRightMargin(12).
		Build()
	m := maroto.New(cfg)

	buildHeader(m, data)
	buildParties(m, data)
	buildLines(m, data)
	buildTotals(m, data)
	if data.Footer != "" {
		m.AddRow(12, text.NewCol(12, data.Footer, props.Text{Size: 7, Top: 6, Align: align.Center}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate: %w", err)
	}
	return doc.GetBytes(), nil
}

func buildHeader(m core.Maroto, data DocumentData) {
	m.AddRow(14,
		text.NewCol(8, data.Company.Name, props.Text{Style: fontstyle.Bold, Size: 14}),
		text.NewCol(4, data.Title+" "+data.Reference, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right}),
	)
	m.AddRow(6,
		text.NewCol(8, data.Company.Address, props.Text{Size: 8}),
		text.NewCol(4, "Date : "+data.Date, props.Text{Size: 8, Align: align.Right}),
	)
	right := ""
	if data.DueDate != "" {
		right = "Échéance : " + data.DueDate
	}
	m.AddRow(6,
		text.NewCol(8, companyContact(data.Company), props.Text{Size: 8}),
		text.NewCol(4, right, props.Text{Size: 8, Align: align.Right}),
	)
	m.AddRow(4, line.NewCol(12))
}

func companyContact(c CompanyData) string {
	out := ""
	if c.SIRET != "" {
		out = "SIRET " + c.SIRET
	}
	if c.Phone != "" {
		if out != "" {
			out += " · "
		}
		out += c.Phone
	}
	if c.Email != "" {
		if out != "" {
			out += " · "
		}
		out += c.Email
	}
	return out
}

func buildParties(m core.Maroto, data DocumentData) {
	m.AddRow(8,
		text.NewCol(6, "Client", props.Text{Style: fontstyle.Bold, Size: 9, Top: 2}),
		text.NewCol(6, "Véhicule", props.Text{Style: fontstyle.Bold, Size: 9, Top: 2}),
	)
	vehicle := data.Vehicle.Label
	if data.Vehicle.Immatriculation != "" {
		vehicle += " — " + data.Vehicle.Immatriculation
	}
	if data.Vehicle.Kilometrage > 0 {
		vehicle += fmt.Sprintf(" — %d km", data.Vehicle.Kilometrage)
	}
	m.AddRow(6,
		text.NewCol(6, data.Client.Name, props.Text{Size: 8}),
		text.NewCol(6, vehicle, props.Text{Size: 8}),
	)
	m.AddRow(6,
		text.NewCol(6, data.Client.Address, props.Text{Size: 8}),
		text.NewCol(6, "", props.Text{Size: 8}),
	)
	m.AddRow(4, line.NewCol(12))
}

func buildLines(m core.Maroto, data DocumentData) {
	header := props.Text{Style: fontstyle.Bold, Size: 8}
	m.AddRow(8,
		text.NewCol(6, "Désignation", header),
		text.NewCol(2, "Qté", mergeAlign(header, align.Right)),
		text.NewCol(2, "PU HT", mergeAlign(header, align.Right)),
		text.NewCol(2, "Total HT", mergeAlign(header, align.Right)),
	)
	cell := props.Text{Size: 8}
	for _, l := range data.Lines {
		desc := l.Description
		price := fmt.Sprintf("%.2f €", l.UnitPriceHT)
		total := fmt.Sprintf("%.2f €", l.TotalHT)
		switch {
		case l.IsIncluded:
			price, total = "inclus", "—"
		case l.IsOption:
			desc = "[Option] " + desc
			total = "—"
		}
		m.AddRow(6,
			text.NewCol(6, desc, cell),
			text.NewCol(2, formatQty(l.Quantity, l.Unit), mergeAlign(cell, align.Right)),
			text.NewCol(2, price, mergeAlign(cell, align.Right)),
			text.NewCol(2, total, mergeAlign(cell, align.Right)),
		)
	}
	m.AddRow(4, line.NewCol(12))
}

func formatQty(q float64, unit string) string {
	if unit == "heure" {
		return fmt.Sprintf("%.2f h", q)
	}
	if q == float64(int(q)) {
		return fmt.Sprintf("%d", int(q))
	}
	return fmt.Sprintf("%.2f", q)
}

func buildTotals(m core.Maroto, data DocumentData) {
	label := props.Text{Size: 9, Align: align.Right}
	bold := props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}
	m.AddRow(6,
		col.New(8),
		text.NewCol(2, "Total HT", label),
		text.NewCol(2, fmt.Sprintf("%.2f €", data.TotalHT), label),
	)
	m.AddRow(6,
		col.New(8),
		text.NewCol(2, fmt.Sprintf("TVA %.0f%%", data.TVARate), label),
		text.NewCol(2, fmt.Sprintf("%.2f €", data.TotalTVA), label),
	)
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Total TTC", bold),
		text.NewCol(2, fmt.Sprintf("%.2f €", data.TotalTTC), bold),
	)
}

func mergeAlign(p props.Text, a align.Type) props.Text {
	p.Align = a
	return p
}
