package lines

import (
	"math"
	"strings"
	"testing"
)

func assertTotalPreserved(t *testing.T, in, out []Line) {
	t.Helper()
	if math.Abs(Total(in)-Total(out)) >= totalTolerance {
		t.Fatalf("total drifted: before=%v after=%v", Total(in), Total(out))
	}
}

// Scenario: duplicate part lines are merged, value preserved.
func TestPostProcessMergesDuplicateParts(t *testing.T) {
	in := []Line{
		{Type: TypePiece, Description: "Huile moteur 5W30 — 4L", Quantity: 1, Unit: UnitUnite, UnitPriceHT: 25},
		{Type: TypePiece, Description: "Huile moteur 5W30 — 4L", Quantity: 1, Unit: UnitUnite, UnitPriceHT: 25},
	}
	out := PostProcess(in)
	if len(out) != 1 {
		t.Fatalf("expected 1 line got %d: %+v", len(out), out)
	}
	if out[0].Quantity != 2 || out[0].UnitPriceHT != 25 {
		t.Fatalf("unexpected merge: %+v", out[0])
	}
	if out[0].Description != "Huile moteur 5W30 — 4L" {
		t.Fatalf("description changed: %q", out[0].Description)
	}
	assertTotalPreserved(t, in, out)
}

// Scenario: micro labor of the same family is grouped into the main line.
func TestPostProcessGroupsSameFamilyLabor(t *testing.T) {
	in := []Line{
		{Type: TypeMainOeuvre, Description: "Vidange moteur", Quantity: 0.5, Unit: UnitHeure, UnitPriceHT: 60},
		{Type: TypeMainOeuvre, Description: "Remplacement filtre", Quantity: 0.25, Unit: UnitHeure, UnitPriceHT: 60},
	}
	out := PostProcess(in)
	if len(out) != 1 {
		t.Fatalf("expected 1 line got %d: %+v", len(out), out)
	}
	g := out[0]
	if g.Quantity != 0.75 || math.Abs(g.UnitPriceHT-60) > 1e-9 {
		t.Fatalf("unexpected grouping: %+v", g)
	}
	if g.Description != "Vidange moteur + remplacement filtre" {
		t.Fatalf("unexpected description %q", g.Description)
	}
	assertTotalPreserved(t, in, out)
}

// Scenario: included lines without a qualifying main labor line collapse
// into one synthetic "Contrôles & sécurité" line.
func TestPostProcessCollapsesIncludedLines(t *testing.T) {
	in := []Line{
		{Type: TypeMainOeuvre, Description: "Contrôle des niveaux", Quantity: 0.2, Unit: UnitHeure, UnitPriceHT: 0, IsIncluded: true},
		{Type: TypeMainOeuvre, Description: "Contrôle pression pneus", Quantity: 0.1, Unit: UnitHeure, UnitPriceHT: 0, IsIncluded: true},
		{Type: TypeMainOeuvre, Description: "Contrôle éclairage", Quantity: 0.1, Unit: UnitHeure, UnitPriceHT: 0, IsIncluded: true},
	}
	out := PostProcess(in)
	if len(out) != 1 {
		t.Fatalf("expected 1 synthetic line got %d: %+v", len(out), out)
	}
	s := out[0]
	if !strings.HasPrefix(s.Description, "Contrôles & sécurité (Inclus) —") {
		t.Fatalf("unexpected description %q", s.Description)
	}
	if s.Type != TypeMainOeuvre || s.Quantity != 1 || s.UnitPriceHT != 0 || !s.IsIncluded {
		t.Fatalf("unexpected synthetic line: %+v", s)
	}
}

// Scenario: conflicting oil viscosities. This implementation keeps priced
// conflicting lines (a priced line is never silently discarded) and only
// drops zero-priced ones, so the total guard never has to roll back here.
func TestPostProcessOilConflict(t *testing.T) {
	priced := []Line{
		{Type: TypePiece, Description: "Huile moteur 5W30 — 4L", Quantity: 1, Unit: UnitUnite, UnitPriceHT: 25},
		{Type: TypePiece, Description: "Huile moteur 5W40 — 4L", Quantity: 1, Unit: UnitUnite, UnitPriceHT: 40},
	}
	out := PostProcess(priced)
	if len(out) != 2 {
		t.Fatalf("priced conflict must be kept, got %+v", out)
	}
	assertTotalPreserved(t, priced, out)

	free := []Line{
		{Type: TypePiece, Description: "Huile moteur 5W30 — 4L", Quantity: 1, Unit: UnitUnite, UnitPriceHT: 25},
		{Type: TypePiece, Description: "Huile moteur 5W40 offerte", Quantity: 1, Unit: UnitUnite, UnitPriceHT: 0},
	}
	out = PostProcess(free)
	if len(out) != 1 {
		t.Fatalf("free conflicting oil line should be dropped, got %+v", out)
	}
	if v := viscosityOf(out[0].Description); v != "5W30" {
		t.Fatalf("expected 5W30 kept, got %q", v)
	}
	assertTotalPreserved(t, free, out)
}

// Scenario: truncated labor description is reformulated.
func TestPostProcessFixesTruncatedDescription(t *testing.T) {
	in := []Line{
		{Type: TypeMainOeuvre, Description: "Remplacement plaquettes (", Quantity: 1, Unit: UnitHeure, UnitPriceHT: 70},
	}
	out := PostProcess(in)
	if len(out) != 1 {
		t.Fatalf("expected 1 line got %d", len(out))
	}
	if out[0].Description != "Remplacement plaquettes de frein avant" {
		t.Fatalf("unexpected reformulation %q", out[0].Description)
	}
	assertTotalPreserved(t, in, out)
}

func TestPostProcessInvariants(t *testing.T) {
	in := []Line{
		{Type: TypePiece, Description: "Plaquettes de frein avant", Quantity: 1, Unit: UnitUnite, UnitPriceHT: 45},
		{Type: TypePiece, Description: "Plaquettes frein avant", Quantity: 1, Unit: UnitUnite, UnitPriceHT: 45},
		{Type: TypeMainOeuvre, Description: "Remplacement plaquettes de frein avant", Quantity: 1.5, Unit: UnitHeure, UnitPriceHT: 70},
		{Type: TypeMainOeuvre, Description: "Essai routier", Quantity: 0.25, Unit: UnitHeure, UnitPriceHT: 0, IsIncluded: true},
		{Type: TypeMainOeuvre, Description: "Option sécurité", Quantity: 0.5, Unit: UnitHeure, UnitPriceHT: 80, IsOption: true},
	}
	out := PostProcess(in)
	assertTotalPreserved(t, in, out)
	for _, l := range out {
		if l.IsIncluded && l.UnitPriceHT != 0 {
			t.Fatalf("included line with price: %+v", l)
		}
		if l.Type == TypeMainOeuvre && !l.IsIncluded {
			if l.Quantity < 0.25 {
				t.Fatalf("labor below floor: %+v", l)
			}
			grid := math.Round(l.Quantity*20) / 20
			if math.Abs(grid-l.Quantity) > 1e-9 {
				t.Fatalf("labor off 0.05 grid: %+v", l)
			}
		}
		if strings.TrimSpace(l.Description) == "" {
			t.Fatalf("empty description in output")
		}
		if placeholderDescRe.MatchString(l.Description) {
			t.Fatalf("placeholder description %q", l.Description)
		}
	}
}

func TestPostProcessIdempotent(t *testing.T) {
	in := []Line{
		{Type: TypePiece, Description: "Huile moteur 5W30 — 4L", Quantity: 1, Unit: UnitUnite, UnitPriceHT: 25},
		{Type: TypePiece, Description: "Filtre à huile", Quantity: 1, Unit: UnitUnite, UnitPriceHT: 12},
		{Type: TypeMainOeuvre, Description: "Vidange moteur", Quantity: 0.5, Unit: UnitHeure, UnitPriceHT: 60},
		{Type: TypeMainOeuvre, Description: "Remplacement filtre", Quantity: 0.25, Unit: UnitHeure, UnitPriceHT: 60},
	}
	once := PostProcess(in)
	twice := PostProcess(once)
	if len(once) != len(twice) {
		t.Fatalf("second run changed line count: %d vs %d", len(once), len(twice))
	}
	assertTotalPreserved(t, once, twice)
	for i := range once {
		if once[i].Quantity != twice[i].Quantity || once[i].UnitPriceHT != twice[i].UnitPriceHT {
			t.Fatalf("second run changed billing at %d: %+v vs %+v", i, once[i], twice[i])
		}
	}
}

func TestPostProcessRollsBackOnDrift(t *testing.T) {
	// An off-grid micro labor line with no family sibling survives grouping;
	// the duration clamp would change its billed value, so the guard
	// restores the original input.
	in := []Line{
		{Type: TypeMainOeuvre, Description: "Réglage du ralenti moteur", Quantity: 0.1, Unit: UnitHeure, UnitPriceHT: 100},
	}
	out := PostProcess(in)
	if len(out) != 1 || out[0] != in[0] {
		t.Fatalf("expected rollback to original input, got %+v", out)
	}
}

func TestPostProcessEmptyInput(t *testing.T) {
	if out := PostProcess(nil); len(out) != 0 {
		t.Fatalf("expected empty output, got %+v", out)
	}
}
