package lines

import (
	"math"
	"testing"
)

func TestReconcileOilMergesSameViscosity(t *testing.T) {
	in := []Line{
		{Type: TypePiece, Description: "Huile moteur 5W30 — 4L", Quantity: 1, Unit: UnitUnite, UnitPriceHT: 25},
		{Type: TypePiece, Description: "Huile moteur 5W40", Quantity: 1, Unit: UnitUnite, UnitPriceHT: 28},
		{Type: TypePiece, Description: "Huile moteur 5w30 bidon", Quantity: 1, Unit: UnitUnite, UnitPriceHT: 27},
	}
	out := ReconcileOil(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 lines got %d", len(out))
	}
	ref := out[0]
	if ref.Quantity != 2 {
		t.Fatalf("expected same-viscosity merge, qty=%v", ref.Quantity)
	}
	if math.Abs(ref.Amount()-52) > 1e-9 {
		t.Fatalf("merged value drifted: %v", ref.Amount())
	}
}

func TestReconcileOilKeepsPricedConflict(t *testing.T) {
	in := []Line{
		{Type: TypePiece, Description: "Huile moteur 5W30 — 4L", Quantity: 1, Unit: UnitUnite, UnitPriceHT: 25},
		{Type: TypePiece, Description: "Huile moteur 5W40 — 4L", Quantity: 1, Unit: UnitUnite, UnitPriceHT: 28},
	}
	out := ReconcileOil(in)
	// A priced conflicting line is never silently discarded: both survive
	// so the quote total stays intact.
	if len(out) != 2 {
		t.Fatalf("priced conflict must be kept, got %d lines", len(out))
	}
	if math.Abs(Total(out)-Total(in)) > 1e-9 {
		t.Fatalf("total drifted: %v vs %v", Total(out), Total(in))
	}
}

func TestReconcileOilDropsFreeConflict(t *testing.T) {
	in := []Line{
		{Type: TypePiece, Description: "Huile moteur 5W30 — 4L", Quantity: 1, Unit: UnitUnite, UnitPriceHT: 25},
		{Type: TypePiece, Description: "Huile moteur 5W40 offerte", Quantity: 1, Unit: UnitUnite, UnitPriceHT: 0},
	}
	out := ReconcileOil(in)
	if len(out) != 1 {
		t.Fatalf("free conflicting oil line should be dropped, got %d lines", len(out))
	}
	if v := viscosityOf(out[0].Description); v != "5W30" {
		t.Fatalf("expected 5W30 retained, got %q", v)
	}
}

func TestReconcileOilNoopSingleViscosity(t *testing.T) {
	in := []Line{
		{Type: TypePiece, Description: "Huile moteur 5W30 — 4L", Quantity: 1, Unit: UnitUnite, UnitPriceHT: 25},
		{Type: TypePiece, Description: "Filtre à huile", Quantity: 1, Unit: UnitUnite, UnitPriceHT: 12},
	}
	out := ReconcileOil(in)
	if len(out) != 2 {
		t.Fatalf("expected no-op, got %d lines", len(out))
	}
}
