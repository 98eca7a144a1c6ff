package ai

import (
	"testing"

	"github.com/mkeita/garage-app/internal/lines"
)

func TestParseLinesPlainArray(t *testing.T) {
	content := `[
		{"type":"piece","description":"Plaquettes de frein avant","quantity":1,"unit":"unite","unit_price_ht":45.0},
		{"type":"main_oeuvre","description":"Remplacement plaquettes avant","quantity":1.5,"unit":"heure","unit_price_ht":70.0}
	]`
	ls, err := ParseLines(content)
	if err != nil {
		t.Fatalf("ParseLines: %v", err)
	}
	if len(ls) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(ls))
	}
	if ls[0].Type != lines.TypePiece || ls[1].Unit != lines.UnitHeure {
		t.Fatalf("unexpected lines: %+v", ls)
	}
}

func TestParseLinesMarkdownFence(t *testing.T) {
	content := "Voici le devis :\n```json\n[{\"type\":\"forfait\",\"description\":\"Forfait vidange\",\"quantity\":1,\"unit\":\"unite\",\"unit_price_ht\":89}]\n```\nBon courage."
	ls, err := ParseLines(content)
	if err != nil {
		t.Fatalf("ParseLines: %v", err)
	}
	if len(ls) != 1 || ls[0].Description != "Forfait vidange" {
		t.Fatalf("unexpected lines: %+v", ls)
	}
}

func TestParseLinesCoercesSchema(t *testing.T) {
	content := `[
		{"type":"labor","description":"Diagnostic","quantity":0.5,"unit":"heure","unit_price_ht":35},
		{"type":"piece","description":"Filtre habitacle","quantity":1,"unit":"","unit_price_ht":18},
		{"type":"main_oeuvre","description":"Contrôle des niveaux","quantity":0.1,"unit":"heure","unit_price_ht":12,"is_included":true}
	]`
	ls, err := ParseLines(content)
	if err != nil {
		t.Fatalf("ParseLines: %v", err)
	}
	if ls[0].Type != lines.TypeMainOeuvre {
		t.Fatalf("unknown type with heure unit should coerce to main_oeuvre, got %q", ls[0].Type)
	}
	if ls[1].Unit != lines.UnitUnite {
		t.Fatalf("missing unit on piece should coerce to unite, got %q", ls[1].Unit)
	}
	if ls[2].UnitPriceHT != 0 {
		t.Fatalf("included line must be free, got %v", ls[2].UnitPriceHT)
	}
}

func TestParseLinesBracketInsideString(t *testing.T) {
	content := `[{"type":"piece","description":"Kit distribution [renforcé]","quantity":1,"unit":"unite","unit_price_ht":210}]`
	ls, err := ParseLines(content)
	if err != nil {
		t.Fatalf("ParseLines: %v", err)
	}
	if ls[0].Description != "Kit distribution [renforcé]" {
		t.Fatalf("unexpected description: %q", ls[0].Description)
	}
}

func TestParseLinesNoJSON(t *testing.T) {
	if _, err := ParseLines("Désolé, je ne peux pas générer ce devis."); err == nil {
		t.Fatal("expected error on prose-only completion")
	}
	if _, err := ParseLines("[]"); err == nil {
		t.Fatal("expected error on empty array")
	}
}
