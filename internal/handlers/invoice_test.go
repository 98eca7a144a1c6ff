package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"gorm.io/gorm"

	"github.com/mkeita/garage-app/internal/models"
	"github.com/mkeita/garage-app/internal/services"
)

func seedAcceptedQuote(t *testing.T, db *gorm.DB, clientID, vehicleID uint) models.Quote {
	t.Helper()
	quote := models.Quote{
		Reference: "DEV-2025-0001", ClientID: clientID, VehicleID: vehicleID,
		Statut: models.QuoteAccepted, TauxTVA: 20,
		Lignes: []models.QuoteLine{
			{Position: 0, Type: "piece", Description: "Plaquettes de frein avant", Quantity: 1, Unit: "unite", UnitPriceHT: 45},
			{Position: 1, Type: "main_oeuvre", Description: "Remplacement plaquettes avant", Quantity: 1.5, Unit: "heure", UnitPriceHT: 70},
			{Position: 2, Type: "piece", Description: "Disques de frein (option recommandée)", Quantity: 1, Unit: "unite", UnitPriceHT: 120, IsOption: true},
			{Position: 3, Type: "main_oeuvre", Description: "Contrôle des niveaux (Inclus)", Quantity: 0.25, Unit: "heure", UnitPriceHT: 0, IsIncluded: true},
		},
		TotalHT: 150, TotalTVA: 30, TotalTTC: 180,
	}
	if err := db.Create(&quote).Error; err != nil {
		t.Fatalf("seed quote: %v", err)
	}
	return quote
}

func newInvoiceHandler(db *gorm.DB) *InvoiceHandler {
	return NewInvoiceHandler(db, services.NewInvoiceService(), services.NewSetupService(db))
}

func TestInvoiceCreateFromQuote(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	seedGarage(t, db)
	client := seedClient(t, db)
	vehicle := seedVehicle(t, db, client.ID)
	quote := seedAcceptedQuote(t, db, client.ID, vehicle.ID)
	h := newInvoiceHandler(db)

	w := httptest.NewRecorder()
	h.Create(w, jsonRequest(t, http.MethodPost, "/invoices", map[string]any{"quote_id": quote.ID}, user.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("create status %d body %s", w.Code, w.Body.String())
	}
	out := decodeBody(t, w)
	lignes := out["Lignes"].([]any)
	if len(lignes) != 3 {
		t.Fatalf("options must be dropped on invoicing, got %d lines", len(lignes))
	}
	if out["TotalTTC"].(float64) != 180 {
		t.Fatalf("expected TTC 180, got %v", out["TotalTTC"])
	}

	var fresh models.Quote
	db.First(&fresh, quote.ID)
	if fresh.Statut != models.QuoteConverted {
		t.Fatalf("quote must be marked facture, got %s", fresh.Statut)
	}
}

func TestInvoiceCreateRequiresAcceptedQuote(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	client := seedClient(t, db)
	quote := models.Quote{Reference: "DEV-2025-0002", ClientID: client.ID, Statut: models.QuoteDraft, TauxTVA: 20}
	if err := db.Create(&quote).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	h := newInvoiceHandler(db)

	w := httptest.NewRecorder()
	h.Create(w, jsonRequest(t, http.MethodPost, "/invoices", map[string]any{"quote_id": quote.ID}, user.ID))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for draft quote, got %d", w.Code)
	}
}

func TestInvoiceFinalizeAndPay(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	seedGarage(t, db)
	client := seedClient(t, db)
	vehicle := seedVehicle(t, db, client.ID)
	quote := seedAcceptedQuote(t, db, client.ID, vehicle.ID)
	h := newInvoiceHandler(db)

	w := httptest.NewRecorder()
	h.Create(w, jsonRequest(t, http.MethodPost, "/invoices", map[string]any{"quote_id": quote.ID}, user.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("create status %d", w.Code)
	}

	// paying a draft is refused
	w = httptest.NewRecorder()
	h.Pay(w, jsonRequest(t, http.MethodPost, "/invoices/pay?id=1", map[string]any{"montant": 180}, user.ID))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 paying a draft, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.Finalize(w, jsonRequest(t, http.MethodPost, "/invoices/finalize?id=1", nil, user.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("finalize status %d body %s", w.Code, w.Body.String())
	}

	// partial payment keeps the invoice finalized
	w = httptest.NewRecorder()
	h.Pay(w, jsonRequest(t, http.MethodPost, "/invoices/pay?id=1", map[string]any{"montant": 100, "mode": "CB"}, user.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("pay status %d body %s", w.Code, w.Body.String())
	}
	if out := decodeBody(t, w); out["statut"] != models.InvoiceFinalized {
		t.Fatalf("expected finalisee after partial payment, got %v", out["statut"])
	}

	// the remainder settles it
	w = httptest.NewRecorder()
	h.Pay(w, jsonRequest(t, http.MethodPost, "/invoices/pay?id=1", map[string]any{"montant": 80, "mode": "virement"}, user.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("pay status %d", w.Code)
	}
	if out := decodeBody(t, w); out["statut"] != models.InvoicePaid {
		t.Fatalf("expected payee after full payment, got %v", out["statut"])
	}
}
