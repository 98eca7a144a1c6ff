package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkeita/garage-app/internal/services"
)

func TestSetupCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	h := NewSetupHandler(services.NewSetupService(db))

	w := httptest.NewRecorder()
	h.Handle(w, jsonRequest(t, http.MethodGet, "/setup", nil, 1))
	if w.Code != http.StatusOK {
		t.Fatalf("get status %d", w.Code)
	}
	if out := decodeBody(t, w); out["configured"] != false {
		t.Fatalf("expected not configured, got %v", out)
	}

	w = httptest.NewRecorder()
	h.Handle(w, jsonRequest(t, http.MethodPost, "/setup", map[string]any{
		"raison_sociale": "Garage Martin",
		"address1":       "1 rue des Forges",
		"postal_code":    "75000",
		"city":           "Paris",
		"country":        "fr",
		"siret":          "12345678901234",
		"taux_tva":       20,
		"taux_horaire":   70,
	}, 1))
	if w.Code != http.StatusCreated {
		t.Fatalf("post status %d body %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.Handle(w, jsonRequest(t, http.MethodGet, "/setup", nil, 1))
	if out := decodeBody(t, w); out["configured"] != true {
		t.Fatalf("expected configured, got %v", out)
	}
}

func TestSetupValidation(t *testing.T) {
	db := newTestDB(t)
	h := NewSetupHandler(services.NewSetupService(db))

	w := httptest.NewRecorder()
	h.Handle(w, jsonRequest(t, http.MethodPost, "/setup", map[string]any{
		"raison_sociale": "",
		"siret":          "123",
	}, 1))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	out := decodeBody(t, w)
	fields, _ := out["fields"].(map[string]any)
	if fields["raison_sociale"] == nil || fields["siret"] == nil {
		t.Fatalf("expected localized field errors, got %v", out)
	}
}

func TestSetupUpdate(t *testing.T) {
	db := newTestDB(t)
	seedGarage(t, db)
	h := NewSetupHandler(services.NewSetupService(db))

	w := httptest.NewRecorder()
	h.Handle(w, jsonRequest(t, http.MethodPut, "/setup", map[string]any{
		"raison_sociale": "Garage Martin & Fils",
		"address1":       "2 avenue de Lyon",
		"postal_code":    "69000",
		"city":           "Lyon",
		"country":        "FR",
		"taux_horaire":   80,
	}, 1))
	if w.Code != http.StatusOK {
		t.Fatalf("put status %d body %s", w.Code, w.Body.String())
	}
}
