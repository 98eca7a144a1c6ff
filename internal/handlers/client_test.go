package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkeita/garage-app/internal/models"
)

func TestClientCreateListDelete(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	h := NewClientHandler(db)

	w := httptest.NewRecorder()
	h.Create(w, jsonRequest(t, http.MethodPost, "/clients", map[string]any{
		"type": "particulier", "nom": "Dupont", "prenom": "Jean",
		"email":    "jean@example.com",
		"address1": "8 avenue de la Gare", "postal_code": "75012", "city": "Paris", "country": "FR",
	}, user.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("create status %d body %s", w.Code, w.Body.String())
	}
	id := uint(decodeBody(t, w)["id"].(float64))

	w = httptest.NewRecorder()
	h.List(w, jsonRequest(t, http.MethodGet, "/clients?q=dupont", nil, user.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("list status %d", w.Code)
	}
	if out := decodeBody(t, w); out["total"].(float64) != 1 {
		t.Fatalf("expected 1 client, got %v", out["total"])
	}

	// Audit trail recorded the creation.
	var auditCount int64
	db.Model(&models.AuditLog{}).Where("entity_type = ? AND action = ?", "Client", "create").Count(&auditCount)
	if auditCount != 1 {
		t.Fatalf("expected 1 audit entry, got %d", auditCount)
	}

	w = httptest.NewRecorder()
	h.Delete(w, jsonRequest(t, http.MethodPost, "/clients/delete?id=1", nil, user.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("delete status %d body %s", w.Code, w.Body.String())
	}
	var count int64
	db.Model(&models.Client{}).Where("id = ?", id).Count(&count)
	if count != 0 {
		t.Fatal("client must be deleted")
	}
}

func TestClientDeleteRefusedWithQuotes(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	client := seedClient(t, db)
	if err := db.Create(&models.Quote{Reference: "DEV-2025-0001", ClientID: client.ID, TauxTVA: 20}).Error; err != nil {
		t.Fatalf("seed quote: %v", err)
	}
	h := NewClientHandler(db)

	w := httptest.NewRecorder()
	h.Delete(w, jsonRequest(t, http.MethodPost, "/clients/delete?id=1", nil, user.ID))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for client with quotes, got %d", w.Code)
	}
}

func TestClientValidation(t *testing.T) {
	db := newTestDB(t)
	h := NewClientHandler(db)

	// société sans raison sociale
	w := httptest.NewRecorder()
	h.Create(w, jsonRequest(t, http.MethodPost, "/clients", map[string]any{"type": "societe"}, 1))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
