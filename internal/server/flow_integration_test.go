package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mkeita/garage-app/internal/auth"
	"github.com/mkeita/garage-app/internal/config"
	appdb "github.com/mkeita/garage-app/internal/db"
	srv "github.com/mkeita/garage-app/internal/server"
)

func setupFullTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbi, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := appdb.AutoMigrate(dbi); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return dbi
}

func extractCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// call sends a JSON request through the router with an optional session cookie.
func call(t *testing.T, h http.Handler, method, target string, body any, session *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != nil {
		req.AddCookie(session)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// Full quote-to-invoice lifecycle through the HTTP surface.
func TestQuoteToInvoiceFlow(t *testing.T) {
	dbi := setupFullTestDB(t)
	root := srv.New(dbi, config.Config{AIQuotaMonth: 10})

	rr := call(t, root, http.MethodPost, "/signup", map[string]any{"email": "gerant@garage.fr", "password": "motdepasse"}, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup: %d %s", rr.Code, rr.Body.String())
	}
	session := extractCookie(rr, "session")
	if session == nil {
		t.Fatalf("missing session cookie after signup")
	}

	rr = call(t, root, http.MethodPost, "/setup", map[string]any{
		"raison_sociale": "Garage Martin", "address1": "4 rue des Forges",
		"postal_code": "69003", "city": "Lyon", "country": "FR",
		"taux_tva": 20, "taux_horaire": 70,
	}, session)
	if rr.Code != http.StatusCreated {
		t.Fatalf("setup: %d %s", rr.Code, rr.Body.String())
	}

	rr = call(t, root, http.MethodPost, "/clients", map[string]any{
		"type": "particulier", "nom": "Durand", "prenom": "Paul", "email": "p.durand@example.fr",
	}, session)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create client: %d %s", rr.Code, rr.Body.String())
	}
	var client struct{ ID uint }
	if err := json.Unmarshal(rr.Body.Bytes(), &client); err != nil {
		t.Fatalf("decode client: %v", err)
	}

	rr = call(t, root, http.MethodPost, "/vehicles", map[string]any{
		"client_id": client.ID, "immatriculation": "ab-123-cd", "marque": "Renault", "modele": "Clio",
	}, session)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create vehicle: %d %s", rr.Code, rr.Body.String())
	}
	var vehicle struct{ ID uint }
	if err := json.Unmarshal(rr.Body.Bytes(), &vehicle); err != nil {
		t.Fatalf("decode vehicle: %v", err)
	}

	rr = call(t, root, http.MethodPost, "/quotes", map[string]any{
		"client_id": client.ID, "vehicle_id": vehicle.ID,
		"lignes": []map[string]any{
			{"type": "piece", "description": "Filtre à huile", "quantity": 1, "unit": "unite", "unit_price_ht": 12.5},
			{"type": "main_oeuvre", "description": "Vidange moteur", "quantity": 0.5, "unit": "heure", "unit_price_ht": 70},
		},
	}, session)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create quote: %d %s", rr.Code, rr.Body.String())
	}
	var quote struct {
		ID        uint
		Reference string
		TotalTTC  float64
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &quote); err != nil {
		t.Fatalf("decode quote: %v", err)
	}
	if !regexp.MustCompile(`^DEV-\d{4}-\d{4}$`).MatchString(quote.Reference) {
		t.Fatalf("bad quote reference: %q", quote.Reference)
	}

	for _, step := range []string{"send", "accept"} {
		rr = call(t, root, http.MethodPost, fmt.Sprintf("/quotes/%s?id=%d", step, quote.ID), nil, session)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s quote: %d %s", step, rr.Code, rr.Body.String())
		}
	}

	rr = call(t, root, http.MethodPost, "/invoices", map[string]any{"quote_id": quote.ID}, session)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create invoice: %d %s", rr.Code, rr.Body.String())
	}
	var invoice struct {
		ID        uint
		Reference string
		TotalTTC  float64
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &invoice); err != nil {
		t.Fatalf("decode invoice: %v", err)
	}
	if !regexp.MustCompile(`^FAC-\d{4}-\d{4}$`).MatchString(invoice.Reference) {
		t.Fatalf("bad invoice reference: %q", invoice.Reference)
	}
	if invoice.TotalTTC != quote.TotalTTC {
		t.Fatalf("invoice TTC %v != quote TTC %v", invoice.TotalTTC, quote.TotalTTC)
	}

	rr = call(t, root, http.MethodPost, fmt.Sprintf("/invoices/finalize?id=%d", invoice.ID), nil, session)
	if rr.Code != http.StatusOK {
		t.Fatalf("finalize: %d %s", rr.Code, rr.Body.String())
	}
	rr = call(t, root, http.MethodPost, fmt.Sprintf("/invoices/pay?id=%d", invoice.ID), map[string]any{"montant": invoice.TotalTTC, "mode": "cb"}, session)
	if rr.Code != http.StatusCreated {
		t.Fatalf("pay: %d %s", rr.Code, rr.Body.String())
	}
	var paid struct {
		Statut string `json:"statut"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &paid); err != nil {
		t.Fatalf("decode payment: %v", err)
	}
	if paid.Statut != "payee" {
		t.Fatalf("expected payee, got %q", paid.Statut)
	}

	// The generated PDF is traced in /documents.
	rr = call(t, root, http.MethodGet, fmt.Sprintf("/invoices/pdf?id=%d", invoice.ID), nil, session)
	if rr.Code != http.StatusOK {
		t.Fatalf("pdf: %d %s", rr.Code, rr.Body.String())
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected a PDF payload")
	}
	rr = call(t, root, http.MethodGet, "/documents?entity_type=Invoice", nil, session)
	if rr.Code != http.StatusOK {
		t.Fatalf("documents: %d %s", rr.Code, rr.Body.String())
	}
}

func TestGenerateWithoutAssistantConfigured(t *testing.T) {
	dbi := setupFullTestDB(t)
	root := srv.New(dbi, config.Config{AIQuotaMonth: 10})

	rr := call(t, root, http.MethodPost, "/signup", map[string]any{"email": "meca@garage.fr", "password": "motdepasse"}, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup: %d", rr.Code)
	}
	session := extractCookie(rr, "session")

	rr = call(t, root, http.MethodPost, "/quotes/generate", map[string]any{"client_id": 1, "demande": "vidange"}, session)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without assistant, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestSessionCookieFormat(t *testing.T) {
	rr := httptest.NewRecorder()
	auth.CreateSession(rr, 7)
	c := extractCookie(rr, "session")
	if c == nil {
		t.Fatalf("missing session cookie")
	}
	if !regexp.MustCompile(`^[0-9]+\.[A-Za-z0-9_-]+$`).MatchString(c.Value) {
		t.Fatalf("bad cookie format: %s", c.Value)
	}
}
