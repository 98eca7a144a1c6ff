package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mkeita/garage-app/internal/auth"
	"github.com/mkeita/garage-app/internal/models"
	"github.com/mkeita/garage-app/internal/services"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Role{}, &models.User{}, &models.Address{}, &models.GarageSettings{},
		&models.Client{}, &models.Vehicle{},
		&models.Quote{}, &models.QuoteLine{}, &models.Invoice{}, &models.InvoiceLine{},
		&models.Payment{}, &models.Document{}, &models.AuditLog{},
		&models.PriceMemory{}, &models.AIQuota{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{Email: "garagiste@example.com", Password: "hash"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedGarage(t *testing.T, db *gorm.DB) models.GarageSettings {
	t.Helper()
	svc := services.NewSetupService(db)
	gs, err := svc.Run(services.SetupInput{RaisonSociale: "Garage Martin", Address1: "1 rue des Forges", PostalCode: "75000", City: "Paris", Country: "FR", TauxTVA: 20, TauxHoraire: 70})
	if err != nil {
		t.Fatalf("seed garage: %v", err)
	}
	return *gs
}

func seedClient(t *testing.T, db *gorm.DB) models.Client {
	t.Helper()
	client := models.Client{Type: "particulier", Nom: "Dupont", Prenom: "Jean", Email: "jean@example.com"}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return client
}

func seedVehicle(t *testing.T, db *gorm.DB, clientID uint) models.Vehicle {
	t.Helper()
	v := models.Vehicle{ClientID: clientID, Immatriculation: "AB-123-CD", Marque: "Peugeot", Modele: "208", Annee: 2019, Kilometrage: 85000}
	if err := db.Create(&v).Error; err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
	return v
}

// jsonRequest builds an authenticated JSON request for handler-level tests.
func jsonRequest(t *testing.T, method, target string, body any, userID uint) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		r = r.WithContext(auth.WithUserID(context.Background(), userID))
	}
	return r
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}
