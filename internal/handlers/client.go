package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/mkeita/garage-app/internal/auth"
	"github.com/mkeita/garage-app/internal/httpx"
	"github.com/mkeita/garage-app/internal/models"
	"github.com/mkeita/garage-app/internal/services"
)

type ClientHandler struct{ DB *gorm.DB }

func NewClientHandler(db *gorm.DB) *ClientHandler { return &ClientHandler{DB: db} }

var searchSanitizer = regexp.MustCompile(`[^a-zA-Z0-9 \-_@.]`)

// parseID reads the id query parameter common to get/update/delete endpoints.
func parseID(r *http.Request) (uint, bool) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// parsePagination reads limit/page the same way across list endpoints.
func parsePagination(r *http.Request) (limit, offset int) {
	limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	return limit, offset
}

type clientRequest struct {
	Type          string `json:"type"`
	Nom           string `json:"nom"`
	Prenom        string `json:"prenom"`
	RaisonSociale string `json:"raison_sociale"`
	Email         string `json:"email"`
	Telephone     string `json:"telephone"`
	Address1      string `json:"address1"`
	Address2      string `json:"address2"`
	PostalCode    string `json:"postal_code"`
	City          string `json:"city"`
	Country       string `json:"country"`
	Notes         string `json:"notes"`
}

func (req *clientRequest) validate() map[string]string {
	fe := map[string]string{}
	req.Type = strings.TrimSpace(strings.ToLower(req.Type))
	if req.Type == "" {
		req.Type = "particulier"
	}
	if req.Type != "particulier" && req.Type != "societe" {
		fe["type"] = "invalid_type"
	}
	req.Nom = strings.TrimSpace(req.Nom)
	req.RaisonSociale = strings.TrimSpace(req.RaisonSociale)
	if req.Type == "particulier" && req.Nom == "" {
		fe["nom"] = "required"
	}
	if req.Type == "societe" && req.RaisonSociale == "" {
		fe["raison_sociale"] = "required"
	}
	return fe
}

// List: GET /clients
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	dbq := h.DB.Model(&models.Client{})
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		safe := searchSanitizer.ReplaceAllString(q, "")
		like := "%" + strings.ToLower(safe) + "%"
		dbq = dbq.Where("lower(nom) LIKE ? OR lower(raison_sociale) LIKE ? OR lower(email) LIKE ?", like, like, like)
	}
	var total int64
	dbq.Count(&total)
	var clients []models.Client
	if err := dbq.Preload("Address").Preload("Vehicules").Order("id desc").Limit(limit).Offset(offset).Find(&clients).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_clients", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": clients, "total": total, "limit": limit, "offset": offset})
}

// Get: GET /clients/get?id=...
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var client models.Client
	if err := h.DB.Preload("Address").Preload("Vehicules").First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_client", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

// Create: POST /clients
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if fe := req.validate(); len(fe) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", fe)
		return
	}
	client := models.Client{
		Type: req.Type, Nom: req.Nom, Prenom: strings.TrimSpace(req.Prenom),
		RaisonSociale: req.RaisonSociale, Email: strings.TrimSpace(req.Email),
		Telephone: strings.TrimSpace(req.Telephone), Notes: req.Notes,
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if req.Address1 != "" {
			addr := models.Address{Ligne1: req.Address1, Ligne2: req.Address2, CodePostal: req.PostalCode, Ville: req.City, Pays: req.Country, Type: "principale"}
			if err := tx.Create(&addr).Error; err != nil {
				return err
			}
			client.AddressID = addr.ID
		}
		return tx.Create(&client).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_client", nil)
		return
	}
	if uid, ok := auth.UserIDFromContext(r.Context()); ok {
		services.Audit(h.DB, uid, "Client", client.ID, "create")
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": client.ID})
}

// Update: POST /clients/update?id=...
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var client models.Client
	if err := h.DB.First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_client", nil)
		return
	}
	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.Type == "" {
		req.Type = client.Type
	}
	if fe := req.validate(); len(fe) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", fe)
		return
	}
	client.Type = req.Type
	client.Nom = req.Nom
	client.Prenom = strings.TrimSpace(req.Prenom)
	client.RaisonSociale = req.RaisonSociale
	client.Email = strings.TrimSpace(req.Email)
	client.Telephone = strings.TrimSpace(req.Telephone)
	client.Notes = req.Notes
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if req.Address1 != "" {
			if client.AddressID != 0 {
				if err := tx.Model(&models.Address{}).Where("id = ?", client.AddressID).Updates(models.Address{Ligne1: req.Address1, Ligne2: req.Address2, CodePostal: req.PostalCode, Ville: req.City, Pays: req.Country}).Error; err != nil {
					return err
				}
			} else {
				addr := models.Address{Ligne1: req.Address1, Ligne2: req.Address2, CodePostal: req.PostalCode, Ville: req.City, Pays: req.Country, Type: "principale"}
				if err := tx.Create(&addr).Error; err != nil {
					return err
				}
				client.AddressID = addr.ID
			}
		}
		return tx.Save(&client).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_client", nil)
		return
	}
	if uid, ok := auth.UserIDFromContext(r.Context()); ok {
		services.Audit(h.DB, uid, "Client", client.ID, "update")
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": client.ID})
}

// Delete: POST /clients/delete?id=...
// Refused while the client still has quotes or invoices.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var count int64
	h.DB.Model(&models.Quote{}).Where("client_id = ?", id).Count(&count)
	if count == 0 {
		h.DB.Model(&models.Invoice{}).Where("client_id = ?", id).Count(&count)
	}
	if count > 0 {
		httpx.JSONError(w, http.StatusConflict, "client_has_documents", nil)
		return
	}
	res := h.DB.Delete(&models.Client{}, id)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_client", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if uid, ok := auth.UserIDFromContext(r.Context()); ok {
		services.Audit(h.DB, uid, "Client", id, "delete")
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}
