package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/mkeita/garage-app/internal/auth"
	"github.com/mkeita/garage-app/internal/httpx"
	"github.com/mkeita/garage-app/internal/models"
	"github.com/mkeita/garage-app/internal/services"
)

type VehicleHandler struct{ DB *gorm.DB }

func NewVehicleHandler(db *gorm.DB) *VehicleHandler { return &VehicleHandler{DB: db} }

type vehicleRequest struct {
	ClientID        uint   `json:"client_id"`
	Immatriculation string `json:"immatriculation"`
	VIN             string `json:"vin"`
	Marque          string `json:"marque"`
	Modele          string `json:"modele"`
	Annee           int    `json:"annee"`
	Kilometrage     int    `json:"kilometrage"`
	Carburant       string `json:"carburant"`
}

func (req *vehicleRequest) validate() map[string]string {
	fe := map[string]string{}
	req.Immatriculation = strings.ToUpper(strings.TrimSpace(req.Immatriculation))
	req.Marque = strings.TrimSpace(req.Marque)
	req.Modele = strings.TrimSpace(req.Modele)
	if req.ClientID == 0 {
		fe["client_id"] = "required"
	}
	if req.Immatriculation == "" {
		fe["immatriculation"] = "required"
	}
	if req.Marque == "" {
		fe["marque"] = "required"
	}
	if req.Modele == "" {
		fe["modele"] = "required"
	}
	if req.Kilometrage < 0 {
		fe["kilometrage"] = "must_not_be_negative"
	}
	return fe
}

// List: GET /vehicles?client_id=...
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	dbq := h.DB.Model(&models.Vehicle{})
	if v := r.URL.Query().Get("client_id"); v != "" {
		if cid, err := strconv.Atoi(v); err == nil && cid > 0 {
			dbq = dbq.Where("client_id = ?", cid)
		}
	}
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		safe := searchSanitizer.ReplaceAllString(q, "")
		like := "%" + strings.ToLower(safe) + "%"
		dbq = dbq.Where("lower(immatriculation) LIKE ? OR lower(marque) LIKE ? OR lower(modele) LIKE ?", like, like, like)
	}
	var total int64
	dbq.Count(&total)
	var vehicles []models.Vehicle
	if err := dbq.Order("id desc").Limit(limit).Offset(offset).Find(&vehicles).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_vehicles", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": vehicles, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /vehicles
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if fe := req.validate(); len(fe) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", fe)
		return
	}
	var clientCount int64
	h.DB.Model(&models.Client{}).Where("id = ?", req.ClientID).Count(&clientCount)
	if clientCount == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "unknown_client", nil)
		return
	}
	vehicle := models.Vehicle{
		ClientID: req.ClientID, Immatriculation: req.Immatriculation, VIN: strings.TrimSpace(req.VIN),
		Marque: req.Marque, Modele: req.Modele, Annee: req.Annee,
		Kilometrage: req.Kilometrage, Carburant: strings.TrimSpace(strings.ToLower(req.Carburant)),
	}
	if err := h.DB.Create(&vehicle).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_vehicle", nil)
		return
	}
	if uid, ok := auth.UserIDFromContext(r.Context()); ok {
		services.Audit(h.DB, uid, "Vehicle", vehicle.ID, "create")
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": vehicle.ID})
}

// Update: POST /vehicles/update?id=...
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var vehicle models.Vehicle
	if err := h.DB.First(&vehicle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_vehicle", nil)
		return
	}
	var req vehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.ClientID == 0 {
		req.ClientID = vehicle.ClientID
	}
	if fe := req.validate(); len(fe) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", fe)
		return
	}
	vehicle.ClientID = req.ClientID
	vehicle.Immatriculation = req.Immatriculation
	vehicle.VIN = strings.TrimSpace(req.VIN)
	vehicle.Marque = req.Marque
	vehicle.Modele = req.Modele
	vehicle.Annee = req.Annee
	vehicle.Kilometrage = req.Kilometrage
	vehicle.Carburant = strings.TrimSpace(strings.ToLower(req.Carburant))
	if err := h.DB.Save(&vehicle).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_vehicle", nil)
		return
	}
	if uid, ok := auth.UserIDFromContext(r.Context()); ok {
		services.Audit(h.DB, uid, "Vehicle", vehicle.ID, "update")
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": vehicle.ID})
}

// Delete: POST /vehicles/delete?id=...
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var count int64
	h.DB.Model(&models.Quote{}).Where("vehicle_id = ?", id).Count(&count)
	if count > 0 {
		httpx.JSONError(w, http.StatusConflict, "vehicle_has_documents", nil)
		return
	}
	res := h.DB.Delete(&models.Vehicle{}, id)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_vehicle", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if uid, ok := auth.UserIDFromContext(r.Context()); ok {
		services.Audit(h.DB, uid, "Vehicle", id, "delete")
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}
