package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mkeita/garage-app/internal/ai"
	"github.com/mkeita/garage-app/internal/auth"
	"github.com/mkeita/garage-app/internal/httpx"
	"github.com/mkeita/garage-app/internal/lines"
	"github.com/mkeita/garage-app/internal/models"
	"github.com/mkeita/garage-app/internal/pdf"
	"github.com/mkeita/garage-app/internal/services"
	"github.com/mkeita/garage-app/internal/validation"
)

type QuoteHandler struct {
	DB        *gorm.DB
	Svc       *services.QuoteService
	Setup     *services.SetupService
	Quota     *services.QuotaService
	Memory    *services.PriceMemoryService
	Generator ai.Generator
}

func NewQuoteHandler(db *gorm.DB, svc *services.QuoteService, setup *services.SetupService, quota *services.QuotaService, memory *services.PriceMemoryService, gen ai.Generator) *QuoteHandler {
	return &QuoteHandler{DB: db, Svc: svc, Setup: setup, Quota: quota, Memory: memory, Generator: gen}
}

type quoteRequest struct {
	ClientID  uint         `json:"client_id"`
	VehicleID uint         `json:"vehicle_id"`
	Lignes    []lines.Line `json:"lignes"`
	Notes     string       `json:"notes"`
	TauxTVA   float64      `json:"taux_tva"`
}

// toQuoteLines converts schema lines to persisted rows, keeping order.
func toQuoteLines(ls []lines.Line) []models.QuoteLine {
	out := make([]models.QuoteLine, 0, len(ls))
	for i, l := range ls {
		out = append(out, models.QuoteLine{
			Position:    i,
			Type:        string(l.Type),
			Description: l.Description,
			Quantity:    l.Quantity,
			Unit:        string(l.Unit),
			UnitPriceHT: l.UnitPriceHT,
			IsOption:    l.IsOption,
			IsIncluded:  l.IsIncluded,
		})
	}
	return out
}

// List: GET /quotes
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	dbq := h.DB.Model(&models.Quote{})
	if v := r.URL.Query().Get("client_id"); v != "" {
		if cid, err := strconv.Atoi(v); err == nil && cid > 0 {
			dbq = dbq.Where("client_id = ?", cid)
		}
	}
	if statut := strings.TrimSpace(r.URL.Query().Get("statut")); statut != "" {
		safe := searchSanitizer.ReplaceAllString(statut, "")
		dbq = dbq.Where("statut = ?", strings.ToLower(safe))
	}
	var total int64
	dbq.Count(&total)
	var quotes []models.Quote
	if err := dbq.Preload("Lignes", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Client").Preload("Vehicle").
		Order("id desc").Limit(limit).Offset(offset).Find(&quotes).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_quotes", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": quotes, "total": total, "limit": limit, "offset": offset})
}

// Get: GET /quotes/get?id=...
func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	quote, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *QuoteHandler) load(w http.ResponseWriter, r *http.Request) (*models.Quote, bool) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return nil, false
	}
	var quote models.Quote
	err := h.DB.Preload("Lignes", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Client.Address").Preload("Client").Preload("Vehicle").First(&quote, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return nil, false
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_quote", nil)
		return nil, false
	}
	return &quote, true
}

// Create: POST /quotes
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.ClientID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"client_id": "required"})
		return
	}
	v := validation.Violations{}
	validation.QuoteLines(req.Lignes, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	quote, err := h.persistQuote(&req, false, "")
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_quote", nil)
		return
	}
	if uid, ok := auth.UserIDFromContext(r.Context()); ok {
		services.Audit(h.DB, uid, "Quote", quote.ID, "create")
	}
	httpx.JSON(w, http.StatusCreated, quote)
}

// persistQuote creates the quote with its lines and totals in one transaction.
func (h *QuoteHandler) persistQuote(req *quoteRequest, generated bool, demande string) (*models.Quote, error) {
	taux := req.TauxTVA
	if taux <= 0 {
		if gs, err := h.Setup.Get(); err == nil && gs != nil {
			taux = gs.TauxTVA
		}
	}
	if taux <= 0 {
		taux = 20
	}
	quote := models.Quote{
		ClientID:  req.ClientID,
		VehicleID: req.VehicleID,
		Statut:    models.QuoteDraft,
		Date:      time.Now(),
		ValidUntil: time.Now().AddDate(0, 1, 0),
		Lignes:    toQuoteLines(req.Lignes),
		TauxTVA:   taux,
		Notes:     req.Notes,
		Generated: generated,
		Demande:   demande,
	}
	ht, tva, ttc := h.Svc.ComputeTotals(&quote)
	quote.TotalHT, quote.TotalTVA, quote.TotalTTC = ht, tva, ttc
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		ref, err := services.NextReference(tx, &models.Quote{}, "DEV")
		if err != nil {
			return err
		}
		quote.Reference = ref
		return tx.Create(&quote).Error
	})
	if err != nil {
		return nil, err
	}
	if err := h.Memory.Record(req.Lignes); err != nil {
		log.Printf("price memory update failed: %v", err)
	}
	return &quote, nil
}

// Update: POST /quotes/update?id=... (brouillon uniquement)
func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	quote, ok := h.load(w, r)
	if !ok {
		return
	}
	if quote.Statut != models.QuoteDraft {
		httpx.JSONError(w, http.StatusConflict, "quote_not_editable", nil)
		return
	}
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.QuoteLines(req.Lignes, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	quote.Notes = req.Notes
	if req.TauxTVA > 0 {
		quote.TauxTVA = req.TauxTVA
	}
	newLines := toQuoteLines(req.Lignes)
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quote_id = ?", quote.ID).Delete(&models.QuoteLine{}).Error; err != nil {
			return err
		}
		for i := range newLines {
			newLines[i].QuoteID = quote.ID
		}
		if err := tx.Create(&newLines).Error; err != nil {
			return err
		}
		quote.Lignes = newLines
		ht, tva, ttc := h.Svc.ComputeTotals(quote)
		quote.TotalHT, quote.TotalTVA, quote.TotalTTC = ht, tva, ttc
		return tx.Save(quote).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_quote", nil)
		return
	}
	if err := h.Memory.Record(req.Lignes); err != nil {
		log.Printf("price memory update failed: %v", err)
	}
	if uid, ok := auth.UserIDFromContext(r.Context()); ok {
		services.Audit(h.DB, uid, "Quote", quote.ID, "update")
	}
	httpx.JSON(w, http.StatusOK, quote)
}

// Send: POST /quotes/send?id=...
func (h *QuoteHandler) Send(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.QuoteDraft, models.QuoteSent, "send")
}

// Accept: POST /quotes/accept?id=...
func (h *QuoteHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.QuoteSent, models.QuoteAccepted, "accept")
}

// Refuse: POST /quotes/refuse?id=...
func (h *QuoteHandler) Refuse(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.QuoteSent, models.QuoteRefused, "refuse")
}

func (h *QuoteHandler) transition(w http.ResponseWriter, r *http.Request, from, to, action string) {
	quote, ok := h.load(w, r)
	if !ok {
		return
	}
	if quote.Statut != from {
		httpx.JSONError(w, http.StatusConflict, "invalid_status_transition", map[string]string{"statut": quote.Statut})
		return
	}
	if len(quote.Lignes) == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "empty_quote", nil)
		return
	}
	if err := h.DB.Model(quote).Update("statut", to).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_quote", nil)
		return
	}
	if uid, ok := auth.UserIDFromContext(r.Context()); ok {
		services.Audit(h.DB, uid, "Quote", quote.ID, action)
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"statut": to})
}

// Generate: POST /quotes/generate
// Pipeline: quota -> assistant -> schema validation -> normalization -> save.
func (h *QuoteHandler) Generate(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if h.Generator == nil {
		httpx.JSONError(w, http.StatusServiceUnavailable, "assistant_unavailable", nil)
		return
	}
	type generateRequest struct {
		ClientID  uint   `json:"client_id"`
		VehicleID uint   `json:"vehicle_id"`
		Demande   string `json:"demande"`
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	req.Demande = strings.TrimSpace(req.Demande)
	if req.ClientID == 0 || req.Demande == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"client_id": "required", "demande": "required"})
		return
	}

	if err := h.Quota.Consume(uid); err != nil {
		if errors.Is(err, services.ErrQuotaExceeded) {
			httpx.JSONError(w, http.StatusTooManyRequests, "quota_exceeded", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
		return
	}

	genReq := ai.GenerateRequest{Demande: req.Demande}
	if gs, err := h.Setup.Get(); err == nil && gs != nil {
		genReq.TauxHoraire = gs.TauxHoraire
	}
	if req.VehicleID != 0 {
		var vehicle models.Vehicle
		if err := h.DB.First(&vehicle, req.VehicleID).Error; err == nil {
			genReq.Vehicule = fmt.Sprintf("%s %s %d, %d km", vehicle.Marque, vehicle.Modele, vehicle.Annee, vehicle.Kilometrage)
		}
	}
	if hints, err := h.Memory.Hints(20); err == nil {
		for _, hint := range hints {
			genReq.PrixConnus = append(genReq.PrixConnus, ai.PrixHint{Label: hint.Label, Type: hint.Type, PrixHT: hint.LastPriceHT})
		}
	}

	raw, err := h.Generator.GenerateLines(r.Context(), genReq)
	if err != nil {
		log.Printf("quote generation failed: %v", err)
		httpx.JSONError(w, http.StatusBadGateway, "generation_failed", nil)
		return
	}

	// Drop lines the model produced outside the schema, then normalize.
	valid := raw[:0:0]
	for _, l := range raw {
		v := validation.Violations{}
		validation.QuoteLine("ligne", l, v)
		if v.Empty() {
			valid = append(valid, l)
		}
	}
	if len(valid) == 0 {
		httpx.JSONError(w, http.StatusBadGateway, "generation_failed", nil)
		return
	}
	cleaned := lines.PostProcess(valid)
	cleaned = h.Memory.Suggest(cleaned)

	quote, err := h.persistQuote(&quoteRequest{
		ClientID:  req.ClientID,
		VehicleID: req.VehicleID,
		Lignes:    cleaned,
	}, true, req.Demande)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_quote", nil)
		return
	}
	services.Audit(h.DB, uid, "Quote", quote.ID, "generate")
	remaining, _ := h.Quota.Remaining(uid)
	httpx.JSON(w, http.StatusCreated, map[string]any{"quote": quote, "quota_remaining": remaining})
}

// PDF: GET /quotes/pdf?id=...
func (h *QuoteHandler) PDF(w http.ResponseWriter, r *http.Request) {
	quote, ok := h.load(w, r)
	if !ok {
		return
	}
	gs, err := h.Setup.Get()
	if err != nil || gs == nil {
		httpx.JSONError(w, http.StatusConflict, "garage_not_configured", nil)
		return
	}
	data := buildDocumentData("DEVIS", gs, quote.Client, quote.Vehicle)
	data.Reference = quote.Reference
	data.Date = quote.Date.Format("2006-01-02")
	data.DueDate = quote.ValidUntil.Format("2006-01-02")
	for _, l := range quote.Lignes {
		data.Lines = append(data.Lines, pdf.LineData{
			Description: l.Description,
			Quantity:    l.Quantity,
			Unit:        l.Unit,
			UnitPriceHT: l.UnitPriceHT,
			TotalHT:     l.MontantHT(),
			IsOption:    l.IsOption,
			IsIncluded:  l.IsIncluded,
		})
	}
	data.TotalHT, data.TVARate, data.TotalTVA, data.TotalTTC = quote.TotalHT, quote.TauxTVA, quote.TotalTVA, quote.TotalTTC
	out, genErr := pdf.QuotePDF(data)
	if genErr != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_generation_failed", nil)
		return
	}
	writePDF(w, h.DB, "Quote", quote.ID, strings.ToLower(quote.Reference)+".pdf", out)
}

func buildDocumentData(title string, gs *models.GarageSettings, client models.Client, vehicle models.Vehicle) pdf.DocumentData {
	clientName := client.Nom
	if client.Prenom != "" {
		clientName = client.Prenom + " " + client.Nom
	}
	if client.Type == "societe" && client.RaisonSociale != "" {
		clientName = client.RaisonSociale
	}
	return pdf.DocumentData{
		Title: title,
		Company: pdf.CompanyData{
			Name:    gs.RaisonSociale,
			Address: formatAddress(gs.Address),
			SIRET:   gs.SIRET,
			Phone:   gs.Telephone,
			Email:   gs.Email,
		},
		Client: pdf.ClientData{
			Name:    clientName,
			Address: formatAddress(client.Address),
			Email:   client.Email,
		},
		Vehicle: pdf.VehicleData{
			Label:           strings.TrimSpace(vehicle.Marque + " " + vehicle.Modele),
			Immatriculation: vehicle.Immatriculation,
			Kilometrage:     vehicle.Kilometrage,
		},
		Footer: gs.MentionsPied,
	}
}

func formatAddress(a models.Address) string {
	parts := []string{}
	if a.Ligne1 != "" {
		parts = append(parts, a.Ligne1)
	}
	if a.Ligne2 != "" {
		parts = append(parts, a.Ligne2)
	}
	if a.CodePostal != "" || a.Ville != "" {
		parts = append(parts, strings.TrimSpace(a.CodePostal+" "+a.Ville))
	}
	return strings.Join(parts, ", ")
}
