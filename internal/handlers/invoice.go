package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mkeita/garage-app/internal/auth"
	"github.com/mkeita/garage-app/internal/httpx"
	"github.com/mkeita/garage-app/internal/models"
	"github.com/mkeita/garage-app/internal/pdf"
	"github.com/mkeita/garage-app/internal/services"
)

type InvoiceHandler struct {
	DB    *gorm.DB
	Svc   *services.InvoiceService
	Setup *services.SetupService
}

func NewInvoiceHandler(db *gorm.DB, svc *services.InvoiceService, setup *services.SetupService) *InvoiceHandler {
	return &InvoiceHandler{DB: db, Svc: svc, Setup: setup}
}

// List: GET /invoices
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	dbq := h.DB.Model(&models.Invoice{})
	if statut := strings.TrimSpace(r.URL.Query().Get("statut")); statut != "" {
		safe := searchSanitizer.ReplaceAllString(statut, "")
		dbq = dbq.Where("statut = ?", strings.ToLower(safe))
	}
	var total int64
	dbq.Count(&total)
	var invs []models.Invoice
	if err := dbq.Preload("Lignes", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Client").Preload("Paiements").
		Order("id desc").Limit(limit).Offset(offset).Find(&invs).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invs, "total": total, "limit": limit, "offset": offset})
}

func (h *InvoiceHandler) load(w http.ResponseWriter, r *http.Request) (*models.Invoice, bool) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return nil, false
	}
	var inv models.Invoice
	err := h.DB.Preload("Lignes", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Client.Address").Preload("Client").Preload("Vehicle").Preload("Paiements").
		First(&inv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return nil, false
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_invoice", nil)
		return nil, false
	}
	return &inv, true
}

// Get: GET /invoices/get?id=...
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Create: POST /invoices — facture créée depuis un devis accepté.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	type createReq struct {
		QuoteID uint `json:"quote_id"`
	}
	var req createReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.QuoteID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"quote_id": "required"})
		return
	}
	h.createFromQuote(w, r, req.QuoteID)
}

// Convert: POST /quotes/convert?id=... — même opération, id en query.
func (h *InvoiceHandler) Convert(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	h.createFromQuote(w, r, id)
}

func (h *InvoiceHandler) createFromQuote(w http.ResponseWriter, r *http.Request, quoteID uint) {
	var quote models.Quote
	if err := h.DB.Preload("Lignes", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).First(&quote, quoteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "quote_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_quote", nil)
		return
	}
	if quote.Statut != models.QuoteAccepted {
		httpx.JSONError(w, http.StatusConflict, "quote_not_accepted", map[string]string{"statut": quote.Statut})
		return
	}

	origin := quote.ID
	inv := models.Invoice{
		QuoteID:   &origin,
		ClientID:  quote.ClientID,
		VehicleID: quote.VehicleID,
		Statut:    models.InvoiceDraft,
		Date:      time.Now(),
		DueDate:   time.Now().AddDate(0, 1, 0),
		TauxTVA:   quote.TauxTVA,
		Notes:     quote.Notes,
	}
	// Les options non retenues ne passent pas sur la facture.
	pos := 0
	for _, l := range quote.Lignes {
		if l.IsOption {
			continue
		}
		inv.Lignes = append(inv.Lignes, models.InvoiceLine{
			Position:    pos,
			Type:        l.Type,
			Description: l.Description,
			Quantity:    l.Quantity,
			Unit:        l.Unit,
			UnitPriceHT: l.UnitPriceHT,
			IsIncluded:  l.IsIncluded,
		})
		pos++
	}
	ht, tva, ttc := h.Svc.ComputeTotals(&inv)
	inv.TotalHT, inv.TotalTVA, inv.TotalTTC = ht, tva, ttc

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		ref, err := services.NextReference(tx, &models.Invoice{}, "FAC")
		if err != nil {
			return err
		}
		inv.Reference = ref
		if err := tx.Create(&inv).Error; err != nil {
			return err
		}
		return tx.Model(&quote).Update("statut", models.QuoteConverted).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_invoice", nil)
		return
	}
	if uid, ok := auth.UserIDFromContext(r.Context()); ok {
		services.Audit(h.DB, uid, "Invoice", inv.ID, "create")
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

// Finalize: POST /invoices/finalize?id=...
func (h *InvoiceHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	if len(inv.Lignes) == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "empty_invoice", nil)
		return
	}
	if inv.Statut != models.InvoiceDraft {
		httpx.JSONError(w, http.StatusConflict, "invalid_status_transition", map[string]string{"statut": inv.Statut})
		return
	}
	if err := h.DB.Model(inv).Update("statut", models.InvoiceFinalized).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_finalize", nil)
		return
	}
	if uid, ok := auth.UserIDFromContext(r.Context()); ok {
		services.Audit(h.DB, uid, "Invoice", inv.ID, "finalize")
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"statut": models.InvoiceFinalized})
}

// Pay: POST /invoices/pay?id=... — enregistre un paiement.
func (h *InvoiceHandler) Pay(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	if inv.Statut != models.InvoiceFinalized {
		httpx.JSONError(w, http.StatusConflict, "invoice_not_finalized", map[string]string{"statut": inv.Statut})
		return
	}
	type payReq struct {
		Montant     float64 `json:"montant"`
		Mode        string  `json:"mode"`
		Commentaire string  `json:"commentaire"`
	}
	var req payReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.Montant <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"montant": "must_be_positive"})
		return
	}
	mode := strings.TrimSpace(strings.ToLower(req.Mode))
	if mode == "" {
		mode = "virement"
	}
	payment := models.Payment{
		InvoiceID: inv.ID, Date: time.Now(), Montant: req.Montant,
		Mode: mode, Statut: "paid", Commentaire: req.Commentaire,
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		inv.Paiements = append(inv.Paiements, payment)
		if h.Svc.AmountPaid(inv)+1e-9 >= inv.TotalTTC {
			return tx.Model(inv).Update("statut", models.InvoicePaid).Error
		}
		return nil
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_record_payment", nil)
		return
	}
	if uid, ok := auth.UserIDFromContext(r.Context()); ok {
		services.Audit(h.DB, uid, "Invoice", inv.ID, "payment")
	}
	var fresh models.Invoice
	h.DB.Preload("Paiements").First(&fresh, inv.ID)
	httpx.JSON(w, http.StatusCreated, map[string]any{"payment_id": payment.ID, "statut": fresh.Statut, "paid": h.Svc.AmountPaid(&fresh)})
}

// PDF: GET /invoices/pdf?id=...
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	gs, err := h.Setup.Get()
	if err != nil || gs == nil {
		httpx.JSONError(w, http.StatusConflict, "garage_not_configured", nil)
		return
	}
	data := buildDocumentData("FACTURE", gs, inv.Client, inv.Vehicle)
	if gs.IBAN != "" {
		data.Footer = strings.TrimSpace(data.Footer + "\nIBAN : " + gs.IBAN)
	}
	data.Reference = inv.Reference
	data.Date = inv.Date.Format("2006-01-02")
	data.DueDate = inv.DueDate.Format("2006-01-02")
	for _, l := range inv.Lignes {
		data.Lines = append(data.Lines, pdf.LineData{
			Description: l.Description,
			Quantity:    l.Quantity,
			Unit:        l.Unit,
			UnitPriceHT: l.UnitPriceHT,
			TotalHT:     l.MontantHT(),
			IsIncluded:  l.IsIncluded,
		})
	}
	data.TotalHT, data.TVARate, data.TotalTVA, data.TotalTTC = inv.TotalHT, inv.TauxTVA, inv.TotalTVA, inv.TotalTTC
	out, genErr := pdf.InvoicePDF(data)
	if genErr != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_generation_failed", nil)
		return
	}
	writePDF(w, h.DB, "Invoice", inv.ID, strings.ToLower(inv.Reference)+".pdf", out)
}
