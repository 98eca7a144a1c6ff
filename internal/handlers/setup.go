package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/mkeita/garage-app/internal/httpx"
	"github.com/mkeita/garage-app/internal/i18n"
	"github.com/mkeita/garage-app/internal/middleware"
	"github.com/mkeita/garage-app/internal/services"
)

type SetupHandler struct {
	Service *services.SetupService
}

func NewSetupHandler(s *services.SetupService) *SetupHandler { return &SetupHandler{Service: s} }

// Handle exported wrapper for integration when composing custom middleware chains.
func (h *SetupHandler) Handle(w http.ResponseWriter, r *http.Request) { h.handle(w, r) }

type setupRequest struct {
	RaisonSociale string  `json:"raison_sociale"`
	Address1      string  `json:"address1"`
	Address2      string  `json:"address2"`
	PostalCode    string  `json:"postal_code"`
	City          string  `json:"city"`
	Country       string  `json:"country"`
	SIRET         string  `json:"siret"`
	TVAIntra      string  `json:"tva_intra"`
	Telephone     string  `json:"telephone"`
	Email         string  `json:"email"`
	IBAN          string  `json:"iban"`
	LogoURL       string  `json:"logo_url"`
	MentionsPied  string  `json:"mentions_pied"`
	TauxTVA       float64 `json:"taux_tva"`
	TauxHoraire   float64 `json:"taux_horaire"`
}

// validateSetup normalises request values and returns field -> error code.
// Codes: required, siret_length, siret_digits, tva_rate_invalid
func validateSetup(req *setupRequest) map[string]string {
	fe := make(map[string]string)
	req.RaisonSociale = strings.TrimSpace(req.RaisonSociale)
	req.Address1 = strings.TrimSpace(req.Address1)
	req.Address2 = strings.TrimSpace(req.Address2)
	req.PostalCode = strings.TrimSpace(req.PostalCode)
	req.City = strings.TrimSpace(req.City)
	req.Country = strings.ToUpper(strings.TrimSpace(req.Country))
	req.SIRET = strings.TrimSpace(req.SIRET)

	if req.RaisonSociale == "" {
		fe["raison_sociale"] = "required"
	}
	if req.Address1 == "" {
		fe["address"] = "required"
	}
	if req.PostalCode == "" {
		fe["postal_code"] = "required"
	}
	if req.City == "" {
		fe["city"] = "required"
	}
	if req.Country == "" {
		fe["country"] = "required"
	}
	if req.SIRET != "" {
		if len(req.SIRET) != 14 {
			fe["siret"] = "siret_length"
		} else {
			for _, r := range req.SIRET {
				if r < '0' || r > '9' {
					fe["siret"] = "siret_digits"
					break
				}
			}
		}
	}
	if req.TauxTVA < 0 || req.TauxTVA > 100 {
		fe["taux_tva"] = "tva_rate_invalid"
	}
	return fe
}

func (h *SetupHandler) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		configured, err := h.Service.IsConfigured()
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
			return
		}
		w.Header().Set("X-Setup-Configured", strconv.FormatBool(configured))
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		out := map[string]any{"configured": configured}
		if configured {
			if gs, err := h.Service.Get(); err == nil && gs != nil {
				out["settings"] = gs
			}
		}
		httpx.JSON(w, http.StatusOK, out)
		return
	}
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		w.Header().Set("Allow", "GET,HEAD,POST,PUT")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var req setupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	lang := middleware.LangFrom(r)
	if fe := validateSetup(&req); len(fe) > 0 {
		localized := make(map[string]string, len(fe))
		for k, v := range fe {
			localized[k] = i18n.T(lang, v)
		}
		httpx.JSON(w, http.StatusBadRequest, map[string]any{"error": "validation_error", "fields": localized, "lang": lang})
		return
	}

	input := services.SetupInput{
		RaisonSociale: req.RaisonSociale,
		Address1:      req.Address1, Address2: req.Address2,
		PostalCode: req.PostalCode, City: req.City, Country: req.Country,
		SIRET: req.SIRET, TVAIntra: req.TVAIntra,
		Telephone: req.Telephone, Email: req.Email,
		IBAN: strings.TrimSpace(req.IBAN), LogoURL: strings.TrimSpace(req.LogoURL),
		MentionsPied: req.MentionsPied,
		TauxTVA: req.TauxTVA, TauxHoraire: req.TauxHoraire,
	}
	configured, _ := h.Service.IsConfigured()
	if configured {
		updated, err := h.Service.Update(input)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "configured": true, "id": updated.ID})
		return
	}
	created, err := h.Service.Run(input)
	if err != nil {
		if err == services.ErrAlreadyConfigured {
			httpx.JSONError(w, http.StatusConflict, "already_configured", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"ok": true, "configured": true, "id": created.ID})
}
