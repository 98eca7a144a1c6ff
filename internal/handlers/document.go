package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mkeita/garage-app/internal/httpx"
	"github.com/mkeita/garage-app/internal/models"
)

// writePDF streams a generated PDF and records its trace in documents.
// A failed trace only gets logged, the download still goes through.
func writePDF(w http.ResponseWriter, db *gorm.DB, entityType string, entityID uint, filename string, data []byte) {
	doc := models.Document{
		EntityType: entityType,
		EntityID:   entityID,
		FileName:   uuid.NewString() + "-" + filename,
		MimeType:   "application/pdf",
		Size:       int64(len(data)),
	}
	if err := db.Create(&doc).Error; err != nil {
		log.Printf("document trace failed: entity=%s id=%d err=%v", entityType, entityID, err)
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// DocumentHandler lists generated document traces.
type DocumentHandler struct{ DB *gorm.DB }

func NewDocumentHandler(db *gorm.DB) *DocumentHandler { return &DocumentHandler{DB: db} }

// List: GET /documents?entity_type=Quote&entity_id=...
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	dbq := h.DB.Model(&models.Document{})
	if et := r.URL.Query().Get("entity_type"); et == "Quote" || et == "Invoice" {
		dbq = dbq.Where("entity_type = ?", et)
	}
	if v := r.URL.Query().Get("entity_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil && id > 0 {
			dbq = dbq.Where("entity_id = ?", id)
		}
	}
	var total int64
	dbq.Count(&total)
	var docs []models.Document
	if err := dbq.Order("id desc").Limit(limit).Offset(offset).Find(&docs).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_documents", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": docs, "total": total, "limit": limit, "offset": offset})
}
