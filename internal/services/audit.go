package services

import (
	"log"

	"gorm.io/gorm"

	"github.com/mkeita/garage-app/internal/models"
)

// Audit records a change trace. Failures get logged, never surfaced: a
// broken audit trail must not block the business operation.
func Audit(db *gorm.DB, userID uint, entityType string, entityID uint, action string) {
	entry := models.AuditLog{UserID: userID, EntityType: entityType, EntityID: entityID, Action: action}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("audit log failed: entity=%s id=%d action=%s err=%v", entityType, entityID, action, err)
	}
}
