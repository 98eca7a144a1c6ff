package models

import "time"

// Compteur mensuel de générations de devis par l'assistant.
// Une ligne par utilisateur et par mois (format "2006-01").
type AIQuota struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;index:idx_quota_user_month,unique"`
	Month     string `gorm:"not null;index:idx_quota_user_month,unique"`
	Used      int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
