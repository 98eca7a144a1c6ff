package models

import "time"

// Document généré (PDF de devis ou de facture)
type Document struct {
	ID         uint   `gorm:"primaryKey"`
	EntityType string `gorm:"not null"` // "Quote" ou "Invoice"
	EntityID   uint   `gorm:"not null;index"`
	FileName   string `gorm:"not null"`
	MimeType   string `gorm:"not null"`
	Size       int64
	CreatedAt  time.Time
}
