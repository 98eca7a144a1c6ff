package models

import "time"

// Mémoire de prix: dernier prix pratiqué par le garage pour un libellé
// normalisé. Alimentée à chaque devis sauvegardé, relue lors de la
// génération pour proposer des montants cohérents avec l'historique.
type PriceMemory struct {
	ID            uint   `gorm:"primaryKey"`
	LabelKey      string `gorm:"unique;not null;index"` // libellé normalisé (minuscules, sans accents)
	Label         string `gorm:"not null"`              // dernier libellé affiché
	Type          string `gorm:"not null"`              // piece, main_oeuvre, forfait
	LastPriceHT   float64
	AvgPriceHT    float64
	TimesUsed     int
	LastUsedAt    time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
