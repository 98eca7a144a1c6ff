package models

import "time"

// Statuts de devis
const (
	QuoteDraft     = "brouillon"
	QuoteSent      = "envoye"
	QuoteAccepted  = "accepte"
	QuoteRefused   = "refuse"
	QuoteConverted = "facture"
)

type Quote struct {
	ID         uint   `gorm:"primaryKey"`
	Reference  string `gorm:"unique;not null;index"` // ex: DEV-2025-0001
	ClientID   uint   `gorm:"not null;index"`
	Client     Client `gorm:"foreignKey:ClientID"`
	VehicleID  uint   `gorm:"index"`
	Vehicle    Vehicle `gorm:"foreignKey:VehicleID"`
	Statut     string  `gorm:"not null;default:brouillon"`
	Date       time.Time
	ValidUntil time.Time
	Lignes     []QuoteLine `gorm:"foreignKey:QuoteID"`
	TauxTVA    float64     `gorm:"not null"`
	TotalHT    float64
	TotalTVA   float64
	TotalTTC   float64
	Notes      string
	// devis généré par l'assistant à partir d'une demande en texte libre
	Generated bool
	Demande   string // texte de la demande client si généré
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Ligne de devis (pièce, main d'oeuvre ou forfait)
type QuoteLine struct {
	ID          uint   `gorm:"primaryKey"`
	QuoteID     uint   `gorm:"not null;index"`
	Position    int    `gorm:"not null"`
	Type        string `gorm:"not null"` // piece, main_oeuvre, forfait
	Description string `gorm:"not null"`
	Quantity    float64 `gorm:"not null"`
	Unit        string  `gorm:"not null"` // unite, heure
	UnitPriceHT float64
	IsOption    bool
	IsIncluded  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MontantHT d'une ligne; les options ne comptent pas dans le total du devis.
func (l QuoteLine) MontantHT() float64 {
	return l.Quantity * l.UnitPriceHT
}
