package models

import "time"

// Statuts de facture
const (
	InvoiceDraft     = "brouillon"
	InvoiceFinalized = "finalisee"
	InvoicePaid      = "payee"
	InvoiceCancelled = "annulee"
)

type Invoice struct {
	ID        uint   `gorm:"primaryKey"`
	Reference string `gorm:"unique;not null;index"` // ex: FAC-2025-0001
	QuoteID   *uint  `gorm:"index"`                 // devis d'origine, optionnel
	ClientID  uint   `gorm:"not null;index"`
	Client    Client  `gorm:"foreignKey:ClientID"`
	VehicleID uint    `gorm:"index"`
	Vehicle   Vehicle `gorm:"foreignKey:VehicleID"`
	Statut    string  `gorm:"not null;default:brouillon"`
	Date      time.Time
	DueDate   time.Time
	Lignes    []InvoiceLine `gorm:"foreignKey:InvoiceID"`
	TauxTVA   float64       `gorm:"not null"`
	TotalHT   float64
	TotalTVA  float64
	TotalTTC  float64
	Paiements []Payment `gorm:"foreignKey:InvoiceID"`
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type InvoiceLine struct {
	ID          uint   `gorm:"primaryKey"`
	InvoiceID   uint   `gorm:"not null;index"`
	Position    int    `gorm:"not null"`
	Type        string `gorm:"not null"`
	Description string `gorm:"not null"`
	Quantity    float64 `gorm:"not null"`
	Unit        string  `gorm:"not null"`
	UnitPriceHT float64
	IsIncluded  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (l InvoiceLine) MontantHT() float64 {
	return l.Quantity * l.UnitPriceHT
}
