package models

import "time"

// Paramètres du garage (une seule ligne en base, ID=1)
type GarageSettings struct {
	ID            uint    `gorm:"primaryKey"`
	RaisonSociale string  `gorm:"not null"`
	SIRET         string
	TVAIntra      string // numéro de TVA intracommunautaire
	Telephone     string
	Email         string
	AddressID     uint
	Address       Address `gorm:"foreignKey:AddressID"`
	IBAN          string  // affiché en pied de facture
	LogoURL       string
	TauxTVA       float64 `gorm:"not null;default:20"` // taux par défaut appliqué aux devis
	TauxHoraire   float64 // taux horaire main d'oeuvre par défaut
	MentionsPied  string  // mentions légales en pied de document
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
