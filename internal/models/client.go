package models

import "time"

// Client du garage (particulier ou société)
type Client struct {
	ID            uint   `gorm:"primaryKey"`
	Type          string `gorm:"not null"` // "particulier" ou "societe"
	Nom           string `gorm:"index"`
	Prenom        string
	RaisonSociale string `gorm:"index"` // si société
	Email         string `gorm:"index"`
	Telephone     string
	AddressID     uint
	Address       Address   `gorm:"foreignKey:AddressID"`
	Vehicules     []Vehicle `gorm:"foreignKey:ClientID"`
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
