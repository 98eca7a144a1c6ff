package models

import "time"

// Véhicule rattaché à un client
type Vehicle struct {
	ID              uint   `gorm:"primaryKey"`
	ClientID        uint   `gorm:"not null;index"`
	Immatriculation string `gorm:"not null;index"`
	VIN             string
	Marque          string `gorm:"not null"`
	Modele          string `gorm:"not null"`
	Annee           int
	Kilometrage     int
	Carburant       string // essence, diesel, hybride, electrique
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
