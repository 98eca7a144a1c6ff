package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mkeita/garage-app/internal/models"
)

type SetupInput struct {
	RaisonSociale string
	Address1      string
	Address2      string
	PostalCode    string
	City          string
	Country       string
	SIRET         string
	TVAIntra      string
	Telephone     string
	Email         string
	IBAN          string
	LogoURL       string
	MentionsPied  string
	TauxTVA       float64
	TauxHoraire   float64
}

type SetupService struct{ DB *gorm.DB }

func NewSetupService(db *gorm.DB) *SetupService { return &SetupService{DB: db} }

var ErrAlreadyConfigured = errors.New("garage_already_configured")

func (s *SetupService) IsConfigured() (bool, error) {
	var count int64
	if err := s.DB.Model(&models.GarageSettings{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *SetupService) Run(in SetupInput) (*models.GarageSettings, error) {
	configured, err := s.IsConfigured()
	if err != nil {
		return nil, err
	}
	if configured {
		return nil, ErrAlreadyConfigured
	}
	addr := models.Address{Ligne1: in.Address1, Ligne2: in.Address2, CodePostal: in.PostalCode, Ville: in.City, Pays: in.Country, Type: "principale"}
	if err := s.DB.Create(&addr).Error; err != nil {
		return nil, err
	}
	taux := in.TauxTVA
	if taux <= 0 {
		taux = 20
	}
	gs := models.GarageSettings{
		RaisonSociale: in.RaisonSociale,
		SIRET:         in.SIRET,
		TVAIntra:      in.TVAIntra,
		Telephone:     in.Telephone,
		Email:         in.Email,
		IBAN:          in.IBAN,
		LogoURL:       in.LogoURL,
		MentionsPied:  in.MentionsPied,
		AddressID:     addr.ID,
		TauxTVA:       taux,
		TauxHoraire:   in.TauxHoraire,
	}
	if err := s.DB.Create(&gs).Error; err != nil {
		return nil, err
	}
	return &gs, nil
}

// Get returns the single settings record if present (with address), otherwise nil.
func (s *SetupService) Get() (*models.GarageSettings, error) {
	var gs models.GarageSettings
	err := s.DB.Preload("Address").First(&gs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &gs, nil
}

// Update modifies the existing settings (single garage app).
func (s *SetupService) Update(in SetupInput) (*models.GarageSettings, error) {
	var gs models.GarageSettings
	if err := s.DB.Preload("Address").First(&gs).Error; err != nil {
		return nil, err
	}
	gs.RaisonSociale = in.RaisonSociale
	gs.SIRET = in.SIRET
	gs.TVAIntra = in.TVAIntra
	gs.Telephone = in.Telephone
	gs.Email = in.Email
	gs.IBAN = in.IBAN
	gs.LogoURL = in.LogoURL
	gs.MentionsPied = in.MentionsPied
	if in.TauxTVA > 0 {
		gs.TauxTVA = in.TauxTVA
	}
	if in.TauxHoraire > 0 {
		gs.TauxHoraire = in.TauxHoraire
	}
	if err := s.DB.Model(&models.Address{}).Where("id = ?", gs.AddressID).Updates(models.Address{Ligne1: in.Address1, Ligne2: in.Address2, CodePostal: in.PostalCode, Ville: in.City, Pays: in.Country}).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Save(&gs).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Preload("Address").First(&gs, gs.ID).Error; err != nil {
		return nil, err
	}
	return &gs, nil
}
