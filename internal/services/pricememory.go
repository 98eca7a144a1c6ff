package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mkeita/garage-app/internal/lines"
	"github.com/mkeita/garage-app/internal/models"
)

// PriceMemoryService remembers the prices the garage actually billed, so
// that generated quotes stay aligned with its own pricing over time.
type PriceMemoryService struct{ DB *gorm.DB }

func NewPriceMemoryService(db *gorm.DB) *PriceMemoryService { return &PriceMemoryService{DB: db} }

// Record updates the memory from saved quote lines. Options and included
// lines carry no price signal and are skipped.
func (s *PriceMemoryService) Record(ls []lines.Line) error {
	now := time.Now()
	for _, l := range ls {
		if l.IsOption || l.IsIncluded || l.UnitPriceHT <= 0 {
			continue
		}
		key := lines.NormalizeKey(l.Description)
		if key == "" {
			continue
		}
		var pm models.PriceMemory
		err := s.DB.Where("label_key = ?", key).First(&pm).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			pm = models.PriceMemory{
				LabelKey:    key,
				Label:       l.Description,
				Type:        string(l.Type),
				LastPriceHT: l.UnitPriceHT,
				AvgPriceHT:  l.UnitPriceHT,
				TimesUsed:   1,
				LastUsedAt:  now,
			}
			if err := s.DB.Create(&pm).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			pm.Label = l.Description
			pm.AvgPriceHT = (pm.AvgPriceHT*float64(pm.TimesUsed) + l.UnitPriceHT) / float64(pm.TimesUsed+1)
			pm.LastPriceHT = l.UnitPriceHT
			pm.TimesUsed++
			pm.LastUsedAt = now
			if err := s.DB.Save(&pm).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// Suggest fills in remembered prices for lines the assistant left at zero.
// Included lines stay free; options are priced too when a match exists.
func (s *PriceMemoryService) Suggest(ls []lines.Line) []lines.Line {
	for i, l := range ls {
		if l.IsIncluded || l.UnitPriceHT != 0 {
			continue
		}
		key := lines.NormalizeKey(l.Description)
		if key == "" {
			continue
		}
		var pm models.PriceMemory
		if err := s.DB.Where("label_key = ? AND type = ?", key, string(l.Type)).First(&pm).Error; err != nil {
			continue
		}
		ls[i].UnitPriceHT = pm.LastPriceHT
	}
	return ls
}

// Hints returns the most recently used entries, capped, for prompt context.
func (s *PriceMemoryService) Hints(limit int) ([]models.PriceMemory, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []models.PriceMemory
	err := s.DB.Order("last_used_at desc").Limit(limit).Find(&out).Error
	return out, err
}
