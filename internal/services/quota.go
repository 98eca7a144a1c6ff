package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mkeita/garage-app/internal/models"
)

var ErrQuotaExceeded = errors.New("quota_exceeded")

// QuotaService enforces the per-user monthly cap on assistant generations.
type QuotaService struct {
	DB    *gorm.DB
	Limit int
}

func NewQuotaService(db *gorm.DB, limit int) *QuotaService {
	return &QuotaService{DB: db, Limit: limit}
}

func currentMonth() string { return time.Now().Format("2006-01") }

// Remaining reports how many generations the user still has this month.
func (s *QuotaService) Remaining(userID uint) (int, error) {
	var q models.AIQuota
	err := s.DB.Where("user_id = ? AND month = ?", userID, currentMonth()).First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.Limit, nil
	}
	if err != nil {
		return 0, err
	}
	rem := s.Limit - q.Used
	if rem < 0 {
		rem = 0
	}
	return rem, nil
}

// Consume takes one generation from this month's budget, creating the
// counter row on first use. Returns ErrQuotaExceeded when nothing is left.
func (s *QuotaService) Consume(userID uint) error {
	month := currentMonth()
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var q models.AIQuota
		err := tx.Where("user_id = ? AND month = ?", userID, month).First(&q).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			q = models.AIQuota{UserID: userID, Month: month, Used: 1}
			return tx.Create(&q).Error
		}
		if err != nil {
			return err
		}
		if q.Used >= s.Limit {
			return ErrQuotaExceeded
		}
		q.Used++
		return tx.Save(&q).Error
	})
}
