package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// NextReference produces sequential document references like DEV-2025-0042,
// scoped per prefix and year. Runs inside the caller's transaction when one
// is passed, so two concurrent creations cannot share a number.
func NextReference(tx *gorm.DB, model interface{}, prefix string) (string, error) {
	year := time.Now().Year()
	var count int64
	like := fmt.Sprintf("%s-%d-%%", prefix, year)
	if err := tx.Model(model).Where("reference LIKE ?", like).Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%04d", prefix, year, count+1), nil
}
