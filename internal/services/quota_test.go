package services

import (
	"errors"
	"testing"
)

func TestQuotaConsumeAndRemaining(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewQuotaService(db, 3)

	rem, err := svc.Remaining(1)
	if err != nil || rem != 3 {
		t.Fatalf("expected 3 remaining, got %d err=%v", rem, err)
	}
	for i := 0; i < 3; i++ {
		if err := svc.Consume(1); err != nil {
			t.Fatalf("consume %d: %v", i, err)
		}
	}
	if err := svc.Consume(1); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded got %v", err)
	}
	rem, err = svc.Remaining(1)
	if err != nil || rem != 0 {
		t.Fatalf("expected 0 remaining, got %d err=%v", rem, err)
	}
}

func TestQuotaPerUser(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewQuotaService(db, 1)
	if err := svc.Consume(1); err != nil {
		t.Fatalf("consume user 1: %v", err)
	}
	// user 2 has its own counter
	if err := svc.Consume(2); err != nil {
		t.Fatalf("consume user 2: %v", err)
	}
	if err := svc.Consume(1); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded for user 1, got %v", err)
	}
}
