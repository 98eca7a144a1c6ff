package main

// Helper: go run ./cmd/server -backfill-references
// Assigns references to quotes and invoices created before numbering existed.

import (
	"flag"
	"log"

	"gorm.io/gorm"

	"github.com/mkeita/garage-app/internal/db"
	"github.com/mkeita/garage-app/internal/models"
	"github.com/mkeita/garage-app/internal/services"
)

var backfillFlag = flag.Bool("backfill-references", false, "Backfill missing quote/invoice references and exit")

func runBackfillReferences() {
	conn, err := db.ConnectAndMigrate()
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	updated := 0

	var quotes []models.Quote
	if err := conn.Where("reference = '' OR reference IS NULL").Order("id asc").Find(&quotes).Error; err != nil {
		log.Fatalf("list quotes: %v", err)
	}
	for _, q := range quotes {
		err := conn.Transaction(func(tx *gorm.DB) error {
			ref, err := services.NextReference(tx, &models.Quote{}, "DEV")
			if err != nil {
				return err
			}
			return tx.Model(&models.Quote{}).Where("id = ?", q.ID).Update("reference", ref).Error
		})
		if err != nil {
			log.Printf("quote %d: %v", q.ID, err)
			continue
		}
		updated++
	}

	var invoices []models.Invoice
	if err := conn.Where("reference = '' OR reference IS NULL").Order("id asc").Find(&invoices).Error; err != nil {
		log.Fatalf("list invoices: %v", err)
	}
	for _, inv := range invoices {
		err := conn.Transaction(func(tx *gorm.DB) error {
			ref, err := services.NextReference(tx, &models.Invoice{}, "FAC")
			if err != nil {
				return err
			}
			return tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).Update("reference", ref).Error
		})
		if err != nil {
			log.Printf("invoice %d: %v", inv.ID, err)
			continue
		}
		updated++
	}
	log.Printf("Backfill done: %d updated", updated)
}
