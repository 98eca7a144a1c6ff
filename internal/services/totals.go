package services

import (
	"github.com/mkeita/garage-app/internal/models"
)

// QuoteService encapsulates quote-related business logic.
type QuoteService struct{}

func NewQuoteService() *QuoteService { return &QuoteService{} }

// ComputeTotals computes HT, TVA and TTC amounts for a quote from its lines.
// Option lines are shown to the client but never counted; included lines
// are free by construction.
func (s *QuoteService) ComputeTotals(q *models.Quote) (ht, tva, ttc float64) {
	if q == nil {
		return 0, 0, 0
	}
	for _, l := range q.Lignes {
		if l.IsOption {
			continue
		}
		ht += l.MontantHT()
	}
	rate := q.TauxTVA
	if rate < 0 {
		rate = 0
	}
	tva = ht * rate / 100
	ttc = ht + tva
	return ht, tva, ttc
}

// InvoiceService encapsulates invoice-related business logic.
type InvoiceService struct{}

func NewInvoiceService() *InvoiceService { return &InvoiceService{} }

func (s *InvoiceService) ComputeTotals(inv *models.Invoice) (ht, tva, ttc float64) {
	if inv == nil {
		return 0, 0, 0
	}
	for _, l := range inv.Lignes {
		ht += l.MontantHT()
	}
	rate := inv.TauxTVA
	if rate < 0 {
		rate = 0
	}
	tva = ht * rate / 100
	ttc = ht + tva
	return ht, tva, ttc
}

// AmountPaid sums completed payments on an invoice.
func (s *InvoiceService) AmountPaid(inv *models.Invoice) float64 {
	var total float64
	for _, p := range inv.Paiements {
		if p.Statut == "paid" {
			total += p.Montant
		}
	}
	return total
}
