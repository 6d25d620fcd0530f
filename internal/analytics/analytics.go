// Package analytics derives aggregate reservation statistics from the full
// ledger history. It only reads; nothing here feeds back into engine state.
package analytics

import (
	"context"
	"math"
	"strings"

	"github.com/librarium/library/internal/db"
	"github.com/librarium/library/internal/repo"
)

// Service computes reporting aggregates over the reservation ledger.
type Service struct {
	ledger  *repo.LedgerRepo
	catalog *repo.CatalogRepo
}

// New creates an analytics service over the ledger and catalog.
func New(ledger *repo.LedgerRepo, catalog *repo.CatalogRepo) *Service {
	return &Service{ledger: ledger, catalog: catalog}
}

// TotalReservations counts every reservation ever made, cancelled included.
func (s *Service) TotalReservations(ctx context.Context) (int, error) {
	all, err := s.ledger.AllReservations(ctx)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

// AverageLengthDays averages the whole-day length over the full history.
// An empty history averages to zero.
func (s *Service) AverageLengthDays(ctx context.Context) (float64, error) {
	all, err := s.ledger.AllReservations(ctx)
	if err != nil {
		return 0, err
	}
	if len(all) == 0 {
		return 0, nil
	}

	var total int
	for _, r := range all {
		total += r.LengthDays()
	}
	return float64(total) / float64(len(all)), nil
}

// MostPopularItemTitle returns the title of the most reserved item, or "N/A"
// when the history is empty.
func (s *Service) MostPopularItemTitle(ctx context.Context) (string, error) {
	all, err := s.ledger.AllReservations(ctx)
	if err != nil {
		return "", err
	}
	if len(all) == 0 {
		return "N/A", nil
	}

	counts := make(map[int]int)
	best := all[0].ItemID
	for _, r := range all {
		counts[r.ItemID]++
		if counts[r.ItemID] > counts[best] {
			best = r.ItemID
		}
	}

	item, err := s.catalog.GetItem(ctx, best)
	if err != nil {
		return "N/A", nil
	}
	return item.Title, nil
}

// FulfillmentRate returns the share of still-active reservations as a
// percentage of the full history.
func (s *Service) FulfillmentRate(ctx context.Context) (float64, error) {
	all, err := s.ledger.AllReservations(ctx)
	if err != nil {
		return 0, err
	}
	if len(all) == 0 {
		return 0, nil
	}

	active := 0
	for _, r := range all {
		if r.Active {
			active++
		}
	}
	return float64(active) / float64(len(all)) * 100, nil
}

// LogPopularityScore returns ln(count+1) over the reservations of every item
// matching the title, case-insensitive. A blank title is invalid input.
func (s *Service) LogPopularityScore(ctx context.Context, title string) (float64, error) {
	if strings.TrimSpace(title) == "" {
		return 0, db.ErrTitleRequired
	}

	all, err := s.ledger.AllReservations(ctx)
	if err != nil {
		return 0, err
	}

	items, err := s.catalog.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	titles := make(map[int]string, len(items))
	for _, item := range items {
		titles[item.ID] = strings.ToLower(item.Title)
	}

	want := strings.ToLower(title)
	count := 0
	for _, r := range all {
		if titles[r.ItemID] == want {
			count++
		}
	}

	if count <= 0 {
		return 0, nil
	}
	return math.Log(float64(count) + 1), nil
}
