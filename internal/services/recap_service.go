package services

import (
	"context"

	"suivi/internal/core"
	"suivi/internal/storage"
)

// RecapService produces the monthly cost report.
type RecapService struct {
	storage *storage.Repository
}

func NewRecapService(storage *storage.Repository) *RecapService {
	return &RecapService{storage: storage}
}

// ByMonth returns one entry per month code, ascending, each carrying the
// per-project costs and the month total. Computed in a single pass; any
// storage error aborts the whole report.
func (s *RecapService) ByMonth(ctx context.Context) ([]core.MonthRecap, error) {
	return s.storage.Recap(ctx)
}
