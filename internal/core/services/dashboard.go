package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driven"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driving"
	"github.com/custodia-labs/urbanbot/internal/logger"
)

// maxParallelCounts bounds the store queries one summary runs at a time.
const maxParallelCounts = 4

// Ensure DashboardService implements the interface.
var _ driving.DashboardService = (*DashboardService)(nil)

// DashboardService computes the dashboard overview from the event store.
type DashboardService struct {
	store   driven.EventStore
	timeout time.Duration
}

// NewDashboardService creates a new dashboard service.
// The timeout bounds each individual count.
func NewDashboardService(store driven.EventStore, timeout time.Duration) *DashboardService {
	if timeout <= 0 {
		timeout = DefaultRetrievalTimeout
	}
	return &DashboardService{store: store, timeout: timeout}
}

// Summary computes every KPI and city breakdown. Counters run concurrently;
// one that fails is marked unavailable without failing the others.
func (s *DashboardService) Summary(ctx context.Context) (domain.Summary, error) {
	logger.Section("Dashboard Summary")

	if s.store == nil {
		return domain.Summary{}, fmt.Errorf("summary: %w: no event store configured", domain.ErrRetrievalFailed)
	}

	kpiQueries := domain.DashboardKPIs()
	cityQueries := domain.CityBreakdowns()
	summary := domain.Summary{
		KPIs:       make([]domain.KPI, len(kpiQueries)),
		Breakdowns: make([]domain.Breakdown, len(cityQueries)),
	}
	errs := make([]error, len(kpiQueries)+len(cityQueries))

	var g errgroup.Group
	g.SetLimit(maxParallelCounts)

	for i, q := range kpiQueries {
		g.Go(func() error {
			kpi := domain.KPI{Name: q.Name, Label: q.Label}
			n, err := s.count(ctx, q)
			if err != nil {
				logger.Warn("kpi %s unavailable: %v", q.Name, err)
				errs[i] = err
			} else {
				kpi.Value = n
				kpi.Available = true
			}
			summary.KPIs[i] = kpi
			return nil
		})
	}

	for i, q := range cityQueries {
		g.Go(func() error {
			b := domain.Breakdown{Name: q.Name, Label: q.Label, Cities: []domain.CityCount{}}
			cities, err := s.countByCity(ctx, q)
			if err != nil {
				logger.Warn("breakdown %s unavailable: %v", q.Name, err)
				errs[len(kpiQueries)+i] = err
			} else {
				b.Cities = cities
				b.Available = true
			}
			summary.Breakdowns[i] = b
			return nil
		})
	}

	_ = g.Wait()

	var lastErr error
	failed := 0
	for _, err := range errs {
		if err != nil {
			lastErr = err
			failed++
		}
	}
	if failed == len(errs) && lastErr != nil {
		return summary, fmt.Errorf("summary: %w: %w", domain.ErrRetrievalFailed, lastErr)
	}
	return summary, nil
}

func (s *DashboardService) count(ctx context.Context, q domain.CountQuery) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.Count(ctx, q)
}

func (s *DashboardService) countByCity(ctx context.Context, q domain.CountQuery) ([]domain.CityCount, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	cities, err := s.store.CountByCity(ctx, q)
	if cities == nil && err == nil {
		cities = []domain.CityCount{}
	}
	return cities, err
}
