package driving

import (
	"context"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
)

// DashboardService provides the headline counters of the city dashboard.
type DashboardService interface {
	// Summary computes KPIs and per-city breakdowns.
	// Individual failures mark entries unavailable; the error is set only
	// when nothing could be computed.
	Summary(ctx context.Context) (domain.Summary, error)
}
