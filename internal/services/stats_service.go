package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vendora/go-commerce-backend/internal/repo"
	"github.com/vendora/go-commerce-backend/internal/tenant"
)

// StatsResult carries a stats snapshot together with its quality. When the
// tenant database could not answer, Degraded is true, Stats holds zero
// values, and Err records the underlying cause. Callers decide for
// themselves whether degraded data is acceptable; nothing here panics or
// hides the failure behind silent zeros.
type StatsResult struct {
	Stats    repo.StoreStats `json:"stats"`
	Degraded bool            `json:"degraded"`
	Err      error           `json:"-"`
}

// StatsService computes per-store dashboard numbers.
type StatsService struct {
	Logger zerolog.Logger
}

// Snapshot returns counts and revenue for the bound store since the given
// instant. A zero since means all time. Database failures degrade rather
// than error: dashboards should render with zeros and a warning instead of
// failing the whole page.
func (s *StatsService) Snapshot(ctx context.Context, tc *tenant.TenantContext, since time.Time) StatsResult {
	stats, err := repo.TenantStats(ctx, tc.DB, since)
	if err != nil {
		s.Logger.Warn().
			Err(err).
			Str("database", tc.DatabaseName).
			Msg("stats snapshot degraded")
		return StatsResult{Degraded: true, Err: err}
	}
	return StatsResult{Stats: stats}
}
