package ledger

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/folio-works/portfolio-backend/internal/metrics"
)

// Auditor reports orphaned assets.
type Auditor struct {
	ledger Ledger
	grace  time.Duration
	log    *zap.Logger
	now    func() time.Time
}

func NewAuditor(l Ledger, grace time.Duration, log *zap.Logger) *Auditor {
	return &Auditor{ledger: l, grace: grace, log: log, now: time.Now}
}

// Run lists refs pending longer than the grace period, updates the orphan
// gauge and logs each one. It returns the orphan count.
func (a *Auditor) Run(ctx context.Context) (int, error) {
	orphans, err := a.ledger.Orphans(ctx, a.now().Add(-a.grace))
	if err != nil {
		a.log.Error("orphan audit failed", zap.Error(err))
		return 0, err
	}

	metrics.OrphanedAssets.Set(float64(len(orphans)))
	for _, ref := range orphans {
		a.log.Warn("orphaned asset", zap.String("ref", ref))
	}
	if len(orphans) > 0 {
		a.log.Info("orphan audit finished", zap.Int("orphans", len(orphans)))
	}
	return len(orphans), nil
}
