package server

import (
	"context"
	"time"

	"go.uber.org/zap"

	"vaultflow/internal/logger"
	"vaultflow/internal/services"
)

// Sweeper periodically reconciles in-flight transactions and closes
// expansion phases whose window elapsed.
type Sweeper struct {
	transactions services.TransactionServicer
	distribution services.DistributionServicer
	interval     time.Duration
	now          func() time.Time
	log          *zap.SugaredLogger
}

// NewSweeper creates a Sweeper running every interval.
func NewSweeper(transactions services.TransactionServicer, distribution services.DistributionServicer, interval time.Duration) *Sweeper {
	return &Sweeper{
		transactions: transactions,
		distribution: distribution,
		interval:     interval,
		now:          time.Now,
		log:          logger.Named("sweep"),
	}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.SweepOnce(ctx)
		select {
		case <-ctx.Done():
			s.log.Info("sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}

// SweepOnce runs a single pass. Failures are logged and left for the next
// pass.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	start := s.now()

	res, err := s.transactions.SyncAllVaults(ctx)
	if err != nil {
		s.log.Errorw("transaction sweep failed", "error", err)
	} else {
		s.log.Infow("transaction sweep",
			"vaults", res.VaultsChecked,
			"checked", res.Checked,
			"confirmed", res.Confirmed,
			"failed", res.Failed,
			"stuck", res.Stuck,
			"errors", res.Errors,
		)
	}

	closed, err := s.distribution.CloseExpiredExpansions(ctx, start)
	if err != nil {
		s.log.Errorw("expansion close failed", "error", err)
	} else if closed > 0 {
		s.log.Infow("expansions closed", "count", closed)
	}

	s.log.Debugw("sweep finished", "duration_ms", time.Since(start).Milliseconds())
}
