package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunSweepJobName is the name of the job that closes abandoned import runs
const RunSweepJobName = "import_run_sweep"

// RunSweeper closes import runs left running by a stopped process
type RunSweeper interface {
	RecoverAbandoned(ctx context.Context, olderThan time.Duration) (int64, error)
}

// RegisterRunSweepJob adds an hourly job marking runs older than maxAge as rolled back
func RegisterRunSweepJob(s *Scheduler, sweeper RunSweeper, logger *zap.Logger, maxAge time.Duration) error {
	return s.AddJob(RunSweepJobName, "@every 1h", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if _, err := sweeper.RecoverAbandoned(ctx, maxAge); err != nil {
			logger.Error("import run sweep failed", zap.Error(err))
		}
	})
}
