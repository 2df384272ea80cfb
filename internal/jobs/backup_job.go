package jobs

import (
	"context"
	"time"

	"github.com/sitebook/sitebook-api/internal/domain"
	"go.uber.org/zap"
)

// BackupJobName is the name of the nightly snapshot backup job
const BackupJobName = "snapshot_backup"

// Backuper writes a snapshot of the store to object storage
type Backuper interface {
	Backup(ctx context.Context) (*domain.BackupDTO, error)
}

// BackupJob exports the store and stores it as a backup
type BackupJob struct {
	backups Backuper
	logger  *zap.Logger
	timeout time.Duration
}

// NewBackupJob creates a backup job. The timeout bounds a single run.
func NewBackupJob(backups Backuper, logger *zap.Logger, timeout time.Duration) *BackupJob {
	return &BackupJob{
		backups: backups,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes one backup
func (j *BackupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	backup, err := j.backups.Backup(ctx)
	if err != nil {
		j.logger.Error("scheduled backup failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("scheduled backup completed",
		zap.String("path", backup.Path),
		zap.Int64("size", backup.Size),
		zap.Int("records", backup.Records),
		zap.Duration("duration", time.Since(start)))
}

// RegisterBackupJob adds the backup job to the scheduler
func RegisterBackupJob(s *Scheduler, backups Backuper, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewBackupJob(backups, logger, timeout)
	return s.AddJob(BackupJobName, cronExpr, job.Run)
}
