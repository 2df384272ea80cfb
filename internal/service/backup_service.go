package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/sitebook/sitebook-api/internal/domain"
	"github.com/sitebook/sitebook-api/internal/source"
	"github.com/sitebook/sitebook-api/internal/storage"
	"go.uber.org/zap"
)

const backupTimeFormat = "20060102T150405.000Z"

// BackupService writes snapshots of the store to object storage and restores them
type BackupService struct {
	exports *ExportService
	imports *ImportService
	store   storage.Storage
	prefix  string
	retain  int
	logger  *zap.Logger
	now     func() time.Time
}

// NewBackupService creates a new BackupService instance.
// retain is the number of newest backups kept after each backup; 0 keeps all.
func NewBackupService(
	exports *ExportService,
	imports *ImportService,
	store storage.Storage,
	prefix string,
	retain int,
	logger *zap.Logger,
) *BackupService {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = "backups"
	}
	return &BackupService{
		exports: exports,
		imports: imports,
		store:   store,
		prefix:  prefix,
		retain:  retain,
		logger:  logger,
		now:     time.Now,
	}
}

// Backup exports the store and writes it as a JSON snapshot
func (s *BackupService) Backup(ctx context.Context) (*domain.BackupDTO, error) {
	snap, err := s.exports.Export(ctx, "backup")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := source.EncodeJSON(&buf, snap, false); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	createdAt := s.now().UTC()
	name := path.Join(s.prefix, "snapshot-"+createdAt.Format(backupTimeFormat)+".json")
	size, err := s.store.Put(ctx, name, "application/json", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to store backup: %w", err)
	}

	s.logger.Info("backup written",
		zap.String("path", name),
		zap.Int64("size", size),
		zap.Int("records", snap.TotalRecords()),
	)

	if err := s.prune(ctx); err != nil {
		// The new backup is already stored
		s.logger.Warn("failed to prune old backups", zap.Error(err))
	}

	return &domain.BackupDTO{
		Path:      name,
		Size:      size,
		Records:   snap.TotalRecords(),
		CreatedAt: domain.FormatTime(createdAt),
	}, nil
}

// List returns stored backups, newest first
func (s *BackupService) List(ctx context.Context) ([]domain.BackupDTO, error) {
	objects, err := s.backups(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]domain.BackupDTO, len(objects))
	for i, obj := range objects {
		dtos[i] = domain.BackupDTO{
			Path:      obj.Name,
			Size:      obj.Size,
			CreatedAt: domain.FormatTime(obj.ModifiedAt),
		}
	}
	return dtos, nil
}

// Restore imports a stored backup through the import service
func (s *BackupService) Restore(ctx context.Context, name string) (*domain.ImportResult, error) {
	if !s.isBackupName(name) {
		return nil, fmt.Errorf("%w: %q is not a backup path", ErrInvalidInput, name)
	}

	rc, err := s.store.Get(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrBackupNotFound
		}
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}
	defer rc.Close()

	snap, err := source.DecodeJSON(rc)
	if err != nil {
		return nil, err
	}

	s.logger.Info("restoring backup",
		zap.String("path", name),
		zap.Int("records", snap.TotalRecords()),
	)
	return s.imports.Import(ctx, snap, "backup:"+name)
}

func (s *BackupService) isBackupName(name string) bool {
	return strings.HasPrefix(name, s.prefix+"/") &&
		strings.HasSuffix(name, ".json") &&
		path.Clean(name) == name
}

// backups lists backup objects under the prefix, newest first
func (s *BackupService) backups(ctx context.Context) ([]storage.Object, error) {
	objects, err := s.store.List(ctx, s.prefix+"/")
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	out := objects[:0]
	for _, obj := range objects {
		if s.isBackupName(obj.Name) {
			out = append(out, obj)
		}
	}
	// Names embed the creation time, so lexical order is chronological
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

func (s *BackupService) prune(ctx context.Context) error {
	if s.retain <= 0 {
		return nil
	}

	objects, err := s.backups(ctx)
	if err != nil {
		return err
	}
	if len(objects) <= s.retain {
		return nil
	}

	for _, obj := range objects[s.retain:] {
		if err := s.store.Delete(ctx, obj.Name); err != nil {
			return fmt.Errorf("failed to delete backup %s: %w", obj.Name, err)
		}
		s.logger.Info("pruned backup", zap.String("path", obj.Name))
	}
	return nil
}
