package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sitebook/sitebook-api/internal/domain"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// LegacyStore reads an offline dump of the client's embedded database.
// Each object store is a table named after its collection with the columns
// key INTEGER PRIMARY KEY and value TEXT holding the JSON record.
type LegacyStore struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// OpenLegacyStore opens a dump read-only
func OpenLegacyStore(path string, logger *zap.Logger) (*LegacyStore, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("opening legacy store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening legacy store: %w", err)
	}
	return &LegacyStore{db: db, path: path, logger: logger}, nil
}

// Close releases the underlying database handle
func (s *LegacyStore) Close() error {
	return s.db.Close()
}

// Load reads every collection fully into memory and assembles a snapshot.
// A missing table is an empty collection.
func (s *LegacyStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	existing, err := s.tables(ctx)
	if err != nil {
		return nil, err
	}

	doc := make(map[string][]json.RawMessage)
	for _, name := range domain.CollectionNames() {
		if !existing[name] {
			s.logger.Debug("legacy store has no table for collection", zap.String("collection", name))
			continue
		}
		records, err := s.readTable(ctx, name)
		if err != nil {
			return nil, err
		}
		doc[name] = records
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("assembling snapshot: %w", err)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidSnapshot, err)
	}

	s.logger.Info("legacy store loaded",
		zap.String("path", s.path),
		zap.Int("records", snap.TotalRecords()),
	)
	return &snap, nil
}

func (s *LegacyStore) tables(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table'")
	if err != nil {
		return nil, fmt.Errorf("listing legacy tables: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("listing legacy tables: %w", err)
		}
		out[name] = true
	}
	return out, rows.Err()
}

func (s *LegacyStore) readTable(ctx context.Context, name string) ([]json.RawMessage, error) {
	// name comes from the fixed collection list, never from input
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT key, value FROM "%s" ORDER BY key`, name))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var (
			key   int64
			value string
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		if !json.Valid([]byte(value)) {
			return nil, fmt.Errorf("%w: %s key %d is not valid JSON", domain.ErrMalformedRecord, name, key)
		}
		records = append(records, json.RawMessage(value))
	}
	return records, rows.Err()
}
