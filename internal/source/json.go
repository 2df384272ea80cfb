// Package source reads snapshots from the places they are produced: JSON
// documents exported by the client, and offline SQLite dumps of the
// client's embedded object stores.
package source

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sitebook/sitebook-api/internal/domain"
)

// DecodeJSON reads a snapshot document. Unknown fields are ignored.
func DecodeJSON(r io.Reader) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	dec := json.NewDecoder(r)
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidSnapshot, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after snapshot document", domain.ErrInvalidSnapshot)
	}
	return &snap, nil
}

// LoadFile reads a snapshot document from disk
func LoadFile(path string) (*domain.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	return DecodeJSON(f)
}

// EncodeJSON writes a snapshot document
func EncodeJSON(w io.Writer, snap *domain.Snapshot, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}
