package service

import (
	"errors"

	"github.com/sitebook/sitebook-api/internal/importer"
)

// Common service errors
var (
	// ErrImportInProgress is returned when another import is already running
	ErrImportInProgress = importer.ErrImportInProgress

	// ErrRunNotFound is returned when an import run does not exist
	ErrRunNotFound = errors.New("import run not found")

	// ErrBackupNotFound is returned when a stored backup does not exist
	ErrBackupNotFound = errors.New("backup not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
