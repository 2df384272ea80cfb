package migrations_test

import (
	"io/fs"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/sitebook/sitebook-api/internal/domain"
	"github.com/sitebook/sitebook-api/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

var createTable = regexp.MustCompile(`(?s)CREATE TABLE (\w+) \((.*?)\n\);`)

func loadTables(t *testing.T) map[string]string {
	t.Helper()
	files, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	tables := make(map[string]string)
	for _, name := range files {
		body, err := fs.ReadFile(migrations.FS, name)
		require.NoError(t, err)
		text := string(body)
		assert.Contains(t, text, "-- +goose Up", name)
		assert.Contains(t, text, "-- +goose Down", name)
		for _, m := range createTable.FindAllStringSubmatch(text, -1) {
			tables[m[1]] = m[2]
		}
	}
	return tables
}

// Every column gorm writes must exist in the migrated schema
func TestMigrationsCoverModels(t *testing.T) {
	tables := loadTables(t)
	cache := &sync.Map{}

	models := append(domain.ManagedModels(), &domain.ImportRun{})
	for _, model := range models {
		s, err := schema.Parse(model, cache, schema.NamingStrategy{})
		require.NoError(t, err)

		body, ok := tables[s.Table]
		if !assert.True(t, ok, "no CREATE TABLE for %s", s.Table) {
			continue
		}
		for _, column := range s.DBNames {
			assert.Regexp(t, `(?m)^\s+`+regexp.QuoteMeta(column)+`\s`, body, "%s.%s", s.Table, column)
		}
	}
}

func TestMigrationsDropWhatTheyCreate(t *testing.T) {
	tables := loadTables(t)
	var all strings.Builder
	files, _ := fs.Glob(migrations.FS, "*.sql")
	for _, name := range files {
		body, _ := fs.ReadFile(migrations.FS, name)
		all.Write(body)
	}
	for table := range tables {
		assert.Contains(t, all.String(), "DROP TABLE IF EXISTS "+table+";")
	}
}
