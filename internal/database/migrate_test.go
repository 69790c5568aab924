package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsFS_PairsUpAndDown(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	assert.Equal(t, ups, downs)
}

func TestInitMigration_DefinesPublishedTriple(t *testing.T) {
	b, err := fs.ReadFile(migrationsFS, "migrations/000001_init.up.sql")
	require.NoError(t, err)
	sql := string(b)
	assert.Contains(t, sql, "posts_published_triple")
	assert.Contains(t, sql, "VARCHAR(3000)")
	assert.Contains(t, sql, "UNIQUE (user_id, platform)")
}

func TestNewMigrator_InvalidURL(t *testing.T) {
	_, err := NewMigrator("not-a-url")
	assert.Error(t, err)
}
