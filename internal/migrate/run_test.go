package migrate

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrator_VersionsSorted(t *testing.T) {
	m := &Migrator{fsys: fstest.MapFS{
		"migrations/0002_indexes.sql": {Data: []byte("SELECT 1")},
		"migrations/0001_init.sql":    {Data: []byte("SELECT 1")},
		"migrations/README.md":        {Data: []byte("notes")},
	}}

	versions, err := m.versions()
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_init", "0002_indexes"}, versions)
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	m := New(nil, nil)

	versions, err := m.versions()
	require.NoError(t, err)
	require.NotEmpty(t, versions)
	assert.Equal(t, "0001_init", versions[0])

	raw, err := migrationsFS.ReadFile("migrations/0001_init.sql")
	require.NoError(t, err)
	for _, table := range []string{"jobs", "questions", "assessments", "applications"} {
		assert.Contains(t, string(raw), "CREATE TABLE IF NOT EXISTS "+table)
	}
}
