package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(FS, Dir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		names[e.Name()] = true
	}
	assert.True(t, names["000001_create_students.up.sql"])
	assert.True(t, names["000001_create_students.down.sql"])
}

func TestStudentsSchemaConstrainsStatus(t *testing.T) {
	raw, err := fs.ReadFile(FS, Dir+"/000001_create_students.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "CHECK (status IN ('active', 'inactive'))")
}
