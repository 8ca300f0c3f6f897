package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrationsAreEmbeddedAndAnnotated(t *testing.T) {
	entries, err := fs.ReadDir(migrations, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
		raw, err := fs.ReadFile(migrations, "migrations/"+e.Name())
		require.NoError(t, err)
		body := string(raw)
		require.Contains(t, body, "-- +goose Up", e.Name())
		require.Contains(t, body, "-- +goose Down", e.Name())
	}
	require.Contains(t, names, "00003_create_rsvps.sql")
}

func TestRSVPMigrationEnforcesUniquenessAndCascade(t *testing.T) {
	raw, err := fs.ReadFile(migrations, "migrations/00003_create_rsvps.sql")
	require.NoError(t, err)
	body := string(raw)
	require.True(t, strings.Contains(body, "UNIQUE (event_id, user_id)"))
	require.True(t, strings.Contains(body, "ON DELETE CASCADE"))
	require.True(t, strings.Contains(body, "WHERE reminder_enabled = TRUE AND reminder_sent = FALSE"))
}
