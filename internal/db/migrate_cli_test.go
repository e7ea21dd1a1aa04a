package db

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrateCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")
	var out bytes.Buffer

	require.NoError(t, RunMigrateCommand([]string{"status"}, dbPath, &out))
	assert.Contains(t, out.String(), "Current version: 0 (dirty: false)")

	out.Reset()
	require.NoError(t, RunMigrateCommand([]string{"up"}, dbPath, &out))
	assert.Contains(t, out.String(), "All migrations applied")
	assert.Contains(t, out.String(), "Current version: 2")

	out.Reset()
	require.NoError(t, RunMigrateCommand([]string{"down"}, dbPath, &out))
	assert.Contains(t, out.String(), "Current version: 1")

	// NewDB brings the schema back up to date.
	database, err := NewDB(dbPath)
	require.NoError(t, err)
	version, _, err := database.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	require.NoError(t, database.Close())
}

func TestRunMigrateCommand_Errors(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing action", nil, "missing action"},
		{"unknown action", []string{"sideways"}, `unknown action "sideways"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := RunMigrateCommand(tt.args, dbPath, &out)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, out.String(), "Usage: calibrate")
		})
	}
}

func TestRunMigrateCommand_Help(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, RunMigrateCommand([]string{"help"}, "unused.db", &out))
	assert.Contains(t, out.String(), "status  Show the current schema version")
}
