package main

import (
	"bytes"
	"strings"
	"testing"

	"recipebox/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outputRows(out string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		rows = append(rows, strings.Fields(line))
	}
	return rows
}

func TestWriteStatus_ListsMigrationsByName(t *testing.T) {
	status := &database.SchemaStatus{
		Mode:              database.SchemaModeHybrid,
		Environment:       "production",
		Driver:            database.DriverPostgres,
		WillRunSQL:        true,
		AppliedVersions:   []int{1, 7},
		AppliedMigrations: []database.Migration{{Version: 1, Name: "init_schema"}},
		UnknownVersions:   []int{7},
		PendingMigrations: []database.Migration{{Version: 2, Name: "lookup_indexes"}},
	}

	var buf bytes.Buffer
	require.NoError(t, writeStatus(&buf, status))
	out := buf.String()

	assert.Contains(t, out, "recipebox schema: driver=postgres mode=hybrid env=production")
	rows := outputRows(out)
	assert.Contains(t, rows, []string{"VERSION", "NAME", "STATE"})
	assert.Contains(t, rows, []string{"000001", "init_schema", "applied"})
	assert.Contains(t, rows, []string{"000007", "?", "applied,", "not", "in", "this", "build"})
	assert.Contains(t, rows, []string{"000002", "lookup_indexes", "pending"})
	assert.Contains(t, out, "2 applied, 1 pending")
}

func TestWriteStatus_SQLiteSkipsMigrationTable(t *testing.T) {
	status := &database.SchemaStatus{
		Mode:               database.SchemaModeHybrid,
		Environment:        "test",
		Driver:             database.DriverSQLite,
		WillRunAutoMigrate: true,
	}

	var buf bytes.Buffer
	require.NoError(t, writeStatus(&buf, status))
	assert.Contains(t, buf.String(), "automigrate models: true")
	assert.Contains(t, buf.String(), "sql migrations: not used with sqlite in hybrid mode")
	assert.NotContains(t, buf.String(), "VERSION")
}

func TestWriteMigrations_ListsEmbeddedSet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMigrations(&buf, database.GetMigrations()))

	rows := outputRows(buf.String())
	require.Len(t, rows, len(database.GetMigrations())+1)
	assert.Equal(t, []string{"000001", "init_schema", "yes"}, rows[1])
}

func TestRollbackTarget(t *testing.T) {
	m, err := rollbackTarget([]string{"000002"})
	require.NoError(t, err)
	assert.Equal(t, "000002_lookup_indexes", m.String())

	_, err = rollbackTarget(nil)
	assert.Error(t, err)

	_, err = rollbackTarget([]string{"latest"})
	assert.Error(t, err)

	_, err = rollbackTarget([]string{"999"})
	assert.EqualError(t, err, "no embedded migration with version 999")
}
