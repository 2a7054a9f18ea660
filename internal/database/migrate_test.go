package database

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestEmbeddedMigrations(t *testing.T) {
	ms := GetMigrations()
	require.Len(t, ms, 2)
	assert.Equal(t, "000001_init_schema", ms[0].String())
	assert.Equal(t, "000002_lookup_indexes", ms[1].String())
	assert.Contains(t, ms[0].UpScript, "CREATE TABLE IF NOT EXISTS post_ingredients")
	assert.Contains(t, ms[0].DownScript, "DROP TABLE IF EXISTS users")

	m := GetMigrationByVersion(2)
	require.NotNil(t, m)
	assert.Equal(t, "lookup_indexes", m.Name)
	assert.Nil(t, GetMigrationByVersion(99))
}

func TestLoadMigrations(t *testing.T) {
	t.Run("orders by version and skips bad names", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/000010_second.up.sql":   {Data: []byte("SELECT 2;")},
			"m/000010_second.down.sql": {Data: []byte("SELECT -2;")},
			"m/000002_first.up.sql":    {Data: []byte("SELECT 1;")},
			"m/000002_first.down.sql":  {Data: []byte("SELECT -1;")},
			"m/garbage.up.sql":         {Data: []byte("SELECT 0;")},
			"m/README.md":              {Data: []byte("notes")},
		}
		ms, err := LoadMigrations(fsys, "m")
		require.NoError(t, err)
		require.Len(t, ms, 2)
		assert.Equal(t, 2, ms[0].Version)
		assert.Equal(t, "first", ms[0].Name)
		assert.Equal(t, 10, ms[1].Version)
		assert.Equal(t, "SELECT -2;", ms[1].DownScript)
	})

	t.Run("missing down script", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/000001_only_up.up.sql": {Data: []byte("SELECT 1;")},
		}
		_, err := LoadMigrations(fsys, "m")
		assert.Error(t, err)
	})

	t.Run("duplicate version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/000001_a.up.sql":   {Data: []byte("SELECT 1;")},
			"m/000001_a.down.sql": {Data: []byte("SELECT 1;")},
			"m/000001_b.up.sql":   {Data: []byte("SELECT 1;")},
			"m/000001_b.down.sql": {Data: []byte("SELECT 1;")},
		}
		_, err := LoadMigrations(fsys, "m")
		assert.Error(t, err)
	})
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestRunMigrations_AppliesInOrderOnce(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	registered := []Migration{
		{Version: 1, Name: "widgets", UpScript: "CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT);", DownScript: "DROP TABLE widgets;"},
		{Version: 2, Name: "widget_seed", UpScript: "INSERT INTO widgets (name) VALUES ('first');", DownScript: "DELETE FROM widgets;"},
	}
	store := NewMigrationStore(db)

	require.NoError(t, runMigrations(ctx, db, store, registered))
	require.NoError(t, runMigrations(ctx, db, store, registered))

	applied, err := store.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, applied)

	var count int64
	require.NoError(t, db.Table("widgets").Count(&count).Error)
	assert.EqualValues(t, 1, count, "second run must not re-apply migrations")
}

func TestRunMigrations_RejectsUnknownAppliedVersion(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	store := NewMigrationStore(db)

	require.NoError(t, runMigrations(ctx, db, store, nil))
	require.NoError(t, db.Create(&MigrationLog{Version: 42, Name: "from_the_future"}).Error)

	err := runMigrations(ctx, db, store, []Migration{{Version: 1, Name: "x", UpScript: "SELECT 1;"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000042")
}

type mockMigrationStore struct {
	mock.Mock
}

func (m *mockMigrationStore) GetAppliedMigrations(ctx context.Context) ([]int, error) {
	args := m.Called(ctx)
	return args.Get(0).([]int), args.Error(1)
}

func (m *mockMigrationStore) ApplyMigration(ctx context.Context, version int, name, sql string) error {
	return m.Called(ctx, version, name, sql).Error(0)
}

func (m *mockMigrationStore) RemoveMigration(ctx context.Context, version int) error {
	return m.Called(ctx, version).Error(0)
}

func TestRunMigrations_StopsOnFailure(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	registered := []Migration{
		{Version: 1, Name: "one", UpScript: "one"},
		{Version: 2, Name: "two", UpScript: "two"},
		{Version: 3, Name: "three", UpScript: "three"},
	}

	store := new(mockMigrationStore)
	store.On("GetAppliedMigrations", ctx).Return([]int{1}, nil)
	store.On("ApplyMigration", ctx, 2, "two", "two").Return(errors.New("boom"))

	err := runMigrations(ctx, db, store, registered)
	assert.EqualError(t, err, "boom")
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "ApplyMigration", ctx, 3, "three", "three")
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}}
	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, registered))
	assert.Error(t, validateAppliedVersions([]int{1, 7, 3}, registered))
}
