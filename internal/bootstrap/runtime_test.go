package bootstrap

import (
	"context"
	"testing"

	"socialfeed/internal/config"
	"socialfeed/internal/database"
	"socialfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func countUsers(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	return n
}

func TestSeedDemoIfEmpty(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		existing  bool
		wantSeeds bool
	}{
		{"empty development database", "development", false, true},
		{"populated database", "development", true, false},
		{"production", "production", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openTestDB(t)
			if tt.existing {
				require.NoError(t, db.Create(&models.User{Username: "existing", Email: "existing@example.com", Password: "x"}).Error)
			}
			before := countUsers(t, db)

			err := SeedDemoIfEmpty(context.Background(), &config.Config{Env: tt.env}, db)
			require.NoError(t, err)

			after := countUsers(t, db)
			if tt.wantSeeds {
				assert.Greater(t, after, before)
				var posts int64
				require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
				assert.Positive(t, posts)
			} else {
				assert.Equal(t, before, after)
			}
		})
	}
}

func TestInitRuntime_SQLite(t *testing.T) {
	cfg := &config.Config{
		Env:        "test",
		DBDriver:   "sqlite",
		SQLitePath: "file:" + t.Name() + "?mode=memory&cache=shared",
		RedisURL:   "127.0.0.1:1",
	}
	db, rdb, err := InitRuntime(context.Background(), cfg, Options{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	assert.Nil(t, rdb)
	assert.Zero(t, countUsers(t, db))
}
