package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/nemesis-api/internal/models"
)

func TestConnectRedis(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client, err := ConnectRedis(context.Background(), "redis://"+server.Addr()+"/0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	stored, err := server.Get("k")
	require.NoError(t, err)
	require.Equal(t, "v", stored)
}

func TestConnectRedisRejectsEmptyURL(t *testing.T) {
	_, err := ConnectRedis(context.Background(), "")
	require.Error(t, err)
}

func TestConnectPostgresRejectsEmptyDSN(t *testing.T) {
	_, err := ConnectPostgres("")
	require.Error(t, err)
}

func TestMigrateCreatesTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migrate?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	require.True(t, db.Migrator().HasTable(&models.AdminActivity{}))
	require.True(t, db.Migrator().HasTable(&models.Artwork{}))
	require.True(t, db.Migrator().HasIndex(&models.AdminActivity{}, "idx_admin_activity_created"))
}
