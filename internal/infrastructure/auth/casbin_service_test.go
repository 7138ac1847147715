package auth

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupCasbinDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "casbin.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestCasbinService_SeedsAndEnforces(t *testing.T) {
	db := setupCasbinDB(t)

	svc, err := NewCasbinService(db, nil)
	require.NoError(t, err)

	tests := []struct {
		role, obj, act string
		allowed        bool
	}{
		{"user", "/session", "GET", true},
		{"user", "/session/logout", "POST", true},
		{"user", "/session", "DELETE", false},
		{"user", "/admin/policies", "GET", false},
		{"guest", "/session", "GET", false},
	}
	for _, tt := range tests {
		ok, err := svc.Allowed(tt.role, tt.obj, tt.act)
		require.NoError(t, err)
		assert.Equal(t, tt.allowed, ok, "%s %s %s", tt.role, tt.act, tt.obj)
	}
}

func TestCasbinService_SeedOnlyOnce(t *testing.T) {
	db := setupCasbinDB(t)

	_, err := NewCasbinService(db, nil)
	require.NoError(t, err)
	svc, err := NewCasbinService(db, nil)
	require.NoError(t, err)

	policies, err := svc.E.GetPolicy()
	require.NoError(t, err)
	assert.Len(t, policies, len(DefaultPolicies))
}
