// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"buildsite/internal/db"
	"buildsite/internal/models"
)

// Open returns an in-memory sqlite database with every model migrated. A
// single connection keeps the memory database alive for the whole test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(gdb))
	return gdb
}

// User inserts an active user with role.
func User(t testing.TB, gdb *gorm.DB, name string, role models.Role) models.User {
	t.Helper()
	u := models.User{Email: name + "@example.com", Name: name, Role: role, Status: models.UserActive}
	require.NoError(t, gdb.Create(&u).Error)
	return u
}

func Project(t testing.TB, gdb *gorm.DB, name string, manager, client models.User) models.Project {
	t.Helper()
	p := models.Project{Name: name, ManagerID: manager.ID, ClientID: client.ID, Status: models.ProjectPlanning}
	require.NoError(t, gdb.Create(&p).Error)
	return p
}

func Member(t testing.TB, gdb *gorm.DB, project models.Project, user models.User, role models.Role) models.ProjectMember {
	t.Helper()
	m := models.ProjectMember{ProjectID: project.ID, UserID: user.ID, Role: role}
	require.NoError(t, gdb.Create(&m).Error)
	return m
}
