package models_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskhub/models"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func TestAdminRoleImpliesStaff(t *testing.T) {
	db := openDB(t)

	user := models.User{Email: "admin@example.com", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, db.Create(&user).Error)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.True(t, stored.IsStaff)
}

func TestStaffFlagPromotesRole(t *testing.T) {
	db := openDB(t)

	user := models.User{Email: "staff@example.com", PasswordHash: "x", Role: models.RoleMember, IsStaff: true}
	require.NoError(t, db.Create(&user).Error)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, models.RoleAdmin, stored.Role)
}

func TestPlainMemberStaysMember(t *testing.T) {
	db := openDB(t)

	user := models.User{Email: "member@example.com", PasswordHash: "x", Role: models.RoleMember}
	require.NoError(t, db.Create(&user).Error)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, models.RoleMember, stored.Role)
	assert.False(t, stored.IsStaff)
}

func TestRoleDisplay(t *testing.T) {
	assert.Equal(t, "Admin", (&models.User{Role: models.RoleAdmin}).RoleDisplay())
	assert.Equal(t, "Team Leader", (&models.User{Role: models.RoleTeamLeader}).RoleDisplay())
	assert.Equal(t, "Member", (&models.User{Role: models.RoleMember}).RoleDisplay())
}

func TestValidRole(t *testing.T) {
	assert.True(t, models.ValidRole(models.RoleMember))
	assert.True(t, models.ValidRole(models.RoleTeamLeader))
	assert.True(t, models.ValidRole(models.RoleAdmin))
	assert.False(t, models.ValidRole("SUPERVISOR"))
	assert.False(t, models.ValidRole(""))
}
