package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles. The role travels inside issued tokens, so the team and task
// services never look these rows up.
const (
	RoleMember     = "MEMBER"
	RoleTeamLeader = "TEAM_LEADER"
	RoleAdmin      = "ADMIN"
)

// User represents an account in the user service. Email is the login
// identifier; there is no username.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FirstName    string    `gorm:"size:150" json:"first_name"`
	LastName     string    `gorm:"size:150" json:"last_name"`
	Role         string    `gorm:"size:20;default:'MEMBER'" json:"role"`
	IsActive     bool      `gorm:"default:false" json:"is_active"`
	IsStaff      bool      `gorm:"default:false" json:"is_staff"`
	IsSuperuser  bool      `gorm:"default:false" json:"is_superuser"`
	DateJoined   time.Time `gorm:"autoCreateTime" json:"date_joined"`
}

// BeforeSave keeps role and is_staff in sync: ADMIN implies staff, and a
// staff flag on a non-admin promotes the role. Runs on every create/update.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Role == RoleAdmin {
		u.IsStaff = true
	} else if u.IsStaff && u.Role != RoleAdmin {
		u.Role = RoleAdmin
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsTeamLeader() bool {
	return u.Role == RoleTeamLeader
}

// RoleDisplay returns the human-readable role label.
func (u *User) RoleDisplay() string {
	switch u.Role {
	case RoleAdmin:
		return "Admin"
	case RoleTeamLeader:
		return "Team Leader"
	default:
		return "Member"
	}
}

// ValidRole reports whether s is one of the three known roles.
func ValidRole(s string) bool {
	return s == RoleMember || s == RoleTeamLeader || s == RoleAdmin
}
