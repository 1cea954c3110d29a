package models

import "time"

// Team groups users for task assignment. Membership lives in TeamUser rows;
// user identities are plain IDs from the user service.
type Team struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null;size:255" json:"name"`
	Description  string    `json:"description"`
	CreationDate time.Time `gorm:"autoCreateTime" json:"creation_date"`

	// Relations
	Members []TeamUser `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

// TeamUser is one user's membership in one team. The (team_id, user_id)
// pair is unique; at most one row per team carries LeadsTeam, maintained by
// the leader-change logic rather than a database constraint.
type TeamUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TeamID       uint      `gorm:"not null;uniqueIndex:idx_team_user" json:"team_id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_team_user" json:"user_id"`
	UserFullName string    `gorm:"size:255" json:"user_full_name"`
	JoinedDate   time.Time `gorm:"autoCreateTime" json:"joined_date"`
	LeadsTeam    bool      `gorm:"default:false" json:"leads_team"`
}

// RoleLabel is the member's role as shown in team details.
func (tu *TeamUser) RoleLabel() string {
	if tu.LeadsTeam {
		return "Team Leader"
	}
	return "Member"
}
