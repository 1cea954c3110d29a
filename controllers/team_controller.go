package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taskhub/models"
	"taskhub/utils"
)

// TeamController handles teams and their membership rows. User identities
// are opaque IDs plus a caller-supplied full name; the team service never
// calls back into the user service.
type TeamController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTeamController(db *gorm.DB, logger *log.Logger) *TeamController {
	return &TeamController{DB: db, Logger: logger}
}

type CreateTeamRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	FullName    string `json:"full_name" validate:"required,max=255"`
	LeaderID    uint   `json:"leader_id"`
}

type UpdateTeamRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	LeaderID    uint   `json:"leader_id"`
	FullName    string `json:"full_name"`
}

type AddMemberRequest struct {
	MemberID       uint   `json:"member_id" validate:"required"`
	MemberFullName string `json:"member_full_name" validate:"required,max=255"`
}

type RemoveMemberRequest struct {
	MemberID uint `json:"member_id" validate:"required"`
}

// ListTeams lists teams scoped by role: admins see every team, everyone
// else sees only teams they have a membership row in.
func (tc *TeamController) ListTeams(c *fiber.Ctx) error {
	userID, role := principal(c)

	var teams []models.Team
	q := tc.DB.Preload("Members").Order("creation_date DESC")
	if role != models.RoleAdmin {
		q = q.Where("id IN (?)",
			tc.DB.Model(&models.TeamUser{}).Select("team_id").Where("user_id = ?", userID))
	}
	if err := q.Find(&teams).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list teams", err)
	}

	out := make([]fiber.Map, 0, len(teams))
	for i := range teams {
		team := &teams[i]
		var leaderName interface{}
		for j := range team.Members {
			if team.Members[j].LeadsTeam {
				leaderName = team.Members[j].UserFullName
				break
			}
		}
		out = append(out, fiber.Map{
			"id":                team.ID,
			"name":              team.Name,
			"number_of_members": len(team.Members),
			"leader_full_name":  leaderName,
		})
	}
	return c.JSON(out)
}

// TeamDetails returns a team with its member list and derived role labels.
func (tc *TeamController) TeamDetails(c *fiber.Ctx) error {
	var team models.Team
	err := tc.DB.Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("joined_date DESC")
	}).First(&team, utils.ParseUint(c.Params("id"))).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}

	members := make([]fiber.Map, 0, len(team.Members))
	for i := range team.Members {
		m := &team.Members[i]
		members = append(members, fiber.Map{
			"user_id":        m.UserID,
			"user_full_name": m.UserFullName,
			"role":           m.RoleLabel(),
		})
	}

	return c.JSON(fiber.Map{
		"id":          team.ID,
		"name":        team.Name,
		"description": team.Description,
		"members":     members,
	})
}

// CreateTeam creates a team together with its initial leader membership row
// in one transaction; if the leader row fails, the team is rolled back.
func (tc *TeamController) CreateTeam(c *fiber.Ctx) error {
	userID, _ := principal(c)

	var req CreateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	leaderID := req.LeaderID
	if leaderID == 0 {
		leaderID = userID
	}

	var team models.Team
	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		team = models.Team{Name: req.Name, Description: req.Description}
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		leader := models.TeamUser{
			TeamID:       team.ID,
			UserID:       leaderID,
			UserFullName: req.FullName,
			LeadsTeam:    true,
		}
		return tx.Create(&leader).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create team", err)
	}

	tc.Logger.Printf("Created team %q (id=%d) with leader %d", team.Name, team.ID, leaderID)

	return c.SendStatus(fiber.StatusCreated)
}

// UpdateTeam updates name/description, and optionally changes the leader:
// the current leader row is demoted first, then the target's row is
// promoted (or created if the target is not yet a member). Both steps run
// in one transaction so there is never a moment with two leaders committed.
func (tc *TeamController) UpdateTeam(c *fiber.Ctx) error {
	var req UpdateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var team models.Team
	if err := tc.DB.First(&team, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}

	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		team.Name = req.Name
		team.Description = req.Description
		if err := tx.Save(&team).Error; err != nil {
			return err
		}

		if req.LeaderID == 0 || req.FullName == "" {
			return nil
		}

		// Demote whoever currently leads, then promote the target.
		var current models.TeamUser
		if err := tx.Where("team_id = ? AND leads_team = ?", team.ID, true).
			First(&current).Error; err == nil {
			current.LeadsTeam = false
			if err := tx.Save(&current).Error; err != nil {
				return err
			}
		}

		var target models.TeamUser
		err := tx.Where("team_id = ? AND user_id = ?", team.ID, req.LeaderID).First(&target).Error
		if err == gorm.ErrRecordNotFound {
			target = models.TeamUser{
				TeamID:       team.ID,
				UserID:       req.LeaderID,
				UserFullName: req.FullName,
				LeadsTeam:    true,
			}
			return tx.Create(&target).Error
		}
		if err != nil {
			return err
		}
		target.LeadsTeam = true
		target.UserFullName = req.FullName
		return tx.Save(&target).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update team", err)
	}

	logrus.WithFields(logrus.Fields{
		"team_id":   team.ID,
		"leader_id": req.LeaderID,
	}).Info("team updated")

	return c.SendStatus(fiber.StatusOK)
}

// AddMember inserts a membership row. A duplicate (team, user) pair is a
// conflict and leaves the existing row untouched.
func (tc *TeamController) AddMember(c *fiber.Ctx) error {
	var req AddMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var team models.Team
	if err := tc.DB.First(&team, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}

	var existing models.TeamUser
	if err := tc.DB.Where("team_id = ? AND user_id = ?", team.ID, req.MemberID).
		First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "User is already a member of this team", nil)
	}

	member := models.TeamUser{
		TeamID:       team.ID,
		UserID:       req.MemberID,
		UserFullName: req.MemberFullName,
	}
	if err := tc.DB.Create(&member).Error; err != nil {
		// The unique index catches the race two concurrent adds can win.
		return utils.ErrorResponse(c, fiber.StatusConflict, "User is already a member of this team", nil)
	}

	return c.SendStatus(fiber.StatusOK)
}

// RemoveMember deletes a membership row; an absent row is a not-found, not
// a silent no-op.
func (tc *TeamController) RemoveMember(c *fiber.Ctx) error {
	var req RemoveMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var team models.Team
	if err := tc.DB.First(&team, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}

	var member models.TeamUser
	if err := tc.DB.Where("team_id = ? AND user_id = ?", team.ID, req.MemberID).
		First(&member).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Membership not found", nil)
	}

	if err := tc.DB.Delete(&member).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to remove member", err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// DeleteTeam removes a team and all its membership rows.
func (tc *TeamController) DeleteTeam(c *fiber.Ctx) error {
	var team models.Team
	if err := tc.DB.First(&team, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}

	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", team.ID).Delete(&models.TeamUser{}).Error; err != nil {
			return err
		}
		return tx.Delete(&team).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete team", err)
	}

	tc.Logger.Printf("Deleted team %q (id=%d)", team.Name, team.ID)

	return c.SendStatus(fiber.StatusOK)
}

// principal reads the authenticated identity from the request context.
func principal(c *fiber.Ctx) (uint, string) {
	id, _ := c.Locals("userID").(uint)
	role, _ := c.Locals("userRole").(string)
	return id, role
}
