package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taskhub/models"
	"taskhub/utils"
)

// UserController handles the admin-facing user management endpoints.
type UserController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewUserController(db *gorm.DB, logger *log.Logger) *UserController {
	return &UserController{DB: db, Logger: logger}
}

// UserResponse shapes a user for API output, adding the display label.
func UserResponse(u *models.User) fiber.Map {
	return fiber.Map{
		"id":           u.ID,
		"email":        u.Email,
		"first_name":   u.FirstName,
		"last_name":    u.LastName,
		"role":         u.Role,
		"role_display": u.RoleDisplay(),
		"date_joined":  u.DateJoined,
		"is_active":    u.IsActive,
	}
}

// ListUsers returns the user directory. Admins see everyone; team leaders
// see only MEMBER-role users (the pool they can assign tasks to).
func (uc *UserController) ListUsers(c *fiber.Ctx) error {
	role, _ := c.Locals("userRole").(string)

	var users []models.User
	q := uc.DB
	if role != models.RoleAdmin {
		q = q.Where("role = ?", models.RoleMember)
	}
	if err := q.Find(&users).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list users", err)
	}

	out := make([]fiber.Map, 0, len(users))
	for i := range users {
		out = append(out, UserResponse(&users[i]))
	}
	return c.JSON(out)
}

// GetUsersByIDs resolves a batch of user IDs for display purposes. Open to
// any authenticated caller regardless of role, so tasks and comments can
// show author names.
func (uc *UserController) GetUsersByIDs(c *fiber.Ctx) error {
	var req struct {
		UserIDs []uint `json:"user_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if len(req.UserIDs) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "user_ids list is required", nil)
	}

	var users []models.User
	if err := uc.DB.Where("id IN ?", req.UserIDs).Find(&users).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch users", err)
	}

	out := make([]fiber.Map, 0, len(users))
	for i := range users {
		out = append(out, UserResponse(&users[i]))
	}
	return c.JSON(out)
}

// UpdateRole changes a user's role (admin only). The model hook keeps
// is_staff in sync.
func (uc *UserController) UpdateRole(c *fiber.Ctx) error {
	var req struct {
		Role string `json:"role" validate:"required,oneof=MEMBER TEAM_LEADER ADMIN"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var user models.User
	if err := uc.DB.First(&user, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
	}

	user.Role = req.Role
	if user.Role != models.RoleAdmin {
		user.IsStaff = false
	}
	if err := uc.DB.Save(&user).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update role", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("user role updated")

	return c.JSON(UserResponse(&user))
}

// ToggleActive flips a user's is_active flag (admin only). Takes no body;
// the current value decides the direction.
func (uc *UserController) ToggleActive(c *fiber.Ctx) error {
	var user models.User
	if err := uc.DB.First(&user, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
	}

	user.IsActive = !user.IsActive
	if err := uc.DB.Save(&user).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update user", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":   user.ID,
		"is_active": user.IsActive,
	}).Info("user activation toggled")

	return c.JSON(UserResponse(&user))
}

// DeleteUser removes a user record (admin only).
func (uc *UserController) DeleteUser(c *fiber.Ctx) error {
	var user models.User
	if err := uc.DB.First(&user, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
	}

	if err := uc.DB.Delete(&user).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete user", err)
	}

	uc.Logger.Printf("Deleted user %s (id=%d)", user.Email, user.ID)

	return c.SendStatus(fiber.StatusNoContent)
}
