package controller

import (
	"log"
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taskhub/models"
	"taskhub/utils"
)

// TaskController handles the task aggregate: tasks plus their comments and
// attachments. Comments and files have their own controllers; the aggregate
// detail view lives here.
type TaskController struct {
	DB      *gorm.DB
	Storage *utils.Storage
	Logger  *log.Logger
}

func NewTaskController(db *gorm.DB, storage *utils.Storage, logger *log.Logger) *TaskController {
	return &TaskController{DB: db, Storage: storage, Logger: logger}
}

type CreateTaskRequest struct {
	Title            string `json:"title" form:"title" validate:"required,max=255"`
	Description      string `json:"description" form:"description" validate:"required"`
	AssignedToUserID uint   `json:"assigned_to_user_id" form:"assigned_to_user_id" validate:"required"`
	Status           string `json:"status" form:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority         string `json:"priority" form:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	DueDate          string `json:"due_date" form:"due_date" validate:"required"`
	TeamID           uint   `json:"team_id" form:"team_id" validate:"required"`
}

type UpdateTaskRequest struct {
	Title            *string `json:"title" validate:"omitempty,max=255"`
	Description      *string `json:"description"`
	AssignedToUserID *uint   `json:"assigned_to_user_id"`
	Status           *string `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority         *string `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	DueDate          *string `json:"due_date"`
	TeamID           *uint   `json:"team_id"`
}

// parseDueDate accepts RFC3339 timestamps or a plain date.
func parseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// formFiles flattens every uploaded file across all multipart field names.
func formFiles(c *fiber.Ctx) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	var files []*multipart.FileHeader
	for _, headers := range form.File {
		files = append(files, headers...)
	}
	return files
}

// CreateTask creates a task, optionally storing file attachments uploaded
// in the same multipart request. The creator is always the authenticated
// principal, never a client-supplied field.
func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	userID, _ := principal(c)

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid due_date", err)
	}

	task := models.Task{
		Title:            req.Title,
		Description:      req.Description,
		CreatedByUserID:  userID,
		AssignedToUserID: req.AssignedToUserID,
		Status:           req.Status,
		DueDate:          dueDate,
		Priority:         req.Priority,
		TeamID:           req.TeamID,
	}
	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}

	if err := tc.DB.Create(&task).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create task", err)
	}

	var uploaded []models.TaskFile
	for _, fh := range formFiles(c) {
		rel, err := tc.Storage.Save(utils.TaskFilesArea, fh)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store attachment", err)
		}
		taskFile := models.TaskFile{
			File:             rel,
			TaskID:           task.ID,
			UploadedByUserID: userID,
		}
		if err := tc.DB.Create(&taskFile).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record attachment", err)
		}
		uploaded = append(uploaded, taskFile)
	}

	tc.Logger.Printf("Created task %q (id=%d) with %d attachments", task.Title, task.ID, len(uploaded))

	response := fiber.Map{
		"id":                  task.ID,
		"title":               task.Title,
		"description":         task.Description,
		"status":              task.Status,
		"priority":            task.Priority,
		"due_date":            task.DueDate,
		"created_by_user_id":  task.CreatedByUserID,
		"assigned_to_user_id": task.AssignedToUserID,
		"team_id":             task.TeamID,
		"created_at":          task.CreatedAt,
	}
	if len(uploaded) > 0 {
		response["files"] = uploaded
	}
	return c.Status(fiber.StatusCreated).JSON(response)
}

// ListTasks lists tasks visible to the principal. Admins and team leaders
// see everything; members see only tasks assigned to them. Optional filters
// narrow the result; malformed date filters are ignored rather than
// rejected, matching the list-filter contract.
func (tc *TaskController) ListTasks(c *fiber.Ctx) error {
	userID, role := principal(c)

	q := tc.DB.Model(&models.Task{})
	if role != models.RoleAdmin && role != models.RoleTeamLeader {
		q = q.Where("assigned_to_user_id = ?", userID)
	}

	if teamID := c.Query("team_id"); teamID != "" {
		q = q.Where("team_id = ?", utils.ParseUint(teamID))
	}
	if assignedTo := c.Query("assigned_to_user_id"); assignedTo != "" {
		q = q.Where("assigned_to_user_id = ?", utils.ParseUint(assignedTo))
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if from := c.Query("due_date_from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			q = q.Where("due_date >= ?", t)
		}
	}
	if to := c.Query("due_date_to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			q = q.Where("due_date <= ?", t)
		}
	}

	var tasks []models.Task
	if err := q.Find(&tasks).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list tasks", err)
	}

	return c.JSON(tasks)
}

// TaskDetails returns the full aggregate: the task, every comment with its
// files, and every task-level file. No pagination; result sets stay small.
func (tc *TaskController) TaskDetails(c *fiber.Ctx) error {
	var task models.Task
	if err := tc.DB.First(&task, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}

	comments, err := commentsWithFiles(tc.DB, task.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load comments", err)
	}

	var files []models.TaskFile
	if err := tc.DB.Where("task_id = ?", task.ID).Find(&files).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load files", err)
	}

	return c.JSON(fiber.Map{
		"id":                  task.ID,
		"title":               task.Title,
		"description":         task.Description,
		"status":              task.Status,
		"priority":            task.Priority,
		"due_date":            task.DueDate,
		"created_by_user_id":  task.CreatedByUserID,
		"assigned_to_user_id": task.AssignedToUserID,
		"team_id":             task.TeamID,
		"created_at":          task.CreatedAt,
		"comments":            comments,
		"files":               files,
	})
}

// UpdateTask applies a partial update: only fields present in the body
// change.
func (tc *TaskController) UpdateTask(c *fiber.Ctx) error {
	var task models.Task
	if err := tc.DB.First(&task, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.AssignedToUserID != nil {
		task.AssignedToUserID = *req.AssignedToUserID
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		dueDate, err := parseDueDate(*req.DueDate)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid due_date", err)
		}
		task.DueDate = dueDate
	}
	if req.TeamID != nil {
		task.TeamID = *req.TeamID
	}

	if err := tc.DB.Save(&task).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update task", err)
	}

	return c.JSON(task)
}

// UpdateTaskStatus changes only the status. Team leaders may always do
// this; the assigned user may do it on their own task. The value must be a
// known status, but any status may follow any other.
func (tc *TaskController) UpdateTaskStatus(c *fiber.Ctx) error {
	userID, role := principal(c)

	var task models.Task
	if err := tc.DB.First(&task, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}

	if role != models.RoleTeamLeader && task.AssignedToUserID != userID {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You do not have permission to update this task", nil)
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if !models.ValidStatus(req.Status) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid status", nil)
	}

	task.Status = req.Status
	if err := tc.DB.Save(&task).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update status", err)
	}

	logrus.WithFields(logrus.Fields{
		"task_id": task.ID,
		"status":  task.Status,
		"user_id": userID,
	}).Info("task status updated")

	return c.JSON(task)
}

// DeleteTask removes the task row only. Comments and files are left in
// place; see the aggregate's containment notes in the model package.
func (tc *TaskController) DeleteTask(c *fiber.Ctx) error {
	var task models.Task
	if err := tc.DB.First(&task, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}

	if err := tc.DB.Delete(&task).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete task", err)
	}

	return c.JSON(fiber.Map{"message": "Task deleted successfully"})
}

// commentsWithFiles loads a task's comments, each carrying its files.
func commentsWithFiles(db *gorm.DB, taskID uint) ([]fiber.Map, error) {
	var comments []models.Comment
	if err := db.Where("task_id = ?", taskID).Order("created_at").Find(&comments).Error; err != nil {
		return nil, err
	}

	out := make([]fiber.Map, 0, len(comments))
	for i := range comments {
		comment := &comments[i]
		var files []models.CommentFile
		if err := db.Where("comment_id = ?", comment.ID).Find(&files).Error; err != nil {
			return nil, err
		}
		out = append(out, fiber.Map{
			"id":                 comment.ID,
			"text":               comment.Text,
			"task_id":            comment.TaskID,
			"created_by_user_id": comment.CreatedByUserID,
			"created_at":         comment.CreatedAt,
			"files":              files,
		})
	}
	return out, nil
}
