package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"taskhub/models"
	"taskhub/utils"
)

// CommentController handles comments under a task and their attachments.
// Check order is fixed: the task is located first, then the comment scoped
// to that task, then the creator-only authorization. A comment id that
// exists under a different task is a not-found, not a forbidden.
type CommentController struct {
	DB      *gorm.DB
	Storage *utils.Storage
	Logger  *log.Logger
}

func NewCommentController(db *gorm.DB, storage *utils.Storage, logger *log.Logger) *CommentController {
	return &CommentController{DB: db, Storage: storage, Logger: logger}
}

// findComment resolves the task and the comment scoped to it.
func (cc *CommentController) findComment(c *fiber.Ctx) (*models.Comment, error) {
	var task models.Task
	if err := cc.DB.First(&task, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}

	var comment models.Comment
	err := cc.DB.Where("id = ? AND task_id = ?",
		utils.ParseUint(c.Params("commentId")), task.ID).First(&comment).Error
	if err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusNotFound, "Comment not found", nil)
	}
	return &comment, nil
}

// ListComments returns a task's comments, each with its files.
func (cc *CommentController) ListComments(c *fiber.Ctx) error {
	var task models.Task
	if err := cc.DB.First(&task, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}

	comments, err := commentsWithFiles(cc.DB, task.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load comments", err)
	}
	return c.JSON(comments)
}

// AddComment creates a comment on a task, with optional multipart file
// attachments. Any authenticated principal may comment; the author is taken
// from the token.
func (cc *CommentController) AddComment(c *fiber.Ctx) error {
	userID, _ := principal(c)

	var task models.Task
	if err := cc.DB.First(&task, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}

	var req struct {
		Text string `json:"text" form:"text" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	comment := models.Comment{
		Text:            req.Text,
		CreatedByUserID: userID,
		TaskID:          task.ID,
	}
	if err := cc.DB.Create(&comment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create comment", err)
	}

	var uploaded []models.CommentFile
	for _, fh := range formFiles(c) {
		rel, err := cc.Storage.Save(utils.CommentFilesArea, fh)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store attachment", err)
		}
		commentFile := models.CommentFile{
			File:             rel,
			CommentID:        comment.ID,
			UploadedByUserID: userID,
		}
		if err := cc.DB.Create(&commentFile).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record attachment", err)
		}
		uploaded = append(uploaded, commentFile)
	}

	response := fiber.Map{
		"id":                 comment.ID,
		"text":               comment.Text,
		"task_id":            comment.TaskID,
		"created_by_user_id": comment.CreatedByUserID,
		"created_at":         comment.CreatedAt,
	}
	if len(uploaded) > 0 {
		response["files"] = uploaded
	}
	return c.Status(fiber.StatusCreated).JSON(response)
}

// DeleteComment removes a comment and cascades to its files: stored content
// is removed best-effort (content already gone is fine), metadata rows and
// the comment row always go.
func (cc *CommentController) DeleteComment(c *fiber.Ctx) error {
	userID, _ := principal(c)

	comment, err := cc.findComment(c)
	if comment == nil {
		return err
	}

	if comment.CreatedByUserID != userID {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You can only delete your own comments", nil)
	}

	var files []models.CommentFile
	if err := cc.DB.Where("comment_id = ?", comment.ID).Find(&files).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load comment files", err)
	}
	for i := range files {
		cc.Storage.Remove(files[i].File)
		if err := cc.DB.Delete(&files[i]).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete comment file", err)
		}
	}

	if err := cc.DB.Delete(comment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete comment", err)
	}

	return c.JSON(fiber.Map{"message": "Comment deleted successfully"})
}

// AttachFile stores additional files on an existing comment. Authorization
// is against the comment's creator.
func (cc *CommentController) AttachFile(c *fiber.Ctx) error {
	userID, _ := principal(c)

	comment, err := cc.findComment(c)
	if comment == nil {
		return err
	}

	if comment.CreatedByUserID != userID {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You do not have permission to attach files to this comment", nil)
	}

	files := formFiles(c)
	if len(files) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "No files provided", nil)
	}

	var uploaded []models.CommentFile
	for _, fh := range files {
		rel, err := cc.Storage.Save(utils.CommentFilesArea, fh)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store attachment", err)
		}
		commentFile := models.CommentFile{
			File:             rel,
			CommentID:        comment.ID,
			UploadedByUserID: userID,
		}
		if err := cc.DB.Create(&commentFile).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record attachment", err)
		}
		uploaded = append(uploaded, commentFile)
	}

	return c.Status(fiber.StatusCreated).JSON(uploaded)
}

// DownloadFile serves a comment attachment. Open to anonymous callers by
// design. ?download=true forces an attachment response with the stored
// name; otherwise the file is served inline with its sniffed content type.
func (cc *CommentController) DownloadFile(c *fiber.Ctx) error {
	comment, err := cc.findComment(c)
	if comment == nil {
		return err
	}

	var commentFile models.CommentFile
	dberr := cc.DB.Where("id = ? AND comment_id = ?",
		utils.ParseUint(c.Params("fileId")), comment.ID).First(&commentFile).Error
	if dberr != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "File not found", nil)
	}

	return serveStoredFile(c, cc.Storage, commentFile.File)
}

// DeleteFile removes one comment attachment. The permission check is
// against the comment's creator, not the file's uploader.
func (cc *CommentController) DeleteFile(c *fiber.Ctx) error {
	userID, _ := principal(c)

	comment, err := cc.findComment(c)
	if comment == nil {
		return err
	}

	if comment.CreatedByUserID != userID {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "You can only delete files from your own comments", nil)
	}

	var commentFile models.CommentFile
	dberr := cc.DB.Where("id = ? AND comment_id = ?",
		utils.ParseUint(c.Params("fileId")), comment.ID).First(&commentFile).Error
	if dberr != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "File not found", nil)
	}

	cc.Storage.Remove(commentFile.File)
	if err := cc.DB.Delete(&commentFile).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete file", err)
	}

	return c.JSON(fiber.Map{"message": "File deleted successfully"})
}
