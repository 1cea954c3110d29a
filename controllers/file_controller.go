package controller

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"taskhub/models"
	"taskhub/utils"
)

// FileController handles task-level attachments.
type FileController struct {
	DB      *gorm.DB
	Storage *utils.Storage
	Logger  *log.Logger
}

func NewFileController(db *gorm.DB, storage *utils.Storage, logger *log.Logger) *FileController {
	return &FileController{DB: db, Storage: storage, Logger: logger}
}

// ListFiles returns a task's attachment metadata.
func (fc *FileController) ListFiles(c *fiber.Ctx) error {
	var task models.Task
	if err := fc.DB.First(&task, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}

	var files []models.TaskFile
	if err := fc.DB.Where("task_id = ?", task.ID).Find(&files).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load files", err)
	}
	return c.JSON(files)
}

// AttachFile stores uploaded files on an existing task.
func (fc *FileController) AttachFile(c *fiber.Ctx) error {
	userID, _ := principal(c)

	var task models.Task
	if err := fc.DB.First(&task, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}

	files := formFiles(c)
	if len(files) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "No files provided", nil)
	}

	var uploaded []models.TaskFile
	for _, fh := range files {
		rel, err := fc.Storage.Save(utils.TaskFilesArea, fh)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store attachment", err)
		}
		taskFile := models.TaskFile{
			File:             rel,
			TaskID:           task.ID,
			UploadedByUserID: userID,
		}
		if err := fc.DB.Create(&taskFile).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record attachment", err)
		}
		uploaded = append(uploaded, taskFile)
	}

	return c.Status(fiber.StatusCreated).JSON(uploaded)
}

// DownloadFile serves a task attachment. Open to anonymous callers by
// design; see the route registration.
func (fc *FileController) DownloadFile(c *fiber.Ctx) error {
	var task models.Task
	if err := fc.DB.First(&task, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}

	var taskFile models.TaskFile
	err := fc.DB.Where("id = ? AND task_id = ?",
		utils.ParseUint(c.Params("fileId")), task.ID).First(&taskFile).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "File not found", nil)
	}

	return serveStoredFile(c, fc.Storage, taskFile.File)
}

// DeleteFile removes one task attachment: stored content best-effort, the
// metadata row unconditionally.
func (fc *FileController) DeleteFile(c *fiber.Ctx) error {
	var task models.Task
	if err := fc.DB.First(&task, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}

	var taskFile models.TaskFile
	err := fc.DB.Where("id = ? AND task_id = ?",
		utils.ParseUint(c.Params("fileId")), task.ID).First(&taskFile).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "File not found", nil)
	}

	fc.Storage.Remove(taskFile.File)
	if err := fc.DB.Delete(&taskFile).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete file", err)
	}

	return c.JSON(fiber.Map{"message": "File deleted successfully"})
}

// serveStoredFile streams stored attachment content. Inline mode lets the
// browser render the file (content type from the stored extension);
// ?download=true forces a generic attachment download.
func serveStoredFile(c *fiber.Ctx, storage *utils.Storage, rel string) error {
	path := storage.Path(rel)
	if _, err := os.Stat(path); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "File not found on server", nil)
	}

	filename := filepath.Base(rel)
	if strings.EqualFold(c.Query("download"), "true") {
		return c.Download(path, filename)
	}

	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, filename))
	return c.SendFile(path)
}
