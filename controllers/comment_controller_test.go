package controller_test

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/models"
	"taskhub/utils"
)

// writeStored places content on disk the way an upload would and returns
// the relative path for the metadata row.
func writeStored(t *testing.T, storage *utils.Storage, area, name, content string) string {
	t.Helper()
	dir := filepath.Join(storage.Root, area)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	return area + "/" + name
}

func TestAddCommentWithFiles(t *testing.T) {
	db := taskDB(t)
	storage := utils.NewStorage(t.TempDir())
	app := taskApp(t, db, storage)

	newTask(t, db, 4, models.StatusTodo)

	resp := doMultipart(t, app, "POST", "/tasks/1/comments/add", tokenFor(t, 4, models.RoleMember),
		map[string]string{"text": "See attached"},
		map[string]string{"log.txt": "some output"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var comment models.Comment
	require.NoError(t, db.First(&comment).Error)
	assert.EqualValues(t, 4, comment.CreatedByUserID)
	assert.Equal(t, "See attached", comment.Text)

	var files []models.CommentFile
	require.NoError(t, db.Find(&files).Error)
	require.Len(t, files, 1)

	// Stored content exists on disk under the comment area
	_, err := os.Stat(storage.Path(files[0].File))
	require.NoError(t, err)
}

func TestAddCommentToMissingTask(t *testing.T) {
	db := taskDB(t)
	app := taskApp(t, db, utils.NewStorage(t.TempDir()))

	resp := doJSON(t, app, "POST", "/tasks/7/comments/add", tokenFor(t, 4, models.RoleMember),
		map[string]interface{}{"text": "hello?"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteCommentCascadesOwnFilesOnly(t *testing.T) {
	db := taskDB(t)
	storage := utils.NewStorage(t.TempDir())
	app := taskApp(t, db, storage)

	task := newTask(t, db, 4, models.StatusTodo)

	mine := models.Comment{Text: "mine", CreatedByUserID: 4, TaskID: task.ID}
	theirs := models.Comment{Text: "theirs", CreatedByUserID: 7, TaskID: task.ID}
	require.NoError(t, db.Create(&mine).Error)
	require.NoError(t, db.Create(&theirs).Error)

	// One of my files has real content, the other is already gone from disk
	onDisk := writeStored(t, storage, utils.CommentFilesArea, "a.txt", "content")
	require.NoError(t, db.Create(&models.CommentFile{File: onDisk, CommentID: mine.ID, UploadedByUserID: 4}).Error)
	require.NoError(t, db.Create(&models.CommentFile{File: "comment_files/missing.txt", CommentID: mine.ID, UploadedByUserID: 4}).Error)

	otherFile := writeStored(t, storage, utils.CommentFilesArea, "other.txt", "keep me")
	require.NoError(t, db.Create(&models.CommentFile{File: otherFile, CommentID: theirs.ID, UploadedByUserID: 7}).Error)

	resp := doJSON(t, app, "DELETE", "/tasks/1/comments/1/delete", tokenFor(t, 4, models.RoleMember), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var remaining []models.CommentFile
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, theirs.ID, remaining[0].CommentID)

	_, err := os.Stat(storage.Path(onDisk))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(storage.Path(otherFile))
	assert.NoError(t, err)

	var comments int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)
	assert.EqualValues(t, 1, comments)
}

func TestDeleteCommentOnlyByCreator(t *testing.T) {
	db := taskDB(t)
	app := taskApp(t, db, utils.NewStorage(t.TempDir()))

	task := newTask(t, db, 4, models.StatusTodo)
	require.NoError(t, db.Create(&models.Comment{Text: "mine", CreatedByUserID: 7, TaskID: task.ID}).Error)

	resp := doJSON(t, app, "DELETE", "/tasks/1/comments/1/delete", tokenFor(t, 4, models.RoleMember), nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCommentScopedToPathTask(t *testing.T) {
	db := taskDB(t)
	app := taskApp(t, db, utils.NewStorage(t.TempDir()))

	newTask(t, db, 4, models.StatusTodo)
	other := newTask(t, db, 5, models.StatusTodo)
	require.NoError(t, db.Create(&models.Comment{Text: "on other task", CreatedByUserID: 4, TaskID: other.ID}).Error)

	// A comment under a different task resolves as not-found, not forbidden
	resp := doJSON(t, app, "DELETE", "/tasks/1/comments/1/delete", tokenFor(t, 4, models.RoleMember), nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAnonymousDownloadAllowed(t *testing.T) {
	db := taskDB(t)
	storage := utils.NewStorage(t.TempDir())
	app := taskApp(t, db, storage)

	task := newTask(t, db, 4, models.StatusTodo)
	rel := writeStored(t, storage, utils.TaskFilesArea, "report.txt", "quarterly numbers")
	require.NoError(t, db.Create(&models.TaskFile{File: rel, TaskID: task.ID, UploadedByUserID: 1}).Error)

	// No Authorization header at all
	resp := doJSON(t, app, "GET", "/tasks/1/files/1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "quarterly numbers", string(body))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "inline")

	resp = doJSON(t, app, "GET", "/tasks/1/files/1?download=true", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "report.txt")
}

func TestDownloadMissingContentIs404(t *testing.T) {
	db := taskDB(t)
	storage := utils.NewStorage(t.TempDir())
	app := taskApp(t, db, storage)

	task := newTask(t, db, 4, models.StatusTodo)
	require.NoError(t, db.Create(&models.TaskFile{File: "task_files/gone.txt", TaskID: task.ID, UploadedByUserID: 1}).Error)

	resp := doJSON(t, app, "GET", "/tasks/1/files/1", "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTaskFileDeleteRequiresTeamLeader(t *testing.T) {
	db := taskDB(t)
	storage := utils.NewStorage(t.TempDir())
	app := taskApp(t, db, storage)

	task := newTask(t, db, 4, models.StatusTodo)
	rel := writeStored(t, storage, utils.TaskFilesArea, "report.txt", "data")
	require.NoError(t, db.Create(&models.TaskFile{File: rel, TaskID: task.ID, UploadedByUserID: 1}).Error)

	resp := doJSON(t, app, "DELETE", "/tasks/1/files/1/delete", tokenFor(t, 4, models.RoleMember), nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, "DELETE", "/tasks/1/files/1/delete", tokenFor(t, 1, models.RoleTeamLeader), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.TaskFile{}).Count(&count).Error)
	assert.Zero(t, count)

	_, err := os.Stat(storage.Path(rel))
	assert.True(t, os.IsNotExist(err))
}

func TestCommentFileDeleteChecksCommentCreator(t *testing.T) {
	db := taskDB(t)
	storage := utils.NewStorage(t.TempDir())
	app := taskApp(t, db, storage)

	task := newTask(t, db, 4, models.StatusTodo)
	comment := models.Comment{Text: "mine", CreatedByUserID: 4, TaskID: task.ID}
	require.NoError(t, db.Create(&comment).Error)

	// Uploaded by someone else; the check is still against the comment creator
	rel := writeStored(t, storage, utils.CommentFilesArea, "pic.png", "png")
	require.NoError(t, db.Create(&models.CommentFile{File: rel, CommentID: comment.ID, UploadedByUserID: 7}).Error)

	resp := doJSON(t, app, "DELETE", "/tasks/1/comments/1/files/1/delete", tokenFor(t, 7, models.RoleMember), nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, "DELETE", "/tasks/1/comments/1/files/1/delete", tokenFor(t, 4, models.RoleMember), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAttachCommentFileOnlyByCreator(t *testing.T) {
	db := taskDB(t)
	storage := utils.NewStorage(t.TempDir())
	app := taskApp(t, db, storage)

	task := newTask(t, db, 4, models.StatusTodo)
	require.NoError(t, db.Create(&models.Comment{Text: "mine", CreatedByUserID: 4, TaskID: task.ID}).Error)

	resp := doMultipart(t, app, "POST", "/tasks/1/comments/1/files/attach", tokenFor(t, 7, models.RoleMember),
		nil, map[string]string{"x.txt": "x"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doMultipart(t, app, "POST", "/tasks/1/comments/1/files/attach", tokenFor(t, 4, models.RoleMember),
		nil, map[string]string{"x.txt": "x"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.CommentFile{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
