package controller_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskhub/models"
	"taskhub/routes"
	"taskhub/utils"
)

const testSecret = "unit-test-signing-key"

func testDB(t *testing.T, migrate ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(migrate...))
	return db
}

func userDB(t *testing.T) *gorm.DB {
	return testDB(t, &models.User{})
}

func teamDB(t *testing.T) *gorm.DB {
	return testDB(t, &models.Team{}, &models.TeamUser{})
}

func taskDB(t *testing.T) *gorm.DB {
	return testDB(t, &models.Task{}, &models.Comment{}, &models.TaskFile{}, &models.CommentFile{})
}

func userApp(t *testing.T, db *gorm.DB) *fiber.App {
	t.Helper()
	app := fiber.New()
	routes.SetupUserRoutes(app, db, testSecret)
	return app
}

func teamApp(t *testing.T, db *gorm.DB) *fiber.App {
	t.Helper()
	app := fiber.New()
	routes.SetupTeamRoutes(app, db, testSecret)
	return app
}

func taskApp(t *testing.T, db *gorm.DB, storage *utils.Storage) *fiber.App {
	t.Helper()
	app := fiber.New()
	routes.SetupTaskRoutes(app, db, storage, testSecret)
	return app
}

// tokenFor mints an access token for a synthetic principal.
func tokenFor(t *testing.T, id uint, role string) string {
	t.Helper()
	access, _, err := utils.GenerateTokenPair(&models.User{ID: id, Role: role}, testSecret)
	require.NoError(t, err)
	return access
}

// doJSON runs a JSON request through the app and returns the response.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// doMultipart runs a multipart request with form fields and named files.
func doMultipart(t *testing.T, app *fiber.App, method, path, token string, fields map[string]string, files map[string]string) *http.Response {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for name, content := range files {
		fw, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}
