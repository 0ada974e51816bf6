package gallery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"seedream-studio/config"
	"seedream-studio/internal/database"
	"seedream-studio/internal/middleware"
	"seedream-studio/internal/models"
)

func setupTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(
		&models.GenerationResult{},
		&models.GenerationRequest{},
		&models.Prompt{},
	)
	if err := db.AutoMigrate(
		&models.Prompt{},
		&models.GenerationRequest{},
		&models.GenerationResult{},
	); err != nil {
		panic("failed to migrate database")
	}

	database.DB = db
	database.RedisClient = nil
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{AdminToken: "secret"}

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.Use(middleware.ResolveAuth(cfg))
	RegisterRoutes(v1)
	return router
}

func seedResult(t *testing.T, resultID, imageURL string) {
	t.Helper()
	req := models.GenerationRequest{ID: "req-" + resultID, Models: models.MustJSON([]string{"m"})}
	assert.NoError(t, database.DB.Create(&req).Error)
	res := models.GenerationResult{
		ID: resultID, RequestID: req.ID, ModelID: "m",
		Status: models.GenerationStatusSuccess, ImageURL: imageURL,
	}
	assert.NoError(t, database.DB.Create(&res).Error)
}

func TestListGenerations(t *testing.T) {
	setupTestDB()
	seedResult(t, "res-1", "https://img/1.png")

	w := httptest.NewRecorder()
	router := setupRouter()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/generations?take=banana", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp listResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 1)
	assert.Empty(t, resp.NextCursor)
}

func TestGetGenerationNotFound(t *testing.T) {
	setupTestDB()
	router := setupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/generations/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadRejectsDataURL(t *testing.T) {
	setupTestDB()
	seedResult(t, "res-1", "data:image/png;base64,AAAA")
	router := setupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/generations/res-1/download", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownloadRejectsLocalHosts(t *testing.T) {
	setupTestDB()
	router := setupRouter()

	blocked := []string{
		"http://127.0.0.1/secret.png",
		"http://localhost/x.png",
		"http://0.0.0.0/x.png",
		"ftp://files.example/x.png",
	}
	for i, u := range blocked {
		id := string(rune('a' + i))
		seedResult(t, "res-"+id, u)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/generations/res-"+id+"/download", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, "url: %s", u)
	}
}

func TestDownloadNoImage(t *testing.T) {
	setupTestDB()
	seedResult(t, "res-1", "")
	router := setupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/generations/res-1/download", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadClientIsBounded(t *testing.T) {
	// A stalled upstream must not pin the handler goroutine forever.
	assert.Equal(t, downloadTimeout, downloadClient.Timeout)
	assert.Positive(t, downloadClient.Timeout)
}

func TestDownloadUnknownResult(t *testing.T) {
	setupTestDB()
	router := setupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/generations/missing/download", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteGenerationsRequiresAdmin(t *testing.T) {
	setupTestDB()
	seedResult(t, "res-1", "")
	router := setupRouter()

	body := `{"requestIds":["req-res-1"]}`
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/generations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/generations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-Token", "secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	database.DB.Model(&models.GenerationResult{}).Count(&count)
	assert.Zero(t, count)
}
