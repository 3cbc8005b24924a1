package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/billiard-pos/database"
	"github.com/yeremiapane/billiard-pos/middlewares"
	"github.com/yeremiapane/billiard-pos/models"
)

// envelope mirrors utils.JSONResponse with the payload left raw.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// asUser stands in for the auth middleware.
func asUser(id uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middlewares.ContextUserID, id)
		c.Set(middlewares.ContextRole, role)
		c.Next()
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	return doAuthJSON(t, r, "", method, path, body)
}

// doAuthJSON sends body as JSON, with a Bearer token when one is given.
func doAuthJSON(t *testing.T, r http.Handler, token, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func decode(t *testing.T, env envelope, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func seedTable(t *testing.T, db *gorm.DB, number string, rate int64) models.Table {
	table := models.Table{Number: number, Type: models.TableRegular, HourlyRate: rate, Status: models.TableAvailable}
	require.NoError(t, db.Create(&table).Error)
	return table
}

func seedUser(t *testing.T, db *gorm.DB, role string) models.User {
	var n int64
	db.Model(&models.User{}).Count(&n)
	user := models.User{
		Name:     fmt.Sprintf("%s %d", role, n+1),
		Email:    fmt.Sprintf("staff%d@billiard.test", n+1),
		Password: "x",
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}
