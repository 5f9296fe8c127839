package controllers_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"motormart/config"
	"motormart/database"
	"motormart/routes"
	"motormart/utils"
)

// newTestRouter builds the full route tree on a fresh sqlite database. Both
// the typed GORM connection and the raw record store point at the same file
// so the legacy and v2 endpoints see the same data.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.InitConfig()
	config.AppConfig.UploadRoot = t.TempDir()

	dbPath := filepath.Join(t.TempDir(), "motormart_test.db")

	gormDB, err := gorm.Open(sqlite.Open(dbPath+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	database.DB = gormDB
	require.NoError(t, database.RunMigrations())

	rawDB, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	require.NoError(t, err)
	t.Cleanup(func() { rawDB.Close() })
	database.LegacyDB = rawDB
	database.Store = database.NewRecordStore(rawDB, "sqlite3")

	r := gin.New()
	routes.SetupRoutes(r)
	return r
}

func createTestUser(t *testing.T, email, role string) (database.User, string) {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)

	user := database.User{
		Username:     "Test " + role,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	require.NoError(t, database.DB.Create(&user).Error)

	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return user, token
}

func seedVehicle(t *testing.T, price float64) database.Vehicle {
	t.Helper()
	vehicle := database.Vehicle{
		Make:    "Toyota",
		Model:   "Camry",
		Year:    2021,
		Price:   price,
		VIN:     "4T1BF1FK5MU000001",
		Mileage: 12000,
		Status:  database.VehicleStatusAvailable,
	}
	require.NoError(t, database.DB.Create(&vehicle).Error)
	return vehicle
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body io.Reader, contentType, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	return doRequest(t, r, method, path, bytes.NewReader(payload), "application/json", token)
}

func doForm(t *testing.T, r *gin.Engine, method, path string, fields map[string]string, token string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{}
	for k, v := range fields {
		form.Set(k, v)
	}
	return doRequest(t, r, method, path, strings.NewReader(form.Encode()),
		"application/x-www-form-urlencoded", token)
}

// doMultipart sends fields plus named files, each file under its own form key
func doMultipart(t *testing.T, r *gin.Engine, method, path string, fields map[string]string, files map[string][]string, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for key, names := range files {
		for _, name := range names {
			fw, err := mw.CreateFormFile(key, name)
			require.NoError(t, err)
			_, err = fw.Write([]byte("test file content"))
			require.NoError(t, err)
		}
	}
	require.NoError(t, mw.Close())
	return doRequest(t, r, method, path, &buf, mw.FormDataContentType(), token)
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var body []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func requireOK(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
