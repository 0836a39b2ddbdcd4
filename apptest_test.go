package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"xplore/config"
	"xplore/models"
)

// fakeStore records uploads and removals instead of talking to MinIO.
type fakeStore struct {
	uploads []string
	removed []string
}

func (f *fakeStore) Upload(_ context.Context, objectName string, r io.Reader, _ int64, _ string) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	url := "http://store.local/xplore/" + objectName
	f.uploads = append(f.uploads, url)
	return url, nil
}

func (f *fakeStore) Remove(_ context.Context, publicURL string) error {
	f.removed = append(f.removed, publicURL)
	return nil
}

func testConfig() *config.Properties {
	return &config.Properties{
		Env: "development",
		Server: config.HTTPProperties{
			CORSOrigin: "http://localhost:5173",
		},
		JWT: config.JWTProperties{
			Secret:     "test_secret",
			AccessTTL:  time.Hour,
			RefreshTTL: 24 * time.Hour,
		},
	}
}

func newTestApp(t *testing.T) (*App, *gin.Engine, *fakeStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Notification{},
	))

	store := &fakeStore{}
	app := NewApp(testConfig(), db, store, nil)
	return app, app.Router(), store
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// doMultipart posts form fields plus optional files (field name to
// file content, all uploaded as fake PNGs).
func doMultipart(t *testing.T, r *gin.Engine, path string, fields map[string]string, files map[string][]byte, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, content := range files {
		fw, err := mw.CreateFormFile(field, field+".png")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func signupUser(t *testing.T, r *gin.Engine, username string) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/signup", gin.H{
		"fullName": username + " test",
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

// login returns the accessToken cookie for the given user.
func login(t *testing.T, r *gin.Engine, username string) *http.Cookie {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/login", gin.H{
		"username": username,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "accessToken" {
			return cookie
		}
	}
	t.Fatalf("no accessToken cookie in login response")
	return nil
}

func signupAndLogin(t *testing.T, r *gin.Engine, username string) *http.Cookie {
	t.Helper()
	signupUser(t, r, username)
	return login(t, r, username)
}

func userID(t *testing.T, app *App, username string) uint {
	t.Helper()
	var user models.User
	require.NoError(t, app.db.Where("username = ?", username).First(&user).Error)
	return user.ID
}
