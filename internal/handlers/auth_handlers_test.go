package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bazarino/bazarino/internal/domain"
	userrepo "github.com/bazarino/bazarino/internal/repository/user"
	"github.com/bazarino/bazarino/internal/services"
	"github.com/bazarino/bazarino/internal/services/user_services"
)

const testJWTSecret = "test-secret-key-needs-32-characters!"

func newTestDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models...))
	return db
}

func newAuthHandler(t *testing.T) (*AuthHandler, *user_services.AuthService) {
	t.Helper()
	db := newTestDB(t, &domain.User{})
	authService := user_services.NewAuthService(userrepo.NewGormUserRepository(db), testJWTSecret, "", &services.NoOpLogger{})
	return NewAuthHandler(authService), authService
}

func postJSON(t *testing.T, handler http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRegisterAndLogin(t *testing.T) {
	handler, authService := newAuthHandler(t)

	rec := postJSON(t, handler.Register, map[string]string{
		"username":     "ali_karimi",
		"phone_number": "+989121234567",
		"password":     "correct horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var registered domain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))
	assert.NotZero(t, registered.ID)
	assert.Empty(t, registered.Password, "password hash must not leak")

	rec = postJSON(t, handler.Login, map[string]string{
		"username": "ali_karimi",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var loginResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loginResp))
	require.NotEmpty(t, loginResp.Token)

	// The issued token resolves back to the registered user.
	userID, err := authService.ValidateJWTToken(loginResp.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, userID)

	// And it was also set as a cookie.
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "auth_token", cookies[0].Name)
	assert.Equal(t, loginResp.Token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	handler, _ := newAuthHandler(t)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"short username", map[string]string{"username": "ab", "phone_number": "+989121234567", "password": "long enough"}},
		{"bad phone", map[string]string{"username": "ali_karimi", "phone_number": "not-a-phone", "password": "long enough"}},
		{"short password", map[string]string{"username": "ali_karimi", "phone_number": "+989121234567", "password": "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, handler.Register, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	handler, _ := newAuthHandler(t)

	rec := postJSON(t, handler.Register, map[string]string{
		"username": "ali_karimi", "phone_number": "+989121234567", "password": "long enough",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, handler.Register, map[string]string{
		"username": "ali_karimi", "phone_number": "+989121234568", "password": "long enough",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, handler.Register, map[string]string{
		"username": "other_user", "phone_number": "+989121234567", "password": "long enough",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	handler, _ := newAuthHandler(t)

	rec := postJSON(t, handler.Register, map[string]string{
		"username": "ali_karimi", "phone_number": "+989121234567", "password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, handler.Login, map[string]string{
		"username": "ali_karimi", "password": "wrong password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(t, handler.Login, map[string]string{
		"username": "no_such_user", "password": "correct horse",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	handler, _ := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()
	handler.Logout(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "auth_token", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
}
