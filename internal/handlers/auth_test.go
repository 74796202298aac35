package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ayman-93/supabase-task-app/internal/constants"
	"github.com/ayman-93/supabase-task-app/internal/middleware"
	"github.com/ayman-93/supabase-task-app/internal/models"
	"github.com/ayman-93/supabase-task-app/internal/repository"
	"github.com/ayman-93/supabase-task-app/internal/services"
)

type authTestEnv struct {
	db          *gorm.DB
	router      *gin.Engine
	authService *services.AuthService
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{})
	require.NoError(t, err)

	authService := services.NewAuthService(repository.NewUserRepository(db), "test-jwt-secret")
	handler := NewAuthHandler(authService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	store := cookie.NewStore([]byte("test-session-secret"))
	router.Use(sessions.Sessions(constants.SessionName, store))

	auth := router.Group("/api/auth")
	{
		auth.POST("/signup", handler.Signup)
		auth.POST("/login", handler.Login)
		auth.POST("/logout", handler.Logout)
		auth.GET("/me", middleware.RequireAuth(authService), handler.GetCurrentUser)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return authTestEnv{
		db:          db,
		router:      router,
		authService: authService,
	}
}

func (env authTestEnv) do(t *testing.T, method, url string, payload interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func signupPayload() map[string]string {
	return map[string]string{
		"email":      "jane@example.com",
		"first_name": "Jane",
		"last_name":  "Doe",
		"password":   "supersecret",
	}
}

func TestSignup_Success(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.do(t, "POST", "/api/auth/signup", signupPayload(), nil)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "jane@example.com", response["email"])
	assert.Equal(t, "Jane", response["first_name"])
	assert.NotContains(t, response, "password_hash")
}

func TestSignup_DuplicateEmail(t *testing.T) {
	env := setupAuthTestEnv(t)

	first := env.do(t, "POST", "/api/auth/signup", signupPayload(), nil)
	require.Equal(t, http.StatusCreated, first.Code)

	second := env.do(t, "POST", "/api/auth/signup", signupPayload(), nil)
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestSignup_PasswordTooShort(t *testing.T) {
	env := setupAuthTestEnv(t)

	payload := signupPayload()
	payload["password"] = "short"

	w := env.do(t, "POST", "/api/auth/signup", payload, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_Success(t *testing.T) {
	env := setupAuthTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(t, "POST", "/api/auth/signup", signupPayload(), nil).Code)

	w := env.do(t, "POST", "/api/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "supersecret",
	}, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(t, response["token"])
	assert.Contains(t, response, "user")
	assert.NotEmpty(t, w.Result().Cookies())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := setupAuthTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(t, "POST", "/api/auth/signup", signupPayload(), nil).Code)

	w := env.do(t, "POST", "/api/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "wrongpassword",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetCurrentUser_WithSessionCookie(t *testing.T) {
	env := setupAuthTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(t, "POST", "/api/auth/signup", signupPayload(), nil).Code)

	login := env.do(t, "POST", "/api/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusOK, login.Code)

	w := env.do(t, "GET", "/api/auth/me", nil, login.Result().Cookies())

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "jane@example.com", response["email"])
}

func TestGetCurrentUser_WithBearerToken(t *testing.T) {
	env := setupAuthTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(t, "POST", "/api/auth/signup", signupPayload(), nil).Code)

	var user models.User
	require.NoError(t, env.db.Where("email = ?", "jane@example.com").First(&user).Error)

	token, err := env.authService.IssueToken(user.ID)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetCurrentUser_Unauthenticated(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.do(t, "GET", "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_ClearsSession(t *testing.T) {
	env := setupAuthTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(t, "POST", "/api/auth/signup", signupPayload(), nil).Code)

	login := env.do(t, "POST", "/api/auth/login", map[string]string{
		"email":    "jane@example.com",
		"password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusOK, login.Code)

	logout := env.do(t, "POST", "/api/auth/logout", nil, login.Result().Cookies())
	assert.Equal(t, http.StatusOK, logout.Code)

	me := env.do(t, "GET", "/api/auth/me", nil, logout.Result().Cookies())
	assert.Equal(t, http.StatusUnauthorized, me.Code)
}
