package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/classfund/treasury-server/internal/api"
	"github.com/classfund/treasury-server/internal/config"
	"github.com/classfund/treasury-server/internal/models"
	"github.com/classfund/treasury-server/internal/repository"
	"github.com/classfund/treasury-server/internal/service"
)

// Default password assigned to seeded test users
const TestPassword = "Testpass1"

// TestContext holds all dependencies for tests
type TestContext struct {
	Router      *gin.Engine
	Repository  repository.Repository
	Service     service.Service
	DB          *sqlx.DB
	Config      *config.Config
	Admin       *models.User
	AdminToken  string
	Viewer      *models.User
	ViewerToken string
}

// SetupTestContext creates a new test context with initialized dependencies
func SetupTestContext(t *testing.T) *TestContext {
	// Load configuration from environment
	cfg := config.LoadConfig()

	// Always run against the dedicated test database
	if cfg.Database.TestDBName != "" {
		cfg.Database.DBName = cfg.Database.TestDBName
	} else {
		cfg.Database.DBName = "treasury_test"
	}

	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "test-secret-key"
	}

	// Set up database
	db, err := config.SetupDatabase(cfg)
	assert.NoError(t, err, "Failed to set up test database")

	// Create repository
	repo := repository.NewPostgresRepository(db)

	// Create service
	svc := service.NewDefaultService(repo, cfg.Auth)

	// Create API handler
	handler := api.NewHandler(svc)

	// Set up Gin router
	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Set up routes
	handler.SetupRoutes(router)

	cleanupTestDatabase(t, repo)

	admin := createTestUser(t, repo, "admin-test", "admin-test@example.com", models.RoleAdmin)
	viewer := createTestUser(t, repo, "viewer-test", "viewer-test@example.com", models.RoleViewer)

	return &TestContext{
		Router:      router,
		Repository:  repo,
		Service:     svc,
		DB:          db,
		Config:      cfg,
		Admin:       admin,
		AdminToken:  signTestToken(t, admin, cfg.Auth.JWTSecret),
		Viewer:      viewer,
		ViewerToken: signTestToken(t, viewer, cfg.Auth.JWTSecret),
	}
}

// CleanupTestContext cleans up test resources
func CleanupTestContext(t *TestContext) {
	if t.DB != nil {
		cleanupTestDatabase(nil, t.Repository)
		t.DB.Close()
	}
}

// cleanupTestDatabase removes any existing test users and data
func cleanupTestDatabase(t *testing.T, repo repository.Repository) {
	pgRepo, ok := repo.(*repository.PostgresRepository)
	if !ok {
		return
	}
	db := pgRepo.GetDB()

	// audit_logs references users, financial_records references users
	for _, table := range []string{"audit_logs", "financial_records", "users"} {
		_, err := db.Exec("DELETE FROM " + table)
		if t != nil && err != nil {
			t.Logf("Warning: Failed to clean %s: %v", table, err)
		}
	}
}

// createTestUser seeds a user directly through the repository
func createTestUser(t *testing.T, repo repository.Repository, username, email string, role models.Role) *models.User {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.DefaultCost)
	assert.NoError(t, err)

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		FullName:     "Test " + username,
		Role:         role,
		IsActive:     true,
	}

	err = repo.CreateUser(context.Background(), user, nil)
	assert.NoError(t, err, "Failed to create test user")

	return user
}

// signTestToken issues an access token for a seeded user
func signTestToken(t *testing.T, user *models.User, jwtSecret string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      strconv.FormatInt(user.ID, 10),
		"username": user.Username,
		"type":     "access",
		"jti":      uuid.New().String(),
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(30 * time.Minute).Unix(),
	})

	tokenString, err := token.SignedString([]byte(jwtSecret))
	assert.NoError(t, err, "Failed to generate JWT token")

	return tokenString
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns headers with Authorization token
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}
