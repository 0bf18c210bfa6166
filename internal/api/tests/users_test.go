package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/classfund/treasury-server/internal/api/testutils"
	"github.com/classfund/treasury-server/internal/models"
)

func TestCreateUser(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	createReq := models.CreateUserRequest{
		Username: "newviewer",
		Email:    "newviewer@example.com",
		FullName: "New Viewer",
		Password: "Newpass1",
	}

	// Test case 1: Admin creates a user; role defaults to viewer
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/users",
		createReq,
		testutils.AuthHeaders(testCtx.AdminToken),
	)

	assert.Equal(t, http.StatusCreated, w.Code)

	var created models.User
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, models.RoleViewer, created.Role)
	assert.True(t, created.IsActive)
	assert.NotContains(t, w.Body.String(), "password_hash")

	// Test case 2: Duplicate username
	dupUsername := createReq
	dupUsername.Email = "other@example.com"
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/users",
		dupUsername,
		testutils.AuthHeaders(testCtx.AdminToken),
	)

	assert.Equal(t, http.StatusConflict, w.Code)

	// Test case 3: Duplicate email
	dupEmail := createReq
	dupEmail.Username = "someoneelse"
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/users",
		dupEmail,
		testutils.AuthHeaders(testCtx.AdminToken),
	)

	assert.Equal(t, http.StatusConflict, w.Code)

	// Test case 4: Weak password
	weak := createReq
	weak.Username = "weakling"
	weak.Email = "weak@example.com"
	weak.Password = "short"
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/users",
		weak,
		testutils.AuthHeaders(testCtx.AdminToken),
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Test case 5: Viewers cannot manage users
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/users",
		createReq,
		testutils.AuthHeaders(testCtx.ViewerToken),
	)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListUsers(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	// Test case 1: Admin sees both seeded accounts
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/users",
		nil,
		testutils.AuthHeaders(testCtx.AdminToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var users []models.User
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Len(t, users, 2)
	assert.NotContains(t, w.Body.String(), "password_hash")

	// Test case 2: Role filter
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/users?role=admin",
		nil,
		testutils.AuthHeaders(testCtx.AdminToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Len(t, users, 1)
	assert.Equal(t, models.RoleAdmin, users[0].Role)

	// Test case 3: Viewers are rejected
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/users",
		nil,
		testutils.AuthHeaders(testCtx.ViewerToken),
	)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateUser(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	// Test case 1: Promote the viewer to admin
	role := models.RoleAdmin
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		fmt.Sprintf("/api/users/%d", testCtx.Viewer.ID),
		models.UpdateUserRequest{Role: &role},
		testutils.AuthHeaders(testCtx.AdminToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.User
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, models.RoleAdmin, updated.Role)

	// Test case 2: Admins cannot deactivate themselves
	inactive := false
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		fmt.Sprintf("/api/users/%d", testCtx.Admin.ID),
		models.UpdateUserRequest{IsActive: &inactive},
		testutils.AuthHeaders(testCtx.AdminToken),
	)

	assert.Equal(t, http.StatusForbidden, w.Code)

	// Test case 3: Email already taken by another account
	takenEmail := testCtx.Admin.Email
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		fmt.Sprintf("/api/users/%d", testCtx.Viewer.ID),
		models.UpdateUserRequest{Email: &takenEmail},
		testutils.AuthHeaders(testCtx.AdminToken),
	)

	assert.Equal(t, http.StatusConflict, w.Code)

	// Test case 4: Unknown id
	name := "ghost"
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		"/api/users/99999",
		models.UpdateUserRequest{FullName: &name},
		testutils.AuthHeaders(testCtx.AdminToken),
	)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteUser(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	// Test case 1: Deleting deactivates instead of removing the row
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		fmt.Sprintf("/api/users/%d", testCtx.Viewer.ID),
		nil,
		testutils.AuthHeaders(testCtx.AdminToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		fmt.Sprintf("/api/users/%d", testCtx.Viewer.ID),
		nil,
		testutils.AuthHeaders(testCtx.AdminToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var user models.User
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.False(t, user.IsActive)

	// Test case 2: Deactivated accounts can no longer authenticate
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/auth/login",
		models.LoginRequest{Username: testCtx.Viewer.Username, Password: testutils.TestPassword},
		nil,
	)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Test case 3: Admins cannot delete themselves
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		fmt.Sprintf("/api/users/%d", testCtx.Admin.ID),
		nil,
		testutils.AuthHeaders(testCtx.AdminToken),
	)

	assert.Equal(t, http.StatusForbidden, w.Code)

	// Test case 4: Unknown id
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		"/api/users/99999",
		nil,
		testutils.AuthHeaders(testCtx.AdminToken),
	)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
