package college

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sahilchouksey/admission-bridge/database/testdb"
	"github.com/sahilchouksey/admission-bridge/model"
	"github.com/sahilchouksey/admission-bridge/services"
	"github.com/sahilchouksey/admission-bridge/utils"
	"github.com/sahilchouksey/admission-bridge/utils/auth"
	"github.com/sahilchouksey/admission-bridge/utils/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type collegeEnv struct {
	app *fiber.App
	db  *gorm.DB
	jwt *auth.JWTManager
}

func setup(t *testing.T) *collegeEnv {
	t.Helper()
	db := testdb.New(t)
	log := utils.NewNopLogger()

	jwtManager := auth.NewJWTManager(auth.JWTConfig{Secret: "test-secret", Expiry: time.Hour, RefreshExpiry: time.Hour})
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	profiles := services.NewCollegeProfileService(db, services.NewDirectoryService(db, nil, log), log)
	media := services.NewProfileMediaService(nil, profiles, 0, log)
	h := NewCollegeHandler(profiles, media, services.NewShortlistService(db, log), log)

	app := fiber.New()
	g := app.Group("/college-admins", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleCollege))
	g.Get("/forwarded-students", h.ForwardedStudents)
	g.Post("/profile", h.CreateProfile)
	g.Get("/profile", h.GetProfile)
	g.Put("/profile", h.UpdateProfile)
	g.Delete("/profile", h.DeleteProfile)

	return &collegeEnv{app: app, db: db, jwt: jwtManager}
}

func (e *collegeEnv) user(t *testing.T, role model.Role) (*model.User, string) {
	t.Helper()
	u := &model.User{Name: string(role), Email: uuid.NewString() + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, e.db.Create(u).Error)
	token, _, err := e.jwt.GenerateAccessToken(u.ID, u.Email, u.Role, u.TokenVersion)
	require.NoError(t, err)
	return u, token
}

// college registers a college account, with a profile when withProfile is set
func (e *collegeEnv) college(t *testing.T, name string, withProfile bool) (*model.CollegeAdminProfile, string) {
	t.Helper()
	c := &model.College{Name: name, InstituteCode: uuid.NewString()[:12], Email: uuid.NewString() + "@college.example.com", PasswordHash: "x"}
	require.NoError(t, e.db.Create(c).Error)
	token, _, err := e.jwt.GenerateAccessToken(c.ID, c.Email, model.RoleCollege, c.TokenVersion)
	require.NoError(t, err)
	if !withProfile {
		return nil, token
	}
	p := &model.CollegeAdminProfile{CollegeID: &c.ID, Name: name}
	require.NoError(t, e.db.Create(p).Error)
	return p, token
}

func (e *collegeEnv) shortlist(t *testing.T, studentID, profileID uint, forwarded bool) {
	t.Helper()
	row := &model.Shortlist{StudentID: studentID, CollegeProfileID: profileID, IsAdminForwarded: forwarded}
	if forwarded {
		now := time.Now()
		row.ForwardedAt = &now
	}
	require.NoError(t, e.db.Create(row).Error)
}

func (e *collegeEnv) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestForwardedStudents_OnlyOwnForwardedRows(t *testing.T) {
	e := setup(t)
	own, token := e.college(t, "Own College", true)
	other, _ := e.college(t, "Other College", true)

	forwarded, _ := e.user(t, model.RoleStudent)
	pending, _ := e.user(t, model.RoleStudent)
	elsewhere, _ := e.user(t, model.RoleStudent)
	e.shortlist(t, forwarded.ID, own.ID, true)
	e.shortlist(t, pending.ID, own.ID, false)
	e.shortlist(t, elsewhere.ID, other.ID, true)

	status, body := e.do(t, http.MethodGet, "/college-admins/forwarded-students", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, body, "data")

	students, ok := body["students"].([]interface{})
	require.True(t, ok)
	require.Len(t, students, 1)
	sheet := students[0].(map[string]interface{})
	assert.EqualValues(t, forwarded.ID, sheet["studentId"])
	assert.Equal(t, forwarded.Email, sheet["email"])
	assert.NotEmpty(t, sheet["forwardedAt"])
}

func TestForwardedStudents_Rejects(t *testing.T) {
	e := setup(t)
	_, bare := e.college(t, "No Profile", false)
	_, studentToken := e.user(t, model.RoleStudent)
	_, adminToken := e.user(t, model.RoleAdmin)

	status, _ := e.do(t, http.MethodGet, "/college-admins/forwarded-students", bare, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = e.do(t, http.MethodGet, "/college-admins/forwarded-students", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = e.do(t, http.MethodGet, "/college-admins/forwarded-students", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = e.do(t, http.MethodGet, "/college-admins/profile", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestProfileLifecycle(t *testing.T) {
	e := setup(t)
	_, token := e.college(t, "Registered", false)

	status, _ := e.do(t, http.MethodGet, "/college-admins/profile", token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body := e.do(t, http.MethodPost, "/college-admins/profile", token, fiber.Map{
		"description": "Engineering college",
		"address":     "Indore, Madhya Pradesh",
	})
	require.Equal(t, http.StatusCreated, status)
	created := body["data"].(map[string]interface{})
	assert.Equal(t, "Registered", created["name"])

	status, _ = e.do(t, http.MethodPost, "/college-admins/profile", token, fiber.Map{"name": "Second"})
	assert.Equal(t, http.StatusConflict, status)

	status, body = e.do(t, http.MethodPut, "/college-admins/profile", token, fiber.Map{"name": "Renamed"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Profile updated successfully", body["message"])

	status, body = e.do(t, http.MethodGet, "/college-admins/profile", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Renamed", body["data"].(map[string]interface{})["name"])

	status, body = e.do(t, http.MethodDelete, "/college-admins/profile", token, nil)
	assert.Equal(t, http.StatusNotImplemented, status)
	assert.Equal(t, false, body["success"])

	status, _ = e.do(t, http.MethodGet, "/college-admins/profile", token, nil)
	assert.Equal(t, http.StatusOK, status)
}
