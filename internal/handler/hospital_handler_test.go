package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hospital-roster/internal/config"
	"hospital-roster/internal/database"
	"hospital-roster/internal/middleware"
	"hospital-roster/internal/repository"
	"hospital-roster/internal/service"
	"hospital-roster/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type envelope struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
	Data    json.RawMessage   `json:"data"`
}

type testServer struct {
	router *gin.Engine
	root   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.InitJWT("handler-test-secret")

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	adminRepo := repository.NewAdminRepo(db)
	svc := service.NewHospitalService(repository.NewHospitalRepo(db), adminRepo, repository.NewAuditRepo(db), nil, 0)

	cfg := &config.Config{}
	cfg.Metrics.Enabled = true
	router := NewRouter(cfg, NewHospitalHandler(svc), middleware.NewAccessControlMiddleware(adminRepo))

	return &testServer{router: router, root: token(t, "root", utils.RoleSuperAdmin)}
}

func token(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := utils.GenerateAccessToken(userID, role, time.Minute)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, bearer string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequestWithContext(context.Background(), method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" && bytes.HasPrefix(w.Body.Bytes(), []byte("{")) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

type createdHospital struct {
	Hospital struct {
		ID               string `json:"id"`
		AdditionalAdmins []struct {
			ID string `json:"id"`
		} `json:"additionalAdmins"`
	} `json:"hospital"`
}

func (s *testServer) createMercy(t *testing.T) createdHospital {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/hospitals", s.root, map[string]any{
		"name":           "Mercy General",
		"state":          "MA",
		"beds":           250,
		"adminFirstName": "Ann",
		"adminLastName":  "Park",
		"adminEmail":     "ann@mercy.org",
		"adminPassword":  "secret1",
		"additionalAdmins": []map[string]any{
			{"id": 1700000000001, "firstName": "Bo", "lastName": "Chen", "email": "bo@mercy.org"},
		},
	})
	require.Equal(t, http.StatusCreated, code, env.Error)

	var created createdHospital
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.Hospital.ID)
	return created
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "roster_http_requests_total")
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodGet, "/api/hospitals", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)

	code, _ = s.do(t, http.MethodGet, "/api/hospitals", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestHospitalLifecycle(t *testing.T) {
	s := newTestServer(t)
	created := s.createMercy(t)
	id := created.Hospital.ID

	code, env := s.do(t, http.MethodGet, "/api/hospitals?region=northeast&admin=has_admin&sort=beds&order=desc", s.root, nil)
	require.Equal(t, http.StatusOK, code)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 1, list.Count)

	code, env = s.do(t, http.MethodGet, "/api/hospitals?region=west", s.root, nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 0, list.Count)

	code, env = s.do(t, http.MethodGet, "/api/hospitals/"+id+"/admins", s.root, nil)
	require.Equal(t, http.StatusOK, code)
	var admins struct {
		Admins []struct {
			Email     string `json:"email"`
			IsPrimary bool   `json:"isPrimary"`
		} `json:"admins"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &admins))
	require.Len(t, admins.Admins, 2)
	assert.True(t, admins.Admins[0].IsPrimary)
	assert.False(t, admins.Admins[1].IsPrimary)

	code, env = s.do(t, http.MethodPut, "/api/hospitals/"+id, s.root, map[string]any{
		"city": "Boston",
		"additionalAdmins": []map[string]any{
			{"id": 1, "firstName": "Cy", "lastName": "Diaz", "email": "cy@mercy.org"},
			{"id": 2, "firstName": "Dee", "lastName": "Dup", "email": "bo@mercy.org"},
		},
		"adminsToRemove":     []string{},
		"primaryAdminUpdate": nil,
	})
	require.Equal(t, http.StatusOK, code, env.Error)
	var updated struct {
		AddedAdminsCount service.AddedAdminsCount `json:"addedAdminsCount"`
		AddedAdmins      []service.AddedAdmin     `json:"addedAdmins"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, service.AddedAdminsCount{Total: 2, Successful: 1, Failed: 1}, updated.AddedAdminsCount)
	assert.NotEmpty(t, updated.AddedAdmins[1].Error)

	code, _ = s.do(t, http.MethodPut, "/api/hospitals/"+id+"/status", s.root, map[string]string{"status": "maintenance"})
	assert.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodPut, "/api/hospitals/"+id+"/status", s.root, map[string]string{"status": "closed"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)

	code, env = s.do(t, http.MethodGet, "/api/hospitals/stats", s.root, nil)
	require.Equal(t, http.StatusOK, code)
	var stats struct {
		Total    int            `json:"total"`
		ByStatus map[string]int `json:"byStatus"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.ByStatus["maintenance"])

	code, _ = s.do(t, http.MethodGet, "/api/hospitals/"+id+"/audit", s.root, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodDelete, "/api/hospitals/"+id, s.root, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodGet, "/api/hospitals/"+id, s.root, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "hospital not found", env.Error)
}

func TestValidationErrorsReturn422(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/api/hospitals", s.root, map[string]any{
		"name": "Mercy",
		"additionalAdmins": []map[string]any{
			{"firstName": "", "lastName": "Lee", "email": "a@b.com"},
		},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "First name is required", env.Fields["admin_0_firstName"])

	code, _ = s.do(t, http.MethodPost, "/api/hospitals", s.root, "not an object")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHospitalAdminAccess(t *testing.T) {
	s := newTestServer(t)
	created := s.createMercy(t)
	id := created.Hospital.ID
	bo := token(t, created.Hospital.AdditionalAdmins[0].ID, utils.RoleHospitalAdmin)
	stranger := token(t, "someone-else", utils.RoleHospitalAdmin)

	code, _ := s.do(t, http.MethodGet, "/api/hospitals/"+id, bo, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodGet, "/api/hospitals/"+id, stranger, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := s.do(t, http.MethodGet, "/api/hospitals", stranger, nil)
	require.Equal(t, http.StatusOK, code)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Zero(t, list.Count)

	code, _ = s.do(t, http.MethodPost, "/api/hospitals", bo, map[string]any{"name": "Mine"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodDelete, "/api/hospitals/"+id, bo, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodPut, "/api/hospitals/"+id+"/status", bo, map[string]string{"status": "pending"})
	assert.Equal(t, http.StatusOK, code)
}
