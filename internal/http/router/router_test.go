package router_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sitebook/sitebook-api/docs"
	"github.com/sitebook/sitebook-api/internal/auth"
	"github.com/sitebook/sitebook-api/internal/config"
	"github.com/sitebook/sitebook-api/internal/domain"
	"github.com/sitebook/sitebook-api/internal/http/handler"
	"github.com/sitebook/sitebook-api/internal/http/middleware"
	"github.com/sitebook/sitebook-api/internal/http/router"
	"github.com/sitebook/sitebook-api/internal/importer"
	"github.com/sitebook/sitebook-api/internal/repository"
	"github.com/sitebook/sitebook-api/internal/service"
	"github.com/sitebook/sitebook-api/internal/storage"
	"github.com/sitebook/sitebook-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
	"go.uber.org/zap"
)

const testAPIKey = "test-api-key-12345"

type testServer struct {
	handler http.Handler
	tokens  *auth.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	db := testutil.SetupTestDB(t)

	cfg := &config.Config{
		App: config.AppConfig{Environment: "test"},
		Auth: config.AuthConfig{
			JWTSecret:  "router-test-secret-0123456789abcdef",
			Issuer:     "sitebook",
			TokenTTL:   60,
			CookieName: "sitebook_token",
			APIKey:     testAPIKey,
		},
		Security: config.SecurityConfig{ContentTypeNosniff: true, FrameOptions: "DENY"},
		Import:   config.ImportConfig{MaxUploadSizeMB: 1},
	}

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	imports := service.NewImportService(importer.New(db, logger), repository.NewImportRunRepository(db), logger)
	exports := service.NewExportService(repository.NewSnapshotRepository(db), logger)
	summary := service.NewSummaryService(repository.NewSummaryRepository(db), imports, logger)
	backups := service.NewBackupService(exports, imports, store, "backups", 0, logger)

	rt := router.NewRouter(
		cfg,
		logger,
		db,
		auth.NewMiddleware(cfg, logger),
		middleware.NewRateLimiter(&cfg.RateLimit, logger),
		handler.NewAuthHandler(),
		handler.NewDataHandler(imports, exports, summary, backups, cfg.Import.MaxUploadBytes(), logger),
	)

	return &testServer{
		handler: rt.Setup(),
		tokens:  auth.NewTokenManager(&cfg.Auth),
	}
}

func (s *testServer) token(t *testing.T, role domain.UserRoleType) string {
	t.Helper()
	token, _, err := s.tokens.Issue("user-"+string(role), "Test "+string(role), string(role)+"@example.com", []domain.UserRoleType{role})
	require.NoError(t, err)
	return token
}

// do sends a request; credential is a role token, the API key, or empty
func (s *testServer) do(t *testing.T, method, path, body, credential string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	switch {
	case credential == testAPIKey:
		req.Header.Set("x-api-key", credential)
	case credential != "":
		req.Header.Set("Authorization", "Bearer "+credential)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = s.do(t, http.MethodGet, "/health/db", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decodeBody[map[string]interface{}](t, w)["status"])

	w = s.do(t, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestImportEndpoint_Authorization(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/data/import", testutil.ExampleSnapshotJSON, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/data/import", testutil.ExampleSnapshotJSON, s.token(t, domain.RoleManager))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/data/import", testutil.ExampleSnapshotJSON, s.token(t, domain.RoleAdmin))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestImportEndpoint_Outcomes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/data/import?source=nightly", testutil.FullSnapshotJSON, testAPIKey)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeBody[domain.ImportResult](t, w)
	assert.True(t, result.Success)
	require.NotNil(t, result.RunID)

	t.Run("undecodable body", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/data/import", `{"projects": [`, testAPIKey)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, domain.ErrorTypeBadRequest, decodeBody[domain.APIError](t, w).Type)
	})

	t.Run("too large", func(t *testing.T) {
		body := strings.Repeat(" ", 2<<20) + "{}"
		w := s.do(t, http.MethodPost, "/api/v1/data/import", body, testAPIKey)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("rolled back", func(t *testing.T) {
		snap := testutil.DecodeSnapshot(t, testutil.FullSnapshotJSON)
		snap.Tasks[0].ProjectID = 999
		body, err := json.Marshal(snap)
		require.NoError(t, err)

		w := s.do(t, http.MethodPost, "/api/v1/data/import", string(body), testAPIKey)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		failed := decodeBody[domain.ImportResult](t, w)
		assert.False(t, failed.Success)
		assert.Contains(t, failed.Error, "projectId 999")
		assert.NotNil(t, failed.RunID)
	})

	manager := s.token(t, domain.RoleManager)

	w = s.do(t, http.MethodGet, "/api/v1/data/import/runs?pageSize=10", "", manager)
	require.Equal(t, http.StatusOK, w.Code)
	page := decodeBody[struct {
		Data  []domain.ImportRunDTO `json:"data"`
		Total int64                 `json:"total"`
	}](t, w)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Data, 2)
	assert.Equal(t, domain.ImportRunStatusRolledBack, page.Data[0].Status)

	w = s.do(t, http.MethodGet, "/api/v1/data/import/runs?status=bogus", "", manager)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/data/import/runs/"+result.RunID.String(), "", manager)
	require.Equal(t, http.StatusOK, w.Code)
	run := decodeBody[domain.ImportRunDTO](t, w)
	assert.Equal(t, "api:nightly", run.Source)
	assert.Equal(t, "API Service", run.TriggeredBy)
	assert.Equal(t, domain.ImportRunStatusCommitted, run.Status)

	w = s.do(t, http.MethodGet, "/api/v1/data/import/runs/not-a-uuid", "", manager)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/data/import/runs/"+uuid.NewString(), "", manager)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImportEndpoint_LongSourceLabel(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/data/import?source="+url.QueryEscape(strings.Repeat("æ", 300)), testutil.ExampleSnapshotJSON, testAPIKey)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeBody[domain.ImportResult](t, w)
	require.NotNil(t, result.RunID)

	w = s.do(t, http.MethodGet, "/api/v1/data/import/runs/"+result.RunID.String(), "", testAPIKey)
	require.Equal(t, http.StatusOK, w.Code)
	run := decodeBody[domain.ImportRunDTO](t, w)
	assert.True(t, utf8.ValidString(run.Source))
	assert.Equal(t, 200, utf8.RuneCountInString(run.Source))
	assert.Equal(t, "api:"+strings.Repeat("æ", 196), run.Source)
}

func TestExportAndSummaryEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/data/import", testutil.FullSnapshotJSON, testAPIKey)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/data/export", "", s.token(t, domain.RoleEmployee))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/data/export?pretty=true", "", s.token(t, domain.RoleManager))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=")
	snap := decodeBody[domain.Snapshot](t, w)
	assert.Len(t, snap.Projects, 4)
	assert.Len(t, snap.Tasks, 3)

	w = s.do(t, http.MethodGet, "/api/v1/data/summary", "", s.token(t, domain.RoleEmployee))
	require.Equal(t, http.StatusOK, w.Code)
	summary := decodeBody[domain.SummaryDTO](t, w)
	assert.InDelta(t, testutil.FullSnapshotProjectTotal, summary.ProjectTotalValue, 0.001)
	require.NotNil(t, summary.LastImport)
}

func TestBackupEndpoints(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, domain.RoleAdmin)

	w := s.do(t, http.MethodPost, "/api/v1/data/import", testutil.FullSnapshotJSON, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/data/backups", "", admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	backup := decodeBody[domain.BackupDTO](t, w)
	assert.True(t, strings.HasPrefix(backup.Path, "backups/"))

	w = s.do(t, http.MethodGet, "/api/v1/data/backups", "", admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]domain.BackupDTO](t, w), 1)

	w = s.do(t, http.MethodPost, "/api/v1/data/backups/restore", `{"path":"`+backup.Path+`"}`, s.token(t, domain.RoleManager))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// the API key may import but not restore
	w = s.do(t, http.MethodPost, "/api/v1/data/backups/restore", `{"path":"`+backup.Path+`"}`, testAPIKey)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/data/backups/restore", `{"path":"`+backup.Path+`"}`, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decodeBody[domain.ImportResult](t, w).Success)

	w = s.do(t, http.MethodPost, "/api/v1/data/backups/restore", `{}`, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	apiErr := decodeBody[domain.APIError](t, w)
	assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
	assert.Contains(t, apiErr.Errors, "path")

	w = s.do(t, http.MethodPost, "/api/v1/data/backups/restore", `{"path":"`+backup.Path+`","force":true}`, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.ErrorTypeBadRequest, decodeBody[domain.APIError](t, w).Type)

	w = s.do(t, http.MethodPost, "/api/v1/data/backups/restore", `{"path":"backups/snapshot-gone.json"}`, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/data/backups/restore", `{"path":"../config.json"}`, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthMe(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/auth/me", "", s.token(t, domain.RoleManager))
	require.Equal(t, http.StatusOK, w.Code)
	me := decodeBody[domain.AuthUserDTO](t, w)
	assert.Equal(t, "manager@example.com", me.Email)
	assert.Equal(t, []string{"data:export", "data:read"}, me.Permissions)
	assert.Equal(t, auth.MethodJWT, me.Method)
}

func TestSwaggerDocumentCoversRoutes(t *testing.T) {
	s := newTestServer(t)

	raw, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	require.NoError(t, err)
	var doc struct {
		BasePath    string                                `json:"basePath"`
		Paths       map[string]map[string]json.RawMessage `json:"paths"`
		Definitions map[string]json.RawMessage            `json:"definitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	require.Equal(t, "/api/v1", doc.BasePath)

	routed := 0
	err = chi.Walk(s.handler.(chi.Routes), func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		path, ok := strings.CutPrefix(route, doc.BasePath)
		if !ok {
			return nil
		}
		routed++
		assert.Contains(t, doc.Paths[path], strings.ToLower(method), "%s %s is not documented", method, route)
		return nil
	})
	require.NoError(t, err)

	documented := 0
	for _, ops := range doc.Paths {
		documented += len(ops)
	}
	assert.Equal(t, routed, documented)

	for _, ref := range regexp.MustCompile(`"#/definitions/([^"]+)"`).FindAllStringSubmatch(raw, -1) {
		assert.Contains(t, doc.Definitions, ref[1])
	}
}
