package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hokkyo/cpadash-backend/internal/handlers"
	"github.com/hokkyo/cpadash-backend/internal/middleware"
	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
	"github.com/hokkyo/cpadash-backend/internal/repos"
	"github.com/hokkyo/cpadash-backend/internal/services"
	"github.com/hokkyo/cpadash-backend/internal/types"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&types.StudyTimeSession{},
		&types.StudyProgress{},
		&types.Todo{},
		&types.Project{},
		&types.Setting{},
		&types.ReviewSetList{},
		&types.ReviewSetItem{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	studyTimeRepo := repos.NewStudyTimeRepo(db, log)
	progressRepo := repos.NewStudyProgressRepo(db, log)
	todoRepo := repos.NewTodoRepo(db, log)
	projectRepo := repos.NewProjectRepo(db, log)
	settingRepo := repos.NewSettingRepo(db, log)
	reviewSetRepo := repos.NewReviewSetRepo(db, log)

	studyTimeService := services.NewStudyTimeService(db, log, studyTimeRepo)
	dashboardService := services.NewDashboardService(db, log, studyTimeRepo, progressRepo, settingRepo, 9)
	progressService := services.NewProgressService(db, log, progressRepo)
	todoService := services.NewTodoService(db, log, todoRepo, projectRepo)
	projectService := services.NewProjectService(db, log, projectRepo, todoRepo)
	settingsService := services.NewSettingsService(db, log, settingRepo, todoRepo, progressRepo)
	reviewSetService := services.NewReviewSetService(db, log, reviewSetRepo, settingRepo, todoRepo, projectRepo)

	return NewRouter(RouterConfig{
		CORSOrigins:       []string{"http://localhost:3000"},
		RequestMiddleware: middleware.NewRequestMiddleware(log),
		StudyTimeHandler:  handlers.NewStudyTimeHandler(log, studyTimeService),
		DashboardHandler:  handlers.NewDashboardHandler(log, dashboardService),
		ProgressHandler:   handlers.NewProgressHandler(log, progressService),
		TodoHandler:       handlers.NewTodoHandler(log, todoService),
		ProjectHandler:    handlers.NewProjectHandler(log, projectService),
		SettingsHandler:   handlers.NewSettingsHandler(log, settingsService),
		ReviewSetHandler:  handlers.NewReviewSetHandler(log, reviewSetService),
	})
}

func do(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestHealthcheckAndBanner(t *testing.T) {
	router := newTestRouter(t)

	if resp := do(t, router, http.MethodGet, "/healthcheck", ""); resp.Code != http.StatusOK {
		t.Fatalf("healthcheck status = %d", resp.Code)
	}
	resp := do(t, router, http.MethodGet, "/", "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "CPA Dashboard API") {
		t.Fatalf("banner = %d %q", resp.Code, resp.Body.String())
	}
}

func TestSyncEndpointRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	body := `{"user_id":"u1","date_key":"2025-03-10","subject":"簿記","client_session_id":"sess-1","total_ms":600000}`
	resp := do(t, router, http.MethodPost, "/api/study-time/sync", body)
	if resp.Code != http.StatusOK {
		t.Fatalf("sync status = %d body=%s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"applied_delta_ms":600000`) {
		t.Fatalf("sync body = %s", resp.Body.String())
	}

	// Replay through the full HTTP stack is still a no-op.
	resp = do(t, router, http.MethodPost, "/api/study-time/sync", body)
	if !strings.Contains(resp.Body.String(), `"applied_delta_ms":0`) {
		t.Fatalf("replay body = %s", resp.Body.String())
	}

	resp = do(t, router, http.MethodGet, "/api/study-time/summary?user_id=u1&date_key=2025-03-10", "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"today_total_ms":600000`) {
		t.Fatalf("summary = %d %s", resp.Code, resp.Body.String())
	}
}

func TestSyncEndpointValidation(t *testing.T) {
	router := newTestRouter(t)

	resp := do(t, router, http.MethodPost, "/api/study-time/sync",
		`{"date_key":"2025-03-10","subject":"","client_session_id":"s","total_ms":1}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"code":"validation"`) {
		t.Fatalf("body = %s", resp.Body.String())
	}
}

func TestTodoEndpointsRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	resp := do(t, router, http.MethodPost, "/api/todos", `{"title":"過去問"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", resp.Code, resp.Body.String())
	}

	resp = do(t, router, http.MethodGet, "/api/todos", "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "過去問") {
		t.Fatalf("list = %d %s", resp.Code, resp.Body.String())
	}

	resp = do(t, router, http.MethodGet, "/api/todos/999", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("missing todo status = %d, want 404", resp.Code)
	}
}

func TestReviewSetGenerateEndpoint(t *testing.T) {
	router := newTestRouter(t)

	resp := do(t, router, http.MethodPost, "/api/review-sets", `{"name":"エビングハウス","offsets":[0,3]}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create set status = %d body=%s", resp.Code, resp.Body.String())
	}
	var created struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	resp = do(t, router, http.MethodPost,
		fmt.Sprintf("/api/review-sets/%d/generate", created.ID),
		`{"subject":"簿記","start_date":"2025-04-01T00:00:00Z"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("generate status = %d body=%s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"created_count":2`) {
		t.Fatalf("generate body = %s", resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "復習_簿記1回目") {
		t.Fatalf("generate body = %s", resp.Body.String())
	}
}
