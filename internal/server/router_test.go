package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-management-api/internal/config"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/testutil"
	"gorm.io/gorm"
)

type harness struct {
	t          *testing.T
	db         *gorm.DB
	router     *gin.Engine
	dispatcher *testutil.RecordingDispatcher
}

func newHarness(t *testing.T) *harness {
	return newHarnessWithAI(t, nil)
}

func newHarnessWithAI(t *testing.T, aiService *services.AIService) *harness {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	dispatcher := &testutil.RecordingDispatcher{}
	cfg := &config.Config{CORSOrigins: []string{"*"}}

	return &harness{
		t:          t,
		db:         db,
		router:     NewRouter(cfg, NewServices(db, &testutil.FakeVerifier{}, dispatcher, aiService)),
		dispatcher: dispatcher,
	}
}

func (h *harness) do(method, path string, body interface{}, user *models.User) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("Authorization", "Bearer token-"+user.ClerkID)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/health", "/api/health"} {
		w := h.do(http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, true, body["ok"])
		assert.NotEmpty(t, body["timestamp"])
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/api/projects", "/api/tasks", "/api/dashboard", "/api/calendar", "/api/users/me"} {
		w := h.do(http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestFirstRequestProvisionsUser(t *testing.T) {
	h := newHarness(t)
	stranger := &models.User{ClerkID: "user_new"}

	w := h.do(http.MethodGet, "/api/users/me", nil, stranger)

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "user_new@example.com", data["email"])

	var count int64
	require.NoError(t, h.db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestProjectLifecycle(t *testing.T) {
	h := newHarness(t)
	owner := testutil.CreateUser(t, h.db, "Owner", "owner@x.com")
	member := testutil.CreateUser(t, h.db, "Member", "member@x.com")

	w := h.do(http.MethodPost, "/api/projects", map[string]interface{}{
		"name":       "Launch",
		"start_date": "2025-06-01",
		"end_date":   "2025-06-30",
		"members": []map[string]string{
			{"email": "member@x.com", "role": "editor"},
			{"email": "guest@x.com"},
		},
	}, owner)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	project := decode(t, w)["data"].(map[string]interface{})
	uuid := project["uuid"].(string)
	assert.Equal(t, "2025-06-01", project["start_date"])
	assert.Len(t, project["members"], 2)
	assert.Len(t, h.dispatcher.Invitations(), 1)

	w = h.do(http.MethodGet, "/api/projects/"+uuid, nil, member)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "editor", decode(t, w)["data"].(map[string]interface{})["role"])

	w = h.do(http.MethodPost, "/api/projects/"+uuid+"/members", map[string]string{"email": "MEMBER@x.com", "role": "admin"}, owner)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = h.do(http.MethodPost, "/api/tasks", map[string]interface{}{
		"project_id":   uuid,
		"title":        "Kickoff",
		"due_date":     "2025-06-02",
		"assignee_ids": []uint64{member.ID},
	}, member)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = h.do(http.MethodGet, "/api/calendar?start_date=2025-06-01&end_date=2025-06-30", nil, member)
	require.Equal(t, http.StatusOK, w.Code)
	calendar := decode(t, w)["data"].(map[string]interface{})
	summary := calendar["summary"].(map[string]interface{})
	assert.Equal(t, float64(1), summary["totalProjects"])
	assert.Equal(t, float64(1), summary["memberProjects"])
	assert.Equal(t, float64(1), summary["assignedTasks"])

	w = h.do(http.MethodGet, "/api/dashboard", nil, owner)
	require.Equal(t, http.StatusOK, w.Code)
	dashboard := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), dashboard["totalProjects"])
	assert.Equal(t, float64(1), dashboard["totalTasks"])
	assert.Equal(t, float64(3), dashboard["teamSize"])

	w = h.do(http.MethodDelete, "/api/projects/"+uuid, nil, member)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(http.MethodDelete, "/api/projects", map[string]interface{}{"projectIds": []string{uuid}}, owner)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["deleted"])

	w = h.do(http.MethodGet, "/api/projects/"+uuid, nil, owner)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCalendarWindowValidation(t *testing.T) {
	h := newHarness(t)
	user := testutil.CreateUser(t, h.db, "U", "u@x.com")

	for _, query := range []string{
		"?start_date=2025-06-01",
		"?end_date=2025-06-01",
		"?start_date=2025-06-10&end_date=2025-06-01",
		"?start_date=june&end_date=2025-06-01",
	} {
		w := h.do(http.MethodGet, "/api/calendar"+query, nil, user)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

func TestAIDescriptionWithoutEndpoint(t *testing.T) {
	h := newHarness(t)
	user := testutil.CreateUser(t, h.db, "U", "u@x.com")

	w := h.do(http.MethodPost, "/api/ai/project-description", map[string]string{"name": "Launch"}, user)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "SERVICE_UNAVAILABLE", decode(t, w)["code"])
}

func TestAIDescriptionEmptyReply(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","model":"llama3.2",` +
			`"choices":[{"index":0,"message":{"role":"assistant","content":"  "},"finish_reason":"stop"}]}`))
	}))
	t.Cleanup(upstream.Close)

	h := newHarnessWithAI(t, services.NewAIService(config.AIConfig{BaseURL: upstream.URL + "/v1", Model: "llama3.2"}))
	user := testutil.CreateUser(t, h.db, "U", "u@x.com")

	w := h.do(http.MethodPost, "/api/ai/project-description", map[string]string{"name": "Launch"}, user)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "BAD_GATEWAY", decode(t, w)["code"])
}

func TestDeleteProjectRejectsBodyOnItemRoute(t *testing.T) {
	h := newHarness(t)
	owner := testutil.CreateUser(t, h.db, "Owner", "owner@x.com")
	first := testutil.CreateProject(t, h.db, owner, "First")
	second := testutil.CreateProject(t, h.db, owner, "Second")

	w := h.do(http.MethodDelete, "/api/projects/"+first.UUID,
		map[string]interface{}{"projectIds": []string{second.UUID}}, owner)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	require.NoError(t, h.db.Model(&models.Project{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	w = h.do(http.MethodDelete, "/api/projects/"+first.UUID, nil, owner)
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(http.MethodGet, "/api/projects/"+second.UUID, nil, owner)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateUserIsBoundToCaller(t *testing.T) {
	h := newHarness(t)
	caller := &models.User{ClerkID: "user_new"}

	w := h.do(http.MethodPost, "/api/users", map[string]string{
		"clerk_id": "someone-else",
		"email":    "victim@x.com",
	}, caller)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(http.MethodPost, "/api/users", map[string]string{"email": "victim@x.com"}, caller)
	assert.Equal(t, http.StatusConflict, w.Code)

	var victims int64
	require.NoError(t, h.db.Model(&models.User{}).Where("email = ?", "victim@x.com").Count(&victims).Error)
	assert.Zero(t, victims)
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
