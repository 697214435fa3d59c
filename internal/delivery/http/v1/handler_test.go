package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/tracklin/internal/models"
	"github.com/adanyl0v/tracklin/internal/repository/memory"
	"github.com/adanyl0v/tracklin/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubAuthService accepts "token-<user>" access tokens and "refresh-<user>"
// refresh tokens. "expired-<user>" access tokens need a refresh.
type stubAuthService struct {
	services.AuthService
}

func (stubAuthService) Authenticate(_ context.Context, accessToken, _ string) (*models.Session, error) {
	switch {
	case strings.HasPrefix(accessToken, "token-"):
		userID := strings.TrimPrefix(accessToken, "token-")
		return &models.Session{ID: "session-" + userID, UserID: userID}, nil
	case strings.HasPrefix(accessToken, "expired-"):
		return nil, fmt.Errorf("token is expired: %w", jwt.ErrTokenExpired)
	default:
		return nil, services.ErrSessionNotFound
	}
}

func (stubAuthService) Refresh(_ context.Context, params services.RefreshParams) (*services.LoginResult, error) {
	userID, ok := strings.CutPrefix(params.RefreshToken, "refresh-")
	if !ok {
		return nil, services.ErrSessionNotFound
	}
	now := time.Now()
	return &services.LoginResult{
		UserID:                userID,
		SessionID:             "session-" + userID,
		AccessToken:           "token-" + userID,
		AccessTokenExpiresAt:  now.Add(time.Minute),
		RefreshToken:          "refresh-" + userID,
		RefreshTokenExpiresAt: now.Add(time.Hour),
	}, nil
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

var testNow = time.Date(2024, 6, 1, 22, 30, 0, 0, time.UTC)

func newTestRouter(t *testing.T, opts Options) *gin.Engine {
	t.Helper()

	tasks := services.NewTaskService(zerolog.Nop(), memory.NewTaskRepository(), services.TaskServiceOptions{StrictTime: true})
	h := New(zerolog.Nop(), stubAuthService{}, tasks, opts)
	h.(*handlerImpl).now = func() time.Time { return testNow }

	router := gin.New()
	RegisterRoutes(router, h)
	return router
}

type request struct {
	method string
	path   string
	body   string
	token  string
	cookie *http.Cookie
}

func do(t *testing.T, router http.Handler, req request) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(req.method, req.path, strings.NewReader(req.body))
	if req.body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		r.Header.Set("Authorization", "Bearer "+req.token)
	}
	if req.cookie != nil {
		r.AddCookie(req.cookie)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func createTask(t *testing.T, router http.Handler, token, body string) taskResponse {
	t.Helper()
	w := do(t, router, request{method: http.MethodPost, path: "/tasks", body: body, token: token})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[taskResponse](t, w)
}

func TestCreateTask(t *testing.T) {
	router := newTestRouter(t, Options{})

	w := do(t, router, request{
		method: http.MethodPost,
		path:   "/tasks",
		body:   `{"text":"Buy milk","date":"2024-06-01"}`,
		token:  "token-alice",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode[map[string]any](t, w)
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, "alice", body["owner_id"])
	assert.Equal(t, "Buy milk", body["text"])
	assert.Equal(t, "2024-06-01", body["date"])
	assert.Nil(t, body["time"])
	assert.Contains(t, body, "time")
	assert.Equal(t, false, body["completed"])
}

func TestCreateTaskValidation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields map[string]string
	}{
		{
			name:   "empty body",
			body:   ``,
			fields: map[string]string{"text": services.ReasonRequired},
		},
		{
			name:   "blank text",
			body:   `{"text":"   "}`,
			fields: map[string]string{"text": services.ReasonRequired},
		},
		{
			name:   "wrong types",
			body:   `{"text":42,"date":true,"time":8}`,
			fields: map[string]string{"text": services.ReasonString, "date": services.ReasonDate, "time": services.ReasonString},
		},
		{
			name:   "bad time",
			body:   `{"text":"x","time":"99.99"}`,
			fields: map[string]string{"time": services.ReasonTime},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, Options{})

			w := do(t, router, request{method: http.MethodPost, path: "/tasks", body: tt.body, token: "token-alice"})
			require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

			body := decode[errorBody](t, w)
			assert.Equal(t, errValidationFailed.Error(), body.Error)
			assert.Equal(t, tt.fields, body.Fields)

			w = do(t, router, request{method: http.MethodGet, path: "/tasks", token: "token-alice"})
			assert.JSONEq(t, `[]`, w.Body.String())
		})
	}
}

func TestCreateTaskMalformedBody(t *testing.T) {
	router := newTestRouter(t, Options{})

	for _, body := range []string{`{"text":`, `["text"]`, `"text"`} {
		w := do(t, router, request{method: http.MethodPost, path: "/tasks", body: body, token: "token-alice"})
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestTasksRequireAuthentication(t *testing.T) {
	router := newTestRouter(t, Options{})

	for _, req := range []request{
		{method: http.MethodGet, path: "/tasks"},
		{method: http.MethodGet, path: "/todolist"},
		{method: http.MethodGet, path: "/schedule"},
		{method: http.MethodPost, path: "/tasks", body: `{"text":"x"}`, token: "bogus"},
		{method: http.MethodDelete, path: "/tasks/1", token: ""},
	} {
		w := do(t, router, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", req.method, req.path)
	}
}

func TestAccessTokenCookie(t *testing.T) {
	router := newTestRouter(t, Options{})

	w := do(t, router, request{
		method: http.MethodGet,
		path:   "/tasks",
		cookie: &http.Cookie{Name: accessTokenCookie, Value: "token-alice"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExpiredAccessTokenIsRefreshed(t *testing.T) {
	router := newTestRouter(t, Options{})
	createTask(t, router, "token-alice", `{"text":"mine"}`)

	r := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	r.Header.Set("Authorization", "Bearer expired-alice")
	r.AddCookie(&http.Cookie{Name: refreshTokenCookie, Value: "refresh-alice"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[[]taskResponse](t, w), 1)

	cookies := make(map[string]string)
	for _, c := range w.Result().Cookies() {
		cookies[c.Name] = c.Value
	}
	assert.Equal(t, "token-alice", cookies[accessTokenCookie])
	assert.Equal(t, "refresh-alice", cookies[refreshTokenCookie])

	w = do(t, router, request{method: http.MethodGet, path: "/tasks", token: "expired-alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTask(t *testing.T) {
	router := newTestRouter(t, Options{})
	task := createTask(t, router, "token-alice", `{"text":"Buy milk","date":"2024-06-01","time":"08.00"}`)

	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		w := do(t, router, request{
			method: method,
			path:   "/tasks/" + task.ID,
			body:   `{"completed":true}`,
			token:  "token-alice",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		updated := decode[taskResponse](t, w)
		assert.True(t, updated.Completed)
		assert.Equal(t, task.Text, updated.Text)
		assert.Equal(t, task.Date, updated.Date)
		assert.Equal(t, task.Time, updated.Time)
	}

	w := do(t, router, request{
		method: http.MethodPut,
		path:   "/tasks/" + task.ID,
		body:   `{"date":null,"time":""}`,
		token:  "token-alice",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[taskResponse](t, w)
	assert.Nil(t, updated.Date)
	assert.Nil(t, updated.Time)
	assert.True(t, updated.Completed)
}

func TestUpdateTaskErrors(t *testing.T) {
	router := newTestRouter(t, Options{})
	task := createTask(t, router, "token-alice", `{"text":"mine"}`)

	w := do(t, router, request{method: http.MethodPut, path: "/tasks/" + task.ID, body: `{"text":"stolen"}`, token: "token-bob"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, router, request{method: http.MethodPut, path: "/tasks/999", body: `{"text":"x"}`, token: "token-alice"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, request{method: http.MethodPut, path: "/tasks/" + task.ID, body: `{"text":null,"completed":1}`, token: "token-alice"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, map[string]string{
		"text":      services.ReasonString,
		"completed": services.ReasonBoolean,
	}, decode[errorBody](t, w).Fields)

	w = do(t, router, request{method: http.MethodPut, path: "/tasks/" + task.ID, body: `{bad`, token: "token-alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, request{method: http.MethodPut, path: "/tasks/" + task.ID, body: `{"text":null}`, token: "token-alice"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, map[string]string{"text": services.ReasonString}, decode[errorBody](t, w).Fields)

	w = do(t, router, request{method: http.MethodGet, path: "/tasks", token: "token-alice"})
	tasks := decode[[]taskResponse](t, w)
	require.Len(t, tasks, 1)
	assert.Equal(t, "mine", tasks[0].Text)
}

func TestUpdateTaskChecksOwnershipBeforeBody(t *testing.T) {
	router := newTestRouter(t, Options{})
	task := createTask(t, router, "token-alice", `{"text":"mine"}`)

	for _, body := range []string{`{"completed":1}`, `{"text":null,"date":5}`, `{bad`, `[1,2]`} {
		w := do(t, router, request{method: http.MethodPut, path: "/tasks/" + task.ID, body: body, token: "token-bob"})
		assert.Equal(t, http.StatusForbidden, w.Code, body)

		w = do(t, router, request{method: http.MethodPatch, path: "/tasks/999", body: body, token: "token-alice"})
		assert.Equal(t, http.StatusNotFound, w.Code, body)
	}

	w := do(t, router, request{method: http.MethodGet, path: "/tasks", token: "token-alice"})
	tasks := decode[[]taskResponse](t, w)
	require.Len(t, tasks, 1)
	assert.Equal(t, "mine", tasks[0].Text)
	assert.False(t, tasks[0].Completed)
}

func TestDeleteTask(t *testing.T) {
	router := newTestRouter(t, Options{})
	task := createTask(t, router, "token-alice", `{"text":"mine"}`)

	w := do(t, router, request{method: http.MethodDelete, path: "/tasks/" + task.ID, token: "token-bob"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, router, request{method: http.MethodDelete, path: "/tasks/" + task.ID, token: "token-alice"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = do(t, router, request{method: http.MethodDelete, path: "/tasks/" + task.ID, token: "token-alice"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetTasksOnlyOwn(t *testing.T) {
	router := newTestRouter(t, Options{})
	createTask(t, router, "token-alice", `{"text":"later","date":"2024-03-02"}`)
	createTask(t, router, "token-alice", `{"text":"nine","date":"2024-03-01","time":"09.00"}`)
	createTask(t, router, "token-alice", `{"text":"eight","date":"2024-03-01","time":"08.00"}`)
	createTask(t, router, "token-bob", `{"text":"bob's"}`)

	w := do(t, router, request{method: http.MethodGet, path: "/tasks", token: "token-alice"})
	require.Equal(t, http.StatusOK, w.Code)

	var texts []string
	for _, task := range decode[[]taskResponse](t, w) {
		assert.Equal(t, "alice", task.OwnerID)
		texts = append(texts, task.Text)
	}
	assert.Equal(t, []string{"eight", "nine", "later"}, texts)
}

func TestTodoList(t *testing.T) {
	router := newTestRouter(t, Options{Location: time.FixedZone("UTC+3", 3*60*60)})
	createTask(t, router, "token-alice", `{"text":"today","date":"2024-06-01"}`)
	createTask(t, router, "token-alice", `{"text":"tomorrow","date":"2024-06-02"}`)
	createTask(t, router, "token-alice", `{"text":"anytime"}`)

	w := do(t, router, request{method: http.MethodGet, path: "/todolist?today=2024-06-01", token: "token-alice"})
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[todayResponse](t, w)
	assert.Equal(t, "2024-06-01", view.Date.String())
	require.Len(t, view.Tasks, 1)
	assert.Equal(t, "today", view.Tasks[0].Text)

	// Without a client date, 22:30 UTC is already the 2nd at UTC+3.
	w = do(t, router, request{method: http.MethodGet, path: "/todolist", token: "token-alice"})
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[todayResponse](t, w)
	assert.Equal(t, "2024-06-02", view.Date.String())
	require.Len(t, view.Tasks, 1)
	assert.Equal(t, "tomorrow", view.Tasks[0].Text)
}

func TestSchedule(t *testing.T) {
	router := newTestRouter(t, Options{})
	createTask(t, router, "token-alice", `{"text":"b","date":"2024-06-02"}`)
	createTask(t, router, "token-alice", `{"text":"a","date":"2024-06-01"}`)
	createTask(t, router, "token-alice", `{"text":"anytime"}`)
	createTask(t, router, "token-alice", `{"text":"c","date":"2024-06-02","time":"10.00"}`)

	w := do(t, router, request{method: http.MethodGet, path: "/schedule", token: "token-alice"})
	require.Equal(t, http.StatusOK, w.Code)

	view := decode[scheduleResponse](t, w)
	assert.Len(t, view.Tasks, 4)
	require.Len(t, view.Days, 3)
	assert.Nil(t, view.Days[0].Date)
	assert.Equal(t, "2024-06-01", view.Days[1].Date.String())
	assert.Equal(t, "2024-06-02", view.Days[2].Date.String())
	require.Len(t, view.Days[2].Tasks, 2)
	assert.Equal(t, "b", view.Days[2].Tasks[0].Text)
	assert.Equal(t, "c", view.Days[2].Tasks[1].Text)
}

func TestScheduleEmpty(t *testing.T) {
	router := newTestRouter(t, Options{})

	w := do(t, router, request{method: http.MethodGet, path: "/schedule", token: "token-alice"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tasks":[],"days":[]}`, w.Body.String())
}

func TestReconcileTimer(t *testing.T) {
	router := newTestRouter(t, Options{})

	body := fmt.Sprintf(`{"inputHours":0,"inputMinutes":1,"inputSeconds":0,"initialSeconds":60,
		"remainingSeconds":60,"isCounting":true,"isTimeUp":false,"lastUpdatedAt":%d}`,
		testNow.Add(-15500*time.Millisecond).UnixMilli())
	w := do(t, router, request{method: http.MethodPost, path: "/timer/reconcile", body: body})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[map[string]any](t, w)
	assert.EqualValues(t, 45, resp["remainingSeconds"])
	assert.Equal(t, "running", resp["phase"])
	assert.Equal(t, "00:00:45", resp["display"])
	assert.Equal(t, false, resp["expired"])
	assert.EqualValues(t, testNow.UnixMilli(), resp["lastUpdatedAt"])

	body = fmt.Sprintf(`{"initialSeconds":60,"remainingSeconds":10,"isCounting":true,"lastUpdatedAt":%d}`,
		testNow.Add(-time.Minute).UnixMilli())
	w = do(t, router, request{method: http.MethodPost, path: "/timer/reconcile", body: body})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[map[string]any](t, w)
	assert.EqualValues(t, 0, resp["remainingSeconds"])
	assert.Equal(t, "time_up", resp["phase"])
	assert.Equal(t, true, resp["expired"])

	w = do(t, router, request{method: http.MethodPost, path: "/timer/reconcile", body: `{"remainingSeconds":"ten"}`})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReconcileTimerMissingFields(t *testing.T) {
	router := newTestRouter(t, Options{})

	w := do(t, router, request{method: http.MethodPost, path: "/timer/reconcile",
		body: `{"initialSeconds":120,"isCounting":true,"inputMinutes":null}`})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[map[string]any](t, w)
	assert.EqualValues(t, 0, resp["inputHours"])
	assert.EqualValues(t, 1, resp["inputMinutes"])
	assert.EqualValues(t, 120, resp["remainingSeconds"])
	assert.Equal(t, "running", resp["phase"])
	assert.Equal(t, "00:02:00", resp["display"])
	assert.Equal(t, false, resp["expired"])

	w = do(t, router, request{method: http.MethodPost, path: "/timer/reconcile", body: `{}`})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[map[string]any](t, w)
	assert.EqualValues(t, 60, resp["initialSeconds"])
	assert.EqualValues(t, 60, resp["remainingSeconds"])
	assert.Equal(t, "setup", resp["phase"])
	assert.Equal(t, "00:01:00", resp["display"])
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, Options{Store: stubPinger{}})

	w := do(t, router, request{method: http.MethodGet, path: "/healthz"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, request{method: http.MethodGet, path: "/readyz"})
	assert.Equal(t, http.StatusOK, w.Code)

	router = newTestRouter(t, Options{Store: stubPinger{err: errors.New("connection refused")}})

	w = do(t, router, request{method: http.MethodGet, path: "/healthz"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, request{method: http.MethodGet, path: "/readyz"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
