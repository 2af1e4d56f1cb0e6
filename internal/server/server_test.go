package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"

	"arvyax/internal/config"
	"arvyax/internal/db"
	"arvyax/internal/engine"
	"arvyax/internal/migrate"
)

type testServer struct {
	URL    string
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Default()
	cfg.Workspace = t.TempDir()
	cfg.Auth.JWTSecret = "test-secret"
	conn, err := db.Open(db.Config{Workspace: cfg.Workspace})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	e := engine.New(conn, cfg)
	handler, err := New(Config{Engine: e, BasePath: "/v1"})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	testSrv := &testServer{
		URL:    "http://" + ln.Addr().String(),
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
			conn.Close()
		},
	}
	t.Cleanup(testSrv.Close)
	return testSrv
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

func signUp(t *testing.T, srv *testServer, email string) (AuthResponse, map[string]string) {
	t.Helper()
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v1/auth/signup", map[string]any{
		"email":     email,
		"password":  "hunter2secret",
		"full_name": "Test User",
	}, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("sign up status %d: %s", res.StatusCode, string(data))
	}
	var auth AuthResponse
	if err := json.Unmarshal(data, &auth); err != nil {
		t.Fatalf("unmarshal auth: %v", err)
	}
	return auth, map[string]string{"Authorization": "Bearer " + auth.Session.Token}
}

func TestHealthIsPublic(t *testing.T) {
	srv := newTestServer(t)
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v1/health", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health status %d: %s", res.StatusCode, string(data))
	}
}

func TestUnauthenticatedRejected(t *testing.T) {
	srv := newTestServer(t)
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v1/tasks", nil, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", res.StatusCode, string(data))
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.Error.Code != "unauthorized" {
		t.Fatalf("code = %q, want unauthorized", envelope.Error.Code)
	}
}

func TestSignUpSignInFlow(t *testing.T) {
	srv := newTestServer(t)
	auth, headers := signUp(t, srv, "ada@example.com")
	if auth.Profile.Email != "ada@example.com" {
		t.Fatalf("profile email = %q", auth.Profile.Email)
	}

	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v1/me", nil, headers)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("me status %d: %s", res.StatusCode, string(data))
	}
	var me ProfileResponse
	if err := json.Unmarshal(data, &me); err != nil {
		t.Fatalf("unmarshal me: %v", err)
	}
	if me.ID != auth.Profile.ID {
		t.Fatalf("me id = %s, want %s", me.ID, auth.Profile.ID)
	}

	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v1/auth/signup", map[string]any{
		"email":     "ada@example.com",
		"password":  "hunter2secret",
		"full_name": "Again",
	}, nil)
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate signup status %d: %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v1/auth/signin", map[string]any{
		"email":    "ada@example.com",
		"password": "wrong-password",
	}, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password status %d: %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v1/auth/signout", nil, headers)
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("signout status %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v1/me", nil, headers)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("me after signout status %d: %s", res.StatusCode, string(data))
	}
}

func TestTaskCRUDOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	_, headers := signUp(t, srv, "ada@example.com")
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/v1/tasks", map[string]any{
		"title":    "Ship feature",
		"priority": "high",
	}, headers)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create task status %d: %s", res.StatusCode, string(data))
	}
	var created TaskResponse
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}
	if created.Status != "todo" || created.Priority != "high" {
		t.Fatalf("created task = %+v", created)
	}

	res, data = doJSON(t, client, http.MethodPatch, srv.URL+"/v1/tasks/"+created.ID, map[string]any{
		"status": "in_progress",
	}, headers)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("patch status %d: %s", res.StatusCode, string(data))
	}
	var updated TaskResponse
	_ = json.Unmarshal(data, &updated)
	if updated.Status != "in_progress" {
		t.Fatalf("status after patch = %s", updated.Status)
	}

	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/v1/tasks/"+created.ID+"/toggle", nil, headers)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("toggle status %d: %s", res.StatusCode, string(data))
	}
	var toggled TaskResponse
	_ = json.Unmarshal(data, &toggled)
	if toggled.Status != "completed" {
		t.Fatalf("status after toggle = %s", toggled.Status)
	}

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v1/tasks?status=completed", nil, headers)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list status %d: %s", res.StatusCode, string(data))
	}
	var list []TaskResponse
	if err := json.Unmarshal(data, &list); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("filtered list = %+v", list)
	}

	res, data = doJSON(t, client, http.MethodDelete, srv.URL+"/v1/tasks/"+created.ID, nil, headers)
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v1/tasks/"+created.ID, nil, headers)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status %d: %s", res.StatusCode, string(data))
	}
}

func TestValidationErrorEnvelope(t *testing.T) {
	srv := newTestServer(t)
	_, headers := signUp(t, srv, "ada@example.com")

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v1/tasks", map[string]any{
		"title": "   ",
	}, headers)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d: %s", res.StatusCode, string(data))
	}
	var envelope struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.Error.Code != "validation_failed" {
		t.Fatalf("code = %q", envelope.Error.Code)
	}
	if envelope.Error.Details["title"] != "Title is required" {
		t.Fatalf("details = %+v", envelope.Error.Details)
	}
}

func TestClearDueDateViaNull(t *testing.T) {
	srv := newTestServer(t)
	_, headers := signUp(t, srv, "ada@example.com")
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/v1/tasks", map[string]any{
		"title":    "Dated",
		"due_date": "2026-09-10T00:00:00Z",
	}, headers)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d: %s", res.StatusCode, string(data))
	}
	var created TaskResponse
	_ = json.Unmarshal(data, &created)
	if created.DueDate == nil {
		t.Fatal("due date not stored")
	}

	res, data = doJSON(t, client, http.MethodPatch, srv.URL+"/v1/tasks/"+created.ID, map[string]any{
		"due_date": nil,
	}, headers)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("patch status %d: %s", res.StatusCode, string(data))
	}
	var cleared TaskResponse
	_ = json.Unmarshal(data, &cleared)
	if cleared.DueDate != nil {
		t.Fatalf("due date still set: %v", *cleared.DueDate)
	}
}

func TestProjectsAndDashboard(t *testing.T) {
	srv := newTestServer(t)
	_, headers := signUp(t, srv, "ada@example.com")
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/v1/projects", map[string]any{
		"name":   "Launch",
		"status": "active",
	}, headers)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create project status %d: %s", res.StatusCode, string(data))
	}
	var proj ProjectResponse
	_ = json.Unmarshal(data, &proj)

	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/v1/tasks", map[string]any{
		"title":      "Inside",
		"project_id": proj.ID,
	}, headers)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create task status %d: %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v1/projects", nil, headers)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list projects status %d: %s", res.StatusCode, string(data))
	}
	var projects []ProjectResponse
	if err := json.Unmarshal(data, &projects); err != nil {
		t.Fatalf("unmarshal projects: %v", err)
	}
	if len(projects) != 1 || projects[0].TaskCount != 1 {
		t.Fatalf("projects = %+v", projects)
	}

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v1/dashboard", nil, headers)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status %d: %s", res.StatusCode, string(data))
	}
	var dash DashboardResponse
	if err := json.Unmarshal(data, &dash); err != nil {
		t.Fatalf("unmarshal dashboard: %v", err)
	}
	if dash.Tasks.Total != 1 || dash.Projects.Total != 1 {
		t.Fatalf("dashboard = %+v", dash)
	}

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v1/analytics?days=7", nil, headers)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("analytics status %d: %s", res.StatusCode, string(data))
	}
	var analytics struct {
		Productivity []struct {
			Day string `json:"day"`
		} `json:"productivity"`
	}
	if err := json.Unmarshal(data, &analytics); err != nil {
		t.Fatalf("unmarshal analytics: %v", err)
	}
	if len(analytics.Productivity) != 7 {
		t.Fatalf("productivity points = %d, want 7", len(analytics.Productivity))
	}

	res, data = doJSON(t, client, http.MethodDelete, srv.URL+"/v1/projects/"+proj.ID, nil, headers)
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("delete project status %d: %s", res.StatusCode, string(data))
	}
	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v1/tasks", nil, headers)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list tasks status %d: %s", res.StatusCode, string(data))
	}
	var tasks []TaskResponse
	_ = json.Unmarshal(data, &tasks)
	if len(tasks) != 0 {
		t.Fatalf("tasks survived project delete: %+v", tasks)
	}
}
