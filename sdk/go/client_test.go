package arvyaxsdk

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"

	"arvyax/internal/config"
	"arvyax/internal/db"
	"arvyax/internal/engine"
	"arvyax/internal/migrate"
	"arvyax/internal/server"
)

func newTestClient(t *testing.T) *Client {
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
	handler, err := server.New(server.Config{Engine: engine.New(conn, cfg), BasePath: "/v1"})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	t.Cleanup(func() {
		srv.Shutdown(context.Background())
		ln.Close()
		conn.Close()
	})
	return New("http://" + ln.Addr().String())
}

func TestAuthStateChanges(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	var events []string
	client.OnAuthStateChange(func(event string, session *Session) {
		events = append(events, event)
	})
	if len(events) != 1 || events[0] != EventSignedOut {
		t.Fatalf("initial events = %v", events)
	}

	if _, err := client.SignUp(ctx, "ada@example.com", "hunter2secret", "Ada"); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if client.Session() == nil {
		t.Fatal("no session after sign up")
	}
	name := "Ada Lovelace"
	if _, err := client.UpdateProfile(ctx, ProfilePatch{FullName: &name}); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if err := client.SignOut(ctx); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if client.Session() != nil {
		t.Fatal("session survived sign out")
	}

	want := []string{EventSignedOut, EventSignedIn, EventUserUpdated, EventSignedOut}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}
}

func TestTaskLifecycle(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	if _, err := client.SignUp(ctx, "ada@example.com", "hunter2secret", "Ada"); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	proj, err := client.CreateProject(ctx, NewProject{Name: "Launch", Status: "active"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	task, err := client.CreateTask(ctx, NewTask{Title: "Ship feature", Priority: "high", ProjectID: &proj.ID})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Status != "todo" {
		t.Fatalf("status = %s, want todo", task.Status)
	}

	toggled, err := client.ToggleTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if toggled.Status != "completed" {
		t.Fatalf("status after toggle = %s", toggled.Status)
	}

	tasks, err := client.ListTasks(ctx, TaskFilters{ProjectID: proj.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("list hits = %d, want 1", len(tasks))
	}

	dash, err := client.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.Tasks.Total != 1 || dash.Tasks.CompletionRate != 100 {
		t.Fatalf("dashboard = %+v", dash.Tasks)
	}

	if err := client.DeleteProject(ctx, proj.ID); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	tasks, err = client.ListTasks(ctx, TaskFilters{})
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("tasks survived project delete: %+v", tasks)
	}
}

func TestAPIErrorEnvelope(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	if _, err := client.SignUp(ctx, "ada@example.com", "hunter2secret", "Ada"); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	_, err := client.CreateTask(ctx, NewTask{Title: "   "})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Code != "validation_failed" {
		t.Fatalf("apiErr = %+v", apiErr)
	}
	if apiErr.Details["title"] != "Title is required" {
		t.Fatalf("details = %+v", apiErr.Details)
	}

	_, err = client.GetTask(ctx, "no-such-task")
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("err = %v, want 404 APIError", err)
	}
}
