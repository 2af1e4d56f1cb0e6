package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"arvyax/internal/config"
	"arvyax/internal/db"
	"arvyax/internal/domain"
	"arvyax/internal/engine/auth"
	"arvyax/internal/migrate"
	"arvyax/internal/repo"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) Engine {
	t.Helper()
	cfg := config.Default()
	cfg.Workspace = t.TempDir()
	cfg.Auth.JWTSecret = "test-secret"
	conn, err := db.Open(db.Config{Workspace: cfg.Workspace})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(conn, cfg).WithClock(func() time.Time { return testNow })
}

func signUpUser(t *testing.T, e Engine, email string) (domain.Profile, auth.Session) {
	t.Helper()
	p, sess, err := e.SignUp(context.Background(), email, "hunter2secret", "Test User")
	if err != nil {
		t.Fatalf("sign up %s: %v", email, err)
	}
	return p, sess
}

func TestSignUpAndSignIn(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	p, sess := signUpUser(t, e, "ada@example.com")
	if p.Email != "ada@example.com" || p.FullName != "Test User" {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if sess.Token == "" || sess.UserID != p.ID {
		t.Fatalf("unexpected session: %+v", sess)
	}

	got, err := e.CurrentUser(ctx, sess.Token)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if got.ID != p.ID {
		t.Fatalf("current user = %s, want %s", got.ID, p.ID)
	}

	if _, _, err := e.SignUp(ctx, "ada@example.com", "hunter2secret", "Again"); !errors.Is(err, auth.ErrEmailTaken) {
		t.Fatalf("duplicate sign up err = %v, want ErrEmailTaken", err)
	}

	if _, _, err := e.SignIn(ctx, "ada@example.com", "wrong-password"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("bad password err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := e.SignIn(ctx, "nobody@example.com", "hunter2secret"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("unknown email err = %v, want ErrInvalidCredentials", err)
	}

	_, sess2, err := e.SignIn(ctx, "ada@example.com", "hunter2secret")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if sess2.Token == sess.Token {
		t.Fatal("expected a fresh token per sign in")
	}
}

func TestSignUpValidation(t *testing.T) {
	e := newTestEngine(t)
	_, _, err := e.SignUp(context.Background(), "not-an-email", "short", "")
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	for _, field := range []string{"email", "password", "full_name"} {
		if verr.Fields[field] == "" {
			t.Errorf("missing message for %s", field)
		}
	}
}

func TestSignOutRevokesSession(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	_, sess := signUpUser(t, e, "ada@example.com")

	if err := e.SignOut(ctx, sess.Token); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if _, err := e.CurrentUser(ctx, sess.Token); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("after sign out err = %v, want ErrUnauthorized", err)
	}
	// Signing out again is a no-op.
	if err := e.SignOut(ctx, sess.Token); err != nil {
		t.Fatalf("second sign out: %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	p, _ := signUpUser(t, e, "ada@example.com")

	name := "Ada Lovelace"
	bio := "First programmer"
	got, err := e.UpdateProfile(ctx, p.ID, ProfileUpdateOptions{FullName: &name, Bio: &bio})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if got.FullName != name || got.Bio != bio {
		t.Fatalf("unexpected profile after update: %+v", got)
	}

	bad := "not a url"
	if _, err := e.UpdateProfile(ctx, p.ID, ProfileUpdateOptions{Website: &bad}); err == nil {
		t.Fatal("expected validation failure for website")
	}

	if _, err := e.UpdateProfile(ctx, "", ProfileUpdateOptions{}); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("empty user err = %v, want ErrNotAuthenticated", err)
	}
}

func TestCreateTaskDefaults(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	p, _ := signUpUser(t, e, "ada@example.com")

	task, err := e.CreateTask(ctx, TaskCreateOptions{UserID: p.ID, Title: "Write report"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Status != domain.TaskTodo {
		t.Errorf("status = %s, want todo", task.Status)
	}
	if task.Priority != domain.PriorityMedium {
		t.Errorf("priority = %s, want medium", task.Priority)
	}
	if !task.CreatedAt.Equal(testNow) || !task.UpdatedAt.Equal(testNow) {
		t.Errorf("timestamps not stamped from clock: %+v", task)
	}
}

func TestCreateTaskValidationBlocksWrite(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	p, _ := signUpUser(t, e, "ada@example.com")

	_, err := e.CreateTask(ctx, TaskCreateOptions{UserID: p.ID, Title: "   "})
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Fields["title"] != "Title is required" {
		t.Errorf("title message = %q", verr.Fields["title"])
	}
	tasks, err := e.ListTasks(ctx, p.ID, TaskListOptions{})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected no rows after rejected create, got %d", len(tasks))
	}
}

func TestCreateTaskUnknownProject(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	p, _ := signUpUser(t, e, "ada@example.com")

	missing := "no-such-project"
	_, err := e.CreateTask(ctx, TaskCreateOptions{UserID: p.ID, Title: "Orphan", ProjectID: &missing})
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Fields["project_id"] == "" {
		t.Error("expected a project_id message")
	}
}

func TestUpdateAndToggleTask(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	p, _ := signUpUser(t, e, "ada@example.com")

	task, err := e.CreateTask(ctx, TaskCreateOptions{UserID: p.ID, Title: "Draft"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	title := "Final draft"
	high := domain.PriorityHigh
	updated, err := e.UpdateTask(ctx, TaskUpdateOptions{UserID: p.ID, ID: task.ID, Title: &title, Priority: &high})
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if updated.Title != title || updated.Priority != high {
		t.Fatalf("unexpected task after update: %+v", updated)
	}
	if updated.Status != domain.TaskTodo {
		t.Errorf("status changed unexpectedly to %s", updated.Status)
	}

	toggled, err := e.ToggleTaskStatus(ctx, p.ID, task.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if toggled.Status != domain.TaskCompleted {
		t.Fatalf("status after toggle = %s, want completed", toggled.Status)
	}
	back, err := e.ToggleTaskStatus(ctx, p.ID, task.ID)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if back.Status != domain.TaskTodo {
		t.Fatalf("status after second toggle = %s, want todo", back.Status)
	}
}

func TestClearTaskDueDate(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	p, _ := signUpUser(t, e, "ada@example.com")

	due := testNow.Add(48 * time.Hour)
	task, err := e.CreateTask(ctx, TaskCreateOptions{UserID: p.ID, Title: "Ship", DueDate: &due})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	cleared, err := e.UpdateTask(ctx, TaskUpdateOptions{UserID: p.ID, ID: task.ID, DueProvided: true, DueDate: nil})
	if err != nil {
		t.Fatalf("clear due date: %v", err)
	}
	if cleared.DueDate != nil {
		t.Fatalf("due date still set: %v", cleared.DueDate)
	}
}

func TestDeleteTask(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	p, _ := signUpUser(t, e, "ada@example.com")

	task, err := e.CreateTask(ctx, TaskCreateOptions{UserID: p.ID, Title: "Throwaway"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := e.DeleteTask(ctx, p.ID, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := e.GetTask(ctx, p.ID, task.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("get after delete err = %v, want ErrNotFound", err)
	}
	if err := e.DeleteTask(ctx, p.ID, task.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	ada, _ := signUpUser(t, e, "ada@example.com")
	bob, _ := signUpUser(t, e, "bob@example.com")

	task, err := e.CreateTask(ctx, TaskCreateOptions{UserID: ada.ID, Title: "Private"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := e.GetTask(ctx, bob.ID, task.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("cross-user get err = %v, want ErrNotFound", err)
	}
	if err := e.DeleteTask(ctx, bob.ID, task.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("cross-user delete err = %v, want ErrNotFound", err)
	}
	tasks, err := e.ListTasks(ctx, bob.ID, TaskListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("bob sees %d of ada's tasks", len(tasks))
	}
}

func TestListTasksFiltersAndSearch(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	p, _ := signUpUser(t, e, "ada@example.com")

	urgent := domain.PriorityUrgent
	for _, opts := range []TaskCreateOptions{
		{UserID: p.ID, Title: "Quarterly report", Priority: urgent},
		{UserID: p.ID, Title: "Weekly sync notes"},
		{UserID: p.ID, Title: "Annual report draft"},
	} {
		if _, err := e.CreateTask(ctx, opts); err != nil {
			t.Fatalf("create %q: %v", opts.Title, err)
		}
	}

	got, err := e.ListTasks(ctx, p.ID, TaskListOptions{Query: "report"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("search hits = %d, want 2", len(got))
	}

	got, err = e.ListTasks(ctx, p.ID, TaskListOptions{Priority: "urgent"})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Quarterly report" {
		t.Fatalf("priority filter got %+v", got)
	}

	got, err = e.ListTasks(ctx, p.ID, TaskListOptions{Status: "all"})
	if err != nil {
		t.Fatalf("wildcard filter: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("wildcard hits = %d, want 3", len(got))
	}
}

func TestProjectDateValidation(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	p, _ := signUpUser(t, e, "ada@example.com")

	start := testNow
	end := testNow.Add(-24 * time.Hour)
	_, err := e.CreateProject(ctx, ProjectCreateOptions{
		UserID:    p.ID,
		Name:      "Backwards",
		StartDate: &start,
		EndDate:   &end,
	})
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Fields["end_date"] != "End date cannot be earlier than start date" {
		t.Errorf("end_date message = %q", verr.Fields["end_date"])
	}
	projects, err := e.ListProjects(ctx, p.ID, "")
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if len(projects) != 0 {
		t.Fatalf("expected no rows after rejected create, got %d", len(projects))
	}
}

func TestDeleteProjectCascadesTasks(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	p, _ := signUpUser(t, e, "ada@example.com")

	proj, err := e.CreateProject(ctx, ProjectCreateOptions{UserID: p.ID, Name: "Launch"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if proj.Status != domain.ProjectPlanning {
		t.Errorf("default status = %s, want planning", proj.Status)
	}
	inProject, err := e.CreateTask(ctx, TaskCreateOptions{UserID: p.ID, Title: "Inside", ProjectID: &proj.ID})
	if err != nil {
		t.Fatalf("create project task: %v", err)
	}
	outside, err := e.CreateTask(ctx, TaskCreateOptions{UserID: p.ID, Title: "Outside"})
	if err != nil {
		t.Fatalf("create loose task: %v", err)
	}

	if err := e.DeleteProject(ctx, p.ID, proj.ID); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if _, err := e.GetTask(ctx, p.ID, inProject.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("project task survived cascade: err = %v", err)
	}
	if _, err := e.GetTask(ctx, p.ID, outside.ID); err != nil {
		t.Fatalf("loose task lost: %v", err)
	}
}

func TestDashboard(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	p, _ := signUpUser(t, e, "ada@example.com")

	overdue := testNow.Add(-48 * time.Hour)
	soon := testNow.Add(48 * time.Hour)
	far := testNow.Add(240 * time.Hour)
	completed := domain.TaskCompleted
	if _, err := e.CreateTask(ctx, TaskCreateOptions{UserID: p.ID, Title: "Late", DueDate: &overdue}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.CreateTask(ctx, TaskCreateOptions{UserID: p.ID, Title: "Soon", DueDate: &soon}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.CreateTask(ctx, TaskCreateOptions{UserID: p.ID, Title: "Far", DueDate: &far}); err != nil {
		t.Fatal(err)
	}
	done, err := e.CreateTask(ctx, TaskCreateOptions{UserID: p.ID, Title: "Done", Status: completed})
	if err != nil {
		t.Fatal(err)
	}
	_ = done

	d, err := e.Dashboard(ctx, p.ID)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.Tasks.Total != 4 || d.Tasks.Completed != 1 {
		t.Fatalf("summary = %+v", d.Tasks)
	}
	if d.Tasks.CompletionRate != 25 {
		t.Errorf("completion rate = %d, want 25", d.Tasks.CompletionRate)
	}
	if len(d.Overdue) != 1 || d.Overdue[0].Title != "Late" {
		t.Errorf("overdue = %+v", d.Overdue)
	}
	if len(d.Upcoming) != 1 || d.Upcoming[0].Title != "Soon" {
		t.Errorf("upcoming = %+v", d.Upcoming)
	}
	if len(d.Recent) != 4 {
		t.Errorf("recent count = %d, want 4", len(d.Recent))
	}
}

func TestAnalytics(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	p, _ := signUpUser(t, e, "ada@example.com")

	if _, err := e.CreateTask(ctx, TaskCreateOptions{UserID: p.ID, Title: "One"}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.CreateTask(ctx, TaskCreateOptions{UserID: p.ID, Title: "Two", Status: domain.TaskCompleted}); err != nil {
		t.Fatal(err)
	}

	a, err := e.Analytics(ctx, p.ID, 7)
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if len(a.Productivity) != 7 {
		t.Fatalf("series length = %d, want 7", len(a.Productivity))
	}
	last := a.Productivity[len(a.Productivity)-1]
	if last.Day != "2024-03-15" || last.Created != 2 || last.Completed != 1 {
		t.Fatalf("last point = %+v", last)
	}
	if a.Statuses.Todo != 1 || a.Statuses.Completed != 1 {
		t.Fatalf("statuses = %+v", a.Statuses)
	}
	if a.CreatedToday != 2 || a.CreatedThisWeek != 2 || a.CompletedThisWeek != 1 {
		t.Fatalf("week counters = %+v", a)
	}
}

func TestAnalyticsDefaultWindow(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	p, _ := signUpUser(t, e, "ada@example.com")

	a, err := e.Analytics(ctx, p.ID, 0)
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if len(a.Productivity) != e.Config.Dashboard.AnalyticsDays {
		t.Fatalf("series length = %d, want %d", len(a.Productivity), e.Config.Dashboard.AnalyticsDays)
	}
}
