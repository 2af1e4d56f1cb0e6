package engine

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"arvyax/internal/cache"
	"arvyax/internal/config"
	"arvyax/internal/domain"
	"arvyax/internal/engine/auth"
	"arvyax/internal/events"
	"arvyax/internal/repo"
	"arvyax/internal/stats"
	"arvyax/internal/validate"
)

// Engine is the service layer: validation, persistence, the activity
// log, and derived statistics behind every API operation.
type Engine struct {
	DB     *sql.DB
	Repo   repo.Repo
	Events events.Writer
	Auth   auth.Service
	Cache  *cache.Store
	Config *config.Config
	Now    func() time.Time
}

// ErrNotAuthenticated marks a programming-contract violation: a
// profile or data operation invoked with no authenticated user.
var ErrNotAuthenticated = errors.New("user not authenticated")

// ValidationError carries field-keyed messages from the validators.
// It is produced before any store write is attempted.
type ValidationError struct {
	Fields validate.Errors
}

func (e ValidationError) Error() string {
	return e.Fields.First()
}

func New(db *sql.DB, cfg *config.Config) Engine {
	r := repo.Repo{DB: db}
	return Engine{
		DB:     db,
		Repo:   r,
		Events: events.Writer{DB: db},
		Auth: auth.Service{
			Repo:   r,
			Secret: cfg.Auth.JWTSecret,
			TTL:    time.Duration(cfg.Auth.SessionTTLHours) * time.Hour,
		},
		Config: cfg,
		Now:    time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// WithClock pins the engine and its auth service to a fixed clock.
func (e Engine) WithClock(now func() time.Time) Engine {
	e.Now = now
	e.Auth.Now = now
	e.Events.Now = now
	return e
}

func (e Engine) invalidate(ctx context.Context, userID string) {
	if e.Cache != nil {
		// Best effort; a stale entry expires on its own TTL.
		_ = e.Cache.Invalidate(ctx, userID)
	}
}

// --- Auth ---

// SignUp registers an account and signs it in.
func (e Engine) SignUp(ctx context.Context, email, password, fullName string) (domain.Profile, auth.Session, error) {
	errs := validate.Credentials(email, password)
	if !validate.Required(fullName) {
		errs["full_name"] = "Full name is required"
	}
	if !errs.Valid() {
		return domain.Profile{}, auth.Session{}, ValidationError{Fields: errs}
	}
	if _, _, err := e.Repo.GetProfileByEmail(ctx, email); err == nil {
		return domain.Profile{}, auth.Session{}, auth.ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return domain.Profile{}, auth.Session{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.Profile{}, auth.Session{}, err
	}
	now := e.now().UTC()
	p := domain.Profile{
		ID:        uuid.NewString(),
		Email:     email,
		FullName:  fullName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Profile{}, auth.Session{}, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertProfile(ctx, tx, p, hash); err != nil {
		return domain.Profile{}, auth.Session{}, fmt.Errorf("insert profile: %w", err)
	}
	if err := e.Events.Append(ctx, tx, "auth.signed_up", p.ID, "profile", p.ID, nil); err != nil {
		return domain.Profile{}, auth.Session{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Profile{}, auth.Session{}, err
	}
	sess, err := e.Auth.Issue(ctx, p.ID)
	if err != nil {
		return domain.Profile{}, auth.Session{}, err
	}
	return p, sess, nil
}

// SignIn authenticates credentials and issues a session.
func (e Engine) SignIn(ctx context.Context, email, password string) (domain.Profile, auth.Session, error) {
	p, hash, err := e.Repo.GetProfileByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.Profile{}, auth.Session{}, auth.ErrInvalidCredentials
		}
		return domain.Profile{}, auth.Session{}, err
	}
	if !auth.CheckPassword(hash, password) {
		return domain.Profile{}, auth.Session{}, auth.ErrInvalidCredentials
	}
	sess, err := e.Auth.Issue(ctx, p.ID)
	if err != nil {
		return domain.Profile{}, auth.Session{}, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err == nil {
		if e.Events.Append(ctx, tx, "auth.signed_in", p.ID, "profile", p.ID, nil) == nil {
			_ = tx.Commit()
		} else {
			_ = tx.Rollback()
		}
	}
	return p, sess, nil
}

// SignOut revokes the session. Unknown tokens are already signed out.
func (e Engine) SignOut(ctx context.Context, token string) error {
	userID, err := e.Auth.Verify(ctx, token)
	if err != nil {
		return nil
	}
	if err := e.Auth.Revoke(ctx, token); err != nil {
		return err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err == nil {
		if e.Events.Append(ctx, tx, "auth.signed_out", userID, "profile", userID, nil) == nil {
			_ = tx.Commit()
		} else {
			_ = tx.Rollback()
		}
	}
	return nil
}

// CurrentUser resolves a bearer token to its profile.
func (e Engine) CurrentUser(ctx context.Context, token string) (domain.Profile, error) {
	userID, err := e.Auth.Verify(ctx, token)
	if err != nil {
		return domain.Profile{}, err
	}
	return e.Repo.GetProfile(ctx, userID)
}

// --- Profiles ---

func (e Engine) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	if userID == "" {
		return domain.Profile{}, ErrNotAuthenticated
	}
	return e.Repo.GetProfile(ctx, userID)
}

// ProfileUpdateOptions are the updatable profile fields; nil leaves a
// field untouched.
type ProfileUpdateOptions struct {
	FullName  *string
	AvatarURL *string
	Bio       *string
	Location  *string
	Website   *string
}

func (e Engine) UpdateProfile(ctx context.Context, userID string, opts ProfileUpdateOptions) (domain.Profile, error) {
	if userID == "" {
		return domain.Profile{}, ErrNotAuthenticated
	}
	current, err := e.Repo.GetProfile(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	merged := validate.ProfileInput{
		FullName:  orCurrent(opts.FullName, current.FullName),
		AvatarURL: orCurrent(opts.AvatarURL, current.AvatarURL),
		Bio:       orCurrent(opts.Bio, current.Bio),
		Location:  orCurrent(opts.Location, current.Location),
		Website:   orCurrent(opts.Website, current.Website),
	}
	if errs := validate.Profile(merged); !errs.Valid() {
		return domain.Profile{}, ValidationError{Fields: errs}
	}
	patch := repo.ProfilePatch{
		FullName:  opts.FullName,
		AvatarURL: opts.AvatarURL,
		Bio:       opts.Bio,
		Location:  opts.Location,
		Website:   opts.Website,
		UpdatedAt: e.now().UTC(),
	}
	if err := e.Repo.UpdateProfile(ctx, userID, patch); err != nil {
		return domain.Profile{}, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err == nil {
		if e.Events.Append(ctx, tx, "profile.updated", userID, "profile", userID, nil) == nil {
			_ = tx.Commit()
		} else {
			_ = tx.Rollback()
		}
	}
	return e.Repo.GetProfile(ctx, userID)
}

func orCurrent(v *string, current string) string {
	if v != nil {
		return *v
	}
	return current
}

// --- Tasks ---

// TaskCreateOptions are parameters for creating a task.
type TaskCreateOptions struct {
	UserID      string
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	DueDate     *time.Time
	ProjectID   *string
}

func (e Engine) CreateTask(ctx context.Context, opts TaskCreateOptions) (domain.Task, error) {
	if opts.UserID == "" {
		return domain.Task{}, ErrNotAuthenticated
	}
	if opts.Status == "" {
		opts.Status = domain.TaskTodo
	}
	if opts.Priority == "" {
		opts.Priority = domain.PriorityMedium
	}
	errs := validate.Task(validate.TaskInput{
		Title:       opts.Title,
		Description: opts.Description,
		Status:      opts.Status,
		Priority:    opts.Priority,
	})
	if !errs.Valid() {
		return domain.Task{}, ValidationError{Fields: errs}
	}
	if opts.ProjectID != nil {
		if _, err := e.Repo.GetProject(ctx, opts.UserID, *opts.ProjectID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return domain.Task{}, ValidationError{Fields: validate.Errors{"project_id": "Project not found"}}
			}
			return domain.Task{}, err
		}
	}
	now := e.now().UTC()
	t := domain.Task{
		ID:          uuid.NewString(),
		UserID:      opts.UserID,
		ProjectID:   opts.ProjectID,
		Title:       opts.Title,
		Description: opts.Description,
		Status:      opts.Status,
		Priority:    opts.Priority,
		DueDate:     opts.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertTask(ctx, tx, t); err != nil {
		return domain.Task{}, fmt.Errorf("insert task: %w", err)
	}
	if err := e.Events.Append(ctx, tx, "task.created", t.UserID, "task", t.ID, events.EventPayload{"title": t.Title, "status": t.Status}); err != nil {
		return domain.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	e.invalidate(ctx, t.UserID)
	return t, nil
}

// TaskUpdateOptions are parameters for a partial task update. Pointer
// fields are untouched when nil; DueDate and ProjectID also carry a
// Provided flag so they can be cleared with an explicit null.
type TaskUpdateOptions struct {
	UserID          string
	ID              string
	Title           *string
	Description     *string
	Status          *domain.TaskStatus
	Priority        *domain.TaskPriority
	DueProvided     bool
	DueDate         *time.Time
	ProjectProvided bool
	ProjectID       *string
}

func (e Engine) UpdateTask(ctx context.Context, opts TaskUpdateOptions) (domain.Task, error) {
	if opts.UserID == "" {
		return domain.Task{}, ErrNotAuthenticated
	}
	current, err := e.Repo.GetTask(ctx, opts.UserID, opts.ID)
	if err != nil {
		return domain.Task{}, err
	}
	merged := validate.TaskInput{
		Title:       orCurrent(opts.Title, current.Title),
		Description: orCurrent(opts.Description, current.Description),
		Status:      current.Status,
		Priority:    current.Priority,
	}
	if opts.Status != nil {
		merged.Status = *opts.Status
	}
	if opts.Priority != nil {
		merged.Priority = *opts.Priority
	}
	if errs := validate.Task(merged); !errs.Valid() {
		return domain.Task{}, ValidationError{Fields: errs}
	}
	if opts.ProjectProvided && opts.ProjectID != nil {
		if _, err := e.Repo.GetProject(ctx, opts.UserID, *opts.ProjectID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return domain.Task{}, ValidationError{Fields: validate.Errors{"project_id": "Project not found"}}
			}
			return domain.Task{}, err
		}
	}
	patch := repo.TaskPatch{
		Title:           opts.Title,
		Description:     opts.Description,
		Status:          opts.Status,
		Priority:        opts.Priority,
		DueProvided:     opts.DueProvided,
		DueDate:         opts.DueDate,
		ProjectProvided: opts.ProjectProvided,
		ProjectID:       opts.ProjectID,
		UpdatedAt:       e.now().UTC(),
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer tx.Rollback()
	if err := e.Repo.UpdateTask(ctx, tx, opts.UserID, opts.ID, patch); err != nil {
		return domain.Task{}, err
	}
	evtType := "task.updated"
	if opts.Status != nil && *opts.Status == domain.TaskCompleted && current.Status != domain.TaskCompleted {
		evtType = "task.completed"
	}
	if err := e.Events.Append(ctx, tx, evtType, opts.UserID, "task", opts.ID, eventFields(opts)); err != nil {
		return domain.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	e.invalidate(ctx, opts.UserID)
	return e.Repo.GetTask(ctx, opts.UserID, opts.ID)
}

func eventFields(opts TaskUpdateOptions) events.EventPayload {
	payload := events.EventPayload{}
	if opts.Status != nil {
		payload["status"] = *opts.Status
	}
	if opts.Priority != nil {
		payload["priority"] = *opts.Priority
	}
	if opts.Title != nil {
		payload["title"] = *opts.Title
	}
	return payload
}

// ToggleTaskStatus flips a task between completed and todo.
func (e Engine) ToggleTaskStatus(ctx context.Context, userID, id string) (domain.Task, error) {
	current, err := e.Repo.GetTask(ctx, userID, id)
	if err != nil {
		return domain.Task{}, err
	}
	next := domain.TaskCompleted
	if current.Status == domain.TaskCompleted {
		next = domain.TaskTodo
	}
	return e.UpdateTask(ctx, TaskUpdateOptions{UserID: userID, ID: id, Status: &next})
}

func (e Engine) DeleteTask(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := e.Repo.DeleteTask(ctx, tx, userID, id); err != nil {
		return err
	}
	if err := e.Events.Append(ctx, tx, "task.deleted", userID, "task", id, nil); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	e.invalidate(ctx, userID)
	return nil
}

func (e Engine) GetTask(ctx context.Context, userID, id string) (domain.Task, error) {
	if userID == "" {
		return domain.Task{}, ErrNotAuthenticated
	}
	return e.Repo.GetTask(ctx, userID, id)
}

// TaskListOptions narrow and search the task list. Query is matched
// case-insensitively against title and description; the remaining
// filters are exact with "" and "all" as wildcards.
type TaskListOptions struct {
	Status    string
	Priority  string
	ProjectID string
	Query     string
}

func (e Engine) ListTasks(ctx context.Context, userID string, opts TaskListOptions) ([]domain.Task, error) {
	tasks, err := e.allTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	filtered := stats.FilterAndSearch(tasks, stats.Query[domain.Task]{
		Query: opts.Query,
		Fields: []func(domain.Task) string{
			func(t domain.Task) string { return t.Title },
			func(t domain.Task) string { return t.Description },
		},
		Exact: []stats.Condition[domain.Task]{
			{Value: opts.Status, Field: func(t domain.Task) string { return string(t.Status) }},
			{Value: opts.Priority, Field: func(t domain.Task) string { return string(t.Priority) }},
			{Value: opts.ProjectID, Field: func(t domain.Task) string {
				if t.ProjectID == nil {
					return ""
				}
				return *t.ProjectID
			}},
		},
	})
	return filtered, nil
}

// allTasks reads the user's full task list through the cache.
func (e Engine) allTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if e.Cache != nil {
		if cached, err := e.Cache.GetTasks(ctx, userID); err == nil && cached != nil {
			return cached, nil
		}
	}
	tasks, err := e.Repo.ListTasks(ctx, userID, repo.TaskFilters{})
	if err != nil {
		return nil, err
	}
	if e.Cache != nil {
		_ = e.Cache.SetTasks(ctx, userID, tasks)
	}
	return tasks, nil
}

// --- Projects ---

type ProjectCreateOptions struct {
	UserID      string
	Name        string
	Description string
	Status      domain.ProjectStatus
	StartDate   *time.Time
	EndDate     *time.Time
}

func (e Engine) CreateProject(ctx context.Context, opts ProjectCreateOptions) (domain.Project, error) {
	if opts.UserID == "" {
		return domain.Project{}, ErrNotAuthenticated
	}
	if opts.Status == "" {
		opts.Status = domain.ProjectPlanning
	}
	errs := validate.Project(validate.ProjectInput{
		Name:        opts.Name,
		Description: opts.Description,
		Status:      opts.Status,
		StartDate:   opts.StartDate,
		EndDate:     opts.EndDate,
	})
	if !errs.Valid() {
		return domain.Project{}, ValidationError{Fields: errs}
	}
	now := e.now().UTC()
	p := domain.Project{
		ID:          uuid.NewString(),
		UserID:      opts.UserID,
		Name:        opts.Name,
		Description: opts.Description,
		Status:      opts.Status,
		StartDate:   opts.StartDate,
		EndDate:     opts.EndDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Project{}, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertProject(ctx, tx, p); err != nil {
		return domain.Project{}, fmt.Errorf("insert project: %w", err)
	}
	if err := e.Events.Append(ctx, tx, "project.created", p.UserID, "project", p.ID, events.EventPayload{"name": p.Name, "status": p.Status}); err != nil {
		return domain.Project{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Project{}, err
	}
	e.invalidate(ctx, p.UserID)
	return p, nil
}

type ProjectUpdateOptions struct {
	UserID        string
	ID            string
	Name          *string
	Description   *string
	Status        *domain.ProjectStatus
	StartProvided bool
	StartDate     *time.Time
	EndProvided   bool
	EndDate       *time.Time
}

func (e Engine) UpdateProject(ctx context.Context, opts ProjectUpdateOptions) (domain.Project, error) {
	if opts.UserID == "" {
		return domain.Project{}, ErrNotAuthenticated
	}
	current, err := e.Repo.GetProject(ctx, opts.UserID, opts.ID)
	if err != nil {
		return domain.Project{}, err
	}
	merged := validate.ProjectInput{
		Name:        orCurrent(opts.Name, current.Name),
		Description: orCurrent(opts.Description, current.Description),
		Status:      current.Status,
		StartDate:   current.StartDate,
		EndDate:     current.EndDate,
	}
	if opts.Status != nil {
		merged.Status = *opts.Status
	}
	if opts.StartProvided {
		merged.StartDate = opts.StartDate
	}
	if opts.EndProvided {
		merged.EndDate = opts.EndDate
	}
	if errs := validate.Project(merged); !errs.Valid() {
		return domain.Project{}, ValidationError{Fields: errs}
	}
	patch := repo.ProjectPatch{
		Name:          opts.Name,
		Description:   opts.Description,
		Status:        opts.Status,
		StartProvided: opts.StartProvided,
		StartDate:     opts.StartDate,
		EndProvided:   opts.EndProvided,
		EndDate:       opts.EndDate,
		UpdatedAt:     e.now().UTC(),
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Project{}, err
	}
	defer tx.Rollback()
	if err := e.Repo.UpdateProject(ctx, tx, opts.UserID, opts.ID, patch); err != nil {
		return domain.Project{}, err
	}
	if err := e.Events.Append(ctx, tx, "project.updated", opts.UserID, "project", opts.ID, nil); err != nil {
		return domain.Project{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Project{}, err
	}
	e.invalidate(ctx, opts.UserID)
	return e.Repo.GetProject(ctx, opts.UserID, opts.ID)
}

// DeleteProject removes a project and, via the store's cascade, every
// task that referenced it.
func (e Engine) DeleteProject(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := e.Repo.DeleteProject(ctx, tx, userID, id); err != nil {
		return err
	}
	if err := e.Events.Append(ctx, tx, "project.deleted", userID, "project", id, nil); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	e.invalidate(ctx, userID)
	return nil
}

func (e Engine) GetProject(ctx context.Context, userID, id string) (domain.Project, error) {
	if userID == "" {
		return domain.Project{}, ErrNotAuthenticated
	}
	return e.Repo.GetProject(ctx, userID, id)
}

func (e Engine) ListProjects(ctx context.Context, userID string, status domain.ProjectStatus) ([]domain.Project, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return e.Repo.ListProjects(ctx, userID, status)
}

// --- Derived views ---

// Dashboard is the landing-page payload.
type Dashboard struct {
	Tasks    stats.TaskSummary    `json:"tasks"`
	Projects stats.ProjectSummary `json:"projects"`
	Overdue  []domain.Task        `json:"overdue"`
	Upcoming []domain.Task        `json:"upcoming"`
	Recent   []domain.Task        `json:"recent"`
}

const recentTaskCount = 5

// Dashboard assembles summaries, the overdue set, and tasks due inside
// the configured upcoming window.
func (e Engine) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	if userID == "" {
		return Dashboard{}, ErrNotAuthenticated
	}
	if e.Cache != nil {
		if raw, err := e.Cache.GetDashboard(ctx, userID); err == nil && raw != nil {
			var d Dashboard
			if json.Unmarshal(raw, &d) == nil {
				return d, nil
			}
		}
	}
	tasks, err := e.allTasks(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	projects, err := e.Repo.ListProjects(ctx, userID, "")
	if err != nil {
		return Dashboard{}, err
	}
	now := e.now()
	recent := tasks
	if len(recent) > recentTaskCount {
		recent = recent[:recentTaskCount]
	}
	d := Dashboard{
		Tasks:    stats.SummarizeTasks(tasks, now),
		Projects: stats.SummarizeProjects(projects),
		Overdue:  stats.OverdueTasks(tasks, now),
		Upcoming: stats.UpcomingTasks(tasks, now, e.Config.Dashboard.UpcomingWindowDays),
		Recent:   recent,
	}
	if e.Cache != nil {
		if raw, err := json.Marshal(d); err == nil {
			_ = e.Cache.SetDashboard(ctx, userID, raw)
		}
	}
	return d, nil
}

// Analytics is the charts-page payload.
type Analytics struct {
	Tasks             stats.TaskSummary         `json:"tasks"`
	Projects          stats.ProjectSummary      `json:"projects"`
	Statuses          stats.StatusCounts        `json:"statuses"`
	Priorities        stats.PriorityCounts      `json:"priorities"`
	ProjectStatuses   stats.ProjectStatusCounts `json:"project_statuses"`
	Productivity      []stats.ProductivityPoint `json:"productivity"`
	CreatedToday      int                       `json:"created_today"`
	CreatedThisWeek   int                       `json:"created_this_week"`
	CompletedThisWeek int                       `json:"completed_this_week"`
}

// Analytics assembles distributions and the created-vs-completed
// series over the requested day count (config default when zero).
func (e Engine) Analytics(ctx context.Context, userID string, days int) (Analytics, error) {
	if userID == "" {
		return Analytics{}, ErrNotAuthenticated
	}
	if days <= 0 {
		days = e.Config.Dashboard.AnalyticsDays
	}
	tasks, err := e.allTasks(ctx, userID)
	if err != nil {
		return Analytics{}, err
	}
	projects, err := e.Repo.ListProjects(ctx, userID, "")
	if err != nil {
		return Analytics{}, err
	}
	now := e.now()
	a := Analytics{
		Tasks:           stats.SummarizeTasks(tasks, now),
		Projects:        stats.SummarizeProjects(projects),
		Statuses:        stats.CountTasksByStatus(tasks),
		Priorities:      stats.CountTasksByPriority(tasks),
		ProjectStatuses: stats.CountProjectsByStatus(projects),
		Productivity:    stats.ProductivitySeries(tasks, days, now),
	}
	for _, t := range tasks {
		if stats.IsToday(t.CreatedAt, now) {
			a.CreatedToday++
		}
		if stats.IsThisWeek(t.CreatedAt, now) {
			a.CreatedThisWeek++
		}
		if t.Status == domain.TaskCompleted && stats.IsThisWeek(t.UpdatedAt, now) {
			a.CompletedThisWeek++
		}
	}
	return a, nil
}
