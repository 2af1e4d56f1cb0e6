package arvyaxsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Auth state change events delivered to OnAuthStateChange listeners.
const (
	EventSignedIn    = "SIGNED_IN"
	EventSignedOut   = "SIGNED_OUT"
	EventUserUpdated = "USER_UPDATED"
)

// Client is an Arvyax HTTP API client. It holds the active session
// after SignUp or SignIn and sends it on every subsequent request.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration

	mu        sync.Mutex
	session   *Session
	listeners []func(event string, session *Session)
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// Session is an authenticated session.
type Session struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	ExpiresAt string `json:"expires_at"`
}

// Profile represents the API profile model.
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Location  string `json:"location,omitempty"`
	Website   string `json:"website,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Task represents the API task model.
type Task struct {
	ID          string  `json:"id"`
	ProjectID   *string `json:"project_id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// Project represents the API project model.
type Project struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
	TaskCount   int     `json:"task_count"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// TaskSummary is the dashboard headline block for tasks.
type TaskSummary struct {
	Total          int `json:"total"`
	Todo           int `json:"todo"`
	InProgress     int `json:"in_progress"`
	Completed      int `json:"completed"`
	Cancelled      int `json:"cancelled"`
	Overdue        int `json:"overdue"`
	CompletionRate int `json:"completion_rate"`
}

// ProjectSummary is the dashboard headline block for projects.
type ProjectSummary struct {
	Total          int `json:"total"`
	Planning       int `json:"planning"`
	Active         int `json:"active"`
	OnHold         int `json:"on_hold"`
	Completed      int `json:"completed"`
	Cancelled      int `json:"cancelled"`
	CompletionRate int `json:"completion_rate"`
}

// Dashboard is the landing-page payload.
type Dashboard struct {
	Tasks    TaskSummary    `json:"tasks"`
	Projects ProjectSummary `json:"projects"`
	Overdue  []Task         `json:"overdue"`
	Upcoming []Task         `json:"upcoming"`
	Recent   []Task         `json:"recent"`
}

// ProductivityPoint is one day of the created-vs-completed series.
type ProductivityPoint struct {
	Day       string `json:"day"`
	Created   int    `json:"created"`
	Completed int    `json:"completed"`
}

// Analytics is the charts-page payload.
type Analytics struct {
	Tasks             TaskSummary         `json:"tasks"`
	Projects          ProjectSummary      `json:"projects"`
	Productivity      []ProductivityPoint `json:"productivity"`
	CreatedToday      int                 `json:"created_today"`
	CreatedThisWeek   int                 `json:"created_this_week"`
	CompletedThisWeek int                 `json:"completed_this_week"`
}

// APIError wraps non-2xx responses carrying the error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
}

// OnAuthStateChange registers a listener for session transitions. The
// current state is delivered immediately, matching the subscribe-then-
// catch-up pattern front ends rely on.
func (c *Client) OnAuthStateChange(fn func(event string, session *Session)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	session := c.session
	c.mu.Unlock()
	if session != nil {
		fn(EventSignedIn, session)
	} else {
		fn(EventSignedOut, nil)
	}
}

// Session returns the active session, or nil when signed out.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// SetSession installs a previously saved session, e.g. from disk.
func (c *Client) SetSession(s *Session) {
	c.setSession(s, EventSignedIn)
}

func (c *Client) setSession(s *Session, event string) {
	c.mu.Lock()
	c.session = s
	listeners := make([]func(string, *Session), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(event, s)
	}
}

func (c *Client) notify(event string) {
	c.mu.Lock()
	session := c.session
	listeners := make([]func(string, *Session), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(event, session)
	}
}

type authResponse struct {
	Profile Profile `json:"profile"`
	Session Session `json:"session"`
}

// SignUp registers an account and stores the resulting session.
func (c *Client) SignUp(ctx context.Context, email, password, fullName string) (Profile, error) {
	body := map[string]any{
		"email":     email,
		"password":  password,
		"full_name": fullName,
	}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "auth/signup", body, &resp); err != nil {
		return Profile{}, err
	}
	c.setSession(&resp.Session, EventSignedIn)
	return resp.Profile, nil
}

// SignIn authenticates and stores the resulting session.
func (c *Client) SignIn(ctx context.Context, email, password string) (Profile, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "auth/signin", body, &resp); err != nil {
		return Profile{}, err
	}
	c.setSession(&resp.Session, EventSignedIn)
	return resp.Profile, nil
}

// SignOut revokes the session server side and clears it locally. The
// local session is dropped even when the server call fails.
func (c *Client) SignOut(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "auth/signout", nil, nil)
	c.setSession(nil, EventSignedOut)
	return err
}

// CurrentUser returns the profile for the active session.
func (c *Client) CurrentUser(ctx context.Context) (Profile, error) {
	var resp Profile
	err := c.do(ctx, http.MethodGet, "me", nil, &resp)
	return resp, err
}

// GetProfile fetches the signed-in user's profile.
func (c *Client) GetProfile(ctx context.Context) (Profile, error) {
	var resp Profile
	err := c.do(ctx, http.MethodGet, "profile", nil, &resp)
	return resp, err
}

// ProfilePatch holds profile fields to change; nil leaves a field
// untouched.
type ProfilePatch struct {
	FullName  *string
	AvatarURL *string
	Bio       *string
	Location  *string
	Website   *string
}

// UpdateProfile applies a partial profile update.
func (c *Client) UpdateProfile(ctx context.Context, patch ProfilePatch) (Profile, error) {
	body := map[string]any{}
	putIf(body, "full_name", patch.FullName)
	putIf(body, "avatar_url", patch.AvatarURL)
	putIf(body, "bio", patch.Bio)
	putIf(body, "location", patch.Location)
	putIf(body, "website", patch.Website)
	var resp Profile
	if err := c.do(ctx, http.MethodPatch, "profile", body, &resp); err != nil {
		return Profile{}, err
	}
	c.notify(EventUserUpdated)
	return resp, nil
}

// NewTask holds the fields for creating a task.
type NewTask struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
	ProjectID   *string
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, in NewTask) (Task, error) {
	body := map[string]any{"title": in.Title}
	if in.Description != "" {
		body["description"] = in.Description
	}
	if in.Status != "" {
		body["status"] = in.Status
	}
	if in.Priority != "" {
		body["priority"] = in.Priority
	}
	if in.DueDate != nil {
		body["due_date"] = in.DueDate.UTC().Format(time.RFC3339)
	}
	if in.ProjectID != nil {
		body["project_id"] = *in.ProjectID
	}
	var resp Task
	err := c.do(ctx, http.MethodPost, "tasks", body, &resp)
	return resp, err
}

// TaskFilters narrow and search the task list.
type TaskFilters struct {
	Status    string
	Priority  string
	ProjectID string
	Query     string
}

// ListTasks returns the user's tasks newest first.
func (c *Client) ListTasks(ctx context.Context, f TaskFilters) ([]Task, error) {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Priority != "" {
		q.Set("priority", f.Priority)
	}
	if f.ProjectID != "" {
		q.Set("project_id", f.ProjectID)
	}
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	endpoint := "tasks"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var resp []Task
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// GetTask fetches a task by id.
func (c *Client) GetTask(ctx context.Context, id string) (Task, error) {
	var resp Task
	err := c.do(ctx, http.MethodGet, "tasks/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

// TaskPatch holds task fields to change. Nil pointers leave a field
// untouched; the Clear flags send explicit nulls.
type TaskPatch struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	DueDate      *time.Time
	ClearDueDate bool
	ProjectID    *string
	ClearProject bool
}

// UpdateTask applies a partial task update.
func (c *Client) UpdateTask(ctx context.Context, id string, patch TaskPatch) (Task, error) {
	body := map[string]any{}
	putIf(body, "title", patch.Title)
	putIf(body, "description", patch.Description)
	putIf(body, "status", patch.Status)
	putIf(body, "priority", patch.Priority)
	if patch.ClearDueDate {
		body["due_date"] = nil
	} else if patch.DueDate != nil {
		body["due_date"] = patch.DueDate.UTC().Format(time.RFC3339)
	}
	if patch.ClearProject {
		body["project_id"] = nil
	} else if patch.ProjectID != nil {
		body["project_id"] = *patch.ProjectID
	}
	var resp Task
	err := c.do(ctx, http.MethodPatch, "tasks/"+url.PathEscape(id), body, &resp)
	return resp, err
}

// ToggleTask flips a task between completed and todo.
func (c *Client) ToggleTask(ctx context.Context, id string) (Task, error) {
	var resp Task
	err := c.do(ctx, http.MethodPost, "tasks/"+url.PathEscape(id)+"/toggle", nil, &resp)
	return resp, err
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "tasks/"+url.PathEscape(id), nil, nil)
}

// NewProject holds the fields for creating a project.
type NewProject struct {
	Name        string
	Description string
	Status      string
	StartDate   *time.Time
	EndDate     *time.Time
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, in NewProject) (Project, error) {
	body := map[string]any{"name": in.Name}
	if in.Description != "" {
		body["description"] = in.Description
	}
	if in.Status != "" {
		body["status"] = in.Status
	}
	if in.StartDate != nil {
		body["start_date"] = in.StartDate.UTC().Format(time.RFC3339)
	}
	if in.EndDate != nil {
		body["end_date"] = in.EndDate.UTC().Format(time.RFC3339)
	}
	var resp Project
	err := c.do(ctx, http.MethodPost, "projects", body, &resp)
	return resp, err
}

// ListProjects returns the user's projects, optionally filtered by
// status ("" or "all" for every project).
func (c *Client) ListProjects(ctx context.Context, status string) ([]Project, error) {
	endpoint := "projects"
	if status != "" {
		endpoint += "?status=" + url.QueryEscape(status)
	}
	var resp []Project
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// GetProject fetches a project by id.
func (c *Client) GetProject(ctx context.Context, id string) (Project, error) {
	var resp Project
	err := c.do(ctx, http.MethodGet, "projects/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

// ProjectPatch holds project fields to change. Nil pointers leave a
// field untouched; the Clear flags send explicit nulls.
type ProjectPatch struct {
	Name           *string
	Description    *string
	Status         *string
	StartDate      *time.Time
	ClearStartDate bool
	EndDate        *time.Time
	ClearEndDate   bool
}

// UpdateProject applies a partial project update.
func (c *Client) UpdateProject(ctx context.Context, id string, patch ProjectPatch) (Project, error) {
	body := map[string]any{}
	putIf(body, "name", patch.Name)
	putIf(body, "description", patch.Description)
	putIf(body, "status", patch.Status)
	if patch.ClearStartDate {
		body["start_date"] = nil
	} else if patch.StartDate != nil {
		body["start_date"] = patch.StartDate.UTC().Format(time.RFC3339)
	}
	if patch.ClearEndDate {
		body["end_date"] = nil
	} else if patch.EndDate != nil {
		body["end_date"] = patch.EndDate.UTC().Format(time.RFC3339)
	}
	var resp Project
	err := c.do(ctx, http.MethodPatch, "projects/"+url.PathEscape(id), body, &resp)
	return resp, err
}

// DeleteProject removes a project and its tasks.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "projects/"+url.PathEscape(id), nil, nil)
}

// Dashboard fetches the landing-page summary.
func (c *Client) Dashboard(ctx context.Context) (Dashboard, error) {
	var resp Dashboard
	err := c.do(ctx, http.MethodGet, "dashboard", nil, &resp)
	return resp, err
}

// Analytics fetches chart data over the given day window (server
// default when days <= 0).
func (c *Client) Analytics(ctx context.Context, days int) (Analytics, error) {
	endpoint := "analytics"
	if days > 0 {
		endpoint = fmt.Sprintf("analytics?days=%d", days)
	}
	var resp Analytics
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func putIf(body map[string]any, key string, v *string) {
	if v != nil {
		body[key] = *v
	}
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/v1/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s := c.Session(); s != nil {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	b, _ := io.ReadAll(resp.Body)
	var envelope struct {
		Error struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if json.Unmarshal(b, &envelope) == nil && envelope.Error.Code != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		apiErr.Details = envelope.Error.Details
	} else {
		apiErr.Message = string(b)
	}
	return apiErr
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
