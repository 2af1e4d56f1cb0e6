package domain

import "time"

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

// TaskStatuses lists every valid task status in display order.
var TaskStatuses = []TaskStatus{TaskTodo, TaskInProgress, TaskCompleted, TaskCancelled}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskCompleted, TaskCancelled:
		return true
	}
	return false
}

// TaskPriority ranks a task's urgency.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

var TaskPriorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

var ProjectStatuses = []ProjectStatus{ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled}

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

// Task is a user-owned unit of work.
// CreatedAt is immutable once set; UpdatedAt is never earlier than CreatedAt.
type Task struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	ProjectID   *string      `json:"project_id,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status" enum:"todo,in_progress,completed,cancelled"`
	Priority    TaskPriority `json:"priority" enum:"low,medium,high,urgent"`
	DueDate     *time.Time   `json:"due_date,omitempty" format:"date-time"`
	CreatedAt   time.Time    `json:"created_at" format:"date-time"`
	UpdatedAt   time.Time    `json:"updated_at" format:"date-time"`
}

// Project groups tasks under a status and an optional date range.
// When both dates are present EndDate >= StartDate, enforced at validation time.
type Project struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status" enum:"planning,active,on_hold,completed,cancelled"`
	StartDate   *time.Time    `json:"start_date,omitempty" format:"date-time"`
	EndDate     *time.Time    `json:"end_date,omitempty" format:"date-time"`
	CreatedAt   time.Time     `json:"created_at" format:"date-time"`
	UpdatedAt   time.Time     `json:"updated_at" format:"date-time"`
}

// Profile is the account record for a user.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Location  string    `json:"location,omitempty"`
	Website   string    `json:"website,omitempty"`
	CreatedAt time.Time `json:"created_at" format:"date-time"`
	UpdatedAt time.Time `json:"updated_at" format:"date-time"`
}

// Session is a revocable login. TokenHash is the SHA-256 digest of the
// token id embedded in the bearer token; the raw value is never stored.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"`
	CreatedAt time.Time `json:"created_at" format:"date-time"`
	ExpiresAt time.Time `json:"expires_at" format:"date-time"`
}

// Event is one entry in the append-only activity log.
type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts" format:"date-time"`
	Type       string `json:"type"`
	UserID     string `json:"user_id"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty"`
	Payload    string `json:"payload_json"`
}
