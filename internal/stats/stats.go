// Package stats computes read-only aggregates over caller-supplied
// snapshots of tasks and projects. Every function is pure and
// synchronous: no I/O, no mutation of inputs, and "now" is always an
// explicit parameter so results are deterministic under test.
//
// Calendar-date computations (day buckets, "today", "this week") use
// UTC; a task is matched to a day by truncating its timestamp to the
// UTC calendar date.
package stats

import (
	"math"
	"strings"
	"time"

	"arvyax/internal/domain"
)

// dayFormat is the bucket key layout, a UTC calendar date.
const dayFormat = "2006-01-02"

// FilterAll is the wildcard filter value that matches any field value.
const FilterAll = "all"

// StatusCounts tallies tasks per status. The four fields always sum to
// the size of the input snapshot.
type StatusCounts struct {
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
}

// Total returns the sum of all counters.
func (c StatusCounts) Total() int {
	return c.Todo + c.InProgress + c.Completed + c.Cancelled
}

// CountTasksByStatus counts tasks per status in a single pass.
func CountTasksByStatus(tasks []domain.Task) StatusCounts {
	var c StatusCounts
	for _, t := range tasks {
		switch t.Status {
		case domain.TaskTodo:
			c.Todo++
		case domain.TaskInProgress:
			c.InProgress++
		case domain.TaskCompleted:
			c.Completed++
		case domain.TaskCancelled:
			c.Cancelled++
		}
	}
	return c
}

// PriorityCounts tallies tasks per priority.
type PriorityCounts struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
	Urgent int `json:"urgent"`
}

func CountTasksByPriority(tasks []domain.Task) PriorityCounts {
	var c PriorityCounts
	for _, t := range tasks {
		switch t.Priority {
		case domain.PriorityLow:
			c.Low++
		case domain.PriorityMedium:
			c.Medium++
		case domain.PriorityHigh:
			c.High++
		case domain.PriorityUrgent:
			c.Urgent++
		}
	}
	return c
}

// ProjectStatusCounts tallies projects per status.
type ProjectStatusCounts struct {
	Planning  int `json:"planning"`
	Active    int `json:"active"`
	OnHold    int `json:"on_hold"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

func CountProjectsByStatus(projects []domain.Project) ProjectStatusCounts {
	var c ProjectStatusCounts
	for _, p := range projects {
		switch p.Status {
		case domain.ProjectPlanning:
			c.Planning++
		case domain.ProjectActive:
			c.Active++
		case domain.ProjectOnHold:
			c.OnHold++
		case domain.ProjectCompleted:
			c.Completed++
		case domain.ProjectCancelled:
			c.Cancelled++
		}
	}
	return c
}

// CompletionRate returns round(100*completed/total) as an integer in
// 0..100, and 0 when total is zero.
func CompletionRate(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// TaskSummary is the dashboard headline block for a task snapshot.
type TaskSummary struct {
	Total          int `json:"total"`
	Todo           int `json:"todo"`
	InProgress     int `json:"in_progress"`
	Completed      int `json:"completed"`
	Cancelled      int `json:"cancelled"`
	Overdue        int `json:"overdue"`
	CompletionRate int `json:"completion_rate"`
}

func SummarizeTasks(tasks []domain.Task, now time.Time) TaskSummary {
	c := CountTasksByStatus(tasks)
	return TaskSummary{
		Total:          len(tasks),
		Todo:           c.Todo,
		InProgress:     c.InProgress,
		Completed:      c.Completed,
		Cancelled:      c.Cancelled,
		Overdue:        len(OverdueTasks(tasks, now)),
		CompletionRate: CompletionRate(c.Completed, len(tasks)),
	}
}

// ProjectSummary is the headline block for a project snapshot.
type ProjectSummary struct {
	Total          int `json:"total"`
	Planning       int `json:"planning"`
	Active         int `json:"active"`
	OnHold         int `json:"on_hold"`
	Completed      int `json:"completed"`
	Cancelled      int `json:"cancelled"`
	CompletionRate int `json:"completion_rate"`
}

func SummarizeProjects(projects []domain.Project) ProjectSummary {
	c := CountProjectsByStatus(projects)
	return ProjectSummary{
		Total:          len(projects),
		Planning:       c.Planning,
		Active:         c.Active,
		OnHold:         c.OnHold,
		Completed:      c.Completed,
		Cancelled:      c.Cancelled,
		CompletionRate: CompletionRate(c.Completed, len(projects)),
	}
}

// IsOverdue reports whether due is set and strictly earlier than now.
func IsOverdue(due *time.Time, now time.Time) bool {
	return due != nil && due.Before(now)
}

// OverdueTasks returns the tasks whose due date has passed and whose
// status is not completed. A completed task is never overdue.
func OverdueTasks(tasks []domain.Task, now time.Time) []domain.Task {
	var out []domain.Task
	for _, t := range tasks {
		if t.Status != domain.TaskCompleted && IsOverdue(t.DueDate, now) {
			out = append(out, t)
		}
	}
	return out
}

// DaysUntilDue returns ceil((due-now)/24h) and true, or 0 and false
// when due is nil. Zero means due today; negative values count days
// overdue.
func DaysUntilDue(due *time.Time, now time.Time) (int, bool) {
	if due == nil {
		return 0, false
	}
	return int(math.Ceil(due.Sub(now).Hours() / 24)), true
}

// UpcomingTasks returns non-completed tasks due within [now,
// now+windowDays], both ends inclusive.
func UpcomingTasks(tasks []domain.Task, now time.Time, windowDays int) []domain.Task {
	horizon := now.Add(time.Duration(windowDays) * 24 * time.Hour)
	var out []domain.Task
	for _, t := range tasks {
		if t.DueDate == nil || t.Status == domain.TaskCompleted {
			continue
		}
		due := *t.DueDate
		if !due.Before(now) && !due.After(horizon) {
			out = append(out, t)
		}
	}
	return out
}

// DateField selects the task timestamp used for day bucketing.
type DateField func(domain.Task) *time.Time

// ByCreatedAt buckets by creation time.
func ByCreatedAt(t domain.Task) *time.Time { ts := t.CreatedAt; return &ts }

// ByUpdatedAt buckets by last-update time.
func ByUpdatedAt(t domain.Task) *time.Time { ts := t.UpdatedAt; return &ts }

// ByDueDate buckets by due date; tasks without one are excluded.
func ByDueDate(t domain.Task) *time.Time { return t.DueDate }

// DayBucket is one day of a time series.
type DayBucket struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// BucketByDay counts tasks per UTC calendar date over the last dayCount
// days ending on now's date, inclusive. The result always has exactly
// dayCount entries ordered oldest to newest, zero-count days included.
// Tasks whose selected field is nil or outside the window are skipped.
func BucketByDay(tasks []domain.Task, field DateField, dayCount int, now time.Time) []DayBucket {
	if dayCount <= 0 {
		return []DayBucket{}
	}
	counts := make(map[string]int, dayCount)
	for _, t := range tasks {
		if ts := field(t); ts != nil {
			counts[ts.UTC().Format(dayFormat)]++
		}
	}
	buckets := make([]DayBucket, 0, dayCount)
	start := now.UTC().AddDate(0, 0, -(dayCount - 1))
	for i := 0; i < dayCount; i++ {
		day := start.AddDate(0, 0, i).Format(dayFormat)
		buckets = append(buckets, DayBucket{Day: day, Count: counts[day]})
	}
	return buckets
}

// ProductivityPoint pairs tasks created and tasks completed on one day.
type ProductivityPoint struct {
	Day       string `json:"day"`
	Created   int    `json:"created"`
	Completed int    `json:"completed"`
}

// ProductivitySeries builds the created-vs-completed chart data for the
// last dayCount days. A task counts as completed on the UTC date of its
// last update while its status is completed.
func ProductivitySeries(tasks []domain.Task, dayCount int, now time.Time) []ProductivityPoint {
	created := BucketByDay(tasks, ByCreatedAt, dayCount, now)
	var done []domain.Task
	for _, t := range tasks {
		if t.Status == domain.TaskCompleted {
			done = append(done, t)
		}
	}
	completed := BucketByDay(done, ByUpdatedAt, dayCount, now)
	series := make([]ProductivityPoint, len(created))
	for i := range created {
		series[i] = ProductivityPoint{
			Day:       created[i].Day,
			Created:   created[i].Count,
			Completed: completed[i].Count,
		}
	}
	return series
}

// GroupByKey partitions items by keyFn, preserving relative input order
// within each group. Unknown or novel keys are retained as-is.
func GroupByKey[T any](items []T, keyFn func(T) string) map[string][]T {
	groups := make(map[string][]T)
	for _, item := range items {
		k := keyFn(item)
		groups[k] = append(groups[k], item)
	}
	return groups
}

// Condition is an exact-match filter against one item field. The
// wildcard values "" and FilterAll match unconditionally.
type Condition[T any] struct {
	Value string
	Field func(T) string
}

// Query combines a free-text search with exact-match conditions.
type Query[T any] struct {
	// Query is matched case-insensitively as a substring of at least
	// one of Fields; empty matches everything.
	Query  string
	Fields []func(T) string
	Exact  []Condition[T]
}

// FilterAndSearch returns the items matching q. With an empty query and
// no conditions it returns the input unchanged.
func FilterAndSearch[T any](items []T, q Query[T]) []T {
	needle := strings.ToLower(strings.TrimSpace(q.Query))
	if needle == "" && len(q.Exact) == 0 {
		return items
	}
	var out []T
	for _, item := range items {
		if matches(item, needle, q) {
			out = append(out, item)
		}
	}
	return out
}

func matches[T any](item T, needle string, q Query[T]) bool {
	if needle != "" {
		found := false
		for _, field := range q.Fields {
			if strings.Contains(strings.ToLower(field(item)), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, cond := range q.Exact {
		if cond.Value == "" || cond.Value == FilterAll {
			continue
		}
		if cond.Field(item) != cond.Value {
			return false
		}
	}
	return true
}

// IsSameDay reports whether a and b fall on the same UTC calendar date.
func IsSameDay(a, b time.Time) bool {
	return a.UTC().Format(dayFormat) == b.UTC().Format(dayFormat)
}

// IsToday reports whether t falls on now's UTC calendar date.
func IsToday(t, now time.Time) bool {
	return IsSameDay(t, now)
}

// IsThisWeek reports whether t falls inside now's UTC week, with weeks
// starting on Sunday.
func IsThisWeek(t, now time.Time) bool {
	day := now.UTC().Truncate(24 * time.Hour)
	start := day.AddDate(0, 0, -int(day.Weekday()))
	end := start.AddDate(0, 0, 7)
	u := t.UTC()
	return !u.Before(start) && u.Before(end)
}
