package repo

import (
	"context"
	"database/sql"
	"time"

	"arvyax/internal/domain"
)

const taskCols = `id,user_id,project_id,title,description,status,priority,due_date,created_at,updated_at`

func (r Repo) InsertTask(ctx context.Context, tx *sql.Tx, t domain.Task) error {
	var projectID any
	if t.ProjectID != nil {
		projectID = *t.ProjectID
	}
	_, err := tx.ExecContext(ctx, `INSERT INTO tasks(`+taskCols+`) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		t.ID, t.UserID, projectID, t.Title, nullable(t.Description), string(t.Status), string(t.Priority),
		optToDB(t.DueDate), toDB(t.CreatedAt), toDB(t.UpdatedAt))
	return err
}

func scanTask(scan func(dest ...any) error) (domain.Task, error) {
	var (
		t        domain.Task
		project  sql.NullString
		desc     sql.NullString
		status   string
		priority string
		due      sql.NullString
		created  string
		updated  string
	)
	err := scan(&t.ID, &t.UserID, &project, &t.Title, &desc, &status, &priority, &due, &created, &updated)
	if err == sql.ErrNoRows {
		return t, ErrNotFound
	}
	if err != nil {
		return t, err
	}
	if project.Valid {
		p := project.String
		t.ProjectID = &p
	}
	t.Description = desc.String
	t.Status = domain.TaskStatus(status)
	t.Priority = domain.TaskPriority(priority)
	t.DueDate = optFromDB(due)
	t.CreatedAt = fromDB(created)
	t.UpdatedAt = fromDB(updated)
	return t, nil
}

// GetTask returns a task by id, scoped to its owner.
func (r Repo) GetTask(ctx context.Context, userID, id string) (domain.Task, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+taskCols+` FROM tasks WHERE id=? AND user_id=?`, id, userID)
	return scanTask(row.Scan)
}

// TaskFilters narrow ListTasks. Zero values mean no filter.
type TaskFilters struct {
	Status    domain.TaskStatus
	Priority  domain.TaskPriority
	ProjectID string
}

// ListTasks returns the user's tasks newest-first.
func (r Repo) ListTasks(ctx context.Context, userID string, f TaskFilters) ([]domain.Task, error) {
	query := `SELECT ` + taskCols + ` FROM tasks WHERE user_id=?`
	args := []any{userID}
	if f.Status != "" {
		query += ` AND status=?`
		args = append(args, string(f.Status))
	}
	if f.Priority != "" {
		query += ` AND priority=?`
		args = append(args, string(f.Priority))
	}
	if f.ProjectID != "" {
		query += ` AND project_id=?`
		args = append(args, f.ProjectID)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// TaskPatch lists the updatable task fields. Pointer fields are
// untouched when nil; DueDate and ProjectID also carry a Provided flag
// so an explicit null can clear them.
type TaskPatch struct {
	Title           *string
	Description     *string
	Status          *domain.TaskStatus
	Priority        *domain.TaskPriority
	DueProvided     bool
	DueDate         *time.Time
	ProjectProvided bool
	ProjectID       *string
	UpdatedAt       time.Time
}

// UpdateTask applies a partial update scoped to the owner. created_at
// is never touched; updated_at is always stamped.
func (r Repo) UpdateTask(ctx context.Context, tx *sql.Tx, userID, id string, patch TaskPatch) error {
	fields := []string{"updated_at=?"}
	args := []any{toDB(patch.UpdatedAt)}
	if patch.Title != nil {
		fields = append(fields, "title=?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		fields = append(fields, "description=?")
		args = append(args, nullable(*patch.Description))
	}
	if patch.Status != nil {
		fields = append(fields, "status=?")
		args = append(args, string(*patch.Status))
	}
	if patch.Priority != nil {
		fields = append(fields, "priority=?")
		args = append(args, string(*patch.Priority))
	}
	if patch.DueProvided {
		fields = append(fields, "due_date=?")
		args = append(args, optToDB(patch.DueDate))
	}
	if patch.ProjectProvided {
		fields = append(fields, "project_id=?")
		if patch.ProjectID == nil {
			args = append(args, nil)
		} else {
			args = append(args, *patch.ProjectID)
		}
	}
	args = append(args, id, userID)
	res, err := tx.ExecContext(ctx, `UPDATE tasks SET `+joinFields(fields)+` WHERE id=? AND user_id=?`, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTask removes a task scoped to the owner.
func (r Repo) DeleteTask(ctx context.Context, tx *sql.Tx, userID, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id=? AND user_id=?`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
