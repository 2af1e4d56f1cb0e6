package repo

import (
	"context"
	"database/sql"
	"time"

	"arvyax/internal/domain"
)

const projectCols = `id,user_id,name,description,status,start_date,end_date,created_at,updated_at`

func (r Repo) InsertProject(ctx context.Context, tx *sql.Tx, p domain.Project) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO projects(`+projectCols+`) VALUES (?,?,?,?,?,?,?,?,?)`,
		p.ID, p.UserID, p.Name, nullable(p.Description), string(p.Status),
		optToDB(p.StartDate), optToDB(p.EndDate), toDB(p.CreatedAt), toDB(p.UpdatedAt))
	return err
}

func scanProject(scan func(dest ...any) error) (domain.Project, error) {
	var (
		p       domain.Project
		desc    sql.NullString
		status  string
		start   sql.NullString
		end     sql.NullString
		created string
		updated string
	)
	err := scan(&p.ID, &p.UserID, &p.Name, &desc, &status, &start, &end, &created, &updated)
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}
	p.Description = desc.String
	p.Status = domain.ProjectStatus(status)
	p.StartDate = optFromDB(start)
	p.EndDate = optFromDB(end)
	p.CreatedAt = fromDB(created)
	p.UpdatedAt = fromDB(updated)
	return p, nil
}

// GetProject returns a project by id, scoped to its owner.
func (r Repo) GetProject(ctx context.Context, userID, id string) (domain.Project, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+projectCols+` FROM projects WHERE id=? AND user_id=?`, id, userID)
	return scanProject(row.Scan)
}

// ListProjects returns the user's projects newest-first.
func (r Repo) ListProjects(ctx context.Context, userID string, status domain.ProjectStatus) ([]domain.Project, error) {
	query := `SELECT ` + projectCols + ` FROM projects WHERE user_id=?`
	args := []any{userID}
	if status != "" {
		query += ` AND status=?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var projects []domain.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// CountTasksForProject returns how many tasks reference a project.
func (r Repo) CountTasksForProject(ctx context.Context, userID, projectID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE user_id=? AND project_id=?`, userID, projectID).Scan(&n)
	return n, err
}

// ProjectPatch lists the updatable project fields. StartDate/EndDate
// carry Provided flags so explicit nulls clear them.
type ProjectPatch struct {
	Name          *string
	Description   *string
	Status        *domain.ProjectStatus
	StartProvided bool
	StartDate     *time.Time
	EndProvided   bool
	EndDate       *time.Time
	UpdatedAt     time.Time
}

// UpdateProject applies a partial update scoped to the owner.
func (r Repo) UpdateProject(ctx context.Context, tx *sql.Tx, userID, id string, patch ProjectPatch) error {
	fields := []string{"updated_at=?"}
	args := []any{toDB(patch.UpdatedAt)}
	if patch.Name != nil {
		fields = append(fields, "name=?")
		args = append(args, *patch.Name)
	}
	if patch.Description != nil {
		fields = append(fields, "description=?")
		args = append(args, nullable(*patch.Description))
	}
	if patch.Status != nil {
		fields = append(fields, "status=?")
		args = append(args, string(*patch.Status))
	}
	if patch.StartProvided {
		fields = append(fields, "start_date=?")
		args = append(args, optToDB(patch.StartDate))
	}
	if patch.EndProvided {
		fields = append(fields, "end_date=?")
		args = append(args, optToDB(patch.EndDate))
	}
	args = append(args, id, userID)
	res, err := tx.ExecContext(ctx, `UPDATE projects SET `+joinFields(fields)+` WHERE id=? AND user_id=?`, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProject removes a project; its tasks go with it via the
// ON DELETE CASCADE foreign key.
func (r Repo) DeleteProject(ctx context.Context, tx *sql.Tx, userID, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id=? AND user_id=?`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
