package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"arvyax/internal/domain"
)

// Repo provides SQL-backed storage for profiles, projects, tasks, and
// sessions. All timestamps are stored as RFC3339 UTC strings.
type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func toDB(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func optToDB(t *time.Time) any {
	if t == nil {
		return nil
	}
	return toDB(*t)
}

func fromDB(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func optFromDB(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := fromDB(s.String)
	return &t
}

// InsertProfile stores a new account. The caller supplies the bcrypt
// password hash; raw passwords never reach this layer.
func (r Repo) InsertProfile(ctx context.Context, tx *sql.Tx, p domain.Profile, passwordHash string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO profiles(id,email,password_hash,full_name,avatar_url,bio,location,website,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?)`,
		p.ID, p.Email, passwordHash, p.FullName, nullable(p.AvatarURL), nullable(p.Bio),
		nullable(p.Location), nullable(p.Website), toDB(p.CreatedAt), toDB(p.UpdatedAt))
	return err
}

func scanProfile(row *sql.Row) (domain.Profile, string, error) {
	var (
		p          domain.Profile
		hash       string
		avatar     sql.NullString
		bio        sql.NullString
		location   sql.NullString
		website    sql.NullString
		created    string
		updated    string
	)
	err := row.Scan(&p.ID, &p.Email, &hash, &p.FullName, &avatar, &bio, &location, &website, &created, &updated)
	if err == sql.ErrNoRows {
		return p, "", ErrNotFound
	}
	if err != nil {
		return p, "", err
	}
	p.AvatarURL = avatar.String
	p.Bio = bio.String
	p.Location = location.String
	p.Website = website.String
	p.CreatedAt = fromDB(created)
	p.UpdatedAt = fromDB(updated)
	return p, hash, nil
}

const profileCols = `id,email,password_hash,full_name,avatar_url,bio,location,website,created_at,updated_at`

// GetProfile returns a profile by id.
func (r Repo) GetProfile(ctx context.Context, id string) (domain.Profile, error) {
	p, _, err := scanProfile(r.DB.QueryRowContext(ctx, `SELECT `+profileCols+` FROM profiles WHERE id=?`, id))
	return p, err
}

// GetProfileByEmail returns a profile and its password hash.
func (r Repo) GetProfileByEmail(ctx context.Context, email string) (domain.Profile, string, error) {
	return scanProfile(r.DB.QueryRowContext(ctx, `SELECT `+profileCols+` FROM profiles WHERE email=?`, email))
}

// ProfilePatch lists the updatable profile fields; nil means untouched.
type ProfilePatch struct {
	FullName  *string
	AvatarURL *string
	Bio       *string
	Location  *string
	Website   *string
	UpdatedAt time.Time
}

// UpdateProfile applies a partial update. created_at is never touched.
func (r Repo) UpdateProfile(ctx context.Context, id string, patch ProfilePatch) error {
	fields := []string{"updated_at=?"}
	args := []any{toDB(patch.UpdatedAt)}
	if patch.FullName != nil {
		fields = append(fields, "full_name=?")
		args = append(args, *patch.FullName)
	}
	if patch.AvatarURL != nil {
		fields = append(fields, "avatar_url=?")
		args = append(args, nullable(*patch.AvatarURL))
	}
	if patch.Bio != nil {
		fields = append(fields, "bio=?")
		args = append(args, nullable(*patch.Bio))
	}
	if patch.Location != nil {
		fields = append(fields, "location=?")
		args = append(args, nullable(*patch.Location))
	}
	if patch.Website != nil {
		fields = append(fields, "website=?")
		args = append(args, nullable(*patch.Website))
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx, `UPDATE profiles SET `+joinFields(fields)+` WHERE id=?`, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func joinFields(fields []string) string {
	out := fields[0]
	for _, f := range fields[1:] {
		out += "," + f
	}
	return out
}
