package repo

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"strings"

	"arvyax/internal/domain"
)

// HashToken returns a stable SHA-256 hex digest for the provided token id.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(token)))
	return hex.EncodeToString(sum[:])
}

// InsertSession stores a login session. TokenHash must already contain
// the hashed token id.
func (r Repo) InsertSession(ctx context.Context, s domain.Session) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO sessions(id,user_id,token_hash,created_at,expires_at) VALUES (?,?,?,?,?)`,
		s.ID, s.UserID, s.TokenHash, toDB(s.CreatedAt), toDB(s.ExpiresAt))
	return err
}

// GetSessionByHash returns a session by its hashed token id.
func (r Repo) GetSessionByHash(ctx context.Context, hash string) (domain.Session, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT id,user_id,token_hash,created_at,expires_at FROM sessions WHERE token_hash=? LIMIT 1`, hash)
	var (
		s       domain.Session
		created string
		expires string
	)
	err := row.Scan(&s.ID, &s.UserID, &s.TokenHash, &created, &expires)
	if err == sql.ErrNoRows {
		return domain.Session{}, ErrNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}
	s.CreatedAt = fromDB(created)
	s.ExpiresAt = fromDB(expires)
	return s, nil
}

// DeleteSessionByHash revokes a session. Missing rows are not an
// error: signing out twice is fine.
func (r Repo) DeleteSessionByHash(ctx context.Context, hash string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash=?`, hash)
	return err
}

// DeleteExpiredSessions clears sessions past the given cutoff.
func (r Repo) DeleteExpiredSessions(ctx context.Context, cutoff string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
