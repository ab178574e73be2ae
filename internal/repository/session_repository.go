package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/moviehub/movie-api/internal/model"
)

// SessionRepo persists per-login session rows. A session is the
// server-side half of authorization: a bearer token is only honored while
// a matching row is valid and unexpired. Rows are append-only except for
// the is_valid flag; no sweep deletes expired rows.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts a session row for a login event. The caller fills
// UserID, IPAddress and UserAgent; the repo assigns the UUID and the
// one-day expiry and writes them back into s.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	s.ID = uuid.NewString()
	s.Expires = time.Now().UTC().Add(24 * time.Hour)
	s.IsValid = true
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (id, user_id, ip_address, user_agent, expires) VALUES (?,?,?,?,?)",
		s.ID, s.UserID, s.IPAddress, s.UserAgent, s.Expires)
	return err
}

// HasLive reports whether the user has at least one valid, unexpired
// session. Called by the auth guard on every protected request.
func (r *SessionRepo) HasLive(ctx context.Context, userID uint64) (bool, error) {
	var live bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM sessions WHERE user_id=? AND is_valid=TRUE AND expires > NOW())",
		userID).Scan(&live)
	return live, err
}

// InvalidateByUserAndIP flips is_valid on every session the user opened
// from the given IP. Logout is best-effort; affecting zero rows is fine.
func (r *SessionRepo) InvalidateByUserAndIP(ctx context.Context, userID uint64, ip string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET is_valid=FALSE WHERE user_id=? AND ip_address=?",
		userID, ip)
	return err
}
