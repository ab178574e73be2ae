package repository

import (
	"context"
	"database/sql"
)

// LoginAttemptRepo records every login attempt in the 'login_attempts'
// table, successful or not, keyed by client IP and the email tried.
type LoginAttemptRepo struct{ DB *sql.DB }

func NewLoginAttemptRepo(db *sql.DB) *LoginAttemptRepo { return &LoginAttemptRepo{DB: db} }

// Record inserts one attempt row. Callers treat failures as best-effort:
// a broken audit insert must never block a login.
func (r *LoginAttemptRepo) Record(ctx context.Context, ip, email string, success bool) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO login_attempts (ip_address, email, success) VALUES (?,?,?)",
		ip, email, success)
	return err
}
