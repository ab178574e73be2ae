package model

import "time"

// Session models a row in the `sessions` table. One row is created per
// successful signup or login and is required, in addition to a valid JWT,
// for a request to pass the auth guard. Rows are never deleted; logout
// flips IsValid to false and expiry is enforced at query time.
//
// Fields:
//  ID        – opaque UUID primary key.
//  UserID    – owner of the session.
//  IPAddress – client IP captured at login.
//  UserAgent – client User-Agent captured at login.
//  Expires   – hard expiry, one day after creation.
//  IsValid   – false once the user logs out from this IP.
//  CreatedAt – timestamp of creation.
type Session struct {
	ID        string
	UserID    uint64
	IPAddress string
	UserAgent string
	Expires   time.Time
	IsValid   bool
	CreatedAt time.Time
}
