package domain

import "time"

// AuditLog is one recorded request.
type AuditLog struct {
	ID         string    `json:"id"          db:"id"`
	UserID     string    `json:"user_id"     db:"user_id"`
	Method     string    `json:"method"      db:"method"`
	Path       string    `json:"path"        db:"path"`
	Status     int       `json:"status"      db:"status"`
	DurationMS int64     `json:"duration_ms" db:"duration_ms"`
	IP         string    `json:"ip"          db:"ip"`
	UserAgent  string    `json:"user_agent"  db:"user_agent"`
	CreatedAt  time.Time `json:"created_at"  db:"created_at"`
}

// AnonymousUserID is recorded for requests without a session.
const AnonymousUserID = "anonymous"
