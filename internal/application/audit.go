package application

import (
	"context"
	"time"
)

// Audit action names recorded on every register/login branch.
const (
	AuditRegisterSuccess         = "register_success"
	AuditRegisterConflict        = "register_conflict"
	AuditLoginSuccess            = "login_success"
	AuditLoginFailedCredentials  = "login_failed_credentials"
	AuditLoginFailedInactiveUser = "login_failed_inactive_user"
	AuditMeSuccess               = "me_success"
)

// AuditEvent is the structured record emitted at each observable branch of
// the auth flows. It never carries raw secrets or password hashes.
type AuditEvent struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	UserID     string         `json:"user_id,omitempty"`
	Email      string         `json:"email,omitempty"`
	IP         string         `json:"ip,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// AuditRecorder delivers audit events to an external sink. Recording is
// best-effort: a failing sink must not fail the request.
type AuditRecorder interface {
	Record(ctx context.Context, ev AuditEvent)
}
