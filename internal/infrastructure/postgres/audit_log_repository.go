package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/argentumhq/argentum/internal/application"
)

// AuditLogRepository persists audit events consumed off the audit queue.
type AuditLogRepository struct {
	pool *pgxpool.Pool
}

func NewAuditLogRepository(pool *pgxpool.Pool) *AuditLogRepository {
	return &AuditLogRepository{pool: pool}
}

func (r *AuditLogRepository) Insert(ctx context.Context, ev application.AuditEvent) error {
	md, err := json.Marshal(ev.Metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO audit_logs (id, user_id, email, action, ip, user_agent, request_id, metadata, created_at)
		VALUES ($1, NULLIF($2, '')::uuid, NULLIF($3, ''), $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, $9)
		ON CONFLICT (id) DO NOTHING
	`, ev.ID, ev.UserID, ev.Email, ev.Action, ev.IP, ev.UserAgent, ev.RequestID, md, ev.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
