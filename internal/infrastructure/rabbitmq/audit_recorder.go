package rabbitmq

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/argentumhq/argentum/internal/application"
	"github.com/argentumhq/argentum/pkg/helpers"
)

// AuditRecorder publishes audit events to the audit queue. A nil publisher
// degrades to log-only so the API keeps working without a broker.
type AuditRecorder struct {
	Pub    *helpers.RabbitPublisher
	Logger *logrus.Logger
}

func NewAuditRecorder(pub *helpers.RabbitPublisher, logger *logrus.Logger) *AuditRecorder {
	return &AuditRecorder{Pub: pub, Logger: logger}
}

func (r *AuditRecorder) Record(ctx context.Context, ev application.AuditEvent) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if r.Pub == nil {
		if r.Logger != nil {
			r.Logger.WithFields(logrus.Fields{
				"action":     ev.Action,
				"user_id":    ev.UserID,
				"request_id": ev.RequestID,
			}).Info("audit event (no broker configured)")
		}
		return
	}
	if err := r.Pub.PublishJSON(ctx, ev); err != nil && r.Logger != nil {
		r.Logger.WithError(err).WithField("action", ev.Action).Warn("audit publish failed")
	}
}

var _ application.AuditRecorder = (*AuditRecorder)(nil)
