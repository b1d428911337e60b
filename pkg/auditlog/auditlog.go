package auditlog

import (
	"context"
	"time"

	"itinventory/internal/metrics"
	"itinventory/internal/session"
	"itinventory/pkg/models"

	"go.uber.org/zap"
)

// Publisher pushes stored entries to live subscribers.
type Publisher interface {
	Publish(principalID string, entry models.Transaction)
}

// Auditlog appends one transaction per lifecycle operation. Its failures are
// reported to the caller but never undo the operation they describe.
type Auditlog struct {
	feed    Publisher
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

func NewAuditLog(feed Publisher, m *metrics.Metrics, logger *zap.Logger) *Auditlog {
	return &Auditlog{
		feed:    feed,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Log stamps the actor and time on entry, stores it and prepends it to the
// session's cached log.
func (a *Auditlog) Log(ctx context.Context, sess *session.Session, entry models.Transaction) (models.Transaction, error) {
	principal := sess.Principal()
	entry.User = principal.ActorName()
	entry.Timestamp = a.now().UTC()

	stored, err := sess.Store().AppendTransaction(ctx, entry)
	a.metrics.ObserveAuditWrite(err)
	if err != nil {
		a.logger.Error("Unable to create transaction entry",
			zap.String("principal", principal.ID),
			zap.String("type", string(entry.Type)),
			zap.String("reason", string(entry.Reason)),
			zap.String("item", entry.ItemName),
			zap.Error(err),
		)
		return entry, err
	}

	a.logger.Debug("Created transaction entry", zap.String("id", stored.ID), zap.String("reason", string(stored.Reason)))
	if a.feed != nil {
		a.feed.Publish(principal.ID, stored)
	}
	return stored, nil
}
