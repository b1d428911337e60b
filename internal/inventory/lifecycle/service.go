package lifecycle

import (
	"context"
	"strings"
	"time"

	inventorylog "itinventory/internal/inventory/inventory_log"
	"itinventory/internal/inventory/equipment"
	"itinventory/internal/metrics"
	"itinventory/internal/session"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/metadata"
	"itinventory/pkg/models"

	"go.uber.org/zap"
)

// WarningAuditFailed is set on an Outcome whose mutation succeeded but whose
// transaction could not be written.
const WarningAuditFailed = "audit_log_failed"

// KeyCatalog tells whether free text is a translation key.
type KeyCatalog interface {
	HasKey(key string) bool
}

type Outcome struct {
	MessageKey string             `json:"message"`
	Items      []models.Equipment `json:"items"`
	Warning    string             `json:"warning,omitempty"`
}

// Service implements the equipment lifecycle. Every operation validates,
// writes remotely, updates the session cache and records one transaction.
type Service struct {
	log     *inventorylog.InventoryLog
	keys    KeyCatalog
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(log *inventorylog.InventoryLog, keys KeyCatalog, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		log:     log,
		keys:    keys,
		metrics: m,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

type result struct {
	message string
	items   []models.Equipment
	entry   inventorylog.Entry
}

func (s *Service) run(ctx context.Context, sess *session.Session, op inventorylog.Operation, fn func(store *equipment.Store) (result, error)) (Outcome, error) {
	var outcome Outcome
	err := sess.Exclusive(func() error {
		res, err := fn(sess.Store())
		if err != nil {
			return err
		}

		outcome = Outcome{MessageKey: res.message, Items: res.items}
		if _, err := s.log.Record(ctx, sess, op, res.entry); err != nil {
			outcome.Warning = WarningAuditFailed
			s.logger.Warn("Operation succeeded without transaction entry",
				zap.String("operation", string(op)),
				zap.String("principal", sess.Principal().ID),
				zap.Error(err),
			)
		}
		return nil
	})
	s.metrics.ObserveOperation(string(op), err)
	if err != nil {
		s.logger.Info("Operation rejected",
			zap.String("operation", string(op)),
			zap.String("principal", sess.Principal().ID),
			zap.String("code", string(custom_error.CodeOf(err))),
			zap.Error(err),
		)
		return Outcome{}, err
	}
	if outcome.Items == nil {
		outcome.Items = []models.Equipment{}
	}
	return outcome, nil
}

func find(store *equipment.Store, id string) (models.Equipment, error) {
	item, ok := store.Find(id)
	if !ok {
		return models.Equipment{}, custom_error.Newf(custom_error.CodeNotFound, "equipment %s not found", id)
	}
	return item, nil
}

// transition checks that item is in from and that from -> to is an edge of
// the lifecycle.
func transition(item models.Equipment, from, to metadata.Status) error {
	if item.Status != from || !from.CanTransitionTo(to) {
		return custom_error.Newf(custom_error.CodeIllegalTransition,
			"cannot move %q from %s to %s", item.Name, item.Status, to).
			WithDetails(map[string]any{"id": item.ID, "status": item.Status, "target": to})
	}
	return nil
}

func validationError(message string, details map[string]any) error {
	return custom_error.New(custom_error.CodeValidation, message).WithDetails(details)
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func (s *Service) today() string {
	return s.now().Format("2006-01-02")
}

func timePtr(t time.Time) *time.Time {
	return &t
}
