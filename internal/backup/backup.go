package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"itinventory/internal/session"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/models"

	"go.uber.org/zap"
)

// File is the backup format: both collections without document ids.
type File struct {
	Equipment    []models.Equipment   `json:"equipment"`
	Transactions []models.Transaction `json:"transactions"`
}

type Summary struct {
	Equipment    int `json:"equipment"`
	Transactions int `json:"transactions"`
}

func (f File) Summary() Summary {
	return Summary{Equipment: len(f.Equipment), Transactions: len(f.Transactions)}
}

type Service struct {
	logger *zap.Logger
}

func NewService(logger *zap.Logger) *Service {
	return &Service{logger: logger}
}

// Export copies the session cache. Ids and masterId links are dropped; a
// restore re-resolves links by master key.
func (s *Service) Export(sess *session.Session) File {
	snapshot := sess.Store().Snapshot()
	out := File{
		Equipment:    make([]models.Equipment, 0, len(snapshot.Equipment)),
		Transactions: make([]models.Transaction, 0, len(snapshot.Transactions)),
	}
	for _, item := range snapshot.Equipment {
		item.ID = ""
		item.MasterID = ""
		out.Equipment = append(out.Equipment, item)
	}
	for _, entry := range snapshot.Transactions {
		entry.ID = ""
		out.Transactions = append(out.Transactions, entry)
	}
	return out
}

// Parse decodes and checks a whole backup file. Both arrays must be present.
func Parse(raw []byte) (File, error) {
	var shape struct {
		Equipment    *json.RawMessage `json:"equipment"`
		Transactions *json.RawMessage `json:"transactions"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		return File{}, custom_error.Wrap(custom_error.CodeValidation, err, "backup is not valid JSON")
	}
	var missing []string
	if shape.Equipment == nil || isNull(*shape.Equipment) {
		missing = append(missing, "equipment")
	}
	if shape.Transactions == nil || isNull(*shape.Transactions) {
		missing = append(missing, "transactions")
	}
	if len(missing) > 0 {
		return File{}, custom_error.Newf(custom_error.CodeValidation, "backup is missing %s", strings.Join(missing, " and ")).
			WithDetails(map[string]any{"missing": missing})
	}

	var file File
	if err := json.Unmarshal(*shape.Equipment, &file.Equipment); err != nil {
		return File{}, custom_error.Wrap(custom_error.CodeValidation, err, "backup equipment is malformed")
	}
	if err := json.Unmarshal(*shape.Transactions, &file.Transactions); err != nil {
		return File{}, custom_error.Wrap(custom_error.CodeValidation, err, "backup transactions are malformed")
	}

	problems := map[string]any{}
	for i, item := range file.Equipment {
		if err := item.Validate(); err != nil {
			problems[fmt.Sprintf("equipment[%d]", i)] = err.Error()
		}
	}
	for i, entry := range file.Transactions {
		if !entry.Type.IsValid() || entry.Reason == "" {
			problems[fmt.Sprintf("transactions[%d]", i)] = fmt.Sprintf("unknown type %q or empty reason", entry.Type)
		}
	}
	if len(problems) > 0 {
		return File{}, custom_error.New(custom_error.CodeValidation, "backup contains invalid records").WithDetails(problems)
	}
	return file, nil
}

// Restore replaces everything the principal owns with the backup. The file
// is fully validated before anything is deleted.
func (s *Service) Restore(ctx context.Context, sess *session.Session, raw []byte, confirmed bool) (Summary, error) {
	file, err := Parse(raw)
	if err != nil {
		return Summary{}, err
	}
	summary := file.Summary()
	if !confirmed {
		return summary, custom_error.New(custom_error.CodeConfirmationRequired,
			"restoring replaces all equipment and transactions").
			WithDetails(map[string]any{"equipment": summary.Equipment, "transactions": summary.Transactions})
	}

	err = sess.Exclusive(func() error {
		return sess.Store().ReplaceAll(ctx, file.Equipment, file.Transactions)
	})
	if err != nil {
		return Summary{}, err
	}
	s.logger.Info("Backup restored",
		zap.String("principal", sess.Principal().ID),
		zap.Int("equipment", summary.Equipment),
		zap.Int("transactions", summary.Transactions),
	)
	return summary, nil
}

// Reset deletes every equipment row and transaction of the principal.
func (s *Service) Reset(ctx context.Context, sess *session.Session, confirmed bool) error {
	if !confirmed {
		return custom_error.New(custom_error.CodeConfirmationRequired, "reset deletes all equipment and transactions")
	}
	err := sess.Exclusive(func() error {
		return sess.Store().Clear(ctx)
	})
	if err != nil {
		return err
	}
	s.logger.Warn("Inventory reset", zap.String("principal", sess.Principal().ID))
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
