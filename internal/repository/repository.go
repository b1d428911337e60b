package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	custom_error "itinventory/pkg/errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"
)

const dialect = "postgres"

type Repository struct {
	DB   *sql.DB
	Goqu *goqu.Database
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		DB:   db,
		Goqu: goqu.New(dialect, db),
	}
}

// WithTransaction runs fn inside one transaction. Any error or panic rolls
// the transaction back.
func WithTransaction(ctx context.Context, db *goqu.Database, fn func(tx *goqu.TxDatabase) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	err = fn(tx)
	return
}

// TranslateError maps postgres constraint violations to typed errors so
// callers can match them with custom_error.CodeOf.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return custom_error.WrapDBError(pqErr.Message, string(pqErr.Code), pqErr.Constraint)
	}
	return err
}
