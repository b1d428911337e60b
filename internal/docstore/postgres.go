package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"itinventory/internal/repository"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const documentsTable = "documents"

type documentRow struct {
	ID   string `db:"id"`
	Data []byte `db:"data"`
}

// PostgresStore keeps documents in one JSONB table keyed by
// (principal, collection, id).
type PostgresStore struct {
	repo *repository.Repository
}

func NewPostgresStore(repo *repository.Repository) *PostgresStore {
	return &PostgresStore{repo: repo}
}

func scope(namespace string, collection Collection) goqu.Ex {
	return goqu.Ex{"principal": namespace, "collection": string(collection)}
}

func (s *PostgresStore) List(ctx context.Context, namespace string, collection Collection) ([]Document, error) {
	var rows []documentRow
	err := s.repo.Goqu.From(documentsTable).
		Select("id", "data").
		Where(scope(namespace, collection)).
		Order(goqu.C("seq").Asc()).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, Document{ID: row.ID, Data: json.RawMessage(row.Data)})
	}
	return docs, nil
}

func (s *PostgresStore) Add(ctx context.Context, namespace string, collection Collection, data json.RawMessage) (string, error) {
	id := uuid.NewString()
	if _, err := insertQuery(s.repo.Goqu, namespace, collection, id, data).Executor().ExecContext(ctx); err != nil {
		return "", fmt.Errorf("add %s: %w", collection, repository.TranslateError(err))
	}
	return id, nil
}

func (s *PostgresStore) Update(ctx context.Context, namespace string, collection Collection, id string, patch json.RawMessage) error {
	result, err := updateQuery(s.repo.Goqu, namespace, collection, id, patch).Executor().ExecContext(ctx)
	return expectOne(result, err, collection, id)
}

func (s *PostgresStore) Delete(ctx context.Context, namespace string, collection Collection, id string) error {
	result, err := deleteQuery(s.repo.Goqu, namespace, collection, id).Executor().ExecContext(ctx)
	return expectOne(result, err, collection, id)
}

func (s *PostgresStore) Commit(ctx context.Context, namespace string, batch *Batch) error {
	return repository.WithTransaction(ctx, s.repo.Goqu, func(tx *goqu.TxDatabase) error {
		for _, op := range batch.ops {
			var (
				result sql.Result
				err    error
			)
			switch op.Kind {
			case OpInsert:
				_, err = insertQuery(tx, namespace, op.Collection, op.ID, op.Data).Executor().ExecContext(ctx)
				err = repository.TranslateError(err)
			case OpUpdate:
				result, err = updateQuery(tx, namespace, op.Collection, op.ID, op.Data).Executor().ExecContext(ctx)
				err = expectOne(result, err, op.Collection, op.ID)
			case OpDelete:
				result, err = deleteQuery(tx, namespace, op.Collection, op.ID).Executor().ExecContext(ctx)
				err = expectOne(result, err, op.Collection, op.ID)
			case OpDeleteAll:
				_, err = tx.Delete(documentsTable).Where(scope(namespace, op.Collection)).Executor().ExecContext(ctx)
			}
			if err != nil {
				return fmt.Errorf("batch %s: %w", op.Collection, err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) Close(context.Context) error {
	return s.repo.DB.Close()
}

// queryRunner is satisfied by both *goqu.Database and *goqu.TxDatabase.
type queryRunner interface {
	Insert(table interface{}) *goqu.InsertDataset
	Update(table interface{}) *goqu.UpdateDataset
	Delete(table interface{}) *goqu.DeleteDataset
}

func insertQuery(db queryRunner, namespace string, collection Collection, id string, data json.RawMessage) *goqu.InsertDataset {
	return db.Insert(documentsTable).Rows(goqu.Record{
		"principal":  namespace,
		"collection": string(collection),
		"id":         id,
		"data":       goqu.L("?::jsonb", string(data)),
	})
}

func updateQuery(db queryRunner, namespace string, collection Collection, id string, patch json.RawMessage) *goqu.UpdateDataset {
	where := scope(namespace, collection)
	where["id"] = id
	return db.Update(documentsTable).
		Set(goqu.Record{"data": goqu.L("data || ?::jsonb", string(patch)), "updated_at": goqu.L("NOW()")}).
		Where(where)
}

func deleteQuery(db queryRunner, namespace string, collection Collection, id string) *goqu.DeleteDataset {
	where := scope(namespace, collection)
	where["id"] = id
	return db.Delete(documentsTable).Where(where)
}

// expectOne turns a write that touched no row into ErrNotFound.
func expectOne(result sql.Result, err error, collection Collection, id string) error {
	if err != nil {
		return repository.TranslateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return nil
}

