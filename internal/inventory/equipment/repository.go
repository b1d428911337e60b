package equipment

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"itinventory/internal/docstore"
	"itinventory/pkg/models"
)

// Repository decodes the two collections of one namespace.
type Repository struct {
	docs      docstore.Store
	namespace string
}

func NewRepository(docs docstore.Store, namespace string) *Repository {
	return &Repository{docs: docs, namespace: namespace}
}

func (r *Repository) FetchEquipment(ctx context.Context) ([]models.Equipment, error) {
	docs, err := r.docs.List(ctx, r.namespace, docstore.CollectionEquipment)
	if err != nil {
		return nil, err
	}
	items := make([]models.Equipment, 0, len(docs))
	for _, doc := range docs {
		item, err := models.EquipmentFromDocument(doc.ID, doc.Data)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// FetchTransactions returns the audit log newest first.
func (r *Repository) FetchTransactions(ctx context.Context) ([]models.Transaction, error) {
	docs, err := r.docs.List(ctx, r.namespace, docstore.CollectionTransactions)
	if err != nil {
		return nil, err
	}
	entries := make([]models.Transaction, 0, len(docs))
	for i := len(docs) - 1; i >= 0; i-- {
		entry, err := models.TransactionFromDocument(docs[i].ID, docs[i].Data)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries, nil
}

func (r *Repository) AddTransaction(ctx context.Context, entry models.Transaction) (string, error) {
	data, err := entry.Document()
	if err != nil {
		return "", err
	}
	return r.docs.Add(ctx, r.namespace, docstore.CollectionTransactions, data)
}

func (r *Repository) AddEquipment(ctx context.Context, item models.Equipment) (string, error) {
	data, err := item.Document()
	if err != nil {
		return "", err
	}
	return r.docs.Add(ctx, r.namespace, docstore.CollectionEquipment, data)
}

func (r *Repository) UpdateEquipment(ctx context.Context, id string, patch models.EquipmentPatch) error {
	data, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}
	return r.docs.Update(ctx, r.namespace, docstore.CollectionEquipment, id, data)
}

func (r *Repository) DeleteEquipment(ctx context.Context, id string) error {
	return r.docs.Delete(ctx, r.namespace, docstore.CollectionEquipment, id)
}

func (r *Repository) Commit(ctx context.Context, batch *docstore.Batch) error {
	return r.docs.Commit(ctx, r.namespace, batch)
}
