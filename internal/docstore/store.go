package docstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

type Collection string

const (
	CollectionEquipment    Collection = "equipment"
	CollectionTransactions Collection = "transactions"
)

var ErrNotFound = errors.New("docstore: document not found")

// Document is one stored record. Data never contains the id.
type Document struct {
	ID   string
	Data json.RawMessage
}

// Store is a per-namespace document database. Every call is scoped to the
// namespace of one principal.
type Store interface {
	List(ctx context.Context, namespace string, collection Collection) ([]Document, error)
	// Add stores data under a new id chosen by the store.
	Add(ctx context.Context, namespace string, collection Collection, data json.RawMessage) (string, error)
	// Update merges the top-level keys of patch into the stored document.
	Update(ctx context.Context, namespace string, collection Collection, id string, patch json.RawMessage) error
	Delete(ctx context.Context, namespace string, collection Collection, id string) error
	// Commit applies every operation of the batch or none of them.
	Commit(ctx context.Context, namespace string, batch *Batch) error
	Close(ctx context.Context) error
}

type OpKind int

const (
	OpInsert OpKind = iota
	OpUpdate
	OpDelete
	OpDeleteAll
)

type Op struct {
	Kind       OpKind
	Collection Collection
	ID         string
	Data       json.RawMessage
}

// Batch collects writes for one atomic Commit. Inserted documents get their
// ids on the client so callers can reference them before the commit.
type Batch struct {
	ops []Op
}

func NewBatch() *Batch {
	return &Batch{}
}

func (b *Batch) Insert(collection Collection, data json.RawMessage) string {
	return b.InsertWithID(collection, uuid.NewString(), data)
}

func (b *Batch) InsertWithID(collection Collection, id string, data json.RawMessage) string {
	b.ops = append(b.ops, Op{Kind: OpInsert, Collection: collection, ID: id, Data: data})
	return id
}

func (b *Batch) Update(collection Collection, id string, patch json.RawMessage) {
	b.ops = append(b.ops, Op{Kind: OpUpdate, Collection: collection, ID: id, Data: patch})
}

func (b *Batch) Delete(collection Collection, id string) {
	b.ops = append(b.ops, Op{Kind: OpDelete, Collection: collection, ID: id})
}

// DeleteAll removes every document of the collection in the namespace.
func (b *Batch) DeleteAll(collection Collection) {
	b.ops = append(b.ops, Op{Kind: OpDeleteAll, Collection: collection})
}

func (b *Batch) Ops() []Op {
	out := make([]Op, len(b.ops))
	copy(out, b.ops)
	return out
}

func (b *Batch) Len() int {
	return len(b.ops)
}

// mergePatch applies a shallow JSON merge used by the backends that cannot
// merge natively.
func mergePatch(current, patch json.RawMessage) (json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if len(current) > 0 {
		if err := json.Unmarshal(current, &fields); err != nil {
			return nil, err
		}
	}
	changes := map[string]json.RawMessage{}
	if err := json.Unmarshal(patch, &changes); err != nil {
		return nil, err
	}
	for key, value := range changes {
		fields[key] = value
	}
	return json.Marshal(fields)
}
