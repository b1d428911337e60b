package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryDoc struct {
	seq  uint64
	data json.RawMessage
}

// MemoryStore keeps documents in process memory. It backs tests and the
// "memory" store driver.
type MemoryStore struct {
	mu   sync.Mutex
	seq  uint64
	data map[string]map[Collection]map[string]memoryDoc

	// one-shot write failures armed by FailNextWrite
	failNext map[Collection]error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:     map[string]map[Collection]map[string]memoryDoc{},
		failNext: map[Collection]error{},
	}
}

// FailNextWrite arms a one-shot failure for the next write touching collection.
func (m *MemoryStore) FailNextWrite(collection Collection, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext[collection] = err
}

func (m *MemoryStore) List(_ context.Context, namespace string, collection Collection) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := m.collection(namespace, collection)
	out := make([]Document, 0, len(docs))
	seqs := make(map[string]uint64, len(docs))
	for id, doc := range docs {
		out = append(out, Document{ID: id, Data: cloneRaw(doc.data)})
		seqs[id] = doc.seq
	}
	sort.Slice(out, func(i, j int) bool { return seqs[out[i].ID] < seqs[out[j].ID] })
	return out, nil
}

func (m *MemoryStore) Add(_ context.Context, namespace string, collection Collection, data json.RawMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(collection); err != nil {
		return "", err
	}
	id := uuid.NewString()
	m.put(namespace, collection, id, data)
	return id, nil
}

func (m *MemoryStore) Update(_ context.Context, namespace string, collection Collection, id string, patch json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(collection); err != nil {
		return err
	}
	return applyUpdate(m.collection(namespace, collection), collection, id, patch)
}

func (m *MemoryStore) Delete(_ context.Context, namespace string, collection Collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(collection); err != nil {
		return err
	}
	docs := m.collection(namespace, collection)
	if _, ok := docs[id]; !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	delete(docs, id)
	return nil
}

// Commit stages the batch on a copy of the namespace and swaps it in only
// when every operation succeeded.
func (m *MemoryStore) Commit(_ context.Context, namespace string, batch *Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, op := range batch.ops {
		if err := m.takeFailure(op.Collection); err != nil {
			return err
		}
	}

	staged := map[Collection]map[string]memoryDoc{}
	for collection, docs := range m.data[namespace] {
		copied := make(map[string]memoryDoc, len(docs))
		for id, doc := range docs {
			copied[id] = doc
		}
		staged[collection] = copied
	}
	stage := func(c Collection) map[string]memoryDoc {
		if staged[c] == nil {
			staged[c] = map[string]memoryDoc{}
		}
		return staged[c]
	}

	seq := m.seq
	for _, op := range batch.ops {
		docs := stage(op.Collection)
		switch op.Kind {
		case OpInsert:
			if _, exists := docs[op.ID]; exists {
				return fmt.Errorf("docstore: duplicate id %s/%s", op.Collection, op.ID)
			}
			seq++
			docs[op.ID] = memoryDoc{seq: seq, data: cloneRaw(op.Data)}
		case OpUpdate:
			if err := applyUpdate(docs, op.Collection, op.ID, op.Data); err != nil {
				return err
			}
		case OpDelete:
			if _, ok := docs[op.ID]; !ok {
				return fmt.Errorf("%w: %s/%s", ErrNotFound, op.Collection, op.ID)
			}
			delete(docs, op.ID)
		case OpDeleteAll:
			staged[op.Collection] = map[string]memoryDoc{}
		}
	}

	m.seq = seq
	m.data[namespace] = staged
	return nil
}

func (m *MemoryStore) Close(context.Context) error {
	return nil
}

func (m *MemoryStore) collection(namespace string, collection Collection) map[string]memoryDoc {
	ns, ok := m.data[namespace]
	if !ok {
		ns = map[Collection]map[string]memoryDoc{}
		m.data[namespace] = ns
	}
	docs, ok := ns[collection]
	if !ok {
		docs = map[string]memoryDoc{}
		ns[collection] = docs
	}
	return docs
}

func (m *MemoryStore) put(namespace string, collection Collection, id string, data json.RawMessage) {
	m.seq++
	m.collection(namespace, collection)[id] = memoryDoc{seq: m.seq, data: cloneRaw(data)}
}

func applyUpdate(docs map[string]memoryDoc, collection Collection, id string, patch json.RawMessage) error {
	doc, ok := docs[id]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	merged, err := mergePatch(doc.data, patch)
	if err != nil {
		return fmt.Errorf("docstore: update %s/%s: %w", collection, id, err)
	}
	docs[id] = memoryDoc{seq: doc.seq, data: merged}
	return nil
}

func (m *MemoryStore) takeFailure(collection Collection) error {
	if err, ok := m.failNext[collection]; ok {
		delete(m.failNext, collection)
		return err
	}
	return nil
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}
