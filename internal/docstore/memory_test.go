package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, err := store.Add(ctx, "p1", CollectionEquipment, json.RawMessage(`{"name":"Dell 3420","status":"master"}`))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, store.Update(ctx, "p1", CollectionEquipment, id, json.RawMessage(`{"status":"available","note":null}`)))

	docs, err := store.List(ctx, "p1", CollectionEquipment)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.JSONEq(t, `{"name":"Dell 3420","status":"available","note":null}`, string(docs[0].Data))

	other, err := store.List(ctx, "p2", CollectionEquipment)
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, store.Delete(ctx, "p1", CollectionEquipment, id))
	err = store.Delete(ctx, "p1", CollectionEquipment, id)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStoreListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	batch := NewBatch()
	first := batch.Insert(CollectionTransactions, json.RawMessage(`{"n":1}`))
	second := batch.Insert(CollectionTransactions, json.RawMessage(`{"n":2}`))
	require.NoError(t, store.Commit(ctx, "p1", batch))

	docs, err := store.List(ctx, "p1", CollectionTransactions)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, first, docs[0].ID)
	assert.Equal(t, second, docs[1].ID)
}

func TestMemoryStoreCommitIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	id, err := store.Add(ctx, "p1", CollectionEquipment, json.RawMessage(`{"name":"A"}`))
	require.NoError(t, err)

	batch := NewBatch()
	batch.Delete(CollectionEquipment, id)
	batch.Insert(CollectionEquipment, json.RawMessage(`{"name":"B"}`))
	batch.Update(CollectionEquipment, "missing", json.RawMessage(`{"name":"C"}`))

	err = store.Commit(ctx, "p1", batch)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	docs, err := store.List(ctx, "p1", CollectionEquipment)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, id, docs[0].ID)
}

func TestMemoryStoreDeleteAll(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, err := store.Add(ctx, "p1", CollectionEquipment, json.RawMessage(`{"name":"A"}`))
	require.NoError(t, err)
	_, err = store.Add(ctx, "p2", CollectionEquipment, json.RawMessage(`{"name":"B"}`))
	require.NoError(t, err)

	batch := NewBatch()
	batch.DeleteAll(CollectionEquipment)
	batch.Insert(CollectionEquipment, json.RawMessage(`{"name":"C"}`))
	require.NoError(t, store.Commit(ctx, "p1", batch))

	docs, err := store.List(ctx, "p1", CollectionEquipment)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.JSONEq(t, `{"name":"C"}`, string(docs[0].Data))

	untouched, err := store.List(ctx, "p2", CollectionEquipment)
	require.NoError(t, err)
	assert.Len(t, untouched, 1)
}

func TestMemoryStoreFailNextWrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	boom := errors.New("network down")

	store.FailNextWrite(CollectionEquipment, boom)
	_, err := store.Add(ctx, "p1", CollectionEquipment, json.RawMessage(`{}`))
	assert.ErrorIs(t, err, boom)

	_, err = store.Add(ctx, "p1", CollectionEquipment, json.RawMessage(`{}`))
	assert.NoError(t, err)
}
