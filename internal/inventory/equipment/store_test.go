package equipment

import (
	"context"
	"errors"
	"testing"
	"time"

	"itinventory/internal/docstore"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/metadata"
	"itinventory/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func laptop(serial string) models.Equipment {
	return models.Equipment{
		Name:         "Dell 3420",
		Category:     metadata.CategoryLaptop,
		Status:       metadata.StatusAvailable,
		Location:     metadata.LocationInStock,
		Quantity:     1,
		SerialNumber: serial,
	}
}

func TestStoreWithoutNamespaceStaysEmpty(t *testing.T) {
	store := NewStore(docstore.NewMemoryStore(), "", zap.NewNop())
	require.NoError(t, store.Load(context.Background()))
	assert.Empty(t, store.Equipment())
	assert.Empty(t, store.Transactions())
}

func TestStoreInsertUpdateDelete(t *testing.T) {
	ctx := context.Background()
	docs := docstore.NewMemoryStore()
	store := NewStore(docs, "u1", zap.NewNop())

	created, err := store.Insert(ctx, laptop("SN-1"))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	before := store.Snapshot()
	updated, err := store.Update(ctx, created, models.EquipmentPatch{models.FieldLocation: "Finance"})
	require.NoError(t, err)
	assert.Equal(t, "Finance", updated.Location)
	// installed snapshots are never edited in place
	assert.Equal(t, metadata.LocationInStock, before.Equipment[0].Location)

	reloaded := NewStore(docs, "u1", zap.NewNop())
	require.NoError(t, reloaded.Load(ctx))
	require.Len(t, reloaded.Equipment(), 1)
	assert.Equal(t, "Finance", reloaded.Equipment()[0].Location)

	require.NoError(t, store.Delete(ctx, created.ID))
	assert.Empty(t, store.Equipment())

	err = store.Delete(ctx, created.ID)
	assert.Equal(t, custom_error.CodeNotFound, custom_error.CodeOf(err))
}

func TestStoreLoadFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	docs := &failingList{MemoryStore: docstore.NewMemoryStore()}
	store := NewStore(docs, "u1", zap.NewNop())
	_, err := store.Insert(ctx, laptop("SN-1"))
	require.NoError(t, err)

	docs.fail = true
	err = store.Load(ctx)
	require.Error(t, err)
	assert.Equal(t, custom_error.CodeRemote, custom_error.CodeOf(err))
	assert.Len(t, store.Equipment(), 1)
}

func TestStoreTransactionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	docs := docstore.NewMemoryStore()
	store := NewStore(docs, "u1", zap.NewNop())

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"first", "second", "third"} {
		_, err := store.AppendTransaction(ctx, models.Transaction{
			ItemName:  name,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Type:      metadata.TypeInventory,
			Reason:    metadata.ReasonUpdate,
		})
		require.NoError(t, err)
	}
	assert.Equal(t, "third", store.Transactions()[0].ItemName)

	reloaded := NewStore(docs, "u1", zap.NewNop())
	require.NoError(t, reloaded.Load(ctx))
	names := []string{}
	for _, entry := range reloaded.Transactions() {
		names = append(names, entry.ItemName)
	}
	assert.Equal(t, []string{"third", "second", "first"}, names)
}

func TestStoreReplaceAllRelinksMasters(t *testing.T) {
	ctx := context.Background()
	docs := docstore.NewMemoryStore()
	store := NewStore(docs, "u1", zap.NewNop())
	_, err := store.Insert(ctx, laptop("OLD-1"))
	require.NoError(t, err)

	master := models.Equipment{Name: "Dell 3420", Category: metadata.CategoryLaptop, Status: metadata.StatusMaster}
	unit := laptop("SN-1")
	unit.MasterID = "stale-id"
	orphan := laptop("SN-2")
	orphan.Name = "Unknown Model"

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []models.Transaction{
		{ID: "a", ItemName: "older", Timestamp: base},
		{ID: "b", ItemName: "newer", Timestamp: base.Add(time.Hour)},
	}
	require.NoError(t, store.ReplaceAll(ctx, []models.Equipment{master, unit, orphan}, entries))

	items := store.Equipment()
	require.Len(t, items, 3)
	assert.Equal(t, items[0].ID, items[1].MasterID)
	assert.Empty(t, items[2].MasterID)
	assert.Equal(t, "newer", store.Transactions()[0].ItemName)
	assert.NotEqual(t, "b", store.Transactions()[0].ID)

	reloaded := NewStore(docs, "u1", zap.NewNop())
	require.NoError(t, reloaded.Load(ctx))
	require.Len(t, reloaded.Equipment(), 3)
	assert.Equal(t, items[0].ID, reloaded.Equipment()[1].MasterID)
	assert.Equal(t, "newer", reloaded.Transactions()[0].ItemName)
}

func TestStoreReplaceAllFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	docs := docstore.NewMemoryStore()
	store := NewStore(docs, "u1", zap.NewNop())
	_, err := store.Insert(ctx, laptop("SN-1"))
	require.NoError(t, err)

	docs.FailNextWrite(docstore.CollectionEquipment, errors.New("unavailable"))
	err = store.ReplaceAll(ctx, nil, nil)
	require.Error(t, err)
	assert.Len(t, store.Equipment(), 1)

	require.NoError(t, store.Clear(ctx))
	assert.Empty(t, store.Equipment())
	reloaded := NewStore(docs, "u1", zap.NewNop())
	require.NoError(t, reloaded.Load(ctx))
	assert.Empty(t, reloaded.Equipment())
}

func TestWriteCommitIsAtomic(t *testing.T) {
	ctx := context.Background()
	docs := docstore.NewMemoryStore()
	store := NewStore(docs, "u1", zap.NewNop())
	existing, err := store.Insert(ctx, laptop("SN-1"))
	require.NoError(t, err)

	w := NewWrite()
	w.Delete(existing.ID)
	added := w.Insert(laptop("SN-2"))
	w.Delete("missing")
	require.Equal(t, 3, w.Len())

	err = store.Commit(ctx, w)
	require.Error(t, err)
	assert.Equal(t, custom_error.CodeNotFound, custom_error.CodeOf(err))
	_, found := store.Find(added.ID)
	assert.False(t, found)
	_, found = store.Find(existing.ID)
	assert.True(t, found)
}

func TestMasterHelpers(t *testing.T) {
	master := models.Equipment{ID: "m1", Name: "Dell 3420", Category: "laptop", Status: metadata.StatusMaster}
	pending := models.Equipment{ID: "p1", Name: "dell 3420", Category: "laptop", Status: metadata.StatusPendingPurchase}
	unit := models.Equipment{ID: "u1", Name: "Dell 3420 ", Category: "laptop", Status: metadata.StatusAvailable}

	items := []models.Equipment{master, pending}
	found, ok := FindMaster(items, master.MasterKey())
	require.True(t, ok)
	assert.Equal(t, "m1", found.ID)
	assert.False(t, MasterInUse(items, master))

	items = append(items, unit)
	assert.True(t, MasterInUse(items, master))
	assert.Equal(t, 1, CountMasters(items, master.MasterKey()))
}

type failingList struct {
	*docstore.MemoryStore
	fail bool
}

func (f *failingList) List(ctx context.Context, namespace string, collection docstore.Collection) ([]docstore.Document, error) {
	if f.fail {
		return nil, errors.New("connection reset")
	}
	return f.MemoryStore.List(ctx, namespace, collection)
}
