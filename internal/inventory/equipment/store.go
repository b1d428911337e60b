package equipment

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"sync/atomic"

	"itinventory/internal/docstore"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Snapshot is an immutable view of the cache. A new Snapshot is installed
// on every change; the slices of an installed Snapshot are never modified.
type Snapshot struct {
	Equipment    []models.Equipment
	Transactions []models.Transaction
}

// Store caches the equipment and transaction collections of one principal.
type Store struct {
	repo      *Repository
	namespace string
	logger    *zap.Logger

	mu    sync.Mutex
	state atomic.Pointer[Snapshot]
}

// NewStore binds a cache to namespace. An empty namespace means no principal
// is signed in and the store stays empty.
func NewStore(docs docstore.Store, namespace string, logger *zap.Logger) *Store {
	s := &Store{
		repo:      NewRepository(docs, namespace),
		namespace: namespace,
		logger:    logger.With(zap.String("namespace", namespace)),
	}
	s.state.Store(&Snapshot{})
	return s
}

func (s *Store) Namespace() string {
	return s.namespace
}

func (s *Store) Snapshot() *Snapshot {
	return s.state.Load()
}

func (s *Store) Equipment() []models.Equipment {
	return slices.Clone(s.state.Load().Equipment)
}

func (s *Store) Transactions() []models.Transaction {
	return slices.Clone(s.state.Load().Transactions)
}

func (s *Store) Find(id string) (models.Equipment, bool) {
	for _, item := range s.state.Load().Equipment {
		if item.ID == id {
			return item, true
		}
	}
	return models.Equipment{}, false
}

// Load fetches both collections. On failure the previous state is kept.
func (s *Store) Load(ctx context.Context) error {
	if s.namespace == "" {
		s.mu.Lock()
		s.state.Store(&Snapshot{})
		s.mu.Unlock()
		return nil
	}

	var (
		items   []models.Equipment
		entries []models.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.repo.FetchEquipment(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = s.repo.FetchTransactions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("Failed to load inventory, keeping cached state", zap.Error(err))
		return remoteError(err, "unable to load inventory")
	}

	s.mu.Lock()
	s.state.Store(&Snapshot{Equipment: items, Transactions: entries})
	s.mu.Unlock()

	s.logger.Debug("Inventory loaded", zap.Int("equipment", len(items)), zap.Int("transactions", len(entries)))
	return nil
}

// ReplaceAll swaps both collections for the supplied sets in one atomic
// batch. Every row gets a fresh id and masterId links are re-resolved by
// master key.
func (s *Store) ReplaceAll(ctx context.Context, equipment []models.Equipment, transactions []models.Transaction) error {
	batch := docstore.NewBatch()
	batch.DeleteAll(docstore.CollectionEquipment)
	batch.DeleteAll(docstore.CollectionTransactions)

	items := make([]models.Equipment, len(equipment))
	for i, item := range equipment {
		item.ID = uuid.NewString()
		items[i] = item
	}
	relinkMasters(items)
	for _, item := range items {
		data, err := item.Document()
		if err != nil {
			return custom_error.Wrap(custom_error.CodeValidation, err, "unable to encode equipment")
		}
		batch.InsertWithID(docstore.CollectionEquipment, item.ID, data)
	}

	entries := make([]models.Transaction, len(transactions))
	copy(entries, transactions)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	// oldest first so the stored order matches the log order
	for i := len(entries) - 1; i >= 0; i-- {
		entries[i].ID = ""
		data, err := entries[i].Document()
		if err != nil {
			return custom_error.Wrap(custom_error.CodeValidation, err, "unable to encode transaction")
		}
		entries[i].ID = batch.Insert(docstore.CollectionTransactions, data)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Commit(ctx, batch); err != nil {
		s.logger.Error("Failed to replace inventory", zap.Error(err))
		return remoteError(err, "unable to replace inventory")
	}
	s.state.Store(&Snapshot{Equipment: items, Transactions: entries})
	return nil
}

// Clear deletes every document of the principal.
func (s *Store) Clear(ctx context.Context) error {
	batch := docstore.NewBatch()
	batch.DeleteAll(docstore.CollectionEquipment)
	batch.DeleteAll(docstore.CollectionTransactions)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Commit(ctx, batch); err != nil {
		s.logger.Error("Failed to clear inventory", zap.Error(err))
		return remoteError(err, "unable to clear inventory")
	}
	s.state.Store(&Snapshot{})
	return nil
}

// Insert adds one row; the store assigns its id.
func (s *Store) Insert(ctx context.Context, item models.Equipment) (models.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = ""
	id, err := s.repo.AddEquipment(ctx, item)
	if err != nil {
		return models.Equipment{}, remoteError(err, "unable to add equipment")
	}
	item.ID = id
	s.install([]models.Equipment{item}, nil)
	return item, nil
}

// Update writes patch remotely and returns the patched copy of current.
func (s *Store) Update(ctx context.Context, current models.Equipment, patch models.EquipmentPatch) (models.Equipment, error) {
	updated, err := current.Apply(patch)
	if err != nil {
		return models.Equipment{}, custom_error.Wrap(custom_error.CodeValidation, err, "invalid equipment update")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.UpdateEquipment(ctx, current.ID, patch); err != nil {
		return models.Equipment{}, remoteError(err, "unable to update equipment")
	}
	s.install([]models.Equipment{updated}, nil)
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.DeleteEquipment(ctx, id); err != nil {
		return remoteError(err, "unable to delete equipment")
	}
	s.install(nil, []string{id})
	return nil
}

// Commit sends the staged write as one batch and applies it locally once
// the batch succeeded.
func (s *Store) Commit(ctx context.Context, w *Write) error {
	if w.err != nil {
		return custom_error.Wrap(custom_error.CodeValidation, w.err, "invalid equipment change")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Commit(ctx, w.batch); err != nil {
		return remoteError(err, "unable to save equipment changes")
	}
	s.install(w.puts, w.removes)
	return nil
}

// AppendTransaction stores an audit entry and puts it at the head of the
// cached log.
func (s *Store) AppendTransaction(ctx context.Context, entry models.Transaction) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = ""
	id, err := s.repo.AddTransaction(ctx, entry)
	if err != nil {
		return models.Transaction{}, remoteError(err, "unable to write transaction")
	}
	entry.ID = id

	current := s.state.Load()
	entries := make([]models.Transaction, 0, len(current.Transactions)+1)
	entries = append(entries, entry)
	entries = append(entries, current.Transactions...)
	s.state.Store(&Snapshot{Equipment: current.Equipment, Transactions: entries})
	return entry, nil
}

// install builds the next snapshot. Callers hold s.mu.
func (s *Store) install(puts []models.Equipment, removes []string) {
	current := s.state.Load()

	removed := make(map[string]bool, len(removes))
	for _, id := range removes {
		removed[id] = true
	}
	replacements := make(map[string]models.Equipment, len(puts))
	for _, item := range puts {
		replacements[item.ID] = item
	}

	next := make([]models.Equipment, 0, len(current.Equipment)+len(puts))
	for _, item := range current.Equipment {
		if removed[item.ID] {
			continue
		}
		if replacement, ok := replacements[item.ID]; ok {
			next = append(next, replacement)
			delete(replacements, item.ID)
			continue
		}
		next = append(next, item)
	}
	for _, item := range puts {
		if _, pending := replacements[item.ID]; pending && !removed[item.ID] {
			next = append(next, item)
			delete(replacements, item.ID)
		}
	}

	s.state.Store(&Snapshot{Equipment: next, Transactions: current.Transactions})
}

func remoteError(err error, message string) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return custom_error.Wrap(custom_error.CodeNotFound, err, message)
	}
	if typed := custom_error.As(err); typed != nil {
		return err
	}
	if custom_error.CodeOf(err) == custom_error.CodeConflict {
		return custom_error.Conflict(err, message)
	}
	return custom_error.Wrap(custom_error.CodeRemote, err, message)
}
