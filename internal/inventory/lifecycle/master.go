package lifecycle

import (
	"context"
	"strings"

	inventorylog "itinventory/internal/inventory/inventory_log"
	"itinventory/internal/inventory/equipment"
	"itinventory/internal/session"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/metadata"
	"itinventory/pkg/models"
)

// AddMasterItem creates a catalog entry. Name and category together must be
// unique among master rows; the name comparison ignores case.
func (s *Service) AddMasterItem(ctx context.Context, sess *session.Session, req MasterItemRequest) (Outcome, error) {
	if err := validateRequest(req); err != nil {
		return Outcome{}, err
	}
	return s.run(ctx, sess, inventorylog.AddMasterItem, func(store *equipment.Store) (result, error) {
		item := models.Equipment{
			Name:      strings.TrimSpace(req.Name),
			Category:  metadata.NormalizeCategory(req.Category),
			Status:    metadata.StatusMaster,
			Price:     req.Price,
			Note:      strings.TrimSpace(req.Note),
			CreatedAt: s.now(),
		}
		if existing, ok := equipment.FindMaster(store.Snapshot().Equipment, item.MasterKey()); ok {
			return result{}, duplicateMaster(existing)
		}

		created, err := store.Insert(ctx, item)
		if err != nil {
			return result{}, err
		}
		return result{
			message: "master_item_added",
			items:   []models.Equipment{created},
			entry:   inventorylog.Entry{ItemName: created.Name, Details: created.Category, EquipmentID: created.ID},
		}, nil
	})
}

// UpdateMasterItem renames or re-prices a catalog entry. The new key may not
// collide with another master row.
func (s *Service) UpdateMasterItem(ctx context.Context, sess *session.Session, id string, req MasterItemRequest) (Outcome, error) {
	if err := validateRequest(req); err != nil {
		return Outcome{}, err
	}
	return s.run(ctx, sess, inventorylog.UpdateMasterItem, func(store *equipment.Store) (result, error) {
		current, err := find(store, id)
		if err != nil {
			return result{}, err
		}
		if err := transition(current, metadata.StatusMaster, metadata.StatusMaster); err != nil {
			return result{}, err
		}

		name := strings.TrimSpace(req.Name)
		category := metadata.NormalizeCategory(req.Category)
		key := metadata.MasterKey(name, category)
		for _, other := range store.Snapshot().Equipment {
			if other.ID != current.ID && other.Status == metadata.StatusMaster && other.MasterKey() == key {
				return result{}, duplicateMaster(other)
			}
		}

		updated, err := store.Update(ctx, current, models.EquipmentPatch{
			models.FieldName:     name,
			models.FieldCategory: category,
			models.FieldPrice:    req.Price,
			models.FieldNote:     strings.TrimSpace(req.Note),
		})
		if err != nil {
			return result{}, err
		}
		return result{
			message: "master_item_updated",
			items:   []models.Equipment{updated},
			entry: inventorylog.Entry{
				ItemName:    updated.Name,
				Details:     renameDetails(current, updated),
				EquipmentID: updated.ID,
			},
		}, nil
	})
}

// DeleteMasterItem removes exactly the targeted catalog row. A master that
// derived rows still use may only go when another master shares its key.
func (s *Service) DeleteMasterItem(ctx context.Context, sess *session.Session, id string) (Outcome, error) {
	return s.run(ctx, sess, inventorylog.DeleteMasterItem, func(store *equipment.Store) (result, error) {
		current, err := find(store, id)
		if err != nil {
			return result{}, err
		}
		if err := transition(current, metadata.StatusMaster, metadata.StatusRemoved); err != nil {
			return result{}, err
		}

		items := store.Snapshot().Equipment
		if equipment.MasterInUse(items, current) && equipment.CountMasters(items, current.MasterKey()) < 2 {
			return result{}, custom_error.Newf(custom_error.CodeConflict,
				"master item %q is used by inventory rows", current.Name).
				WithDetails(map[string]any{"id": current.ID})
		}

		if err := store.Delete(ctx, current.ID); err != nil {
			return result{}, err
		}
		return result{
			message: "master_item_deleted",
			items:   []models.Equipment{current},
			entry:   inventorylog.Entry{ItemName: current.Name, Details: current.Category, EquipmentID: current.ID},
		}, nil
	})
}

// RequestFromMaster opens a purchase request for one unit of a catalog
// entry unless a request with the same name is already pending.
func (s *Service) RequestFromMaster(ctx context.Context, sess *session.Session, id string) (Outcome, error) {
	return s.run(ctx, sess, inventorylog.RequestFromMaster, func(store *equipment.Store) (result, error) {
		master, err := find(store, id)
		if err != nil {
			return result{}, err
		}
		if err := transition(master, metadata.StatusMaster, metadata.StatusPendingPurchase); err != nil {
			return result{}, err
		}
		if err := noPendingRequest(store.Snapshot().Equipment, master.Name); err != nil {
			return result{}, err
		}

		created, err := store.Insert(ctx, models.Equipment{
			MasterID:         master.ID,
			Name:             master.Name,
			Category:         master.Category,
			Status:           metadata.StatusPendingPurchase,
			Location:         metadata.DefaultLocation(metadata.StatusPendingPurchase),
			Quantity:         1,
			PurchaseQuantity: 1,
			Price:            0,
			CreatedAt:        s.now(),
		})
		if err != nil {
			return result{}, err
		}
		return result{
			message: "purchase_requested",
			items:   []models.Equipment{created},
			entry: inventorylog.Entry{
				ItemName:    created.Name,
				Quantity:    inventorylog.Quantity(created.PurchaseQuantity),
				EquipmentID: created.ID,
			},
		}, nil
	})
}

func noPendingRequest(items []models.Equipment, name string) error {
	for _, item := range items {
		if item.Status == metadata.StatusPendingPurchase && sameName(item.Name, name) {
			return custom_error.Newf(custom_error.CodeConflict, "a purchase request for %q is already pending", item.Name).
				WithDetails(map[string]any{"id": item.ID})
		}
	}
	return nil
}

func duplicateMaster(existing models.Equipment) error {
	return custom_error.Newf(custom_error.CodeConflict,
		"master item %q already exists in category %s", existing.Name, existing.Category).
		WithDetails(map[string]any{"id": existing.ID})
}

func renameDetails(before, after models.Equipment) string {
	if before.Name == after.Name && before.Category == after.Category {
		return ""
	}
	return before.Name + " (" + before.Category + ") -> " + after.Name + " (" + after.Category + ")"
}
