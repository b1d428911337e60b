package lifecycle

import (
	"context"
	"fmt"
	"strings"

	inventorylog "itinventory/internal/inventory/inventory_log"
	"itinventory/internal/inventory/equipment"
	"itinventory/internal/session"
	"itinventory/pkg/metadata"
	"itinventory/pkg/models"
)

// CreatePurchaseRequest opens an ad hoc request for an item that may not be
// in the catalog yet.
func (s *Service) CreatePurchaseRequest(ctx context.Context, sess *session.Session, req PurchaseRequest) (Outcome, error) {
	if err := validateRequest(req); err != nil {
		return Outcome{}, err
	}
	return s.run(ctx, sess, inventorylog.CreatePurchaseRequest, func(store *equipment.Store) (result, error) {
		items := store.Snapshot().Equipment
		name := strings.TrimSpace(req.Name)
		if err := noPendingRequest(items, name); err != nil {
			return result{}, err
		}

		quantity := req.Quantity
		if quantity < 1 {
			quantity = 1
		}
		item := models.Equipment{
			Name:             name,
			Category:         metadata.NormalizeCategory(req.Category),
			Status:           metadata.StatusPendingPurchase,
			Location:         metadata.DefaultLocation(metadata.StatusPendingPurchase),
			Quantity:         quantity,
			PurchaseQuantity: quantity,
			Price:            req.Price,
			Note:             strings.TrimSpace(req.Note),
			CreatedAt:        s.now(),
		}
		if master, ok := equipment.FindMaster(items, item.MasterKey()); ok {
			item.MasterID = master.ID
		}

		created, err := store.Insert(ctx, item)
		if err != nil {
			return result{}, err
		}
		return result{
			message: "purchase_requested",
			items:   []models.Equipment{created},
			entry: inventorylog.Entry{
				ItemName:    created.Name,
				Quantity:    inventorylog.Quantity(created.PurchaseQuantity),
				Details:     created.Note,
				EquipmentID: created.ID,
			},
		}, nil
	})
}

func (s *Service) DeletePurchaseRequest(ctx context.Context, sess *session.Session, id string) (Outcome, error) {
	return s.run(ctx, sess, inventorylog.DeletePurchaseRequest, func(store *equipment.Store) (result, error) {
		current, err := find(store, id)
		if err != nil {
			return result{}, err
		}
		if err := transition(current, metadata.StatusPendingPurchase, metadata.StatusRemoved); err != nil {
			return result{}, err
		}
		if err := store.Delete(ctx, current.ID); err != nil {
			return result{}, err
		}
		return result{
			message: "purchase_request_deleted",
			items:   []models.Equipment{current},
			entry: inventorylog.Entry{
				ItemName:    current.Name,
				Quantity:    inventorylog.Quantity(current.PurchaseQuantity),
				EquipmentID: current.ID,
			},
		}, nil
	})
}

// StartPurchasing moves pending requests to purchasing in one batch. The
// figures are coerced: unusable quantities fall back to the current value
// and then to 1, unusable prices to the current value and then to 0.
func (s *Service) StartPurchasing(ctx context.Context, sess *session.Session, req StartPurchasingRequest) (Outcome, error) {
	if err := validateRequest(req); err != nil {
		return Outcome{}, err
	}
	return s.run(ctx, sess, inventorylog.StartPurchasing, func(store *equipment.Store) (result, error) {
		w := equipment.NewWrite()
		seen := map[string]bool{}
		var (
			updated []models.Equipment
			names   []string
			total   int
		)
		for _, line := range req.Items {
			if seen[line.ID] {
				return result{}, validationError("duplicate id in request", map[string]any{"id": line.ID})
			}
			seen[line.ID] = true

			current, err := find(store, line.ID)
			if err != nil {
				return result{}, err
			}
			if err := transition(current, metadata.StatusPendingPurchase, metadata.StatusPurchasing); err != nil {
				return result{}, err
			}

			quantity := line.Quantity.IntOr(positiveOr(current.PurchaseQuantity, 1))
			price := line.Price.NonNegativeOr(nonNegativeOr(current.Price, 0))
			updated = append(updated, w.Update(current, models.EquipmentPatch{
				models.FieldStatus:           metadata.StatusPurchasing,
				models.FieldLocation:         metadata.DefaultLocation(metadata.StatusPurchasing),
				models.FieldQuantity:         quantity,
				models.FieldPurchaseQuantity: quantity,
				models.FieldPrice:            price,
			}))
			names = append(names, current.Name)
			total += quantity
		}

		if err := store.Commit(ctx, w); err != nil {
			return result{}, err
		}
		return result{
			message: "purchasing_started",
			items:   updated,
			entry: inventorylog.Entry{
				ItemName: strings.Join(names, ", "),
				Quantity: inventorylog.Quantity(total),
				Details:  fmt.Sprintf("%d request(s)", len(updated)),
			},
		}, nil
	})
}

// ConfirmPurchased marks purchasing rows as delivered in one batch.
func (s *Service) ConfirmPurchased(ctx context.Context, sess *session.Session, req IDsRequest) (Outcome, error) {
	if err := validateRequest(req); err != nil {
		return Outcome{}, err
	}
	return s.run(ctx, sess, inventorylog.ConfirmPurchased, func(store *equipment.Store) (result, error) {
		w := equipment.NewWrite()
		seen := map[string]bool{}
		var (
			updated []models.Equipment
			names   []string
			total   int
		)
		for _, id := range req.IDs {
			if seen[id] {
				return result{}, validationError("duplicate id in request", map[string]any{"id": id})
			}
			seen[id] = true

			current, err := find(store, id)
			if err != nil {
				return result{}, err
			}
			if err := transition(current, metadata.StatusPurchasing, metadata.StatusPurchased); err != nil {
				return result{}, err
			}
			updated = append(updated, w.Update(current, models.EquipmentPatch{
				models.FieldStatus:   metadata.StatusPurchased,
				models.FieldLocation: metadata.DefaultLocation(metadata.StatusPurchased),
			}))
			names = append(names, current.Name)
			total += current.PurchaseQuantity
		}

		if err := store.Commit(ctx, w); err != nil {
			return result{}, err
		}
		return result{
			message: "purchase_confirmed",
			items:   updated,
			entry: inventorylog.Entry{
				ItemName: strings.Join(names, ", "),
				Quantity: inventorylog.Quantity(total),
				Details:  fmt.Sprintf("%d order(s)", len(updated)),
			},
		}, nil
	})
}

// CancelPurchase drops an order that is being purchased. The note explains
// why and is kept only in the transaction.
func (s *Service) CancelPurchase(ctx context.Context, sess *session.Session, id string, req NoteRequest) (Outcome, error) {
	if err := validateRequest(req); err != nil {
		return Outcome{}, err
	}
	return s.run(ctx, sess, inventorylog.CancelPurchase, func(store *equipment.Store) (result, error) {
		current, err := find(store, id)
		if err != nil {
			return result{}, err
		}
		if err := transition(current, metadata.StatusPurchasing, metadata.StatusRemoved); err != nil {
			return result{}, err
		}
		if err := store.Delete(ctx, current.ID); err != nil {
			return result{}, err
		}
		return result{
			message: "purchase_cancelled",
			items:   []models.Equipment{current},
			entry: inventorylog.Entry{
				ItemName:    current.Name,
				Quantity:    inventorylog.Quantity(current.PurchaseQuantity),
				Details:     strings.TrimSpace(req.Note),
				EquipmentID: current.ID,
			},
		}, nil
	})
}

// ImportPurchasedItem explodes one purchased row into one available row per
// serial. Any serial collision aborts the whole import.
func (s *Service) ImportPurchasedItem(ctx context.Context, sess *session.Session, id string, req ImportRequest) (Outcome, error) {
	if err := validateRequest(req); err != nil {
		return Outcome{}, err
	}
	return s.run(ctx, sess, inventorylog.ImportPurchasedItem, func(store *equipment.Store) (result, error) {
		source, err := find(store, id)
		if err != nil {
			return result{}, err
		}
		if err := transition(source, metadata.StatusPurchased, metadata.StatusAvailable); err != nil {
			return result{}, err
		}

		expected := positiveOr(source.PurchaseQuantity, positiveOr(source.Quantity, 1))
		serials := trimSerials(req.Serials)
		if len(serials) != expected {
			return result{}, validationError("serial count does not match purchased quantity",
				map[string]any{"expected": expected, "received": len(serials)})
		}
		items := store.Snapshot().Equipment
		if err := checkSerials(items, serials, ""); err != nil {
			return result{}, err
		}

		masterID := source.MasterID
		if master, ok := equipment.FindMaster(items, source.MasterKey()); ok && masterID == "" {
			masterID = master.ID
		}

		now := s.now()
		w := equipment.NewWrite()
		w.Delete(source.ID)
		created := make([]models.Equipment, 0, len(serials))
		for _, serial := range serials {
			created = append(created, w.Insert(models.Equipment{
				MasterID:         masterID,
				Name:             source.Name,
				Category:         source.Category,
				Status:           metadata.StatusAvailable,
				Location:         metadata.DefaultLocation(metadata.StatusAvailable),
				Condition:        models.PlainCondition(models.ConditionKeyNew),
				Quantity:         1,
				PurchaseQuantity: 1,
				Price:            source.Price,
				SerialNumber:     serial,
				ImportDate:       timePtr(now),
				Note:             source.Note,
				CreatedAt:        now,
			}))
		}

		if err := store.Commit(ctx, w); err != nil {
			return result{}, err
		}
		return result{
			message: "items_imported",
			items:   created,
			entry: inventorylog.Entry{
				ItemName:    source.Name,
				Quantity:    inventorylog.Quantity(len(created)),
				Details:     "Serials: " + strings.Join(serials, ", "),
				EquipmentID: source.ID,
			},
		}, nil
	})
}

func positiveOr(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

func nonNegativeOr(value, fallback float64) float64 {
	if value >= 0 {
		return value
	}
	return fallback
}
