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

// AddLegacyItem registers stock that predates the system. The catalog entry
// is created in the same batch when it does not exist yet.
func (s *Service) AddLegacyItem(ctx context.Context, sess *session.Session, req LegacyItemRequest) (Outcome, error) {
	if err := validateRequest(req); err != nil {
		return Outcome{}, err
	}
	serials := ParseSerialList(req.Serials)
	if len(serials) != req.Quantity {
		return Outcome{}, validationError("serial count does not match quantity",
			map[string]any{"expected": req.Quantity, "received": len(serials)})
	}

	return s.run(ctx, sess, inventorylog.AddLegacyItem, func(store *equipment.Store) (result, error) {
		items := store.Snapshot().Equipment
		if err := checkSerials(items, serials, ""); err != nil {
			return result{}, err
		}

		name := strings.TrimSpace(req.Name)
		category := metadata.NormalizeCategory(req.Category)
		now := s.now()
		w := equipment.NewWrite()
		var created []models.Equipment

		master, ok := equipment.FindMaster(items, metadata.MasterKey(name, category))
		if !ok {
			master = w.Insert(models.Equipment{
				Name:      name,
				Category:  category,
				Status:    metadata.StatusMaster,
				Price:     req.Price,
				CreatedAt: now,
			})
			created = append(created, master)
		}

		for _, serial := range serials {
			created = append(created, w.Insert(models.Equipment{
				MasterID:         master.ID,
				Name:             name,
				Category:         category,
				Status:           metadata.StatusAvailable,
				Location:         metadata.DefaultLocation(metadata.StatusAvailable),
				Condition:        models.PlainCondition(models.ConditionKeyLegacyImport),
				Quantity:         1,
				PurchaseQuantity: 1,
				Price:            req.Price,
				SerialNumber:     serial,
				ImportDate:       timePtr(now),
				Note:             strings.TrimSpace(req.Note),
				CreatedAt:        now,
			}))
		}

		if err := store.Commit(ctx, w); err != nil {
			return result{}, err
		}
		return result{
			message: "legacy_items_added",
			items:   created,
			entry: inventorylog.Entry{
				ItemName: name,
				Quantity: inventorylog.Quantity(len(serials)),
				Details:  "Serials: " + strings.Join(serials, ", "),
			},
		}, nil
	})
}

// UpdateInventoryItem edits the descriptive fields of an available unit.
func (s *Service) UpdateInventoryItem(ctx context.Context, sess *session.Session, id string, req InventoryUpdateRequest) (Outcome, error) {
	if err := validateRequest(req); err != nil {
		return Outcome{}, err
	}
	return s.run(ctx, sess, inventorylog.UpdateInventoryItem, func(store *equipment.Store) (result, error) {
		current, err := find(store, id)
		if err != nil {
			return result{}, err
		}
		if err := transition(current, metadata.StatusAvailable, metadata.StatusAvailable); err != nil {
			return result{}, err
		}

		items := store.Snapshot().Equipment
		patch := models.EquipmentPatch{}
		var changes []string
		if req.Name != nil && strings.TrimSpace(*req.Name) != current.Name {
			patch[models.FieldName] = strings.TrimSpace(*req.Name)
			changes = append(changes, "name")
		}
		if req.Category != nil && metadata.NormalizeCategory(*req.Category) != current.Category {
			patch[models.FieldCategory] = metadata.NormalizeCategory(*req.Category)
			changes = append(changes, "category")
		}
		if req.Price != nil && *req.Price != current.Price {
			patch[models.FieldPrice] = *req.Price
			changes = append(changes, "price")
		}
		if req.SerialNumber != nil && strings.TrimSpace(*req.SerialNumber) != current.SerialNumber {
			serial := strings.TrimSpace(*req.SerialNumber)
			if serial == "" {
				return result{}, validationError("serial number cannot be blank", map[string]any{"serialNumber": *req.SerialNumber})
			}
			if err := checkSerials(items, []string{serial}, current.ID); err != nil {
				return result{}, err
			}
			patch[models.FieldSerialNumber] = serial
			changes = append(changes, "serialNumber")
		}
		if req.Location != nil && strings.TrimSpace(*req.Location) != current.Location {
			patch[models.FieldLocation] = strings.TrimSpace(*req.Location)
			changes = append(changes, "location")
		}
		if req.Note != nil && strings.TrimSpace(*req.Note) != current.Note {
			patch[models.FieldNote] = strings.TrimSpace(*req.Note)
			changes = append(changes, "note")
		}
		if len(patch) == 0 {
			return result{}, validationError("nothing to update", map[string]any{"id": current.ID})
		}

		// a renamed unit follows the catalog entry of its new key
		_, nameChanged := patch[models.FieldName]
		_, categoryChanged := patch[models.FieldCategory]
		if nameChanged || categoryChanged {
			name, _ := patch[models.FieldName].(string)
			if name == "" {
				name = current.Name
			}
			category, _ := patch[models.FieldCategory].(string)
			if category == "" {
				category = current.Category
			}
			masterID := ""
			if master, ok := equipment.FindMaster(items, metadata.MasterKey(name, category)); ok {
				masterID = master.ID
			}
			patch[models.FieldMasterID] = masterID
		}

		updated, err := store.Update(ctx, current, patch)
		if err != nil {
			return result{}, err
		}
		return result{
			message: "inventory_item_updated",
			items:   []models.Equipment{updated},
			entry: inventorylog.Entry{
				ItemName:    updated.Name,
				Details:     "Changed: " + strings.Join(changes, ", "),
				EquipmentID: updated.ID,
			},
		}, nil
	})
}

func (s *Service) DeleteInventoryItem(ctx context.Context, sess *session.Session, id string) (Outcome, error) {
	return s.run(ctx, sess, inventorylog.DeleteInventoryItem, func(store *equipment.Store) (result, error) {
		current, err := find(store, id)
		if err != nil {
			return result{}, err
		}
		if err := transition(current, metadata.StatusAvailable, metadata.StatusRemoved); err != nil {
			return result{}, err
		}
		if err := store.Delete(ctx, current.ID); err != nil {
			return result{}, err
		}
		return result{
			message: "inventory_item_deleted",
			items:   []models.Equipment{current},
			entry: inventorylog.Entry{
				ItemName:    current.Name,
				Quantity:    inventorylog.Quantity(1),
				Details:     serialDetails(current),
				EquipmentID: current.ID,
			},
		}, nil
	})
}

// Allocate hands an available unit to a recipient. When the payload names a
// serial, the available unit of the same catalog entry carrying that serial
// is the one allocated.
func (s *Service) Allocate(ctx context.Context, sess *session.Session, id string, req AllocateRequest) (Outcome, error) {
	if err := validateRequest(req); err != nil {
		return Outcome{}, err
	}
	return s.run(ctx, sess, inventorylog.Allocate, func(store *equipment.Store) (result, error) {
		target, err := find(store, id)
		if err != nil {
			return result{}, err
		}
		if err := transition(target, metadata.StatusAvailable, metadata.StatusInUse); err != nil {
			return result{}, err
		}
		target, stamp, err := pickUnit(store.Snapshot().Equipment, target, req.SerialNumber)
		if err != nil {
			return result{}, err
		}

		handover := strings.TrimSpace(req.HandoverDate)
		if handover == "" {
			handover = s.today()
		}
		details := &models.AllocationDetails{
			RecipientName: strings.TrimSpace(req.RecipientName),
			EmployeeID:    strings.TrimSpace(req.EmployeeID),
			Position:      strings.TrimSpace(req.Position),
			Department:    strings.TrimSpace(req.Department),
			HandoverDate:  handover,
			Note:          strings.TrimSpace(req.Note),
		}

		patch := models.EquipmentPatch{
			models.FieldStatus:            metadata.StatusInUse,
			models.FieldAllocationDetails: details,
			models.FieldLocation:          details.Department,
		}
		if stamp != "" {
			patch[models.FieldSerialNumber] = stamp
		}
		updated, err := store.Update(ctx, target, patch)
		if err != nil {
			return result{}, err
		}
		return result{
			message: "item_allocated",
			items:   []models.Equipment{updated},
			entry: inventorylog.Entry{
				ItemName:    updated.Name,
				Quantity:    inventorylog.Quantity(1),
				Details:     inventorylog.Details("To: "+details.RecipientName, details.Department, serialDetails(updated)),
				EquipmentID: updated.ID,
			},
		}, nil
	})
}

// pickUnit resolves which physical unit an allocation applies to. The second
// return value is a serial to stamp on a unit that has none.
func pickUnit(items []models.Equipment, target models.Equipment, serial string) (models.Equipment, string, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" || metadata.SerialKey(serial) == metadata.SerialKey(target.SerialNumber) {
		return target, "", nil
	}

	key := target.MasterKey()
	for _, item := range items {
		if item.Status == metadata.StatusAvailable &&
			item.MasterKey() == key &&
			metadata.SerialKey(item.SerialNumber) == metadata.SerialKey(serial) {
			return item, "", nil
		}
	}
	if target.SerialNumber == "" {
		if err := checkSerials(items, []string{serial}, target.ID); err != nil {
			return models.Equipment{}, "", err
		}
		return target, serial, nil
	}
	return models.Equipment{}, "", custom_error.Newf(custom_error.CodeValidation,
		"no available %q unit carries serial %s", target.Name, serial).
		WithDetails(map[string]any{"serialNumber": serial})
}

func serialDetails(item models.Equipment) string {
	if item.SerialNumber == "" {
		return ""
	}
	return "S/N: " + item.SerialNumber
}
