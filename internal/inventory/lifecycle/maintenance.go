package lifecycle

import (
	"context"
	"strings"

	inventorylog "itinventory/internal/inventory/inventory_log"
	"itinventory/internal/inventory/equipment"
	"itinventory/internal/session"
	"itinventory/pkg/metadata"
	"itinventory/pkg/models"
)

// Recall takes a unit back from its recipient. The reason decides whether it
// returns to stock or goes to maintenance.
func (s *Service) Recall(ctx context.Context, sess *session.Session, id string, req RecallRequest) (Outcome, error) {
	if err := validateRequest(req); err != nil {
		return Outcome{}, err
	}
	reason, ok := metadata.LookupRecallReason(req.Reason)
	if !ok {
		return Outcome{}, validationError("recall reason is required", map[string]any{"reason": "is required"})
	}

	return s.run(ctx, sess, inventorylog.Recall, func(store *equipment.Store) (result, error) {
		current, err := find(store, id)
		if err != nil {
			return result{}, err
		}

		var (
			patch   models.EquipmentPatch
			message string
		)
		note := strings.TrimSpace(req.Note)
		if reason.RoutesToMaintenance {
			if err := transition(current, metadata.StatusInUse, metadata.StatusMaintenance); err != nil {
				return result{}, err
			}
			if note == "" {
				note = reason.Key
			}
			patch = s.maintenancePatch(note)
			message = "item_sent_to_maintenance"
		} else {
			if err := transition(current, metadata.StatusInUse, metadata.StatusAvailable); err != nil {
				return result{}, err
			}
			patch = models.EquipmentPatch{
				models.FieldStatus:            metadata.StatusAvailable,
				models.FieldLocation:          metadata.DefaultLocation(metadata.StatusAvailable),
				models.FieldAllocationDetails: nil,
				models.FieldCondition:         models.PlainCondition(reason.Key),
				models.FieldIsRecalled:        true,
			}
			message = "item_recalled"
		}

		updated, err := store.Update(ctx, current, patch)
		if err != nil {
			return result{}, err
		}
		return result{
			message: message,
			items:   []models.Equipment{updated},
			entry: inventorylog.Entry{
				ItemName:    updated.Name,
				Quantity:    inventorylog.Quantity(1),
				Details:     inventorylog.Details(recipientDetails(current), "Reason: "+reason.Key, strings.TrimSpace(req.Note), serialDetails(updated)),
				EquipmentID: updated.ID,
			},
		}, nil
	})
}

// MarkDamaged sends an allocated unit straight to maintenance.
func (s *Service) MarkDamaged(ctx context.Context, sess *session.Session, id string, req NoteRequest) (Outcome, error) {
	if err := validateRequest(req); err != nil {
		return Outcome{}, err
	}
	return s.run(ctx, sess, inventorylog.MarkDamaged, func(store *equipment.Store) (result, error) {
		current, err := find(store, id)
		if err != nil {
			return result{}, err
		}
		if err := transition(current, metadata.StatusInUse, metadata.StatusMaintenance); err != nil {
			return result{}, err
		}

		note := strings.TrimSpace(req.Note)
		updated, err := store.Update(ctx, current, s.maintenancePatch(note))
		if err != nil {
			return result{}, err
		}
		return result{
			message: "item_sent_to_maintenance",
			items:   []models.Equipment{updated},
			entry: inventorylog.Entry{
				ItemName:    updated.Name,
				Quantity:    inventorylog.Quantity(1),
				Details:     inventorylog.Details(recipientDetails(current), note, serialDetails(updated)),
				EquipmentID: updated.ID,
			},
		}, nil
	})
}

func (s *Service) UpdateMaintenanceNote(ctx context.Context, sess *session.Session, id string, req NoteRequest) (Outcome, error) {
	if err := validateRequest(req); err != nil {
		return Outcome{}, err
	}
	return s.run(ctx, sess, inventorylog.UpdateMaintenanceNote, func(store *equipment.Store) (result, error) {
		current, err := find(store, id)
		if err != nil {
			return result{}, err
		}
		if err := transition(current, metadata.StatusMaintenance, metadata.StatusMaintenance); err != nil {
			return result{}, err
		}

		note := strings.TrimSpace(req.Note)
		updated, err := store.Update(ctx, current, models.EquipmentPatch{
			models.FieldCondition: models.PlainCondition(note),
		})
		if err != nil {
			return result{}, err
		}
		return result{
			message: "maintenance_note_updated",
			items:   []models.Equipment{updated},
			entry:   inventorylog.Entry{ItemName: updated.Name, Details: note, EquipmentID: updated.ID},
		}, nil
	})
}

// CompleteRepair returns a unit to stock with a "repaired" condition. The
// note defaults to the maintenance note and is flagged as a key when the
// catalog translates it.
func (s *Service) CompleteRepair(ctx context.Context, sess *session.Session, id string, req OptionalNoteRequest) (Outcome, error) {
	if err := validateRequest(req); err != nil {
		return Outcome{}, err
	}
	return s.run(ctx, sess, inventorylog.CompleteRepair, func(store *equipment.Store) (result, error) {
		current, err := find(store, id)
		if err != nil {
			return result{}, err
		}
		if err := transition(current, metadata.StatusMaintenance, metadata.StatusAvailable); err != nil {
			return result{}, err
		}

		note := strings.TrimSpace(req.Note)
		if note == "" && !current.Condition.IsTemplated() {
			note = current.Condition.Text()
		}
		isKey := s.keys != nil && s.keys.HasKey(note)

		updated, err := store.Update(ctx, current, models.EquipmentPatch{
			models.FieldStatus:    metadata.StatusAvailable,
			models.FieldLocation:  metadata.DefaultLocation(metadata.StatusAvailable),
			models.FieldCondition: models.RepairedCondition(note, isKey),
		})
		if err != nil {
			return result{}, err
		}
		return result{
			message: "repair_completed",
			items:   []models.Equipment{updated},
			entry: inventorylog.Entry{
				ItemName:    updated.Name,
				Quantity:    inventorylog.Quantity(1),
				Details:     inventorylog.Details(note, serialDetails(updated)),
				EquipmentID: updated.ID,
			},
		}, nil
	})
}

// MarkUnrepairable parks a unit for disposal. Liquidate deletes it later.
func (s *Service) MarkUnrepairable(ctx context.Context, sess *session.Session, id string, req OptionalNoteRequest) (Outcome, error) {
	if err := validateRequest(req); err != nil {
		return Outcome{}, err
	}
	return s.run(ctx, sess, inventorylog.MarkUnrepairable, func(store *equipment.Store) (result, error) {
		current, err := find(store, id)
		if err != nil {
			return result{}, err
		}
		if err := transition(current, metadata.StatusMaintenance, metadata.StatusLiquidation); err != nil {
			return result{}, err
		}

		updated, err := store.Update(ctx, current, models.EquipmentPatch{
			models.FieldStatus:   metadata.StatusLiquidation,
			models.FieldLocation: metadata.DefaultLocation(metadata.StatusLiquidation),
		})
		if err != nil {
			return result{}, err
		}
		return result{
			message: "item_unrepairable",
			items:   []models.Equipment{updated},
			entry: inventorylog.Entry{
				ItemName:    updated.Name,
				Quantity:    inventorylog.Quantity(1),
				Details:     inventorylog.Details(strings.TrimSpace(req.Note), serialDetails(updated)),
				EquipmentID: updated.ID,
			},
		}, nil
	})
}

// Liquidate disposes of a unit and deletes its row.
func (s *Service) Liquidate(ctx context.Context, sess *session.Session, id string, req OptionalNoteRequest) (Outcome, error) {
	if err := validateRequest(req); err != nil {
		return Outcome{}, err
	}
	return s.run(ctx, sess, inventorylog.Liquidate, func(store *equipment.Store) (result, error) {
		current, err := find(store, id)
		if err != nil {
			return result{}, err
		}
		if err := transition(current, metadata.StatusLiquidation, metadata.StatusRemoved); err != nil {
			return result{}, err
		}
		if err := store.Delete(ctx, current.ID); err != nil {
			return result{}, err
		}
		return result{
			message: "item_liquidated",
			items:   []models.Equipment{current},
			entry: inventorylog.Entry{
				ItemName:    current.Name,
				Quantity:    inventorylog.Quantity(1),
				Details:     inventorylog.Details(strings.TrimSpace(req.Note), serialDetails(current)),
				EquipmentID: current.ID,
			},
		}, nil
	})
}

func (s *Service) maintenancePatch(note string) models.EquipmentPatch {
	return models.EquipmentPatch{
		models.FieldStatus:            metadata.StatusMaintenance,
		models.FieldLocation:          metadata.DefaultLocation(metadata.StatusMaintenance),
		models.FieldAllocationDetails: nil,
		models.FieldMaintenanceDate:   s.now(),
		models.FieldCondition:         models.PlainCondition(note),
	}
}

func recipientDetails(item models.Equipment) string {
	if item.AllocationDetails == nil {
		return ""
	}
	return inventorylog.Details("From: "+item.AllocationDetails.RecipientName, item.AllocationDetails.Department)
}
