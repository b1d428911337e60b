package inventorylog

import (
	"context"
	"fmt"
	"strings"

	"itinventory/internal/session"
	"itinventory/pkg/metadata"
	"itinventory/pkg/models"
)

type Operation string

const (
	AddMasterItem         Operation = "add_master_item"
	UpdateMasterItem      Operation = "update_master_item"
	DeleteMasterItem      Operation = "delete_master_item"
	RequestFromMaster     Operation = "request_from_master"
	CreatePurchaseRequest Operation = "create_purchase_request"
	DeletePurchaseRequest Operation = "delete_purchase_request"
	StartPurchasing       Operation = "start_purchasing"
	ConfirmPurchased      Operation = "confirm_purchased"
	CancelPurchase        Operation = "cancel_purchase"
	ImportPurchasedItem   Operation = "import_purchased_item"
	AddLegacyItem         Operation = "add_legacy_item"
	UpdateInventoryItem   Operation = "update_inventory_item"
	DeleteInventoryItem   Operation = "delete_inventory_item"
	Allocate              Operation = "allocate"
	Recall                Operation = "recall"
	MarkDamaged           Operation = "mark_damaged"
	UpdateMaintenanceNote Operation = "update_maintenance_note"
	CompleteRepair        Operation = "complete_repair"
	MarkUnrepairable      Operation = "mark_unrepairable"
	Liquidate             Operation = "liquidate"
)

type kind struct {
	txType metadata.TransactionType
	reason metadata.Reason
}

var kinds = map[Operation]kind{
	AddMasterItem:         {metadata.TypeMasterList, metadata.ReasonAdd},
	UpdateMasterItem:      {metadata.TypeMasterList, metadata.ReasonUpdate},
	DeleteMasterItem:      {metadata.TypeMasterList, metadata.ReasonDelete},
	RequestFromMaster:     {metadata.TypeProcurement, metadata.ReasonRequest},
	CreatePurchaseRequest: {metadata.TypeProcurement, metadata.ReasonRequest},
	DeletePurchaseRequest: {metadata.TypeProcurement, metadata.ReasonDeleted},
	StartPurchasing:       {metadata.TypeProcurement, metadata.ReasonPurchasing},
	ConfirmPurchased:      {metadata.TypeProcurement, metadata.ReasonPurchased},
	CancelPurchase:        {metadata.TypeProcurement, metadata.ReasonCancelled},
	ImportPurchasedItem:   {metadata.TypeImport, metadata.ReasonAdd},
	AddLegacyItem:         {metadata.TypeImport, metadata.ReasonLegacyAdd},
	UpdateInventoryItem:   {metadata.TypeInventory, metadata.ReasonUpdate},
	DeleteInventoryItem:   {metadata.TypeInventory, metadata.ReasonDelete},
	Allocate:              {metadata.TypeExport, metadata.ReasonAllocate},
	Recall:                {metadata.TypeImport, metadata.ReasonRecall},
	MarkDamaged:           {metadata.TypeInventory, metadata.ReasonDamaged},
	UpdateMaintenanceNote: {metadata.TypeInventory, metadata.ReasonUpdateNote},
	CompleteRepair:        {metadata.TypeInventory, metadata.ReasonRepairComplete},
	MarkUnrepairable:      {metadata.TypeInventory, metadata.ReasonUnrepairable},
	Liquidate:             {metadata.TypeInventory, metadata.ReasonLiquidated},
}

// Logger is satisfied by *auditlog.Auditlog.
type Logger interface {
	Log(ctx context.Context, sess *session.Session, entry models.Transaction) (models.Transaction, error)
}

type InventoryLog struct {
	a Logger
}

func NewInventoryLog(a Logger) *InventoryLog {
	return &InventoryLog{a: a}
}

// Entry describes what an operation did to one item or group of items.
type Entry struct {
	ItemName    string
	Quantity    *int
	Details     string
	EquipmentID string
}

// Build turns an entry into the transaction recorded for op.
func Build(op Operation, e Entry) (models.Transaction, error) {
	k, ok := kinds[op]
	if !ok {
		return models.Transaction{}, fmt.Errorf("unknown operation %q", op)
	}
	return models.Transaction{
		Type:        k.txType,
		Reason:      k.reason,
		ItemName:    e.ItemName,
		Quantity:    e.Quantity,
		Details:     e.Details,
		EquipmentID: e.EquipmentID,
	}, nil
}

func (s *InventoryLog) Record(ctx context.Context, sess *session.Session, op Operation, e Entry) (models.Transaction, error) {
	entry, err := Build(op, e)
	if err != nil {
		return models.Transaction{}, err
	}
	return s.a.Log(ctx, sess, entry)
}

func Quantity(n int) *int {
	return &n
}

// Details joins the non-empty parts with "; ".
func Details(parts ...string) string {
	kept := parts[:0:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "; ")
}
