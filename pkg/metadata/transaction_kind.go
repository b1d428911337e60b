package metadata

type TransactionType string

const (
	TypeMasterList  TransactionType = "master-list"
	TypeProcurement TransactionType = "procurement"
	TypeImport      TransactionType = "import"
	TypeExport      TransactionType = "export"
	TypeInventory   TransactionType = "inventory"
)

type Reason string

const (
	ReasonAdd            Reason = "add"
	ReasonRequest        Reason = "request"
	ReasonPurchasing     Reason = "purchasing"
	ReasonPurchased      Reason = "purchased"
	ReasonDeleted        Reason = "deleted"
	ReasonCancelled      Reason = "cancelled"
	ReasonUpdate         Reason = "update"
	ReasonDelete         Reason = "delete"
	ReasonAllocate       Reason = "allocate"
	ReasonRecall         Reason = "recall"
	ReasonDamaged        Reason = "damaged"
	ReasonUpdateNote     Reason = "update-note"
	ReasonRepairComplete Reason = "repair-complete"
	ReasonUnrepairable   Reason = "unrepairable"
	ReasonLiquidated     Reason = "liquidated"
	ReasonLegacyAdd      Reason = "legacy-add"
)

const SystemActor = "System"

func (t TransactionType) IsValid() bool {
	switch t {
	case TypeMasterList, TypeProcurement, TypeImport, TypeExport, TypeInventory:
		return true
	default:
		return false
	}
}
