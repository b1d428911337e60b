package models

import (
	"encoding/json"
	"fmt"
	"time"

	"itinventory/pkg/metadata"
)

type AllocationDetails struct {
	RecipientName string `json:"recipientName"`
	EmployeeID    string `json:"employeeId,omitempty"`
	Position      string `json:"position,omitempty"`
	Department    string `json:"department"`
	HandoverDate  string `json:"handoverDate,omitempty"`
	Note          string `json:"note,omitempty"`
}

type Equipment struct {
	ID                string             `json:"id,omitempty"`
	MasterID          string             `json:"masterId,omitempty"`
	Name              string             `json:"name"`
	Category          string             `json:"category"`
	Status            metadata.Status    `json:"status"`
	Location          string             `json:"location"`
	Condition         Condition          `json:"condition"`
	Quantity          int                `json:"quantity"`
	PurchaseQuantity  int                `json:"purchaseQuantity"`
	Price             float64            `json:"price"`
	SerialNumber      string             `json:"serialNumber,omitempty"`
	ImportDate        *time.Time         `json:"importDate,omitempty"`
	MaintenanceDate   *time.Time         `json:"maintenanceDate,omitempty"`
	AllocationDetails *AllocationDetails `json:"allocationDetails"`
	IsRecalled        bool               `json:"isRecalled"`
	Note              string             `json:"note,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
}

func (e Equipment) MasterKey() string {
	return metadata.MasterKey(e.Name, e.Category)
}

// Validate checks that the field set matches the status.
func (e Equipment) Validate() error {
	if !e.Status.IsValid() {
		return fmt.Errorf("equipment %q: invalid status %q", e.Name, e.Status)
	}
	if e.Name == "" {
		return fmt.Errorf("equipment without name")
	}
	switch e.Status {
	case metadata.StatusInUse:
		if e.AllocationDetails == nil {
			return fmt.Errorf("equipment %q: in-use without allocation details", e.Name)
		}
	case metadata.StatusMaintenance:
		if e.Condition.IsEmpty() {
			return fmt.Errorf("equipment %q: maintenance without condition", e.Name)
		}
	}
	if e.Status != metadata.StatusInUse && e.AllocationDetails != nil {
		return fmt.Errorf("equipment %q: allocation details outside in-use", e.Name)
	}
	return nil
}

// Document is the stored form: every field except the id.
func (e Equipment) Document() (json.RawMessage, error) {
	e.ID = ""
	return json.Marshal(e)
}

func EquipmentFromDocument(id string, data json.RawMessage) (Equipment, error) {
	var e Equipment
	if err := json.Unmarshal(data, &e); err != nil {
		return Equipment{}, fmt.Errorf("decode equipment %s: %w", id, err)
	}
	e.ID = id
	return e, nil
}

// EquipmentPatch is a partial update keyed by JSON field name.
type EquipmentPatch map[string]any

const (
	FieldMasterID          = "masterId"
	FieldName              = "name"
	FieldCategory          = "category"
	FieldStatus            = "status"
	FieldLocation          = "location"
	FieldCondition         = "condition"
	FieldQuantity          = "quantity"
	FieldPurchaseQuantity  = "purchaseQuantity"
	FieldPrice             = "price"
	FieldSerialNumber      = "serialNumber"
	FieldImportDate        = "importDate"
	FieldMaintenanceDate   = "maintenanceDate"
	FieldAllocationDetails = "allocationDetails"
	FieldIsRecalled        = "isRecalled"
	FieldNote              = "note"
)

// Apply returns a copy of e with the patch merged over it; e is untouched.
func (e Equipment) Apply(patch EquipmentPatch) (Equipment, error) {
	current, err := json.Marshal(e)
	if err != nil {
		return Equipment{}, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(current, &fields); err != nil {
		return Equipment{}, err
	}
	for key, value := range patch {
		raw, err := json.Marshal(value)
		if err != nil {
			return Equipment{}, fmt.Errorf("patch field %s: %w", key, err)
		}
		fields[key] = raw
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return Equipment{}, err
	}
	var out Equipment
	if err := json.Unmarshal(merged, &out); err != nil {
		return Equipment{}, fmt.Errorf("apply patch: %w", err)
	}
	out.ID = e.ID
	return out, nil
}
