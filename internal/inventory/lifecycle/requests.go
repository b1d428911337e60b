package lifecycle

import "itinventory/pkg/models"

type MasterItemRequest struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Category string  `json:"category" validate:"required,categorykey"`
	Price    float64 `json:"price" validate:"gte=0"`
	Note     string  `json:"note" validate:"max=1000"`
}

type PurchaseRequest struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Category string  `json:"category" validate:"required,categorykey"`
	Quantity int     `json:"quantity" validate:"omitempty,min=1,max=100000"`
	Price    float64 `json:"price" validate:"gte=0"`
	Note     string  `json:"note" validate:"max=1000"`
}

// PurchasingLine carries the loosely typed figures entered when an order is
// placed.
type PurchasingLine struct {
	ID       string             `json:"id" validate:"required"`
	Quantity models.LooseNumber `json:"quantity"`
	Price    models.LooseNumber `json:"price"`
}

type StartPurchasingRequest struct {
	Items []PurchasingLine `json:"items" validate:"required,min=1,dive"`
}

type IDsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

type NoteRequest struct {
	Note string `json:"note" validate:"required,max=1000"`
}

type OptionalNoteRequest struct {
	Note string `json:"note" validate:"max=1000"`
}

type ImportRequest struct {
	Serials []string `json:"serials" validate:"required,min=1,dive,required,max=100"`
}

// LegacyItemRequest adds stock that never went through procurement. Serials
// is one string separated by commas, semicolons or newlines.
type LegacyItemRequest struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Category string  `json:"category" validate:"required,categorykey"`
	Quantity int     `json:"quantity" validate:"required,min=1,max=10000"`
	Serials  string  `json:"serials" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
	Note     string  `json:"note" validate:"max=1000"`
}

type InventoryUpdateRequest struct {
	Name         *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Category     *string  `json:"category" validate:"omitempty,categorykey"`
	Price        *float64 `json:"price" validate:"omitempty,gte=0"`
	SerialNumber *string  `json:"serialNumber" validate:"omitempty,min=1,max=100"`
	Location     *string  `json:"location" validate:"omitempty,max=100"`
	Note         *string  `json:"note" validate:"omitempty,max=1000"`
}

type AllocateRequest struct {
	RecipientName string `json:"recipientName" validate:"required,max=200"`
	EmployeeID    string `json:"employeeId" validate:"max=100"`
	Position      string `json:"position" validate:"max=200"`
	Department    string `json:"department" validate:"required,max=200"`
	HandoverDate  string `json:"handoverDate" validate:"omitempty,datetime=2006-01-02"`
	Note          string `json:"note" validate:"max=1000"`
	// SerialNumber picks a specific unit among identical available units.
	SerialNumber string `json:"serialNumber" validate:"max=100"`
}

type RecallRequest struct {
	Reason string `json:"reason" validate:"required,max=200"`
	Note   string `json:"note" validate:"max=1000"`
}
