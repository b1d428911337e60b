package metadata

import "fmt"

type Status string

const (
	StatusMaster          Status = "master"
	StatusPendingPurchase Status = "pending-purchase"
	StatusPurchasing      Status = "purchasing"
	StatusPurchased       Status = "purchased"
	StatusAvailable       Status = "available"
	StatusInUse           Status = "in-use"
	StatusMaintenance     Status = "maintenance"
	StatusLiquidation     Status = "liquidation"

	// StatusRemoved is never stored; it marks the edge that deletes a row.
	StatusRemoved Status = "removed"
)

var transitions = map[Status][]Status{
	StatusMaster:          {StatusPendingPurchase, StatusRemoved},
	StatusPendingPurchase: {StatusPurchasing, StatusRemoved},
	StatusPurchasing:      {StatusPurchased, StatusRemoved},
	StatusPurchased:       {StatusAvailable},
	StatusAvailable:       {StatusInUse, StatusRemoved},
	StatusInUse:           {StatusAvailable, StatusMaintenance},
	StatusMaintenance:     {StatusAvailable, StatusLiquidation},
	StatusLiquidation:     {StatusRemoved},
}

func NewStatus(value string) (Status, error) {
	status := Status(value)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid status: %s", value)
	}
	return status, nil
}

func (s Status) IsValid() bool {
	switch s {
	case StatusMaster, StatusPendingPurchase, StatusPurchasing, StatusPurchased,
		StatusAvailable, StatusInUse, StatusMaintenance, StatusLiquidation:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether next is an edge of the equipment lifecycle.
// Updating a row without changing its status is always allowed.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next && s.IsValid() {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsStock is true for rows that represent a physical unit with a serial.
func (s Status) IsStock() bool {
	switch s {
	case StatusAvailable, StatusInUse, StatusMaintenance, StatusLiquidation:
		return true
	default:
		return false
	}
}

// IsDerived is true for every row that counts as "using" its master entry.
func (s Status) IsDerived() bool {
	return s != StatusMaster && s != StatusPendingPurchase
}

func (s Status) String() string {
	return string(s)
}
