package metadata

import (
	"testing"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		from     Status
		to       Status
		expected bool
	}{
		{"request from master", StatusMaster, StatusPendingPurchase, true},
		{"start purchasing", StatusPendingPurchase, StatusPurchasing, true},
		{"confirm purchased", StatusPurchasing, StatusPurchased, true},
		{"cancel purchasing", StatusPurchasing, StatusRemoved, true},
		{"import purchased", StatusPurchased, StatusAvailable, true},
		{"allocate", StatusAvailable, StatusInUse, true},
		{"recall to stock", StatusInUse, StatusAvailable, true},
		{"recall damaged", StatusInUse, StatusMaintenance, true},
		{"repair complete", StatusMaintenance, StatusAvailable, true},
		{"unrepairable", StatusMaintenance, StatusLiquidation, true},
		{"liquidate", StatusLiquidation, StatusRemoved, true},
		{"delete stock", StatusAvailable, StatusRemoved, true},
		{"allocate straight from purchase", StatusPurchased, StatusInUse, false},
		{"delete allocated unit", StatusInUse, StatusRemoved, false},
		{"liquidate available", StatusAvailable, StatusLiquidation, false},
		{"revive liquidation", StatusLiquidation, StatusAvailable, false},
		{"skip purchasing", StatusPendingPurchase, StatusPurchased, false},
		{"unknown source", Status("lost"), StatusAvailable, false},
		{"same status edit", StatusMaintenance, StatusMaintenance, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.expected {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNewStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid master", "master", false},
		{"valid in-use", "in-use", false},
		{"removed is not storable", "removed", true},
		{"underscore variant", "in_use", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStatus(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewStatus() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsDerived(t *testing.T) {
	if StatusMaster.IsDerived() || StatusPendingPurchase.IsDerived() {
		t.Error("master and pending-purchase rows must not count as derived")
	}
	if !StatusPurchasing.IsDerived() || !StatusInUse.IsDerived() {
		t.Error("purchasing and in-use rows must count as derived")
	}
}
