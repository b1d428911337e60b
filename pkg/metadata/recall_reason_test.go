package metadata

import "testing"

func TestLookupRecallReason(t *testing.T) {
	tests := []struct {
		name            string
		key             string
		wantOK          bool
		wantMaintenance bool
	}{
		{"good as new", "condition_good_as_new", true, false},
		{"damaged", "condition_damaged_needs_maintenance", true, true},
		{"legacy damaged key", "damaged_needs_maintenance", true, true},
		{"free-form reason", "returned_after_project", true, false},
		{"padded key", "  condition_good  ", true, false},
		{"empty", "   ", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LookupRecallReason(tt.key)
			if ok != tt.wantOK {
				t.Fatalf("LookupRecallReason() ok = %v, want %v", ok, tt.wantOK)
			}
			if got.RoutesToMaintenance != tt.wantMaintenance {
				t.Errorf("RoutesToMaintenance = %v, want %v", got.RoutesToMaintenance, tt.wantMaintenance)
			}
		})
	}
}

func TestMasterKey(t *testing.T) {
	if MasterKey(" Dell 3420", "Laptop") != MasterKey("dell 3420 ", "laptop") {
		t.Error("master key must ignore case and surrounding whitespace")
	}
	if MasterKey("Dell 3420", "laptop") == MasterKey("Dell 3420", "monitor") {
		t.Error("master key must include the category")
	}
}
