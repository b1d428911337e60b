package metadata

import "strings"

type RecallReason struct {
	Key                 string
	RoutesToMaintenance bool
}

var (
	RecallGoodAsNew          = RecallReason{Key: "condition_good_as_new"}
	RecallGood               = RecallReason{Key: "condition_good"}
	RecallMinorWear          = RecallReason{Key: "condition_minor_wear"}
	RecallEmployeeLeft       = RecallReason{Key: "condition_employee_left"}
	RecallDamagedMaintenance = RecallReason{Key: "condition_damaged_needs_maintenance", RoutesToMaintenance: true}
)

var recallReasons = map[string]RecallReason{
	RecallGoodAsNew.Key:          RecallGoodAsNew,
	RecallGood.Key:               RecallGood,
	RecallMinorWear.Key:          RecallMinorWear,
	RecallEmployeeLeft.Key:       RecallEmployeeLeft,
	RecallDamagedMaintenance.Key: RecallDamagedMaintenance,
	// older clients send the key without the condition_ prefix
	"damaged_needs_maintenance": RecallDamagedMaintenance,
}

// LookupRecallReason resolves a reason key. Unknown keys are accepted as
// free-form reasons that return the unit to stock.
func LookupRecallReason(key string) (RecallReason, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return RecallReason{}, false
	}
	if reason, ok := recallReasons[key]; ok {
		return reason, true
	}
	return RecallReason{Key: key}, true
}
