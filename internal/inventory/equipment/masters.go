package equipment

import (
	"itinventory/pkg/metadata"
	"itinventory/pkg/models"
)

// FindMaster returns the first master row with key, if any.
func FindMaster(items []models.Equipment, key string) (models.Equipment, bool) {
	for _, item := range items {
		if item.Status == metadata.StatusMaster && item.MasterKey() == key {
			return item, true
		}
	}
	return models.Equipment{}, false
}

// CountMasters counts master rows sharing key.
func CountMasters(items []models.Equipment, key string) int {
	count := 0
	for _, item := range items {
		if item.Status == metadata.StatusMaster && item.MasterKey() == key {
			count++
		}
	}
	return count
}

// MasterInUse reports whether a derived row points at master, either by
// masterId or by sharing its key.
func MasterInUse(items []models.Equipment, master models.Equipment) bool {
	key := master.MasterKey()
	for _, item := range items {
		if !item.Status.IsDerived() {
			continue
		}
		if (item.MasterID != "" && item.MasterID == master.ID) || item.MasterKey() == key {
			return true
		}
	}
	return false
}

// relinkMasters points every non-master row at the first master with the
// same key, or clears the link when there is none.
func relinkMasters(items []models.Equipment) {
	masters := map[string]string{}
	for _, item := range items {
		if item.Status != metadata.StatusMaster {
			continue
		}
		if _, seen := masters[item.MasterKey()]; !seen {
			masters[item.MasterKey()] = item.ID
		}
	}
	for i, item := range items {
		if item.Status != metadata.StatusMaster {
			items[i].MasterID = masters[item.MasterKey()]
		}
	}
}
