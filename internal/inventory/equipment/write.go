package equipment

import (
	"encoding/json"
	"fmt"

	"itinventory/internal/docstore"
	"itinventory/pkg/models"
)

// Write stages equipment changes for one atomic Store.Commit. Encoding
// errors are kept and reported by Commit.
type Write struct {
	batch   *docstore.Batch
	puts    []models.Equipment
	removes []string
	err     error
}

func NewWrite() *Write {
	return &Write{batch: docstore.NewBatch()}
}

// Insert stages a new row and returns it with its pre-assigned id.
func (w *Write) Insert(item models.Equipment) models.Equipment {
	item.ID = ""
	data, err := item.Document()
	if err != nil {
		w.fail(fmt.Errorf("encode %q: %w", item.Name, err))
		return item
	}
	item.ID = w.batch.Insert(docstore.CollectionEquipment, data)
	w.puts = append(w.puts, item)
	return item
}

func (w *Write) Update(current models.Equipment, patch models.EquipmentPatch) models.Equipment {
	updated, err := current.Apply(patch)
	if err != nil {
		w.fail(err)
		return current
	}
	data, err := json.Marshal(patch)
	if err != nil {
		w.fail(fmt.Errorf("encode patch for %s: %w", current.ID, err))
		return current
	}
	w.batch.Update(docstore.CollectionEquipment, current.ID, data)
	w.puts = append(w.puts, updated)
	return updated
}

func (w *Write) Delete(id string) {
	w.batch.Delete(docstore.CollectionEquipment, id)
	w.removes = append(w.removes, id)
}

func (w *Write) Len() int {
	return w.batch.Len()
}

func (w *Write) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}
