package lifecycle

import (
	"strings"

	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/metadata"
	"itinventory/pkg/models"
)

// ParseSerialList splits a pasted list on commas, semicolons and newlines
// and drops empty entries.
func ParseSerialList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '\r'
	})
	return trimSerials(fields)
}

func trimSerials(serials []string) []string {
	out := make([]string, 0, len(serials))
	for _, serial := range serials {
		if serial = strings.TrimSpace(serial); serial != "" {
			out = append(out, serial)
		}
	}
	return out
}

// checkSerials rejects serials repeated within the list or already carried
// by a row other than excludeID.
func checkSerials(items []models.Equipment, serials []string, excludeID string) error {
	taken := map[string]string{}
	for _, item := range items {
		if item.ID == excludeID || strings.TrimSpace(item.SerialNumber) == "" {
			continue
		}
		taken[metadata.SerialKey(item.SerialNumber)] = item.ID
	}

	seen := map[string]bool{}
	var duplicates, collisions []string
	for _, serial := range serials {
		key := metadata.SerialKey(serial)
		if seen[key] {
			duplicates = append(duplicates, serial)
			continue
		}
		seen[key] = true
		if _, ok := taken[key]; ok {
			collisions = append(collisions, serial)
		}
	}

	if len(duplicates) > 0 {
		return custom_error.New(custom_error.CodeValidation, "serial numbers repeated in the list").
			WithDetails(map[string]any{"serials": duplicates})
	}
	if len(collisions) > 0 {
		return custom_error.New(custom_error.CodeValidation, "serial numbers already registered").
			WithDetails(map[string]any{"serials": collisions})
	}
	return nil
}
