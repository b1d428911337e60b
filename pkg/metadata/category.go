package metadata

import (
	"regexp"
	"strings"
)

const (
	CategoryPC        = "pc"
	CategoryLaptop    = "laptop"
	CategoryMonitor   = "monitor"
	CategoryPrinter   = "printer"
	CategoryNetwork   = "network"
	CategoryPhone     = "phone"
	CategoryAccessory = "accessory"
	CategoryOther     = "other"
)

var categoryKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,31}$`)

// NormalizeCategory lower-cases and trims a category key.
func NormalizeCategory(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func IsCategoryKey(value string) bool {
	return categoryKeyPattern.MatchString(value)
}

// MasterKey is the composite identity of a catalog entry: case-insensitive
// name plus category.
func MasterKey(name, category string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "\x00" + NormalizeCategory(category)
}

// SerialKey is the comparison form of a serial number.
func SerialKey(serial string) string {
	return strings.ToLower(strings.TrimSpace(serial))
}
