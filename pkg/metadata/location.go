package metadata

const (
	LocationInStock          = "in_stock"
	LocationMaintenance      = "maintenance"
	LocationLiquidationStock = "liquidation_stock"
	LocationProcurement      = "procurement"
)

// DefaultLocation is the placement tag a row gets when it enters status.
// In-use rows take the recipient's department instead.
func DefaultLocation(status Status) string {
	switch status {
	case StatusAvailable:
		return LocationInStock
	case StatusMaintenance:
		return LocationMaintenance
	case StatusLiquidation:
		return LocationLiquidationStock
	case StatusPendingPurchase, StatusPurchasing, StatusPurchased:
		return LocationProcurement
	default:
		return ""
	}
}
