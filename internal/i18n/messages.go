package i18n

var english = map[string]string{
	"new":                                 "New",
	"legacy_import":                       "Imported from legacy records",
	"repaired":                            "Repaired: {note}",
	"condition_returned":                  "Returned to stock",
	"condition_good_as_new":               "Good as new",
	"condition_good":                      "Good",
	"condition_minor_wear":                "Minor wear",
	"condition_employee_left":             "Returned, employee left",
	"condition_damaged_needs_maintenance": "Damaged, needs maintenance",
	"damaged_needs_maintenance":           "Damaged, needs maintenance",
	"repair_note_screen_replaced":         "screen replaced",
	"repair_note_battery_replaced":        "battery replaced",
	"repair_note_keyboard_replaced":       "keyboard replaced",
	"repair_note_cleaned":                 "cleaned and serviced",
	"repair_note_reinstalled":             "operating system reinstalled",

	"master_item_added":        "Master item added",
	"master_item_updated":      "Master item updated",
	"master_item_deleted":      "Master item deleted",
	"purchase_requested":       "Purchase request created",
	"purchase_request_deleted": "Purchase request deleted",
	"purchasing_started":       "Purchasing started",
	"purchase_confirmed":       "Purchase confirmed",
	"purchase_cancelled":       "Purchase cancelled",
	"items_imported":           "Items imported to stock",
	"legacy_items_added":       "Legacy items added",
	"inventory_item_updated":   "Item updated",
	"inventory_item_deleted":   "Item deleted",
	"item_allocated":           "Item allocated",
	"item_recalled":            "Item recalled to stock",
	"item_sent_to_maintenance": "Item sent to maintenance",
	"maintenance_note_updated": "Maintenance note updated",
	"repair_completed":         "Repair completed",
	"item_unrepairable":        "Item moved to liquidation",
	"item_liquidated":          "Item liquidated",
	"inventory_restored":       "Backup restored",
	"inventory_cleared":        "All data deleted",
	"inventory_reloaded":       "Inventory reloaded",
	"audit_log_failed":         "Saved, but the transaction history could not be updated",
}

var vietnamese = map[string]string{
	"new":                                 "Mới",
	"legacy_import":                       "Nhập từ dữ liệu cũ",
	"repaired":                            "Đã sửa chữa: {note}",
	"condition_returned":                  "Đã thu hồi về kho",
	"condition_good_as_new":               "Như mới",
	"condition_good":                      "Tốt",
	"condition_minor_wear":                "Hao mòn nhẹ",
	"condition_employee_left":             "Thu hồi do nhân viên nghỉ việc",
	"condition_damaged_needs_maintenance": "Hư hỏng, cần bảo trì",
	"damaged_needs_maintenance":           "Hư hỏng, cần bảo trì",
	"repair_note_screen_replaced":         "đã thay màn hình",
	"repair_note_battery_replaced":        "đã thay pin",
	"repair_note_keyboard_replaced":       "đã thay bàn phím",
	"repair_note_cleaned":                 "đã vệ sinh, bảo dưỡng",
	"repair_note_reinstalled":             "đã cài lại hệ điều hành",

	"master_item_added":        "Đã thêm thiết bị vào danh mục",
	"master_item_updated":      "Đã cập nhật danh mục",
	"master_item_deleted":      "Đã xóa khỏi danh mục",
	"purchase_requested":       "Đã tạo yêu cầu mua",
	"purchase_request_deleted": "Đã xóa yêu cầu mua",
	"purchasing_started":       "Đã bắt đầu mua hàng",
	"purchase_confirmed":       "Đã xác nhận mua hàng",
	"purchase_cancelled":       "Đã hủy mua hàng",
	"items_imported":           "Đã nhập kho",
	"legacy_items_added":       "Đã thêm thiết bị cũ",
	"inventory_item_updated":   "Đã cập nhật thiết bị",
	"inventory_item_deleted":   "Đã xóa thiết bị",
	"item_allocated":           "Đã cấp phát thiết bị",
	"item_recalled":            "Đã thu hồi về kho",
	"item_sent_to_maintenance": "Đã chuyển bảo trì",
	"maintenance_note_updated": "Đã cập nhật ghi chú bảo trì",
	"repair_completed":         "Đã sửa chữa xong",
	"item_unrepairable":        "Đã chuyển thanh lý",
	"item_liquidated":          "Đã thanh lý",
	"inventory_restored":       "Đã khôi phục dữ liệu",
	"inventory_cleared":        "Đã xóa toàn bộ dữ liệu",
	"inventory_reloaded":       "Đã tải lại dữ liệu",
	"audit_log_failed":         "Đã lưu nhưng không ghi được lịch sử giao dịch",
}
