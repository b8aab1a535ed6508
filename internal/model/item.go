package model

// InventoryItem represents a stationery item tracked by quantity.
// JSON field names match the export/import document format.
type InventoryItem struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	StockQuantity int    `json:"stockQuantity"`
	Unit          string `json:"unit"`
	Threshold     int    `json:"threshold"`
}

// LowStock reports whether the item's stock is at or below its threshold.
func (i InventoryItem) LowStock() bool {
	return i.StockQuantity <= i.Threshold
}
