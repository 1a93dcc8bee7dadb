package model

// ColorInventoryItem tracks the filament stock for one color/material pair.
// Total grams is always derived from the parts, never stored.
type ColorInventoryItem struct {
	Color            string
	Material         string
	ClosedSpoolCount int
	ClosedSpoolGrams float64 // grams per closed spool
	OpenGrams        float64 // grams remaining across opened spools
}

// TotalGrams returns the available filament in grams.
func (i ColorInventoryItem) TotalGrams() float64 {
	return float64(i.ClosedSpoolCount)*i.ClosedSpoolGrams + i.OpenGrams
}

// Inventory maps normalized color keys to stock items.
type Inventory map[string]ColorInventoryItem

// Grams returns the available grams for the given normalized color key,
// zero when the color is not stocked.
func (inv Inventory) Grams(colorKey string) float64 {
	item, ok := inv[colorKey]
	if !ok {
		return 0
	}
	return item.TotalGrams()
}
