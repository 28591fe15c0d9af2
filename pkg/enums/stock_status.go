package enums

// StockStatus is derived from an inventory item's stock levels, never stored.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in-stock"
	StockStatusLowStock   StockStatus = "low-stock"
	StockStatusOutOfStock StockStatus = "out-of-stock"
)

// String implements fmt.Stringer.
func (s StockStatus) String() string {
	return string(s)
}
