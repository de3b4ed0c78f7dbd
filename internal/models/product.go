package models

// StockStatus is the availability of a catalog entry at scan time.
type StockStatus int

const (
	OutOfStock StockStatus = iota
	InStock
)

// String returns the human readable label used in alerts.
func (s StockStatus) String() string {
	if s == InStock {
		return "In Stock"
	}
	return "Out of Stock"
}

// Variant is one purchasable option of a product, e.g. a package size.
type Variant struct {
	Size  string
	Price string
}

// Product is a structure for storing data for one catalog entry.
type Product struct {
	Title    string
	Status   StockStatus
	URL      string
	Variants []Variant
}

// Normalize derives Status from Variants: a product is in stock only when it
// has at least one in-stock variant.
func (p *Product) Normalize() {
	if len(p.Variants) > 0 {
		p.Status = InStock
		return
	}
	p.Status = OutOfStock
	p.Variants = nil
}
