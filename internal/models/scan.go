package models

import "time"

// ScanResult is the full output of one scan, products in listing order.
type ScanResult struct {
	Products   []Product
	StockCount int
	// Skipped counts listing entries dropped because of malformed markup.
	Skipped int
}

// Add normalizes p and appends it, keeping StockCount consistent.
func (r *ScanResult) Add(p Product) {
	p.Normalize()
	if p.Status == InStock {
		r.StockCount++
	}
	r.Products = append(r.Products, p)
}

// InStock returns the in-stock products in listing order.
func (r *ScanResult) InStock() []Product {
	var products []Product
	for _, p := range r.Products {
		if p.Status == InStock {
			products = append(products, p)
		}
	}
	return products
}

// ScanSummary is a single row of scan history.
type ScanSummary struct {
	CheckedAt    time.Time
	ProductCount int
	StockCount   int
}

// SessionState tracks whether the browser session is logged in.
type SessionState int

const (
	Unauthenticated SessionState = iota
	Authenticated
)

func (s SessionState) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}
