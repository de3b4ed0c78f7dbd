package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Houeta/stock-watch/internal/browser"
	"github.com/Houeta/stock-watch/internal/models"
)

const defaultVariantTimeout = 10 * time.Second

// Selectors locate catalog and variant markup. Class fields are bare class names.
type Selectors struct {
	Product             string
	Link                string
	InStockClass        string
	VariantRow          string
	VariantStatus       string
	VariantInStockClass string
	VariantSize         string
	PriceWhole          string
	PriceDecimal        string
}

// DefaultSelectors matches a WooCommerce shop listing and variable product page.
func DefaultSelectors() Selectors {
	return Selectors{
		Product:             "li.product",
		Link:                "a",
		InStockClass:        "instock",
		VariantRow:          ".product-form-row",
		VariantStatus:       "p",
		VariantInStockClass: "in-stock",
		VariantSize:         ".pa-size dd",
		PriceWhole:          ".woocommerce-Price-amount",
		PriceDecimal:        ".woocommerce-Price-decimal",
	}
}

// Scanner builds a ScanResult from the listing page an authenticated session is on.
type Scanner struct {
	log            *slog.Logger
	sel            Selectors
	excluded       map[string]struct{}
	variantTimeout time.Duration
}

// NewScanner creates a new Scanner instance. Titles in excluded are never scanned.
func NewScanner(log *slog.Logger, sel Selectors, excluded []string, variantTimeout time.Duration) *Scanner {
	set := make(map[string]struct{}, len(excluded))
	for _, title := range excluded {
		set[title] = struct{}{}
	}
	if variantTimeout <= 0 {
		variantTimeout = defaultVariantTimeout
	}

	return &Scanner{log: log, sel: sel, excluded: set, variantTimeout: variantTimeout}
}

// Scan enumerates the listing page and inspects the detail page of every product
// the listing flags as available. The primary context stays on the listing page.
//
// Entries and variant rows with missing markup are skipped and counted; browser
// faults abort the scan.
func (s *Scanner) Scan(ctx context.Context, drv browser.Driver) (*models.ScanResult, error) {
	const opn = "scanner.Scan"
	log := s.log.With("op", opn)

	log.InfoContext(ctx, "Scraping product data")

	listing, err := drv.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to capture listing page: %w", opn, err)
	}

	result := &models.ScanResult{}
	for idx, entry := range listing.FindAll(s.sel.Product) {
		title, url, err := s.parseEntry(listing, entry)
		if err != nil {
			log.WarnContext(ctx, "Skipping malformed catalog entry", "index", idx, "error", err)
			result.Skipped++
			continue
		}

		if _, skip := s.excluded[title]; skip {
			log.DebugContext(ctx, "Skipping excluded product", "title", title)
			continue
		}

		product := models.Product{Title: title, URL: url, Status: models.OutOfStock}
		if entry.HasClass(s.sel.InStockClass) {
			product.Variants, err = s.inStockVariants(ctx, drv, url)
			if err != nil {
				return nil, fmt.Errorf("%s: product %q: %w", opn, title, err)
			}
		}

		result.Add(product)
	}

	log.InfoContext(ctx, "Scan complete",
		"products", len(result.Products),
		"in_stock", result.StockCount,
		"skipped", result.Skipped,
	)

	return result, nil
}

func (s *Scanner) parseEntry(listing *browser.Page, entry browser.Element) (string, string, error) {
	link, err := entry.Find(s.sel.Link)
	if err != nil {
		return "", "", err
	}

	title, err := link.Attr("title")
	if err != nil {
		return "", "", err
	}

	href, err := link.Attr("href")
	if err != nil {
		return "", "", err
	}

	url, err := listing.Resolve(href)
	if err != nil {
		return "", "", err
	}

	return title, url, nil
}

// inStockVariants opens url in a secondary tab that is always closed before returning.
func (s *Scanner) inStockVariants(ctx context.Context, drv browser.Driver, url string) (variants []models.Variant, err error) {
	tab, err := drv.OpenTab(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := tab.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close product tab: %w", cerr))
		}
	}()

	if err = tab.WaitPresent(ctx, s.sel.VariantRow, s.variantTimeout); err != nil {
		return nil, fmt.Errorf("variants did not load: %w", err)
	}

	page, err := tab.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return s.parseVariants(ctx, page), nil
}

func (s *Scanner) parseVariants(ctx context.Context, page *browser.Page) []models.Variant {
	var variants []models.Variant

	for idx, row := range page.FindAll(s.sel.VariantRow) {
		status, err := row.Find(s.sel.VariantStatus)
		if err != nil {
			s.log.WarnContext(ctx, "Variant row has no stock status", "url", page.URL, "index", idx)
			continue
		}
		if !status.HasClass(s.sel.VariantInStockClass) {
			continue
		}

		variant, err := s.parseVariant(row)
		if err != nil {
			s.log.WarnContext(ctx, "Skipping malformed variant row", "url", page.URL, "index", idx, "error", err)
			continue
		}
		variants = append(variants, variant)
	}

	return variants
}

// parseVariant joins the whole and decimal price tokens as text, exactly as the shop renders them.
func (s *Scanner) parseVariant(row browser.Element) (models.Variant, error) {
	size, err := row.Find(s.sel.VariantSize)
	if err != nil {
		return models.Variant{}, err
	}

	whole, err := row.Find(s.sel.PriceWhole)
	if err != nil {
		return models.Variant{}, err
	}

	decimal, err := row.Find(s.sel.PriceDecimal)
	if err != nil {
		return models.Variant{}, err
	}

	return models.Variant{Size: size.Text(), Price: whole.Text() + decimal.Text()}, nil
}
