package checker

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Houeta/stock-watch/internal/models"
	"github.com/Houeta/stock-watch/internal/repository"
)

// Policy decides when an in-stock scan produces an alert.
type Policy string

const (
	// PolicyAlways alerts on every scan that found stock.
	PolicyAlways Policy = "always"
	// PolicyOnChange alerts only when the in-stock snapshot differs from the last one stored.
	PolicyOnChange Policy = "on_change"
)

var ErrUnknownPolicy = errors.New("unknown notify policy")

// ParsePolicy converts a configuration value into a Policy. Empty means PolicyAlways.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyAlways:
		return PolicyAlways, nil
	case PolicyOnChange:
		return PolicyOnChange, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// StateRepository stores the reported snapshot and the scan history.
type StateRepository interface {
	GetState(ctx context.Context) (*models.State, error)
	UpdateState(ctx context.Context, state *models.State) error
	RecordScan(ctx context.Context, summary models.ScanSummary) error
}

// Decision is the outcome of a single evaluation.
type Decision struct {
	Notify  bool
	Changes models.Changes
}

// Checker compares each scan with the last reported snapshot.
type Checker struct {
	log    *slog.Logger
	repo   StateRepository
	policy Policy
}

// NewChecker creates a new Checker instance.
func NewChecker(log *slog.Logger, repo StateRepository, policy Policy) *Checker {
	if policy == "" {
		policy = PolicyAlways
	}
	return &Checker{log: log, repo: repo, policy: policy}
}

// Evaluate records the scan, diffs its in-stock products against the stored
// snapshot and replaces the snapshot when it changed.
func (c *Checker) Evaluate(ctx context.Context, result *models.ScanResult, checkedAt time.Time) (Decision, error) {
	const opn = "checker.Evaluate"
	log := c.log.With("op", opn)

	// 1. Scan history
	summary := models.ScanSummary{
		CheckedAt:    checkedAt,
		ProductCount: len(result.Products),
		StockCount:   result.StockCount,
	}
	if err := c.repo.RecordScan(ctx, summary); err != nil {
		return Decision{}, fmt.Errorf("%s: failed to record scan: %w", opn, err)
	}

	// 2. Fingerprint of what would be reported
	inStock := result.InStock()
	fingerprint, err := calculateHash(inStock)
	if err != nil {
		return Decision{}, fmt.Errorf("%s: failed to fingerprint snapshot: %w", opn, err)
	}
	log.DebugContext(ctx, "Calculated snapshot fingerprint", "hash", fingerprint)

	// 3. Getting the old state from the database
	oldState, err := c.repo.GetState(ctx)
	if err != nil && !errors.Is(err, repository.ErrStateNotFound) {
		return Decision{}, fmt.Errorf("%s: failed to get old state: %w", opn, err)
	}

	var oldProducts []models.Product
	if oldState != nil {
		oldProducts = oldState.Products
	}
	changes := detectChanges(oldProducts, inStock)

	// 4. Replacing the stored snapshot
	changed := oldState == nil || oldState.Fingerprint != fingerprint
	if changed {
		newState := &models.State{Fingerprint: fingerprint, Products: inStock}
		if err = c.repo.UpdateState(ctx, newState); err != nil {
			return Decision{}, fmt.Errorf("%s: failed to update state in repository: %w", opn, err)
		}
		log.InfoContext(
			ctx,
			"Stock snapshot changed",
			"added",
			len(changes.Added),
			"removed",
			len(changes.Removed),
			"changed",
			len(changes.Changed),
		)
	}

	notify := result.StockCount > 0 && (c.policy == PolicyAlways || changed)

	return Decision{Notify: notify, Changes: changes}, nil
}

// calculateHash calculates the SHA256 hash of the reported products.
func calculateHash(products []models.Product) (string, error) {
	data, err := json.Marshal(products)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}

// detectChanges compares two in-stock snapshots by title, keeping listing order.
func detectChanges(oldProducts, newProducts []models.Product) models.Changes {
	oldMap := make(map[string]models.Product, len(oldProducts))
	for _, p := range oldProducts {
		oldMap[p.Title] = p
	}

	seen := make(map[string]struct{}, len(newProducts))

	var changes models.Changes
	for _, newProduct := range newProducts {
		seen[newProduct.Title] = struct{}{}
		oldProduct, found := oldMap[newProduct.Title]
		switch {
		case !found:
			changes.Added = append(changes.Added, newProduct)
		case !slices.Equal(oldProduct.Variants, newProduct.Variants):
			changes.Changed = append(changes.Changed, models.ChangeInfo{Old: oldProduct, New: newProduct})
		}
	}

	for _, oldProduct := range oldProducts {
		if _, ok := seen[oldProduct.Title]; !ok {
			changes.Removed = append(changes.Removed, oldProduct)
		}
	}
	return changes
}
