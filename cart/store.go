// Package cart persists the shopper's cart as a JSON file in the local
// state directory. The cart is owned exclusively by this machine's state
// directory; nothing is mirrored server-side until checkout submits it
// as an order payload.
package cart

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/raynott/decmart/pricing"
)

// FileName is the cart file within the state directory.
const FileName = "cart.json"

// Item is one product/quantity line. Identity is the product ID: a cart
// never holds two lines for the same product.
type Item struct {
	Product string          `json:"product"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Image   string          `json:"image,omitempty"`
	Qty     int             `json:"qty"`
}

// Store reads and writes the persisted cart. Persistence is whole-file:
// every save overwrites the previous representation, last writer wins.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a cart store rooted at the given state directory.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// Path returns the full path of the cart file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// Load returns the persisted cart. A missing file is an empty cart.
// Malformed stored data is also treated as an empty cart: it is logged
// and discarded rather than surfaced, so a damaged file can never wedge
// the shopper.
func (s *Store) Load() []Item {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read cart file", "path", s.Path(), "error", err)
		}
		return []Item{}
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Warn("Discarding malformed cart file", "path", s.Path(), "error", err)
		return []Item{}
	}
	if items == nil {
		items = []Item{}
	}
	return items
}

// Save overwrites the persisted cart with the given items. The write is
// atomic (temp file + rename) so a concurrent Load never observes a
// partially written cart.
func (s *Store) Save(items []Item) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, FileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp cart file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write cart: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp cart file: %w", err)
	}

	if err := os.Rename(tmpName, s.Path()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace cart file: %w", err)
	}
	return nil
}

// Add merges the item into the cart and saves. An existing line for the
// same product has its quantity incremented by item.Qty; otherwise the
// item is appended, preserving insertion order.
func (s *Store) Add(item Item) error {
	if item.Product == "" {
		return fmt.Errorf("item has no product ID")
	}
	if item.Qty < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}

	items := s.Load()
	merged := false
	for i := range items {
		if items[i].Product == item.Product {
			items[i].Qty += item.Qty
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, item)
	}
	return s.Save(items)
}

// UpdateQuantity sets the quantity of the line at idx and saves.
// Quantities below 1 and out-of-range indexes are ignored: decrementing
// past 1 leaves the line alone rather than removing it.
func (s *Store) UpdateQuantity(idx, qty int) error {
	if qty < 1 {
		return nil
	}
	items := s.Load()
	if idx < 0 || idx >= len(items) {
		return nil
	}
	items[idx].Qty = qty
	return s.Save(items)
}

// RemoveItem deletes the line at idx and saves. Out-of-range indexes
// are ignored.
func (s *Store) RemoveItem(idx int) error {
	items := s.Load()
	if idx < 0 || idx >= len(items) {
		return nil
	}
	items = append(items[:idx], items[idx+1:]...)
	return s.Save(items)
}

// Clear removes the persisted cart entirely. Subsequent loads return an
// empty cart. Clearing an already-empty cart is a no-op.
func (s *Store) Clear() error {
	if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cart file: %w", err)
	}
	return nil
}

// Lines converts cart items into pricing lines.
func Lines(items []Item) []pricing.Line {
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Line{Price: it.Price, Qty: it.Qty})
	}
	return lines
}

// Count returns the total number of units across all lines.
func Count(items []Item) int {
	n := 0
	for _, it := range items {
		n += it.Qty
	}
	return n
}
