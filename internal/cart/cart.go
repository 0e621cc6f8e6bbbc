// Package cart holds the shopper's cart: an insertion-ordered set of lines
// keyed by (product, variant), written through to durable storage on every
// change.
package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/sunkissed-southern/storefront/pkg/errors"
	"github.com/sunkissed-southern/storefront/pkg/logger"
	"github.com/sunkissed-southern/storefront/pkg/storage"
)

const (
	// DefaultStorageKey is the key the serialized cart lives under.
	DefaultStorageKey = "cart"
	// DefaultMaxQuantity caps a single line.
	DefaultMaxQuantity = 10
)

type Options struct {
	StorageKey  string
	MaxQuantity int
	Logger      *logger.Logger
}

func (o Options) withDefaults() Options {
	if o.StorageKey == "" {
		o.StorageKey = DefaultStorageKey
	}
	if o.MaxQuantity < 1 {
		o.MaxQuantity = DefaultMaxQuantity
	}
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}
	return o
}

// Cart is safe for concurrent use. Every mutation persists the full line
// set before it becomes visible; a failed write leaves the cart unchanged.
type Cart struct {
	mu    sync.Mutex
	store storage.Store
	opts  Options

	items    []Item
	revision int64
	stamp    string
}

// Open loads the cart stored under opts.StorageKey, or starts empty. A
// payload that cannot be read (corrupt or written by a newer version) is
// discarded with a warning.
func Open(ctx context.Context, store storage.Store, opts Options) (*Cart, error) {
	if store == nil {
		return nil, errors.New("cart storage required")
	}
	c := &Cart{store: store, opts: opts.withDefaults()}
	if _, err := c.load(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// load replaces in-memory state with the stored snapshot and reports
// whether anything changed. Caller holds mu or owns c exclusively.
func (c *Cart) load(ctx context.Context) (bool, error) {
	raw, err := c.store.Get(ctx, c.opts.StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		changed := len(c.items) > 0 || c.stamp != ""
		c.items, c.revision, c.stamp = nil, 0, ""
		return changed, nil
	}
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read cart")
	}

	p, err := decodePayload(raw)
	if err != nil {
		ctx = c.opts.Logger.WithFields(ctx, map[string]any{
			"storage_key": c.opts.StorageKey,
			"error":       err.Error(),
		})
		c.opts.Logger.Warn(ctx, "discarding unreadable cart")
		changed := len(c.items) > 0
		c.items, c.revision, c.stamp = nil, 0, ""
		return changed, nil
	}

	items := normalize(p.Items, c.opts.MaxQuantity)
	if p.Stamp == c.stamp && p.Revision == c.revision && (p.Stamp != "" || sameLines(items, c.items)) {
		return false, nil
	}
	c.items = items
	c.revision = p.Revision
	c.stamp = p.Stamp
	return true, nil
}

// Refresh re-reads storage and adopts whatever another writer stored last.
// It reports whether the local lines were replaced.
func (c *Cart) Refresh(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// commit persists next and swaps it in. Caller holds mu.
func (c *Cart) commit(ctx context.Context, next []Item) error {
	p := payload{
		Revision: c.revision + 1,
		Stamp:    uuid.NewString(),
		Items:    next,
	}
	raw, err := encodePayload(p)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := c.store.Set(ctx, c.opts.StorageKey, raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write cart")
	}
	c.items = next
	c.revision = p.Revision
	c.stamp = p.Stamp
	return nil
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneItems(c.items)
}

// Len is the number of distinct lines.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Count is the total quantity across lines.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

// Revision increases with every write this cart or another writer made.
func (c *Cart) Revision() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revision
}

func (c *Cart) MaxQuantity() int {
	return c.opts.MaxQuantity
}

// Add inserts item or, when its key is already present, adds its quantity
// to the existing line. The merged quantity is capped at MaxQuantity.
func (c *Cart) Add(ctx context.Context, item Item) error {
	if err := validateNewItem(item); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := cloneItems(c.items)
	for idx := range next {
		if next[idx].Key() == item.Key() {
			next[idx].Quantity = capQuantity(next[idx].Quantity+item.Quantity, c.opts.MaxQuantity)
			return c.commit(ctx, next)
		}
	}
	line := item.clone()
	line.Quantity = capQuantity(line.Quantity, c.opts.MaxQuantity)
	return c.commit(ctx, append(next, line))
}

// Remove deletes the line with the given key. Removing an absent key is a no-op.
func (c *Cart) Remove(ctx context.Context, productID, variantID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeLocked(ctx, Key{ProductID: productID, VariantID: variantID})
}

func (c *Cart) removeLocked(ctx context.Context, key Key) error {
	next := make([]Item, 0, len(c.items))
	found := false
	for _, item := range c.items {
		if item.Key() == key {
			found = true
			continue
		}
		next = append(next, item.clone())
	}
	if !found {
		return nil
	}
	return c.commit(ctx, next)
}

// UpdateQuantity sets the quantity of an existing line. A quantity below one
// removes the line; an absent key is a no-op.
func (c *Cart) UpdateQuantity(ctx context.Context, productID, variantID int64, qty int) error {
	key := Key{ProductID: productID, VariantID: variantID}

	c.mu.Lock()
	defer c.mu.Unlock()

	if qty < 1 {
		return c.removeLocked(ctx, key)
	}
	next := cloneItems(c.items)
	for idx := range next {
		if next[idx].Key() != key {
			continue
		}
		capped := capQuantity(qty, c.opts.MaxQuantity)
		if next[idx].Quantity == capped {
			return nil
		}
		next[idx].Quantity = capped
		return c.commit(ctx, next)
	}
	return nil
}

// Clear empties the cart. The stored payload is overwritten with an empty
// line set rather than deleted so other readers observe the change.
func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commit(ctx, []Item{})
}

func validateNewItem(item Item) error {
	fields := map[string]string{}
	if item.ProductID <= 0 {
		fields["productId"] = "must be positive"
	}
	if item.VariantID <= 0 {
		fields["variantId"] = "must be positive"
	}
	if item.Quantity < 1 {
		fields["quantity"] = "must be at least 1"
	}
	if item.Price.IsNegative() {
		fields["price"] = "must not be negative"
	}
	if item.OriginalPrice != nil && item.OriginalPrice.LessThan(decimal.Zero) {
		fields["originalPrice"] = "must not be negative"
	}
	if len(fields) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid cart item").WithDetails(fields)
}
