package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	pkgerrors "github.com/sorodev/marketplace-client/pkg/errors"
	"github.com/sorodev/marketplace-client/pkg/logger"
)

// Store is the single source of truth for cart contents. Every mutation
// rewrites the persisted snapshot and notifies subscribers in mutation
// order with a consistent copy of the items.
type Store struct {
	mu      sync.Mutex
	items   []Item
	storage Storage
	log     *logger.Logger

	nextSubID int
	subs      map[int]func([]Item)
}

// NewStore loads the persisted cart and binds the store to its storage.
// A corrupt or unreadable snapshot is repaired to an empty cart; load
// never fails the constructor.
func NewStore(ctx context.Context, storage Storage, logg *logger.Logger) (*Store, error) {
	if storage == nil {
		return nil, fmt.Errorf("cart storage required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	items, err := storage.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrCorruptSnapshot) {
			logg.Warn(ctx, "cart snapshot corrupt, starting from empty cart")
		} else {
			logg.Error(ctx, "cart snapshot unreadable, starting from empty cart", err)
		}
		items = nil
	}
	for i := range items {
		items[i] = items[i].recomputed()
	}

	return &Store{
		items:   items,
		storage: storage,
		log:     logg,
		subs:    map[int]func([]Item){},
	}, nil
}

// Add merges the item into the cart: an existing line with the same
// identity key has its quantity incremented, otherwise a copy is
// appended.
func (s *Store) Add(ctx context.Context, item Item) error {
	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].Key() == item.Key() {
			s.items[i].Quantity = s.items[i].Quantity.Add(item.Quantity)
			s.items[i] = s.items[i].recomputed()
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, item.recomputed())
	}
	return s.persistAndNotifyLocked(ctx)
}

// UpdateQuantity sets the quantity for the identified line. A quantity
// of zero or less removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, productID, entrepotID int64, quantity decimal.Decimal) error {
	if quantity.Sign() <= 0 {
		return s.Remove(ctx, productID, entrepotID)
	}

	s.mu.Lock()
	key := Key{ProductID: productID, EntrepotID: entrepotID}
	for i := range s.items {
		if s.items[i].Key() == key {
			s.items[i].Quantity = quantity
			s.items[i] = s.items[i].recomputed()
			break
		}
	}
	return s.persistAndNotifyLocked(ctx)
}

// Remove drops the identified line if present.
func (s *Store) Remove(ctx context.Context, productID, entrepotID int64) error {
	s.mu.Lock()
	key := Key{ProductID: productID, EntrepotID: entrepotID}
	kept := s.items[:0]
	for _, item := range s.items {
		if item.Key() != key {
			kept = append(kept, item)
		}
	}
	s.items = kept
	return s.persistAndNotifyLocked(ctx)
}

// Clear empties the cart. Invoked once, right after a successful order
// creation.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.items = nil
	return s.persistAndNotifyLocked(ctx)
}

// Items returns a defensive copy of the cart lines.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Total returns the sum of line subtotals, derived at call time.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Quantity.Mul(item.UnitPrice))
	}
	return total
}

// ItemCount returns the sum of quantities across lines.
func (s *Store) ItemCount() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := decimal.Zero
	for _, item := range s.items {
		count = count.Add(item.Quantity)
	}
	return count
}

// IsEmpty reports whether the cart holds no lines.
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

// Subscribe registers fn for cart changes. The returned cancel func
// must be invoked on teardown to stop further deliveries.
func (s *Store) Subscribe(fn func([]Item)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// persistAndNotifyLocked is entered with the mutex held and releases it.
func (s *Store) persistAndNotifyLocked(ctx context.Context) error {
	snapshot := s.snapshotLocked()
	subs := make([]func([]Item), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}

	var persistErr error
	if err := s.storage.Save(ctx, snapshot); err != nil {
		persistErr = pkgerrors.Wrap(pkgerrors.CodeStorage, err, "persist cart")
		s.mu.Unlock()
		s.log.Error(ctx, "persisting cart snapshot failed", err)
	} else {
		s.mu.Unlock()
	}

	for _, fn := range subs {
		fn(snapshot)
	}
	return persistErr
}

func (s *Store) snapshotLocked() []Item {
	return append([]Item(nil), s.items...)
}
