package cart

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sorodev/marketplace-client/pkg/logger"
)

func newTestStore(t *testing.T, storage Storage) *Store {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
	store, err := NewStore(context.Background(), storage, logg)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func testItem(productID, entrepotID int64, qty, unitPrice string) Item {
	return Item{
		ProductID:   productID,
		ProductName: "Produit",
		ProductCode: "P-001",
		EntrepotID:  entrepotID,
		Quantity:    decimal.RequireFromString(qty),
		UnitPrice:   decimal.RequireFromString(unitPrice),
	}
}

func TestTotalIsAlwaysDerivedFromLines(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t, NewMemoryStorage())

	if err := store.Add(ctx, testItem(1, 5, "2", "1000")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(ctx, testItem(2, 5, "1.5", "200")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.UpdateQuantity(ctx, 2, 5, decimal.RequireFromString("3")); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := store.Remove(ctx, 1, 5); err != nil {
		t.Fatalf("remove: %v", err)
	}

	want := decimal.RequireFromString("600")
	if got := store.Total(); !got.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, got)
	}

	for _, item := range store.Items() {
		if !item.Subtotal.Equal(item.Quantity.Mul(item.UnitPrice)) {
			t.Fatalf("subtotal %s does not match qty*price for %+v", item.Subtotal, item)
		}
	}
}

func TestAddMergesByIdentityKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t, NewMemoryStorage())

	if err := store.Add(ctx, testItem(1, 5, "2", "1000")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(ctx, testItem(1, 5, "3", "1000")); err != nil {
		t.Fatalf("add: %v", err)
	}
	// Same product in a different warehouse is a separate line.
	if err := store.Add(ctx, testItem(1, 6, "1", "1000")); err != nil {
		t.Fatalf("add: %v", err)
	}

	items := store.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(items))
	}
	if !items[0].Quantity.Equal(decimal.RequireFromString("5")) {
		t.Fatalf("expected merged quantity 5, got %s", items[0].Quantity)
	}
	if items[0].EntrepotID != 5 {
		t.Fatalf("merge must not change entrepot, got %d", items[0].EntrepotID)
	}
	if !items[0].Subtotal.Equal(decimal.RequireFromString("5000")) {
		t.Fatalf("expected recomputed subtotal 5000, got %s", items[0].Subtotal)
	}
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t, NewMemoryStorage())

	if err := store.Add(ctx, testItem(1, 5, "2", "1000")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.UpdateQuantity(ctx, 1, 5, decimal.Zero); err != nil {
		t.Fatalf("update: %v", err)
	}

	if !store.IsEmpty() {
		t.Fatal("zero quantity should remove the line")
	}
}

func TestClearIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t, NewMemoryStorage())

	if err := store.Add(ctx, testItem(1, 5, "2", "1000")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second clear: %v", err)
	}

	if items := store.Items(); len(items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(items))
	}
}

func TestItemCountSumsFractionalQuantities(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t, NewMemoryStorage())

	if err := store.Add(ctx, testItem(1, 5, "0.5", "1000")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(ctx, testItem(2, 5, "2.25", "100")); err != nil {
		t.Fatalf("add: %v", err)
	}

	if got := store.ItemCount(); !got.Equal(decimal.RequireFromString("2.75")) {
		t.Fatalf("expected count 2.75, got %s", got)
	}
}

func TestPersistReloadRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := NewMemoryStorage()
	store := newTestStore(t, storage)

	if err := store.Add(ctx, testItem(1, 5, "2", "1000")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(ctx, testItem(2, 5, "1.5", "300")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.UpdateQuantity(ctx, 1, 5, decimal.RequireFromString("4")); err != nil {
		t.Fatalf("update: %v", err)
	}

	reloaded := newTestStore(t, storage)

	want := store.Items()
	got := reloaded.Items()
	if len(got) != len(want) {
		t.Fatalf("expected %d items after reload, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Key() != want[i].Key() ||
			!got[i].Quantity.Equal(want[i].Quantity) ||
			!got[i].UnitPrice.Equal(want[i].UnitPrice) ||
			!got[i].Subtotal.Equal(want[i].Subtotal) {
			t.Fatalf("reload mismatch at %d: %+v != %+v", i, got[i], want[i])
		}
	}
}

func TestSubscribersSeeMutationsInOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t, NewMemoryStorage())

	var counts []int
	cancel := store.Subscribe(func(items []Item) {
		counts = append(counts, len(items))
	})

	if err := store.Add(ctx, testItem(1, 5, "1", "100")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(ctx, testItem(2, 5, "1", "100")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	if len(counts) != 3 || counts[0] != 1 || counts[1] != 2 || counts[2] != 0 {
		t.Fatalf("unexpected notification sequence %v", counts)
	}

	cancel()
	if err := store.Add(ctx, testItem(3, 5, "1", "100")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(counts) != 3 {
		t.Fatalf("cancelled subscriber must not be notified, got %v", counts)
	}
}

type corruptStorage struct{}

func (corruptStorage) Load(ctx context.Context) ([]Item, error) {
	return nil, ErrCorruptSnapshot
}

func (corruptStorage) Save(ctx context.Context, items []Item) error {
	return nil
}

func TestCorruptSnapshotLoadsAsEmptyCart(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, corruptStorage{})
	if !store.IsEmpty() {
		t.Fatal("corrupt snapshot must load as an empty cart")
	}
}
