package pricing

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sorodev/marketplace-client/internal/api"
	pkgerrors "github.com/sorodev/marketplace-client/pkg/errors"
	"github.com/sorodev/marketplace-client/pkg/logger"
)

type stubZoneLister struct {
	zones []api.DeliveryZone
	err   error

	calls int
}

func (s *stubZoneLister) ListDeliveryPrices(_ context.Context, _ int64) ([]api.DeliveryZone, error) {
	s.calls++
	return s.zones, s.err
}

func newTestResolver(t *testing.T, lister ZoneLister) *Resolver {
	t.Helper()

	resolver, err := NewResolver(lister, logger.New(logger.Options{Level: zerolog.Disabled}))
	if err != nil {
		t.Fatalf("failed to build resolver: %v", err)
	}
	return resolver
}

func zone(id int64, name, price string) api.DeliveryZone {
	return api.DeliveryZone{ID: id, Zone: name, Price: decimal.RequireFromString(price)}
}

func TestLoadZones_ReturnsZones(t *testing.T) {
	t.Parallel()

	lister := &stubZoneLister{zones: []api.DeliveryZone{
		zone(1, "Cocody", "2000"),
		zone(2, "Plateau", "2500"),
	}}
	resolver := newTestResolver(t, lister)

	zones, err := resolver.LoadZones(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(zones) != 2 {
		t.Fatalf("expected 2 zones, got %d", len(zones))
	}
	if lister.calls != 1 {
		t.Errorf("expected one fetch, got %d", lister.calls)
	}
}

func TestLoadZones_EmptyIsValid(t *testing.T) {
	t.Parallel()

	resolver := newTestResolver(t, &stubZoneLister{})

	zones, err := resolver.LoadZones(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(zones) != 0 {
		t.Errorf("expected no zones, got %d", len(zones))
	}
}

func TestLoadZones_FailurePropagates(t *testing.T) {
	t.Parallel()

	fetchErr := pkgerrors.New(pkgerrors.CodeTransport, "connection refused")
	resolver := newTestResolver(t, &stubZoneLister{err: fetchErr})

	_, err := resolver.LoadZones(context.Background(), 5)
	if !pkgerrors.HasCode(err, pkgerrors.CodeTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestResolvePrice(t *testing.T) {
	t.Parallel()

	zones := []api.DeliveryZone{
		zone(1, "Cocody", "2000"),
		zone(2, "Plateau", "2500"),
	}

	if got := ResolvePrice(zones, 2); !got.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("expected 2500, got %s", got)
	}
	if got := ResolvePrice(zones, 0); !got.IsZero() {
		t.Errorf("expected zero for no selection, got %s", got)
	}
	if got := ResolvePrice(zones, 99); !got.IsZero() {
		t.Errorf("expected zero for stale selection, got %s", got)
	}
	if got := ResolvePrice(nil, 1); !got.IsZero() {
		t.Errorf("expected zero with no zones, got %s", got)
	}
}

func TestZoneByID(t *testing.T) {
	t.Parallel()

	zones := []api.DeliveryZone{zone(1, "Cocody", "2000")}

	if got := ZoneByID(zones, 1); got == nil || got.Zone != "Cocody" {
		t.Errorf("expected Cocody zone, got %+v", got)
	}
	if got := ZoneByID(zones, 2); got != nil {
		t.Errorf("expected nil for unknown zone, got %+v", got)
	}
}

func TestFinalTotal(t *testing.T) {
	t.Parallel()

	cartTotal := decimal.RequireFromString("600")
	delivery := decimal.RequireFromString("2000")

	if got := FinalTotal(cartTotal, delivery); !got.Equal(decimal.NewFromInt(2600)) {
		t.Errorf("expected 2600, got %s", got)
	}
	if got := FinalTotal(cartTotal, decimal.Zero); !got.Equal(cartTotal) {
		t.Errorf("expected cart total unchanged, got %s", got)
	}
}
