// Package pricing resolves delivery fees and order totals from the
// zones a warehouse serves.
package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sorodev/marketplace-client/internal/api"
	"github.com/sorodev/marketplace-client/pkg/logger"
)

// ZoneLister fetches delivery zones for a warehouse.
type ZoneLister interface {
	ListDeliveryPrices(ctx context.Context, entrepotID int64) ([]api.DeliveryZone, error)
}

// Resolver loads the zones a warehouse delivers to and prices an order
// against a selected zone. An empty zone list means delivery is not
// available for the warehouse, which is a valid state and not an error.
type Resolver struct {
	zones ZoneLister
	log   *logger.Logger
}

func NewResolver(zones ZoneLister, logg *logger.Logger) (*Resolver, error) {
	if zones == nil {
		return nil, fmt.Errorf("zone lister required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Resolver{zones: zones, log: logg}, nil
}

// LoadZones fetches the delivery zones for entrepotID. A transport or
// decode failure propagates to the caller so it is never mistaken for
// a warehouse with no delivery coverage.
func (r *Resolver) LoadZones(ctx context.Context, entrepotID int64) ([]api.DeliveryZone, error) {
	zones, err := r.zones.ListDeliveryPrices(ctx, entrepotID)
	if err != nil {
		return nil, err
	}
	logCtx := r.log.WithEntrepotID(ctx, entrepotID)
	r.log.Debug(r.log.WithField(logCtx, "zone_count", len(zones)), "delivery zones loaded")
	return zones, nil
}

// ResolvePrice returns the delivery fee for the selected zone, or zero
// when no zone is selected or the selection no longer exists in the
// list.
func ResolvePrice(zones []api.DeliveryZone, selectedZoneID int64) decimal.Decimal {
	if selectedZoneID == 0 {
		return decimal.Zero
	}
	for _, zone := range zones {
		if zone.ID == selectedZoneID {
			return zone.Price
		}
	}
	return decimal.Zero
}

// ZoneByID returns the selected zone, or nil when none matches.
func ZoneByID(zones []api.DeliveryZone, selectedZoneID int64) *api.DeliveryZone {
	for i := range zones {
		if zones[i].ID == selectedZoneID {
			return &zones[i]
		}
	}
	return nil
}

// FinalTotal is the amount the buyer owes: the cart total plus the
// delivery fee when one applies.
func FinalTotal(cartTotal, deliveryPrice decimal.Decimal) decimal.Decimal {
	return cartTotal.Add(deliveryPrice)
}
