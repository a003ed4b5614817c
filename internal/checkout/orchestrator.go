// Package checkout validates the cart and buyer details and submits
// the order, consulting the rate-limit gate before any network call.
package checkout

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/sorodev/marketplace-client/internal/api"
	"github.com/sorodev/marketplace-client/internal/cart"
	"github.com/sorodev/marketplace-client/internal/pricing"
	"github.com/sorodev/marketplace-client/internal/ratelimit"
	pkgerrors "github.com/sorodev/marketplace-client/pkg/errors"
	"github.com/sorodev/marketplace-client/pkg/logger"
	"github.com/sorodev/marketplace-client/pkg/metrics"
	"github.com/sorodev/marketplace-client/pkg/validate"
)

// State is the orchestrator's submission lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// BuyerInput is what the buyer fills in before submitting.
type BuyerInput struct {
	LastName  string `json:"lastName" validate:"required"`
	FirstName string `json:"firstName"`
	Phone     string `json:"phone" validate:"required,numeric,min=8,max=10"`
	Email     string `json:"email" validate:"omitempty,email"`
	Address   string `json:"address"`
	City      string `json:"city"`
}

// Input is one submission attempt: the buyer, whether delivery was
// requested, and the zone selection resolved against the loaded zones.
type Input struct {
	Buyer          BuyerInput
	Delivery       bool
	SelectedZoneID int64
	Zones          []api.DeliveryZone
}

// Result reports a successful submission.
type Result struct {
	OrderID int64
}

// Cart is the slice of the cart store the orchestrator needs.
type Cart interface {
	Items() []cart.Item
	Total() decimal.Decimal
	IsEmpty() bool
	Clear(ctx context.Context) error
}

// OrderCreator submits the order and returns the created identifier.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req api.OrderRequest) (int64, error)
}

// Orchestrator drives one submission at a time. A second Submit while
// one is in flight is refused without touching the network.
type Orchestrator struct {
	mu    sync.Mutex
	state State

	cart    Cart
	orders  OrderCreator
	gate    *ratelimit.Coordinator
	metrics *metrics.CheckoutMetrics
	log     *logger.Logger
}

func NewOrchestrator(cartStore Cart, orders OrderCreator, gate *ratelimit.Coordinator, m *metrics.CheckoutMetrics, logg *logger.Logger) (*Orchestrator, error) {
	if cartStore == nil {
		return nil, fmt.Errorf("cart required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order creator required")
	}
	if gate == nil {
		return nil, fmt.Errorf("rate limit coordinator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Orchestrator{
		state:   StateIdle,
		cart:    cartStore,
		orders:  orders,
		gate:    gate,
		metrics: m,
		log:     logg,
	}, nil
}

// State returns the current submission state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Validate checks the submission locally without any network call.
// Order of checks: cart contents first, then delivery selection, then
// buyer details.
func (o *Orchestrator) Validate(input Input) error {
	items := o.cart.Items()
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	entrepots := cart.EntrepotIDs(items)
	if len(entrepots) > 1 {
		return pkgerrors.New(pkgerrors.CodeValidation,
			"cart holds items from more than one warehouse, order one warehouse at a time").
			WithDetails(map[string]any{"entrepotIds": entrepots})
	}
	if input.Delivery {
		if input.SelectedZoneID == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "select a delivery zone")
		}
		if pricing.ZoneByID(input.Zones, input.SelectedZoneID) == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "selected delivery zone is no longer available")
		}
	}
	return validate.Struct(input.Buyer)
}

// Submit runs one full submission attempt. The rate-limit gate is
// consulted before validation and before any request leaves the
// process. On success the cart is cleared exactly once.
func (o *Orchestrator) Submit(ctx context.Context, input Input) (*Result, error) {
	o.mu.Lock()
	if o.state == StateValidating || o.state == StateSubmitting {
		o.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "an order submission is already in progress")
	}
	o.state = StateValidating
	o.mu.Unlock()

	result, err := o.submit(ctx, input)

	o.mu.Lock()
	if err != nil {
		o.state = StateFailed
	} else {
		o.state = StateSucceeded
	}
	o.mu.Unlock()
	return result, err
}

func (o *Orchestrator) submit(ctx context.Context, input Input) (*Result, error) {
	if err := o.gate.CheckSubmission(); err != nil {
		o.metrics.IncBlocked(blockReason(err))
		o.log.Warn(ctx, "order submission blocked by rate limit gate")
		return nil, err
	}

	if err := o.Validate(input); err != nil {
		o.metrics.IncSubmission("validation_failed")
		return nil, err
	}

	o.mu.Lock()
	o.state = StateSubmitting
	o.mu.Unlock()

	req := o.buildRequest(input)
	logCtx := o.log.WithEntrepotID(ctx, req.EntrepotID)

	orderID, err := o.orders.CreateOrder(ctx, req)
	if err != nil {
		o.metrics.IncSubmission(submissionOutcome(err))
		o.log.Error(logCtx, "order submission failed", err)
		return nil, err
	}

	o.metrics.IncSubmission("success")
	logCtx = o.log.WithOrderID(logCtx, orderID)
	o.log.Info(logCtx, "order submitted")

	if err := o.cart.Clear(ctx); err != nil {
		// The order exists server-side; a persistence hiccup while
		// clearing must not surface as a submission failure.
		o.log.Error(logCtx, "failed to clear cart after submission", err)
	}
	return &Result{OrderID: orderID}, nil
}

func (o *Orchestrator) buildRequest(input Input) api.OrderRequest {
	items := o.cart.Items()
	cartTotal := o.cart.Total()

	req := api.OrderRequest{
		EntrepotID:      cart.EntrepotIDs(items)[0],
		CartItems:       items,
		Delivery:        input.Delivery,
		ClientLastName:  input.Buyer.LastName,
		ClientFirstName: input.Buyer.FirstName,
		ClientPhone:     input.Buyer.Phone,
		ClientEmail:     input.Buyer.Email,
		ClientAddress:   input.Buyer.Address,
		ClientCity:      input.Buyer.City,
		TotalAmount:     cartTotal,
	}
	if input.Delivery {
		if zone := pricing.ZoneByID(input.Zones, input.SelectedZoneID); zone != nil {
			req.DeliveryZone = zone.Zone
			req.DeliveryDescription = zone.Description
			req.DeliveryPrice = zone.Price
			req.TotalAmount = pricing.FinalTotal(cartTotal, zone.Price)
		}
	}
	return req
}

// Reset returns a finished orchestrator to idle so a new submission
// can start. A submission in flight is left alone.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateSubmitting {
		o.state = StateIdle
	}
}

func blockReason(err error) string {
	switch {
	case pkgerrors.HasCode(err, pkgerrors.CodeCaptchaRequired):
		return "captcha_required"
	case pkgerrors.HasCode(err, pkgerrors.CodeRateLimitBlocked):
		return "rate_limited"
	default:
		return "unknown"
	}
}

func submissionOutcome(err error) string {
	switch {
	case pkgerrors.HasCode(err, pkgerrors.CodeRateLimited):
		return "rate_limited"
	case pkgerrors.HasCode(err, pkgerrors.CodeOrderRejected):
		return "rejected"
	case pkgerrors.HasCode(err, pkgerrors.CodeMalformedResponse):
		return "malformed_response"
	default:
		return "transport_error"
	}
}
