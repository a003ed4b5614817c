// Package payment settles a submitted order: method selection, wallet
// detail validation, the payment call itself, and receipt retrieval.
package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/sorodev/marketplace-client/internal/api"
	pkgerrors "github.com/sorodev/marketplace-client/pkg/errors"
	"github.com/sorodev/marketplace-client/pkg/enums"
	"github.com/sorodev/marketplace-client/pkg/logger"
	"github.com/sorodev/marketplace-client/pkg/metrics"
	"github.com/sorodev/marketplace-client/pkg/validate"
)

// State is the payment lifecycle for one order.
type State string

const (
	StateAwaitingMethod State = "awaiting_method"
	StatePaying         State = "paying"
	StatePaid           State = "paid"
)

// WalletDetails carries what wallet methods need beyond the order.
type WalletDetails struct {
	PhoneNumber   string               `json:"phoneNumber" validate:"required,numeric,min=8,max=10"`
	AccountHolder string               `json:"accountHolder" validate:"required"`
	Operator      enums.MobileOperator `json:"operator"`
}

// Gateway is the slice of the API client the orchestrator needs.
type Gateway interface {
	GetOrder(ctx context.Context, orderID int64) (*api.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*api.Order, error)
	PayOnDelivery(ctx context.Context, orderID int64) (*api.PaymentResult, error)
	PayWave(ctx context.Context, orderID int64, req api.WavePaymentRequest) (*api.PaymentResult, error)
	PayMobileMoney(ctx context.Context, orderID int64, req api.MobileMoneyPaymentRequest) (*api.PaymentResult, error)
	DownloadReceipt(ctx context.Context, orderID int64) ([]byte, error)
}

// ReceiptWriter persists a downloaded receipt and returns its location.
type ReceiptWriter interface {
	Write(orderID int64, data []byte) (string, error)
}

// Orchestrator settles one order at a time. Loading an already-paid
// order goes straight to the paid state and fetches the receipt
// without another payment call.
type Orchestrator struct {
	mu          sync.Mutex
	state       State
	order       *api.Order
	method      enums.PaymentMethod
	receiptPath string

	gateway  Gateway
	receipts ReceiptWriter
	metrics  *metrics.CheckoutMetrics
	log      *logger.Logger
}

func NewOrchestrator(gateway Gateway, receipts ReceiptWriter, m *metrics.CheckoutMetrics, logg *logger.Logger) (*Orchestrator, error) {
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if receipts == nil {
		return nil, fmt.Errorf("receipt writer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Orchestrator{
		state:    StateAwaitingMethod,
		gateway:  gateway,
		receipts: receipts,
		metrics:  m,
		log:      logg,
	}, nil
}

// State returns the current payment state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Order returns the loaded order, nil before LoadOrder.
func (o *Orchestrator) Order() *api.Order {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.order
}

// Method returns the currently selected payment method.
func (o *Orchestrator) Method() enums.PaymentMethod {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.method
}

// ReceiptPath returns where the receipt was written, empty until one
// has been retrieved.
func (o *Orchestrator) ReceiptPath() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.receiptPath
}

// LoadOrder fetches the order and primes the payment flow. An order
// already marked paid short-circuits to the paid state and retrieves
// the receipt immediately. A pickup order defaults to cash on
// delivery since no wallet step applies.
func (o *Orchestrator) LoadOrder(ctx context.Context, orderID int64) (*api.Order, error) {
	order, err := o.gateway.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return o.primeOrder(ctx, order)
}

// LoadOrderByNumber is LoadOrder keyed by the human-readable number.
func (o *Orchestrator) LoadOrderByNumber(ctx context.Context, orderNumber string) (*api.Order, error) {
	order, err := o.gateway.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	return o.primeOrder(ctx, order)
}

func (o *Orchestrator) primeOrder(ctx context.Context, order *api.Order) (*api.Order, error) {
	o.mu.Lock()
	o.order = order
	o.receiptPath = ""
	if order.IsPaid {
		o.state = StatePaid
	} else {
		o.state = StateAwaitingMethod
		if order.Delivery {
			o.method = ""
		} else {
			o.method = enums.PaymentMethodCashOnDelivery
		}
	}
	alreadyPaid := order.IsPaid
	o.mu.Unlock()

	logCtx := o.log.WithOrderID(ctx, order.ID)
	if alreadyPaid {
		o.log.Info(logCtx, "order already paid, retrieving receipt")
		o.retrieveReceipt(logCtx, order.ID)
	}
	return order, nil
}

// SelectMethod picks the payment method for the loaded order.
func (o *Orchestrator) SelectMethod(method enums.PaymentMethod) error {
	if !method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method").
			WithDetails(map[string]any{"method": string(method)})
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StatePaid {
		return pkgerrors.New(pkgerrors.CodeValidation, "order is already paid")
	}
	o.method = method
	return nil
}

// Pay runs exactly one payment attempt with the selected method. A
// declined payment surfaces the server's message and returns the flow
// to awaiting a method so the buyer can retry or switch.
func (o *Orchestrator) Pay(ctx context.Context, details WalletDetails) error {
	o.mu.Lock()
	switch o.state {
	case StatePaid:
		o.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeValidation, "order is already paid")
	case StatePaying:
		o.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeValidation, "a payment is already in progress")
	}
	if o.order == nil {
		o.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeValidation, "no order loaded")
	}
	method := o.method
	order := o.order
	if method == "" {
		o.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeValidation, "select a payment method")
	}
	if err := validateDetails(method, details); err != nil {
		o.mu.Unlock()
		return err
	}
	o.state = StatePaying
	o.mu.Unlock()

	logCtx := o.log.WithOrderID(ctx, order.ID)
	logCtx = o.log.WithField(logCtx, "method", string(method))

	result, err := o.dispatch(ctx, method, order, details)
	if err == nil && !result.Confirmed() {
		err = pkgerrors.New(pkgerrors.CodePaymentRejected, result.Message)
	}
	if err != nil {
		o.mu.Lock()
		o.state = StateAwaitingMethod
		o.mu.Unlock()
		o.metrics.IncPayment(string(method), "failure")
		o.log.Error(logCtx, "payment failed", err)
		return err
	}

	o.mu.Lock()
	o.state = StatePaid
	o.order.IsPaid = true
	o.mu.Unlock()
	o.metrics.IncPayment(string(method), "success")
	o.log.Info(logCtx, "payment confirmed")

	o.retrieveReceipt(logCtx, order.ID)
	return nil
}

func (o *Orchestrator) dispatch(ctx context.Context, method enums.PaymentMethod, order *api.Order, details WalletDetails) (*api.PaymentResult, error) {
	switch method {
	case enums.PaymentMethodCashOnDelivery:
		return o.gateway.PayOnDelivery(ctx, order.ID)
	case enums.PaymentMethodWave:
		return o.gateway.PayWave(ctx, order.ID, api.WavePaymentRequest{
			OrderID:       order.ID,
			PaymentMethod: method,
			PhoneNumber:   details.PhoneNumber,
			AccountHolder: details.AccountHolder,
			Amount:        order.TotalAmount,
		})
	case enums.PaymentMethodOrangeMoney:
		return o.gateway.PayMobileMoney(ctx, order.ID, api.MobileMoneyPaymentRequest{
			OrderID:       order.ID,
			PhoneNumber:   details.PhoneNumber,
			Operator:      details.Operator,
			AccountHolder: details.AccountHolder,
			Amount:        order.TotalAmount,
		})
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
}

// retrieveReceipt fetches and stores the receipt. Retrieval failure
// never unwinds a settled payment, it is logged and counted only.
func (o *Orchestrator) retrieveReceipt(ctx context.Context, orderID int64) {
	data, err := o.gateway.DownloadReceipt(ctx, orderID)
	if err != nil {
		o.metrics.IncReceipt("failure")
		o.log.Error(ctx, "receipt download failed", err)
		return
	}
	path, err := o.receipts.Write(orderID, data)
	if err != nil {
		o.metrics.IncReceipt("failure")
		o.log.Error(ctx, "receipt write failed", err)
		return
	}
	o.mu.Lock()
	o.receiptPath = path
	o.mu.Unlock()
	o.metrics.IncReceipt("success")
	o.log.Info(o.log.WithField(ctx, "path", path), "receipt saved")
}

func validateDetails(method enums.PaymentMethod, details WalletDetails) error {
	if !method.RequiresWalletDetails() {
		return nil
	}
	if err := validate.Struct(details); err != nil {
		return err
	}
	if method == enums.PaymentMethodOrangeMoney && !details.Operator.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown mobile money operator").
			WithDetails(map[string]any{"operator": string(details.Operator)})
	}
	return nil
}
