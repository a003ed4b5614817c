package api

import (
	"github.com/shopspring/decimal"
	"github.com/sorodev/marketplace-client/internal/cart"
	"github.com/sorodev/marketplace-client/pkg/enums"
)

func init() {
	// The commerce API exchanges amounts as bare JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Entrepot is a fulfillment warehouse.
type Entrepot struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"nom"`
	Location string `json:"localisation"`
	City     string `json:"ville"`
	Phone    string `json:"telephone,omitempty"`
}

// Product is a purchasable good scoped to one warehouse.
type Product struct {
	ID                int64           `json:"id"`
	Code              string          `json:"code"`
	Name              string          `json:"nom"`
	Description       string          `json:"description"`
	UnitPrice         decimal.Decimal `json:"prixUnitaire"`
	ImagePath         *string         `json:"imagePath,omitempty"`
	EntrepotID        int64           `json:"entrepotId"`
	EntrepotName      string          `json:"entrepotNom"`
	QuantityAvailable decimal.Decimal `json:"quantityAvailable"`
}

// DeliveryZone is a priced delivery region for one warehouse.
type DeliveryZone struct {
	ID          int64           `json:"id"`
	Zone        string          `json:"zone"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// OrderRequest is the order-creation payload.
type OrderRequest struct {
	EntrepotID          int64           `json:"entrepotId"`
	CartItems           []cart.Item     `json:"cartItems"`
	Delivery            bool            `json:"delivery"`
	ClientLastName      string          `json:"clientNom"`
	ClientFirstName     string          `json:"clientPrenom,omitempty"`
	ClientPhone         string          `json:"clientTelephone"`
	ClientEmail         string          `json:"clientEmail,omitempty"`
	ClientAddress       string          `json:"clientAdresse,omitempty"`
	ClientCity          string          `json:"clientVille,omitempty"`
	DeliveryZone        string          `json:"deliveryZone,omitempty"`
	DeliveryDescription string          `json:"deliveryDescription,omitempty"`
	DeliveryPrice       decimal.Decimal `json:"deliveryPrice"`
	TotalAmount         decimal.Decimal `json:"totalAmount"`
}

// Order is the read-only projection of a created order.
type Order struct {
	ID          int64             `json:"id"`
	OrderNumber string            `json:"numeroCommande"`
	CreatedAt   string            `json:"dateCommande"`
	TotalAmount decimal.Decimal   `json:"totalAmount"`
	Status      enums.OrderStatus `json:"statut"`
	Delivery    bool              `json:"delivery"`
	IsPaid      bool              `json:"isPaid"`
}

// MobileMoneyPaymentRequest is the mobile-money payment payload.
type MobileMoneyPaymentRequest struct {
	OrderID       int64                `json:"orderId"`
	PhoneNumber   string               `json:"numeroTelephone"`
	Operator      enums.MobileOperator `json:"operateur"`
	AccountHolder string               `json:"titulaire"`
	Amount        decimal.Decimal      `json:"montant"`
	Description   string               `json:"description,omitempty"`
}

// WavePaymentRequest is the Wave payment payload.
type WavePaymentRequest struct {
	OrderID       int64               `json:"orderId"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
	PhoneNumber   string              `json:"numeroTelephone"`
	AccountHolder string              `json:"titulaire"`
	Amount        decimal.Decimal     `json:"montant"`
	Description   string              `json:"description,omitempty"`
}

// PaymentResult is what the payment endpoints answer. Success is a
// pointer because some backends omit the flag entirely; callers treat
// a missing flag as a declined payment.
type PaymentResult struct {
	Success *bool  `json:"success"`
	Message string `json:"message,omitempty"`
}

// Confirmed reports whether the backend confirmed the payment.
func (r *PaymentResult) Confirmed() bool {
	return r != nil && r.Success != nil && *r.Success
}
