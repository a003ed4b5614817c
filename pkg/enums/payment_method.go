package enums

import "fmt"

// PaymentMethod describes the supported ways of paying an order. The
// raw values are the wire identifiers the payment API expects.
type PaymentMethod string

const (
	PaymentMethodCashOnDelivery PaymentMethod = "LIVRAISON"
	PaymentMethodWave           PaymentMethod = "WAVE"
	PaymentMethodOrangeMoney    PaymentMethod = "ORANGE_MONEY"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCashOnDelivery,
	PaymentMethodWave,
	PaymentMethodOrangeMoney,
}

// IsValid reports whether the value matches the canonical payment method enum.
func (m PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// RequiresWalletDetails reports whether the method needs a phone number,
// operator and account holder.
func (m PaymentMethod) RequiresWalletDetails() bool {
	return m == PaymentMethodWave || m == PaymentMethodOrangeMoney
}

// ParsePaymentMethod converts the raw string to PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
