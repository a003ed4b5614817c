package enums

import "fmt"

// MobileOperator describes the mobile-money operators accepted for
// wallet payments.
type MobileOperator string

const (
	MobileOperatorOrangeMoney MobileOperator = "ORANGE_MONEY"
	MobileOperatorMTN         MobileOperator = "MTN_MOBILE_MONEY"
	MobileOperatorMoov        MobileOperator = "MOOV_MONEY"
)

var validMobileOperators = []MobileOperator{
	MobileOperatorOrangeMoney,
	MobileOperatorMTN,
	MobileOperatorMoov,
}

// IsValid reports whether the value matches the canonical operator enum.
func (o MobileOperator) IsValid() bool {
	for _, candidate := range validMobileOperators {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseMobileOperator converts the raw string to MobileOperator.
func ParseMobileOperator(value string) (MobileOperator, error) {
	for _, candidate := range validMobileOperators {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid mobile operator %q", value)
}
