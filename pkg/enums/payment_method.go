package enums

import "fmt"

// PaymentMethod records how a sale was settled.
type PaymentMethod string

const (
	PaymentMethodCash      PaymentMethod = "cash"
	PaymentMethodCheck     PaymentMethod = "check"
	PaymentMethodACH       PaymentMethod = "ACH"
	PaymentMethodWire      PaymentMethod = "wire"
	PaymentMethodFinancing PaymentMethod = "financing"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodCheck,
	PaymentMethodACH,
	PaymentMethodWire,
	PaymentMethodFinancing,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
