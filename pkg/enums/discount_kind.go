package enums

import "fmt"

// DiscountKind determines how a campaign value is applied to a subtotal.
type DiscountKind string

const (
	DiscountKindPercent DiscountKind = "percent"
	DiscountKindFixed   DiscountKind = "fixed"
)

var validDiscountKinds = []DiscountKind{
	DiscountKindPercent,
	DiscountKindFixed,
}

// IsValid reports whether the value is a known DiscountKind.
func (d DiscountKind) IsValid() bool {
	for _, candidate := range validDiscountKinds {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDiscountKind converts raw input into a DiscountKind.
func ParseDiscountKind(value string) (DiscountKind, error) {
	for _, candidate := range validDiscountKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount kind %q", value)
}
