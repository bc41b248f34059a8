package enums

import "fmt"

// ProductFormat identifies the retail format a cart line was added in.
// Equipment and accessories use the unit format; by long-standing admin
// convention their price lives in the product's 300g price column.
type ProductFormat string

const (
	ProductFormatPack300 ProductFormat = "300g"
	ProductFormatBag1Kg  ProductFormat = "1kg"
	ProductFormatUnit    ProductFormat = "unit"
)

var validProductFormats = []ProductFormat{
	ProductFormatPack300,
	ProductFormatBag1Kg,
	ProductFormatUnit,
}

// WeightKg returns the shipped coffee weight contributed by one unit of this
// format. Unit items contribute no coffee weight.
func (p ProductFormat) WeightKg() float64 {
	switch p {
	case ProductFormatPack300:
		return 0.3
	case ProductFormatBag1Kg:
		return 1.0
	default:
		return 0
	}
}

// String implements fmt.Stringer.
func (p ProductFormat) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductFormat.
func (p ProductFormat) IsValid() bool {
	for _, candidate := range validProductFormats {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductFormat converts raw input into a ProductFormat.
func ParseProductFormat(value string) (ProductFormat, error) {
	for _, candidate := range validProductFormats {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product format %q", value)
}
