package enums

import "fmt"

// GrindOption is the grind preference captured at checkout.
type GrindOption string

const (
	GrindOptionBeans    GrindOption = "beans"
	GrindOptionEspresso GrindOption = "espresso"
	GrindOptionFilter   GrindOption = "filter"
	GrindOptionTurka    GrindOption = "turka"
)

var validGrindOptions = []GrindOption{
	GrindOptionBeans,
	GrindOptionEspresso,
	GrindOptionFilter,
	GrindOptionTurka,
}

// String implements fmt.Stringer.
func (g GrindOption) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GrindOption.
func (g GrindOption) IsValid() bool {
	for _, candidate := range validGrindOptions {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGrindOption converts raw input into a GrindOption.
func ParseGrindOption(value string) (GrindOption, error) {
	for _, candidate := range validGrindOptions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid grind option %q", value)
}
