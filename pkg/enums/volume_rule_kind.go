package enums

import "fmt"

// VolumeRuleKind selects which cart metric a volume discount rule keys off.
type VolumeRuleKind string

const (
	VolumeRuleKindPacks  VolumeRuleKind = "packs"
	VolumeRuleKindWeight VolumeRuleKind = "weight"
)

var validVolumeRuleKinds = []VolumeRuleKind{
	VolumeRuleKindPacks,
	VolumeRuleKindWeight,
}

// String implements fmt.Stringer.
func (v VolumeRuleKind) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VolumeRuleKind.
func (v VolumeRuleKind) IsValid() bool {
	for _, candidate := range validVolumeRuleKinds {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVolumeRuleKind converts raw input into a VolumeRuleKind.
func ParseVolumeRuleKind(value string) (VolumeRuleKind, error) {
	for _, candidate := range validVolumeRuleKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid volume rule kind %q", value)
}
