package enrichment

import (
	"fmt"
	"math"

	"ssea/domain/core"
)

// WeightMethod selects how a rank's weight contributes a step to the running
// sum. The set is closed; every value is validated by ParseWeightMethod.
type WeightMethod int

const (
	Unweighted WeightMethod = iota
	Weighted
	WeightedP05
	WeightedP15
	WeightedP2
)

var weightMethodNames = [...]string{
	Unweighted:  "unweighted",
	Weighted:    "weighted",
	WeightedP05: "weighted_p0.5",
	WeightedP15: "weighted_p1.5",
	WeightedP2:  "weighted_p2",
}

var weightMethodPowers = [...]float64{
	Unweighted:  0,
	Weighted:    1,
	WeightedP05: 0.5,
	WeightedP15: 1.5,
	WeightedP2:  2,
}

// WeightMethods lists the recognized method names in declaration order
func WeightMethods() []string {
	out := make([]string, len(weightMethodNames))
	copy(out, weightMethodNames[:])
	return out
}

// ParseWeightMethod resolves a method name. The field argument is used to
// name the offending configuration key in the error.
func ParseWeightMethod(field, name string) (WeightMethod, error) {
	for i, n := range weightMethodNames {
		if n == name {
			return WeightMethod(i), nil
		}
	}
	return 0, core.NewInvalidConfigError(field, name,
		fmt.Sprintf("unrecognized weight method (choose from %v)", weightMethodNames))
}

func (m WeightMethod) valid() bool {
	return m >= Unweighted && int(m) < len(weightMethodNames)
}

// String returns the configuration name of the method
func (m WeightMethod) String() string {
	if !m.valid() {
		return fmt.Sprintf("WeightMethod(%d)", int(m))
	}
	return weightMethodNames[m]
}

// Power is the exponent applied to |weight|
func (m WeightMethod) Power() float64 {
	return weightMethodPowers[m]
}

// Contribution is the step size a rank with weight w adds before normalization
func (m WeightMethod) Contribution(w float64) float64 {
	switch m {
	case Unweighted:
		return 1
	case Weighted:
		return math.Abs(w)
	default:
		return math.Pow(math.Abs(w), m.Power())
	}
}

// MarshalText implements encoding.TextMarshaler
func (m WeightMethod) MarshalText() ([]byte, error) {
	if !m.valid() {
		return nil, fmt.Errorf("invalid weight method %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *WeightMethod) UnmarshalText(text []byte) error {
	parsed, err := ParseWeightMethod("weight_method", string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
