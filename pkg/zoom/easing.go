package zoom

import (
	"math"
	"slices"

	"github.com/matzehuels/ghgmap/pkg/errors"
)

// Easing maps normalized time in [0, 1] to animation progress in [0, 1].
type Easing func(t float64) float64

// Easing names accepted by EasingByName.
const (
	EaseLinear     = "linear"
	EaseQuadInOut  = "quad-in-out"
	EaseCubicInOut = "cubic-in-out"
)

// Linear progresses at a constant rate.
func Linear(t float64) float64 { return clamp01(t) }

// QuadInOut accelerates quadratically through the first half and
// decelerates through the second.
func QuadInOut(t float64) float64 {
	t = clamp01(t) * 2
	if t <= 1 {
		return t * t / 2
	}
	t--
	return (t*(2-t) + 1) / 2
}

// CubicInOut is the cubic version of QuadInOut.
func CubicInOut(t float64) float64 {
	t = clamp01(t) * 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

var easings = map[string]Easing{
	EaseLinear:     Linear,
	EaseQuadInOut:  QuadInOut,
	EaseCubicInOut: CubicInOut,
}

// EasingNames lists the accepted easing names in sorted order.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for n := range easings {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// EasingByName looks up an easing. The empty name selects CubicInOut.
func EasingByName(name string) (Easing, error) {
	if name == "" {
		return CubicInOut, nil
	}
	e, ok := easings[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown easing %q (want one of %v)", name, EasingNames())
	}
	return e, nil
}

func clamp01(t float64) float64 {
	if math.IsNaN(t) {
		return 0
	}
	return math.Max(0, math.Min(1, t))
}
