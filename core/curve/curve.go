package curve

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// ErrConfiguration marks an invalid curve definition detected at construction.
var ErrConfiguration = errors.New("invalid curve configuration")

// Direction describes how efficiency values evolve with increasing load ratio.
type Direction int

const (
	// DirectionNone is used for curves without a monotonicity requirement,
	// such as BSFC curves which are typically U-shaped.
	DirectionNone Direction = iota
	DirectionIncreasing
	DirectionDecreasing
)

// String returns a human readable direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIncreasing:
		return "increasing"
	case DirectionDecreasing:
		return "decreasing"
	default:
		return "none"
	}
}

// Curve is an immutable piecewise-linear lookup table mapping load ratio to a
// component characteristic: efficiency in (0,1] or BSFC in g/kWh. Lookups
// outside the defined load-ratio domain clamp to the nearest endpoint value.
type Curve struct {
	ratios []float64
	values []float64
	pl     interp.PiecewiseLinear
	dir    Direction
}

// NewEfficiency builds an efficiency curve. Values must be in (0,1] and
// strictly monotonic; the direction is fixed from the data at construction.
func NewEfficiency(ratios, values []float64) (*Curve, error) {
	if err := validatePoints(ratios, values); err != nil {
		return nil, err
	}
	dir := DirectionIncreasing
	for i, v := range values {
		if v <= 0 || v > 1 {
			return nil, fmt.Errorf("%w: efficiency %.4f at index %d outside (0,1]", ErrConfiguration, v, i)
		}
		if i == 0 {
			continue
		}
		if values[i] == values[i-1] {
			return nil, fmt.Errorf("%w: duplicate efficiency value at index %d", ErrConfiguration, i)
		}
		step := DirectionIncreasing
		if values[i] < values[i-1] {
			step = DirectionDecreasing
		}
		if i == 1 {
			dir = step
		} else if step != dir {
			return nil, fmt.Errorf("%w: efficiency values not strictly %s at index %d", ErrConfiguration, dir, i)
		}
	}
	return newCurve(ratios, values, dir)
}

// NewBSFC builds a brake-specific fuel consumption curve. Values must be
// positive; no monotonicity is required.
func NewBSFC(ratios, values []float64) (*Curve, error) {
	if err := validatePoints(ratios, values); err != nil {
		return nil, err
	}
	for i, v := range values {
		if v <= 0 {
			return nil, fmt.Errorf("%w: bsfc %.2f at index %d must be positive", ErrConfiguration, v, i)
		}
	}
	return newCurve(ratios, values, DirectionNone)
}

func validatePoints(ratios, values []float64) error {
	if len(ratios) != len(values) {
		return fmt.Errorf("%w: %d load ratios vs %d values", ErrConfiguration, len(ratios), len(values))
	}
	if len(ratios) < 2 {
		return fmt.Errorf("%w: at least two points required", ErrConfiguration)
	}
	for i, r := range ratios {
		if r < 0 || r > 1 {
			return fmt.Errorf("%w: load ratio %.4f at index %d outside [0,1]", ErrConfiguration, r, i)
		}
		if i > 0 && r <= ratios[i-1] {
			return fmt.Errorf("%w: load ratios not strictly increasing at index %d", ErrConfiguration, i)
		}
	}
	return nil
}

func newCurve(ratios, values []float64, dir Direction) (*Curve, error) {
	c := &Curve{
		ratios: append([]float64(nil), ratios...),
		values: append([]float64(nil), values...),
		dir:    dir,
	}
	if err := c.pl.Fit(c.ratios, c.values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return c, nil
}

// Value interpolates the curve at the given load ratio. Ratios outside the
// curve domain clamp to the boundary breakpoint value. The second return
// reports whether clamping occurred.
func (c *Curve) Value(loadRatio float64) (float64, bool) {
	lo, hi := c.Domain()
	clamped := false
	if loadRatio < lo {
		loadRatio = lo
		clamped = true
	} else if loadRatio > hi {
		loadRatio = hi
		clamped = true
	}
	return c.pl.Predict(loadRatio), clamped
}

// Domain returns the lowest and highest defined load ratio.
func (c *Curve) Domain() (lo, hi float64) {
	return c.ratios[0], c.ratios[len(c.ratios)-1]
}

// Direction returns the monotonic direction fixed at construction.
func (c *Curve) Direction() Direction { return c.dir }

// Points returns copies of the breakpoint slices.
func (c *Curve) Points() (ratios, values []float64) {
	return append([]float64(nil), c.ratios...), append([]float64(nil), c.values...)
}
