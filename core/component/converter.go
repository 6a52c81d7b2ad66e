package component

import (
	"fmt"
	"math"

	"github.com/hybridship/powersim/core/curve"
)

// PowerConversion is a generic bidirectional converter (frequency converter,
// rectifier, transformer, PTI/PTO stage) with a load-dependent efficiency.
type PowerConversion struct {
	Name         string
	RatedPowerKW float64
	Switchboard  int
	Efficiency   *curve.Curve

	kind Kind
}

// NewPowerConversion validates the configuration and returns the converter.
func NewPowerConversion(name string, ratedPowerKW float64, switchboard int, eff *curve.Curve, kind Kind) (*PowerConversion, error) {
	if ratedPowerKW <= 0 {
		return nil, fmt.Errorf("%w: rated power %.2f kW must be positive for %s", ErrConfiguration, ratedPowerKW, name)
	}
	if eff == nil {
		return nil, fmt.Errorf("%w: efficiency curve required for %s", ErrConfiguration, name)
	}
	if !kind.valid() {
		return nil, fmt.Errorf("%w: unknown component kind for %s", ErrConfiguration, name)
	}
	if err := checkMonotonicConversion(name, eff); err != nil {
		return nil, err
	}
	return &PowerConversion{Name: name, RatedPowerKW: ratedPowerKW, Switchboard: switchboard, Efficiency: eff, kind: kind}, nil
}

// checkMonotonicConversion rejects efficiency curves under which converted
// power is not strictly increasing in terminal power, so every internal power
// has exactly one terminal preimage. On a linear segment from (r1,e1) to
// (r2,e2), t/eff stays strictly increasing iff e1*r2 > e2*r1 and t*eff iff
// e2*(r2-r1) + (e2-e1)*r2 > 0; only one of the two can bind depending on the
// curve direction.
func checkMonotonicConversion(name string, eff *curve.Curve) error {
	ratios, values := eff.Points()
	for i := 1; i < len(ratios); i++ {
		r1, r2 := ratios[i-1], ratios[i]
		e1, e2 := values[i-1], values[i]
		if e1*r2 <= e2*r1 || e2*(r2-r1)+(e2-e1)*r2 <= 0 {
			return fmt.Errorf("%w: efficiency changes too steeply between load ratios %.4f and %.4f of %s for conversion to stay monotonic", ErrConfiguration, r1, r2, name)
		}
	}
	return nil
}

// Kind returns the component variant.
func (p *PowerConversion) Kind() Kind { return p.kind }

// SwitchboardID returns the switchboard the converter is connected to.
func (p *PowerConversion) SwitchboardID() int { return p.Switchboard }

// OutputFromInput converts terminal power to internal power. Positive terminal
// power is drawn from the component, so the internal side must supply the
// losses (divide by efficiency); negative terminal power flows into the
// component and losses are taken before the internal side (multiply).
func (p *PowerConversion) OutputFromInput(terminalKW float64) (Conversion, error) {
	eff, clamped := p.Efficiency.Value(math.Abs(terminalKW) / p.RatedPowerKW)
	var internal float64
	if terminalKW >= 0 {
		internal = terminalKW / eff
	} else {
		internal = terminalKW * eff
	}
	return Conversion{
		TerminalKW: terminalKW,
		InternalKW: internal,
		LossKW:     math.Abs(internal - terminalKW),
		Clamped:    clamped,
	}, nil
}

// InputFromOutput inverts OutputFromInput: it finds the terminal power whose
// forward conversion yields the requested internal power. Because the
// efficiency depends on the terminal load ratio, the inverse is solved by
// bisection over the forward map rather than a single curve lookup. The
// forward map is strictly increasing for every curve accepted at
// construction, so the preimage is unique and round trips hold to floating
// tolerance.
func (p *PowerConversion) InputFromOutput(internalKW float64) (Conversion, error) {
	if internalKW == 0 {
		return p.OutputFromInput(0)
	}

	lo, hi := p.bracket(internalKW)
	terminal := 0.0
	for i := 0; i < 128; i++ {
		terminal = 0.5 * (lo + hi)
		conv, err := p.OutputFromInput(terminal)
		if err != nil {
			return Conversion{}, err
		}
		if conv.InternalKW < internalKW {
			lo = terminal
		} else {
			hi = terminal
		}
		if math.Abs(conv.InternalKW-internalKW) <= 1e-12*math.Max(1, math.Abs(internalKW)) {
			break
		}
	}
	conv, err := p.OutputFromInput(terminal)
	if err != nil {
		return Conversion{}, err
	}
	conv.InternalKW = internalKW
	conv.LossKW = math.Abs(internalKW - conv.TerminalKW)
	return conv, nil
}

// bracket returns a terminal power interval containing the inverse solution.
// Efficiency is bounded by (0,1], so |terminal| lies between minEff*|internal|
// and |internal|/minEff.
func (p *PowerConversion) bracket(internalKW float64) (lo, hi float64) {
	_, values := p.Efficiency.Points()
	minEff := values[0]
	for _, v := range values[1:] {
		if v < minEff {
			minEff = v
		}
	}
	bound := math.Abs(internalKW) / minEff
	if internalKW > 0 {
		return 0, bound
	}
	return -bound, 0
}
