package component

import "errors"

// ErrConfiguration marks invalid component parameters detected at construction.
var ErrConfiguration = errors.New("invalid component configuration")

// ErrRange marks a power request outside the physically defined domain.
var ErrRange = errors.New("power outside physical range")

// Kind is the closed set of component variants in the power system model.
type Kind int

const (
	KindPowerSource Kind = iota + 1
	KindConsumer
	KindPTIPTO
	KindEnergyStorage
	KindConverter
	KindEngine
	KindShorePower
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindPowerSource:
		return "power_source"
	case KindConsumer:
		return "consumer"
	case KindPTIPTO:
		return "pti_pto"
	case KindEnergyStorage:
		return "energy_storage"
	case KindConverter:
		return "converter"
	case KindEngine:
		return "engine"
	case KindShorePower:
		return "shore_power"
	default:
		return "unknown"
	}
}

func (k Kind) valid() bool {
	return k >= KindPowerSource && k <= KindShorePower
}

// Conversion is the result of translating power across one component.
// Terminal power is measured at the electrical connection point, internal
// power on the physical side. Positive terminal power means power drawn from
// the component, negative means power delivered to it.
type Conversion struct {
	TerminalKW float64
	InternalKW float64
	LossKW     float64
	// Clamped reports that the load ratio fell outside the efficiency
	// curve domain and the boundary value was used.
	Clamped bool
}

// BidirectionalConverter translates power between a component's electrical
// terminal and its physical internal side, in both directions.
type BidirectionalConverter interface {
	Kind() Kind
	SwitchboardID() int
	// OutputFromInput converts terminal power to internal power.
	OutputFromInput(terminalKW float64) (Conversion, error)
	// InputFromOutput is the exact inverse of OutputFromInput.
	InputFromOutput(internalKW float64) (Conversion, error)
}

// OutputSeries applies OutputFromInput elementwise over a terminal power
// series. The branch taken for each element depends only on its own sign.
func OutputSeries(c BidirectionalConverter, terminalKW []float64) ([]Conversion, error) {
	out := make([]Conversion, len(terminalKW))
	for i, p := range terminalKW {
		conv, err := c.OutputFromInput(p)
		if err != nil {
			return nil, err
		}
		out[i] = conv
	}
	return out, nil
}

// InputSeries applies InputFromOutput elementwise over an internal power series.
func InputSeries(c BidirectionalConverter, internalKW []float64) ([]Conversion, error) {
	out := make([]Conversion, len(internalKW))
	for i, p := range internalKW {
		conv, err := c.InputFromOutput(p)
		if err != nil {
			return nil, err
		}
		out[i] = conv
	}
	return out, nil
}
