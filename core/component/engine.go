package component

import (
	"fmt"

	"github.com/hybridship/powersim/core/curve"
)

// EngineKind distinguishes the installed engine configurations.
type EngineKind int

const (
	EngineMain EngineKind = iota + 1
	EngineAuxiliary
	EngineMainWithGearbox
)

// String returns the engine kind name.
func (k EngineKind) String() string {
	switch k {
	case EngineMain:
		return "main_engine"
	case EngineAuxiliary:
		return "auxiliary_engine"
	case EngineMainWithGearbox:
		return "main_engine_with_gearbox"
	default:
		return "unknown"
	}
}

// gPerKWhToKgPerS converts power times BSFC into a fuel mass flow.
const gPerKWhToKgPerS = 3.6e6

// Engine is a fuel-burning prime mover characterised by a BSFC curve.
type Engine struct {
	Name          string
	RatedPowerKW  float64
	RatedSpeedRPM float64
	BSFC          *curve.Curve
	EngineKind    EngineKind
}

// RunPoint is the operating point derived for a requested output power. It is
// recomputed on every call and never cached.
type RunPoint struct {
	LoadRatio      float64
	BSFCGramPerKWh float64
	FuelFlowKgPerS float64
	// Clamped reports that the load ratio fell outside the BSFC curve
	// domain and the boundary value was used.
	Clamped bool
}

// NewEngine validates the engine configuration.
func NewEngine(name string, ratedPowerKW, ratedSpeedRPM float64, bsfc *curve.Curve, kind EngineKind) (*Engine, error) {
	if ratedPowerKW <= 0 {
		return nil, fmt.Errorf("%w: rated power %.2f kW must be positive for %s", ErrConfiguration, ratedPowerKW, name)
	}
	if ratedSpeedRPM <= 0 {
		return nil, fmt.Errorf("%w: rated speed %.2f rpm must be positive for %s", ErrConfiguration, ratedSpeedRPM, name)
	}
	if bsfc == nil {
		return nil, fmt.Errorf("%w: bsfc curve required for %s", ErrConfiguration, name)
	}
	if kind < EngineMain || kind > EngineMainWithGearbox {
		return nil, fmt.Errorf("%w: unknown engine kind for %s", ErrConfiguration, name)
	}
	return &Engine{Name: name, RatedPowerKW: ratedPowerKW, RatedSpeedRPM: ratedSpeedRPM, BSFC: bsfc, EngineKind: kind}, nil
}

// Kind returns the engine variant.
func (e *Engine) Kind() Kind { return KindEngine }

// RunPointFromPowerKW computes the operating point for the requested shaft
// output power. Load ratios outside the BSFC curve domain clamp to the
// boundary value; negative power is rejected since the engine cannot absorb
// power in this model.
func (e *Engine) RunPointFromPowerKW(powerKW float64) (RunPoint, error) {
	if powerKW < 0 {
		return RunPoint{}, fmt.Errorf("%w: engine %s cannot absorb %.2f kW", ErrRange, e.Name, powerKW)
	}
	ratio := powerKW / e.RatedPowerKW
	bsfc, clamped := e.BSFC.Value(ratio)
	return RunPoint{
		LoadRatio:      ratio,
		BSFCGramPerKWh: bsfc,
		FuelFlowKgPerS: powerKW * bsfc / gPerKWhToKgPerS,
		Clamped:        clamped,
	}, nil
}

// RunPointsFromPowerKW computes operating points for a power series.
func (e *Engine) RunPointsFromPowerKW(powerKW []float64) ([]RunPoint, error) {
	out := make([]RunPoint, len(powerKW))
	for i, p := range powerKW {
		rp, err := e.RunPointFromPowerKW(p)
		if err != nil {
			return nil, err
		}
		out[i] = rp
	}
	return out, nil
}
