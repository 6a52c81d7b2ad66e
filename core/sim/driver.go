package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hybridship/powersim/core/component"
	"github.com/hybridship/powersim/core/logger"
	"github.com/hybridship/powersim/core/metrics"
	"github.com/hybridship/powersim/core/pms"
	"github.com/hybridship/powersim/internal/eventbus"
)

// ErrInputShape marks demand or storage series that cannot be simulated.
var ErrInputShape = errors.New("input series shape mismatch")

// UnmetDemandEvent is published when the ideal genset count exceeds the fleet.
type UnmetDemandEvent struct {
	Step      int
	DemandKW  float64
	GensetsOn int
}

// LoadClampedEvent is published when a component load ratio fell outside its
// curve domain and the boundary value was used.
type LoadClampedEvent struct {
	Step      int
	LoadRatio float64
}

// Options configures the optional collaborators of a Driver.
type Options struct {
	// Storage is an optional energy storage chain on one switchboard,
	// driven by the storage power series passed to Run.
	Storage component.BidirectionalConverter
	// Bus receives UnmetDemandEvent and LoadClampedEvent during a run.
	Bus *eventbus.Bus
	Log logger.Logger
}

// Driver iterates a demand series, commits gensets through the PMS controller
// and converts the assigned loads into fuel flow and conversion losses. All
// state lives in the inputs and the returned Result; a Driver can run any
// number of series concurrently.
type Driver struct {
	ctrl    *pms.Controller
	engine  *component.Engine
	storage component.BidirectionalConverter
	bus     *eventbus.Bus
	log     logger.Logger
}

// Result is the assembled output of one simulation run.
type Result struct {
	RunID         string
	DemandKW      []float64
	States        []pms.DispatchState
	PerUnitLoadKW []float64
	RunPoints     []component.RunPoint
	FuelKgPerS    []float64
	Storage       []component.Conversion
	UnmetSteps    int
	ClampedSteps  int
}

// NewDriver validates the collaborators and returns a driver. A storage chain
// must sit on a switchboard the controller's topology knows about.
func NewDriver(ctrl *pms.Controller, engine *component.Engine, opts Options) (*Driver, error) {
	if ctrl == nil || engine == nil {
		return nil, fmt.Errorf("sim: controller and engine are required")
	}
	if opts.Storage != nil {
		sb := opts.Storage.SwitchboardID()
		if _, ok := ctrl.Topology().Switchboards[sb]; !ok {
			return nil, fmt.Errorf("%w: storage on unknown switchboard %d", ErrInputShape, sb)
		}
	}
	log := opts.Log
	if log == nil {
		log = nopLogger{}
	}
	return &Driver{ctrl: ctrl, engine: engine, storage: opts.Storage, bus: opts.Bus, log: log}, nil
}

// Run simulates the demand series. storageKW may be nil; when present it must
// match the demand length and a storage component must be configured. Shape
// problems are rejected before any computation starts.
func (d *Driver) Run(demandKW, storageKW []float64) (*Result, error) {
	if len(demandKW) == 0 {
		return nil, fmt.Errorf("%w: empty demand series", ErrInputShape)
	}
	if storageKW != nil {
		if d.storage == nil {
			return nil, fmt.Errorf("%w: storage series given but no storage component configured", ErrInputShape)
		}
		if len(storageKW) != len(demandKW) {
			return nil, fmt.Errorf("%w: demand has %d steps, storage series %d", ErrInputShape, len(demandKW), len(storageKW))
		}
	}

	res := &Result{
		RunID:         uuid.NewString(),
		DemandKW:      append([]float64(nil), demandKW...),
		States:        d.ctrl.Schedule(demandKW),
		PerUnitLoadKW: make([]float64, len(demandKW)),
		RunPoints:     make([]component.RunPoint, len(demandKW)),
		FuelKgPerS:    make([]float64, len(demandKW)),
	}
	if storageKW != nil {
		res.Storage = make([]component.Conversion, len(demandKW))
	}

	for i, demand := range demandKW {
		state := res.States[i]
		perUnit := 0.0
		if demand > 0 {
			perUnit = demand / float64(state.GensetsOn)
		}
		rp, err := d.engine.RunPointFromPowerKW(perUnit)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		res.PerUnitLoadKW[i] = perUnit
		res.RunPoints[i] = rp
		res.FuelKgPerS[i] = rp.FuelFlowKgPerS * float64(state.GensetsOn)

		clamped := rp.Clamped
		if storageKW != nil {
			conv, err := d.storage.OutputFromInput(storageKW[i])
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			res.Storage[i] = conv
			clamped = clamped || conv.Clamped
		}

		if state.Unmet {
			res.UnmetSteps++
			d.log.Warnf("step %d: demand %.1f kW exceeds fleet capacity with %d gensets", i, demand, state.GensetsOn)
			d.publish(UnmetDemandEvent{Step: i, DemandKW: demand, GensetsOn: state.GensetsOn})
		}
		if clamped {
			res.ClampedSteps++
			d.publish(LoadClampedEvent{Step: i, LoadRatio: rp.LoadRatio})
		}
	}
	d.log.Infof("run %s: %d steps, %d unmet, %d clamped", res.RunID, len(demandKW), res.UnmetSteps, res.ClampedSteps)
	return res, nil
}

func (d *Driver) publish(e eventbus.Event) {
	if d.bus != nil {
		d.bus.Publish(e)
	}
}

// Records converts the result into per-timestep reporting records, stamping
// each step from the given start time and step duration.
func (r *Result) Records(start time.Time, dt time.Duration) []metrics.TimestepRecord {
	records := make([]metrics.TimestepRecord, len(r.DemandKW))
	for i := range r.DemandKW {
		rec := metrics.TimestepRecord{
			RunID:          r.RunID,
			Step:           i,
			Time:           start.Add(time.Duration(i) * dt),
			DemandKW:       r.DemandKW[i],
			GensetsOn:      r.States[i].GensetsOn,
			Unmet:          r.States[i].Unmet,
			LoadRatio:      r.RunPoints[i].LoadRatio,
			FuelKgPerS:     r.FuelKgPerS[i],
			RatioClamped:   r.RunPoints[i].Clamped,
			BSFCGramPerKWh: r.RunPoints[i].BSFCGramPerKWh,
		}
		if r.Storage != nil {
			rec.StorageLossKW = r.Storage[i].LossKW
		}
		records[i] = rec
	}
	return records
}

// Summary aggregates the run for reporting sinks. dt is the timestep length
// used to integrate fuel flow into total mass.
func (r *Result) Summary(dt time.Duration) metrics.RunSummary {
	sum := metrics.RunSummary{
		RunID:        r.RunID,
		Steps:        len(r.DemandKW),
		UnmetSteps:   r.UnmetSteps,
		ClampedSteps: r.ClampedSteps,
		Finished:     time.Now().UTC(),
	}
	if len(r.DemandKW) > 0 {
		sum.PeakDemandKW = r.DemandKW[0]
	}
	for i, fuel := range r.FuelKgPerS {
		sum.TotalFuelKg += fuel * dt.Seconds()
		if r.DemandKW[i] > sum.PeakDemandKW {
			sum.PeakDemandKW = r.DemandKW[i]
		}
	}
	return sum
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
