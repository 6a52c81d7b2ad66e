package sim

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/hybridship/powersim/core/component"
	"github.com/hybridship/powersim/core/curve"
	"github.com/hybridship/powersim/core/pms"
	"github.com/hybridship/powersim/internal/eventbus"
)

func testController(t *testing.T) *pms.Controller {
	t.Helper()
	ctrl, err := pms.NewController(pms.Topology{
		Switchboards:    map[int]int{1: 1, 2: 2},
		BusTieCount:     1,
		RatedPowerKW:    1000,
		MaxLoadFraction: 0.8,
	})
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	return ctrl
}

func testEngine(t *testing.T) *component.Engine {
	t.Helper()
	bsfc, err := curve.NewBSFC([]float64{0.1, 0.5, 1}, []float64{220, 190, 200})
	if err != nil {
		t.Fatalf("bsfc: %v", err)
	}
	e, err := component.NewEngine("genset", 1000, 900, bsfc, component.EngineAuxiliary)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return e
}

func TestDriverEndToEnd(t *testing.T) {
	drv, err := NewDriver(testController(t), testEngine(t), Options{})
	if err != nil {
		t.Fatalf("driver: %v", err)
	}
	demand := []float64{-100, 0, 500, 1500, 1999, 2500, 3500}
	res, err := drv.Run(demand, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	wantCounts := []int{1, 1, 1, 2, 3, 3, 3}
	for i, st := range res.States {
		if st.GensetsOn != wantCounts[i] {
			t.Fatalf("step %d: %d gensets, want %d", i, st.GensetsOn, wantCounts[i])
		}
	}
	if res.UnmetSteps != 2 {
		t.Fatalf("expected 2 unmet steps got %d", res.UnmetSteps)
	}
	if res.RunID == "" {
		t.Fatalf("expected run id")
	}
	// idle timesteps burn no fuel and load 500/1 kW burns 500*190/3.6e6 per unit
	if res.FuelKgPerS[0] != 0 || res.FuelKgPerS[1] != 0 {
		t.Fatalf("expected zero fuel at idle, got %v and %v", res.FuelKgPerS[0], res.FuelKgPerS[1])
	}
	want := 500 * 190.0 / 3.6e6
	if math.Abs(res.FuelKgPerS[2]-want) > 1e-12 {
		t.Fatalf("expected %v got %v", want, res.FuelKgPerS[2])
	}
	for i, f := range res.FuelKgPerS {
		if f < 0 {
			t.Fatalf("step %d: negative fuel flow %v", i, f)
		}
	}
}

func TestDriverDeterministic(t *testing.T) {
	drv, err := NewDriver(testController(t), testEngine(t), Options{})
	if err != nil {
		t.Fatalf("driver: %v", err)
	}
	demand := []float64{200, 900, 1600, 2400}
	a, err := drv.Run(demand, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	b, err := drv.Run(demand, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for i := range demand {
		if a.FuelKgPerS[i] != b.FuelKgPerS[i] || a.States[i].GensetsOn != b.States[i].GensetsOn {
			t.Fatalf("step %d differs between identical runs", i)
		}
	}
}

func TestDriverStorageSeries(t *testing.T) {
	battery, err := component.NewBattery("ess", 1000, 0.9, 1.0, 1, 1, 2)
	if err != nil {
		t.Fatalf("battery: %v", err)
	}
	drv, err := NewDriver(testController(t), testEngine(t), Options{Storage: battery})
	if err != nil {
		t.Fatalf("driver: %v", err)
	}
	res, err := drv.Run([]float64{500, 500}, []float64{-100, 100})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Storage[0].InternalKW != -90 {
		t.Fatalf("expected -90 kW in the cells got %v", res.Storage[0].InternalKW)
	}
	if res.Storage[1].LossKW != 0 {
		t.Fatalf("discharge at unit efficiency should be lossless, got %v", res.Storage[1].LossKW)
	}
}

func TestDriverShapeErrors(t *testing.T) {
	drv, err := NewDriver(testController(t), testEngine(t), Options{})
	if err != nil {
		t.Fatalf("driver: %v", err)
	}
	if _, err := drv.Run(nil, nil); !errors.Is(err, ErrInputShape) {
		t.Fatalf("expected shape error for empty demand, got %v", err)
	}
	if _, err := drv.Run([]float64{100}, []float64{50}); !errors.Is(err, ErrInputShape) {
		t.Fatalf("expected shape error for storage without component, got %v", err)
	}

	battery, err := component.NewBattery("ess", 1000, 0.9, 1.0, 1, 1, 2)
	if err != nil {
		t.Fatalf("battery: %v", err)
	}
	drv, err = NewDriver(testController(t), testEngine(t), Options{Storage: battery})
	if err != nil {
		t.Fatalf("driver: %v", err)
	}
	if _, err := drv.Run([]float64{100, 200}, []float64{50}); !errors.Is(err, ErrInputShape) {
		t.Fatalf("expected shape error for length mismatch, got %v", err)
	}
}

func TestDriverRejectsStorageOnUnknownSwitchboard(t *testing.T) {
	battery, err := component.NewBattery("ess", 1000, 0.9, 1.0, 1, 1, 99)
	if err != nil {
		t.Fatalf("battery: %v", err)
	}
	if _, err := NewDriver(testController(t), testEngine(t), Options{Storage: battery}); !errors.Is(err, ErrInputShape) {
		t.Fatalf("expected shape error for storage on unknown switchboard, got %v", err)
	}
}

func TestDriverPublishesEvents(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	ch := bus.Subscribe()
	drv, err := NewDriver(testController(t), testEngine(t), Options{Bus: bus})
	if err != nil {
		t.Fatalf("driver: %v", err)
	}
	if _, err := drv.Run([]float64{5000}, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	var sawUnmet bool
	for len(ch) > 0 {
		if _, ok := (<-ch).(UnmetDemandEvent); ok {
			sawUnmet = true
		}
	}
	if !sawUnmet {
		t.Fatalf("expected an unmet demand event")
	}
}

func TestResultRecordsAndSummary(t *testing.T) {
	drv, err := NewDriver(testController(t), testEngine(t), Options{})
	if err != nil {
		t.Fatalf("driver: %v", err)
	}
	res, err := drv.Run([]float64{500, 2500}, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	recs := res.Records(start, time.Hour)
	if len(recs) != 2 {
		t.Fatalf("expected 2 records got %d", len(recs))
	}
	if recs[1].Time != start.Add(time.Hour) {
		t.Fatalf("unexpected timestamp %v", recs[1].Time)
	}
	if !recs[1].Unmet || recs[0].Unmet {
		t.Fatalf("unexpected unmet flags %v %v", recs[0].Unmet, recs[1].Unmet)
	}

	sum := res.Summary(time.Hour)
	if sum.Steps != 2 || sum.UnmetSteps != 1 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if sum.PeakDemandKW != 2500 {
		t.Fatalf("expected peak 2500 got %v", sum.PeakDemandKW)
	}
	wantFuel := (res.FuelKgPerS[0] + res.FuelKgPerS[1]) * 3600
	if math.Abs(sum.TotalFuelKg-wantFuel) > 1e-9 {
		t.Fatalf("expected %v kg got %v", wantFuel, sum.TotalFuelKg)
	}
}

func TestSummaryPeakWithNegativeDemand(t *testing.T) {
	drv, err := NewDriver(testController(t), testEngine(t), Options{})
	if err != nil {
		t.Fatalf("driver: %v", err)
	}
	// shore power export pushes every sample below zero
	res, err := drv.Run([]float64{-300, -50, -800}, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum := res.Summary(time.Hour); sum.PeakDemandKW != -50 {
		t.Fatalf("expected peak -50 got %v", sum.PeakDemandKW)
	}
}
