package app

import (
	"context"
	"testing"

	"github.com/hybridship/powersim/config"
	"github.com/hybridship/powersim/core/pms"
)

func testConfig() *config.Config {
	return &config.Config{
		Plant: config.PlantConfig{
			Topology: pms.Topology{
				Switchboards:    map[int]int{1: 1, 2: 2},
				BusTieCount:     1,
				RatedPowerKW:    1000,
				MaxLoadFraction: 0.8,
			},
			Engine: config.EngineConfig{
				Name:          "genset",
				RatedPowerKW:  1000,
				RatedSpeedRPM: 900,
				Kind:          "auxiliary_engine",
				BSFC: config.CurveConfig{
					LoadRatios: []float64{0.1, 0.5, 1.0},
					Values:     []float64{220, 190, 200},
				},
			},
		},
		Simulation: config.SimulationConfig{StepSeconds: 3600},
	}
}

func TestServiceRun(t *testing.T) {
	svc, err := New(testConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}()

	res, err := svc.Run(context.Background(), []float64{-100, 0, 500, 1500, 1999, 2500, 3500}, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []int{1, 1, 1, 2, 3, 3, 3}
	for i, st := range res.States {
		if st.GensetsOn != want[i] {
			t.Fatalf("step %d: %d gensets, want %d", i, st.GensetsOn, want[i])
		}
	}
	if res.UnmetSteps != 2 {
		t.Fatalf("expected 2 unmet steps got %d", res.UnmetSteps)
	}
}

func TestServiceRunWithStorage(t *testing.T) {
	cfg := testConfig()
	cfg.Plant.Storage = &config.StorageConfig{
		Battery: config.BatteryConfig{
			Name:           "ess",
			CapacityKWh:    1000,
			EffCharge:      0.9,
			EffDischarge:   1.0,
			ChargeRateC:    1,
			DischargeRateC: 1,
			Switchboard:    2,
		},
	}
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer func() { _ = svc.Close() }()

	res, err := svc.Run(context.Background(), []float64{500, 500}, []float64{-100, 100})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Storage[0].InternalKW != -90 {
		t.Fatalf("expected -90 kW in the cells got %v", res.Storage[0].InternalKW)
	}
}
