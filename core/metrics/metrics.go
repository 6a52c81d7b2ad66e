package metrics

import "time"

// TimestepRecord is the per-timestep simulation output handed to reporting
// sinks. It is a plain numeric record; sinks decide how to persist it.
type TimestepRecord struct {
	RunID          string    `json:"run_id"`
	Step           int       `json:"step"`
	Time           time.Time `json:"time"`
	DemandKW       float64   `json:"demand_kw"`
	GensetsOn      int       `json:"gensets_on"`
	Unmet          bool      `json:"unmet"`
	LoadRatio      float64   `json:"load_ratio"`
	FuelKgPerS     float64   `json:"fuel_kg_per_s"`
	StorageLossKW  float64   `json:"storage_loss_kw"`
	RatioClamped   bool      `json:"ratio_clamped"`
	BSFCGramPerKWh float64   `json:"bsfc_g_per_kwh"`
}

// RunSummary aggregates a completed simulation run.
type RunSummary struct {
	RunID        string    `json:"run_id"`
	Steps        int       `json:"steps"`
	UnmetSteps   int       `json:"unmet_steps"`
	ClampedSteps int       `json:"clamped_steps"`
	TotalFuelKg  float64   `json:"total_fuel_kg"`
	PeakDemandKW float64   `json:"peak_demand_kw"`
	Finished     time.Time `json:"finished"`
}

// Sink records simulation results for observability purposes.
type Sink interface {
	RecordTimesteps(records []TimestepRecord) error
	RecordRunSummary(summary RunSummary) error
}

// NopSink discards every record.
type NopSink struct{}

func (NopSink) RecordTimesteps([]TimestepRecord) error { return nil }
func (NopSink) RecordRunSummary(RunSummary) error      { return nil }
