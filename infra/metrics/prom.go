package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/hybridship/powersim/core/metrics"
)

// PromSink records simulation results in Prometheus metrics.
type PromSink struct {
	timesteps *prometheus.CounterVec
	fuel      prometheus.Counter
	gensets   prometheus.Gauge
	loadRatio prometheus.Histogram
	runs      prometheus.Counter
}

// NewPromSink registers simulation metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	timesteps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "powersim_timesteps_total",
		Help: "Simulated timesteps, partitioned by unmet-demand flag",
	}, []string{"unmet"})
	fuel := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "powersim_fuel_flow_kg_seconds_total",
		Help: "Accumulated fleet fuel flow in kg/s over recorded timesteps",
	})
	gensets := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "powersim_gensets_on",
		Help: "Running gensets at the last recorded timestep",
	})
	loadRatio := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "powersim_genset_load_ratio",
		Help:    "Per-genset load ratio distribution",
		Buckets: prometheus.LinearBuckets(0, 0.1, 12),
	})
	runs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "powersim_runs_total",
		Help: "Completed simulation runs",
	})

	for _, c := range []prometheus.Collector{timesteps, fuel, gensets, loadRatio, runs} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return &PromSink{timesteps: timesteps, fuel: fuel, gensets: gensets, loadRatio: loadRatio, runs: runs}, nil
}

// RecordTimesteps feeds the per-timestep counters and histograms.
func (s *PromSink) RecordTimesteps(records []coremetrics.TimestepRecord) error {
	for _, r := range records {
		s.timesteps.WithLabelValues(strconv.FormatBool(r.Unmet)).Inc()
		s.fuel.Add(r.FuelKgPerS)
		s.gensets.Set(float64(r.GensetsOn))
		s.loadRatio.Observe(r.LoadRatio)
	}
	return nil
}

// RecordRunSummary counts the completed run.
func (s *PromSink) RecordRunSummary(coremetrics.RunSummary) error {
	s.runs.Inc()
	return nil
}
