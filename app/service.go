package app

import (
	"context"
	"fmt"
	"time"

	"github.com/hybridship/powersim/config"
	coremetrics "github.com/hybridship/powersim/core/metrics"
	"github.com/hybridship/powersim/core/sim"
	"github.com/hybridship/powersim/infra/logger"
	"github.com/hybridship/powersim/infra/metrics"
	"github.com/hybridship/powersim/infra/mqtt"
	"github.com/hybridship/powersim/internal/eventbus"
)

// Service wires the plant model, the simulation driver and the reporting
// sinks together from the configuration.
type Service struct {
	Driver *sim.Driver

	cfg         *config.Config
	sink        coremetrics.Sink
	bus         *eventbus.Bus
	log         logger.Logger
	mqttPub     *mqtt.Publisher
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	ctrl, err := cfg.Plant.BuildController()
	if err != nil {
		return nil, fmt.Errorf("controller: %w", err)
	}
	engine, err := cfg.Plant.BuildEngine()
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	storage, err := cfg.Plant.BuildStorage()
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		s, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, s)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var mqttPub *mqtt.Publisher
	if cfg.MQTT.Enabled {
		mqttPub, err = mqtt.NewPublisher(cfg.MQTT.Config)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		sinks = append(sinks, mqttPub)
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New()
	driver, err := sim.NewDriver(ctrl, engine, sim.Options{Storage: storage, Bus: bus, Log: logg})
	if err != nil {
		return nil, err
	}
	return &Service{
		Driver:      driver,
		cfg:         cfg,
		sink:        sink,
		bus:         bus,
		log:         logg,
		mqttPub:     mqttPub,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

// Run simulates the demand series and reports the results to the configured
// sinks. storageKW may be nil when no storage schedule is simulated.
func (s *Service) Run(ctx context.Context, demandKW, storageKW []float64) (*sim.Result, error) {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	res, err := s.Driver.Run(demandKW, storageKW)
	if err != nil {
		return nil, err
	}

	start := time.Now().UTC()
	if s.cfg.Simulation.Start != "" {
		t, err := time.Parse(time.RFC3339, s.cfg.Simulation.Start)
		if err != nil {
			return nil, fmt.Errorf("simulation start: %w", err)
		}
		start = t
	}
	dt := time.Duration(s.cfg.Simulation.StepSeconds) * time.Second
	if err := s.sink.RecordTimesteps(res.Records(start, dt)); err != nil {
		s.log.Errorf("record timesteps: %v", err)
	}
	if err := s.sink.RecordRunSummary(res.Summary(dt)); err != nil {
		s.log.Errorf("record summary: %v", err)
	}
	return res, nil
}

// StepDuration returns the configured timestep length.
func (s *Service) StepDuration() time.Duration {
	return time.Duration(s.cfg.Simulation.StepSeconds) * time.Second
}

// StartTime returns the configured start of the series, or the given fallback.
func (s *Service) StartTime(fallback time.Time) time.Time {
	if s.cfg.Simulation.Start == "" {
		return fallback
	}
	t, err := time.Parse(time.RFC3339, s.cfg.Simulation.Start)
	if err != nil {
		return fallback
	}
	return t
}

// Close releases the reporting connections.
func (s *Service) Close() error {
	s.bus.Close()
	if s.mqttPub != nil {
		s.mqttPub.Close()
	}
	return nil
}
