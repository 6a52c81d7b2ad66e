package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/hybridship/powersim/core/metrics"
	"github.com/hybridship/powersim/infra/logger"
)

// InfluxSink writes simulation records to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg coremetrics.Config) *InfluxSink {
	client := influxdb2.NewClientWithOptions(cfg.InfluxURL, cfg.InfluxToken,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// if the health check fails, so a missing database never blocks a simulation.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.Sink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordTimesteps writes one point per simulated timestep.
func (s *InfluxSink) RecordTimesteps(records []coremetrics.TimestepRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range records {
		p := write.NewPointWithMeasurement("powersim_timestep").
			AddTag("run_id", r.RunID).
			AddTag("unmet", strconv.FormatBool(r.Unmet)).
			AddField("step", r.Step).
			AddField("demand_kw", r.DemandKW).
			AddField("gensets_on", r.GensetsOn).
			AddField("load_ratio", r.LoadRatio).
			AddField("fuel_kg_per_s", r.FuelKgPerS).
			AddField("storage_loss_kw", r.StorageLossKW).
			SetTime(r.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordRunSummary writes the aggregated run point.
func (s *InfluxSink) RecordRunSummary(sum coremetrics.RunSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("powersim_run").
		AddTag("run_id", sum.RunID).
		AddField("steps", sum.Steps).
		AddField("unmet_steps", sum.UnmetSteps).
		AddField("clamped_steps", sum.ClampedSteps).
		AddField("total_fuel_kg", sum.TotalFuelKg).
		AddField("peak_demand_kw", sum.PeakDemandKW).
		SetTime(sum.Finished)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }
