package metrics

import (
	"testing"

	coremetrics "github.com/hybridship/powersim/core/metrics"
)

func TestInfluxSinkFallsBackToNop(t *testing.T) {
	cfg := coremetrics.Config{
		InfluxEnabled: true,
		InfluxURL:     "http://127.0.0.1:1",
		InfluxToken:   "token",
		InfluxOrg:     "org",
		InfluxBucket:  "bucket",
	}
	sink := NewInfluxSinkWithFallback(cfg)
	if _, ok := sink.(coremetrics.NopSink); !ok {
		t.Fatalf("expected NopSink when the health check fails, got %T", sink)
	}
	// the fallback sink must accept records without error
	if err := sink.RecordTimesteps([]coremetrics.TimestepRecord{{RunID: "r1"}}); err != nil {
		t.Fatalf("record: %v", err)
	}
}
