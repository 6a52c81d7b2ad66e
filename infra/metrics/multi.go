package metrics

import coremetrics "github.com/hybridship/powersim/core/metrics"

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordTimesteps forwards the records to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordTimesteps(records []coremetrics.TimestepRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordTimesteps(records); err != nil {
			return err
		}
	}
	return nil
}

// RecordRunSummary forwards the summary to all sinks.
func (m *MultiSink) RecordRunSummary(sum coremetrics.RunSummary) error {
	for _, s := range m.Sinks {
		if err := s.RecordRunSummary(sum); err != nil {
			return err
		}
	}
	return nil
}
