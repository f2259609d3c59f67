package driven

import "time"

// MetricsRecorder receives broker outcome counters.
// Implementations must be safe for concurrent use.
type MetricsRecorder interface {
	RecordCallback(outcome string)
	RecordPublish(outcome string)
	RecordProviderLatency(op string, d time.Duration)
	RecordSweep(published, failed int)
	RecordStatesCleaned(n int64)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordCallback(string)                       {}
func (NopMetrics) RecordPublish(string)                        {}
func (NopMetrics) RecordProviderLatency(string, time.Duration) {}
func (NopMetrics) RecordSweep(int, int)                        {}
func (NopMetrics) RecordStatesCleaned(int64)                   {}
