package outbound

import "time"

// Metrics receives the business measurements of the recommendation flow.
type Metrics interface {
	ObserveInterpretation(outcome string, duration time.Duration)
	ObserveCascadeAttempt(step, outcome string)
	ObserveUpstreamCall(service, operation, status string, duration time.Duration)
}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) ObserveInterpretation(string, time.Duration)                {}
func (NopMetrics) ObserveCascadeAttempt(string, string)                       {}
func (NopMetrics) ObserveUpstreamCall(string, string, string, time.Duration) {}
