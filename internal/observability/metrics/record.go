package metrics

import "time"

// RecordFetch records the metrics of a completed fetch attempt.
// Bytes is only observed for successful fetches (failures have no body to
// measure).
func RecordFetch(duration time.Duration, bytes int, success bool) {
	FetchDuration.Observe(duration.Seconds())
	if success {
		FetchBytes.Observe(float64(bytes))
	}
}

// RecordOutcome records one terminal pipeline outcome. Pass "ok" for
// success, otherwise the classified error code.
func RecordOutcome(code string) {
	PipelineOutcomesTotal.WithLabelValues(code).Inc()
}

// RecordThreadWriterCall records the duration of one LLM call.
func RecordThreadWriterCall(provider, stage string, duration time.Duration) {
	ThreadWriterDuration.WithLabelValues(provider, stage).Observe(duration.Seconds())
}

// RecordAbuseDecision records one admission decision.
func RecordAbuseDecision(decision string) {
	AbuseDecisionsTotal.WithLabelValues(decision).Inc()
}
