package metrics

import "time"

// Engine label values for automation metrics
const (
	EngineTask = "task"
	EngineCard = "card"
)

// RecordRuleExecution records one automation rule execution and its outcome
func (m *Metrics) RecordRuleExecution(engine, status string) {
	m.safeExecute("RecordRuleExecution", func() {
		m.RuleExecutionsTotal.WithLabelValues(engine, status).Inc()
	})
}

// RecordButtonExecution records one manual button execution
func (m *Metrics) RecordButtonExecution(engine string, executed bool) {
	m.safeExecute("RecordButtonExecution", func() {
		result := "executed"
		if !executed {
			result = "rejected"
		}
		m.ButtonExecutionsTotal.WithLabelValues(engine, result).Inc()
	})
}

// RecordRecurrenceSpawned records one recurring task successor creation
func (m *Metrics) RecordRecurrenceSpawned() {
	m.safeExecute("RecordRecurrenceSpawned", func() {
		m.RecurrencesSpawnedTotal.Inc()
	})
}

// RecordExternalAPIRequest records metrics for an external API call
func (m *Metrics) RecordExternalAPIRequest(endpoint, status string, duration time.Duration) {
	m.safeExecute("RecordExternalAPIRequest", func() {
		m.ExternalAPIRequestDuration.WithLabelValues(endpoint, status).Observe(duration.Seconds())
	})
}

// RecordExternalAPIError records an external API error by type
func (m *Metrics) RecordExternalAPIError(endpoint, errorType string) {
	m.safeExecute("RecordExternalAPIError", func() {
		m.ExternalAPIErrors.WithLabelValues(endpoint, errorType).Inc()
	})
}

// SetActiveRules sets the active rule count gauge for an engine
func (m *Metrics) SetActiveRules(engine string, count int64) {
	m.safeExecute("SetActiveRules", func() {
		m.ActiveRulesTotal.WithLabelValues(engine).Set(float64(count))
	})
}

// SetTasksTotal sets the non-archived task count gauge
func (m *Metrics) SetTasksTotal(count int64) {
	m.safeExecute("SetTasksTotal", func() {
		m.TasksTotal.Set(float64(count))
	})
}
