package logging

import (
	"sync"
	"time"
)

// TierMetrics tracks how often a resolution tier produced the result.
type TierMetrics struct {
	Hits      int           `json:"hits"`
	Commands  int           `json:"commands"`
	TotalTime time.Duration `json:"total_time_ms"`
}

// LLMMetrics tracks metrics for classifier backend calls.
type LLMMetrics struct {
	Requests  int           `json:"requests"`
	Errors    int           `json:"errors"`
	TotalTime time.Duration `json:"total_time_ms"`
}

// Metrics collects runtime metrics for a process.
type Metrics struct {
	mu sync.Mutex

	Start time.Time `json:"start"`

	PromptsTotal int `json:"prompts_total"`

	// Per-tier resolution metrics keyed by tier name
	Tiers map[string]*TierMetrics `json:"tiers"`

	LLM LLMMetrics `json:"llm"`

	// Protocol requests by method
	Methods map[string]int `json:"methods"`
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		Start:   time.Now(),
		Tiers:   make(map[string]*TierMetrics),
		Methods: make(map[string]int),
	}
}

// RecordPrompt increments the prompt counter.
func (m *Metrics) RecordPrompt() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PromptsTotal++
}

// RecordTier records which tier resolved a prompt and whether it yielded a command.
func (m *Metrics) RecordTier(tier string, duration time.Duration, withCommand bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	tm := m.Tiers[tier]
	if tm == nil {
		tm = &TierMetrics{}
		m.Tiers[tier] = tm
	}
	tm.Hits++
	tm.TotalTime += duration
	if withCommand {
		tm.Commands++
	}
}

// RecordLLMRequest records a classifier backend round trip.
func (m *Metrics) RecordLLMRequest(duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LLM.Requests++
	m.LLM.TotalTime += duration
	if err != nil {
		m.LLM.Errors++
	}
}

// RecordMethod records a protocol request.
func (m *Metrics) RecordMethod(method string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Methods[method]++
}

// Summary returns a summary of the collected metrics.
func (m *Metrics) Summary() MetricsSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	tiers := make(map[string]TierMetrics, len(m.Tiers))
	commands := 0
	for name, t := range m.Tiers {
		tiers[name] = *t
		commands += t.Commands
	}
	methods := make(map[string]int, len(m.Methods))
	requests := 0
	for name, n := range m.Methods {
		methods[name] = n
		requests += n
	}

	return MetricsSummary{
		Uptime:           time.Since(m.Start),
		PromptsTotal:     m.PromptsTotal,
		CommandsTotal:    commands,
		LLMRequestsTotal: m.LLM.Requests,
		LLMErrorsTotal:   m.LLM.Errors,
		LLMTimeTotal:     m.LLM.TotalTime,
		ProtocolRequests: requests,
		Tiers:            tiers,
		Methods:          methods,
	}
}

// GetSnapshot returns a copy of the current metrics for serialization.
func (m *Metrics) GetSnapshot() map[string]any {
	summary := m.Summary()
	tierHits := make(map[string]int, len(summary.Tiers))
	for name, t := range summary.Tiers {
		tierHits[name] = t.Hits
	}
	return map[string]any{
		"uptime_ms":          summary.Uptime.Milliseconds(),
		"prompts_total":      summary.PromptsTotal,
		"commands_total":     summary.CommandsTotal,
		"llm_requests_total": summary.LLMRequestsTotal,
		"llm_errors_total":   summary.LLMErrorsTotal,
		"llm_time_total_ms":  summary.LLMTimeTotal.Milliseconds(),
		"protocol_requests":  summary.ProtocolRequests,
		"tier_hits":          tierHits,
		"methods":            summary.Methods,
	}
}

// MetricsSummary provides a summary view of the metrics.
type MetricsSummary struct {
	Uptime           time.Duration
	PromptsTotal     int
	CommandsTotal    int
	LLMRequestsTotal int
	LLMErrorsTotal   int
	LLMTimeTotal     time.Duration
	ProtocolRequests int
	Tiers            map[string]TierMetrics
	Methods          map[string]int
}
