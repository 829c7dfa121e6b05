package metrics

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// EndpointMetrics trace les métriques d'un endpoint donné
type EndpointMetrics struct {
	Requests     int64
	Errors       int64
	TotalLatency int64
}

// Metrics regroupe les compteurs applicatifs du pipeline d'estimation
type Metrics struct {
	mu sync.RWMutex

	// Requêtes HTTP
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64
	TotalLatency       int64 // ms

	// Pipeline d'estimation
	Estimations      int64
	TasksParsed      int64
	ParseShortfalls  int64 // complétions sans aucune tâche reconnue
	ProviderErrors   int64
	ProviderTimeouts int64

	// Feedback
	FeedbacksStored int64

	// Exports, par type (csv, excel, trello, jira, notion)
	exports map[string]int64

	// WebSocket
	WSConnections int64
	WSMessagesOut int64

	// Par endpoint
	endpoints map[string]*EndpointMetrics

	startTime time.Time
}

var (
	instance *Metrics
	once     sync.Once
)

// Get retourne l'instance singleton des métriques
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			exports:   make(map[string]int64),
			endpoints: make(map[string]*EndpointMetrics),
			startTime: time.Now(),
		}
	})
	return instance
}

// IncrementRequests enregistre une requête HTTP terminée
func (m *Metrics) IncrementRequests(success bool, latencyMs int64) {
	atomic.AddInt64(&m.TotalRequests, 1)
	atomic.AddInt64(&m.TotalLatency, latencyMs)
	if success {
		atomic.AddInt64(&m.SuccessfulRequests, 1)
	} else {
		atomic.AddInt64(&m.FailedRequests, 1)
	}
}

// TrackEndpoint enregistre une requête sur un endpoint précis
func (m *Metrics) TrackEndpoint(path, method string, statusCode int, latencyMs int64) {
	key := method + " " + path

	m.mu.Lock()
	ep, ok := m.endpoints[key]
	if !ok {
		ep = &EndpointMetrics{}
		m.endpoints[key] = ep
	}
	m.mu.Unlock()

	atomic.AddInt64(&ep.Requests, 1)
	atomic.AddInt64(&ep.TotalLatency, latencyMs)
	if statusCode >= 400 {
		atomic.AddInt64(&ep.Errors, 1)
	}
}

// IncrementEstimations enregistre une estimation aboutie
func (m *Metrics) IncrementEstimations(tasks int) {
	atomic.AddInt64(&m.Estimations, 1)
	atomic.AddInt64(&m.TasksParsed, int64(tasks))
}

// IncrementParseShortfalls enregistre une complétion sans tâche reconnue
func (m *Metrics) IncrementParseShortfalls() {
	atomic.AddInt64(&m.ParseShortfalls, 1)
}

// IncrementProviderErrors enregistre un échec du fournisseur
func (m *Metrics) IncrementProviderErrors(timeout bool) {
	atomic.AddInt64(&m.ProviderErrors, 1)
	if timeout {
		atomic.AddInt64(&m.ProviderTimeouts, 1)
	}
}

// IncrementFeedbacks enregistre un feedback persisté
func (m *Metrics) IncrementFeedbacks() {
	atomic.AddInt64(&m.FeedbacksStored, 1)
}

// IncrementExports enregistre un export par type
func (m *Metrics) IncrementExports(kind string) {
	m.mu.Lock()
	m.exports[kind]++
	m.mu.Unlock()
}

// WSConnected / WSDisconnected suivent les connexions websocket actives
func (m *Metrics) WSConnected()    { atomic.AddInt64(&m.WSConnections, 1) }
func (m *Metrics) WSDisconnected() { atomic.AddInt64(&m.WSConnections, -1) }

// WSMessageSent compte un message sortant
func (m *Metrics) WSMessageSent() { atomic.AddInt64(&m.WSMessagesOut, 1) }

// Snapshot est une vue figée des métriques, sérialisable en JSON
type Snapshot struct {
	UptimeSeconds      int64                       `json:"uptime_seconds"`
	TotalRequests      int64                       `json:"total_requests"`
	SuccessfulRequests int64                       `json:"successful_requests"`
	FailedRequests     int64                       `json:"failed_requests"`
	AvgLatencyMs       int64                       `json:"avg_latency_ms"`
	Estimations        int64                       `json:"estimations"`
	TasksParsed        int64                       `json:"tasks_parsed"`
	ParseShortfalls    int64                       `json:"parse_shortfalls"`
	ProviderErrors     int64                       `json:"provider_errors"`
	ProviderTimeouts   int64                       `json:"provider_timeouts"`
	FeedbacksStored    int64                       `json:"feedbacks_stored"`
	Exports            map[string]int64            `json:"exports"`
	WSConnections      int64                       `json:"ws_connections"`
	WSMessagesOut      int64                       `json:"ws_messages_out"`
	Goroutines         int                         `json:"goroutines"`
	Endpoints          map[string]*EndpointMetrics `json:"endpoints"`
}

// GetSnapshot retourne une vue figée des métriques
func (m *Metrics) GetSnapshot() Snapshot {
	total := atomic.LoadInt64(&m.TotalRequests)
	var avgLatency int64
	if total > 0 {
		avgLatency = atomic.LoadInt64(&m.TotalLatency) / total
	}

	m.mu.RLock()
	exports := make(map[string]int64, len(m.exports))
	for k, v := range m.exports {
		exports[k] = v
	}
	endpoints := make(map[string]*EndpointMetrics, len(m.endpoints))
	for k, v := range m.endpoints {
		endpoints[k] = &EndpointMetrics{
			Requests:     atomic.LoadInt64(&v.Requests),
			Errors:       atomic.LoadInt64(&v.Errors),
			TotalLatency: atomic.LoadInt64(&v.TotalLatency),
		}
	}
	m.mu.RUnlock()

	return Snapshot{
		UptimeSeconds:      int64(time.Since(m.startTime).Seconds()),
		TotalRequests:      total,
		SuccessfulRequests: atomic.LoadInt64(&m.SuccessfulRequests),
		FailedRequests:     atomic.LoadInt64(&m.FailedRequests),
		AvgLatencyMs:       avgLatency,
		Estimations:        atomic.LoadInt64(&m.Estimations),
		TasksParsed:        atomic.LoadInt64(&m.TasksParsed),
		ParseShortfalls:    atomic.LoadInt64(&m.ParseShortfalls),
		ProviderErrors:     atomic.LoadInt64(&m.ProviderErrors),
		ProviderTimeouts:   atomic.LoadInt64(&m.ProviderTimeouts),
		FeedbacksStored:    atomic.LoadInt64(&m.FeedbacksStored),
		Exports:            exports,
		WSConnections:      atomic.LoadInt64(&m.WSConnections),
		WSMessagesOut:      atomic.LoadInt64(&m.WSMessagesOut),
		Goroutines:         runtime.NumGoroutine(),
		Endpoints:          endpoints,
	}
}
