package observability

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	latency      map[string]time.Duration
}

// RouteStats summarizes traffic for one route and method.
type RouteStats struct {
	Route        string        `json:"route"`
	Method       string        `json:"method"`
	Requests     int64         `json:"requests"`
	Errors       int64         `json:"errors"`
	TotalLatency time.Duration `json:"total_latency_ns"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		latency:      make(map[string]time.Duration),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[pathKey(path, method, strconv.Itoa(status))]++
	m.latency[routeKey(path, method)] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[pathKey(path, method, code)]++
}

// Snapshot aggregates the counters per route and method.
func (m *Metrics) Snapshot() map[string]RouteStats {
	out := map[string]RouteStats{}
	if m == nil {
		return out
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := func(key string) RouteStats {
		parts := strings.SplitN(key, "|", 3)
		route := routeKey(parts[0], parts[1])
		stats, ok := out[route]
		if !ok {
			stats = RouteStats{Route: parts[0], Method: parts[1]}
		}
		return stats
	}
	for key, n := range m.requestCount {
		stats := entry(key)
		stats.Requests += n
		out[routeKey(stats.Route, stats.Method)] = stats
	}
	for key, n := range m.errorCount {
		stats := entry(key)
		stats.Errors += n
		out[routeKey(stats.Route, stats.Method)] = stats
	}
	for key, d := range m.latency {
		stats := out[key]
		stats.TotalLatency = d
		out[key] = stats
	}
	return out
}

func routeKey(path, method string) string {
	return method + " " + path
}

func pathKey(path, method, suffix string) string {
	return path + "|" + method + "|" + suffix
}
