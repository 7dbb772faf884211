package monitoring

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds application counters for the scoring service.
type Metrics struct {
	RequestCount        int64
	ErrorCount          int64
	CacheHits           int64
	CacheMisses         int64
	ScoresComputed      int64
	AverageResponseTime int64 // nanoseconds
	StartTime           time.Time

	// Failures by scoring error kind.
	ConfigurationFailures int64
	ValidationFailures    int64
	ComputationFailures   int64

	RequestCountByStatus map[int]int64
	statusMutex          sync.RWMutex
}

// NewMetrics creates a new metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:            time.Now(),
		RequestCountByStatus: make(map[int]int64),
	}
}

// IncrementRequest increments the request count.
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count.
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// IncrementCacheHit increments cache hit count.
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
}

// IncrementCacheMiss increments cache miss count.
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
}

// IncrementScoresComputed increments the count of successful computations.
func (m *Metrics) IncrementScoresComputed() {
	atomic.AddInt64(&m.ScoresComputed, 1)
}

// RecordFailure increments the failure counter for a scoring error kind.
func (m *Metrics) RecordFailure(kind string) {
	switch kind {
	case "configuration":
		atomic.AddInt64(&m.ConfigurationFailures, 1)
	case "validation":
		atomic.AddInt64(&m.ValidationFailures, 1)
	case "computation":
		atomic.AddInt64(&m.ComputationFailures, 1)
	}
}

// RecordResponseTime folds a response time into the running average.
func (m *Metrics) RecordResponseTime(duration time.Duration) {
	current := atomic.LoadInt64(&m.AverageResponseTime)
	newAverage := (current + duration.Nanoseconds()) / 2
	atomic.StoreInt64(&m.AverageResponseTime, newAverage)
}

// RecordRequestByStatus records request count by HTTP status code.
func (m *Metrics) RecordRequestByStatus(statusCode int) {
	m.statusMutex.Lock()
	defer m.statusMutex.Unlock()
	m.RequestCountByStatus[statusCode]++
}

// GetStats returns a snapshot of all metrics for the /metrics endpoint.
func (m *Metrics) GetStats() map[string]any {
	m.statusMutex.RLock()
	byStatus := make(map[int]int64, len(m.RequestCountByStatus))
	for code, count := range m.RequestCountByStatus {
		byStatus[code] = count
	}
	m.statusMutex.RUnlock()

	return map[string]any{
		"request_count":          atomic.LoadInt64(&m.RequestCount),
		"error_count":            atomic.LoadInt64(&m.ErrorCount),
		"cache_hits":             atomic.LoadInt64(&m.CacheHits),
		"cache_misses":           atomic.LoadInt64(&m.CacheMisses),
		"scores_computed":        atomic.LoadInt64(&m.ScoresComputed),
		"configuration_failures": atomic.LoadInt64(&m.ConfigurationFailures),
		"validation_failures":    atomic.LoadInt64(&m.ValidationFailures),
		"computation_failures":   atomic.LoadInt64(&m.ComputationFailures),
		"avg_response_time_ms":   float64(atomic.LoadInt64(&m.AverageResponseTime)) / 1e6,
		"requests_by_status":     byStatus,
		"uptime_seconds":         time.Since(m.StartTime).Seconds(),
	}
}
