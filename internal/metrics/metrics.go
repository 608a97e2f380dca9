// Package metrics counts backend requests and lookups.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector collects and aggregates metrics.
type Collector struct {
	// Counters
	requestsTotal atomic.Int64
	errorsTotal   atomic.Int64
	bytesTotal    atomic.Int64
	lookupsFired  atomic.Int64
	lookupsStale  atomic.Int64
	confirmations atomic.Int64
	declined      atomic.Int64

	// Response time tracking
	responseTimesSum atomic.Int64
	responseTimesNum atomic.Int64

	// Histogram buckets in ms: <50, <100, <250, <500, <1000, <2500, >=2500
	responseTimeBuckets [7]atomic.Int64

	// Breakdowns
	mu          sync.RWMutex
	errorCounts map[string]int64
	statusCodes map[int]int64
	commands    map[string]int64

	startTime time.Time
}

// New creates a new metrics collector.
func New() *Collector {
	return &Collector{
		errorCounts: make(map[string]int64),
		statusCodes: make(map[int]int64),
		commands:    make(map[string]int64),
		startTime:   time.Now(),
	}
}

// RecordRequest records a request for command.
func (c *Collector) RecordRequest(command string) {
	c.requestsTotal.Add(1)
	c.mu.Lock()
	c.commands[command]++
	c.mu.Unlock()
}

// RecordError records a failed user action by error type.
func (c *Collector) RecordError(errorType string) {
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.errorCounts[errorType]++
	c.mu.Unlock()
}

// RecordStatusCode records an HTTP status code.
func (c *Collector) RecordStatusCode(code int) {
	c.mu.Lock()
	c.statusCodes[code]++
	c.mu.Unlock()
}

// RecordResponseTime records a response time.
func (c *Collector) RecordResponseTime(d time.Duration) {
	ms := d.Milliseconds()
	c.responseTimesSum.Add(ms)
	c.responseTimesNum.Add(1)
	c.responseTimeBuckets[bucket(ms)].Add(1)
}

func bucket(ms int64) int {
	switch {
	case ms < 50:
		return 0
	case ms < 100:
		return 1
	case ms < 250:
		return 2
	case ms < 500:
		return 3
	case ms < 1000:
		return 4
	case ms < 2500:
		return 5
	default:
		return 6
	}
}

// RecordBytes records response bytes read.
func (c *Collector) RecordBytes(n int64) {
	c.bytesTotal.Add(n)
}

// RecordLookup records a fired debounced lookup. stale is true when its
// response was discarded because the box changed again.
func (c *Collector) RecordLookup(stale bool) {
	c.lookupsFired.Add(1)
	if stale {
		c.lookupsStale.Add(1)
	}
}

// RecordConfirmation records a confirmation prompt and whether it was
// declined.
func (c *Collector) RecordConfirmation(declined bool) {
	c.confirmations.Add(1)
	if declined {
		c.declined.Add(1)
	}
}

// GetAverageResponseTime returns the average response time.
func (c *Collector) GetAverageResponseTime() time.Duration {
	sum := c.responseTimesSum.Load()
	num := c.responseTimesNum.Load()
	if num == 0 {
		return 0
	}
	return time.Duration(sum/num) * time.Millisecond
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() *Snapshot {
	s := &Snapshot{
		Timestamp:           time.Now(),
		RequestsTotal:       c.requestsTotal.Load(),
		ErrorsTotal:         c.errorsTotal.Load(),
		BytesTotal:          c.bytesTotal.Load(),
		LookupsFired:        c.lookupsFired.Load(),
		LookupsStale:        c.lookupsStale.Load(),
		Confirmations:       c.confirmations.Load(),
		Declined:            c.declined.Load(),
		AverageResponseTime: c.GetAverageResponseTime(),
		ErrorCounts:         make(map[string]int64),
		StatusCodes:         make(map[int]int64),
		Commands:            make(map[string]int64),
		ResponseTimeHist:    make([]int64, len(c.responseTimeBuckets)),
	}

	c.mu.RLock()
	s.Uptime = time.Since(c.startTime)
	for k, v := range c.errorCounts {
		s.ErrorCounts[k] = v
	}
	for k, v := range c.statusCodes {
		s.StatusCodes[k] = v
	}
	for k, v := range c.commands {
		s.Commands[k] = v
	}
	c.mu.RUnlock()

	for i := range c.responseTimeBuckets {
		s.ResponseTimeHist[i] = c.responseTimeBuckets[i].Load()
	}

	return s
}

// Reset resets all metrics.
func (c *Collector) Reset() {
	c.requestsTotal.Store(0)
	c.errorsTotal.Store(0)
	c.bytesTotal.Store(0)
	c.lookupsFired.Store(0)
	c.lookupsStale.Store(0)
	c.confirmations.Store(0)
	c.declined.Store(0)
	c.responseTimesSum.Store(0)
	c.responseTimesNum.Store(0)
	for i := range c.responseTimeBuckets {
		c.responseTimeBuckets[i].Store(0)
	}

	c.mu.Lock()
	c.errorCounts = make(map[string]int64)
	c.statusCodes = make(map[int]int64)
	c.commands = make(map[string]int64)
	c.startTime = time.Now()
	c.mu.Unlock()
}

// Snapshot represents a point-in-time view of metrics.
type Snapshot struct {
	Timestamp           time.Time        `json:"timestamp"`
	Uptime              time.Duration    `json:"uptime"`
	RequestsTotal       int64            `json:"requests_total"`
	ErrorsTotal         int64            `json:"errors_total"`
	BytesTotal          int64            `json:"bytes_total"`
	LookupsFired        int64            `json:"lookups_fired"`
	LookupsStale        int64            `json:"lookups_stale"`
	Confirmations       int64            `json:"confirmations"`
	Declined            int64            `json:"declined"`
	AverageResponseTime time.Duration    `json:"average_response_time"`
	ErrorCounts         map[string]int64 `json:"error_counts"`
	StatusCodes         map[int]int64    `json:"status_codes"`
	Commands            map[string]int64 `json:"commands"`
	ResponseTimeHist    []int64          `json:"response_time_histogram"`
}

// ErrorRate returns errors/requests.
func (s *Snapshot) ErrorRate() float64 {
	if s.RequestsTotal == 0 {
		return 0
	}
	return float64(s.ErrorsTotal) / float64(s.RequestsTotal)
}

// Summary returns a flat map suitable for a stats log line.
func (s *Snapshot) Summary() map[string]interface{} {
	return map[string]interface{}{
		"uptime":               s.Uptime.String(),
		"requests_total":       s.RequestsTotal,
		"errors_total":         s.ErrorsTotal,
		"error_rate":           s.ErrorRate(),
		"lookups_fired":        s.LookupsFired,
		"lookups_stale":        s.LookupsStale,
		"declined":             s.Declined,
		"avg_response_time_ms": s.AverageResponseTime.Milliseconds(),
	}
}

// Global metrics collector.
var globalCollector = New()

// SetGlobal sets the global metrics collector.
func SetGlobal(c *Collector) {
	globalCollector = c
}

// Global returns the global metrics collector.
func Global() *Collector {
	return globalCollector
}
