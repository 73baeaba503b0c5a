// Package metrics records tab activations in memory and through the
// OpenTelemetry meter.
package metrics

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// ActivationEvent captures a single group activation.
type ActivationEvent struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	From      string        `json:"from"`
	Group     string        `json:"group"`
	Matched   bool          `json:"matched"`
	Panels    int           `json:"panels"`
	Controls  int           `json:"controls"`
	Focus     string        `json:"focus,omitempty"`
	Duration  time.Duration `json:"duration"`
	Source    string        `json:"source,omitempty"`
}

// AggregateStats holds computed aggregate statistics
type AggregateStats struct {
	TotalActivations int64 `json:"total_activations"`
	Unmatched        int64 `json:"unmatched"`
	Switches         int64 `json:"switches"`

	// Latency stats in microseconds; activations are far below a millisecond.
	AvgDurationUs float64 `json:"avg_duration_us"`
	P50DurationUs float64 `json:"p50_duration_us"`
	P95DurationUs float64 `json:"p95_duration_us"`
	MaxDurationUs float64 `json:"max_duration_us"`

	ActivationsPerMinute float64 `json:"activations_per_minute"`

	ByGroup map[string]*GroupStats `json:"by_group"`

	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
}

// GroupStats holds stats for a specific group
type GroupStats struct {
	Count int64     `json:"count"`
	Last  time.Time `json:"last"`
}

type atomicCounters struct {
	total     atomic.Int64
	unmatched atomic.Int64
	switches  atomic.Int64
}

// Collector collects and stores activation events
type Collector struct {
	mu       sync.RWMutex
	events   []ActivationEvent
	counters atomicCounters

	maxEvents  int
	windowSize time.Duration

	startTime time.Time
}

// CollectorOption configures a Collector
type CollectorOption func(*Collector)

// WithMaxEvents sets the maximum number of events to retain
func WithMaxEvents(n int) CollectorOption {
	return func(c *Collector) {
		c.maxEvents = n
	}
}

// WithWindowSize sets the time window for aggregate stats
func WithWindowSize(d time.Duration) CollectorOption {
	return func(c *Collector) {
		c.windowSize = d
	}
}

// NewCollector creates a new metrics collector
func NewCollector(opts ...CollectorOption) *Collector {
	c := &Collector{
		events:     make([]ActivationEvent, 0, 256),
		maxEvents:  10000,
		windowSize: 1 * time.Hour,
		startTime:  time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Record adds an activation event to the collector
func (c *Collector) Record(event ActivationEvent) {
	c.counters.total.Add(1)
	if !event.Matched {
		c.counters.unmatched.Add(1)
	}
	if event.From != event.Group {
		c.counters.switches.Add(1)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = append(c.events, event)

	// Drop the oldest 10% once full.
	if len(c.events) > c.maxEvents {
		pruneCount := max(c.maxEvents/10, 1)
		c.events = c.events[pruneCount:]
	}
}

// GetStats computes aggregate statistics from collected events
func (c *Collector) GetStats() AggregateStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	windowStart := now.Add(-c.windowSize)

	stats := AggregateStats{
		TotalActivations: c.counters.total.Load(),
		Unmatched:        c.counters.unmatched.Load(),
		Switches:         c.counters.switches.Load(),
		ByGroup:          make(map[string]*GroupStats),
		WindowStart:      windowStart,
		WindowEnd:        now,
	}

	durations := make([]float64, 0, len(c.events))
	var sum float64
	for _, e := range c.events {
		if !e.Timestamp.After(windowStart) {
			continue
		}
		us := float64(e.Duration.Microseconds())
		durations = append(durations, us)
		sum += us

		gs, ok := stats.ByGroup[e.Group]
		if !ok {
			gs = &GroupStats{}
			stats.ByGroup[e.Group] = gs
		}
		gs.Count++
		if e.Timestamp.After(gs.Last) {
			gs.Last = e.Timestamp
		}
	}

	if elapsed := now.Sub(c.startTime).Minutes(); elapsed > 0 {
		stats.ActivationsPerMinute = float64(stats.TotalActivations) / elapsed
	}

	if len(durations) == 0 {
		return stats
	}

	slices.Sort(durations)
	stats.AvgDurationUs = sum / float64(len(durations))
	stats.P50DurationUs = percentile(durations, 0.50)
	stats.P95DurationUs = percentile(durations, 0.95)
	stats.MaxDurationUs = durations[len(durations)-1]

	return stats
}

// GetRecentEvents returns the most recent n events
func (c *Collector) GetRecentEvents(n int) []ActivationEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if n > len(c.events) {
		n = len(c.events)
	}
	if n <= 0 {
		return nil
	}

	result := make([]ActivationEvent, n)
	copy(result, c.events[len(c.events)-n:])
	return result
}

// Reset clears all collected metrics
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = c.events[:0]
	c.counters.total.Store(0)
	c.counters.unmatched.Store(0)
	c.counters.switches.Store(0)
	c.startTime = time.Now()
}

// percentile returns the value at the given percentile (0.0-1.0)
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}
