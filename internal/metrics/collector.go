package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector provides simple built-in metrics collection with no external dependencies
type Collector struct {
	stats          *Stats
	customCounters map[string]*int64
	mu             sync.RWMutex
	startTime      time.Time
}

// Stats tracks parser, renderer, and preview-token activity
type Stats struct {
	// Parsing
	DocumentsParsed    int64 `json:"documents_parsed"`
	NodesProduced      int64 `json:"nodes_produced"`
	CandidatesRejected int64 `json:"candidates_rejected"`
	DepthLimitHits     int64 `json:"depth_limit_hits"`
	ParseDurationNanos int64 `json:"parse_duration_nanos"`
	LargestParsedNodes int64 `json:"largest_parsed_nodes"`

	// Rendering
	RendersCompleted    int64 `json:"renders_completed"`
	RenderErrors        int64 `json:"render_errors"`
	RenderDurationNanos int64 `json:"render_duration_nanos"`

	// Preview tokens
	TokensIssued   int64 `json:"tokens_issued"`
	TokensVerified int64 `json:"tokens_verified"`
	TokenFailures  int64 `json:"token_failures"`

	// Uptime
	StartTime time.Time     `json:"start_time"`
	Uptime    time.Duration `json:"uptime"`
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	now := time.Now()
	return &Collector{
		stats:          &Stats{StartTime: now},
		customCounters: make(map[string]*int64),
		startTime:      now,
	}
}

// ParseCompleted records one finished parse call and its counters
func (c *Collector) ParseCompleted(nodes, rejected, depthHits int, d time.Duration) {
	atomic.AddInt64(&c.stats.DocumentsParsed, 1)
	atomic.AddInt64(&c.stats.NodesProduced, int64(nodes))
	atomic.AddInt64(&c.stats.CandidatesRejected, int64(rejected))
	atomic.AddInt64(&c.stats.DepthLimitHits, int64(depthHits))
	atomic.AddInt64(&c.stats.ParseDurationNanos, d.Nanoseconds())

	// Track the largest tree seen so far
	for {
		largest := atomic.LoadInt64(&c.stats.LargestParsedNodes)
		if int64(nodes) <= largest {
			break
		}
		if atomic.CompareAndSwapInt64(&c.stats.LargestParsedNodes, largest, int64(nodes)) {
			break
		}
	}
}

// RenderCompleted records one finished render call
func (c *Collector) RenderCompleted(failed bool, d time.Duration) {
	atomic.AddInt64(&c.stats.RendersCompleted, 1)
	atomic.AddInt64(&c.stats.RenderDurationNanos, d.Nanoseconds())
	if failed {
		atomic.AddInt64(&c.stats.RenderErrors, 1)
	}
}

// TokenIssued records a preview token issuance
func (c *Collector) TokenIssued() {
	atomic.AddInt64(&c.stats.TokensIssued, 1)
}

// TokenVerified records a successful preview token verification
func (c *Collector) TokenVerified() {
	atomic.AddInt64(&c.stats.TokensVerified, 1)
}

// TokenFailure records a preview token verification failure
func (c *Collector) TokenFailure() {
	atomic.AddInt64(&c.stats.TokenFailures, 1)
}

// IncrementCustomCounter increments a custom named counter
func (c *Collector) IncrementCustomCounter(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if counter, exists := c.customCounters[name]; exists {
		atomic.AddInt64(counter, 1)
	} else {
		var newCounter int64 = 1
		c.customCounters[name] = &newCounter
	}
}

// Snapshot returns a copy of the current stats
func (c *Collector) Snapshot() Stats {
	return Stats{
		DocumentsParsed:     atomic.LoadInt64(&c.stats.DocumentsParsed),
		NodesProduced:       atomic.LoadInt64(&c.stats.NodesProduced),
		CandidatesRejected:  atomic.LoadInt64(&c.stats.CandidatesRejected),
		DepthLimitHits:      atomic.LoadInt64(&c.stats.DepthLimitHits),
		ParseDurationNanos:  atomic.LoadInt64(&c.stats.ParseDurationNanos),
		LargestParsedNodes:  atomic.LoadInt64(&c.stats.LargestParsedNodes),
		RendersCompleted:    atomic.LoadInt64(&c.stats.RendersCompleted),
		RenderErrors:        atomic.LoadInt64(&c.stats.RenderErrors),
		RenderDurationNanos: atomic.LoadInt64(&c.stats.RenderDurationNanos),
		TokensIssued:        atomic.LoadInt64(&c.stats.TokensIssued),
		TokensVerified:      atomic.LoadInt64(&c.stats.TokensVerified),
		TokenFailures:       atomic.LoadInt64(&c.stats.TokenFailures),
		StartTime:           c.stats.StartTime,
		Uptime:              time.Since(c.startTime),
	}
}

// GetCustomCounters returns all custom counters
func (c *Collector) GetCustomCounters() map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]int64)
	for name, counter := range c.customCounters {
		result[name] = atomic.LoadInt64(counter)
	}
	return result
}

// Reset resets all metrics to zero
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.stats = &Stats{StartTime: now}
	c.customCounters = make(map[string]*int64)
	c.startTime = now
}

// RenderErrorRate returns the percentage of renders that failed
func (c *Collector) RenderErrorRate() float64 {
	renders := atomic.LoadInt64(&c.stats.RendersCompleted)
	errors := atomic.LoadInt64(&c.stats.RenderErrors)

	if renders == 0 {
		return 0.0
	}

	return float64(errors) / float64(renders) * 100.0
}

// TokenSuccessRate returns the success rate for token verifications
func (c *Collector) TokenSuccessRate() float64 {
	verified := atomic.LoadInt64(&c.stats.TokensVerified)
	failures := atomic.LoadInt64(&c.stats.TokenFailures)

	total := verified + failures
	if total == 0 {
		return 100.0 // No operations means 100% success rate
	}

	return float64(verified) / float64(total) * 100.0
}

// AverageParseDuration returns the mean duration of one parse call
func (c *Collector) AverageParseDuration() time.Duration {
	parses := atomic.LoadInt64(&c.stats.DocumentsParsed)
	if parses == 0 {
		return 0
	}
	return time.Duration(atomic.LoadInt64(&c.stats.ParseDurationNanos) / parses)
}
