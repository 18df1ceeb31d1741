package llm

import (
	"sort"
	"sync"
	"time"
)

// Operation labels for recorded API calls.
const (
	OpStructured = "structured"
	OpChat       = "chat"
	OpEmbeddings = "embeddings"
)

type sample struct {
	at    time.Time
	ms    int64
	model string
	err   bool
}

// OpSnapshot aggregates one operation's samples inside the window.
type OpSnapshot struct {
	Count  int            `json:"count"`
	Errors int            `json:"errors"`
	MinMs  int64          `json:"min_ms"`
	MaxMs  int64          `json:"max_ms"`
	AvgMs  float64        `json:"avg_ms"`
	P50Ms  float64        `json:"p50_ms"`
	P95Ms  float64        `json:"p95_ms"`
	P99Ms  float64        `json:"p99_ms"`
	Models map[string]int `json:"models"`
}

// StatsSnapshot is a point-in-time view of recent API usage, broken down
// by operation.
type StatsSnapshot struct {
	Operations map[string]OpSnapshot `json:"operations"`
}

// Stats tracks API call latencies, per-model call counts, and error
// counts per operation, within a rolling time window.
type Stats struct {
	mu      sync.Mutex
	maxAge  time.Duration
	samples map[string][]sample
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{
		maxAge:  maxAge,
		samples: make(map[string][]sample),
	}
}

// Record adds one call observation under the given operation label.
func (s *Stats) Record(op, model string, duration time.Duration, callErr error) {
	ms := duration.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples[op] = append(s.samples[op], sample{
		at:    now,
		ms:    ms,
		model: model,
		err:   callErr != nil,
	})
}

// Snapshot reports the aggregates of every operation with samples inside
// the window.
func (s *Stats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)

	snap := StatsSnapshot{Operations: make(map[string]OpSnapshot, len(s.samples))}
	for op, samples := range s.samples {
		if len(samples) == 0 {
			continue
		}
		snap.Operations[op] = summarize(samples)
	}
	return snap
}

func summarize(samples []sample) OpSnapshot {
	values := make([]int64, 0, len(samples))
	models := make(map[string]int)
	var sum int64
	var errs int
	for _, sm := range samples {
		values = append(values, sm.ms)
		sum += sm.ms
		models[sm.model]++
		if sm.err {
			errs++
		}
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	return OpSnapshot{
		Count:  len(values),
		Errors: errs,
		MinMs:  values[0],
		MaxMs:  values[len(values)-1],
		AvgMs:  float64(sum) / float64(len(values)),
		P50Ms:  percentile(values, 50),
		P95Ms:  percentile(values, 95),
		P99Ms:  percentile(values, 99),
		Models: models,
	}
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	for op, samples := range s.samples {
		writeIdx := 0
		for _, sm := range samples {
			if !sm.at.Before(cutoff) {
				samples[writeIdx] = sm
				writeIdx++
			}
		}
		if writeIdx == 0 {
			delete(s.samples, op)
			continue
		}
		s.samples[op] = samples[:writeIdx]
	}
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
