// Package profiler - Operation timing and periodic runtime reports.
package profiler

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultReportInterval is how often Run logs a report when no interval is
// given.
const DefaultReportInterval = 5 * time.Second

// OperationStats summarises the recorded durations of one operation.
type OperationStats struct {
	Name  string
	Count int64
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
}

// Average returns the mean duration, or zero when nothing was recorded.
func (s OperationStats) Average() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// Profiler tracks operation timings. It is safe for concurrent use.
type Profiler struct {
	mu         sync.Mutex
	startTime  time.Time
	operations map[string]*OperationStats
	logger     *zap.Logger
}

// New returns a profiler that reports through logger. A nil logger disables
// reporting but timings are still recorded.
func New(logger *zap.Logger) *Profiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Profiler{
		startTime:  time.Now(),
		operations: make(map[string]*OperationStats),
		logger:     logger,
	}
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes
func (p *Profiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		p.Record(name, time.Since(start))
	}
}

// Record adds one completed operation of the given duration.
func (p *Profiler) Record(name string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	op, ok := p.operations[name]
	if !ok {
		op = &OperationStats{Name: name, Min: d, Max: d}
		p.operations[name] = op
	}
	op.Count++
	op.Total += d
	if d < op.Min {
		op.Min = d
	}
	if d > op.Max {
		op.Max = d
	}
}

// Snapshot returns the current statistics sorted by operation name.
func (p *Profiler) Snapshot() []OperationStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]OperationStats, 0, len(p.operations))
	for _, op := range p.operations {
		out = append(out, *op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Report logs the runtime and operation statistics once.
func (p *Profiler) Report() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	p.logger.Info("runtime",
		zap.Duration("uptime", time.Since(p.startTime).Truncate(time.Millisecond)),
		zap.Int("goroutines", runtime.NumGoroutine()),
		zap.Int64("cgo_calls", runtime.NumCgoCall()),
		zap.Uint64("heap_alloc", mem.HeapAlloc),
		zap.Uint32("gc_cycles", mem.NumGC))

	for _, op := range p.Snapshot() {
		p.logger.Info("operation",
			zap.String("name", op.Name),
			zap.Int64("count", op.Count),
			zap.Duration("avg", op.Average()),
			zap.Duration("min", op.Min),
			zap.Duration("max", op.Max))
	}
}

// Run reports every interval until ctx is done, then reports a final time.
func (p *Profiler) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultReportInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.Report()
			return nil
		case <-ticker.C:
			p.Report()
		}
	}
}
