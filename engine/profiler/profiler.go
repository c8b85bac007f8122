package profiler

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-swarm/engine/core"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/batch_renderer"
	"github.com/charmbracelet/log"
)

// Report is one interval of frame, pass and memory statistics.
type Report struct {
	Elapsed time.Duration
	FPS     float64

	// Pass counters summed over the interval.
	Passes    int
	Failed    int
	Instances int
	Batches   int
	Draws     int
	Trimmed   int
	// AvgPass and MaxPass are the mean and worst Render durations.
	AvgPass time.Duration
	MaxPass time.Duration

	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	NumGC       uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
}

// Profiler tracks frame rate, render pass counters and memory statistics.
// Outputs a Report to the log at a configurable interval.
type Profiler struct {
	mu     *sync.Mutex
	logger *log.Logger
	now    func() time.Time

	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	pending Report
	passSum time.Duration
	last    Report
}

// ProfilerOption is a functional option applied in NewProfiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often Tick emits a report. Defaults to one second.
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		p.updateInterval = d
	}
}

// WithLogger sets the logger reports are written to. Defaults to core.Logger(). A nil logger disables output.
func WithLogger(l *log.Logger) ProfilerOption {
	return func(p *Profiler) {
		p.logger = l
	}
}

// WithClock replaces time.Now, for deterministic tests.
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// NewProfiler creates a new Profiler.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		mu:             &sync.Mutex{},
		logger:         core.Logger(),
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// RecordPass adds one batch renderer pass to the current interval.
//
// Parameters:
//   - stats: the pass statistics returned by Render
//   - took: how long Render ran
//   - err: the error Render returned, if any
func (p *Profiler) RecordPass(stats batch_renderer.PassStats, took time.Duration, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pending.Passes++
	if err != nil {
		p.pending.Failed++
	}
	p.pending.Instances += stats.Instances
	p.pending.Batches += stats.Batches
	p.pending.Draws += stats.Submitted
	p.pending.Trimmed += stats.Trimmed
	p.passSum += took
	if took > p.pending.MaxPass {
		p.pending.MaxPass = took
	}
}

// Tick should be called once per frame to track frame timing.
// When the update interval has elapsed the interval is closed, logged and returned.
//
// Returns:
//   - Report: the closed interval, valid only when the second result is true
//   - bool: true if an interval was closed this tick
func (p *Profiler) Tick() (Report, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Report{}, false
	}

	r := p.pending
	r.Elapsed = elapsed
	r.FPS = float64(p.frameCount) / elapsed.Seconds()
	if r.Passes > 0 {
		r.AvgPass = p.passSum / time.Duration(r.Passes)
	}
	p.readMemory(&r, elapsed)

	if p.logger != nil {
		p.logger.Info("profiler",
			"fps", r.FPS,
			"passes", r.Passes,
			"failed", r.Failed,
			"instances", r.Instances,
			"batches", r.Batches,
			"draws", r.Draws,
			"trimmed", r.Trimmed,
			"avgPass", r.AvgPass,
			"maxPass", r.MaxPass,
			"heapMB", r.HeapMB,
			"allocMBps", r.AllocRateMB,
			"gc", r.NumGC,
			"gcMaxPauseUs", r.MaxPauseUs,
		)
	}

	p.frameCount = 0
	p.lastTime = currentTime
	p.pending = Report{}
	p.passSum = 0
	p.last = r
	return r, true
}

// Last returns the most recently closed interval.
func (p *Profiler) Last() Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func (p *Profiler) readMemory(r *Report, elapsed time.Duration) {
	runtime.ReadMemStats(&p.memStats)
	r.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	r.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	r.AllocRateMB = float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	r.NumGC = gcCount
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses.
		r.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > r.MaxPauseUs {
				r.MaxPauseUs = pause
			}
		}
	}
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
}
