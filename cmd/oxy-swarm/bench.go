package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-swarm/engine"
	"github.com/Carmen-Shannon/oxy-swarm/engine/core"
	"github.com/Carmen-Shannon/oxy-swarm/engine/profiler"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/buffer_pool"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/headless"
	"github.com/Carmen-Shannon/oxy-swarm/engine/swarm"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ffff"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 2)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899")).
			Width(18)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff4444")).
			Bold(true)
)

// benchResult is what one headless run measured.
type benchResult struct {
	Frames    int
	Failed    int
	Instances int
	BatchSize int
	Draws     int
	Total     time.Duration
	// PassMs holds every frame's render time in milliseconds.
	PassMs []float64
	Pools  map[string]buffer_pool.PoolStats
}

func benchSwarm(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d: %w", frames, core.ErrInvalidConfig)
	}

	surface := headless.NewSurface()
	alloc := buffer_pool.NewHostAllocator(0)
	s, err := swarm.NewSwarm(cfg, headless.Quad(), surface, alloc, swarm.WithLabel("bench"))
	if err != nil {
		return err
	}
	defer s.Dispose()

	// The engine is driven frame by frame; its loops never start.
	prof := profiler.NewProfiler(profiler.WithLogger(nil), profiler.WithInterval(time.Hour))
	eng := engine.NewEngine(engine.WithSwarm(0, s), engine.WithProfiler(prof))

	res := benchResult{PassMs: make([]float64, 0, frames)}
	dt := float32(frameDelta)
	for i := 0; i < frames; i++ {
		eng.Step(dt)
		start := time.Now()
		if err := eng.RenderFrame(); err != nil {
			res.Failed++
		}
		took := time.Since(start)
		res.Total += took
		res.PassMs = append(res.PassMs, float64(took.Microseconds())/1000)

		for _, d := range surface.Draws() {
			res.Draws++
			res.Instances += d.Count
		}
		surface.Reset()
		res.Frames++
	}
	res.BatchSize = s.BatchRenderer().BatchSize()
	res.Pools = s.BatchRenderer().PoolStats()

	fmt.Fprintln(cmd.OutOrStdout(), renderReport(cfg.Swarm.InstanceCount, s.BatchRenderer().Mode().String(), res))
	return nil
}

func renderReport(count int, mode string, res benchResult) string {
	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}

	b.WriteString(titleStyle.Render("oxy-swarm bench") + "\n\n")
	row("mode", mode)
	row("instances", fmt.Sprintf("%d", count))
	row("batch size", fmt.Sprintf("%d", res.BatchSize))
	row("frames", fmt.Sprintf("%d", res.Frames))
	row("draws", fmt.Sprintf("%d (%.1f/frame)", res.Draws, float64(res.Draws)/float64(max(res.Frames, 1))))
	row("instances drawn", fmt.Sprintf("%d", res.Instances))
	if res.Failed > 0 {
		b.WriteString(labelStyle.Render("failed frames") + failStyle.Render(fmt.Sprintf("%d", res.Failed)) + "\n")
	}

	avg := res.Total / time.Duration(max(res.Frames, 1))
	row("avg frame", avg.String())
	row("p99 frame", fmt.Sprintf("%.3fms", percentile(res.PassMs, 0.99)))

	labels := make([]string, 0, len(res.Pools))
	for label := range res.Pools {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		ps := res.Pools[label]
		row(label, fmt.Sprintf("allocated %d free %d released %d", ps.Allocated, ps.Free, ps.Released))
	}

	if len(res.PassMs) > 1 {
		b.WriteString("\n")
		b.WriteString(asciigraph.Plot(res.PassMs,
			asciigraph.Height(plotHeight),
			asciigraph.Width(60),
			asciigraph.Caption("frame time (ms)"),
		))
	}
	return panelStyle.Render(b.String())
}

// percentile returns the q-quantile of samples by nearest rank.
func percentile(samples []float64, q float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	idx := int(q*float64(len(sorted))+0.5) - 1
	return sorted[min(max(idx, 0), len(sorted)-1)]
}
