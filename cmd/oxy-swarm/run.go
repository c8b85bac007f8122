package main

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-swarm/common"
	"github.com/Carmen-Shannon/oxy-swarm/engine"
	"github.com/Carmen-Shannon/oxy-swarm/engine/camera"
	"github.com/Carmen-Shannon/oxy-swarm/engine/config"
	"github.com/Carmen-Shannon/oxy-swarm/engine/core"
	"github.com/Carmen-Shannon/oxy-swarm/engine/profiler"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-swarm/engine/sprite"
	"github.com/Carmen-Shannon/oxy-swarm/engine/swarm"
	"github.com/Carmen-Shannon/oxy-swarm/engine/window"
	"github.com/spf13/cobra"
)

const discSize = 64

// loadSprite opens the configured sprite image, or builds the procedural disc when none is set.
func loadSprite(cfg config.SwarmConfig) (sprite.Sprite, error) {
	opts := []sprite.SpriteBuilderOption{sprite.WithPixelsPerUnit(cfg.PixelsPerUnit)}
	if cfg.SpritePath == "" {
		return sprite.NewSprite(sprite.Disc(discSize), append(opts, sprite.WithName("disc"))...), nil
	}
	return sprite.Load(cfg.SpritePath, opts...)
}

func runSwarm(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := core.Logger()

	win := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	defer func() {
		// already closed when the engine quit through Esc
		_ = win.Close()
	}()

	presentMode := renderer.PresentModeUncapped
	if cfg.Window.VSync {
		presentMode = renderer.PresentModeVSync
	}
	r := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
		renderer.WithPresentMode(presentMode),
		renderer.WithLogger(logger),
	)
	defer r.Release()

	spr, err := loadSprite(cfg.Swarm)
	if err != nil {
		return err
	}
	mat := material.NewMaterial(spr.Texture(),
		material.WithName("swarm"),
		material.WithInstancing(true),
		material.WithTimeHue(0.25),
	)
	surface, err := r.NewSpriteSurface("swarm", spr, mat, cfg.Swarm.BatchSize, cfg.Swarm.RetainSlack)
	if err != nil {
		return err
	}

	cam := camera.NewCamera(
		camera.WithAspect(win.AspectRatio()),
		camera.WithSize(8),
		camera.WithSizeBounds(0.5, 200),
	)
	s, err := swarm.NewSwarm(cfg, renderer.NewRenderInfo(spr, mat), surface, r.Allocator(),
		swarm.WithCamera(cam),
		swarm.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer s.Dispose()

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithFrameTarget(r),
		engine.WithSwarm(0, s),
		engine.WithTickRate(cfg.Swarm.TickRate),
		engine.WithRenderFrameLimit(cfg.Window.FrameCap),
		engine.WithProfiling(true),
		engine.WithLogger(logger),
	)

	ctrl := camera.NewController(cam)
	win.SetKeyUpCallback(ctrl.KeyUp)
	win.SetScrollCallback(ctrl.Scroll)
	win.SetDragCallback(func(dx, dy float32) {
		ctrl.Drag(dx, dy, win.Height())
	})
	win.SetKeyDownCallback(func(keyCode uint32) {
		ctrl.KeyDown(keyCode)
		switch keyCode {
		case common.KeyM:
			logger.Info("submission mode toggled", "mode", s.ToggleMode())
		case common.KeySpace:
			s.SetPaused(!s.Paused())
			logger.Info("simulation paused", "paused", s.Paused())
		case common.KeyR:
			cam.SetPosition(0, 0)
			cam.SetSize(8)
		case common.KeyEsc:
			eng.Quit()
		}
	})
	eng.SetTickCallback(func(float32) {
		ctrl.Update()
	})

	var title atomic.Pointer[string]
	eng.SetReportCallback(func(rep profiler.Report) {
		t := fmt.Sprintf("%s | %.0f fps | %d instances | %s | %d draws",
			cfg.Window.Title, rep.FPS, s.Simulation().Count(), s.BatchRenderer().Mode(), rep.Draws)
		title.Store(&t)
	})
	eng.SetUpdateCallback(func() {
		if t := title.Swap(nil); t != nil {
			win.SetTitle(*t)
		}
	})

	if configFile != "" {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go func() {
			err := config.Watch(ctx, configFile, func(next *config.Config) {
				if err := s.Apply(next); err != nil {
					logger.Warn("config reload rejected", "err", err)
					return
				}
				eng.SetTickRate(next.Swarm.TickRate)
				eng.SetRenderFrameLimit(next.Window.FrameCap)
				if next.Log.Level != "" && logLevel == "" {
					_ = core.SetLevel(next.Log.Level)
				}
			})
			if err != nil {
				logger.Error("config watch stopped", "path", configFile, "err", err)
			}
		}()
	}

	logger.Info("controls: WASD/arrows pan, Q/E or scroll zoom, middle-drag move, M toggle mode, Space pause, R reset view, Esc quit")
	eng.Run()
	return nil
}
