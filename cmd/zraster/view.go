package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"
	"github.com/taigrr/zraster/internal/config"
	"github.com/taigrr/zraster/internal/logger"
	"github.com/taigrr/zraster/pkg/math3d"
	"github.com/taigrr/zraster/pkg/scene"
	"go.uber.org/zap"
)

const viewHelp = `Controls:
  Arrows/WASD - Spin the model
  Z/X         - Roll left/right
  Space       - Random spin
  Scroll, +/- - Zoom in/out
  R           - Reset view
  Q, Esc      - Quit`

func newViewCmd() *cobra.Command {
	var (
		flags config.Flags
		fps   int
	)
	cmd := &cobra.Command{
		Use:   "view [model]",
		Short: "Spin the scene interactively in the terminal",
		Long:  "Render the scene continuously into the terminal using half-block cells.\n\n" + viewHelp,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				flags.Model = args[0]
			}
			cfg, err := config.Resolve(flags)
			if err != nil {
				return err
			}
			// The terminal belongs to the viewer, so only the file gets logs.
			lvl := cfg.Logging.Level
			if err := logger.InitWithFileConfig(lvl, logger.DefaultFileConfig(cfg.Logging.LogFile), nil); err != nil {
				return err
			}
			defer logger.Sync()

			s, err := buildScene(cfg)
			if err != nil {
				return err
			}
			return runViewer(cmd.Context(), s, cfg, max(fps, 1))
		},
	}
	flags.Register(cmd.Flags())
	cmd.Flags().IntVar(&fps, "fps", 30, "target frames per second")
	return cmd
}

// fitViewport maps [-1, 1] onto the largest centered square of a w x h
// framebuffer, scaled by zoom. Half-block cells make framebuffer pixels
// roughly square, so the square keeps the model's proportions.
func fitViewport(w, h int, zoom float64) math3d.Mat4 {
	side := float64(min(w, h)) * zoom
	x := (float64(w) - side) / 2
	y := (float64(h) - side) / 2
	return math3d.Viewport(x, y, side, side)
}

// viewer is the state of one interactive session. Only the loop goroutine
// touches it.
type viewer struct {
	scene  *scene.Scene
	config *config.Config
	spin   *Spin
	zoom   float64

	width, height int // Terminal cells
}

func runViewer(ctx context.Context, s *scene.Scene, cfg *config.Config, fps int) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Enable mouse mode
	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	v := &viewer{
		scene:  s,
		config: cfg,
		spin:   NewSpin(fps),
		zoom:   1,
	}
	v.resize(width, height)
	// Start with a gentle turn, like a turntable.
	v.spin.ApplyImpulse(0, 4, 0)

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	events := term.Events()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if quit := v.handle(ev, term); quit {
				return nil
			}

		case <-ticker.C:
			if err := v.frame(ctx, term); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

func (v *viewer) resize(width, height int) {
	v.width, v.height = width, height
	// Two framebuffer rows per terminal row.
	v.scene.Resize(width, height*2)
	v.scene.Camera.Viewport = fitViewport(width, height*2, v.zoom)
}

func (v *viewer) setZoom(zoom float64) {
	v.zoom = min(max(zoom, 0.2), 5)
	v.scene.Camera.Viewport = fitViewport(v.scene.Width, v.scene.Height, v.zoom)
}

// handle applies one terminal event and reports whether to quit.
func (v *viewer) handle(ev uv.Event, term *uv.Terminal) bool {
	const impulse = 3.0 // Degrees per frame

	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		term.Erase()
		term.Resize(ev.Width, ev.Height)
		v.resize(ev.Width, ev.Height)

	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("q", "escape", "ctrl+c"):
			return true
		case ev.MatchString("w", "up"):
			v.spin.ApplyImpulse(-impulse, 0, 0)
		case ev.MatchString("s", "down"):
			v.spin.ApplyImpulse(impulse, 0, 0)
		case ev.MatchString("a", "left"):
			v.spin.ApplyImpulse(0, -impulse, 0)
		case ev.MatchString("d", "right"):
			v.spin.ApplyImpulse(0, impulse, 0)
		case ev.MatchString("z"):
			v.spin.ApplyImpulse(0, 0, -impulse)
		case ev.MatchString("x"):
			v.spin.ApplyImpulse(0, 0, impulse)
		case ev.MatchString("space"):
			v.spin.ApplyImpulse(
				(rand.Float64()-0.5)*20,
				(rand.Float64()-0.5)*20,
				(rand.Float64()-0.5)*20,
			)
		case ev.MatchString("+", "="):
			v.setZoom(v.zoom * 1.1)
		case ev.MatchString("-", "_"):
			v.setZoom(v.zoom / 1.1)
		case ev.MatchString("r"):
			v.spin.Reset()
			v.setZoom(1)
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			v.setZoom(v.zoom * 1.1)
		case uv.MouseWheelDown:
			v.setZoom(v.zoom / 1.1)
		}
	}
	return false
}

// frame advances the spin, draws the scene and blits it to the terminal.
func (v *viewer) frame(ctx context.Context, term *uv.Terminal) error {
	v.spin.Update()
	for i, obj := range v.scene.Objects() {
		obj.ResetRotation()
		if i < len(v.config.Objects) {
			r := v.config.Objects[i].Rotate
			obj.RotateX(r[0]).RotateY(r[1]).RotateZ(r[2])
		}
		obj.RotateX(v.spin.Pitch.Angle).RotateY(v.spin.Yaw.Angle).RotateZ(v.spin.Roll.Angle)
	}

	fb, err := v.scene.DrawContext(ctx)
	if err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	fb.Draw(term, uv.Rect(0, 0, v.width, v.height))
	if err := term.Display(); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	st := v.scene.Stats()
	logger.Debug("frame",
		zap.Int64("drawn", st.Drawn),
		zap.Int64("culled", st.Culled),
		zap.Duration("elapsed", st.Duration),
	)
	return nil
}
