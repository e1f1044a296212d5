package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deedles.dev/dwr"
	"deedles.dev/dwr/internal/config"
	"deedles.dev/dwr/layershell"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var demoOpts struct {
	count  int
	frames int
	scene  bool
	watch  bool
	width  uint32
	height uint32
	anchor string
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Show surfaces until interrupted",
	Long: `Create layer surfaces and keep drawing them until interrupted.

Surfaces are requested one after another. Each is painted with the
configured clear color, or with the demo scene if --scene is given, and
is redrawn only when the compositor is ready for a new frame.

With --watch, changes to the surface section of the config file are
applied to the running surfaces and sent with their next frame.`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().IntVarP(&demoOpts.count, "count", "n", 1,
		"Number of surfaces to create")
	demoCmd.Flags().IntVar(&demoOpts.frames, "frames", 0,
		"Stop after this many frames (0 = run until interrupted)")
	demoCmd.Flags().BoolVar(&demoOpts.scene, "scene", false,
		"Draw the demo scene instead of a solid color")
	demoCmd.Flags().BoolVarP(&demoOpts.watch, "watch", "w", false,
		"Apply changes to the config file while running")
	demoCmd.Flags().Uint32Var(&demoOpts.width, "width", 0,
		"Surface width (overrides config, 0 = stretch)")
	demoCmd.Flags().Uint32Var(&demoOpts.height, "height", 0,
		"Surface height (overrides config, 0 = stretch)")
	demoCmd.Flags().StringVar(&demoOpts.anchor, "anchor", "",
		"Surface anchor, such as top|left (overrides config)")
}

// demoStats counts what happened to the surfaces of a demo run.
type demoStats struct {
	start    time.Time
	created  int
	closed   int
	rendered int64
	skipped  int64
	failed   int64
	pixels   int64
}

func (s *demoStats) add(outcome dwr.RenderOutcome) {
	switch outcome.Result {
	case dwr.Rendered:
		s.rendered++
		w, h := outcome.Surface.FrameSize()
		s.pixels += int64(w) * int64(h)
	case dwr.RenderSkipped:
		s.skipped++
	case dwr.RenderFailed:
		s.failed++
		logger.Warn("render failed", "surface", outcome.Surface.ID(), "error", outcome.Err)
	}
}

func (s *demoStats) String() string {
	return fmt.Sprintf(
		"%v surfaces (%v closed), %v frames (%v skipped, %v failed), %v pixels drawn in %v",
		s.created,
		s.closed,
		humanize.Comma(s.rendered),
		humanize.Comma(s.skipped),
		humanize.Comma(s.failed),
		humanize.SIWithDigits(float64(s.pixels), 1, ""),
		time.Since(s.start).Round(time.Millisecond),
	)
}

// surfaceConfig applies the command-line overrides to the surface
// section of c.
func surfaceConfig(cmd *cobra.Command, c *config.Config) (dwr.SurfaceConfig, error) {
	sc, err := c.SurfaceConfig()
	if err != nil {
		return sc, err
	}

	if cmd.Flags().Changed("width") {
		sc.Width = demoOpts.width
	}
	if cmd.Flags().Changed("height") {
		sc.Height = demoOpts.height
	}
	if cmd.Flags().Changed("anchor") {
		sc.Anchor, err = layershell.ParseAnchor(demoOpts.anchor)
		if err != nil {
			return sc, err
		}
	}

	if p := dwr.Resolve(sc.Width, sc.Height, sc.Anchor, sc.Margins); !p.Valid() {
		return sc, fmt.Errorf("a zero width or height needs both edges of that axis anchored, have %v", sc.Anchor)
	}
	return sc, nil
}

// reconfigure applies new geometry to every live surface. It is sent
// with each surface's next frame.
func reconfigure(client *dwr.Client, sc dwr.SurfaceConfig) {
	for _, s := range client.Surfaces() {
		if !s.IsAlive() {
			continue
		}
		s.SetSize(sc.Width, sc.Height)
		s.SetAnchor(sc.Anchor)
		s.SetMargin(sc.Margins)
	}
	logger.Info("surface geometry changed", "width", sc.Width, "height", sc.Height, "anchor", sc.Anchor)
}

func runDemo(cmd *cobra.Command, args []string) error {
	sc, err := surfaceConfig(cmd, cfg)
	if err != nil {
		return err
	}
	interval, err := cfg.FrameIntervalDuration()
	if err != nil {
		return err
	}
	opts, err := cfg.ClientOptions()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := dwr.NewClient(append(opts, dwr.WithLogger(logger))...)
	if err != nil {
		return err
	}
	defer client.Close()

	var configs <-chan *config.Config
	if demoOpts.watch {
		watcher, err := newConfigWatcher(configPath())
		if err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		defer watcher.Close()
		configs = watcher.Configs()
	}

	stats := demoStats{start: time.Now()}
	err = demoLoop(ctx, client, sc, interval, configs, &stats)
	fmt.Println(stats.String())
	return err
}

func demoLoop(ctx context.Context, client *dwr.Client, sc dwr.SurfaceConfig, interval time.Duration, configs <-chan *config.Config, stats *demoStats) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var requested int
	onReady := func(s *dwr.Surface) {
		stats.created++
		logger.Info("surface ready", "surface", s.ID(), "outputs", len(client.Outputs()))
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-configs:
			next, err := c.SurfaceConfig()
			if err != nil {
				logger.Warn("ignoring config", "error", err)
				break
			}
			sc = next
			reconfigure(client, sc)
		case <-ticker.C:
		}

		err := client.DispatchPending()
		if err != nil {
			return fmt.Errorf("connection lost: %w", err)
		}

		if (requested < demoOpts.count) && client.TryCreateSurface(sc, onReady) {
			requested++
		}

		for _, outcome := range render(client) {
			stats.add(outcome)
		}

		alive := len(client.Surfaces())
		stats.closed = requested - alive
		if (requested == demoOpts.count) && !client.IsBusy() && (alive == 0) {
			logger.Info("every surface was closed")
			return nil
		}
		if (demoOpts.frames > 0) && (stats.rendered >= int64(demoOpts.frames)) {
			return nil
		}
	}
}

func render(client *dwr.Client) []dwr.RenderOutcome {
	if !demoOpts.scene {
		return client.TryRender()
	}

	surfaces := client.Surfaces()
	outcomes := make([]dwr.RenderOutcome, 0, len(surfaces))
	for _, s := range surfaces {
		if s.HasFrameToken() {
			outcomes = append(outcomes, s.DemoRender())
		}
	}
	return outcomes
}
