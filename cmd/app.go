package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/booruterm/booruterm/internal/config"
	"github.com/booruterm/booruterm/internal/events"
	"github.com/booruterm/booruterm/internal/ffmpeg"
	"github.com/booruterm/booruterm/internal/frames"
	"github.com/booruterm/booruterm/internal/logging"
	"github.com/booruterm/booruterm/internal/media"
	"github.com/booruterm/booruterm/internal/metrics"
	"github.com/booruterm/booruterm/internal/player"
	"github.com/booruterm/booruterm/internal/render"
	"github.com/booruterm/booruterm/internal/terminal"
	"github.com/booruterm/booruterm/internal/version"
)

// Lines reserved below the image: footer (4) plus prompt and shell line.
const reservedRows = 7

// Fallback render area when stdout is not a terminal.
const (
	fallbackCols = 60
	fallbackRows = 24
)

// app holds what every command shares after options were resolved.
type app struct {
	opts     config.Options
	out      *os.File
	area     render.Area
	renderer render.Renderer
	bus      *events.Bus
	metrics  *metrics.Playback
	detach   func()
	logger   logging.Logger
}

// setup resolves options, initializes logging and builds the renderer.
func setup(cmd *cobra.Command, opts *config.Options) (*app, error) {
	if err := config.LoadConfig(opts, cmd); err != nil {
		return nil, classify(classConfig, err)
	}
	if err := opts.Validate(); err != nil {
		return nil, classify(classConfig, err)
	}

	logCfg := config.LoadLoggingConfig(opts.Config)
	logCfg.Level = opts.LoggingLevel
	logCfg.Format = opts.LoggingFormat
	logCfg.File = opts.LoggingFile
	if err := logging.Initialize(logCfg); err != nil {
		return nil, classify(classConfig, err)
	}

	a := &app{
		opts:    *opts,
		out:     os.Stdout,
		bus:     events.New(),
		metrics: metrics.NewPlayback(),
		logger:  logging.GetLogger("main"),
	}
	a.detach = a.metrics.Attach(a.bus)

	area, err := resolveArea(opts, a.out)
	if err != nil {
		a.close()
		return nil, err
	}
	a.area = area
	a.renderer = newRenderer(opts, a.out)

	a.logger.Debug("Options resolved",
		"version", version.Version,
		"mode", opts.Mode,
		"area", area.String(),
		"sixel", opts.NoAscii,
		"config", opts.Config)
	return a, nil
}

// resolveArea applies the terminal size to unset area bounds.
func resolveArea(opts *config.Options, out *os.File) (render.Area, error) {
	cols, rows := opts.MaxColumns, opts.MaxRows
	if cols > 0 && rows > 0 {
		return render.Area{Cols: cols, Rows: rows}, nil
	}

	tc, tr := fallbackCols, fallbackRows
	if terminal.IsTerminal(int(out.Fd())) {
		var err error
		tc, tr, err = terminal.Size(out)
		if err != nil {
			return render.Area{}, classify(classRender, fmt.Errorf("query terminal size: %w", err))
		}
	}
	if cols == 0 {
		cols = tc
	}
	if rows == 0 {
		rows = max(tr-reservedRows, 1)
	}
	return render.Area{Cols: cols, Rows: rows}, nil
}

func newRenderer(opts *config.Options, out *os.File) render.Renderer {
	if !opts.NoAscii {
		return render.NewASCII(out, opts.Colored)
	}
	cw, ch, ok := terminal.CellSize(out)
	if !ok {
		cw, ch = render.DefaultCellWidth, render.DefaultCellHeight
	}
	return render.NewSixel(out, cw, ch)
}

// play runs the playback loop for url until Enter, a signal or an error.
// It returns the area used by the last drawn frame.
func (a *app) play(ctx context.Context, url, referer string) (render.Area, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(a.out, "Press Enter to stop animation...")
	if err := render.ClearScreen(a.out); err != nil {
		return render.Area{}, classify(classRender, err)
	}

	launcher := &frames.Launcher{
		FFmpegPath:   a.opts.FfmpegPath,
		ClientHeader: version.ClientHeader(),
		UserAgent:    media.BrowserUserAgent,
		PollTimeout:  a.opts.PollTimeout(),
		Logger:       logging.GetLogger("frames"),
		FFmpegLogger: logging.GetLogger("ffmpeg"),
	}
	req := frames.Request{
		URL:      url,
		FPS:      a.opts.Fps,
		Duration: a.opts.PlaybackDuration(),
		Referer:  referer,
	}

	open := func(stop func() bool) (player.FrameSource, error) {
		src, err := launcher.Open(req, stop)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	enter := func() (player.Monitor, error) {
		g, err := terminal.Enter(os.Stdin, logging.GetLogger("terminal"))
		if err != nil {
			return nil, err
		}
		return g, nil
	}

	tracker := &areaTracker{Renderer: a.renderer, used: a.area}
	p := player.New(tracker, a.out, player.Options{
		Name:              url,
		FPS:               a.opts.Fps,
		Area:              a.area,
		MaxRenderFailures: a.opts.MaxRenderFailures,
	}, logging.GetLogger("player"))
	p.SetEventBus(a.bus)

	err := p.Play(ctx, open, enter)
	return tracker.used, err
}

// referer picks the Referer for a playback input: the page the post came
// from when known, else the input's own origin.
func referer(pageURL, input string) string {
	if origin := ffmpeg.Origin(pageURL); origin != "" {
		return origin
	}
	return ffmpeg.Origin(input)
}

// close flushes metrics and releases logging.
func (a *app) close() {
	if !a.metrics.Flush(time.Second) {
		a.logger.Warn("Metrics still pending after flush timeout")
	}
	if a.opts.MetricsTextfile != "" {
		if err := a.metrics.WriteTextfile(a.opts.MetricsTextfile); err != nil {
			a.logger.Warn("Failed to write metrics textfile", "path", a.opts.MetricsTextfile, "error", err)
		}
	}
	snap := a.metrics.Snapshot()
	a.logger.Debug("Session totals",
		"frames_rendered", snap.FramesRendered,
		"frames_dropped", snap.FramesDropped,
		"restarts", snap.Restarts)
	a.detach()
	logging.Close()
}

// areaTracker records the area of the last successful render.
type areaTracker struct {
	render.Renderer
	used render.Area
}

func (t *areaTracker) Render(frame []byte, area render.Area) (render.Area, error) {
	used, err := t.Renderer.Render(frame, area)
	if err == nil {
		t.used = used
	}
	return used, err
}
