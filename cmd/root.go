package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/booruterm/booruterm/internal/booru"
	"github.com/booruterm/booruterm/internal/config"
	"github.com/booruterm/booruterm/internal/display"
	"github.com/booruterm/booruterm/internal/events"
	"github.com/booruterm/booruterm/internal/logging"
	"github.com/booruterm/booruterm/internal/media"
	"github.com/booruterm/booruterm/internal/version"
)

var opts = config.Defaults()

// RootCmd fetches a random post for the given tags and shows it.
var RootCmd = &cobra.Command{
	Use:   "booruterm [tags...]",
	Short: "Show a random image board post in the terminal",
	Long: `Fetches a random post matching the given tags from the configured provider
and renders it in the terminal. Animated posts play until Enter is pressed.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShow(cmd.Context(), cmd, args)
	},
}

func init() {
	f := RootCmd.PersistentFlags()
	f.StringVar(&opts.Config, "config", opts.Config, "Path to configuration file")
	f.StringVarP(&opts.Mode, "mode", "m", opts.Mode, "Provider to fetch from (rule34, e621, gelbooru)")
	f.IntVarP(&opts.MaxColumns, "max-columns", "c", opts.MaxColumns, "Maximum render width in cells (default: terminal width)")
	f.IntVarP(&opts.MaxRows, "max-rows", "r", opts.MaxRows, "Maximum render height in cells (default: terminal height minus footer)")
	f.BoolVar(&opts.NoAscii, "no-ascii", opts.NoAscii, "Render with sixel graphics instead of ASCII")
	f.BoolVar(&opts.Colored, "colored", opts.Colored, "Use ANSI colors for ASCII output")
	f.IntVar(&opts.Fps, "fps", opts.Fps, "Playback frame rate")
	f.IntVar(&opts.Duration, "duration", opts.Duration, "Seconds decoded per playback pass (0 for the whole input)")
	f.IntVar(&opts.PollTimeoutMs, "poll-timeout-ms", opts.PollTimeoutMs, "Frame source poll bound in milliseconds")
	f.IntVar(&opts.MaxRenderFailures, "max-render-failures", opts.MaxRenderFailures, "Consecutive render failures tolerated during playback")
	f.StringVar(&opts.FfmpegPath, "ffmpeg-path", opts.FfmpegPath, "ffmpeg binary")
	f.StringVar(&opts.LoggingLevel, "logging-level", opts.LoggingLevel, "Global logging level (debug, info, warn, error)")
	f.StringVar(&opts.LoggingFormat, "logging-format", opts.LoggingFormat, "Logging format (text, json)")
	f.StringVar(&opts.LoggingFile, "logging-file", opts.LoggingFile, "Write logs to this file")
	f.StringVar(&opts.MetricsTextfile, "metrics-textfile", opts.MetricsTextfile, "Write playback counters to this file in Prometheus text format")

	RootCmd.AddCommand(PlayCmd, VersionCmd)
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := RootCmd.ExecuteContext(context.Background()); err != nil {
		reportError(os.Stderr, err)
		return 1
	}
	return 0
}

func runShow(ctx context.Context, cmd *cobra.Command, tags []string) error {
	a, err := setup(cmd, &opts)
	if err != nil {
		return err
	}
	defer a.close()

	provider := a.opts.Provider()
	params, err := config.ProviderParams(a.opts.Config, provider, tags)
	if err != nil {
		return classify(classConfig, err)
	}

	client := booru.NewClient(version.UserAgent(), logging.GetLogger("booru"))
	post, err := client.Fetch(ctx, provider, params)
	if err != nil {
		return classify(classNetwork, err)
	}

	animated := media.IsAnimated(post.FullURL)
	a.bus.Publish(events.PostFetchedEvent{
		Provider:  string(provider),
		PostURL:   post.PageURL,
		Animated:  animated,
		Timestamp: time.Now(),
	})
	a.logger.Info("Post selected", "id", post.ID, "url", post.FullURL, "animated", animated)

	used := a.area
	if animated {
		used, err = a.play(ctx, post.FullURL, referer(post.PageURL, post.FullURL))
		if err != nil {
			return classify(classNetwork, fmt.Errorf("play %s: %w", post.FullURL, err))
		}
	} else {
		data, err := media.NewFetcher(logging.GetLogger("media")).Fetch(ctx, post)
		if err != nil {
			return classify(classNetwork, err)
		}
		used, err = a.renderer.Render(data, a.area)
		if err != nil {
			return classify(classRender, err)
		}
	}

	if err := display.NewFooter(a.out).Write(post, used.Cols); err != nil {
		return classify(classRender, err)
	}
	return nil
}
