package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// PlayCmd plays any URL or local file through the playback loop.
var PlayCmd = &cobra.Command{
	Use:   "play <url|file>",
	Short: "Play a video, gif or image URL or file in the terminal",
	Long: `Decodes the input with ffmpeg and plays it in a loop at the configured frame
rate until Enter is pressed or the process is interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, &opts)
		if err != nil {
			return err
		}
		defer a.close()

		input := args[0]
		if _, err := a.play(cmd.Context(), input, referer("", input)); err != nil {
			return classify(classNetwork, fmt.Errorf("play %s: %w", input, err))
		}
		return nil
	},
}
