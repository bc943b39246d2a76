// ABOUTME: Prints the stream parameters of a media file
// ABOUTME: Reports the same error kinds playback would
package cli

import (
	"fmt"

	"github.com/musics-player/musics-go/internal/app"
	"github.com/musics-player/musics-go/internal/config"
	"github.com/musics-player/musics-go/pkg/player"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe <file>",
	Short: "Show the audio track of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := player.Inspect(config.Fs(), args[0])
		if err != nil {
			return err
		}

		p := info.Track.Params
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "path:        %s\n", info.Path)
		fmt.Fprintf(out, "codec:       %s\n", p.Codec)
		fmt.Fprintf(out, "sample rate: %d Hz\n", p.SampleRate)
		fmt.Fprintf(out, "channels:    %d\n", p.Channels)
		if p.BitDepth > 0 {
			fmt.Fprintf(out, "bit depth:   %d\n", p.BitDepth)
		}
		if info.DurationKnown {
			fmt.Fprintf(out, "duration:    %s\n", app.FormatDuration(info.Duration))
		} else {
			fmt.Fprintln(out, "duration:    unknown")
		}
		return nil
	},
}
