// ABOUTME: Headless playback of files given on the command line
// ABOUTME: Logs progress and stops cleanly on interrupt
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/musics-player/musics-go/internal/app"
	"github.com/musics-player/musics-go/internal/library"
	"github.com/musics-player/musics-go/internal/metrics"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const progressInterval = 5 * time.Second

func init() {
	playCmd.Flags().Bool("shuffle", false, "Play the files in random order")
}

var playCmd = &cobra.Command{
	Use:   "play <files...>",
	Short: "Play files without the interface",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		closer, err := setupLogging(true)
		if err != nil {
			return err
		}
		defer closer.Close()

		engine, err := newEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		if lo.Must(cmd.Flags().GetBool("shuffle")) {
			args = lo.Shuffle(slices.Clone(args))
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		played := 0
		for _, path := range args {
			if ctx.Err() != nil {
				break
			}
			if err := engine.PlayFile(path); err != nil {
				metrics.ObserveOpenFailure(err)
				log.Errorf("skipping %s: %v", path, err)
				continue
			}
			played++
			log.Infof("playing %s (%s)", library.Title(path), app.FormatDuration(engine.SongDuration()))
			waitForEnd(ctx, engine)
		}
		engine.Stop()

		if played == 0 {
			return errors.New("nothing could be played")
		}
		return nil
	},
}

// progressSource is the part of the engine the wait loop polls
type progressSource interface {
	SongFinishedPlaying() bool
	TimeElapsed() time.Duration
	SongDuration() time.Duration
}

func waitForEnd(ctx context.Context, src progressSource) {
	poll := time.NewTicker(100 * time.Millisecond)
	defer poll.Stop()
	lastReport := time.Now()

	for {
		select {
		case <-ctx.Done():
			log.Info("interrupted")
			return
		case now := <-poll.C:
			if src.SongFinishedPlaying() {
				return
			}
			if now.Sub(lastReport) >= progressInterval {
				lastReport = now
				log.Infof("%s / %s", app.FormatDuration(src.TimeElapsed()), app.FormatDuration(src.SongDuration()))
			}
		}
	}
}
