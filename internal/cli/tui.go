// ABOUTME: Interactive session behind the root command
// ABOUTME: Runs the TUI with optional remote control and saves state on exit
package cli

import (
	"fmt"

	"github.com/musics-player/musics-go/internal/app"
	"github.com/musics-player/musics-go/internal/config"
	"github.com/musics-player/musics-go/internal/ui"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

func runTUI() error {
	closer, err := setupLogging(false)
	if err != nil {
		return err
	}
	defer closer.Close()

	engine, err := newEngine()
	if err != nil {
		return err
	}

	player := app.New(engine, loadLibrary())
	defer player.Close()

	svc := startServices(player)
	defer svc.stop()

	prog, err := ui.Run(player)
	if err != nil {
		return err
	}
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}

	viper.Set(config.PlayerVolume, player.Volume())
	viper.Set(config.LibraryDirectory, player.Library().Root())
	if err := config.Save(); err != nil {
		log.Warnf("failed to save config: %v", err)
	}
	return nil
}
