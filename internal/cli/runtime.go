// ABOUTME: Builds the engine, library and services from configuration
// ABOUTME: Shared by the interactive and headless commands
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/musics-player/musics-go/internal/config"
	"github.com/musics-player/musics-go/internal/discovery"
	"github.com/musics-player/musics-go/internal/library"
	"github.com/musics-player/musics-go/internal/logging"
	"github.com/musics-player/musics-go/internal/metrics"
	"github.com/musics-player/musics-go/internal/remote"
	"github.com/musics-player/musics-go/pkg/audio"
	"github.com/musics-player/musics-go/pkg/audio/output"
	"github.com/musics-player/musics-go/pkg/player"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

func setupLogging(stream bool) (io.Closer, error) {
	return logging.Setup(config.Fs(), viper.GetString(config.LogLevel), config.LogPath(), stream)
}

func outputSpec() audio.SignalSpec {
	return audio.SignalSpec{
		SampleRate: viper.GetInt(config.OutputSampleRate),
		Channels:   viper.GetInt(config.OutputChannels),
	}
}

// newEngine opens the configured device and wires metrics into the engine
func newEngine() (*player.Engine, error) {
	backend := viper.GetString(config.OutputBackend)
	dev, err := output.New(backend, outputSpec())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s output: %w", backend, err)
	}

	engine, err := player.NewEngine(metrics.Hooks(player.EngineConfig{
		Device: dev,
		Fs:     config.Fs(),
		OnStreamEnd: func(path string, reason player.EndReason) {
			if reason != player.EndOfStream {
				log.Warnf("%s ended early: %s", path, reason)
			}
		},
	}))
	if err != nil {
		dev.Close()
		return nil, err
	}

	engine.SetVolume(float32(viper.GetFloat64(config.PlayerVolume)))
	metrics.Volume.Set(float64(engine.Volume()))
	return engine, nil
}

func cachePath() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = config.Dir()
	}
	return filepath.Join(base, config.Name, "library.json")
}

// loadLibrary scans the configured directory, reusing a fresh cache
func loadLibrary() *library.Library {
	lib := library.New(config.Fs(), viper.GetString(config.LibraryDirectory)).
		WithCache(library.NewCache(config.Fs(), cachePath(), library.DefaultCacheLifetime))
	if err := lib.Load(); err != nil {
		log.Warnf("library unavailable: %v", err)
	}
	metrics.LibrarySongs.Set(float64(lib.Len()))
	return lib
}

// services are the optional network pieces around a player
type services struct {
	remote    *remote.Server
	discovery *discovery.Manager
}

func startServices(ctl remote.Controller) *services {
	s := &services{}
	if !viper.GetBool(config.RemoteEnabled) {
		return s
	}

	port := viper.GetInt(config.RemotePort)
	s.remote = remote.New(remote.Config{Port: port}, ctl)
	go func() {
		if err := s.remote.Start(); err != nil {
			log.Errorf("remote control stopped: %v", err)
		}
	}()

	if viper.GetBool(config.RemoteMDNS) {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		s.discovery = discovery.NewManager(discovery.Config{
			ServiceName: fmt.Sprintf("%s-%s", hostname, config.Name),
			Port:        port,
		})
		if err := s.discovery.Advertise(); err != nil {
			log.Warnf("mDNS advertisement failed: %v", err)
		}
	}
	return s
}

func (s *services) stop() {
	if s.discovery != nil {
		s.discovery.Stop()
	}
	if s.remote != nil {
		s.remote.Stop()
	}
}
