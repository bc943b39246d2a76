// ABOUTME: Viper configuration backed by an afero filesystem
// ABOUTME: Reads musics.toml from the config directory with MUSICS_ environment overrides
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	// Name is the application name used for the config file and env prefix
	Name = "musics"

	// EnvConfigPath overrides the config directory
	EnvConfigPath = "MUSICS_CONFIG_PATH"
)

// EnvKeyReplacer maps config keys to environment variable names
var EnvKeyReplacer = strings.NewReplacer(".", "_")

var fs = afero.Afero{Fs: afero.NewOsFs()}

// Fs returns the filesystem the configuration lives on
func Fs() afero.Afero {
	return fs
}

// SetFs replaces the filesystem, mostly for tests
func SetFs(backend afero.Fs) {
	fs = afero.Afero{Fs: backend}
}

func envName(key string) string {
	return strings.ToUpper(Name + "_" + EnvKeyReplacer.Replace(key))
}

// Dir resolves the configuration directory, creating it if needed
func Dir() string {
	dir, ok := os.LookupEnv(EnvConfigPath)
	if !ok {
		base, err := os.UserConfigDir()
		if err != nil {
			base = "."
		}
		dir = filepath.Join(base, Name)
	}
	lo.Must0(fs.MkdirAll(dir, os.ModePerm))
	return dir
}

// Path is the configuration file location
func Path() string {
	return filepath.Join(Dir(), Name+".toml")
}

// Setup registers defaults and environment bindings, then reads the config
// file. A missing file is not an error.
func Setup() error {
	viper.Reset()
	viper.SetConfigName(Name)
	viper.SetConfigType("toml")
	viper.SetFs(fs)
	viper.AddConfigPath(Dir())

	viper.SetEnvPrefix(Name)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for key := range Default {
		viper.MustBindEnv(key)
	}

	viper.SetTypeByDefaultValue(true)
	for key, field := range Default {
		viper.SetDefault(key, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	return nil
}

// Save writes the current settings to the config file
func Save() error {
	if err := viper.WriteConfigAs(Path()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// LogPath resolves the configured log file against the config directory
func LogPath() string {
	file := viper.GetString(LogFile)
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(Dir(), file)
}
