// ABOUTME: Cobra root command and shared flags
// ABOUTME: Loads configuration before any subcommand runs
package cli

import (
	"fmt"
	"os"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/musics-player/musics-go/internal/config"
	"github.com/musics-player/musics-go/internal/version"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps persistent flags to config keys
var flagKeys = map[string]string{
	"library":   config.LibraryDirectory,
	"backend":   config.OutputBackend,
	"log-level": config.LogLevel,
	"remote":    config.RemoteEnabled,
	"port":      config.RemotePort,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("library", "l", "", "Music directory to scan")
	flags.StringP("backend", "b", "", "Audio output backend (oto, beep, portaudio, malgo, null)")
	flags.String("log-level", "", "Log level")
	flags.Bool("remote", false, "Serve the HTTP remote control")
	flags.Int("port", 0, "Remote control port")

	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.AddCommand(playCmd, scanCmd, probeCmd, configCmd, discoverCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:           config.Name,
	Short:         "A terminal music player for local files",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Setup(); err != nil {
			return err
		}
		bindFlags(cmd.Flags())
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if lo.Must(cmd.Flags().GetBool("version")) {
			fmt.Println(version.String())
			return nil
		}
		return runTUI()
	},
}

// bindFlags lets explicitly set flags override the config file. It runs
// after config.Setup, which resets viper.
func bindFlags(flags *pflag.FlagSet) {
	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil && f.Changed {
			lo.Must0(viper.BindPFlag(key, f))
		}
	}
}

// Execute runs the command line
func Execute() {
	cc.Init(&cc.Config{
		RootCmd:       rootCmd,
		Headings:      cc.HiCyan + cc.Bold + cc.Underline,
		Commands:      cc.HiYellow + cc.Bold,
		Example:       cc.Italic,
		ExecName:      cc.Bold,
		Flags:         cc.Bold,
		FlagsDataType: cc.Italic + cc.HiBlue,
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
