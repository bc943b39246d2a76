// ABOUTME: Lists configuration keys with their values and environment names
// ABOUTME: Can also write the current settings to the config file
package cli

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/musics-player/musics-go/internal/config"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	configCmd.Flags().BoolP("write", "w", false, "Write the effective settings to the config file")
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if lo.Must(cmd.Flags().GetBool("write")) {
			if err := config.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", config.Path())
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tVALUE\tENV\tDESCRIPTION")
		keys := lo.Keys(config.Default)
		slices.Sort(keys)
		for _, key := range keys {
			field := config.Default[key]
			fmt.Fprintf(w, "%s\t%v\t%s\t%s\n", key, viper.Get(key), field.Env(), field.Description)
		}
		fmt.Fprintf(w, "\nconfig file: %s\n", config.Path())
		return w.Flush()
	},
}
