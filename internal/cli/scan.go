// ABOUTME: Library scan and search from the command line
// ABOUTME: Always rescans and refreshes the cache
package cli

import (
	"fmt"

	"github.com/musics-player/musics-go/internal/config"
	"github.com/musics-player/musics-go/internal/library"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	scanCmd.Flags().StringP("search", "s", "", "Only list songs matching this query")
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the music directory and list its songs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		closer, err := setupLogging(false)
		if err != nil {
			return err
		}
		defer closer.Close()

		lib := library.New(config.Fs(), viper.GetString(config.LibraryDirectory)).
			WithCache(library.NewCache(config.Fs(), cachePath(), library.DefaultCacheLifetime))
		if err := lib.Scan(); err != nil {
			return err
		}

		songs := lib.Search(lo.Must(cmd.Flags().GetString("search")))
		for _, song := range songs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", song.Title, song.Path)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d songs in %s\n", len(songs), lib.Len(), lib.Root())
		return nil
	},
}
