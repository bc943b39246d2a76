// ABOUTME: Browses the network for other players with remote control enabled
// ABOUTME: Prints each one found until the timeout elapses
package cli

import (
	"fmt"
	"time"

	"github.com/musics-player/musics-go/internal/discovery"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	discoverCmd.Flags().DurationP("timeout", "t", 5*time.Second, "How long to browse")
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find players on the local network",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout := lo.Must(cmd.Flags().GetDuration("timeout"))

		m := discovery.NewManager(discovery.Config{})
		m.Browse()
		defer m.Stop()

		seen := make(map[string]bool)
		deadline := time.After(timeout)
		for {
			select {
			case <-deadline:
				if len(seen) == 0 {
					fmt.Fprintln(cmd.ErrOrStderr(), "no players found")
				}
				return nil
			case remote, ok := <-m.Remotes():
				if !ok {
					return nil
				}
				if seen[remote.Addr()] {
					continue
				}
				seen[remote.Addr()] = true
				fmt.Fprintf(cmd.OutOrStdout(), "%s\thttp://%s\n", remote.Name, remote.Addr())
			}
		}
	},
}
