package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"macsim/logging"
)

var purgeOnly bool

func init() {
	resetCmd.Flags().BoolVar(&purgeOnly, "orphans", false, "Only remove nodes that are no longer reachable from the root")
	rootCmd.AddCommand(resetCmd)
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		if purgeOnly {
			n, err := env.fs.PurgeOrphans()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d orphaned nodes\n", n)
			return env.fs.Flush()
		}
		env.fs.Reset()
		if err := env.fs.Flush(); err != nil {
			return err
		}
		logging.Info("file system reset", zap.Int("nodes", env.fs.Len()))
		fmt.Fprintf(cmd.OutOrStdout(), "restored %d default nodes\n", env.fs.Len())
		return nil
	},
}
