package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and clear the lookup cache",
}

var cacheFlushCmd = &cobra.Command{
	Use:   "flush [pattern]",
	Short: "Remove cached entries whose key contains pattern, or all entries",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern := ""
		if len(args) == 1 {
			pattern = args[0]
		}

		d, err := buildDeps(cmd.Context(), cfg, logger, false)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.service.FlushCache(cmd.Context(), pattern); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "cache flushed")
		return nil
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the cache backend and key count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd.Context(), cfg, logger, false)
		if err != nil {
			return err
		}
		defer d.Close()

		stats, err := d.cache.Stats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "type=%s keys=%d\n", stats.Backend, stats.Keys)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheFlushCmd, cacheStatsCmd)
}
