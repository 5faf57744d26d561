package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reelsync/internal/daemon"
	"reelsync/internal/workflow"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a single sync cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.quietLogger()

			manager, cleanup, err := daemon.BuildManager(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			var result workflow.CycleResult
			if full {
				result, err = manager.RunFullRefresh(cmd.Context())
			} else {
				result, err = manager.RunCycle(cmd.Context())
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Processed", "Synced", "Errors", "Duplicates", "Skipped"},
				[][]string{{
					strconv.Itoa(result.Processed),
					strconv.Itoa(result.Synced),
					strconv.Itoa(result.Errors),
					strconv.Itoa(result.Duplicates),
					strconv.Itoa(result.Skipped),
				}},
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Run a full catalog refresh instead of a poll cycle")
	return cmd
}
