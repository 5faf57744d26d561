package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"reelsync/internal/workflow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running daemon's sync loop status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			client := &http.Client{Timeout: 5 * time.Second}
			url := "http://" + cfg.Paths.APIBind + "/api/status"
			resp, err := client.Get(url)
			if err != nil {
				return fmt.Errorf("daemon not reachable at %s: %w", cfg.Paths.APIBind, err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("daemon status returned %d", resp.StatusCode)
			}

			var status struct {
				Status string         `json:"status"`
				Uptime string         `json:"uptime"`
				Loop   workflow.Stats `json:"loop"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
				return fmt.Errorf("decode daemon status: %w", err)
			}

			lastCycle := "never"
			if !status.Loop.LastCycleAt.IsZero() {
				lastCycle = status.Loop.LastCycleAt.Local().Format(time.RFC3339)
			}
			rows := [][]string{
				{"State", status.Status},
				{"Uptime", status.Uptime},
				{"Last cycle", lastCycle},
				{"Pages in flight", strconv.Itoa(status.Loop.InFlight)},
				{"Total synced", strconv.Itoa(status.Loop.TotalSynced)},
				{"Total errors", strconv.Itoa(status.Loop.TotalErrors)},
				{"Total duplicates", strconv.Itoa(status.Loop.TotalDuplicates)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}
}
