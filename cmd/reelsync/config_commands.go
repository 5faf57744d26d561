package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reelsync/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newConfigInitCommand())
	cmd.AddCommand(newConfigShowCommand(ctx))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a commented sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}
			if err := config.CreateSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			rows := [][]string{
				{"log_dir", cfg.Paths.LogDir},
				{"api_bind", cfg.Paths.APIBind},
				{"tmdb.api_key", maskSecret(cfg.TMDB.APIKey)},
				{"tmdb.language", cfg.TMDB.Language},
				{"catalog.base_url", cfg.Catalog.BaseURL},
				{"catalog.token", maskSecret(cfg.Catalog.Token)},
				{"catalog.database_id", cfg.Catalog.DatabaseID},
				{"workflow.poll_interval", strconv.Itoa(cfg.Workflow.PollInterval)},
				{"workflow.full_refresh_interval", strconv.Itoa(cfg.Workflow.FullRefreshInterval)},
				{"workflow.duplicate_archive_wait", strconv.Itoa(cfg.Workflow.DuplicateArchiveWait)},
				{"logging.format", cfg.Logging.Format},
				{"logging.level", cfg.Logging.Level},
				{"notifications.ntfy_topic", cfg.Notifications.NtfyTopic},
				{"resolve_cache.enabled", strconv.FormatBool(cfg.ResolveCache.Enabled)},
				{"resolve_cache.path", cfg.ResolveCache.Path},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Setting", "Value"}, rows, nil))
			return nil
		},
	}
}

func maskSecret(value string) string {
	if value == "" {
		return "(unset)"
	}
	if len(value) <= 4 {
		return "****"
	}
	return value[:2] + "****" + value[len(value)-2:]
}
