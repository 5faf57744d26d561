package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reelsync/internal/daemon"
	"reelsync/internal/metadata"
	"reelsync/internal/query"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <query>",
		Short: "Resolve a title query against TMDB and show the record tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			q, err := query.Parse(args[0])
			if err != nil {
				return err
			}

			resolver, cleanup, err := daemon.BuildResolver(cfg, ctx.quietLogger())
			if err != nil {
				return err
			}
			defer cleanup()

			rec, err := resolver.Resolve(cmd.Context(), q)
			if err != nil {
				return err
			}

			rows := recordRows(*rec, "")
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Title", "Type", "TMDB ID", "Status", "Released", "Director", "Composer"},
				rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignLeft}))
			return nil
		},
	}
}

func recordRows(rec metadata.Record, indent string) [][]string {
	rows := [][]string{{
		indent + rec.Title,
		string(rec.Type),
		strconv.FormatInt(rec.TMDBID, 10),
		rec.Status,
		rec.ReleaseDate,
		rec.Director,
		rec.Composer,
	}}
	for _, season := range rec.Seasons {
		rows = append(rows, recordRows(season, indent+"  ")...)
		for _, episode := range season.Episodes {
			rows = append(rows, recordRows(episode, indent+"    ")...)
		}
	}
	return rows
}
