package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"reelsync/internal/query"
)

func newParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <query>",
		Short: "Parse a title query and show the validated filters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := query.Parse(args[0])
			if err != nil {
				return err
			}

			rows := [][]string{{"main", q.Main}}
			keys := make([]string, 0, len(q.Filters))
			for key := range q.Filters {
				keys = append(keys, string(key))
			}
			sort.Strings(keys)
			for _, key := range keys {
				rows = append(rows, []string{key, q.Filters[query.Key(key)]})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"}, rows, nil))

			for _, diagnostic := range q.Dropped {
				fmt.Fprintln(cmd.OutOrStdout(), diagnostic)
			}
			return nil
		},
	}
}
