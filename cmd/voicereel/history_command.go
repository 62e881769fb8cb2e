package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"voicereel/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var character string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past exports from the run journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openJournal()
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			out := cmd.OutOrStdout()
			if store == nil {
				fmt.Fprintln(out, "Run journal is disabled (journal.enabled = false)")
				return nil
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), journal.ListOptions{CharacterID: character, Limit: limit})
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No exports recorded yet")
				return nil
			}
			fmt.Fprintln(out, renderHistory(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	cmd.Flags().StringVar(&character, "character", "", "Only show runs for this character id")
	return cmd
}

func renderHistory(runs []journal.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		detail := run.OutputPath
		if run.ErrorMessage != "" {
			detail = truncate(run.ErrorMessage, 60)
		}
		path := run.EncodePath
		if path == "" {
			path = "-"
		}
		rows = append(rows, []string{
			run.FinishedAt.Local().Format("2006-01-02 15:04"),
			run.CharacterID,
			string(run.Status),
			strconv.Itoa(run.Segments),
			path,
			formatElapsed(run.Elapsed),
			formatSizeMB(run.SizeBytes),
			detail,
		})
	}
	return renderTable(
		[]string{"Finished", "Character", "Status", "Segments", "Encoder", "Elapsed", "Size", "Output / Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight, alignLeft},
	)
}
