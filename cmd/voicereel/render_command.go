package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"voicereel/internal/journal"
	"voicereel/internal/workflow"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var offsetFlag string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "render [character-id...]",
		Short: "Export a video for each configured character",
		Long: "Export a video for each configured character, or only the named ones.\n" +
			"A failed character does not stop the batch; the command exits non-zero\n" +
			"when any character produced no video.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			if strings.TrimSpace(offsetFlag) != "" {
				offset, err := parseOffset(offsetFlag)
				if err != nil {
					return err
				}
				for i := range cfg.Characters {
					if len(args) == 0 || contains(args, cfg.Characters[i].ID) {
						cfg.Characters[i].Offset = []int{offset.X, offset.Y}
					}
				}
			}

			opts := []workflow.Option{}
			store, err := ctx.openJournal()
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			if store != nil {
				defer store.Close()
				opts = append(opts, workflow.WithJournal(store))
			}

			runCtx := cmd.Context()
			if runCtx == nil {
				runCtx = context.Background()
			}
			if timeout > 0 {
				var cancel context.CancelFunc
				runCtx, cancel = context.WithTimeout(runCtx, timeout)
				defer cancel()
			}

			summary, err := workflow.NewRunner(cfg, logger, opts...).RunAll(runCtx, args)
			out := cmd.OutOrStdout()
			if len(summary.Jobs) > 0 {
				fmt.Fprintln(out, renderSummary(summary))
			}
			if err != nil {
				return err
			}
			tally := fmt.Sprintf("%d completed, %d failed, %d empty in %s",
				summary.Completed, summary.Failed, summary.Empty, formatElapsed(summary.Elapsed))
			level := levelOK
			if summary.HasFailures() {
				level = levelFail
			}
			fmt.Fprintln(out, newStatusReport(out).paint(level, tally))
			if summary.HasFailures() {
				return fmt.Errorf("%d of %d characters did not produce a video", summary.Failed+summary.Empty, len(summary.Jobs))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&offsetFlag, "offset", "", "Character art offset as x,y (overrides config)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Abort the batch after this long (0 disables)")
	return cmd
}

func renderSummary(summary workflow.Summary) string {
	rows := make([][]string, 0, len(summary.Jobs))
	for _, job := range summary.Jobs {
		detail := job.Output
		if job.Status != journal.StatusCompleted && job.Err != nil {
			detail = truncate(job.Err.Error(), 80)
		}
		size := "-"
		if job.Status == journal.StatusCompleted {
			size = formatSizeMB(job.Export.SizeBytes)
		}
		rows = append(rows, []string{
			job.CharacterID,
			string(job.Status),
			strconv.Itoa(job.Segments),
			strconv.Itoa(job.Skipped),
			formatElapsed(job.Elapsed),
			size,
			detail,
		})
	}
	return renderTable(
		[]string{"Character", "Status", "Segments", "Skipped", "Elapsed", "Size", "Output / Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
	)
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == target {
			return true
		}
	}
	return false
}
