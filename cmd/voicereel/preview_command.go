package main

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"voicereel/internal/textutil"
	"voicereel/internal/workflow"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string
	var offsetFlag string
	var ruler bool

	cmd := &cobra.Command{
		Use:   "preview <character-id>",
		Short: "Render one frame to PNG for offset calibration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			ch, ok := cfg.Character(args[0])
			if !ok {
				return fmt.Errorf("character %q is not configured", args[0])
			}

			opts := workflow.PreviewOptions{Output: strings.TrimSpace(outputFlag), Ruler: ruler}
			if opts.Output == "" {
				opts.Output = filepath.Join(cfg.Paths.OutputDir, textutil.SanitizeFileName(ch.ID)+"_preview.png")
			}
			if strings.TrimSpace(offsetFlag) != "" {
				offset, err := parseOffset(offsetFlag)
				if err != nil {
					return err
				}
				opts.Offset = &offset
			}

			res, err := workflow.NewRunner(cfg, logger).Preview(cmd.Context(), ch, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s\n", res.Output)
			if res.Sample {
				fmt.Fprintln(out, "No voice line resolved; rendered sample text")
			} else {
				fmt.Fprintf(out, "Voice line: %s (%s)\n", res.Record.VoiceID, res.Record.Title)
			}
			fmt.Fprintf(out, "Offset: %s\n", formatOffset(res.Offset))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "PNG destination (default <output_dir>/<id>_preview.png)")
	cmd.Flags().StringVar(&offsetFlag, "offset", "", "Character art offset as x,y (overrides config)")
	cmd.Flags().BoolVar(&ruler, "ruler", false, "Draw the render.ruler image over the frame")
	return cmd
}

func formatOffset(p image.Point) string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}
