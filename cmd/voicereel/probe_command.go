package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"voicereel/internal/config"
	"voicereel/internal/encoding"
	"voicereel/internal/preflight"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check external tools, directories and the encode path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			report := newStatusReport(out)

			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			rows := make([][]string, 0, len(statuses))
			missing := 0
			for _, s := range statuses {
				state := "ok"
				if !s.Available {
					state = "missing"
					if !s.Optional {
						missing++
					}
				}
				rows = append(rows, []string{s.Name, s.Command, state, s.Description, s.Detail})
			}
			report.section("Dependencies")
			report.block(renderTable([]string{"Name", "Command", "Status", "Purpose", "Detail"}, rows, nil))

			report.section("Encoder")
			level, detail := encoderStatus(cmd.Context(), cfg)
			report.item("Hardware encoder", level, detail)

			report.section("Directories")
			for _, r := range preflight.RunAll(cmd.Context(), cfg) {
				level := levelOK
				if !r.Passed {
					level = levelFail
				}
				report.item(r.Name, level, r.Detail)
			}

			fmt.Fprintln(out, report.String())
			if missing > 0 {
				return fmt.Errorf("%d required tool(s) missing", missing)
			}
			return nil
		},
	}
}

func encoderStatus(ctx context.Context, cfg *config.Config) (statusLevel, string) {
	hardware, software := cfg.Encode.HardwareEncoder, cfg.Encode.SoftwareEncoder
	if cfg.Encode.DisableHardware {
		return levelInfo, fmt.Sprintf("disabled; %s will be used", software)
	}
	available, err := encoding.ProbeHardware(ctx, encoding.DefaultCommandRunner, cfg.FFmpegBinary(), hardware)
	switch {
	case err != nil:
		return levelWarn, fmt.Sprintf("probe failed (%v); %s will be used", err, software)
	case !available:
		return levelWarn, fmt.Sprintf("%s not available; %s will be used", hardware, software)
	default:
		return levelOK, fmt.Sprintf("%s available", hardware)
	}
}
