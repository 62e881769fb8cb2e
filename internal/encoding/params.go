package encoding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"voicereel/internal/logging"
)

// Path names an encoder parameter set.
type Path string

const (
	PathHardware Path = "hardware"
	PathSoftware Path = "software"
)

// Params are the video encoder parameters for one path.
type Params struct {
	Path    Path
	Codec   string
	Preset  string
	Bitrate string
	Threads int
}

// Settings carries the export configuration.
type Settings struct {
	FFmpegBinary    string
	DisableHardware bool
	Hardware        Params
	Software        Params
	AudioCodec      string
	WorkDir         string
	KeepSegments    bool
}

// ProbeHardware reports whether ffmpeg lists encoder among its encoders.
func ProbeHardware(ctx context.Context, run CommandRunner, binary, encoder string) (bool, error) {
	encoder = strings.TrimSpace(encoder)
	if encoder == "" {
		return false, nil
	}
	output, err := run(ctx, binary, "-hide_banner", "-encoders")
	if err != nil {
		return false, fmt.Errorf("list ffmpeg encoders: %w", err)
	}
	for _, line := range strings.Split(string(output), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == encoder {
			return true, nil
		}
	}
	return false, nil
}

// SelectParams picks the hardware path when it is enabled and available and
// the software path otherwise. Probe failures select software.
func SelectParams(ctx context.Context, settings Settings, run CommandRunner, logger *slog.Logger) Params {
	software := settings.Software
	software.Path = PathSoftware
	if settings.DisableHardware {
		logger.Info("encoder selected",
			logging.String("path", string(PathSoftware)),
			logging.String("codec", software.Codec),
			logging.String("reason", "hardware disabled in config"),
		)
		return software
	}

	available, err := ProbeHardware(ctx, run, settings.FFmpegBinary, settings.Hardware.Codec)
	if err != nil {
		logging.WarnWithContext(logger, "hardware encoder probe failed", "encoder_probe_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "software encoder used"),
			logging.String(logging.FieldErrorHint, "run voicereel probe to inspect ffmpeg"),
		)
		return software
	}
	if !available {
		logger.Info("encoder selected",
			logging.String("path", string(PathSoftware)),
			logging.String("codec", software.Codec),
			logging.String("reason", settings.Hardware.Codec+" not available"),
		)
		return software
	}

	hardware := settings.Hardware
	hardware.Path = PathHardware
	logger.Info("encoder selected",
		logging.String("path", string(PathHardware)),
		logging.String("codec", hardware.Codec),
	)
	return hardware
}
