package config

const (
	defaultConfigPath      = "~/.config/voicereel/config.toml"
	defaultWorkDir         = "~/.local/share/voicereel/work"
	defaultOutputDir       = "~/Videos/voicereel"
	defaultLogDir          = "~/.local/share/voicereel/logs"
	defaultStateDir        = "~/.local/share/voicereel"
	defaultFontDir         = "~/.local/share/voicereel/fonts"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultProfile         = ProfileArknights
	defaultRenderWorkers   = 1
	defaultFFmpegBinary    = "ffmpeg"
	defaultFFprobeBinary   = "ffprobe"
	defaultHardwareEncoder = "h264_nvenc"
	defaultHardwarePreset  = "fast"
	defaultHardwareBitrate = "8000k"
	defaultSoftwareEncoder = "libx264"
	defaultSoftwarePreset  = "faster"
	defaultSoftwareBitrate = "6000k"
	defaultSoftwareThreads = 8
	defaultAudioCodec      = "aac"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir,
			FontDir:   defaultFontDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Render: Render{
			Profile: defaultProfile,
			Workers: defaultRenderWorkers,
		},
		Fonts: Fonts{
			Name:          []string{"NotoSerifSC-Bold.ttf"},
			SecondaryName: []string{"NotoSansSC-Regular.ttf"},
			Title:         []string{"NotoSansSC-Medium.ttf"},
			Body:          []string{"NotoSansSC-Regular.ttf"},
			CV:            []string{"NotoSansSC-Regular.ttf"},
			Fallback: []string{
				"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
				"/usr/share/fonts/noto-cjk/NotoSansCJK-Regular.ttc",
				"/usr/share/fonts/truetype/wqy/wqy-microhei.ttc",
			},
		},
		Timeline: Timeline{
			Transitions: true,
		},
		Encode: Encode{
			FFmpegBinary:    defaultFFmpegBinary,
			FFprobeBinary:   defaultFFprobeBinary,
			HardwareEncoder: defaultHardwareEncoder,
			HardwarePreset:  defaultHardwarePreset,
			HardwareBitrate: defaultHardwareBitrate,
			SoftwareEncoder: defaultSoftwareEncoder,
			SoftwarePreset:  defaultSoftwarePreset,
			SoftwareBitrate: defaultSoftwareBitrate,
			SoftwareThreads: defaultSoftwareThreads,
			AudioCodec:      defaultAudioCodec,
		},
		Journal: Journal{
			Enabled: true,
		},
	}
}
