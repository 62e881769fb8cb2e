package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains working, output, and state directory configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	StateDir  string `toml:"state_dir"`
	FontDir   string `toml:"font_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Render contains frame rendering settings shared by every character.
type Render struct {
	Profile string `toml:"profile"`
	Workers int    `toml:"workers"`
	Overlay string `toml:"overlay"`
	Ruler   string `toml:"ruler"`
}

// Fonts lists candidate font files per logical role, tried in order. Relative
// entries are resolved against paths.font_dir.
type Fonts struct {
	Name          []string `toml:"name"`
	SecondaryName []string `toml:"secondary_name"`
	Title         []string `toml:"title"`
	Body          []string `toml:"body"`
	CV            []string `toml:"cv"`
	Fallback      []string `toml:"fallback"`
}

// Timeline contains segment timing defaults. Zero values fall back to the
// selected profile's timing.
type Timeline struct {
	IntervalSeconds float64 `toml:"interval_seconds"`
	FadeSeconds     float64 `toml:"fade_seconds"`
	Transitions     bool    `toml:"transitions"`
}

// Encode contains export backend settings for the hardware and software paths.
type Encode struct {
	FFmpegBinary    string `toml:"ffmpeg_binary"`
	FFprobeBinary   string `toml:"ffprobe_binary"`
	DisableHardware bool   `toml:"disable_hardware"`
	HardwareEncoder string `toml:"hardware_encoder"`
	HardwarePreset  string `toml:"hardware_preset"`
	HardwareBitrate string `toml:"hardware_bitrate"`
	SoftwareEncoder string `toml:"software_encoder"`
	SoftwarePreset  string `toml:"software_preset"`
	SoftwareBitrate string `toml:"software_bitrate"`
	SoftwareThreads int    `toml:"software_threads"`
	AudioCodec      string `toml:"audio_codec"`
	KeepSegments    bool   `toml:"keep_segments"`
}

// Journal controls the SQLite run history.
type Journal struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Character describes one export job. Empty fields are filled from the
// profile defaults during normalization.
type Character struct {
	ID            string   `toml:"id"`
	Name          string   `toml:"name"`
	SecondaryName string   `toml:"secondary_name"`
	CV            string   `toml:"cv"`
	Profile       string   `toml:"profile"`
	Image         string   `toml:"image"`
	Background    string   `toml:"background"`
	Overlay       string   `toml:"overlay"`
	AudioDir      string   `toml:"audio_dir"`
	AudioPattern  string   `toml:"audio_pattern"`
	VoiceIDMode   string   `toml:"voice_id"`
	Table         string   `toml:"table"`
	TableFormat   string   `toml:"table_format"`
	VoicePrefix   *string  `toml:"voice_prefix"`
	Offset        []int    `toml:"offset"`
	Output        string   `toml:"output"`
	Interval      *float64 `toml:"interval_seconds"`
	Fade          *float64 `toml:"fade_seconds"`
	FPS           int      `toml:"fps"`
}

// Config encapsulates all configuration values for voicereel.
//
// Configuration sections by subsystem:
//   - Paths: work, output, log, state, and font directories
//   - Logging: log format and level
//   - Render: default layout profile and frame rendering concurrency
//   - Fonts: ordered font candidates per text role
//   - Timeline: interval, fade, and transition toggles
//   - Encode: ffmpeg binaries plus hardware/software encode parameters
//   - Journal: SQLite run history
//   - Characters: the explicit list of export jobs
type Config struct {
	Paths      Paths       `toml:"paths"`
	Logging    Logging     `toml:"logging"`
	Render     Render      `toml:"render"`
	Fonts      Fonts       `toml:"fonts"`
	Timeline   Timeline    `toml:"timeline"`
	Encode     Encode      `toml:"encode"`
	Journal    Journal     `toml:"journal"`
	Characters []Character `toml:"characters"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("voicereel.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the work, output, log, and state directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.OutputDir, c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for export.
func (c *Config) FFmpegBinary() string {
	if c == nil || strings.TrimSpace(c.Encode.FFmpegBinary) == "" {
		return defaultFFmpegBinary
	}
	return c.Encode.FFmpegBinary
}

// FFprobeBinary returns the ffprobe executable used for audio inspection.
func (c *Config) FFprobeBinary() string {
	if c == nil || strings.TrimSpace(c.Encode.FFprobeBinary) == "" {
		return defaultFFprobeBinary
	}
	return c.Encode.FFprobeBinary
}

// JournalPath returns the SQLite run journal location.
func (c *Config) JournalPath() string {
	if strings.TrimSpace(c.Journal.Path) != "" {
		return c.Journal.Path
	}
	return filepath.Join(c.Paths.StateDir, "journal.db")
}

// Character returns the job with the given id.
func (c *Config) Character(id string) (Character, bool) {
	id = strings.TrimSpace(id)
	for _, ch := range c.Characters {
		if ch.ID == id {
			return ch, true
		}
	}
	return Character{}, false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
