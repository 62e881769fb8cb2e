package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"voicereel/internal/textutil"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeFonts(); err != nil {
		return err
	}
	c.normalizeRender()
	c.normalizeEncode()
	c.normalizeLogging()
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	for i := range c.Characters {
		if err := c.normalizeCharacter(&c.Characters[i]); err != nil {
			return fmt.Errorf("characters[%d]: %w", i, err)
		}
	}
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("VOICEREEL_FONT_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.FontDir = strings.TrimSpace(value)
	}
	fields := []struct {
		name  string
		value *string
	}{
		{"paths.work_dir", &c.Paths.WorkDir},
		{"paths.output_dir", &c.Paths.OutputDir},
		{"paths.log_dir", &c.Paths.LogDir},
		{"paths.state_dir", &c.Paths.StateDir},
		{"paths.font_dir", &c.Paths.FontDir},
	}
	for _, field := range fields {
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeFonts() error {
	lists := []struct {
		name  string
		value *[]string
	}{
		{"fonts.name", &c.Fonts.Name},
		{"fonts.secondary_name", &c.Fonts.SecondaryName},
		{"fonts.title", &c.Fonts.Title},
		{"fonts.body", &c.Fonts.Body},
		{"fonts.cv", &c.Fonts.CV},
		{"fonts.fallback", &c.Fonts.Fallback},
	}
	for _, list := range lists {
		resolved := make([]string, 0, len(*list.value))
		for _, entry := range *list.value {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			path, err := c.resolveFontPath(entry)
			if err != nil {
				return fmt.Errorf("%s: %w", list.name, err)
			}
			resolved = append(resolved, path)
		}
		*list.value = resolved
	}
	return nil
}

func (c *Config) resolveFontPath(entry string) (string, error) {
	if strings.HasPrefix(entry, "~") || filepath.IsAbs(entry) || c.Paths.FontDir == "" {
		return expandPath(entry)
	}
	return filepath.Join(c.Paths.FontDir, entry), nil
}

func (c *Config) normalizeRender() {
	c.Render.Profile = strings.ToLower(strings.TrimSpace(c.Render.Profile))
	if c.Render.Profile == "" {
		c.Render.Profile = defaultProfile
	}
	if c.Render.Workers <= 0 {
		c.Render.Workers = defaultRenderWorkers
	}
	c.Render.Overlay = strings.TrimSpace(c.Render.Overlay)
	c.Render.Ruler = strings.TrimSpace(c.Render.Ruler)
	if expanded, err := expandPath(c.Render.Overlay); err == nil {
		c.Render.Overlay = expanded
	}
	if expanded, err := expandPath(c.Render.Ruler); err == nil {
		c.Render.Ruler = expanded
	}
}

func (c *Config) normalizeEncode() {
	if value, ok := os.LookupEnv("VOICEREEL_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.Encode.FFmpegBinary = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("VOICEREEL_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.Encode.FFprobeBinary = strings.TrimSpace(value)
	}
	trimOrDefault(&c.Encode.FFmpegBinary, defaultFFmpegBinary)
	trimOrDefault(&c.Encode.FFprobeBinary, defaultFFprobeBinary)
	trimOrDefault(&c.Encode.HardwareEncoder, defaultHardwareEncoder)
	trimOrDefault(&c.Encode.HardwarePreset, defaultHardwarePreset)
	trimOrDefault(&c.Encode.HardwareBitrate, defaultHardwareBitrate)
	trimOrDefault(&c.Encode.SoftwareEncoder, defaultSoftwareEncoder)
	trimOrDefault(&c.Encode.SoftwarePreset, defaultSoftwarePreset)
	trimOrDefault(&c.Encode.SoftwareBitrate, defaultSoftwareBitrate)
	trimOrDefault(&c.Encode.AudioCodec, defaultAudioCodec)
	if c.Encode.SoftwareThreads <= 0 {
		c.Encode.SoftwareThreads = defaultSoftwareThreads
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeJournal() error {
	path := strings.TrimSpace(c.Journal.Path)
	if path == "" {
		c.Journal.Path = ""
		return nil
	}
	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	c.Journal.Path = expanded
	return nil
}

func (c *Config) normalizeCharacter(ch *Character) error {
	ch.ID = strings.TrimSpace(ch.ID)
	ch.Name = strings.TrimSpace(ch.Name)
	ch.SecondaryName = strings.TrimSpace(ch.SecondaryName)
	ch.CV = strings.TrimSpace(ch.CV)
	ch.Profile = strings.ToLower(strings.TrimSpace(ch.Profile))
	if ch.Profile == "" {
		ch.Profile = c.Render.Profile
	}

	defaults, ok := DefaultsForProfile(ch.Profile)
	if !ok {
		return fmt.Errorf("profile %q is not supported (use one of %s)", ch.Profile, strings.Join(ProfileNames(), ", "))
	}
	trimOrDefault(&ch.AudioPattern, defaults.AudioPattern)
	ch.VoiceIDMode = strings.ToLower(strings.TrimSpace(ch.VoiceIDMode))
	if ch.VoiceIDMode == "" {
		ch.VoiceIDMode = defaults.VoiceIDMode
	}
	ch.TableFormat = strings.ToLower(strings.TrimSpace(ch.TableFormat))
	if ch.TableFormat == "" {
		ch.TableFormat = defaults.TableFormat
	}
	if ch.VoicePrefix == nil {
		prefix := defaults.VoicePrefix
		ch.VoicePrefix = &prefix
	}
	if ch.Interval == nil {
		interval := defaults.Interval
		if c.Timeline.IntervalSeconds > 0 {
			interval = c.Timeline.IntervalSeconds
		}
		ch.Interval = &interval
	}
	if ch.Fade == nil {
		fade := defaults.Fade
		if c.Timeline.FadeSeconds > 0 {
			fade = c.Timeline.FadeSeconds
		}
		ch.Fade = &fade
	}
	if ch.FPS <= 0 {
		ch.FPS = defaults.FPS
	}
	if strings.TrimSpace(ch.Overlay) == "" {
		ch.Overlay = c.Render.Overlay
	}

	paths := []struct {
		name  string
		value *string
	}{
		{"image", &ch.Image},
		{"background", &ch.Background},
		{"overlay", &ch.Overlay},
		{"audio_dir", &ch.AudioDir},
		{"table", &ch.Table},
		{"output", &ch.Output},
	}
	for _, field := range paths {
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}
	if ch.Output == "" && ch.ID != "" {
		ch.Output = filepath.Join(c.Paths.OutputDir, textutil.SanitizeFileName(ch.ID)+".mp4")
	}
	return nil
}

func trimOrDefault(value *string, fallback string) {
	*value = strings.TrimSpace(*value)
	if *value == "" {
		*value = fallback
	}
}
