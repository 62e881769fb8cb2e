package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateTimeline(); err != nil {
		return err
	}
	if err := c.validateEncode(); err != nil {
		return err
	}
	return c.validateCharacters()
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateRender() error {
	if _, ok := DefaultsForProfile(c.Render.Profile); !ok {
		return fmt.Errorf("render.profile %q is not supported (use one of %s)", c.Render.Profile, strings.Join(ProfileNames(), ", "))
	}
	if c.Render.Workers > 16 {
		return errors.New("render.workers must be between 1 and 16")
	}
	return nil
}

func (c *Config) validateTimeline() error {
	if c.Timeline.IntervalSeconds < 0 {
		return errors.New("timeline.interval_seconds must be >= 0")
	}
	if c.Timeline.FadeSeconds < 0 {
		return errors.New("timeline.fade_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateEncode() error {
	if c.Encode.SoftwareThreads > 64 {
		return errors.New("encode.software_threads must be between 1 and 64")
	}
	if !isBitrate(c.Encode.HardwareBitrate) {
		return fmt.Errorf("encode.hardware_bitrate %q must look like 8000k or 8M", c.Encode.HardwareBitrate)
	}
	if !isBitrate(c.Encode.SoftwareBitrate) {
		return fmt.Errorf("encode.software_bitrate %q must look like 6000k or 6M", c.Encode.SoftwareBitrate)
	}
	return nil
}

func (c *Config) validateCharacters() error {
	seen := make(map[string]struct{}, len(c.Characters))
	for i, ch := range c.Characters {
		if ch.ID == "" {
			return fmt.Errorf("characters[%d].id must be set", i)
		}
		if _, dup := seen[ch.ID]; dup {
			return fmt.Errorf("characters[%d].id %q is duplicated", i, ch.ID)
		}
		seen[ch.ID] = struct{}{}

		required := []struct {
			name  string
			value string
		}{
			{"image", ch.Image},
			{"background", ch.Background},
			{"audio_dir", ch.AudioDir},
			{"table", ch.Table},
		}
		for _, field := range required {
			if field.value == "" {
				return fmt.Errorf("characters[%d] (%s): %s must be set", i, ch.ID, field.name)
			}
		}
		if len(ch.Offset) != 0 && len(ch.Offset) != 2 {
			return fmt.Errorf("characters[%d] (%s): offset must have exactly two values [x, y]", i, ch.ID)
		}
		switch ch.TableFormat {
		case TableCharWords, TableCharacterTable:
		default:
			return fmt.Errorf("characters[%d] (%s): table_format %q is not supported", i, ch.ID, ch.TableFormat)
		}
		switch ch.VoiceIDMode {
		case VoiceIDSegment, VoiceIDStem:
		default:
			return fmt.Errorf("characters[%d] (%s): voice_id %q must be segment or stem", i, ch.ID, ch.VoiceIDMode)
		}
		if *ch.Interval < 0 || *ch.Fade < 0 {
			return fmt.Errorf("characters[%d] (%s): interval_seconds and fade_seconds must be >= 0", i, ch.ID)
		}
	}
	return nil
}

func isBitrate(value string) bool {
	value = strings.TrimSpace(value)
	if len(value) < 2 {
		return false
	}
	suffix := value[len(value)-1]
	if suffix != 'k' && suffix != 'K' && suffix != 'M' {
		return false
	}
	for _, r := range value[:len(value)-1] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
