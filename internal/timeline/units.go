package timeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"voicereel/internal/media/ffprobe"
)

// Voice id derivation modes.
const (
	// IDModeSegment takes the second underscore-separated field of the file
	// stem ("CN_001.wav" -> "001"), or the whole stem when there is none.
	IDModeSegment = "segment"
	// IDModeStem uses the file stem verbatim.
	IDModeStem = "stem"
)

// AudioUnit is one input clip.
type AudioUnit struct {
	SourcePath string
	VoiceID    string
	Duration   time.Duration
}

// DurationProber measures clip length.
type DurationProber interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// FFprobe measures durations with the ffprobe binary.
type FFprobe struct {
	Binary string
}

// Duration implements DurationProber.
func (p FFprobe) Duration(ctx context.Context, path string) (time.Duration, error) {
	result, err := ffprobe.Inspect(ctx, p.Binary, path)
	if err != nil {
		return 0, err
	}
	return result.Duration()
}

// VoiceIDFromPath derives a raw voice id from a clip path.
func VoiceIDFromPath(path, mode string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if mode == IDModeStem {
		return stem
	}
	if parts := strings.Split(stem, "_"); len(parts) > 1 {
		return parts[1]
	}
	return stem
}

// Discover lists regular files in dir matching pattern, ordered by file name
// and then full path. Durations are left zero.
func Discover(dir, pattern, mode string) ([]AudioUnit, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = "*"
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("audio directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("audio directory %s is not a directory", dir)
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("audio pattern %q: %w", pattern, err)
	}

	units := make([]AudioUnit, 0, len(matches))
	for _, path := range matches {
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		units = append(units, AudioUnit{SourcePath: path, VoiceID: VoiceIDFromPath(path, mode)})
	}
	SortUnits(units)
	return units, nil
}

// SortUnits orders units by file name, breaking ties by full path.
func SortUnits(units []AudioUnit) {
	sort.SliceStable(units, func(i, j int) bool {
		bi, bj := filepath.Base(units[i].SourcePath), filepath.Base(units[j].SourcePath)
		if bi != bj {
			return bi < bj
		}
		return units[i].SourcePath < units[j].SourcePath
	})
}

// ProbeDurations fills in Duration for every unit. The first probe failure
// aborts.
func ProbeDurations(ctx context.Context, units []AudioUnit, prober DurationProber) ([]AudioUnit, error) {
	out := make([]AudioUnit, len(units))
	for i, unit := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, err := prober.Duration(ctx, unit.SourcePath)
		if err != nil {
			return nil, fmt.Errorf("probe %s: %w", filepath.Base(unit.SourcePath), err)
		}
		unit.Duration = d
		out[i] = unit
	}
	return out, nil
}
