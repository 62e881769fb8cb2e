package encoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"voicereel/internal/logging"
	"voicereel/internal/media/ffprobe"
	"voicereel/internal/services"
	"voicereel/internal/timeline"
)

// EncodeError reports a failed export.
type EncodeError struct {
	Path    Path
	Stage   string
	Segment int
	Elapsed time.Duration
	Err     error
}

func (e *EncodeError) Error() string {
	if e.Segment >= 0 && e.Stage == "segment" {
		return fmt.Sprintf("encode (%s path) failed at segment %d after %s: %v", e.Path, e.Segment+1, e.Elapsed.Round(time.Millisecond), e.Err)
	}
	return fmt.Sprintf("encode (%s path) failed during %s after %s: %v", e.Path, e.Stage, e.Elapsed.Round(time.Millisecond), e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Result summarizes a finished export.
type Result struct {
	Output    string
	Params    Params
	Segments  int
	Duration  time.Duration
	Elapsed   time.Duration
	SizeBytes int64
}

// SizeMB returns the output size in mebibytes.
func (r Result) SizeMB() float64 {
	return float64(r.SizeBytes) / (1024 * 1024)
}

// Verifier inspects the exported file.
type Verifier func(ctx context.Context, path string) (ffprobe.Result, error)

// Exporter encodes timelines.
type Exporter struct {
	settings Settings
	run      CommandRunner
	verify   Verifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewExporter constructs an exporter that runs ffmpeg with os/exec.
func NewExporter(settings Settings, logger *slog.Logger) *Exporter {
	if strings.TrimSpace(settings.FFmpegBinary) == "" {
		settings.FFmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(settings.AudioCodec) == "" {
		settings.AudioCodec = "aac"
	}
	return &Exporter{
		settings: settings,
		run:      DefaultCommandRunner,
		logger:   logging.NewComponentLogger(logger, "encoder"),
		now:      time.Now,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (e *Exporter) WithCommandRunner(r CommandRunner) {
	if e != nil && r != nil {
		e.run = r
	}
}

// WithVerifier enables output verification after the final rename.
func (e *Exporter) WithVerifier(v Verifier) {
	if e != nil {
		e.verify = v
	}
}

// Export encodes tl into output. An empty timeline returns
// timeline.ErrEmptyTimeline without running ffmpeg.
func (e *Exporter) Export(ctx context.Context, tl timeline.Timeline, output string) (Result, error) {
	if len(tl.Segments) == 0 {
		return Result{}, fmt.Errorf("export %s: %w", tl.CharacterID, timeline.ErrEmptyTimeline)
	}
	output = strings.TrimSpace(output)
	if output == "" {
		return Result{}, services.Wrap(services.ErrValidation, "export", "resolve output", "output path is empty", nil)
	}

	ctx = services.WithStage(ctx, "export")
	logger := logging.WithContext(ctx, e.logger)
	start := e.now()

	params := SelectParams(ctx, e.settings, e.run, logger)
	fail := func(stage string, segment int, err error) (Result, error) {
		return Result{}, &EncodeError{Path: params.Path, Stage: stage, Segment: segment, Elapsed: e.now().Sub(start), Err: err}
	}

	segDir, err := e.segmentDir(tl.CharacterID)
	if err != nil {
		return fail("prepare", -1, err)
	}
	if !e.settings.KeepSegments {
		defer os.RemoveAll(segDir)
	}

	fps := tl.FPS
	if fps <= 0 {
		fps = 24
	}
	sampler := logging.NewProgressSampler(10)
	paths := make([]string, 0, len(tl.Segments))
	for i, seg := range tl.Segments {
		if err := ctx.Err(); err != nil {
			return fail("segment", i, err)
		}
		segPath := filepath.Join(segDir, fmt.Sprintf("segment_%04d.mp4", i+1))
		args := SegmentArgs(seg, params, e.settings.AudioCodec, fps, tl.Transitions, segPath)
		logger.Debug("encoding segment",
			logging.Int("segment", i+1),
			logging.String("voice_id", seg.Unit.VoiceID),
			logging.Any("args", args),
		)
		if _, err := e.run(ctx, e.settings.FFmpegBinary, args...); err != nil {
			return fail("segment", i, services.Wrap(services.ErrExternalTool, "export", "encode segment", seg.Unit.VoiceID, err))
		}
		paths = append(paths, segPath)

		percent := float64(i+1) / float64(len(tl.Segments)) * 100
		if sampler.ShouldLog(percent, "segments") {
			logger.Info("encode progress",
				logging.Int("done", i+1),
				logging.Int("total", len(tl.Segments)),
				logging.Float64("percent", percent),
			)
		}
	}

	listPath := filepath.Join(segDir, "segments.txt")
	if err := os.WriteFile(listPath, []byte(ConcatList(paths)), 0o644); err != nil {
		return fail("concat", -1, fmt.Errorf("write concat list: %w", err))
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fail("concat", -1, fmt.Errorf("create output directory: %w", err))
	}
	tmpPath := filepath.Join(filepath.Dir(output), ".export-"+filepath.Base(output)+".tmp")
	if _, err := e.run(ctx, e.settings.FFmpegBinary, ConcatArgs(listPath, e.settings.AudioCodec, tmpPath)...); err != nil {
		_ = os.Remove(tmpPath)
		return fail("concat", -1, services.Wrap(services.ErrExternalTool, "export", "concat segments", "", err))
	}
	info, err := os.Stat(tmpPath)
	if err != nil {
		return fail("concat", -1, fmt.Errorf("ffmpeg did not produce output file: %w", err))
	}
	if err := os.Rename(tmpPath, output); err != nil {
		_ = os.Remove(tmpPath)
		return fail("finalize", -1, fmt.Errorf("move output into place: %w", err))
	}

	result := Result{
		Output:    output,
		Params:    params,
		Segments:  len(tl.Segments),
		Duration:  tl.Duration(),
		SizeBytes: info.Size(),
	}
	if e.verify != nil {
		probe, err := e.verify(ctx, output)
		switch {
		case err != nil:
			logging.WarnWithContext(logger, "output verification skipped", "export_verify_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "output written but not inspected"),
			)
		case probe.VideoStreamCount() != 1 || probe.AudioStreamCount() < 1:
			return fail("verify", -1, services.Wrap(services.ErrValidation, "export", "verify output",
				fmt.Sprintf("expected 1 video and at least 1 audio stream, found %d/%d", probe.VideoStreamCount(), probe.AudioStreamCount()), nil))
		default:
			if d, err := probe.Duration(); err == nil {
				result.Duration = d
			}
		}
	}
	result.Elapsed = e.now().Sub(start)

	logger.Info("export complete",
		logging.String("file", output),
		logging.String("path", string(params.Path)),
		logging.Int("segments", result.Segments),
		logging.Duration("elapsed", result.Elapsed.Round(time.Millisecond)),
		logging.String("size", fmt.Sprintf("%.2f MB", result.SizeMB())),
	)
	return result, nil
}

func (e *Exporter) segmentDir(characterID string) (string, error) {
	base := e.settings.WorkDir
	if strings.TrimSpace(base) == "" {
		base = os.TempDir()
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", fmt.Errorf("create work directory: %w", err)
	}
	dir, err := os.MkdirTemp(base, "segments-")
	if err != nil {
		return "", fmt.Errorf("create segment directory: %w", err)
	}
	return dir, nil
}

// IsEncodeError reports whether err carries an *EncodeError.
func IsEncodeError(err error) bool {
	var encErr *EncodeError
	return errors.As(err, &encErr)
}
