package workflow

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"time"

	"voicereel/internal/compositor"
	"voicereel/internal/config"
	"voicereel/internal/encoding"
	"voicereel/internal/fonts"
	"voicereel/internal/journal"
	"voicereel/internal/logging"
	"voicereel/internal/preflight"
	"voicereel/internal/render"
	"voicereel/internal/services"
	"voicereel/internal/textutil"
	"voicereel/internal/timeline"
	"voicereel/internal/voicetable"
)

// job carries the prepared inputs of one character.
type job struct {
	ch       config.Character
	resolver *voicetable.Resolver
	renderer *render.Renderer
	units    []timeline.AudioUnit
	workDir  string
}

// RunJob runs one character job to completion and records it in the
// journal. Failures are returned in JobResult.Err.
func (r *Runner) RunJob(ctx context.Context, runID string, ch config.Character) JobResult {
	ctx = services.WithCharacter(ctx, ch.ID)
	start := r.now()
	res := JobResult{CharacterID: ch.ID, Output: ch.Output}

	res.Err = r.execute(ctx, ch, &res)
	res.Elapsed = r.now().Sub(start)

	logger := logging.WithContext(ctx, r.logger)
	switch {
	case res.Err == nil:
		res.Status = journal.StatusCompleted
		logger.Info("character exported",
			logging.String(logging.FieldEventType, "job_complete"),
			logging.String("output", res.Output),
			logging.Int("segments", res.Segments),
			logging.Int("skipped", res.Skipped),
			logging.String("encode_path", string(res.Export.Params.Path)),
			logging.Duration("elapsed", res.Elapsed.Round(time.Millisecond)),
			logging.String("size", fmt.Sprintf("%.2f MB", res.Export.SizeMB())),
		)
	case errors.Is(res.Err, timeline.ErrEmptyTimeline):
		res.Status = journal.StatusEmpty
		logging.WarnWithContext(logger, "character produced no segments", "job_empty",
			logging.Error(res.Err),
			logging.Int("skipped", res.Skipped),
			logging.String(logging.FieldImpact, "no video written"),
			logging.String(logging.FieldErrorHint, "check audio_pattern, voice_prefix and the voice table"),
		)
	default:
		res.Status = journal.StatusFailed
		logging.ErrorWithContext(logger, "character failed", "job_failed",
			logging.Error(res.Err),
			logging.String(logging.FieldErrorHint, failureHint(res.Err)),
		)
	}

	r.record(ctx, runID, ch, res, start)
	return res
}

func (r *Runner) execute(ctx context.Context, ch config.Character, res *JobResult) error {
	pfCtx := services.WithStage(ctx, "preflight")
	if err := preflight.CheckInputs(ch); err != nil {
		return err
	}
	logging.WithContext(pfCtx, r.logger).Debug("inputs present")

	release, err := acquireOutputLock(ch.Output)
	if err != nil {
		return err
	}
	defer release()

	j, err := r.prepare(ctx, ch, true)
	if err != nil {
		return err
	}
	if j.workDir, err = r.jobWorkDir(ch.ID); err != nil {
		return err
	}
	if !r.cfg.Encode.KeepSegments {
		defer os.RemoveAll(j.workDir)
	}

	tl, err := r.assembler(j).Build(ctx, j.units, offsetOf(ch))
	res.Segments = len(tl.Segments)
	res.Skipped = len(tl.Skipped)
	if err != nil {
		return err
	}

	exp := encoding.NewExporter(r.exportSettings(j.workDir), r.logger)
	if r.run != nil {
		exp.WithCommandRunner(r.run)
	}
	exp.WithVerifier(r.verify)
	result, err := exp.Export(ctx, tl, ch.Output)
	if err != nil {
		return err
	}
	res.Export = result
	res.Output = result.Output
	return nil
}

// prepare loads everything the timeline needs. Decode failures of required
// images are reported as missing inputs. Durations are left zero unless
// probe is set.
func (r *Runner) prepare(ctx context.Context, ch config.Character, probe bool) (*job, error) {
	ctx = services.WithStage(ctx, "prepare")
	logger := logging.WithContext(ctx, r.logger)

	source, err := voicetable.LoadFile(ch.Table, ch.TableFormat)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "prepare", "load voice table", ch.Table, err)
	}
	prefix := ""
	if ch.VoicePrefix != nil {
		prefix = *ch.VoicePrefix
	}

	profile, err := render.ProfileByName(ch.Profile)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "prepare", "layout profile", "", err)
	}
	faces, err := fonts.NewTable(ctx, profile.FontRequests(r.fontCandidates()), r.cfg.Fonts.Fallback, logger)
	if err != nil {
		return nil, err
	}

	assets, err := loadAssets(ch)
	if err != nil {
		return nil, err
	}
	renderer, err := render.New(profile, assets, faces)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "prepare", "build renderer", "", err)
	}

	units, err := timeline.Discover(ch.AudioDir, ch.AudioPattern, ch.VoiceIDMode)
	if err != nil {
		return nil, services.Wrap(services.ErrMissingInput, "prepare", "discover audio", "", err)
	}
	if probe {
		units, err = timeline.ProbeDurations(ctx, units, r.prober)
		if err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "prepare", "probe audio", "", err)
		}
	}
	logger.Info("inputs loaded",
		logging.String("profile", profile.ID),
		logging.Int("voice_lines", source.Len()),
		logging.Int("audio_units", len(units)),
	)

	return &job{
		ch:       ch,
		resolver: voicetable.NewResolver(source, prefix),
		renderer: renderer,
		units:    units,
	}, nil
}

func (r *Runner) assembler(j *job) *timeline.Assembler {
	profile := j.renderer.Profile()
	return timeline.NewAssembler(j.resolver, j.renderer, timeline.Options{
		CharacterID:   j.ch.ID,
		Name:          j.ch.Name,
		SecondaryName: textutil.DisplayName(j.ch.SecondaryName),
		CV:            j.ch.CV,
		Interval:      seconds(j.ch.Interval),
		Fade:          seconds(j.ch.Fade),
		Transitions:   r.cfg.Timeline.Transitions,
		Workers:       r.cfg.Render.Workers,
		WorkDir:       j.workDir,
		FPS:           j.ch.FPS,
		Width:         profile.Width,
		Height:        profile.Height,
	}, r.logger)
}

func (r *Runner) exportSettings(workDir string) encoding.Settings {
	enc := r.cfg.Encode
	return encoding.Settings{
		FFmpegBinary:    r.cfg.FFmpegBinary(),
		DisableHardware: enc.DisableHardware,
		Hardware: encoding.Params{
			Codec:   enc.HardwareEncoder,
			Preset:  enc.HardwarePreset,
			Bitrate: enc.HardwareBitrate,
		},
		Software: encoding.Params{
			Codec:   enc.SoftwareEncoder,
			Preset:  enc.SoftwarePreset,
			Bitrate: enc.SoftwareBitrate,
			Threads: enc.SoftwareThreads,
		},
		AudioCodec:   enc.AudioCodec,
		WorkDir:      workDir,
		KeepSegments: enc.KeepSegments,
	}
}

func (r *Runner) fontCandidates() map[fonts.Role][]string {
	f := r.cfg.Fonts
	return map[fonts.Role][]string{
		fonts.RoleName:          f.Name,
		fonts.RoleSecondaryName: f.SecondaryName,
		fonts.RoleTitle:         f.Title,
		fonts.RoleBody:          f.Body,
		fonts.RoleCV:            f.CV,
	}
}

func (r *Runner) jobWorkDir(id string) (string, error) {
	if err := os.MkdirAll(r.cfg.Paths.WorkDir, 0o755); err != nil {
		return "", fmt.Errorf("create work directory: %w", err)
	}
	dir, err := os.MkdirTemp(r.cfg.Paths.WorkDir, textutil.SanitizeFileName(id)+"-")
	if err != nil {
		return "", fmt.Errorf("create job directory: %w", err)
	}
	return dir, nil
}

func (r *Runner) record(ctx context.Context, runID string, ch config.Character, res JobResult, start time.Time) {
	if r.journal == nil {
		return
	}
	entry := journal.Run{
		RunID:           runID,
		CharacterID:     ch.ID,
		Profile:         ch.Profile,
		Status:          res.Status,
		Segments:        res.Segments,
		Skipped:         res.Skipped,
		DurationSeconds: res.Export.Duration.Seconds(),
		SizeBytes:       res.Export.SizeBytes,
		EncodePath:      string(res.Export.Params.Path),
		Elapsed:         res.Elapsed,
		StartedAt:       start,
		FinishedAt:      start.Add(res.Elapsed),
	}
	if res.Status == journal.StatusCompleted {
		entry.OutputPath = res.Output
	}
	if res.Err != nil {
		entry.ErrorMessage = res.Err.Error()
	}
	if _, err := r.journal.Record(ctx, entry); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "journal write failed", "journal_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run missing from history"),
		)
	}
}

func loadAssets(ch config.Character) (render.Assets, error) {
	var assets render.Assets
	var err error
	if assets.Background, err = compositor.Load(ch.Background); err != nil {
		return assets, services.Wrap(services.ErrMissingInput, "prepare", "decode background", ch.Background, err)
	}
	if assets.Character, err = compositor.Load(ch.Image); err != nil {
		return assets, services.Wrap(services.ErrMissingInput, "prepare", "decode character image", ch.Image, err)
	}
	if ch.Overlay != "" {
		if assets.Overlay, err = compositor.Load(ch.Overlay); err != nil {
			return assets, services.Wrap(services.ErrMissingInput, "prepare", "decode overlay", ch.Overlay, err)
		}
	}
	return assets, nil
}

func offsetOf(ch config.Character) image.Point {
	x, y := ch.OffsetXY()
	return image.Pt(x, y)
}

func seconds(v *float64) time.Duration {
	if v == nil {
		return 0
	}
	return time.Duration(*v * float64(time.Second))
}

func failureHint(err error) string {
	switch {
	case errors.Is(err, services.ErrMissingInput):
		return "fix the listed input paths in the character entry"
	case errors.Is(err, ErrOutputLocked):
		return "another voicereel process is exporting this character"
	case encoding.IsEncodeError(err):
		return "rerun with logging.level = \"debug\" to see the ffmpeg command"
	case errors.Is(err, services.ErrValidation):
		return "check the voice table format and image files"
	default:
		return "see error for details"
	}
}
