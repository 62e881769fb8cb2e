package workflow

import (
	"context"
	"errors"
	"image"
	"strings"

	"voicereel/internal/compositor"
	"voicereel/internal/config"
	"voicereel/internal/logging"
	"voicereel/internal/preflight"
	"voicereel/internal/render"
	"voicereel/internal/services"
	"voicereel/internal/textutil"
	"voicereel/internal/timeline"
	"voicereel/internal/voicetable"
)

// PreviewOptions controls a calibration render.
type PreviewOptions struct {
	Output string
	// Offset replaces the configured character offset when set.
	Offset *image.Point
	// Ruler draws the configured render.ruler image over the frame.
	Ruler bool
}

// PreviewResult describes a written preview frame.
type PreviewResult struct {
	Output string
	Record voicetable.Record
	Sample bool
	Offset image.Point
}

// Preview renders one frame for ch to a PNG: the first resolvable voice
// line, or a sample frame when none resolves. Audio is not probed.
func (r *Runner) Preview(ctx context.Context, ch config.Character, opts PreviewOptions) (PreviewResult, error) {
	ctx = services.WithStage(services.WithCharacter(ctx, ch.ID), "preview")
	logger := logging.WithContext(ctx, r.logger)

	if strings.TrimSpace(opts.Output) == "" {
		return PreviewResult{}, services.Wrap(services.ErrValidation, "preview", "resolve output", "output path is empty", nil)
	}
	var ruler image.Image
	if opts.Ruler {
		path := r.cfg.Render.Ruler
		if path == "" {
			return PreviewResult{}, services.Wrap(services.ErrConfiguration, "preview", "ruler", "render.ruler is not configured", nil)
		}
		img, err := compositor.Load(path)
		if err != nil {
			return PreviewResult{}, services.Wrap(services.ErrMissingInput, "preview", "decode ruler", path, err)
		}
		ruler = img
	}

	if err := preflight.CheckInputs(ch); err != nil {
		return PreviewResult{}, err
	}
	j, err := r.prepare(ctx, ch, false)
	if err != nil {
		return PreviewResult{}, err
	}

	offset := offsetOf(ch)
	if opts.Offset != nil {
		offset = *opts.Offset
	}
	result := PreviewResult{Output: opts.Output, Offset: offset}

	frame, rec, err := r.assembler(j).Preview(j.units, offset)
	switch {
	case errors.Is(err, timeline.ErrEmptyTimeline):
		result.Sample = true
		rec = voicetable.Record{CharacterID: ch.ID, Title: ch.ID, Body: "no voice line resolved\nsample text"}
		frame, err = j.renderer.RenderText(render.Text{
			Name:          ch.Name,
			SecondaryName: textutil.DisplayName(ch.SecondaryName),
			CV:            ch.CV,
			Title:         rec.Title,
			Body:          rec.Body,
		}, offset)
		if err != nil {
			return PreviewResult{}, err
		}
	case err != nil:
		return PreviewResult{}, err
	}
	result.Record = rec

	if ruler != nil {
		compositor.Overlay(frame, ruler)
	}
	if err := compositor.SavePNG(opts.Output, frame); err != nil {
		return PreviewResult{}, err
	}
	logger.Info("preview written",
		logging.String("file", opts.Output),
		logging.String("voice_id", rec.VoiceID),
		logging.Bool("sample", result.Sample),
		logging.Int("offset_x", offset.X),
		logging.Int("offset_y", offset.Y),
	)
	return result, nil
}
