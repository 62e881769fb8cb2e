package timeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"voicereel/internal/compositor"
	"voicereel/internal/logging"
	"voicereel/internal/render"
	"voicereel/internal/services"
	"voicereel/internal/textutil"
	"voicereel/internal/voicetable"
)

// ErrEmptyTimeline reports that no unit produced a segment.
var ErrEmptyTimeline = errors.New("empty timeline")

// Resolver finds the record for a clip.
type Resolver interface {
	Resolve(characterID, rawVoiceID string) (voicetable.Record, error)
}

// FrameRenderer draws the still frame for a record.
type FrameRenderer interface {
	RenderText(text render.Text, offset image.Point) (*image.RGBA, error)
}

// Options configures an Assembler.
type Options struct {
	CharacterID   string
	Name          string
	SecondaryName string
	CV            string
	Interval      time.Duration
	Fade          time.Duration
	Transitions   bool
	Workers       int
	WorkDir       string
	FPS           int
	Width         int
	Height        int
}

// Segment pairs one rendered frame with its audio and timing. Picture is the
// on-screen duration; Audio is the clip length and is never longer.
type Segment struct {
	Index     int
	Unit      AudioUnit
	Record    voicetable.Record
	FramePath string
	Picture   time.Duration
	Audio     time.Duration
	FadeIn    time.Duration
	FadeOut   time.Duration
}

// SkippedUnit records a clip left out of the timeline.
type SkippedUnit struct {
	Unit   AudioUnit
	Reason error
}

// Timeline is the ordered output of Build.
type Timeline struct {
	CharacterID string
	Segments    []Segment
	Skipped     []SkippedUnit
	FPS         int
	Width       int
	Height      int
	Transitions bool
}

// Duration returns the total picture duration.
func (t Timeline) Duration() time.Duration {
	var total time.Duration
	for _, seg := range t.Segments {
		total += seg.Picture
	}
	return total
}

// Assembler builds timelines for one character.
type Assembler struct {
	resolver Resolver
	renderer FrameRenderer
	opts     Options
	logger   *slog.Logger
}

// NewAssembler constructs an Assembler.
func NewAssembler(resolver Resolver, renderer FrameRenderer, opts Options, logger *slog.Logger) *Assembler {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.FPS <= 0 {
		opts.FPS = 24
	}
	return &Assembler{
		resolver: resolver,
		renderer: renderer,
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "timeline"),
	}
}

// Build resolves and renders every unit in file-name order. Unresolvable or
// zero-length units are skipped. Frames are written under WorkDir/frames.
func (a *Assembler) Build(ctx context.Context, units []AudioUnit, offset image.Point) (Timeline, error) {
	ctx = services.WithStage(ctx, "timeline")
	logger := logging.WithContext(ctx, a.logger)

	ordered := append([]AudioUnit(nil), units...)
	SortUnits(ordered)

	tl := Timeline{
		CharacterID: a.opts.CharacterID,
		FPS:         a.opts.FPS,
		Width:       a.opts.Width,
		Height:      a.opts.Height,
		Transitions: a.opts.Transitions,
	}

	for _, unit := range ordered {
		if unit.Duration <= 0 {
			tl.Skipped = append(tl.Skipped, SkippedUnit{Unit: unit, Reason: errors.New("zero-length audio")})
			logging.WarnWithContext(logger, "audio clip skipped", "audio_empty",
				logging.String("file", filepath.Base(unit.SourcePath)),
				logging.String(logging.FieldImpact, "clip omitted from video"),
				logging.String(logging.FieldErrorHint, "re-export the clip or remove it from the audio directory"),
			)
			continue
		}
		rec, err := a.resolver.Resolve(a.opts.CharacterID, unit.VoiceID)
		if err != nil {
			tl.Skipped = append(tl.Skipped, SkippedUnit{Unit: unit, Reason: err})
			logging.WarnWithContext(logger, "voice line unresolved", "voice_unresolved",
				logging.String("file", filepath.Base(unit.SourcePath)),
				logging.String("voice_id", unit.VoiceID),
				logging.Error(err),
				logging.String(logging.FieldImpact, "clip omitted from video"),
				logging.String(logging.FieldErrorHint, "check the voice table covers this clip"),
			)
			continue
		}

		picture := unit.Duration + a.opts.Interval
		fade := a.opts.Fade
		if fade > picture/2 {
			fade = picture / 2
		}
		if fade < 0 {
			fade = 0
		}
		idx := len(tl.Segments)
		tl.Segments = append(tl.Segments, Segment{
			Index:     idx,
			Unit:      unit,
			Record:    rec,
			FramePath: a.framePath(idx, unit),
			Picture:   picture,
			Audio:     unit.Duration,
			FadeIn:    fade,
			FadeOut:   fade,
		})
	}

	if len(tl.Segments) == 0 {
		return tl, fmt.Errorf("%w: %s has no renderable voice lines (%d clips, %d skipped)",
			ErrEmptyTimeline, a.opts.CharacterID, len(ordered), len(tl.Skipped))
	}

	if err := a.renderFrames(ctx, tl.Segments, offset); err != nil {
		return tl, err
	}

	logger.Info("timeline assembled",
		logging.Int("segments", len(tl.Segments)),
		logging.Int("skipped", len(tl.Skipped)),
		logging.Duration("duration", tl.Duration()),
	)
	return tl, nil
}

func (a *Assembler) renderFrames(ctx context.Context, segments []Segment, offset image.Point) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)
	for i := range segments {
		seg := segments[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return a.renderSegment(seg, offset)
		})
	}
	return g.Wait()
}

func (a *Assembler) renderSegment(seg Segment, offset image.Point) error {
	frame, err := a.renderer.RenderText(a.text(seg.Record), offset)
	if err != nil {
		return fmt.Errorf("render %s: %w", seg.Unit.VoiceID, err)
	}
	if err := compositor.SavePNG(seg.FramePath, frame); err != nil {
		return err
	}
	a.logger.Debug("frame rendered",
		logging.String(logging.FieldCharacter, a.opts.CharacterID),
		logging.Int("segment", seg.Index),
		logging.String("frame", seg.FramePath),
	)
	return nil
}

// Preview renders the frame of the first resolvable unit.
func (a *Assembler) Preview(units []AudioUnit, offset image.Point) (*image.RGBA, voicetable.Record, error) {
	ordered := append([]AudioUnit(nil), units...)
	SortUnits(ordered)
	for _, unit := range ordered {
		rec, err := a.resolver.Resolve(a.opts.CharacterID, unit.VoiceID)
		if err != nil {
			continue
		}
		frame, err := a.renderer.RenderText(a.text(rec), offset)
		return frame, rec, err
	}
	return nil, voicetable.Record{}, fmt.Errorf("%w: %s has no resolvable voice lines", ErrEmptyTimeline, a.opts.CharacterID)
}

func (a *Assembler) text(rec voicetable.Record) render.Text {
	return render.Text{
		Name:          a.opts.Name,
		SecondaryName: a.opts.SecondaryName,
		CV:            a.opts.CV,
		Title:         rec.Title,
		Body:          rec.Body,
	}
}

func (a *Assembler) framePath(index int, unit AudioUnit) string {
	name := fmt.Sprintf("%04d_%s.png", index+1, textutil.SanitizeFileName(unit.VoiceID))
	return filepath.Join(a.opts.WorkDir, "frames", name)
}
