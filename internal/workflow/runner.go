package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"voicereel/internal/config"
	"voicereel/internal/encoding"
	"voicereel/internal/journal"
	"voicereel/internal/logging"
	"voicereel/internal/media/ffprobe"
	"voicereel/internal/services"
	"voicereel/internal/timeline"
)

// Runner executes character jobs from a loaded configuration.
type Runner struct {
	cfg     *config.Config
	logger  *slog.Logger
	journal *journal.Store
	prober  timeline.DurationProber
	run     encoding.CommandRunner
	verify  encoding.Verifier
	now     func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithJournal records every finished job in store.
func WithJournal(store *journal.Store) Option {
	return func(r *Runner) { r.journal = store }
}

// WithDurationProber replaces the ffprobe duration backend.
func WithDurationProber(p timeline.DurationProber) Option {
	return func(r *Runner) {
		if p != nil {
			r.prober = p
		}
	}
}

// WithCommandRunner replaces the process runner used for ffmpeg.
func WithCommandRunner(run encoding.CommandRunner) Option {
	return func(r *Runner) { r.run = run }
}

// WithVerifier replaces the post-export inspection. A nil verifier disables it.
func WithVerifier(v encoding.Verifier) Option {
	return func(r *Runner) { r.verify = v }
}

// NewRunner constructs a Runner backed by ffprobe and ffmpeg.
func NewRunner(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	ffprobeBinary := cfg.FFprobeBinary()
	r := &Runner{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "workflow"),
		prober: timeline.FFprobe{Binary: ffprobeBinary},
		verify: func(ctx context.Context, path string) (ffprobe.Result, error) {
			return ffprobe.Inspect(ctx, ffprobeBinary, path)
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// JobResult is the outcome of one character job.
type JobResult struct {
	CharacterID string
	Status      journal.Status
	Output      string
	Segments    int
	Skipped     int
	Export      encoding.Result
	Elapsed     time.Duration
	Err         error
}

// Summary aggregates a batch.
type Summary struct {
	RunID     string
	Jobs      []JobResult
	Completed int
	Failed    int
	Empty     int
	Elapsed   time.Duration
}

// HasFailures reports whether any job did not produce a video.
func (s Summary) HasFailures() bool {
	return s.Failed > 0 || s.Empty > 0
}

// Select returns the configured characters named by ids, in config order.
// An empty ids selects every character.
func (r *Runner) Select(ids []string) ([]config.Character, error) {
	if len(ids) == 0 {
		if len(r.cfg.Characters) == 0 {
			return nil, services.Wrap(services.ErrConfiguration, "select", "characters", "no [[characters]] configured", nil)
		}
		return append([]config.Character(nil), r.cfg.Characters...), nil
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, ok := r.cfg.Character(id); !ok {
			return nil, services.Wrap(services.ErrConfiguration, "select", "characters", fmt.Sprintf("character %q is not configured", id), nil)
		}
		wanted[id] = true
	}
	var out []config.Character
	for _, ch := range r.cfg.Characters {
		if wanted[ch.ID] {
			out = append(out, ch)
		}
	}
	return out, nil
}

// RunAll runs the selected characters in order and keeps going after a job
// fails. The returned error is non-nil only when selection fails or ctx is
// cancelled.
func (r *Runner) RunAll(ctx context.Context, ids []string) (Summary, error) {
	chars, err := r.Select(ids)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{RunID: uuid.NewString()}
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, r.logger)
	start := r.now()
	logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.Int("characters", len(chars)),
	)

	for i, ch := range chars {
		if err := ctx.Err(); err != nil {
			summary.Elapsed = r.now().Sub(start)
			return summary, err
		}
		logger.Info("character started",
			logging.String(logging.FieldCharacter, ch.ID),
			logging.Int("position", i+1),
			logging.Int("total", len(chars)),
		)
		res := r.RunJob(ctx, summary.RunID, ch)
		summary.Jobs = append(summary.Jobs, res)
		switch res.Status {
		case journal.StatusCompleted:
			summary.Completed++
		case journal.StatusEmpty:
			summary.Empty++
		default:
			summary.Failed++
		}
		if errors.Is(res.Err, context.Canceled) {
			summary.Elapsed = r.now().Sub(start)
			return summary, res.Err
		}
	}

	summary.Elapsed = r.now().Sub(start)
	logger.Info("batch finished",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("completed", summary.Completed),
		logging.Int("failed", summary.Failed),
		logging.Int("empty", summary.Empty),
		logging.Duration("elapsed", summary.Elapsed.Round(time.Millisecond)),
	)
	return summary, nil
}
