package timeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"voicereel/internal/render"
	"voicereel/internal/voicetable"
)

type mapResolver map[string]voicetable.Record

func (m mapResolver) Resolve(characterID, raw string) (voicetable.Record, error) {
	rec, ok := m[raw]
	if !ok {
		return voicetable.Record{}, fmt.Errorf("%w: %s", voicetable.ErrNotFound, raw)
	}
	return rec, nil
}

type countingRenderer struct {
	calls atomic.Int32
	fail  bool
}

func (r *countingRenderer) RenderText(text render.Text, offset image.Point) (*image.RGBA, error) {
	r.calls.Add(1)
	if r.fail {
		return nil, errors.New("boom")
	}
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func testResolver() mapResolver {
	return mapResolver{
		"001": {CharacterID: "chr_004202", VoiceID: "CN_001", Title: "任命助理", Body: "a"},
		"003": {CharacterID: "chr_004202", VoiceID: "CN_003", Title: "交谈1", Body: "c"},
	}
}

func testOptions(t *testing.T) Options {
	return Options{
		CharacterID: "chr_004202",
		Interval:    3 * time.Second,
		Fade:        time.Second,
		Transitions: true,
		WorkDir:     t.TempDir(),
	}
}

func TestBuildSkipsUnresolvedUnits(t *testing.T) {
	renderer := &countingRenderer{}
	a := NewAssembler(testResolver(), renderer, testOptions(t), nil)

	units := []AudioUnit{
		{SourcePath: "/voice/CN_003.wav", VoiceID: "003", Duration: 2 * time.Second},
		{SourcePath: "/voice/CN_001.wav", VoiceID: "001", Duration: 5 * time.Second},
		{SourcePath: "/voice/CN_002.wav", VoiceID: "002", Duration: 4 * time.Second},
	}
	tl, err := a.Build(context.Background(), units, image.Point{})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(tl.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(tl.Segments))
	}
	if tl.Segments[0].Unit.VoiceID != "001" || tl.Segments[1].Unit.VoiceID != "003" {
		t.Fatalf("unexpected order: %s, %s", tl.Segments[0].Unit.VoiceID, tl.Segments[1].Unit.VoiceID)
	}
	if tl.Segments[0].Index != 0 || tl.Segments[1].Index != 1 {
		t.Fatalf("unexpected indexes: %d, %d", tl.Segments[0].Index, tl.Segments[1].Index)
	}
	if len(tl.Skipped) != 1 || !errors.Is(tl.Skipped[0].Reason, voicetable.ErrNotFound) {
		t.Fatalf("expected one NotFound skip, got %+v", tl.Skipped)
	}
	if renderer.calls.Load() != 2 {
		t.Fatalf("expected 2 renders, got %d", renderer.calls.Load())
	}
	for _, seg := range tl.Segments {
		if _, err := os.Stat(seg.FramePath); err != nil {
			t.Fatalf("frame not written: %v", err)
		}
	}
}

func TestBuildSegmentTiming(t *testing.T) {
	a := NewAssembler(testResolver(), &countingRenderer{}, testOptions(t), nil)

	tl, err := a.Build(context.Background(), []AudioUnit{
		{SourcePath: "CN_001.wav", VoiceID: "001", Duration: 5 * time.Second},
	}, image.Point{})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	seg := tl.Segments[0]
	if seg.Picture != 8*time.Second || seg.Audio != 5*time.Second {
		t.Fatalf("picture=%v audio=%v, want 8s/5s", seg.Picture, seg.Audio)
	}
	if seg.FadeIn != time.Second || seg.FadeOut != time.Second {
		t.Fatalf("unexpected fades: %v/%v", seg.FadeIn, seg.FadeOut)
	}
	if tl.Duration() != 8*time.Second {
		t.Fatalf("timeline duration = %v", tl.Duration())
	}
}

func TestBuildClampsFade(t *testing.T) {
	opts := testOptions(t)
	opts.Interval = 0
	opts.Fade = 2 * time.Second
	a := NewAssembler(testResolver(), &countingRenderer{}, opts, nil)

	tl, err := a.Build(context.Background(), []AudioUnit{
		{SourcePath: "CN_001.wav", VoiceID: "001", Duration: time.Second},
	}, image.Point{})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if tl.Segments[0].FadeIn != 500*time.Millisecond {
		t.Fatalf("fade not clamped to half the picture: %v", tl.Segments[0].FadeIn)
	}
}

func TestBuildEmptyTimeline(t *testing.T) {
	renderer := &countingRenderer{}
	a := NewAssembler(testResolver(), renderer, testOptions(t), nil)

	_, err := a.Build(context.Background(), nil, image.Point{})
	if !errors.Is(err, ErrEmptyTimeline) {
		t.Fatalf("expected ErrEmptyTimeline, got %v", err)
	}

	_, err = a.Build(context.Background(), []AudioUnit{
		{SourcePath: "CN_404.wav", VoiceID: "404", Duration: time.Second},
		{SourcePath: "CN_001.wav", VoiceID: "001"},
	}, image.Point{})
	if !errors.Is(err, ErrEmptyTimeline) {
		t.Fatalf("expected ErrEmptyTimeline when every unit is skipped, got %v", err)
	}
	if renderer.calls.Load() != 0 {
		t.Fatalf("renderer should not run for an empty timeline")
	}
}

func TestBuildParallelKeepsOrder(t *testing.T) {
	resolver := mapResolver{}
	var units []AudioUnit
	for i := 20; i >= 1; i-- {
		id := fmt.Sprintf("%03d", i)
		resolver[id] = voicetable.Record{VoiceID: "CN_" + id}
		units = append(units, AudioUnit{SourcePath: "CN_" + id + ".wav", VoiceID: id, Duration: time.Second})
	}
	opts := testOptions(t)
	opts.Workers = 4
	renderer := &countingRenderer{}

	tl, err := NewAssembler(resolver, renderer, opts, nil).Build(context.Background(), units, image.Point{})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	for i, seg := range tl.Segments {
		if want := fmt.Sprintf("%03d", i+1); seg.Unit.VoiceID != want {
			t.Fatalf("segment %d voice = %s, want %s", i, seg.Unit.VoiceID, want)
		}
	}
	if renderer.calls.Load() != 20 {
		t.Fatalf("expected 20 renders, got %d", renderer.calls.Load())
	}
}

func TestBuildPropagatesRenderFailure(t *testing.T) {
	a := NewAssembler(testResolver(), &countingRenderer{fail: true}, testOptions(t), nil)
	_, err := a.Build(context.Background(), []AudioUnit{
		{SourcePath: "CN_001.wav", VoiceID: "001", Duration: time.Second},
	}, image.Point{})
	if err == nil || errors.Is(err, ErrEmptyTimeline) {
		t.Fatalf("expected render error, got %v", err)
	}
}

func TestPreviewUsesFirstResolvableUnit(t *testing.T) {
	a := NewAssembler(testResolver(), &countingRenderer{}, testOptions(t), nil)

	frame, rec, err := a.Preview([]AudioUnit{
		{SourcePath: "CN_003.wav", VoiceID: "003"},
		{SourcePath: "CN_002.wav", VoiceID: "002"},
	}, image.Point{})
	if err != nil {
		t.Fatalf("Preview returned error: %v", err)
	}
	if frame == nil || rec.VoiceID != "CN_003" {
		t.Fatalf("unexpected preview record: %+v", rec)
	}
	if _, _, err := a.Preview(nil, image.Point{}); !errors.Is(err, ErrEmptyTimeline) {
		t.Fatalf("expected ErrEmptyTimeline, got %v", err)
	}
}
