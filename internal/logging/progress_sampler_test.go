package logging

import "testing"

func TestNewProgressSamplerDefaultsBucket(t *testing.T) {
	for _, size := range []float64{0, -2} {
		if s := NewProgressSampler(size); s.bucketSize != 5 || s.lastBucket != -1 {
			t.Fatalf("NewProgressSampler(%v) = %+v", size, s)
		}
	}
	if s := NewProgressSampler(10); s.bucketSize != 10 {
		t.Fatalf("expected custom bucket, got %v", s.bucketSize)
	}
}

func TestProgressSamplerSegmentSequence(t *testing.T) {
	type step struct {
		percent float64
		stage   string
		want    bool
	}
	tests := []struct {
		name   string
		bucket float64
		steps  []step
	}{
		{
			name:   "seven segments in ten percent buckets",
			bucket: 10,
			steps: []step{
				{100.0 / 7, "segments", true},
				{200.0 / 7, "segments", true},
				{300.0 / 7, "segments", true},
				{400.0 / 7, "segments", true},
				{500.0 / 7, "segments", true},
				{600.0 / 7, "segments", true},
				{100, "segments", true},
				{100, "segments", false},
			},
		},
		{
			name:   "dense updates collapse into buckets",
			bucket: 25,
			steps: []step{
				{1, "segments", true},
				{10, "segments", false},
				{24.9, "segments", false},
				{25, "segments", true},
				{49, "segments", false},
				{80, "segments", true},
			},
		},
		{
			name:   "stage change restarts buckets",
			bucket: 10,
			steps: []step{
				{50, "segments", true},
				{55, "segments", false},
				{0, " concat ", true},
				{5, "concat", false},
				{50, "concat", true},
			},
		},
		{
			name:   "unknown percent only reports stage changes",
			bucket: 5,
			steps: []step{
				{-1, "verify", true},
				{-1, "verify", false},
				{-1, "", false},
			},
		},
		{
			name:   "overshoot clamps to final bucket",
			bucket: 30,
			steps: []step{
				{100, "segments", true},
				{140, "segments", false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucket)
			for i, st := range tt.steps {
				if got := s.ShouldLog(st.percent, st.stage); got != st.want {
					t.Fatalf("step %d ShouldLog(%v, %q) = %v, want %v", i, st.percent, st.stage, got, st.want)
				}
			}
		})
	}
}

func TestProgressSamplerResetAndNil(t *testing.T) {
	s := NewProgressSampler(10)
	s.ShouldLog(90, "segments")
	s.Reset()
	if s.lastStage != "" || s.lastBucket != -1 {
		t.Fatalf("reset left state: %+v", s)
	}
	if !s.ShouldLog(90, "segments") {
		t.Fatal("expected emit after reset")
	}

	var nilSampler *ProgressSampler
	if !nilSampler.ShouldLog(50, "segments") {
		t.Fatal("nil sampler should always emit")
	}
	nilSampler.Reset()
}
