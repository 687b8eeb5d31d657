package logging

import "testing"

func TestProgressSamplerLogsOncePerBucket(t *testing.T) {
	s := NewProgressSampler(25)
	steps := []struct {
		done int
		want bool
	}{
		{1, true},
		{2, true},
		{3, false},
		{4, true},
		{5, false},
		{6, true},
		{7, false},
		{8, true},
	}
	for _, step := range steps {
		if got := s.Sample("Downloading", step.done, 8); got != step.want {
			t.Fatalf("done=%d: got %v want %v", step.done, got, step.want)
		}
	}
}

func TestProgressSamplerAlwaysLogsLastItem(t *testing.T) {
	s := NewProgressSampler(30)
	s.Sample("Running kraken", 9, 10)
	if !s.Sample("Running kraken", 10, 10) {
		t.Fatal("expected final item to log")
	}
	if s.Sample("Running kraken", 10, 10) {
		t.Fatal("final item logged twice")
	}
}

func TestProgressSamplerStartsOverForNewLabel(t *testing.T) {
	s := NewProgressSampler(50)
	s.Sample("Downloading", 4, 4)
	if !s.Sample("Removing files", 1, 4) {
		t.Fatal("expected new label to log")
	}
	if s.Sample("Removing files", 1, 0) {
		t.Fatal("unknown total should not log")
	}
}

func TestNilSamplerAlwaysLogs(t *testing.T) {
	var s *ProgressSampler
	if !s.Sample("x", 1, 2) {
		t.Fatal("nil sampler should log")
	}
}
