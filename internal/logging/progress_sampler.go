package logging

import "sync"

// ProgressSampler thins per-item progress into one line per completion
// bucket. The last item of a label always logs. Safe for concurrent use.
type ProgressSampler struct {
	mu     sync.Mutex
	step   float64
	label  string
	bucket int
}

// NewProgressSampler returns a sampler with buckets of step percent
// (10 when step is not positive).
func NewProgressSampler(step float64) *ProgressSampler {
	if step <= 0 {
		step = 10
	}
	return &ProgressSampler{step: step, bucket: -1}
}

// Sample reports whether done of total items for label is worth a log line.
// A new label starts over.
func (s *ProgressSampler) Sample(label string, done, total int) bool {
	if s == nil {
		return true
	}
	if total <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if label != s.label {
		s.label = label
		s.bucket = -1
	}
	var bucket int
	if done >= total {
		bucket = int(100/s.step) + 1
	} else {
		bucket = int(float64(done) * 100 / float64(total) / s.step)
	}
	if bucket <= s.bucket {
		return false
	}
	s.bucket = bucket
	return true
}
