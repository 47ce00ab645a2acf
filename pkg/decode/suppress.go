package decode

import (
	"time"

	"github.com/optiscan/optiscan/pkg/metrics"
)

// Suppressor drops repeat decodes of the same text inside a time window, so
// a barcode held under the camera is typed once rather than once per frame.
type Suppressor struct {
	window   time.Duration
	lastText string
	lastAt   time.Time
	now      func() time.Time
}

func NewSuppressor(window time.Duration) *Suppressor {
	return &Suppressor{window: window, now: time.Now}
}

// Allow reports whether the text should be acted on, and records it.
func (s *Suppressor) Allow(text string) bool {
	now := s.now()
	if text == s.lastText && now.Sub(s.lastAt) < s.window {
		s.lastAt = now
		metrics.BarcodesSuppressed.Inc()
		return false
	}
	s.lastText = text
	s.lastAt = now
	return true
}
