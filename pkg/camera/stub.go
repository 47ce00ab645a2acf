package camera

import (
	"image"
	"sync"
)

// Stub replays canned frames and records control writes. It stands in for
// the V4L2 device in tests and on machines without a camera.
type Stub struct {
	mu       sync.Mutex
	frames   chan image.Image
	controls map[Control]int32
	closed   bool
}

// NewStub returns a source with an empty frame queue.
func NewStub() *Stub {
	return &Stub{
		frames:   make(chan image.Image, 8),
		controls: make(map[Control]int32),
	}
}

// Push queues one frame for delivery.
func (s *Stub) Push(img image.Image) {
	s.frames <- img
}

func (s *Stub) Frames() <-chan image.Image {
	return s.frames
}

func (s *Stub) Set(ctrl Control, value int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controls[ctrl] = value
	return nil
}

// ControlValue reports the last value written for ctrl.
func (s *Stub) ControlValue(ctrl Control) (int32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.controls[ctrl]
	return v, ok
}

func (s *Stub) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.frames)
	}
	return nil
}
