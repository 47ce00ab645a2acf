package display

import (
	"image"
	"image/color"
	"image/draw"
	"sync"
)

// Display is a framebuffer sink. The renderer composites full frames and
// hands them over; partial updates are not worth the bookkeeping at 240x240.
type Display interface {
	// Size returns the panel dimensions in pixels.
	Size() (width, height int)
	// Draw blits a full frame. The image must match the panel size.
	Draw(img image.Image) error
	// Fill paints the whole panel a single color.
	Fill(c color.Color) error
	Close() error
}

// Memory is a Display backed by an in-memory framebuffer. It is used in
// tests and as the snapshot source for the remote view.
type Memory struct {
	mu     sync.RWMutex
	frame  *image.RGBA
	width  int
	height int
}

func NewMemory(width, height int) *Memory {
	return &Memory{
		frame:  image.NewRGBA(image.Rect(0, 0, width, height)),
		width:  width,
		height: height,
	}
}

func (m *Memory) Size() (int, int) { return m.width, m.height }

func (m *Memory) Draw(img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	draw.Draw(m.frame, m.frame.Bounds(), img, img.Bounds().Min, draw.Src)
	return nil
}

func (m *Memory) Fill(c color.Color) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	draw.Draw(m.frame, m.frame.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return nil
}

func (m *Memory) Close() error { return nil }

// Snapshot returns a copy of the current framebuffer.
func (m *Memory) Snapshot() *image.RGBA {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := image.NewRGBA(m.frame.Bounds())
	copy(out.Pix, m.frame.Pix)
	return out
}
