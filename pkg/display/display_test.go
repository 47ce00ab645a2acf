package display

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDrawAndSnapshot(t *testing.T) {
	m := NewMemory(16, 16)
	w, h := m.Size()
	assert.Equal(t, 16, w)
	assert.Equal(t, 16, h)

	frame := image.NewRGBA(image.Rect(0, 0, 16, 16))
	frame.Set(3, 4, color.RGBA{R: 255, A: 255})
	require.NoError(t, m.Draw(frame))

	snap := m.Snapshot()
	assert.Equal(t, color.RGBA{R: 255, A: 255}, snap.RGBAAt(3, 4))

	// The snapshot is a copy, not a view.
	snap.Set(3, 4, color.RGBA{B: 255, A: 255})
	assert.Equal(t, color.RGBA{R: 255, A: 255}, m.Snapshot().RGBAAt(3, 4))
}

func TestMemoryFill(t *testing.T) {
	m := NewMemory(8, 8)
	require.NoError(t, m.Fill(color.RGBA{G: 128, A: 255}))
	assert.Equal(t, color.RGBA{G: 128, A: 255}, m.Snapshot().RGBAAt(7, 7))
}

func TestRGB565Packing(t *testing.T) {
	tests := []struct {
		name string
		in   color.RGBA
		want []byte
	}{
		{"black", color.RGBA{A: 255}, []byte{0x00, 0x00}},
		{"white", color.RGBA{255, 255, 255, 255}, []byte{0xff, 0xff}},
		{"red", color.RGBA{R: 255, A: 255}, []byte{0xf8, 0x00}},
		{"green", color.RGBA{G: 255, A: 255}, []byte{0x07, 0xe0}},
		{"blue", color.RGBA{B: 255, A: 255}, []byte{0x00, 0x1f}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, 1, 1))
			img.SetRGBA(0, 0, tt.in)
			assert.Equal(t, tt.want, RGB565(img))
		})
	}
}

func TestRGB565Length(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 240, 240))
	assert.Len(t, RGB565(img), 240*240*2)
}

func TestRGB565GenericImage(t *testing.T) {
	// Non-RGBA images go through the slow path and must agree with the
	// fast path.
	gray := image.NewGray(image.Rect(0, 0, 2, 1))
	gray.SetGray(0, 0, color.Gray{Y: 255})

	out := RGB565(gray)
	assert.Equal(t, []byte{0xff, 0xff, 0x00, 0x00}, out)
}
