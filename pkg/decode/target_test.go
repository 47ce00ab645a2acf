package decode

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optiscan/optiscan/pkg/metrics"
)

func stockGeometry() Geometry {
	return Geometry{DisplayW: 240, DisplayH: 240, Toolbar: 30, TargetW: 120, TargetH: 80}
}

func TestDisplayRectCentered(t *testing.T) {
	r := stockGeometry().DisplayRect()

	assert.Equal(t, image.Rect(60, 95, 180, 175), r)
	// Centered horizontally, and vertically within the viewfinder band.
	assert.Equal(t, 240-r.Max.X, r.Min.X)
	assert.Equal(t, 240-r.Max.Y, r.Min.Y-30)
}

func TestSensorRectProjection(t *testing.T) {
	frame := image.Rect(0, 0, 1920, 1080)
	r := stockGeometry().SensorRect(frame)

	require.False(t, r.Empty())
	assert.True(t, r.In(frame))

	// The reticle is centered, so its sensor projection must be too
	// (within a pixel of rounding).
	cx := r.Min.X + r.Dx()/2
	cy := r.Min.Y + r.Dy()/2
	assert.InDelta(t, 960, cx, 8)
	assert.InDelta(t, 540, cy, 8)

	// 120 of 240 display pixels wide -> half the sensor width.
	assert.InDelta(t, 960, r.Dx(), 8)
}

func TestSensorRectClampsOversizedTarget(t *testing.T) {
	g := Geometry{DisplayW: 240, DisplayH: 240, Toolbar: 30, TargetW: 1000, TargetH: 1000}
	frame := image.Rect(0, 0, 640, 480)

	r := g.SensorRect(frame)
	assert.True(t, r.In(frame))
}

func TestSensorRectDegenerateGeometry(t *testing.T) {
	g := Geometry{DisplayW: 240, DisplayH: 30, Toolbar: 30, TargetW: 100, TargetH: 50}
	assert.True(t, g.SensorRect(image.Rect(0, 0, 640, 480)).Empty())
}

func TestCrop(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 100))
	src.Set(50, 50, color.RGBA{R: 255, A: 255})

	out := Crop(src, image.Rect(40, 40, 60, 60))
	assert.Equal(t, image.Rect(0, 0, 20, 20), out.Bounds())
	assert.Equal(t, color.RGBA{R: 255, A: 255}, out.RGBAAt(10, 10))
}

func TestSuppressor(t *testing.T) {
	now := time.Unix(1000, 0)
	s := NewSuppressor(1500 * time.Millisecond)
	s.now = func() time.Time { return now }

	assert.True(t, s.Allow("A"))
	assert.False(t, s.Allow("A"))

	// A different code passes immediately.
	assert.True(t, s.Allow("B"))

	// Holding the same code under the camera keeps refreshing the window.
	now = now.Add(time.Second)
	assert.False(t, s.Allow("B"))
	now = now.Add(time.Second)
	assert.False(t, s.Allow("B"))

	// Once quiet for longer than the window, it types again.
	now = now.Add(2 * time.Second)
	assert.True(t, s.Allow("B"))
}

func TestSuppressorCountsEachRejectionOnce(t *testing.T) {
	now := time.Unix(1000, 0)
	s := NewSuppressor(1500 * time.Millisecond)
	s.now = func() time.Time { return now }

	before := testutil.ToFloat64(metrics.BarcodesSuppressed)
	s.Allow("A")
	s.Allow("A")
	s.Allow("A")
	assert.Equal(t, before+2, testutil.ToFloat64(metrics.BarcodesSuppressed))
}
