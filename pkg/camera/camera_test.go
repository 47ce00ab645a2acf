package camera_test

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optiscan/optiscan/pkg/camera"
)

func TestControlNames(t *testing.T) {
	tests := []struct {
		ctrl camera.Control
		name string
	}{
		{camera.Brightness, "brightness"},
		{camera.Contrast, "contrast"},
		{camera.Saturation, "saturation"},
		{camera.Sharpness, "sharpness"},
		{camera.Gain, "gain"},
		{camera.AutoExposure, "auto-exposure"},
		{camera.Exposure, "exposure"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.name, tt.ctrl.String())
	}
	assert.Equal(t, "unknown", camera.Control(99).String())
}

func TestStubDeliversFrames(t *testing.T) {
	s := camera.NewStub()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	s.Push(img)

	got, ok := <-s.Frames()
	require.True(t, ok)
	assert.Same(t, image.Image(img), got)

	require.NoError(t, s.Close())
	_, ok = <-s.Frames()
	assert.False(t, ok, "channel should close with the source")
}

func TestStubRecordsControls(t *testing.T) {
	s := camera.NewStub()
	require.NoError(t, s.Set(camera.Brightness, 42))

	v, ok := s.ControlValue(camera.Brightness)
	require.True(t, ok)
	assert.Equal(t, int32(42), v)

	_, ok = s.ControlValue(camera.Gain)
	assert.False(t, ok)
}
