package decode

import (
	"image"
	"image/draw"
)

// Geometry maps the on-screen reticle to sensor coordinates. Display
// dimensions and target size are in display pixels; the viewfinder occupies
// everything below the toolbar.
type Geometry struct {
	DisplayW, DisplayH int
	Toolbar            int
	TargetW, TargetH   int
}

// DisplayRect is the reticle rectangle in display coordinates, centered in
// the viewfinder area below the toolbar.
func (g Geometry) DisplayRect() image.Rectangle {
	vfHeight := g.DisplayH - g.Toolbar
	x0 := (g.DisplayW - g.TargetW) / 2
	y0 := g.Toolbar + (vfHeight-g.TargetH)/2
	return image.Rect(x0, y0, x0+g.TargetW, y0+g.TargetH)
}

// SensorRect projects the reticle onto the full-resolution camera frame,
// clamped to the frame bounds.
func (g Geometry) SensorRect(frame image.Rectangle) image.Rectangle {
	vfHeight := g.DisplayH - g.Toolbar
	if vfHeight <= 0 || g.DisplayW <= 0 {
		return image.Rectangle{}
	}

	scaleX := float64(frame.Dx()) / float64(g.DisplayW)
	scaleY := float64(frame.Dy()) / float64(vfHeight)

	// Reticle position relative to the viewfinder, not the full display.
	x0 := (g.DisplayW - g.TargetW) / 2
	y0 := (vfHeight - g.TargetH) / 2

	r := image.Rect(
		int(float64(x0)*scaleX),
		int(float64(y0)*scaleY),
		int(float64(x0+g.TargetW)*scaleX),
		int(float64(y0+g.TargetH)*scaleY),
	)
	return r.Add(frame.Min).Intersect(frame)
}

// Crop copies the region into a fresh RGBA image anchored at the origin.
func Crop(img image.Image, region image.Rectangle) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	draw.Draw(dst, dst.Bounds(), img, region.Min, draw.Src)
	return dst
}
