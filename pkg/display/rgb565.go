package display

import (
	"image"
)

// RGB565 packs an image into the big-endian 16bpp pixel format the ST7789
// expects, row by row.
func RGB565(img image.Image) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*2)

	if rgba, ok := img.(*image.RGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := rgba.Pix[rgba.PixOffset(b.Min.X, y):rgba.PixOffset(b.Max.X, y)]
			for i := 0; i < len(row); i += 4 {
				out = appendPixel(out, row[i], row[i+1], row[i+2])
			}
		}
		return out
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			out = appendPixel(out, byte(r>>8), byte(g>>8), byte(bl>>8))
		}
	}
	return out
}

func appendPixel(out []byte, r, g, b byte) []byte {
	v := uint16(r&0xf8)<<8 | uint16(g&0xfc)<<3 | uint16(b)>>3
	return append(out, byte(v>>8), byte(v))
}
