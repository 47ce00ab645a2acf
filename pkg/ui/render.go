package ui

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/optiscan/optiscan/pkg/config"
)

var (
	colToolbar  = color.RGBA{40, 40, 40, 255}
	colText     = color.RGBA{255, 255, 255, 255}
	colOK       = color.RGBA{0, 200, 0, 255}
	colAlert    = color.RGBA{220, 40, 40, 255}
	colReticle  = color.RGBA{220, 40, 40, 255}
	colScan     = color.RGBA{60, 120, 255, 255}
	colAdjustW  = color.RGBA{60, 120, 255, 255}
	colAdjustH  = color.RGBA{240, 210, 40, 255}
	colHit      = color.RGBA{0, 220, 0, 255}
	colDim      = color.RGBA{0, 0, 0, 180}
	colSelected = color.RGBA{255, 255, 255, 255}
	colEditing  = color.RGBA{240, 210, 40, 255}
	colThumb    = color.RGBA{200, 200, 200, 255}
	colTrack    = color.RGBA{70, 70, 70, 255}
)

// View is everything the compositor needs for one output frame.
type View struct {
	// Camera is the live frame, scaled to fill the viewfinder. Nil leaves
	// the viewfinder black.
	Camera image.Image
	State  State
	// USBMode is the configured connection mode. The host indicator is
	// only meaningful, and only drawn, when typing over USB is wanted.
	USBMode   bool
	Connected bool
	// Reticle is the target rectangle in display coordinates. The zero
	// rectangle draws nothing.
	Reticle image.Rectangle
	// Hits outline decoded barcodes, already projected to display space.
	Hits []image.Rectangle
	// Menu, when non-nil, draws the settings overlay.
	Menu       []MenuLine
	MenuCursor int
	MenuTotal  int
}

// Renderer composes output frames for the LCD and the remote view.
type Renderer struct {
	w, h    int
	toolbar int
	rows    int

	toolbarFace font.Face
	menuFace    font.Face
}

// NewRenderer parses the embedded font at the configured sizes.
func NewRenderer(gui config.GUI, width, height int) (*Renderer, error) {
	ft, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing ui font: %w", err)
	}
	toolbarFace, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size: float64(gui.ToolbarFont), DPI: 72, Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("toolbar font face: %w", err)
	}
	menuFace, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size: float64(gui.RegularFont), DPI: 72, Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("menu font face: %w", err)
	}
	return &Renderer{
		w:           width,
		h:           height,
		toolbar:     gui.ToolbarHeight,
		rows:        gui.MenuItems,
		toolbarFace: toolbarFace,
		menuFace:    menuFace,
	}, nil
}

// Compose renders one frame.
func (r *Renderer) Compose(v View) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, r.w, r.h))
	draw.Draw(out, out.Bounds(), image.Black, image.Point{}, draw.Src)

	viewfinder := image.Rect(0, r.toolbar, r.w, r.h)
	if v.Camera != nil {
		xdraw.ApproxBiLinear.Scale(out, viewfinder, v.Camera, v.Camera.Bounds(), xdraw.Src, nil)
	}

	if v.Menu != nil {
		r.drawMenu(out, viewfinder, v)
	} else {
		if !v.Reticle.Empty() {
			r.drawReticle(out, v.Reticle, reticleColor(v.State))
		}
		for _, hit := range v.Hits {
			outlineRect(out, hit, colHit)
		}
	}

	r.drawToolbar(out, v)
	return out
}

func reticleColor(s State) color.RGBA {
	switch s {
	case Scanning:
		return colScan
	case TargetWidth:
		return colAdjustW
	case TargetHeight:
		return colAdjustH
	}
	return colReticle
}

func (r *Renderer) drawToolbar(dst *image.RGBA, v View) {
	bar := image.Rect(0, 0, r.w, r.toolbar)
	draw.Draw(dst, bar, image.NewUniform(colToolbar), image.Point{}, draw.Src)

	baseline := (r.toolbar + r.toolbarFace.Metrics().Ascent.Ceil()) / 2
	drawText(dst, r.toolbarFace, 4, baseline, colText, v.State.Label())

	if !v.USBMode {
		return
	}
	usb := "USB NO"
	usbCol := colAlert
	if v.Connected {
		usb = "USB OK"
		usbCol = colOK
	}
	width := font.MeasureString(r.toolbarFace, usb).Ceil()
	drawText(dst, r.toolbarFace, r.w-width-4, baseline, usbCol, usb)
}

func (r *Renderer) drawReticle(dst *image.RGBA, rect image.Rectangle, col color.RGBA) {
	outlineRect(dst, rect, col)
	cx := (rect.Min.X + rect.Max.X) / 2
	cy := (rect.Min.Y + rect.Max.Y) / 2
	const arm = 6
	hline(dst, cx-arm, cx+arm, cy, col)
	vline(dst, cx, cy-arm, cy+arm, col)
}

func (r *Renderer) drawMenu(dst *image.RGBA, area image.Rectangle, v View) {
	draw.Draw(dst, area, image.NewUniform(colDim), image.Point{}, draw.Over)

	rows := r.rows
	if rows < 1 {
		rows = 1
	}
	rowH := area.Dy() / rows
	ascent := r.menuFace.Metrics().Ascent.Ceil()
	for i, line := range v.Menu {
		if i >= rows {
			break
		}
		top := area.Min.Y + i*rowH
		textCol := colText
		if line.Selected {
			bg := colSelected
			if line.Editing {
				bg = colEditing
			}
			draw.Draw(dst, image.Rect(area.Min.X, top, area.Max.X-scrollWidth, top+rowH),
				image.NewUniform(bg), image.Point{}, draw.Src)
			textCol = color.RGBA{0, 0, 0, 255}
		}
		baseline := top + (rowH+ascent)/2
		drawText(dst, r.menuFace, area.Min.X+6, baseline, textCol, line.Text)
	}

	r.drawScrollbar(dst, area, v.MenuCursor, v.MenuTotal)
}

const scrollWidth = 5

func (r *Renderer) drawScrollbar(dst *image.RGBA, area image.Rectangle, cursor, total int) {
	if total < 2 {
		return
	}
	track := image.Rect(area.Max.X-scrollWidth, area.Min.Y, area.Max.X, area.Max.Y)
	draw.Draw(dst, track, image.NewUniform(colTrack), image.Point{}, draw.Src)

	thumbH := area.Dy() / total
	if thumbH < 8 {
		thumbH = 8
	}
	span := area.Dy() - thumbH
	top := area.Min.Y + span*cursor/(total-1)
	thumb := image.Rect(track.Min.X, top, track.Max.X, top+thumbH)
	draw.Draw(dst, thumb, image.NewUniform(colThumb), image.Point{}, draw.Src)
}

func drawText(dst draw.Image, face font.Face, x, y int, col color.Color, s string) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func outlineRect(dst *image.RGBA, r image.Rectangle, col color.RGBA) {
	hline(dst, r.Min.X, r.Max.X, r.Min.Y, col)
	hline(dst, r.Min.X, r.Max.X, r.Max.Y-1, col)
	vline(dst, r.Min.X, r.Min.Y, r.Max.Y, col)
	vline(dst, r.Max.X-1, r.Min.Y, r.Max.Y, col)
}

func hline(dst *image.RGBA, x0, x1, y int, col color.RGBA) {
	for x := x0; x < x1; x++ {
		dst.SetRGBA(x, y, col)
	}
}

func vline(dst *image.RGBA, x, y0, y1 int, col color.RGBA) {
	for y := y0; y < y1; y++ {
		dst.SetRGBA(x, y, col)
	}
}
