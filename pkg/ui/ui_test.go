package ui

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optiscan/optiscan/pkg/config"
	"github.com/optiscan/optiscan/pkg/decode"
	"github.com/optiscan/optiscan/pkg/input"
	"github.com/optiscan/optiscan/pkg/settings"
	"github.com/optiscan/optiscan/pkg/system"
)

func testTree() []settings.Setting {
	return []settings.Setting{
		&settings.Group{Key: "camera", Label: "Camera", Children: []settings.Setting{
			&settings.Int{Key: "camera.brightness", Label: "Brightness", Min: 0, Max: 100, Current: 50, StepSize: 1},
		}},
		&settings.Float{Key: "led.brightness", Label: "LED", Min: 0, Max: 1, Current: 0.2, StepSize: 0.05, Precision: 2},
	}
}

func testController(onGeom func(decode.Geometry)) (*Controller, *Menu) {
	menu := NewMenu(testTree(), nil)
	geom := decode.Geometry{DisplayW: 240, DisplayH: 240, Toolbar: 30, TargetW: 120, TargetH: 80}
	return NewController(geom, menu, onGeom, system.NewTestLogger()), menu
}

func TestTriggerScanCycle(t *testing.T) {
	c, _ := testController(nil)
	require.Equal(t, Idle, c.State())

	c.Handle(input.Event{Kind: input.TriggerDown})
	assert.Equal(t, Scanning, c.State())
	c.Handle(input.Event{Kind: input.TriggerUp})
	assert.Equal(t, Idle, c.State())
}

func TestTargetAdjustCycle(t *testing.T) {
	var saved *decode.Geometry
	c, _ := testController(func(g decode.Geometry) { saved = &g })

	c.Handle(input.Event{Kind: input.ButtonPress})
	assert.Equal(t, TargetWidth, c.State())
	c.Handle(input.Event{Kind: input.EncoderStep, Delta: 2})
	assert.Equal(t, 130, c.Geometry().TargetW)

	c.Handle(input.Event{Kind: input.ButtonPress})
	assert.Equal(t, TargetHeight, c.State())
	c.Handle(input.Event{Kind: input.EncoderStep, Delta: -1})
	assert.Equal(t, 75, c.Geometry().TargetH)

	c.Handle(input.Event{Kind: input.ButtonPress})
	assert.Equal(t, Idle, c.State())
	require.NotNil(t, saved, "geometry persisted after the adjust round")
	assert.Equal(t, 130, saved.TargetW)
	assert.Equal(t, 75, saved.TargetH)
}

func TestEncoderAdjustPersistsEachStep(t *testing.T) {
	saves := 0
	c, _ := testController(func(decode.Geometry) { saves++ })

	c.Handle(input.Event{Kind: input.ButtonPress})
	c.Handle(input.Event{Kind: input.EncoderStep, Delta: 1})
	assert.Equal(t, 1, saves, "every detent persists")
	c.Handle(input.Event{Kind: input.EncoderStep, Delta: -1})
	assert.Equal(t, 2, saves)
}

func TestTargetClamping(t *testing.T) {
	c, _ := testController(nil)
	c.Handle(input.Event{Kind: input.ButtonPress})
	c.Handle(input.Event{Kind: input.EncoderStep, Delta: -1000})
	assert.Equal(t, 40, c.Geometry().TargetW, "a sixth of the display width")
	c.Handle(input.Event{Kind: input.EncoderStep, Delta: 1000})
	assert.Equal(t, 200, c.Geometry().TargetW, "five sixths of the display width")

	c.Handle(input.Event{Kind: input.ButtonPress})
	c.Handle(input.Event{Kind: input.EncoderStep, Delta: -1000})
	assert.Equal(t, 35, c.Geometry().TargetH, "a sixth of the viewfinder height")
	c.Handle(input.Event{Kind: input.EncoderStep, Delta: 1000})
	assert.Equal(t, 175, c.Geometry().TargetH, "five sixths of the viewfinder height")
}

func TestLongPressOpensSettings(t *testing.T) {
	c, menu := testController(nil)
	c.Handle(input.Event{Kind: input.ButtonLongPress})
	assert.Equal(t, Settings, c.State())
	assert.True(t, menu.IsOpen())

	// Trigger aborts the menu.
	c.Handle(input.Event{Kind: input.TriggerDown})
	assert.Equal(t, Idle, c.State())
	assert.False(t, menu.IsOpen())
}

func TestLongPressBacksOutOfSettings(t *testing.T) {
	c, menu := testController(nil)
	c.Handle(input.Event{Kind: input.ButtonLongPress})
	require.Equal(t, Settings, c.State())

	// Enter the camera group.
	c.Handle(input.Event{Kind: input.EncoderStep, Delta: 1})
	c.Handle(input.Event{Kind: input.ButtonPress})

	// One long press pops back to the root level.
	c.Handle(input.Event{Kind: input.ButtonLongPress})
	assert.Equal(t, Settings, c.State())
	assert.True(t, menu.IsOpen())

	// Another leaves the menu entirely.
	c.Handle(input.Event{Kind: input.ButtonLongPress})
	assert.Equal(t, Idle, c.State())
	assert.False(t, menu.IsOpen())
}

func TestMenuNavigation(t *testing.T) {
	changed := 0
	menu := NewMenu(testTree(), func() { changed++ })
	menu.Open()

	// Row 0 is the back entry, row 1 the camera group.
	menu.Step(1)
	assert.False(t, menu.Press(), "entering a group keeps the menu open")
	cursor, total := menu.Scroll()
	assert.Equal(t, 0, cursor)
	assert.Equal(t, 2, total, "back entry plus one child")

	// Select brightness and edit it. Each turn persists immediately.
	menu.Step(1)
	menu.Press()
	require.True(t, menu.Editing())
	menu.Step(5)
	assert.Equal(t, 1, changed)
	lines := menu.Lines(3)
	var sel MenuLine
	for _, l := range lines {
		if l.Selected {
			sel = l
		}
	}
	assert.Equal(t, "Brightness: 55", sel.Text)
	assert.True(t, sel.Editing)

	// Committing fires the change hook once more.
	menu.Press()
	assert.False(t, menu.Editing())
	assert.Equal(t, 2, changed)

	// Back out of the group, then out of the menu.
	menu.Step(-1)
	assert.False(t, menu.Press())
	menu.Step(-1)
	assert.True(t, menu.Press(), "back at the root closes the menu")
	assert.False(t, menu.IsOpen())
}

func TestMenuCursorClamps(t *testing.T) {
	menu := NewMenu(testTree(), nil)
	menu.Open()
	menu.Step(-5)
	cursor, _ := menu.Scroll()
	assert.Equal(t, 0, cursor)
	menu.Step(99)
	cursor, total := menu.Scroll()
	assert.Equal(t, total-1, cursor)
}

func TestStateLabels(t *testing.T) {
	assert.Equal(t, "IDLE", Idle.Label())
	assert.Equal(t, "SCAN", Scanning.Label())
	assert.Equal(t, "TGT-W", TargetWidth.Label())
	assert.Equal(t, "TGT-H", TargetHeight.Label())
	assert.Equal(t, "SET", Settings.Label())
}

func TestComposeDrawsToolbarAndReticle(t *testing.T) {
	r := newTestRenderer(t)
	geom := decode.Geometry{DisplayW: 240, DisplayH: 240, Toolbar: 30, TargetW: 120, TargetH: 80}
	out := r.Compose(View{
		State:     Idle,
		USBMode:   true,
		Connected: true,
		Reticle:   geom.DisplayRect(),
	})

	require.Equal(t, image.Rect(0, 0, 240, 240), out.Bounds())
	assert.Equal(t, colToolbar, out.RGBAAt(0, 0), "toolbar background")

	rect := geom.DisplayRect()
	assert.Equal(t, colReticle, out.RGBAAt(rect.Min.X, rect.Min.Y), "reticle outline")
	cx := (rect.Min.X + rect.Max.X) / 2
	cy := (rect.Min.Y + rect.Max.Y) / 2
	assert.Equal(t, colReticle, out.RGBAAt(cx, cy), "crosshair center")
}

func TestComposeScanningReticleBlue(t *testing.T) {
	r := newTestRenderer(t)
	geom := decode.Geometry{DisplayW: 240, DisplayH: 240, Toolbar: 30, TargetW: 120, TargetH: 80}
	rect := geom.DisplayRect()

	out := r.Compose(View{State: Scanning, USBMode: true, Reticle: rect})
	assert.Equal(t, colScan, out.RGBAAt(rect.Min.X, rect.Min.Y))
}

func TestComposeUSBIndicatorFollowsMode(t *testing.T) {
	r := newTestRenderer(t)

	indicator := func(v View) bool {
		out := r.Compose(v)
		for y := 2; y < 28; y++ {
			for x := 180; x < 238; x++ {
				if out.RGBAAt(x, y) != colToolbar {
					return true
				}
			}
		}
		return false
	}

	assert.True(t, indicator(View{State: Idle, USBMode: true, Connected: true}))
	assert.True(t, indicator(View{State: Idle, USBMode: true, Connected: false}))
	assert.False(t, indicator(View{State: Idle, USBMode: false, Connected: true}),
		"no host indicator outside USB mode")
}

func TestComposeMenuOverlay(t *testing.T) {
	r := newTestRenderer(t)
	out := r.Compose(View{
		State:      Settings,
		Menu:       []MenuLine{{Text: "Back", Selected: true}, {Text: "Camera"}},
		MenuCursor: 0,
		MenuTotal:  3,
	})

	// Selected row is inverted.
	assert.Equal(t, colSelected, out.RGBAAt(1, 31))
	// Scrollbar track occupies the right edge of the viewfinder.
	assert.Equal(t, colThumb, out.RGBAAt(239, 31))
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(config.GUI{
		ToolbarHeight: 30,
		MenuItems:     3,
		ToolbarFont:   10,
		RegularFont:   18,
	}, 240, 240)
	require.NoError(t, err)
	return r
}
