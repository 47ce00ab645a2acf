// Package scanner ties the hardware and decoding packages together into
// the appliance: frames in, keystrokes out, UI on the LCD.
package scanner

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/optiscan/optiscan/pkg/camera"
	"github.com/optiscan/optiscan/pkg/config"
	"github.com/optiscan/optiscan/pkg/decode"
	"github.com/optiscan/optiscan/pkg/display"
	"github.com/optiscan/optiscan/pkg/input"
	"github.com/optiscan/optiscan/pkg/journal"
	"github.com/optiscan/optiscan/pkg/led"
	"github.com/optiscan/optiscan/pkg/metrics"
	"github.com/optiscan/optiscan/pkg/remoteview"
	"github.com/optiscan/optiscan/pkg/settings"
	"github.com/optiscan/optiscan/pkg/system"
	"github.com/optiscan/optiscan/pkg/tone"
	"github.com/optiscan/optiscan/pkg/ui"
)

const (
	// displayInterval paces the compositor at roughly 15 frames/s.
	displayInterval = 66 * time.Millisecond
	// hitLinger keeps decoded boxes on screen after a hit.
	hitLinger = 600 * time.Millisecond
)

// Typist queues decoded barcodes for the HID keyboard.
type Typist interface {
	Send(code string)
}

// Link reports whether a USB host is attached.
type Link interface {
	Connected() bool
}

// Options carries every dependency of the scanner, so tests can swap the
// hardware for stubs.
type Options struct {
	Config   config.Config
	Display  display.Display
	Ring     led.Ring
	Beeper   tone.Beeper
	Camera   camera.Source
	Events   <-chan input.Event
	Typist   Typist
	Link     Link
	KeyDelay func(time.Duration)
	// SendEnable gates the HID sender. It tracks the connection mode
	// setting, not the UDC state, so a suspended host keeps its queue.
	SendEnable func(bool)
	Power      Power
	Log        *zap.SugaredLogger
}

// Scanner is the appliance main loop.
type Scanner struct {
	cfg    config.Config
	disp   display.Display
	ring   led.Ring
	beeper tone.Beeper
	cam    camera.Source
	events <-chan input.Event
	typist Typist
	link   Link
	power  Power
	log    *zap.SugaredLogger

	keyDelay   func(time.Duration)
	sendEnable func(bool)
	decoder    *decode.Decoder
	supp       *decode.Suppressor
	jr         *journal.Journal
	store      *settings.Store
	tree       []settings.Setting
	targetW    *settings.Int
	targetH    *settings.Int
	menu       *ui.Menu
	ctrl       *ui.Controller
	renderer   *ui.Renderer

	mu        sync.Mutex
	frame     image.Image
	hits      []image.Rectangle
	hitsUntil time.Time
	snapshot  *image.RGBA
	muted     bool
	usbMode   bool
}

// New restores persisted settings, applies them to the hardware and builds
// the UI state machine.
func New(opts Options) (*Scanner, error) {
	renderer, err := ui.NewRenderer(opts.Config.GUI,
		opts.Config.Device.Display.Width, opts.Config.Device.Display.Height)
	if err != nil {
		return nil, fmt.Errorf("building renderer: %w", err)
	}

	s := &Scanner{
		cfg:        opts.Config,
		disp:       opts.Display,
		ring:       opts.Ring,
		beeper:     opts.Beeper,
		cam:        opts.Camera,
		events:     opts.Events,
		typist:     opts.Typist,
		link:       opts.Link,
		power:      opts.Power,
		log:        opts.Log,
		keyDelay:   opts.KeyDelay,
		sendEnable: opts.SendEnable,
		decoder:    decode.New(),
		supp:       decode.NewSuppressor(opts.Config.Scan.RepeatSuppression.Std()),
		jr:         journal.New(opts.Config.Scan.JournalSize),
		store:      settings.NewStore(opts.Config.SettingsPath, opts.Log),
		renderer:   renderer,
		usbMode:    true,
	}
	if s.keyDelay == nil {
		s.keyDelay = func(time.Duration) {}
	}
	if s.sendEnable == nil {
		s.sendEnable = func(bool) {}
	}

	s.buildTree()
	if err := s.store.Load(s.tree); err != nil {
		s.log.Warnw("Settings restore failed, using defaults", "error", err)
	}
	for _, item := range s.tree {
		item.Apply()
	}

	geom := decode.Geometry{
		DisplayW: opts.Config.Device.Display.Width,
		DisplayH: opts.Config.Device.Display.Height,
		Toolbar:  opts.Config.GUI.ToolbarHeight,
		TargetW:  s.targetW.Current,
		TargetH:  s.targetH.Current,
	}
	s.menu = ui.NewMenu(s.tree, s.saveSettings)
	s.ctrl = ui.NewController(geom, s.menu, s.persistGeometry, opts.Log)
	return s, nil
}

// Journal exposes the scan history for the remote view.
func (s *Scanner) Journal() *journal.Journal { return s.jr }

// Run is the main loop. It returns after ctx is cancelled and the display
// has been blanked.
func (s *Scanner) Run(ctx context.Context) error {
	s.play(tone.StartupChime)

	ticker := time.NewTicker(displayInterval)
	defer ticker.Stop()

	events := s.events
	frames := s.cam.Frames()
	for {
		select {
		case <-ctx.Done():
			s.blank()
			return nil
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			s.handleEvent(ev)
		case frame, ok := <-frames:
			if !ok {
				s.log.Errorw("Camera frame stream ended")
				frames = nil
				continue
			}
			s.handleFrame(frame)
		case <-ticker.C:
			s.composeFrame()
		}
	}
}

func (s *Scanner) handleEvent(ev input.Event) {
	before := s.ctrl.State()
	s.ctrl.Handle(ev)
	after := s.ctrl.State()
	if before == after {
		return
	}

	if after == ui.Scanning {
		if err := s.ring.Fill(255, 255, 255); err != nil {
			s.log.Warnw("Scan light failed", "error", err)
		}
	}
	if before == ui.Scanning {
		if err := s.ring.Off(); err != nil {
			s.log.Warnw("Scan light off failed", "error", err)
		}
	}
}

func (s *Scanner) handleFrame(frame image.Image) {
	s.mu.Lock()
	s.frame = frame
	s.mu.Unlock()

	if s.ctrl.State() != ui.Scanning {
		return
	}

	geom := s.ctrl.Geometry()
	region := geom.SensorRect(frame.Bounds())
	if region.Empty() {
		return
	}
	crop := decode.Crop(frame, region)

	results, err := s.decoder.Decode(crop)
	if err != nil {
		s.log.Debugw("Decode pass failed", "error", err)
		return
	}
	if len(results) == 0 {
		return
	}

	s.rememberHits(geom, frame.Bounds(), region, results)

	hit, ok := decode.Closest(results, crop.Bounds())
	if !ok {
		return
	}
	if !s.supp.Allow(hit.Text) {
		return
	}

	s.typist.Send(hit.Text)
	entry := s.jr.Record(hit.Text, hit.Format)
	s.play(tone.ScanConfirm)
	s.log.Infow("Barcode sent", "format", hit.Format, "length", len(hit.Text), "id", entry.ID)
}

// rememberHits projects decoded bounding boxes from crop coordinates back
// onto the display so the compositor can outline them.
func (s *Scanner) rememberHits(geom decode.Geometry, frame, region image.Rectangle, results []decode.Result) {
	vfHeight := geom.DisplayH - geom.Toolbar
	sx := float64(geom.DisplayW) / float64(frame.Dx())
	sy := float64(vfHeight) / float64(frame.Dy())

	boxes := make([]image.Rectangle, 0, len(results))
	for _, r := range results {
		sensor := r.Bounds.Add(region.Min)
		boxes = append(boxes, image.Rect(
			int(float64(sensor.Min.X)*sx),
			geom.Toolbar+int(float64(sensor.Min.Y)*sy),
			int(float64(sensor.Max.X)*sx),
			geom.Toolbar+int(float64(sensor.Max.Y)*sy),
		))
	}

	s.mu.Lock()
	s.hits = boxes
	s.hitsUntil = time.Now().Add(hitLinger)
	s.mu.Unlock()
}

func (s *Scanner) composeFrame() {
	state := s.ctrl.State()
	geom := s.ctrl.Geometry()

	s.mu.Lock()
	frame := s.frame
	var hits []image.Rectangle
	if time.Now().Before(s.hitsUntil) {
		hits = s.hits
	}
	s.mu.Unlock()

	view := ui.View{
		Camera:    frame,
		State:     state,
		USBMode:   s.usbModeOn(),
		Connected: s.link.Connected(),
		Hits:      hits,
	}
	if state == ui.Settings {
		view.Menu = s.menu.Lines(s.cfg.GUI.MenuItems)
		view.MenuCursor, view.MenuTotal = s.menu.Scroll()
	} else {
		view.Reticle = geom.DisplayRect()
	}

	start := time.Now()
	img := s.renderer.Compose(view)
	if err := s.disp.Draw(img); err != nil {
		s.log.Warnw("Display draw failed", "error", err)
	}
	metrics.DisplayFrameDuration.Observe(time.Since(start).Seconds())

	s.mu.Lock()
	s.snapshot = img
	s.mu.Unlock()
}

func (s *Scanner) blank() {
	if err := s.ring.Off(); err != nil {
		s.log.Debugw("Ring off failed", "error", err)
	}
	if err := s.disp.Fill(color.Black); err != nil {
		s.log.Debugw("Display blank failed", "error", err)
	}
}

// setConnectionMode switches between typing over USB and scan-only use.
// The sender gate follows the mode so queued codes are never thrown away
// just because the host briefly suspended the gadget.
func (s *Scanner) setConnectionMode(usb bool) {
	s.mu.Lock()
	s.usbMode = usb
	s.mu.Unlock()
	s.sendEnable(usb)
}

func (s *Scanner) usbModeOn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usbMode
}

func (s *Scanner) setMuted(m bool) {
	s.mu.Lock()
	s.muted = m
	s.mu.Unlock()
}

func (s *Scanner) play(seq []tone.Note) {
	s.mu.Lock()
	muted := s.muted
	s.mu.Unlock()
	if !muted {
		s.beeper.PlaySequence(seq)
	}
}

func (s *Scanner) saveSettings() {
	if err := s.store.Save(s.tree); err != nil {
		s.log.Errorw("Persisting settings failed", "error", err)
	}
}

func (s *Scanner) persistGeometry(g decode.Geometry) {
	s.targetW.Current = g.TargetW
	s.targetH.Current = g.TargetH
	s.saveSettings()
}

// Status implements the remote view status endpoint.
func (s *Scanner) Status() remoteview.Status {
	geom := s.ctrl.Geometry()
	return remoteview.Status{
		Version:   system.VersionString(),
		State:     s.ctrl.State().Label(),
		Connected: s.link.Connected(),
		TargetW:   geom.TargetW,
		TargetH:   geom.TargetH,
	}
}

// Snapshot returns the most recently composed display frame, nil before
// the first compose.
func (s *Scanner) Snapshot() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}
