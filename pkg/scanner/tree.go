package scanner

import (
	"time"

	"github.com/optiscan/optiscan/pkg/camera"
	"github.com/optiscan/optiscan/pkg/settings"
)

// buildTree assembles the on-device settings menu. Every leaf pushes its
// value into the owning subsystem through its apply callback, so restoring
// the settings file at boot is a plain tree-wide Apply.
func (s *Scanner) buildTree() {
	setCam := func(ctrl camera.Control) func(int) {
		return func(v int) {
			if err := s.cam.Set(ctrl, int32(v)); err != nil {
				s.log.Warnw("Camera control rejected", "control", ctrl.String(), "value", v, "error", err)
			}
		}
	}

	conn := &settings.Option{Key: "connection", Label: "Connection", Options: []string{"USB", "NONE"}, Default: "USB", Current: "USB",
		OnApply: func(v string) { s.setConnectionMode(v == "USB") }}

	cam := &settings.Group{Key: "camera", Label: "Camera", Children: []settings.Setting{
		&settings.Int{Key: "camera.brightness", Label: "Brightness", Min: 0, Max: 100, Default: 50, Current: 50, OnApply: setCam(camera.Brightness)},
		&settings.Int{Key: "camera.contrast", Label: "Contrast", Min: 0, Max: 100, Default: 50, Current: 50, OnApply: setCam(camera.Contrast)},
		&settings.Int{Key: "camera.saturation", Label: "Saturation", Min: 0, Max: 100, Default: 50, Current: 50, OnApply: setCam(camera.Saturation)},
		&settings.Int{Key: "camera.sharpness", Label: "Sharpness", Min: 0, Max: 100, Default: 50, Current: 50, OnApply: setCam(camera.Sharpness)},
		&settings.Int{Key: "camera.gain", Label: "Gain", Min: 0, Max: 100, Default: 0, Current: 0, OnApply: setCam(camera.Gain)},
		&settings.Option{Key: "camera.auto_exposure", Label: "Auto Exp", Options: []string{"on", "off"}, Default: "on", Current: "on",
			OnApply: func(v string) {
				auto := int32(0)
				if v == "on" {
					auto = 1
				}
				if err := s.cam.Set(camera.AutoExposure, auto); err != nil {
					s.log.Warnw("Camera control rejected", "control", "auto-exposure", "error", err)
				}
			}},
		&settings.Int{Key: "camera.exposure", Label: "Exposure", Min: 10, Max: 5000, Default: 500, Current: 500, StepSize: 10, OnApply: setCam(camera.Exposure)},
	}}

	led := &settings.Group{Key: "led", Label: "Light", Children: []settings.Setting{
		&settings.Float{Key: "led.brightness", Label: "Level", Min: 0, Max: 1, Default: 0.2, Current: 0.2, StepSize: 0.05, Precision: 2,
			OnApply: func(v float64) { s.ring.SetBrightness(v) }},
	}}

	sound := &settings.Group{Key: "sound", Label: "Sound", Children: []settings.Setting{
		&settings.Option{Key: "sound.enable", Label: "Beep", Options: []string{"on", "off"}, Default: "on", Current: "on",
			OnApply: func(v string) { s.setMuted(v == "off") }},
	}}

	// The reticle stays between a sixth and five sixths of the viewfinder,
	// matching the clamp in the adjustment states.
	width := s.cfg.Device.Display.Width
	vf := s.cfg.Device.Display.Height - s.cfg.GUI.ToolbarHeight
	s.targetW = &settings.Int{Key: "target.width", Label: "Width", Min: width / 6, Max: width * 5 / 6,
		Default: 120, Current: 120, StepSize: 5, Suffix: "px", OnApply: func(int) { s.applyTarget() }}
	s.targetH = &settings.Int{Key: "target.height", Label: "Height", Min: vf / 6, Max: vf * 5 / 6,
		Default: 80, Current: 80, StepSize: 5, Suffix: "px", OnApply: func(int) { s.applyTarget() }}
	target := &settings.Group{Key: "target", Label: "Target", Children: []settings.Setting{s.targetW, s.targetH}}

	keyboard := &settings.Group{Key: "keyboard", Label: "Keyboard", Children: []settings.Setting{
		&settings.Int{Key: "keyboard.delay", Label: "Key Delay", Min: 0, Max: 100, Default: 0, Current: 0, StepSize: 5, Suffix: "ms",
			OnApply: func(v int) { s.keyDelay(time.Duration(v) * time.Millisecond) }},
	}}

	shutdown := &settings.Action{Key: "shutdown", Label: "Shutdown", OnInvoke: func() {
		go func() {
			if err := s.power.Shutdown(); err != nil {
				s.log.Errorw("Shutdown failed", "error", err)
			}
		}()
	}}

	s.tree = []settings.Setting{conn, cam, led, sound, target, keyboard, shutdown}
}

// applyTarget pushes the persisted reticle size into the state machine.
// During boot the controller does not exist yet, its initial geometry is
// built from the same values afterwards.
func (s *Scanner) applyTarget() {
	if s.ctrl != nil {
		s.ctrl.SetTarget(s.targetW.Current, s.targetH.Current)
	}
}
