package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"sync/atomic"
	"syscall"

	"go.uber.org/zap"
	"periph.io/x/host/v3"

	"github.com/optiscan/optiscan/pkg/camera"
	"github.com/optiscan/optiscan/pkg/config"
	"github.com/optiscan/optiscan/pkg/display"
	"github.com/optiscan/optiscan/pkg/hid"
	"github.com/optiscan/optiscan/pkg/input"
	"github.com/optiscan/optiscan/pkg/led"
	"github.com/optiscan/optiscan/pkg/remoteview"
	"github.com/optiscan/optiscan/pkg/scanner"
	"github.com/optiscan/optiscan/pkg/system"
	"github.com/optiscan/optiscan/pkg/tone"
)

// ledPort maps the configured data pin to the SPI port whose MOSI drives
// the ring. The display owns SPI0, so stock wiring puts the ring on SPI1.
func ledPort(pin int) (string, error) {
	switch pin {
	case 10:
		return "SPI0.0", nil
	case 19, 20, 21:
		return "SPI1.0", nil
	}
	return "", fmt.Errorf("LED pin GPIO%d is not an SPI data pin", pin)
}

// run wires the hardware and blocks until a signal arrives.
func run(parent context.Context, configPath string, verbose bool, log *zap.SugaredLogger) error {
	log.Infow("Starting optiscan", "version", system.VersionString())

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if verbose {
		log.Debugf("config: %#v", cfg)
	}

	if _, err := host.Init(); err != nil {
		log.Warnw("Peripheral host init failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Every peripheral degrades individually: a unit with a broken display
	// still types barcodes, a unit with a dead gadget port still shows the
	// viewfinder. Only a bad config aborts startup.
	var disp display.Display
	st, err := display.NewST7789(display.ST7789Config{
		Port:     cfg.Device.Display.Port,
		DCPin:    cfg.Device.Display.DCPin,
		ResetPin: cfg.Device.Display.ResetPin,
		Width:    cfg.Device.Display.Width,
		Height:   cfg.Device.Display.Height,
		Rotation: cfg.Device.Display.Rotation,
		Baudrate: cfg.Device.Display.Baudrate,
		XOffset:  cfg.Device.Display.XOffset,
		YOffset:  cfg.Device.Display.YOffset,
	}, log)
	if err != nil {
		log.Warnw("Display unavailable, running headless", "error", err)
		disp = display.NewMemory(cfg.Device.Display.Width, cfg.Device.Display.Height)
	} else {
		disp = st
	}
	defer disp.Close()

	var cam camera.Source
	if v4l, err := camera.Open(cfg.Device.Camera, log); err != nil {
		log.Warnw("Camera unavailable, scanning disabled", "error", err)
		cam = camera.NewStub()
	} else {
		cam = v4l
	}
	defer cam.Close()

	var ring led.Ring = led.Null{}
	if port, err := ledPort(cfg.Device.LED.Pin); err != nil {
		log.Warnw("LED ring disabled", "error", err)
	} else if ws, err := led.NewWS2812(port, cfg.Device.LED.Count, log); err != nil {
		log.Warnw("LED ring disabled", "error", err)
	} else {
		ring = ws
	}
	defer ring.Close()

	var beeper tone.Beeper = tone.Silent{}
	if player, err := tone.NewPlayer(cfg.Device.Buzzer.Pin, log); err != nil {
		log.Warnw("Buzzer disabled", "error", err)
	} else {
		beeper = player
		go player.Run(ctx)
	}

	kb, err := hid.Open(cfg.HID.Path, log)
	if err != nil {
		log.Warnw("HID gadget unavailable, barcodes will not be typed", "error", err)
		kb = hid.NewKeyboard(io.Discard, log)
	}
	defer kb.Close()
	kb.SetDelay(cfg.HID.Delay.Std())

	udc := hid.NewUDCMonitor(cfg.HID.UDC, log)
	go udc.Run(ctx)

	// The sender is gated by the connection mode setting, not the UDC
	// state: a host that briefly suspends the gadget must not cost the
	// operator their queued scans.
	usbMode := &atomic.Bool{}
	usbMode.Store(true)
	sender := hid.NewSender(kb, usbMode.Load, log)
	go sender.Run(ctx)

	var events <-chan input.Event
	inputs, err := input.New(cfg.Device.Encoder, cfg.Device.Trigger, log)
	if err != nil {
		log.Warnw("Input pins unavailable, controls disabled", "error", err)
	} else {
		go inputs.Run(ctx)
		events = inputs.Events()
	}

	s, err := scanner.New(scanner.Options{
		Config:     cfg,
		Display:    disp,
		Ring:       ring,
		Beeper:     beeper,
		Camera:     cam,
		Events:     events,
		Typist:     sender,
		Link:       udc,
		KeyDelay:   kb.SetDelay,
		SendEnable: func(usb bool) { usbMode.Store(usb) },
		Power:      scanner.SystemPower{Log: log},
		Log:        log,
	})
	if err != nil {
		return fmt.Errorf("building scanner: %w", err)
	}

	if cfg.RemoteView.Enable != nil && *cfg.RemoteView.Enable {
		server := remoteview.NewServer(cfg.RemoteView, s, s.Journal(), log.Desugar(), verbose)
		go func() {
			if err := server.Run(ctx); err != nil {
				log.Errorw("Remote view stopped", "error", err)
			}
		}()
	}

	err = s.Run(ctx)
	log.Infow("Shut down")
	return err
}
