// Package camera captures frames from a V4L2 device and exposes the
// picture controls the settings menu adjusts.
package camera

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/vladimirvivien/go4vl/device"
	"github.com/vladimirvivien/go4vl/v4l2"
	"go.uber.org/zap"

	"github.com/optiscan/optiscan/pkg/config"
	"github.com/optiscan/optiscan/pkg/metrics"
)

// Control identifies a tunable picture parameter.
type Control int

const (
	Brightness Control = iota
	Contrast
	Saturation
	Sharpness
	Gain
	AutoExposure
	Exposure
)

func (c Control) String() string {
	switch c {
	case Brightness:
		return "brightness"
	case Contrast:
		return "contrast"
	case Saturation:
		return "saturation"
	case Sharpness:
		return "sharpness"
	case Gain:
		return "gain"
	case AutoExposure:
		return "auto-exposure"
	case Exposure:
		return "exposure"
	}
	return "unknown"
}

// V4L2 control IDs, per videodev2.h.
const (
	cidBrightness       v4l2.CtrlID = 0x00980900
	cidContrast         v4l2.CtrlID = 0x00980901
	cidSaturation       v4l2.CtrlID = 0x00980902
	cidGain             v4l2.CtrlID = 0x00980913
	cidSharpness        v4l2.CtrlID = 0x0098091b
	cidExposureAuto     v4l2.CtrlID = 0x009a0901
	cidExposureAbsolute v4l2.CtrlID = 0x009a0902
)

// exposureAuto values for V4L2_CID_EXPOSURE_AUTO.
const (
	exposureAutoOn     = 3 // aperture priority
	exposureAutoManual = 1
)

func (c Control) cid() v4l2.CtrlID {
	switch c {
	case Brightness:
		return cidBrightness
	case Contrast:
		return cidContrast
	case Saturation:
		return cidSaturation
	case Sharpness:
		return cidSharpness
	case Gain:
		return cidGain
	case AutoExposure:
		return cidExposureAuto
	case Exposure:
		return cidExposureAbsolute
	}
	return 0
}

// Source delivers decoded frames. Implementations drop frames when the
// consumer lags, the channel never backs up into the capture path.
type Source interface {
	Frames() <-chan image.Image
	Set(ctrl Control, value int32) error
	Close() error
}

// V4L2Source streams MJPEG from a video device and decodes each frame.
type V4L2Source struct {
	dev    *device.Device
	frames chan image.Image
	cancel context.CancelFunc
	log    *zap.SugaredLogger
}

// Open configures the device for MJPEG capture at the requested size.
func Open(cfg config.Camera, log *zap.SugaredLogger) (*V4L2Source, error) {
	dev, err := device.Open(cfg.Device,
		device.WithPixFormat(v4l2.PixFormat{
			PixelFormat: v4l2.PixelFmtMJPEG,
			Width:       uint32(cfg.Width),
			Height:      uint32(cfg.Height),
		}),
		device.WithBufferSize(2),
	)
	if err != nil {
		return nil, fmt.Errorf("opening camera %s: %w", cfg.Device, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := dev.Start(ctx); err != nil {
		cancel()
		_ = dev.Close()
		return nil, fmt.Errorf("starting capture on %s: %w", cfg.Device, err)
	}

	s := &V4L2Source{
		dev:    dev,
		frames: make(chan image.Image, 1),
		cancel: cancel,
		log:    log,
	}
	go s.pump(ctx)
	log.Infow("Camera streaming", "device", cfg.Device, "width", cfg.Width, "height", cfg.Height)
	return s, nil
}

func (s *V4L2Source) pump(ctx context.Context) {
	defer close(s.frames)
	for {
		select {
		case <-ctx.Done():
			return
		case buf, ok := <-s.dev.GetOutput():
			if !ok {
				return
			}
			img, err := jpeg.Decode(bytes.NewReader(buf))
			if err != nil {
				s.log.Debugw("Dropping undecodable frame", "error", err)
				continue
			}
			metrics.FramesCaptured.Inc()
			select {
			case s.frames <- img:
			default:
				// Consumer is busy, skip this frame.
			}
		}
	}
}

// Frames returns the decoded frame stream. The channel closes on Close.
func (s *V4L2Source) Frames() <-chan image.Image {
	return s.frames
}

// Set applies a picture control. AutoExposure takes 0 or 1 and maps to the
// driver's manual/aperture-priority modes.
func (s *V4L2Source) Set(ctrl Control, value int32) error {
	cid := ctrl.cid()
	if cid == 0 {
		return fmt.Errorf("unknown camera control %d", ctrl)
	}
	if ctrl == AutoExposure {
		if value != 0 {
			value = exposureAutoOn
		} else {
			value = exposureAutoManual
		}
	}
	if err := s.dev.SetControlValue(cid, v4l2.CtrlValue(value)); err != nil {
		return fmt.Errorf("setting %s: %w", ctrl, err)
	}
	s.log.Debugw("Camera control set", "control", ctrl.String(), "value", value)
	return nil
}

// Close stops streaming and releases the device.
func (s *V4L2Source) Close() error {
	s.cancel()
	return s.dev.Close()
}
