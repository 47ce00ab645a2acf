package hid

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/optiscan/optiscan/pkg/metrics"
)

// reportLen is the boot keyboard report size: modifier, reserved, six keys.
const reportLen = 8

// Keyboard types characters through a USB HID gadget device by emitting
// press and release reports.
type Keyboard struct {
	dev   io.Writer
	delay atomic.Int64 // inter-key delay in nanoseconds
	log   *zap.SugaredLogger
}

// Open opens the gadget character device, usually /dev/hidg0. The device
// node only exists once the HID gadget driver is configured.
func Open(path string, log *zap.SugaredLogger) (*Keyboard, error) {
	dev, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("opening HID gadget %s (is the gadget module configured?): %w", path, err)
	}
	return NewKeyboard(dev, log), nil
}

// NewKeyboard wraps an already opened report writer. Tests pass a buffer.
func NewKeyboard(dev io.Writer, log *zap.SugaredLogger) *Keyboard {
	return &Keyboard{dev: dev, log: log}
}

// SetDelay sets the pause between key strokes. Some hosts drop reports when
// typed at full speed; the settings menu exposes this.
func (k *Keyboard) SetDelay(d time.Duration) {
	k.delay.Store(int64(d))
}

func (k *Keyboard) writeReport(report [reportLen]byte) error {
	if s, ok := k.dev.(io.Seeker); ok {
		if _, err := s.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("seeking HID gadget: %w", err)
		}
	}
	if _, err := k.dev.Write(report[:]); err != nil {
		metrics.HIDWriteErrors.Inc()
		return fmt.Errorf("writing HID report: %w", err)
	}
	return nil
}

func (k *Keyboard) press(s Stroke) error {
	if err := k.writeReport([reportLen]byte{s.Mod, 0, s.Code}); err != nil {
		return err
	}
	return k.writeReport([reportLen]byte{})
}

// Type emits the string as key strokes. Characters without a mapping are
// skipped and counted; the rest of the string is still typed.
func (k *Keyboard) Type(text string) error {
	delay := time.Duration(k.delay.Load())
	for _, r := range text {
		stroke, ok := StrokeFor(r)
		if !ok {
			metrics.HIDUnsupportedRunes.Inc()
			k.log.Debugw("No keyboard mapping for character, skipping", "char", string(r))
			continue
		}
		if err := k.press(stroke); err != nil {
			return err
		}
		if delay > 0 {
			time.Sleep(delay)
		}
	}
	return nil
}

// TypeLine types the string followed by Enter, the way hardware scanners
// terminate a code.
func (k *Keyboard) TypeLine(text string) error {
	if err := k.Type(text); err != nil {
		return err
	}
	return k.press(Stroke{ModNone, KeyEnter})
}

// Close closes the underlying device when it is closable.
func (k *Keyboard) Close() error {
	if c, ok := k.dev.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
