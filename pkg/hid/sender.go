package hid

import (
	"context"

	"go.uber.org/zap"

	"github.com/optiscan/optiscan/pkg/metrics"
)

// Sender decouples the decode loop from HID typing: barcodes are queued and
// typed by a single goroutine so a slow host never delays scanning.
type Sender struct {
	kb      *Keyboard
	queue   chan string
	enabled func() bool
	log     *zap.SugaredLogger
}

// NewSender builds a sender. enabled gates actual typing; it is consulted at
// send time so switching the connection mode takes effect immediately.
func NewSender(kb *Keyboard, enabled func() bool, log *zap.SugaredLogger) *Sender {
	return &Sender{
		kb:      kb,
		queue:   make(chan string, 64),
		enabled: enabled,
		log:     log,
	}
}

// Send queues a barcode. The send never blocks; if the queue is full the
// barcode is dropped with a warning.
func (s *Sender) Send(code string) {
	select {
	case s.queue <- code:
	default:
		s.log.Warnw("HID send queue full, dropping barcode", "length", len(code))
	}
}

// Run consumes the queue until ctx is cancelled.
func (s *Sender) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case code := <-s.queue:
			if s.enabled != nil && !s.enabled() {
				continue
			}
			s.log.Debugw("Sending barcode over HID", "length", len(code))
			if err := s.kb.TypeLine(code); err != nil {
				// Host not polling or cable unplugged. The code is
				// lost; the operator just scans again.
				s.log.Errorw("Failed to type barcode", "error", err)
				continue
			}
			metrics.BarcodesSent.Inc()
		}
	}
}
