package led

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

// Ring is the illumination LED ring around the camera.
type Ring interface {
	// SetBrightness scales all channels, 0..1.
	SetBrightness(v float64)
	// Fill sets every pixel to the same color and shows it.
	Fill(r, g, b uint8) error
	// Off blanks the ring.
	Off() error
	Close() error
}

// WS2812 drives the ring by shaping the one-wire protocol as SPI bits:
// each data bit becomes three SPI bits (100 or 110) at 2.4 MHz.
type WS2812 struct {
	mu         sync.Mutex
	port       spi.PortCloser
	conn       spi.Conn
	count      int
	brightness float64
	r, g, b    uint8
	log        *zap.SugaredLogger
}

// NewWS2812 opens the SPI port for the ring. count is the number of pixels.
func NewWS2812(portName string, count int, log *zap.SugaredLogger) (*WS2812, error) {
	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("opening LED SPI port %s: %w", portName, err)
	}
	conn, err := port.Connect(2400*physic.KiloHertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("connecting LED SPI port %s: %w", portName, err)
	}
	return &WS2812{
		port:       port,
		conn:       conn,
		count:      count,
		brightness: 0.2,
		log:        log,
	}, nil
}

func (w *WS2812) SetBrightness(v float64) {
	w.mu.Lock()
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	w.brightness = v
	r, g, b := w.r, w.g, w.b
	w.mu.Unlock()
	// Re-show the current color at the new brightness.
	_ = w.Fill(r, g, b)
}

func (w *WS2812) Fill(r, g, b uint8) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.r, w.g, w.b = r, g, b

	sr := scale(r, w.brightness)
	sg := scale(g, w.brightness)
	sb := scale(b, w.brightness)

	// WS2812 wants GRB order.
	pixel := append(append(encodeByte(sg), encodeByte(sr)...), encodeByte(sb)...)
	buf := make([]byte, 0, len(pixel)*w.count)
	for i := 0; i < w.count; i++ {
		buf = append(buf, pixel...)
	}
	if err := w.conn.Tx(buf, nil); err != nil {
		return fmt.Errorf("writing LED data: %w", err)
	}
	// Latch: the line must stay low for >50us.
	time.Sleep(100 * time.Microsecond)
	return nil
}

func (w *WS2812) Off() error {
	return w.Fill(0, 0, 0)
}

func (w *WS2812) Close() error {
	_ = w.Off()
	return w.port.Close()
}

func scale(v uint8, brightness float64) uint8 {
	return uint8(float64(v)*brightness + 0.5)
}

// encodeByte expands one color byte into 24 SPI bits, MSB first: a WS2812
// zero is 100, a one is 110.
func encodeByte(v uint8) []byte {
	var bits uint32
	for i := 7; i >= 0; i-- {
		bits <<= 3
		if v&(1<<i) != 0 {
			bits |= 0b110
		} else {
			bits |= 0b100
		}
	}
	return []byte{byte(bits >> 16), byte(bits >> 8), byte(bits)}
}

// Null is a Ring that does nothing, for tests and headless development.
type Null struct{}

func (Null) SetBrightness(float64)    {}
func (Null) Fill(_, _, _ uint8) error { return nil }
func (Null) Off() error               { return nil }
func (Null) Close() error             { return nil }
