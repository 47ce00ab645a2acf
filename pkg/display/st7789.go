package display

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

// ST7789 command set, the subset the panel init and blitting need.
const (
	cmdSWRESET = 0x01
	cmdSLPOUT  = 0x11
	cmdNORON   = 0x13
	cmdINVON   = 0x21
	cmdDISPON  = 0x29
	cmdCASET   = 0x2a
	cmdRASET   = 0x2b
	cmdRAMWR   = 0x2c
	cmdMADCTL  = 0x36
	cmdCOLMOD  = 0x3a
)

// spiChunk keeps transfers under the kernel's default spidev buffer size.
const spiChunk = 4096

// ST7789Config mirrors the display section of the config file.
type ST7789Config struct {
	Port     string
	DCPin    int
	ResetPin int
	Width    int
	Height   int
	Rotation int
	Baudrate int
	XOffset  int
	YOffset  int
}

// ST7789 drives the SPI LCD. All drawing goes through full-frame RGB565
// blits.
type ST7789 struct {
	port   spi.PortCloser
	conn   spi.Conn
	dc     gpio.PinOut
	reset  gpio.PinOut
	cfg    ST7789Config
	buf    *image.RGBA
	log    *zap.SugaredLogger
	closed bool
}

// NewST7789 opens the SPI port, claims the control pins and runs the panel
// init sequence. periph's host driver must already be initialized.
func NewST7789(cfg ST7789Config, log *zap.SugaredLogger) (*ST7789, error) {
	port, err := spireg.Open(cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("opening SPI port %s: %w", cfg.Port, err)
	}

	conn, err := port.Connect(physic.Frequency(cfg.Baudrate)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("connecting SPI port %s: %w", cfg.Port, err)
	}

	dc := gpioreg.ByName(fmt.Sprintf("GPIO%d", cfg.DCPin))
	if dc == nil {
		port.Close()
		return nil, fmt.Errorf("display DC pin GPIO%d not found", cfg.DCPin)
	}
	reset := gpioreg.ByName(fmt.Sprintf("GPIO%d", cfg.ResetPin))
	if reset == nil {
		port.Close()
		return nil, fmt.Errorf("display reset pin GPIO%d not found", cfg.ResetPin)
	}

	d := &ST7789{
		port:  port,
		conn:  conn,
		dc:    dc,
		reset: reset,
		cfg:   cfg,
		buf:   image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height)),
		log:   log,
	}
	if err := d.init(); err != nil {
		port.Close()
		return nil, err
	}
	log.Debugw("Display initialized", "port", cfg.Port, "size",
		fmt.Sprintf("%dx%d", cfg.Width, cfg.Height), "rotation", cfg.Rotation)
	return d, nil
}

func (d *ST7789) init() error {
	if err := d.hardReset(); err != nil {
		return err
	}

	madctl := byte(0x00)
	switch d.cfg.Rotation {
	case 90:
		madctl = 0x60
	case 180:
		madctl = 0xc0
	case 270:
		madctl = 0xa0
	}

	steps := []struct {
		cmd   byte
		data  []byte
		delay time.Duration
	}{
		{cmd: cmdSWRESET, delay: 150 * time.Millisecond},
		{cmd: cmdSLPOUT, delay: 120 * time.Millisecond},
		{cmd: cmdCOLMOD, data: []byte{0x55}}, // 16bpp
		{cmd: cmdMADCTL, data: []byte{madctl}},
		{cmd: cmdINVON},
		{cmd: cmdNORON, delay: 10 * time.Millisecond},
		{cmd: cmdDISPON, delay: 10 * time.Millisecond},
	}
	for _, s := range steps {
		if err := d.command(s.cmd, s.data...); err != nil {
			return err
		}
		if s.delay > 0 {
			time.Sleep(s.delay)
		}
	}
	return nil
}

func (d *ST7789) hardReset() error {
	for _, level := range []gpio.Level{gpio.High, gpio.Low, gpio.High} {
		if err := d.reset.Out(level); err != nil {
			return fmt.Errorf("toggling display reset: %w", err)
		}
		time.Sleep(50 * time.Millisecond)
	}
	return nil
}

func (d *ST7789) command(cmd byte, data ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return fmt.Errorf("setting DC low: %w", err)
	}
	if err := d.conn.Tx([]byte{cmd}, nil); err != nil {
		return fmt.Errorf("sending command %#02x: %w", cmd, err)
	}
	if len(data) == 0 {
		return nil
	}
	return d.data(data)
}

func (d *ST7789) data(data []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return fmt.Errorf("setting DC high: %w", err)
	}
	for len(data) > 0 {
		n := len(data)
		if n > spiChunk {
			n = spiChunk
		}
		if err := d.conn.Tx(data[:n], nil); err != nil {
			return fmt.Errorf("sending pixel data: %w", err)
		}
		data = data[n:]
	}
	return nil
}

func (d *ST7789) setWindow() error {
	x0 := d.cfg.XOffset
	x1 := d.cfg.XOffset + d.cfg.Width - 1
	y0 := d.cfg.YOffset
	y1 := d.cfg.YOffset + d.cfg.Height - 1

	if err := d.command(cmdCASET, byte(x0>>8), byte(x0), byte(x1>>8), byte(x1)); err != nil {
		return err
	}
	return d.command(cmdRASET, byte(y0>>8), byte(y0), byte(y1>>8), byte(y1))
}

func (d *ST7789) Size() (int, int) { return d.cfg.Width, d.cfg.Height }

func (d *ST7789) Draw(img image.Image) error {
	draw.Draw(d.buf, d.buf.Bounds(), img, img.Bounds().Min, draw.Src)
	if err := d.setWindow(); err != nil {
		return err
	}
	if err := d.command(cmdRAMWR); err != nil {
		return err
	}
	return d.data(RGB565(d.buf))
}

func (d *ST7789) Fill(c color.Color) error {
	return d.Draw(image.NewUniform(c))
}

func (d *ST7789) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.port.Close()
}
