package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// EnvConfigPath overrides the config file location when set.
const EnvConfigPath = "OPTISCAN_CONFIG_PATH"

// Duration wraps time.Duration so YAML values can be written as "50ms"
// instead of raw nanoseconds. Bare integers are still accepted.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var n int64
	if err := unmarshal(&n); err == nil {
		*d = Duration(n)
		return nil
	}
	var s string
	if err := unmarshal(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"50ms\" or an integer")
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std converts to the standard library type.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// DefaultPath is used when neither a flag nor the environment provide a path.
const DefaultPath = "config.yml"

// Encoder describes the rotary encoder wiring and its push button.
type Encoder struct {
	PinA   int           `yaml:"pin_a"`
	PinB   int           `yaml:"pin_b"`
	Button EncoderButton `yaml:"button"`
}

type EncoderButton struct {
	Pin        int      `yaml:"pin"`
	BounceTime Duration `yaml:"bounce_time"`
	HoldTime   Duration `yaml:"hold_time"`
	PullUp     *bool    `yaml:"pull_up"`
}

// Trigger is the dedicated scan button on the grip.
type Trigger struct {
	Pin        int      `yaml:"pin"`
	BounceTime Duration `yaml:"bounce_time"`
	PullUp     *bool    `yaml:"pull_up"`
}

type LED struct {
	Pin   int `yaml:"pin"`
	Count int `yaml:"count"`
}

type Buzzer struct {
	Pin int `yaml:"pin"`
}

// Display describes the SPI LCD. Offsets and rotation follow the panel
// variant; the stock build is a 240x240 ST7789 rotated 180 degrees with an
// 80 pixel row offset.
type Display struct {
	Port     string `yaml:"port"`
	DCPin    int    `yaml:"dc"`
	ResetPin int    `yaml:"reset"`
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Rotation int    `yaml:"rotation"`
	Baudrate int    `yaml:"baudrate"`
	XOffset  int    `yaml:"x_offset"`
	YOffset  int    `yaml:"y_offset"`
}

type Camera struct {
	Device string `yaml:"device"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	FPS    int    `yaml:"fps"`
}

type Device struct {
	LED     LED     `yaml:"led"`
	Buzzer  Buzzer  `yaml:"buzzer"`
	Display Display `yaml:"display"`
	Encoder Encoder `yaml:"encoder"`
	Trigger Trigger `yaml:"trigger"`
	Camera  Camera  `yaml:"camera"`
}

// HID configures the USB keyboard gadget. UDC is the device controller
// address under /sys/class/udc; the default only matches Pi Zero class
// hardware, other boards must set it explicitly.
type HID struct {
	UDC   string   `yaml:"udc"`
	Path  string   `yaml:"path"`
	Delay Duration `yaml:"delay"`
}

type GUI struct {
	ToolbarHeight int `yaml:"toolbar_height"`
	MenuItems     int `yaml:"menu_items"`
	ToolbarFont   int `yaml:"toolbar_font_size"`
	RegularFont   int `yaml:"regular_font_size"`
}

// RemoteView configures the diagnostic HTTP server that mirrors the LCD.
type RemoteView struct {
	Enable *bool  `yaml:"enable"`
	Bind   string `yaml:"bind"`
	Port   int    `yaml:"port"`
	Token  string `yaml:"token"`
}

type Scan struct {
	// RepeatSuppression is how long an identical decode is ignored after
	// being sent, so a barcode held under the camera types once.
	RepeatSuppression Duration `yaml:"repeat_suppression"`
	JournalSize       int      `yaml:"journal_size"`
}

type Config struct {
	Device       Device     `yaml:"device"`
	HID          HID        `yaml:"hid"`
	GUI          GUI        `yaml:"gui"`
	RemoteView   RemoteView `yaml:"remoteview"`
	Scan         Scan       `yaml:"scan"`
	SettingsPath string     `yaml:"settings_path"`
}

// Load reads the scanner configuration from a file path. If configPath is
// empty, the OPTISCAN_CONFIG_PATH environment variable is consulted, then
// the default "config.yml".
func Load(configPath ...string) (Config, error) {
	var path string
	if len(configPath) > 0 && configPath[0] != "" {
		path = configPath[0]
	} else if env := os.Getenv(EnvConfigPath); env != "" {
		path = env
	} else {
		path = DefaultPath
	}

	var config Config

	content, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("trying to open scanner config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(content, &config); err != nil {
		return config, fmt.Errorf("unmarshaling YAML %s: %w", path, err)
	}
	return config, nil
}

func boolPtr(v bool) *bool { return &v }

// Defaults fills unset fields with the stock hardware wiring and panel
// geometry. Values mirror the assembly documentation.
func (c *Config) Defaults() {
	if c.Device.LED.Pin == 0 {
		c.Device.LED.Pin = 21
	}
	if c.Device.LED.Count == 0 {
		c.Device.LED.Count = 16
	}
	if c.Device.Buzzer.Pin == 0 {
		c.Device.Buzzer.Pin = 19
	}

	d := &c.Device.Display
	if d.Port == "" {
		d.Port = "SPI0.0"
	}
	if d.DCPin == 0 {
		d.DCPin = 25
	}
	if d.ResetPin == 0 {
		d.ResetPin = 24
	}
	if d.Width == 0 {
		d.Width = 240
	}
	if d.Height == 0 {
		d.Height = 240
	}
	if d.Rotation == 0 {
		d.Rotation = 180
	}
	if d.Baudrate == 0 {
		d.Baudrate = 60000000
	}
	if d.YOffset == 0 {
		d.YOffset = 80
	}

	e := &c.Device.Encoder
	if e.PinA == 0 {
		e.PinA = 17
	}
	if e.PinB == 0 {
		e.PinB = 18
	}
	if e.Button.Pin == 0 {
		e.Button.Pin = 27
	}
	if e.Button.BounceTime == 0 {
		e.Button.BounceTime = Duration(20 * time.Millisecond)
	}
	if e.Button.HoldTime == 0 {
		e.Button.HoldTime = Duration(500 * time.Millisecond)
	}
	if e.Button.PullUp == nil {
		e.Button.PullUp = boolPtr(true)
	}

	t := &c.Device.Trigger
	if t.Pin == 0 {
		t.Pin = 20
	}
	if t.BounceTime == 0 {
		t.BounceTime = Duration(20 * time.Millisecond)
	}
	if t.PullUp == nil {
		t.PullUp = boolPtr(true)
	}

	cam := &c.Device.Camera
	if cam.Device == "" {
		cam.Device = "/dev/video0"
	}
	if cam.Width == 0 {
		cam.Width = 1920
	}
	if cam.Height == 0 {
		cam.Height = 1080
	}
	if cam.FPS == 0 {
		cam.FPS = 30
	}

	if c.HID.UDC == "" {
		c.HID.UDC = "3f980000.usb"
	}
	if c.HID.Path == "" {
		c.HID.Path = "/dev/hidg0"
	}

	if c.GUI.ToolbarHeight == 0 {
		c.GUI.ToolbarHeight = 30
	}
	if c.GUI.MenuItems == 0 {
		c.GUI.MenuItems = 3
	}
	if c.GUI.ToolbarFont == 0 {
		c.GUI.ToolbarFont = 10
	}
	if c.GUI.RegularFont == 0 {
		c.GUI.RegularFont = 18
	}

	if c.RemoteView.Enable == nil {
		c.RemoteView.Enable = boolPtr(true)
	}
	if c.RemoteView.Bind == "" {
		c.RemoteView.Bind = "0.0.0.0"
	}
	if c.RemoteView.Port == 0 {
		c.RemoteView.Port = 8420
	}

	if c.Scan.RepeatSuppression == 0 {
		c.Scan.RepeatSuppression = Duration(1500 * time.Millisecond)
	}
	if c.Scan.JournalSize == 0 {
		c.Scan.JournalSize = 50
	}

	if c.SettingsPath == "" {
		c.SettingsPath = "settings.json"
	}
}

func validPin(pin int) bool {
	// BCM pin numbering on the 40-pin header.
	return pin >= 0 && pin <= 27
}

// Validate checks for configurations that cannot possibly drive the
// hardware. It is called after Defaults, so zero values have been resolved.
func (c *Config) Validate() error {
	for name, pin := range map[string]int{
		"device.led.pin":            c.Device.LED.Pin,
		"device.buzzer.pin":         c.Device.Buzzer.Pin,
		"device.encoder.pin_a":      c.Device.Encoder.PinA,
		"device.encoder.pin_b":      c.Device.Encoder.PinB,
		"device.encoder.button.pin": c.Device.Encoder.Button.Pin,
		"device.trigger.pin":        c.Device.Trigger.Pin,
	} {
		if !validPin(pin) {
			return fmt.Errorf("%s: GPIO %d is not a valid BCM pin", name, pin)
		}
	}

	if c.Device.Display.Width <= 0 || c.Device.Display.Height <= 0 {
		return fmt.Errorf("display geometry %dx%d is invalid",
			c.Device.Display.Width, c.Device.Display.Height)
	}
	switch c.Device.Display.Rotation {
	case 0, 90, 180, 270:
	default:
		return fmt.Errorf("display rotation %d: must be 0, 90, 180 or 270", c.Device.Display.Rotation)
	}

	if c.RemoteView.Port < 1 || c.RemoteView.Port > 65535 {
		return fmt.Errorf("remoteview port %d out of range", c.RemoteView.Port)
	}

	if c.GUI.ToolbarHeight >= c.Device.Display.Height {
		return fmt.Errorf("toolbar height %d leaves no room for the viewfinder", c.GUI.ToolbarHeight)
	}
	return nil
}
