package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optiscan/optiscan/pkg/config"
)

func TestDefaultsStockWiring(t *testing.T) {
	var cfg config.Config
	cfg.Defaults()

	// Wiring from the assembly documentation.
	assert.Equal(t, 21, cfg.Device.LED.Pin)
	assert.Equal(t, 16, cfg.Device.LED.Count)
	assert.Equal(t, 19, cfg.Device.Buzzer.Pin)
	assert.Equal(t, 17, cfg.Device.Encoder.PinA)
	assert.Equal(t, 18, cfg.Device.Encoder.PinB)
	assert.Equal(t, 27, cfg.Device.Encoder.Button.Pin)
	assert.Equal(t, 20, cfg.Device.Trigger.Pin)

	assert.Equal(t, 240, cfg.Device.Display.Width)
	assert.Equal(t, 240, cfg.Device.Display.Height)
	assert.Equal(t, 180, cfg.Device.Display.Rotation)
	assert.Equal(t, 80, cfg.Device.Display.YOffset)

	assert.Equal(t, 1920, cfg.Device.Camera.Width)
	assert.Equal(t, 1080, cfg.Device.Camera.Height)

	assert.Equal(t, "3f980000.usb", cfg.HID.UDC)
	assert.Equal(t, "/dev/hidg0", cfg.HID.Path)

	assert.Equal(t, 20*time.Millisecond, cfg.Device.Encoder.Button.BounceTime.Std())
	assert.Equal(t, 500*time.Millisecond, cfg.Device.Encoder.Button.HoldTime.Std())

	require.NotNil(t, cfg.RemoteView.Enable)
	assert.True(t, *cfg.RemoteView.Enable)
	assert.Equal(t, 1500*time.Millisecond, cfg.Scan.RepeatSuppression.Std())
	assert.Equal(t, "settings.json", cfg.SettingsPath)
}

func TestDefaultsKeepExplicitValues(t *testing.T) {
	cfg := config.Config{}
	cfg.Device.Encoder.PinA = 5
	cfg.HID.UDC = "fe980000.usb"
	cfg.RemoteView.Enable = func(b bool) *bool { return &b }(false)
	cfg.Defaults()

	assert.Equal(t, 5, cfg.Device.Encoder.PinA)
	assert.Equal(t, "fe980000.usb", cfg.HID.UDC)
	assert.False(t, *cfg.RemoteView.Enable)
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		var cfg config.Config
		cfg.Defaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"defaults pass", func(*config.Config) {}, ""},
		{"bad pin", func(c *config.Config) { c.Device.Trigger.Pin = 99 }, "not a valid BCM pin"},
		{"bad rotation", func(c *config.Config) { c.Device.Display.Rotation = 45 }, "rotation"},
		{"bad port", func(c *config.Config) { c.RemoteView.Port = 70000 }, "port"},
		{"toolbar eats display", func(c *config.Config) { c.GUI.ToolbarHeight = 240 }, "toolbar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
