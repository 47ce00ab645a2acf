package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/optiscan/optiscan/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		expectError bool
		check       func(t *testing.T, cfg config.Config)
	}{
		{
			name: "full config",
			content: `
device:
  encoder:
    pin_a: 5
    pin_b: 6
    button:
      pin: 13
      hold_time: 1s
  trigger:
    pin: 26
  camera:
    width: 1280
    height: 720
hid:
  udc: "fe980000.usb"
  path: "/dev/hidg1"
gui:
  toolbar_height: 24
remoteview:
  port: 9000
  token: "sekrit"
`,
			check: func(t *testing.T, cfg config.Config) {
				assert.Equal(t, 5, cfg.Device.Encoder.PinA)
				assert.Equal(t, 6, cfg.Device.Encoder.PinB)
				assert.Equal(t, 13, cfg.Device.Encoder.Button.Pin)
				assert.Equal(t, time.Second, cfg.Device.Encoder.Button.HoldTime.Std())
				assert.Equal(t, 26, cfg.Device.Trigger.Pin)
				assert.Equal(t, 1280, cfg.Device.Camera.Width)
				assert.Equal(t, "fe980000.usb", cfg.HID.UDC)
				assert.Equal(t, "/dev/hidg1", cfg.HID.Path)
				assert.Equal(t, 24, cfg.GUI.ToolbarHeight)
				assert.Equal(t, 9000, cfg.RemoteView.Port)
				assert.Equal(t, "sekrit", cfg.RemoteView.Token)
			},
		},
		{
			name:    "empty config is valid",
			content: "",
			check: func(t *testing.T, cfg config.Config) {
				assert.Zero(t, cfg.Device.Encoder.PinA)
			},
		},
		{
			name:        "malformed yaml",
			content:     "device: [not a map",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			cfg, err := config.Load(path)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.yml")
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "hid:\n  udc: env.usb\n")
	t.Setenv(config.EnvConfigPath, path)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "env.usb", cfg.HID.UDC)
}

func TestDurationUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    time.Duration
		wantErr bool
	}{
		{name: "string form", yaml: "50ms", want: 50 * time.Millisecond},
		{name: "compound", yaml: "1m30s", want: 90 * time.Second},
		{name: "bare nanoseconds", yaml: "1500", want: 1500},
		{name: "garbage", yaml: "soon", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d config.Duration
			err := yaml.Unmarshal([]byte(tt.yaml), &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Std())
		})
	}
}
