package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optiscan/optiscan/pkg/system"
)

func TestVersionCommand(t *testing.T) {
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), system.Version)
}

func TestVersionFlag(t *testing.T) {
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), system.Version)
}

func TestLEDPortMapping(t *testing.T) {
	tests := []struct {
		pin     int
		port    string
		wantErr bool
	}{
		{10, "SPI0.0", false},
		{19, "SPI1.0", false},
		{20, "SPI1.0", false},
		{21, "SPI1.0", false},
		{4, "", true},
	}
	for _, tt := range tests {
		port, err := ledPort(tt.pin)
		if tt.wantErr {
			assert.Error(t, err, "pin %d", tt.pin)
			continue
		}
		require.NoError(t, err, "pin %d", tt.pin)
		assert.Equal(t, tt.port, port)
	}
}

func TestSetupLogger(t *testing.T) {
	for _, verbose := range []bool{true, false} {
		log, err := setupLogger(verbose)
		require.NoError(t, err)
		require.NotNil(t, log)
	}
}
