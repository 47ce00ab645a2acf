package hid

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/optiscan/optiscan/pkg/metrics"
)

// DefaultSysfsRoot is where the kernel exposes USB device controllers.
const DefaultSysfsRoot = "/sys/class/udc"

// UDCMonitor periodically probes the USB device controller bind state so
// the UI can show whether a host is actually connected.
type UDCMonitor struct {
	// Root of the UDC sysfs tree, overridable in tests.
	Root string

	udc       string
	interval  time.Duration
	connected atomic.Bool
	log       *zap.SugaredLogger
}

func NewUDCMonitor(udc string, log *zap.SugaredLogger) *UDCMonitor {
	return &UDCMonitor{
		Root:     DefaultSysfsRoot,
		udc:      udc,
		interval: 500 * time.Millisecond,
		log:      log,
	}
}

// Connected reports the result of the most recent probe.
func (m *UDCMonitor) Connected() bool {
	return m.connected.Load()
}

// Probe reads the controller state once and updates Connected. A controller
// that is missing or unreadable counts as disconnected, so a misconfigured
// UDC address shows up as "NO" on the toolbar instead of a false OK.
func (m *UDCMonitor) Probe() bool {
	path := filepath.Join(m.Root, m.udc, "gadget", "suspended")
	content, err := os.ReadFile(path)
	connected := err == nil && strings.TrimSpace(string(content)) != "1"

	m.connected.Store(connected)
	if connected {
		metrics.UDCConnected.Set(1)
	} else {
		metrics.UDCConnected.Set(0)
	}
	return connected
}

// Run polls until ctx is cancelled, keeping Connected and the gauge fresh.
func (m *UDCMonitor) Run(ctx context.Context) {
	if _, err := os.Stat(filepath.Join(m.Root, m.udc)); err != nil {
		candidates, lerr := ListUDCs(m.Root)
		if lerr == nil && len(candidates) > 0 {
			m.log.Errorw("Configured UDC not found, check hid.udc in the config",
				"udc", m.udc, "candidates", candidates)
		} else {
			m.log.Errorw("Configured UDC not found and no controllers present",
				"udc", m.udc, "error", err)
		}
	}

	t := time.NewTicker(m.interval)
	defer t.Stop()
	for {
		m.Probe()
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// ListUDCs enumerates available USB device controllers, for operator
// remediation when the configured address does not bind.
func ListUDCs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("listing UDCs under %s: %w", root, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
