package scanner

import (
	"os/exec"

	"go.uber.org/zap"
)

// Power shuts the appliance down, invoked from the settings menu.
type Power interface {
	Shutdown() error
}

// SystemPower powers the device off through systemd.
type SystemPower struct {
	Log *zap.SugaredLogger
}

func (p SystemPower) Shutdown() error {
	p.Log.Infow("Powering off")
	return exec.Command("systemctl", "poweroff").Run()
}

// NoPower ignores shutdown requests, for tests and development hosts.
type NoPower struct{}

func (NoPower) Shutdown() error { return nil }
