// Package ui drives the on-device screen: the scanner state machine, the
// settings menu and the frame compositor.
package ui

// State is the operator-visible mode of the scanner.
type State int

const (
	// Idle shows the live viewfinder with the target reticle.
	Idle State = iota
	// Scanning is active while the trigger is held, frames are decoded.
	Scanning
	// TargetWidth and TargetHeight adjust the reticle with the encoder.
	TargetWidth
	TargetHeight
	// Settings shows the menu overlay.
	Settings
)

// Label is the short mode tag shown in the toolbar.
func (s State) Label() string {
	switch s {
	case Idle:
		return "IDLE"
	case Scanning:
		return "SCAN"
	case TargetWidth:
		return "TGT-W"
	case TargetHeight:
		return "TGT-H"
	case Settings:
		return "SET"
	}
	return "?"
}
