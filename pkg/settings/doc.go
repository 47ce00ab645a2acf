// Package settings implements the on-device settings tree: typed, bounded
// values adjusted with the rotary encoder, applied through callbacks, and
// persisted as JSON between runs.
package settings
