// Package input reads the rotary encoder, its push button and the scan
// trigger, and turns GPIO edges into a single debounced event stream with
// short and long press classification.
package input
