// Package metrics defines Prometheus metrics for the scanner daemon,
// covering frame capture, barcode decoding, HID output, and the USB
// device controller connection state.
package metrics
