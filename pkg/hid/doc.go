// Package hid emits decoded barcodes as keystrokes through a USB HID
// keyboard gadget, and watches the USB device controller for an active
// host connection.
package hid
