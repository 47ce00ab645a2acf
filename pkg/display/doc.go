// Package display drives the SPI LCD. The ST7789 implementation talks to
// the real panel; Memory backs tests and the remote view snapshot.
package display
