package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FramesCaptured = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "optiscan_frames_captured_total",
		Help: "Total number of camera frames captured",
	})
	DecodeAttempts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "optiscan_decode_attempts_total",
		Help: "Total number of decode attempts on cropped target regions",
	})
	DecodeHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "optiscan_decode_hits_total",
		Help: "Total number of successful barcode decodes",
	}, []string{"format"})
	BarcodesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "optiscan_barcodes_sent_total",
		Help: "Total number of barcodes typed over the HID gadget",
	})
	BarcodesSuppressed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "optiscan_barcodes_suppressed_total",
		Help: "Total number of repeat decodes dropped by the suppression window",
	})
	HIDWriteErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "optiscan_hid_write_errors_total",
		Help: "Total number of failed HID report writes",
	})
	HIDUnsupportedRunes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "optiscan_hid_unsupported_runes_total",
		Help: "Total number of barcode characters without a keyboard mapping",
	})
	UDCConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "optiscan_udc_connected",
		Help: "1 when the USB device controller reports an active host connection",
	})
	DecodeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "optiscan_decode_duration_seconds",
		Help:    "Time spent decoding a single cropped frame",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
	})
	DisplayFrameDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "optiscan_display_frame_seconds",
		Help:    "Time spent compositing and blitting one display frame",
		Buckets: prometheus.ExponentialBuckets(0.002, 2, 10),
	})
)

func init() {
	prometheus.MustRegister(FramesCaptured)
	prometheus.MustRegister(DecodeAttempts)
	prometheus.MustRegister(DecodeHits)
	prometheus.MustRegister(BarcodesSent)
	prometheus.MustRegister(BarcodesSuppressed)
	prometheus.MustRegister(HIDWriteErrors)
	prometheus.MustRegister(HIDUnsupportedRunes)
	prometheus.MustRegister(UDCConnected)
	prometheus.MustRegister(DecodeDuration)
	prometheus.MustRegister(DisplayFrameDuration)
}

// MetricsHandler returns an http.Handler exposing Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
