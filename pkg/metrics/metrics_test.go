package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrement(t *testing.T) {
	FramesCaptured.Inc()
	if v := testutil.ToFloat64(FramesCaptured); v < 1 {
		t.Fatalf("expected FramesCaptured >= 1, got %v", v)
	}

	DecodeHits.WithLabelValues("QR_CODE").Inc()
	if v := testutil.ToFloat64(DecodeHits.WithLabelValues("QR_CODE")); v < 1 {
		t.Fatalf("expected DecodeHits >= 1, got %v", v)
	}

	BarcodesSent.Add(2)
	if v := testutil.ToFloat64(BarcodesSent); v < 2 {
		t.Fatalf("expected BarcodesSent >= 2, got %v", v)
	}
}

func TestUDCConnectedGauge(t *testing.T) {
	UDCConnected.Set(1)
	assert.Equal(t, 1.0, testutil.ToFloat64(UDCConnected))
	UDCConnected.Set(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(UDCConnected))
}

func TestMetricsHandlerServes(t *testing.T) {
	FramesCaptured.Inc()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	MetricsHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "optiscan_frames_captured_total")
}
