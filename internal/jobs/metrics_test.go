package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordsDeliveryOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	require.NoError(t, m.Track("mail:send").End(nil))
	boom := errors.New("smtp down")
	require.ErrorIs(t, m.Track("mail:send").End(boom), boom)

	require.Equal(t, 1.0, testutil.ToFloat64(m.deliveries.WithLabelValues("mail:send", "sent")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.deliveries.WithLabelValues("mail:send", "failed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("mail:send")))
	require.Equal(t, 1, testutil.CollectAndCount(m.latency, "ipp_worker_delivery_seconds"))
}

func TestSkipAndNilSafety(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.Skip("mail:send", "payload")
	require.Equal(t, 1.0, testutil.ToFloat64(m.dropped.WithLabelValues("mail:send", "payload")))

	var nilMetrics *Metrics
	nilMetrics.Skip("mail:send", "payload")
	require.NoError(t, nilMetrics.Track("mail:send").End(nil))
}
