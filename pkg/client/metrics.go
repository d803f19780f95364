package client

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Debug counters for the frame pipeline. Exposed on an optional local HTTP
// endpoint; useful when chasing dropped batches or a chatty gateway.
var (
	framesDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teleclone_frames_dispatched_total",
		Help: "Inbound frames routed, by frame type",
	}, []string{"type"})

	framesIgnored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teleclone_frames_ignored_total",
		Help: "Inbound frames with an unrecognized type tag",
	})

	batchesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teleclone_message_batches_dropped_total",
		Help: "Message batches discarded because their chat no longer matched the selection",
	})

	commandsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teleclone_commands_sent_total",
		Help: "Outbound commands sent, by command type",
	}, []string{"type"})

	sendsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teleclone_commands_dropped_total",
		Help: "Outbound commands dropped because the connection was not open",
	})

	downloadsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teleclone_downloads_completed_total",
		Help: "Downloads finalized by a downloadComplete frame",
	})
)

// ServeDebugMetrics exposes prometheus metrics plus connection byte counters
// on a local port. Returns the server so the caller can shut it down.
func ServeDebugMetrics(port int, conn ConnectionInterface) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	bytesGauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "teleclone_connection_bytes_sent",
		Help: "Total bytes written to the gateway socket",
	}, func() float64 { return float64(conn.GetBytesSent()) })
	recvGauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "teleclone_connection_bytes_received",
		Help: "Total bytes read from the gateway socket",
	}, func() float64 { return float64(conn.GetBytesReceived()) })
	prometheus.DefaultRegisterer.MustRegister(bytesGauge, recvGauge)

	srv := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go srv.ListenAndServe()
	return srv
}
