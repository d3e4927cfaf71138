// Package metrics exposes request and engine counters on the default
// Prometheus registry.
package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auctionhouse_http_requests_total",
	}, []string{"route", "method", "code"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "auctionhouse_http_request_duration_seconds",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 10},
	}, []string{"route"})

	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auctionhouse_operations_total",
	}, []string{"op", "outcome"})
)

// Handler serves the accumulated metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveOperation counts one state-changing operation by outcome.
func ObserveOperation(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	operationsTotal.WithLabelValues(op, outcome).Inc()
}

// RegisterEngineGauges publishes live engine totals. Call once at startup.
func RegisterEngineGauges(activeAuctions, escrowBalance, pendingWithdrawals, eventCount func() float64) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "auctionhouse_active_auctions",
	}, activeAuctions)
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "auctionhouse_escrow_balance",
	}, escrowBalance)
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "auctionhouse_pending_withdrawals",
	}, pendingWithdrawals)
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "auctionhouse_events_total",
	}, eventCount)
}

// Instrument wraps one route with request counting and timing.
func Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := prometheus.NewTimer(httpRequestDuration.WithLabelValues(route))
		defer t.ObserveDuration()
		sw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(sw.status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack keeps websocket upgrades working on instrumented routes.
func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return h.Hijack()
}
