package http

import (
	"expvar"
	"net/http"
	"strconv"

	"github.com/felixge/httpsnoop"
)

var (
	totalRequestsReceived          = expvar.NewInt("total_requests_received")
	totalResponsesSent             = expvar.NewInt("total_responses_sent")
	totalProcessingTimeMicrosecond = expvar.NewInt("total_processing_time_μs")
	totalResponsesSentByStatus     = expvar.NewMap("total_responses_sent_by_status")
)

// MetricsHandler wraps the whole HTTP handler and counts requests, responses
// and processing time in expvar. Values are served by GET /debug/vars.
func MetricsHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		totalRequestsReceived.Add(1)
		metrics := httpsnoop.CaptureMetrics(next, w, r)
		totalResponsesSent.Add(1)
		totalProcessingTimeMicrosecond.Add(metrics.Duration.Microseconds())
		totalResponsesSentByStatus.Add(strconv.Itoa(metrics.Code), 1)
	})
}
