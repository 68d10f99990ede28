package ledger

import (
	"time"

	"github.com/cordialsys/nftstake/errors"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	submitCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nftstake",
		Subsystem: "ledger",
		Name:      "transaction_total",
		Help:      "The total number of submitted transactions",
	}, []string{"status"})

	submitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "nftstake",
		Subsystem: "ledger",
		Name:      "transaction_duration_seconds",
		Help:      "The latency of executing and committing a transaction",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 12),
	})
)

func init() {
	prometheus.MustRegister(submitCounter)
	prometheus.MustRegister(submitDuration)
}

func traceSubmit(start time.Time, err error) {
	status := "committed"
	if err != nil {
		status = string(errors.StatusOf(err))
	}
	submitCounter.With(prometheus.Labels{"status": status}).Inc()
	submitDuration.Observe(time.Since(start).Seconds())
}
