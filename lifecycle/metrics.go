package lifecycle

import (
	"time"

	"github.com/cordialsys/nftstake/errors"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	operationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nftstake",
		Subsystem: "lifecycle",
		Name:      "operation_total",
		Help:      "The total number of processed lifecycle operations",
	}, []string{"operation", "status"})

	operationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "nftstake",
		Subsystem: "lifecycle",
		Name:      "operation_duration_seconds",
		Help:      "The latency of lifecycle operations",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 10),
	}, []string{"operation"})

	rewardIssued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nftstake",
		Subsystem: "lifecycle",
		Name:      "reward_issued_total",
		Help:      "The total reward units issued",
	}, []string{"operation"})
)

func init() {
	prometheus.MustRegister(operationCounter)
	prometheus.MustRegister(operationDuration)
	prometheus.MustRegister(rewardIssued)
}

func traceOperation(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = string(errors.StatusOf(err))
	}
	operationCounter.With(prometheus.Labels{"operation": operation, "status": status}).Inc()
	operationDuration.With(prometheus.Labels{"operation": operation}).Observe(time.Since(start).Seconds())
}

func traceReward(operation string, amount uint64) {
	rewardIssued.With(prometheus.Labels{"operation": operation}).Add(float64(amount))
}
