package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DocumentsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "assinei", Name: "documents_created_total", Help: "Number of documents created."},
	)
	SignaturesRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "assinei", Name: "signatures_recorded_total", Help: "Number of signatures recorded."},
	)
	DocumentsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "assinei", Name: "documents_completed_total", Help: "Number of documents fully signed."},
	)
	DocumentsRejected = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "assinei", Name: "documents_rejected_total", Help: "Number of documents terminated by a rejection."},
	)
	DocumentsCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "assinei", Name: "documents_cancelled_total", Help: "Number of documents cancelled."},
	)

	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "assinei", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "assinei", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(DocumentsCreated)
	reg.MustRegister(SignaturesRecorded)
	reg.MustRegister(DocumentsCompleted)
	reg.MustRegister(DocumentsRejected)
	reg.MustRegister(DocumentsCancelled)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
