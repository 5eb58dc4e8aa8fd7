// Package metrics holds the Prometheus collectors for the document registry
// and the HTTP server that exposes them.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ruteri/legal-document-registry/common"
	"github.com/ruteri/legal-document-registry/interfaces"
)

var registry = prometheus.NewRegistry()

var (
	registryCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: common.PackageName,
		Subsystem: "registry",
		Name:      "calls_total",
		Help:      "Registry contract calls by method and outcome.",
	}, []string{"method", "outcome"})

	registryCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: common.PackageName,
		Subsystem: "registry",
		Name:      "call_duration_seconds",
		Help:      "Registry contract call latency, including confirmation for transactions.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"method"})

	uploads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: common.PackageName,
		Subsystem: "storage",
		Name:      "uploads_total",
		Help:      "Content store uploads by store and outcome.",
	}, []string{"store", "outcome"})

	uploadBytes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: common.PackageName,
		Subsystem: "storage",
		Name:      "uploaded_bytes_total",
		Help:      "Bytes successfully uploaded per store.",
	}, []string{"store"})

	uploadDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: common.PackageName,
		Subsystem: "storage",
		Name:      "upload_duration_seconds",
		Help:      "Content store upload latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"store"})

	submissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: common.PackageName,
		Subsystem: "workflow",
		Name:      "submissions_total",
		Help:      "Publish workflow submissions by terminal state.",
	}, []string{"outcome"})

	listingEntries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: common.PackageName,
		Subsystem: "workflow",
		Name:      "listing_entries_total",
		Help:      "Listing entries resolved, split into loaded and failed.",
	}, []string{"outcome"})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		registryCalls,
		registryCallDuration,
		uploads,
		uploadBytes,
		uploadDuration,
		submissions,
		listingEntries,
	)
}

// Outcome labels an error with its kind.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, interfaces.ErrConfig):
		return "config"
	case errors.Is(err, interfaces.ErrValidation):
		return "validation"
	case errors.Is(err, interfaces.ErrUpload):
		return "upload"
	case errors.Is(err, interfaces.ErrDuplicateRecord):
		return "duplicate"
	case errors.Is(err, interfaces.ErrNotFound):
		return "not_found"
	case errors.Is(err, interfaces.ErrNotAuthorized):
		return "not_authorized"
	case errors.Is(err, interfaces.ErrSubmissionInFlight):
		return "in_flight"
	case errors.Is(err, interfaces.ErrRegistryCall):
		return "registry"
	default:
		return "error"
	}
}

// RecordRegistryCall records one contract call.
func RecordRegistryCall(method string, err error, elapsed time.Duration) {
	registryCalls.WithLabelValues(method, Outcome(err)).Inc()
	registryCallDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// RecordUpload records one content store upload.
func RecordUpload(store string, size int64, err error, elapsed time.Duration) {
	uploads.WithLabelValues(store, Outcome(err)).Inc()
	uploadDuration.WithLabelValues(store).Observe(elapsed.Seconds())
	if err == nil {
		uploadBytes.WithLabelValues(store).Add(float64(size))
	}
}

// RecordSubmission records a workflow submission reaching a terminal state.
func RecordSubmission(err error) {
	submissions.WithLabelValues(Outcome(err)).Inc()
}

// RecordListing records how many listing entries loaded and failed.
func RecordListing(loaded, failed int) {
	listingEntries.WithLabelValues("loaded").Add(float64(loaded))
	listingEntries.WithLabelValues("failed").Add(float64(failed))
}
