package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ruteri/legal-document-registry/common"
)

// MetricsServer exposes the collectors on /metrics.
type MetricsServer struct {
	srv *http.Server
}

// New creates a metrics server listening on addr. The namespace labels the
// build info gauge.
func New(namespace, addr string) (*MetricsServer, error) {
	buildInfo := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Which version is running. 1 for 'version' label with current version.",
	}, []string{"version"})
	if err := registry.Register(buildInfo); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		buildInfo = already.ExistingCollector.(*prometheus.GaugeVec)
	}
	buildInfo.WithLabelValues(common.Version).Set(1)

	return &MetricsServer{
		srv: &http.Server{
			Addr:    addr,
			Handler: Handler(),
		},
	}, nil
}

// Handler returns the router serving /metrics.
func Handler() http.Handler {
	mux := chi.NewRouter()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	return mux
}

func (s *MetricsServer) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
