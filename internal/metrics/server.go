package metrics

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	storecollectors "github.com/zircuit-multisig/safe-eth-go/internal/metrics/collectors"
)

// CreateMetricsServer serves /metrics on addr. Store collectors are added when
// db is set; extra carries collectors such as LookupMetrics.
func CreateMetricsServer(db *sql.DB, addr string, extra ...prometheus.Collector) (*http.Server, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	cs := append([]prometheus.Collector{}, extra...)
	if db != nil {
		storeCollectors, err := storecollectors.DefaultRegistry.CreateCollectors(db)
		if err != nil {
			return nil, fmt.Errorf("failed to create collectors: %w", err)
		}
		cs = append(cs, storeCollectors...)
	}
	for _, c := range cs {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	server := &http.Server{
		Addr:              listener.Addr().String(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("Serving metrics", "addr", server.Addr)
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start metrics server", "error", err)
		}
	}()

	return server, nil
}
