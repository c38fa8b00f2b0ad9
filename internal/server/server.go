// Package server exposes the validators and the metadata lookup over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/zircuit-multisig/safe-eth-go/internal/explorer"
)

// Server routes the HTTP API. A nil lookup disables the contracts endpoint.
type Server struct {
	lookup explorer.MetadataLookup
	router *mux.Router
}

func New(lookup explorer.MetadataLookup) *Server {
	s := &Server{lookup: lookup}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/validate/address", s.validateAddress).Methods(http.MethodPost)
	v1.HandleFunc("/validate/hex", s.validateHex).Methods(http.MethodPost)
	v1.HandleFunc("/validate/hash", s.validateHash).Methods(http.MethodPost)
	v1.HandleFunc("/validate/signature", s.validateSignature).Methods(http.MethodPost)
	v1.HandleFunc("/validate/transaction", s.validateTransaction).Methods(http.MethodPost)
	v1.HandleFunc("/validate/safe-transaction", s.validateSafeTransaction).Methods(http.MethodPost)
	v1.HandleFunc("/validate/safe-transaction/estimate", s.validateSafeEstimate).Methods(http.MethodPost)
	v1.HandleFunc("/contracts/{address}", s.contractMetadata).Methods(http.MethodGet)

	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	httpServer := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server listening", "addr", listener.Addr().String())
		errCh <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down API server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down API server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
