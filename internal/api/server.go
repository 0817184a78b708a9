package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// StartServer starts an HTTP server for handler on the specified port.
// It runs the server in a goroutine and returns the http.Server instance for graceful shutdown
func StartServer(handler http.Handler, port string) *http.Server {
	addr := fmt.Sprintf(":%s", port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", port).Str("address", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	return srv
}

// ShutdownServer gracefully shuts down the HTTP server
// It waits for the specified timeout for existing connections to close
func ShutdownServer(srv *http.Server, timeout time.Duration) error {
	log.Info().Str("address", srv.Addr).Msg("Shutting down HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Str("address", srv.Addr).Msg("HTTP server shutdown complete")
	return nil
}
