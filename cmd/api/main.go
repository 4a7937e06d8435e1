package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/vlehub/user-service/internal/bootstrap"
	"github.com/vlehub/user-service/internal/logger"
)

const defaultShutdownTimeout = 15 * time.Second

// httpServer is the slice of *http.Server that Run cares about, so the
// lifecycle can be tested with a fake.
type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
	Close() error
	Addr() string
}

type realServer struct{ *http.Server }

func (r realServer) Addr() string { return r.Server.Addr }

// serverBuilder yields the server, its graceful-shutdown budget and a
// cleanup for the resources behind it.
type serverBuilder func() (httpServer, time.Duration, func(), error)

// Run serves until an OS signal or a listener crash; on signal it drains
// in-flight requests within the shutdown budget before forcing Close.
func Run(build serverBuilder, sigCh <-chan os.Signal, lg zerolog.Logger) int {
	srv, shutdownTimeout, cleanup, err := build()
	if err != nil {
		lg.Error().Err(err).Msg("user-service bootstrap failed")
		return 1
	}
	defer cleanup()

	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info().Str("addr", srv.Addr()).Msg("user-service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		lg.Info().Str("signal", sig.String()).Msg("user-service shutting down")

	case err := <-errCh:
		lg.Error().Err(err).Msg("user-service crashed")
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		lg.Error().Err(err).Dur("timeout", shutdownTimeout).Msg("graceful shutdown failed, closing")
		_ = srv.Close()
	}

	lg.Info().Msg("user-service stopped")
	return 0
}

func buildFromBootstrap() (httpServer, time.Duration, func(), error) {
	app, cleanup, err := bootstrap.NewServer()
	if err != nil {
		return nil, 0, nil, err
	}
	return realServer{app.HTTP}, app.ShutdownTimeout, cleanup, nil
}

func main() {
	logger.Init()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	os.Exit(Run(buildFromBootstrap, sigCh, zlog.Logger))
}
