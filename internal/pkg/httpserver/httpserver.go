package httpserver

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schedulr/linker/internal/pkg/logging"
)

// OS signals that will initiate graceful shutdown of the http server.
//
// NOTE: defined in a variable so that they may be overridden by tests.
var shutdownSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
}

// Run serves the linker until a shutdown signal arrives, then shuts down
// gracefully within the given timeout. A linking attempt that is mid-flight
// when the signal arrives gets to finish its redirect.
//
// Returns an error if a) the server fails to listen on its port or b) the
// shutdown timeout elapses before all in-flight requests are finished.
func Run(srv *http.Server, shutdownTimeout time.Duration, logger *logging.LogEntry) error {
	addr := srv.Addr
	if addr == "" {
		addr = ":http"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return runWithListener(ln, srv, shutdownTimeout, logger)
}

// runWithListener does the heavy lifting for Run() above, and is decoupled
// only for testing purposes
func runWithListener(ln net.Listener, srv *http.Server, shutdownTimeout time.Duration, logger *logging.LogEntry) error {
	var (
		// shutdownCh triggers graceful shutdown on SIGINT or SIGTERM
		shutdownCh = make(chan os.Signal, 1)

		// exitCh will be closed when it is safe to exit, after graceful shutdown
		exitCh = make(chan struct{})

		// shutdownErr allows any error from srv.Shutdown to propagate out up
		// from the goroutine
		shutdownErr error
	)

	signal.Notify(shutdownCh, shutdownSignals...)

	go func() {
		sig := <-shutdownCh
		logger.Info("caught signal ", sig, ", stopping linker")
		signal.Stop(shutdownCh)

		logger.Info("draining in-flight linking attempts for up to ", shutdownTimeout)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		shutdownErr = srv.Shutdown(ctx)
		close(exitCh)
	}()

	logger.Info("linker listening on ", ln.Addr())
	if serveErr := srv.Serve(ln); serveErr != nil && serveErr != http.ErrServerClosed {
		return serveErr
	}

	<-exitCh
	logger.Info("linker stopped")

	return shutdownErr
}
