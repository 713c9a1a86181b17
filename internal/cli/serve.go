package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/browsion/browsion/internal/actionlog"
	"github.com/browsion/browsion/internal/config"
	"github.com/browsion/browsion/internal/eventbus"
	"github.com/browsion/browsion/internal/httpapi"
	"github.com/browsion/browsion/internal/pool"
	"github.com/browsion/browsion/internal/profile"
	"github.com/browsion/browsion/internal/supervisor"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	serveBindAddr string
	servePort     int
	serveAPIKey   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the browsion control plane server",
	Long:  "serve starts the HTTP control plane: the profile store, the Chrome process supervisor, and the REST + WebSocket API other browsion commands talk to.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveBindAddr, "bind", "", "Address to bind (overrides config.json)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to bind (overrides config.json)")
	serveCmd.Flags().StringVar(&serveAPIKey, "api-key", "", "Require this API key on every request except /api/health")
}

func runServe(cmd *cobra.Command, args []string) error {
	stateDir, err := supervisor.StateDir()
	if err != nil {
		return outputError(fmt.Sprintf("resolve state directory: %v", err))
	}

	cfg, err := config.Load(stateDir)
	if err != nil {
		return outputError(fmt.Sprintf("load config: %v", err))
	}
	if serveBindAddr != "" {
		cfg.BindAddr = serveBindAddr
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if serveAPIKey != "" {
		cfg.APIKey = serveAPIKey
	}

	profiles, err := profile.Open(stateDir)
	if err != nil {
		return outputError(fmt.Sprintf("open profile store: %v", err))
	}
	procs, err := supervisor.New(stateDir)
	if err != nil {
		return outputError(fmt.Sprintf("start process supervisor: %v", err))
	}
	sessionPool := pool.New()
	actions := actionlog.New(stateDir)
	bus := eventbus.New()
	defer bus.Close()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	if !Debug {
		logger = logger.Level(zerolog.InfoLevel)
	} else {
		logger = logger.Level(zerolog.DebugLevel)
	}

	srv := httpapi.New(cfg, profiles, procs, sessionPool, actions, bus, logger)

	cleanupInterval := time.Duration(cfg.CleanupInterval) * time.Second
	if cleanupInterval <= 0 {
		cleanupInterval = 30 * time.Second
	}
	stopCleanup := make(chan struct{})
	go runCleanupLoop(procs, cleanupInterval, stopCleanup)
	defer close(stopCleanup)

	httpServer := &http.Server{
		Addr:    cfg.Addr(),
		Handler: srv,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr()).Msg("browsion control plane listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info().Msg("shutting down")
	case err := <-errCh:
		return outputError(fmt.Sprintf("server error: %v", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}

// runCleanupLoop periodically reaps dead Chrome processes from the
// supervisor's tracked state, matching the original's periodic
// cleanup_dead_processes sweep.
func runCleanupLoop(procs *supervisor.Manager, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			procs.CleanupDeadProcesses()
		case <-stop:
			return
		}
	}
}
