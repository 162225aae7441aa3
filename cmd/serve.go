package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mcpgateway/internal/config"
	"mcpgateway/internal/gateway"
	"mcpgateway/internal/registry"
	"mcpgateway/pkg/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// serveConfigPath is the path to the gateway's JSON backend configuration file.
var serveConfigPath string

// host and port configure the front-facing SSE listener.
var (
	serveHost     string
	servePort     int
	serveLogLevel string
	servePrefix   bool
)

// serveCmd starts the gateway: it connects every configured backend,
// aggregates their capabilities, and serves the result over SSE.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP aggregating gateway",
	Long: `Starts the gateway: connects to every backend named in the
configuration file, aggregates their tools, resources and prompts, and
serves the aggregate over SSE until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logging.InitForCLI(logging.ParseLevel(serveLogLevel), os.Stderr)

	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	prefixMode := registry.PrefixNone
	if servePrefix {
		prefixMode = registry.PrefixBackendName
	}

	gw := gateway.New(cfg, prefixMode, prometheus.DefaultRegisterer)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := gw.Start(ctx); err != nil {
		return fmt.Errorf("failed to start gateway: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", serveHost, servePort)
	baseURL := fmt.Sprintf("http://%s", addr)
	httpServer := &http.Server{Addr: addr, Handler: gw.HTTPHandler(baseURL)}

	serverErrors := make(chan error, 1)
	go func() {
		logging.Info("CLI", "listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	logging.Info("CLI", "gateway started. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
	case err := <-serverErrors:
		logging.Error("CLI", err, "HTTP server failed")
	}

	logging.Info("CLI", "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	gw.Stop(shutdownCtx)
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveConfigPath, "config", "gateway.json", "Path to the backend configuration file")
	serveCmd.Flags().StringVar(&serveHost, "host", "0.0.0.0", "Host to bind the front-facing SSE server to")
	serveCmd.Flags().IntVar(&servePort, "port", 9000, "Port to bind the front-facing SSE server to")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "info", "Log level: debug, info, warning, error, critical")
	serveCmd.Flags().BoolVar(&servePrefix, "prefix-backend-names", false, "Expose every capability as backendName/originalName instead of first-wins")
}
