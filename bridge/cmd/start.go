package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	bridgehttp "github.com/printbridge/printbridge/bridge/http"
	"github.com/printbridge/printbridge/internal/logging"
	"github.com/printbridge/printbridge/internal/relay"
)

const defaultShutdownTimeout = 30

var (
	portFlag            int
	shutdownTimeoutFlag int
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the print bridge HTTP server",
	Long:  `Start the HTTP server that accepts print jobs and relays them to printers`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd)
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
	startCmd.Flags().IntVarP(&portFlag, "port", "p", 0, "Port to listen on (overrides config)")
	startCmd.Flags().IntVar(&shutdownTimeoutFlag, "shutdown-timeout", defaultShutdownTimeout,
		"Graceful shutdown timeout in seconds")
}

func runServer(cmd *cobra.Command) error {
	if portFlag != 0 {
		cfg.Port = portFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	server := bridgehttp.NewServer(&bridgehttp.Options{
		Port:        cfg.Port,
		Relay:       relay.New(&relay.Options{Logger: logger}),
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info("Print bridge listening", logging.Int("port", server.Port()))
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("Starting graceful shutdown", logging.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(shutdownTimeoutFlag)*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			if err := server.Close(); err != nil {
				return fmt.Errorf("could not stop server gracefully: %w", err)
			}
			return fmt.Errorf("could not gracefully shutdown the server: %w", err)
		}

		logger.Info("Server stopped gracefully")
	}

	return nil
}
