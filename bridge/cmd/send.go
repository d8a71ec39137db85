package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/printbridge/printbridge/internal/relay"
)

var (
	sendIPFlag   string
	sendPortFlag int
)

var sendCmd = &cobra.Command{
	Use:   "send <file>",
	Short: "Relay a file straight to a printer",
	Long: `Read raw printer bytes from a file (or stdin with "-") and relay them
to a printer, bypassing the HTTP server. Useful for smoke-testing a printer.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSend(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVar(&sendIPFlag, "ip", "", "Printer IPv4 address (required)")
	sendCmd.Flags().IntVarP(&sendPortFlag, "port", "p", relay.DefaultPort, "Printer TCP port")
	_ = sendCmd.MarkFlagRequired("ip")
}

func runSend(cmd *cobra.Command, path string) error {
	payload, err := readPayload(path)
	if err != nil {
		return err
	}

	req, err := relay.NewRequestBytes(sendIPFlag, sendPortFlag, payload)
	if err != nil {
		return err
	}

	r := relay.New(&relay.Options{Logger: logger})
	out := r.Send(context.Background(), req)
	if !out.Success {
		return errors.New(out.Message)
	}

	cmd.Printf("%s (%d bytes to %s:%d)\n", out.Message, len(req.Payload), req.Address, req.Port)
	return nil
}

func readPayload(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload file: %w", err)
	}
	return data, nil
}
