package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/seeyarh/radar/backend/logging"
	"github.com/seeyarh/radar/scanner"
)

func scanCmd() *cobra.Command {
	var (
		probesFile         string
		outFile            string
		logFile            string
		maxConcurrentScans int
		useTCP             bool
		useUDP             bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run the probe catalog against a CSV list of targets read from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			if useUDP && useTCP && cmd.Flags().Changed("tcp") {
				return fmt.Errorf("--tcp and --udp are mutually exclusive")
			}

			logger, closeLog, err := setupLogger(logFile)
			if err != nil {
				return err
			}
			defer closeLog()

			catalog, err := scanner.ReadServiceProbesFile(probesFile, logger)
			if err != nil {
				return fmt.Errorf("failed to load probe catalog: %w", err)
			}
			logger.Info("loaded probe catalog", "tcp_probes", len(catalog.TCPProbes), "udp_probes", len(catalog.UDPProbes))

			probes := catalog.TCPProbes
			if useUDP {
				probes = catalog.UDPProbes
			}

			targets := streamTargetsCSV(cmd.InOrStdin(), logger)

			out, err := os.Create(outFile)
			if err != nil {
				return fmt.Errorf("cannot create output file %s: %w", outFile, err)
			}
			defer out.Close()

			tlsConfig := scanner.NewTLSConnectorConfig()
			results := scanner.RunPipeline(context.Background(), targets, probes, tlsConfig, maxConcurrentScans, logger)

			return writeNDJSON(out, results)
		},
	}

	cmd.Flags().StringVar(&probesFile, "probes-file", "", "path to an nmap-service-probes catalog (required)")
	cmd.Flags().StringVar(&outFile, "out-file", "", "path to write newline-delimited JSON results (required)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs here instead of stderr")
	cmd.Flags().IntVar(&maxConcurrentScans, "max-concurrent-scans", scanner.DefaultMaxConcurrentScans, "maximum number of in-flight scans")
	cmd.Flags().BoolVar(&useTCP, "tcp", true, "scan using the catalog's TCP probes")
	cmd.Flags().BoolVar(&useUDP, "udp", false, "scan using the catalog's UDP probes")
	cmd.MarkFlagRequired("probes-file")
	cmd.MarkFlagRequired("out-file")

	return cmd
}

func writeNDJSON(out *os.File, results <-chan scanner.RadarOutput) error {
	w := bufio.NewWriter(out)
	defer w.Flush()

	enc := json.NewEncoder(w)
	for r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("failed to flush output: %w", err)
		}
	}
	return nil
}

func setupLogger(logFile string) (logger *slog.Logger, closeFn func(), err error) {
	if logFile == "" {
		return logging.ConfigureOutput(os.Stderr), func() {}, nil
	}

	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot create log file %s: %w", logFile, err)
	}
	return logging.ConfigureOutput(f), func() { f.Close() }, nil
}
