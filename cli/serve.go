package cli

import (
	"github.com/spf13/cobra"

	"github.com/seeyarh/radar/api"
	"github.com/seeyarh/radar/scanner"
)

func serveCmd() *cobra.Command {
	var (
		probesFile         string
		listenAddr         string
		redisAddr          string
		maxConcurrentScans int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the async HTTP API for batch detection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return api.Run(api.Config{
				ProbesFile:         probesFile,
				ListenAddr:         listenAddr,
				RedisAddr:          redisAddr,
				MaxConcurrentScans: maxConcurrentScans,
			})
		},
	}

	cmd.Flags().StringVar(&probesFile, "probes-file", "", "path to an nmap-service-probes catalog (required)")
	cmd.Flags().StringVar(&listenAddr, "listen-addr", "", "address to listen on, default :8080 or $LISTEN_ADDR")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "redis address, default localhost:6379 or $REDIS_ADDR")
	cmd.Flags().IntVar(&maxConcurrentScans, "max-concurrent-scans", scanner.DefaultMaxConcurrentScans, "maximum number of in-flight scans per task")
	cmd.MarkFlagRequired("probes-file")

	return cmd
}
