package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/flagx"
)

// parseFlags overlays cfg with the flags it owns. Other arguments are
// filtered out with flagx.FilterArgs first.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, "r", "k", "s", "n", "i", "d", "l")

	fs := flag.NewFlagSet("diary", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.RPCURL, "r", cfg.RPCURL, "JSON-RPC endpoint of the ledger node")
	fs.StringVar(&cfg.ContractAddress, "k", cfg.ContractAddress, "diary contract address")
	fs.StringVar(&cfg.KeystorePath, "s", cfg.KeystorePath, "encrypted keystore file")
	fs.Uint64Var(&cfg.Confirmations, "n", cfg.Confirmations, "confirmations required for finality")
	poll := fs.Int("i", int(cfg.PollInterval.Seconds()), "finality poll interval (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local cache database path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.PollInterval = time.Duration(*poll) * time.Second
		}
	})
	return nil
}
