package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvRPCURL        = "DIARY_RPC_URL"
	EnvContract      = "DIARY_CONTRACT"
	EnvChainID       = "DIARY_CHAIN_ID"
	EnvKeystore      = "DIARY_KEYSTORE"
	EnvPrivateKey    = "DIARY_PRIVATE_KEY"
	EnvConfirmations = "DIARY_CONFIRMATIONS"
	EnvDatabase      = "DIARY_DB"
	EnvLogLevel      = "DIARY_LOG_LEVEL"
)

// parseEnv overlays cfg with DIARY_* variables. Values from the dotenv file
// are used only when lookup does not know the variable.
func parseEnv(cfg *Config, dotenv string, lookup func(string) (string, bool)) error {
	file := map[string]string{}
	if dotenv != "" {
		m, err := godotenv.Read(dotenv)
		switch {
		case err == nil:
			file = m
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("read %s: %w", dotenv, err)
		}
	}

	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	}

	strs := map[string]*string{
		EnvRPCURL:     &cfg.RPCURL,
		EnvContract:   &cfg.ContractAddress,
		EnvKeystore:   &cfg.KeystorePath,
		EnvPrivateKey: &cfg.PrivateKey,
		EnvDatabase:   &cfg.DatabasePath,
		EnvLogLevel:   &cfg.LogLevel,
	}
	for key, dst := range strs {
		if v, ok := get(key); ok {
			*dst = v
		}
	}

	if v, ok := get(EnvChainID); ok {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvChainID, err)
		}
		cfg.ChainID = id
	}
	if v, ok := get(EnvConfirmations); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvConfirmations, err)
		}
		cfg.Confirmations = n
	}
	return nil
}
