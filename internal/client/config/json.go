package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophdiary/internal/flagx"
	"github.com/dmitrijs2005/gophdiary/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Absent fields leave
// the current value untouched.
type JsonConfig struct {
	RPCURL              *string         `json:"rpc_url"`
	ContractAddress     *string         `json:"contract_address"`
	ChainID             *int64          `json:"chain_id"`
	KeystorePath        *string         `json:"keystore_path"`
	Confirmations       *uint64         `json:"confirmations"`
	PollInterval        *timex.Duration `json:"poll_interval"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	DatabasePath        *string         `json:"database_path"`
	LogLevel            *string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c / -config, if any.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	setIf(&cfg.RPCURL, jc.RPCURL)
	setIf(&cfg.ContractAddress, jc.ContractAddress)
	setIf(&cfg.ChainID, jc.ChainID)
	setIf(&cfg.KeystorePath, jc.KeystorePath)
	setIf(&cfg.Confirmations, jc.Confirmations)
	setIf(&cfg.DatabasePath, jc.DatabasePath)
	setIf(&cfg.LogLevel, jc.LogLevel)
	if jc.PollInterval != nil {
		cfg.PollInterval = jc.PollInterval.Duration
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
