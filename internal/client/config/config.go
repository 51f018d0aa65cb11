package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds runtime settings for the diary CLI.
type Config struct {
	RPCURL          string `validate:"required,url"`
	ContractAddress string `validate:"required,eth_addr"`
	// ChainID 0 means ask the node.
	ChainID      int64 `validate:"gte=0"`
	KeystorePath string
	PrivateKey   string

	Confirmations       uint64        `validate:"gte=1"`
	PollInterval        time.Duration `validate:"gt=0"`
	OnlineCheckInterval time.Duration `validate:"gt=0"`

	DatabasePath string `validate:"required"`
	LogLevel     string `validate:"oneof=debug info warn error"`
}

// LoadDefaults populates c with defaults for a local development node.
func (c *Config) LoadDefaults() {
	c.RPCURL = "http://127.0.0.1:8545"
	c.ContractAddress = "0xde65b2b24558ef18b923d31e9e6be966b9e3b0bd"
	c.ChainID = 0
	c.Confirmations = 1
	c.PollInterval = 2 * time.Second
	c.OnlineCheckInterval = 5 * time.Second
	c.DatabasePath = "diary.db"
	c.LogLevel = "info"
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var fes validator.ValidationErrors
		if errors.As(err, &fes) && len(fes) > 0 {
			fe := fes[0]
			return fmt.Errorf("config: invalid %s (%s)", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// LoadConfig builds a Config from defaults, the JSON file, the environment
// and os.Args, in that order, and validates it.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:], ".env", os.LookupEnv)
}

func load(args []string, dotenv string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, dotenv, lookup); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
