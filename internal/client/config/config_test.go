package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func envOf(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://127.0.0.1:8545", c.RPCURL)
	assert.Equal(t, "0xde65b2b24558ef18b923d31e9e6be966b9e3b0bd", c.ContractAddress)
	assert.Equal(t, uint64(1), c.Confirmations)
	assert.Equal(t, 2*time.Second, c.PollInterval)
	assert.Equal(t, 5*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, "diary.db", c.DatabasePath)
	assert.Equal(t, "info", c.LogLevel)
	require.NoError(t, c.Validate())
}

func TestLoad_NoSources(t *testing.T) {
	cfg, err := load(nil, "", noEnv)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected func(*Config)
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-r", "http://node:8545", "-k", "0x00000000000000000000000000000000000000aa",
				"-s", "key.json", "-n", "3", "-i", "10", "-d", "x.db", "-l", "debug"},
			expected: func(c *Config) {
				c.RPCURL = "http://node:8545"
				c.ContractAddress = "0x00000000000000000000000000000000000000aa"
				c.KeystorePath = "key.json"
				c.Confirmations = 3
				c.PollInterval = 10 * time.Second
				c.DatabasePath = "x.db"
				c.LogLevel = "debug"
			},
		},
		{
			name:     "unknown flags ignored",
			args:     []string{"-x", "1", "-n", "2", "positional"},
			expected: func(c *Config) { c.Confirmations = 2 },
		},
		{
			name:     "poll interval untouched unless given",
			args:     []string{"-l", "warn"},
			expected: func(c *Config) { c.LogLevel = "warn" },
		},
		{name: "bad interval", args: []string{"-i", "abc"}, wantErr: true},
		{name: "negative confirmations", args: []string{"-n", "-1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			cfg.PollInterval = 1500 * time.Millisecond
			err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			want := defaults()
			want.PollInterval = 1500 * time.Millisecond
			tt.expected(want)
			assert.Empty(t, cmp.Diff(want, cfg))
		})
	}
}

func TestParseJson(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"rpc_url":               "http://json:8545",
		"chain_id":              1337,
		"confirmations":         4,
		"poll_interval":         "250ms",
		"online_check_interval": 3000000000,
		"log_level":             "error",
	})

	t.Run("overlays present fields only", func(t *testing.T) {
		cfg := defaults()
		require.NoError(t, parseJson(cfg, []string{"-config", path}))

		want := defaults()
		want.RPCURL = "http://json:8545"
		want.ChainID = 1337
		want.Confirmations = 4
		want.PollInterval = 250 * time.Millisecond
		want.OnlineCheckInterval = 3 * time.Second
		want.LogLevel = "error"
		assert.Empty(t, cmp.Diff(want, cfg))
	})

	t.Run("no config flag leaves config untouched", func(t *testing.T) {
		cfg := defaults()
		require.NoError(t, parseJson(cfg, []string{"-n", "2"}))
		assert.Empty(t, cmp.Diff(defaults(), cfg))
	})

	t.Run("missing file", func(t *testing.T) {
		err := parseJson(defaults(), []string{"-c", filepath.Join(t.TempDir(), "nope.json")})
		require.Error(t, err)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		require.Error(t, parseJson(defaults(), []string{"-c", bad}))
	})

	t.Run("bad duration", func(t *testing.T) {
		bad := writeTempJSON(t, map[string]any{"poll_interval": "often"})
		require.Error(t, parseJson(defaults(), []string{"-c", bad}))
	})
}

func TestParseEnv(t *testing.T) {
	dir := t.TempDir()
	dotenv := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte(
		"DIARY_RPC_URL=http://dotenv:8545\nDIARY_PRIVATE_KEY=abc123\nDIARY_CONFIRMATIONS=7\n"), 0o600))

	cfg := defaults()
	err := parseEnv(cfg, dotenv, envOf(map[string]string{
		EnvRPCURL:   "http://process:8545",
		EnvChainID:  "31337",
		EnvDatabase: "/tmp/d.db",
	}))
	require.NoError(t, err)

	assert.Equal(t, "http://process:8545", cfg.RPCURL, "process env wins over .env")
	assert.Equal(t, "abc123", cfg.PrivateKey)
	assert.Equal(t, uint64(7), cfg.Confirmations)
	assert.Equal(t, int64(31337), cfg.ChainID)
	assert.Equal(t, "/tmp/d.db", cfg.DatabasePath)
}

func TestParseEnv_MissingDotenvIsFine(t *testing.T) {
	cfg := defaults()
	require.NoError(t, parseEnv(cfg, filepath.Join(t.TempDir(), ".env"), noEnv))
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestParseEnv_BadNumbers(t *testing.T) {
	require.Error(t, parseEnv(defaults(), "", envOf(map[string]string{EnvChainID: "x"})))
	require.Error(t, parseEnv(defaults(), "", envOf(map[string]string{EnvConfirmations: "-2"})))
}

func TestLoad_Precedence(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"rpc_url":       "http://json:8545",
		"database_path": "json.db",
		"log_level":     "warn",
		"confirmations": 2,
	})

	cfg, err := load(
		[]string{"-c", path, "-d", "flag.db"},
		"",
		envOf(map[string]string{EnvDatabase: "env.db", EnvLogLevel: "debug"}),
	)
	require.NoError(t, err)

	assert.Equal(t, "http://json:8545", cfg.RPCURL, "json over defaults")
	assert.Equal(t, uint64(2), cfg.Confirmations)
	assert.Equal(t, "debug", cfg.LogLevel, "env over json")
	assert.Equal(t, "flag.db", cfg.DatabasePath, "flags over env")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad url", func(c *Config) { c.RPCURL = "not a url" }, "RPCURL"},
		{"bad address", func(c *Config) { c.ContractAddress = "0x123" }, "ContractAddress"},
		{"zero confirmations", func(c *Config) { c.Confirmations = 0 }, "Confirmations"},
		{"zero poll", func(c *Config) { c.PollInterval = 0 }, "PollInterval"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "LogLevel"},
		{"negative chain", func(c *Config) { c.ChainID = -1 }, "ChainID"},
		{"empty db", func(c *Config) { c.DatabasePath = "" }, "DatabasePath"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestLoad_InvalidResultFails(t *testing.T) {
	_, err := load([]string{"-l", "loud"}, "", noEnv)
	require.Error(t, err)
}
