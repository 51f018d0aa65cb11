// Package config loads runtime configuration for the diary CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables (DIARY_*), with an optional .env file in the
//     working directory filling in anything the process environment lacks.
//  4. Command-line flags.
//
// Supported flags
//
//	-r string   JSON-RPC endpoint of the ledger node
//	-k string   diary contract address
//	-s string   encrypted keystore file
//	-n int      confirmations required for finality
//	-i int      finality poll interval (seconds)
//	-d string   local cache database path
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
// Intervals use timex.Duration, so they may be strings like "3s" or integer
// nanoseconds:
//
//	{
//	  "rpc_url": "http://127.0.0.1:8545",
//	  "contract_address": "0xde65b2b24558ef18b923d31e9e6be966b9e3b0bd",
//	  "chain_id": 1337,
//	  "keystore_path": "~/.diary/key.json",
//	  "confirmations": 2,
//	  "poll_interval": "2s",
//	  "online_check_interval": "5s",
//	  "database_path": "diary.db",
//	  "log_level": "info"
//	}
//
// The private key is read only from DIARY_PRIVATE_KEY.
package config
