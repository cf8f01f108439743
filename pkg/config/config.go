package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the relayer/hub process, one field
// block per concern, populated from environment variables and an
// optional TOML file.
type Config struct {
	// Per-chain RPC endpoints, keyed by the chain.Kind string (eth, base,
	// arb, bnb, pol, sol, btc, zcash).
	ChainRPCURLs map[string]string

	// Bridge factory/program contract address per chain.
	BridgeContracts map[string]string

	// Relayer hot-wallet private key, hex-encoded, no 0x prefix required.
	RelayerPrivateKey string

	// WormholeAPIURL is the guardian network's signed-VAA fetch endpoint.
	WormholeAPIURL string

	// FeeDiscountBps lets the indexer quote a discounted native fee to
	// compete with other relayers, in basis points off the FeeOracle's
	// computed requirement.
	FeeDiscountBps int64

	// Redis backs the durable work queue.
	RedisAddr string
	RedisDB   int

	// KV backs the hub ledger (pluggable cometbft-db backend name: goleveldb,
	// badger, memdb).
	KVBackend string
	KVDataDir string

	// Confirmations is the number of blocks an indexer waits before
	// treating a log as final, per chain.
	Confirmations map[string]int64

	ListenAddr  string
	MetricsAddr string
	LogLevel    string

	PollInterval time.Duration
	StaleTxAfter time.Duration
	BumpPercent  int64
	MaxBumps     int
}

// Load reads configuration from environment variables (prefixed
// OMNIBRIDGE_) and, if present, a bridge.toml file in the working
// directory or path given by configFile.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("OMNIBRIDGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigName("bridge")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	v.SetDefault("redis_addr", "127.0.0.1:6379")
	v.SetDefault("redis_db", 0)
	v.SetDefault("kv_backend", "goleveldb")
	v.SetDefault("kv_data_dir", "./data/hub")
	v.SetDefault("listen_addr", "0.0.0.0:8090")
	v.SetDefault("metrics_addr", "0.0.0.0:9090")
	v.SetDefault("log_level", "info")
	v.SetDefault("poll_interval", "5s")
	v.SetDefault("stale_tx_after", "2m")
	v.SetDefault("bump_percent", 20)
	v.SetDefault("max_bumps", 5)
	v.SetDefault("fee_discount_bps", 0)

	cfg := &Config{
		ChainRPCURLs:      v.GetStringMapString("chain_rpc_urls"),
		BridgeContracts:   v.GetStringMapString("bridge_contracts"),
		RelayerPrivateKey: v.GetString("relayer_private_key"),
		WormholeAPIURL:    v.GetString("wormhole_api_url"),
		FeeDiscountBps:    v.GetInt64("fee_discount_bps"),
		RedisAddr:         v.GetString("redis_addr"),
		RedisDB:           v.GetInt("redis_db"),
		KVBackend:         v.GetString("kv_backend"),
		KVDataDir:         v.GetString("kv_data_dir"),
		Confirmations:     parseIntMap(v.GetStringMap("confirmations")),
		ListenAddr:        v.GetString("listen_addr"),
		MetricsAddr:       v.GetString("metrics_addr"),
		LogLevel:          v.GetString("log_level"),
		PollInterval:      v.GetDuration("poll_interval"),
		StaleTxAfter:      v.GetDuration("stale_tx_after"),
		BumpPercent:       v.GetInt64("bump_percent"),
		MaxBumps:          v.GetInt("max_bumps"),
	}

	return cfg, nil
}

func parseIntMap(raw map[string]interface{}) map[string]int64 {
	out := make(map[string]int64, len(raw))
	for k, val := range raw {
		switch n := val.(type) {
		case int64:
			out[k] = n
		case int:
			out[k] = int64(n)
		case float64:
			out[k] = int64(n)
		}
	}
	return out
}

// Validate checks that all configuration required to run the relayer is
// present, returning a list of problems joined into one error.
func (c *Config) Validate() error {
	var errs []string

	if c.RelayerPrivateKey == "" {
		errs = append(errs, "relayer private key is required")
	}
	if len(c.ChainRPCURLs) == 0 {
		errs = append(errs, "at least one chain RPC URL is required")
	}
	if len(c.BridgeContracts) == 0 {
		errs = append(errs, "at least one bridge contract address is required")
	}
	if c.RedisAddr == "" {
		errs = append(errs, "redis address is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Exit codes used by cmd/relayer and cmd/hubsim: 0 clean shutdown, 1
// configuration/startup failure, 2 runtime failure after startup.
const (
	ExitOK   = 0
	ExitConfig = 1
	ExitRuntime = 2
)
