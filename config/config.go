package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full bot configuration.
type Config struct {
	Strategy StrategyConfig       `yaml:"strategy"`
	Tokens   map[string]TokenInfo `yaml:"tokens"`
	Exchange ExchangeConfig       `yaml:"exchange"`
	Chain    ChainConfig          `yaml:"chain"`
	Storage  StorageConfig        `yaml:"storage"`
	Log      LogConfig            `yaml:"log"`
}

// StrategyConfig selects the strategy variant and its parameters. A separate
// strategy instance is built per token, so history buffers are never shared.
type StrategyConfig struct {
	Name                  string  `yaml:"name"` // standard | aggressive | volume_adaptive | trend_following
	NOrders               int     `yaml:"n_orders"`
	Delta                 float64 `yaml:"delta"`
	OrderRefreshThreshold float64 `yaml:"order_refresh_threshold"`
	LoopIntervalSeconds   int     `yaml:"loop_interval"`
	HistorySize           int     `yaml:"history_size"`

	// aggressive
	MinDelta float64 `yaml:"min_delta"`
	MaxDelta float64 `yaml:"max_delta"`
	VolScale float64 `yaml:"vol_scale"`

	// volume_adaptive
	VolumeHighMult   float64 `yaml:"volume_high_mult"`
	VolumeLowMult    float64 `yaml:"volume_low_mult"`
	VolumeHighFactor float64 `yaml:"volume_high_factor"`
	VolumeLowFactor  float64 `yaml:"volume_low_factor"`

	// trend_following
	TrendWindow     int     `yaml:"trend_window"`
	TrendBand       float64 `yaml:"trend_band"`
	TrendMultiplier float64 `yaml:"trend_multiplier"`
}

// TokenInfo describes one tracked token pair and the wallet trading it.
type TokenInfo struct {
	PolicyID string `yaml:"policy_id"`
	Hexname  string `yaml:"hexname"`
	Amount   int64  `yaml:"amount"` // order size in token base units
	Decimals int    `yaml:"decimals"`

	// Wallet material is generated out of band; only the address and key
	// hashes are needed here, signing stays behind the ledger client.
	Address        string `yaml:"address"`
	PaymentKeyHash string `yaml:"payment_key_hash"`
	StakingKeyHash string `yaml:"staking_key_hash"`
}

// ExchangeConfig holds MuesliSwap API endpoints and contract constants.
type ExchangeConfig struct {
	APIBase         string `yaml:"api_base"`
	OnchainBase     string `yaml:"onchain_base"`
	ContractAddress string `yaml:"contract_address"`
	ScriptFile      string `yaml:"script_file"` // hex-encoded validator cbor
	MatchmakingFee  int64  `yaml:"matchmaking_fee"`
	Deposit         int64  `yaml:"deposit"`
	BaseDecimals    int    `yaml:"base_decimals"`
	AllowPartial    bool   `yaml:"allow_partial_match"`
	ExpiryBlocks    int64  `yaml:"order_timeout"` // blocks before an unseen order counts as expired
}

// ChainConfig holds the ledger-client endpoints.
type ChainConfig struct {
	BlockfrostBase    string `yaml:"blockfrost_base"`
	BlockfrostProject string `yaml:"blockfrost_project"` // usually set via BLOCKFROST_PROJECT_ID
	SignerURL         string `yaml:"signer_url"`         // build/sign/submit sidecar
	DisableTx         bool   `yaml:"disable_tx"`
}

// StorageConfig controls where local state is persisted.
type StorageConfig struct {
	OrdersDir    string `yaml:"orders_dir"`
	InventoryDir string `yaml:"inventory_dir"`
	HistoryDSN   string `yaml:"history_dsn"` // sqlite file, or ":memory:"
}

// LogConfig controls the log format and level.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load reads the YAML config file plus a .env file if present. Environment
// variables override the matching YAML keys.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if len(cfg.Tokens) == 0 {
		return nil, fmt.Errorf("config.Load: no tokens configured")
	}
	return &cfg, nil
}

// LoopInterval returns the sleep between full passes over all tokens.
func (c *Config) LoopInterval() time.Duration {
	return time.Duration(c.Strategy.LoopIntervalSeconds) * time.Second
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BLOCKFROST_PROJECT_ID"); v != "" {
		cfg.Chain.BlockfrostProject = v
	}
	if v := os.Getenv("SIGNER_URL"); v != "" {
		cfg.Chain.SignerURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func setDefaults(cfg *Config) {
	s := &cfg.Strategy
	if s.Name == "" {
		s.Name = "standard"
	}
	if s.NOrders <= 0 {
		s.NOrders = 3
	}
	if s.Delta <= 0 {
		s.Delta = 0.01
	}
	if s.OrderRefreshThreshold <= 0 {
		s.OrderRefreshThreshold = 0.05
	}
	if s.LoopIntervalSeconds <= 0 {
		s.LoopIntervalSeconds = 60
	}
	if s.HistorySize <= 0 {
		s.HistorySize = 64
	}
	if s.MinDelta <= 0 {
		s.MinDelta = s.Delta / 2
	}
	if s.MaxDelta <= 0 {
		s.MaxDelta = s.Delta * 4
	}
	if s.VolScale <= 0 {
		s.VolScale = 10
	}
	if s.VolumeHighMult <= 0 {
		s.VolumeHighMult = 2
	}
	if s.VolumeLowMult <= 0 {
		s.VolumeLowMult = 0.5
	}
	if s.VolumeHighFactor <= 0 {
		s.VolumeHighFactor = 1.5
	}
	if s.VolumeLowFactor <= 0 {
		s.VolumeLowFactor = 0.75
	}
	if s.TrendWindow <= 0 {
		s.TrendWindow = 20
	}
	if s.TrendBand <= 0 {
		s.TrendBand = 0.002
	}
	if s.TrendMultiplier <= 0 {
		s.TrendMultiplier = 2
	}

	e := &cfg.Exchange
	if e.APIBase == "" {
		e.APIBase = "https://api.muesliswap.com"
	}
	if e.OnchainBase == "" {
		e.OnchainBase = "https://onchain.muesliswap.com"
	}
	if e.MatchmakingFee <= 0 {
		e.MatchmakingFee = 950_000 // 0.95 ADA
	}
	if e.Deposit <= 0 {
		e.Deposit = 1_700_000 // 1.7 ADA
	}
	if e.BaseDecimals <= 0 {
		e.BaseDecimals = 6
	}
	if e.ExpiryBlocks <= 0 {
		e.ExpiryBlocks = 2
	}

	if cfg.Chain.BlockfrostBase == "" {
		cfg.Chain.BlockfrostBase = "https://cardano-mainnet.blockfrost.io/api/v0"
	}
	if cfg.Storage.OrdersDir == "" {
		cfg.Storage.OrdersDir = "orders"
	}
	if cfg.Storage.InventoryDir == "" {
		cfg.Storage.InventoryDir = "inventory"
	}
	if cfg.Storage.HistoryDSN == "" {
		cfg.Storage.HistoryDSN = "mueslibot.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
