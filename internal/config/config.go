// Package config loads the bot configuration from YAML with environment
// credential overlay and validation.
package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/momentum-bot/internal/exchange"
	"github.com/rxtech-lab/momentum-bot/pkg/errors"
)

// Config is the complete bot configuration. All durations are expressed in
// seconds in the YAML file.
type Config struct {
	Binance exchange.BinanceConfig `yaml:"binance"`

	Trading TradingConfig `yaml:"trading"`
	Scan    ScanConfig    `yaml:"scan"`
	Signal  SignalConfig  `yaml:"signal"`
	Journal JournalConfig `yaml:"journal"`
	Server  ServerConfig  `yaml:"server"`
}

// TradingConfig holds sizing and exit parameters.
type TradingConfig struct {
	QuoteAsset string `yaml:"quote_asset" validate:"required"`
	// EntryFraction is the share of the free quote balance spent per entry.
	EntryFraction float64 `yaml:"entry_fraction" validate:"gt=0,lte=1"`
	MinNotional   float64 `yaml:"min_notional" validate:"gt=0"`
	// TakeProfitPct and StopLossPct are fractional offsets from the entry
	// price, e.g. 0.035 for 3.5%.
	TakeProfitPct   float64 `yaml:"take_profit_pct" validate:"gt=0"`
	StopLossPct     float64 `yaml:"stop_loss_pct" validate:"gt=0,lt=1"`
	StopLimitBuffer float64 `yaml:"stop_limit_buffer" validate:"gte=0,lt=1"`
	// SettleDelaySeconds is the wait before the post-buy balance read when
	// the buy response carries no fill price.
	SettleDelaySeconds int `yaml:"settle_delay_seconds" validate:"gte=0"`
}

// ScanConfig holds universe selection and loop timing.
type ScanConfig struct {
	IntervalSeconds int      `yaml:"interval_seconds" validate:"gt=0"`
	MaxSymbols      int      `yaml:"max_symbols" validate:"gt=0"`
	CandleInterval  string   `yaml:"candle_interval" validate:"required"`
	CandleLimit     int      `yaml:"candle_limit" validate:"gt=0"`
	MinCandles      int      `yaml:"min_candles" validate:"gt=0"`
	ExcludedAssets  []string `yaml:"excluded_assets"`
}

// SignalConfig holds the indicator parameters of the entry rule.
type SignalConfig struct {
	EMAFastPeriod  int     `yaml:"ema_fast_period" validate:"gt=0"`
	EMASlowPeriod  int     `yaml:"ema_slow_period" validate:"gt=0,gtfield=EMAFastPeriod"`
	RSIPeriod      int     `yaml:"rsi_period" validate:"gt=0"`
	RSILower       float64 `yaml:"rsi_lower" validate:"gte=0"`
	RSIUpper       float64 `yaml:"rsi_upper" validate:"gt=0,lte=100,gtfield=RSILower"`
	VolumeLookback int     `yaml:"volume_lookback" validate:"gt=0"`
}

// JournalConfig locates the trade journal database.
type JournalConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// ServerConfig holds the HTTP listen address.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// DefaultConfig returns the stock configuration: 5m candles scanned every
// 90s over the top 40 USDT pairs, 90% entries, TP 3.5% / SL 2.5% with a
// 0.1% stop-limit buffer, and the usual stablecoin exclusions.
func DefaultConfig() Config {
	return Config{
		Trading: TradingConfig{
			QuoteAsset:         "USDT",
			EntryFraction:      0.9,
			MinNotional:        10,
			TakeProfitPct:      0.035,
			StopLossPct:        0.025,
			StopLimitBuffer:    0.001,
			SettleDelaySeconds: 3,
		},
		Scan: ScanConfig{
			IntervalSeconds: 90,
			MaxSymbols:      40,
			CandleInterval:  "5m",
			CandleLimit:     100,
			MinCandles:      50,
			ExcludedAssets:  []string{"USDC", "BUSD", "FDUSD", "TUSD", "DAI"},
		},
		Signal: SignalConfig{
			EMAFastPeriod:  9,
			EMASlowPeriod:  21,
			RSIPeriod:      14,
			RSILower:       45,
			RSIUpper:       60,
			VolumeLookback: 20,
		},
		Journal: JournalConfig{
			Path: "trades.duckdb",
		},
		Server: ServerConfig{
			Addr: ":3000",
		},
	}
}

// Load builds the configuration: .env file (if present), then the YAML file
// at path (if non-empty), then environment credential overlay, on top of the
// defaults. The result is validated before being returned.
func Load(path string) (Config, error) {
	// Missing .env is fine; explicit env vars still apply.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config file %s", path)
		}
	}

	// Credentials never live in the YAML file checked into a repo; the
	// environment wins when set.
	if key := os.Getenv("BINANCE_API_KEY"); key != "" {
		cfg.Binance.APIKey = key
	}

	if secret := os.Getenv("BINANCE_API_SECRET"); secret != "" {
		cfg.Binance.SecretKey = secret
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the whole configuration tree.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	return c.Binance.Validate()
}

// SettleDelay returns the settle delay as a duration.
func (c TradingConfig) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelaySeconds) * time.Second
}

// Interval returns the scan pause as a duration.
func (c ScanConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}
