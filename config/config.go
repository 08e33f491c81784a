package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the complete runtime configuration. Risk limits mirror the
// account policy; loop intervals drive the two schedulers.
type Config struct {
	Account  AccountConfig  `yaml:"account" validate:"required"`
	Risk     RiskConfig     `yaml:"risk" validate:"required"`
	Loops    LoopConfig     `yaml:"loops" validate:"required"`
	Exchange ExchangeConfig `yaml:"exchange"`
	Journal  JournalConfig  `yaml:"journal"`
	API      APIConfig      `yaml:"api"`
	Telegram TelegramConfig `yaml:"telegram"`
	Log      LogConfig      `yaml:"log"`
}

type AccountConfig struct {
	InitialCapital float64  `yaml:"initial_capital" validate:"gt=0"`
	Pairs          []string `yaml:"pairs" validate:"min=1,dive,required"`
}

type RiskConfig struct {
	RiskPerTrade   float64 `yaml:"risk_per_trade" validate:"gt=0,lte=0.1"`
	MaxPositions   int     `yaml:"max_positions" validate:"gte=1"`
	MaxDrawdown    float64 `yaml:"max_drawdown" validate:"gt=0,lt=1"`
	MaxExposurePct float64 `yaml:"max_exposure_pct" validate:"gt=0,lte=1"`
	MinConfidence  float64 `yaml:"min_confidence" validate:"gte=0,lte=100"`
	MinRiskReward  float64 `yaml:"min_risk_reward" validate:"gt=0"`
	MaxCorrelation float64 `yaml:"max_correlation" validate:"gt=0,lte=1"`
	MaxSlippageBps float64 `yaml:"max_slippage_bps" validate:"gt=0"`
	VarConfidence  float64 `yaml:"var_confidence" validate:"gt=0.5,lt=1"`

	MaxTradesPerDay     int     `yaml:"max_trades_per_day" validate:"gte=1"`
	ConsecutiveLossStop int     `yaml:"consecutive_loss_stop" validate:"gte=1"`
	TakerFee            float64 `yaml:"taker_fee" validate:"gte=0,lt=0.01"`
}

type LoopConfig struct {
	StrategyInterval  time.Duration `yaml:"strategy_interval" validate:"gt=0"`
	ExecutionInterval time.Duration `yaml:"execution_interval" validate:"gt=0"`
	DecisionTTL       time.Duration `yaml:"decision_ttl" validate:"gt=0"`
	EntryRetries      int           `yaml:"entry_retries" validate:"gte=1"`
}

type ExchangeConfig struct {
	// Mode selects the connector: "paper" or "binance".
	Mode      string `yaml:"mode" validate:"oneof=paper binance"`
	BaseURL   string `yaml:"base_url"`
	StreamURL string `yaml:"stream_url"`
	// APIKey/SecretKey are taken from the environment, never the file.
	APIKey    string `yaml:"-"`
	SecretKey string `yaml:"-"`

	RequestTimeout time.Duration `yaml:"request_timeout"`
	RequestsPerSec int           `yaml:"requests_per_sec"`
}

type JournalConfig struct {
	DBPath string `yaml:"db_path" validate:"required"`
}

type APIConfig struct {
	Addr string `yaml:"addr"`
}

type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	ChatID  int64  `yaml:"chat_id"`
	Token   string `yaml:"-"` // RISKGATE_TELEGRAM_TOKEN
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// Default returns a configuration with the stock risk limits.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			InitialCapital: 10_000,
			Pairs:          []string{"BTC/USDT", "ETH/USDT"},
		},
		Risk: RiskConfig{
			RiskPerTrade:        0.02,
			MaxPositions:        3,
			MaxDrawdown:         0.20,
			MaxExposurePct:      0.60,
			MinConfidence:       60,
			MinRiskReward:       2.0,
			MaxCorrelation:      0.7,
			MaxSlippageBps:      50,
			VarConfidence:       0.95,
			MaxTradesPerDay:     8,
			ConsecutiveLossStop: 3,
			TakerFee:            0.0004,
		},
		Loops: LoopConfig{
			StrategyInterval:  30 * time.Minute,
			ExecutionInterval: 10 * time.Second,
			DecisionTTL:       5 * time.Minute,
			EntryRetries:      3,
		},
		Exchange: ExchangeConfig{
			Mode:           "paper",
			BaseURL:        "https://fapi.binance.com",
			StreamURL:      "wss://fstream.binance.com/ws",
			RequestTimeout: 15 * time.Second,
			RequestsPerSec: 5,
		},
		Journal: JournalConfig{DBPath: "./riskgate.sqlite"},
		API:     APIConfig{Addr: ":8080"},
		Log:     LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads a YAML config file over the defaults, applies environment
// secrets, and validates the result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.Exchange.APIKey = os.Getenv("RISKGATE_API_KEY")
	cfg.Exchange.SecretKey = os.Getenv("RISKGATE_SECRET_KEY")
	cfg.Telegram.Token = os.Getenv("RISKGATE_TELEGRAM_TOKEN")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks struct tags plus the cross-field rules validator
// cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	for _, p := range c.Account.Pairs {
		if !strings.Contains(p, "/") {
			return fmt.Errorf("pair %q must be BASE/QUOTE form", p)
		}
	}
	if c.Loops.ExecutionInterval >= c.Loops.StrategyInterval {
		return fmt.Errorf("execution_interval must be shorter than strategy_interval")
	}
	if c.Exchange.Mode == "binance" && c.Exchange.APIKey == "" {
		return fmt.Errorf("RISKGATE_API_KEY required in binance mode")
	}
	if c.Telegram.Enabled && c.Telegram.Token == "" {
		return fmt.Errorf("RISKGATE_TELEGRAM_TOKEN required when telegram is enabled")
	}
	return nil
}
