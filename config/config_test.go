package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "riskgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
account:
  initial_capital: 25000
  pairs: ["SOL/USDT"]
risk:
  max_drawdown: 0.15
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 25_000.0, cfg.Account.InitialCapital)
	assert.Equal(t, []string{"SOL/USDT"}, cfg.Account.Pairs)
	assert.Equal(t, 0.15, cfg.Risk.MaxDrawdown)
	// Untouched keys keep their defaults.
	assert.Equal(t, 0.02, cfg.Risk.RiskPerTrade)
	assert.Equal(t, 30*time.Minute, cfg.Loops.StrategyInterval)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("pair format", func(t *testing.T) {
		cfg := Default()
		cfg.Account.Pairs = []string{"BTCUSDT"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("execution interval must be shorter", func(t *testing.T) {
		cfg := Default()
		cfg.Loops.ExecutionInterval = cfg.Loops.StrategyInterval
		assert.Error(t, cfg.Validate())
	})

	t.Run("binance mode requires a key", func(t *testing.T) {
		cfg := Default()
		cfg.Exchange.Mode = "binance"
		cfg.Exchange.APIKey = ""
		assert.Error(t, cfg.Validate())

		cfg.Exchange.APIKey = "k"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("telegram requires a token when enabled", func(t *testing.T) {
		cfg := Default()
		cfg.Telegram.Enabled = true
		assert.Error(t, cfg.Validate())
	})

	t.Run("risk bounds", func(t *testing.T) {
		cfg := Default()
		cfg.Risk.RiskPerTrade = 0.5 // above the 10% ceiling
		assert.Error(t, cfg.Validate())
	})
}
