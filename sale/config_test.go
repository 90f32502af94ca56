package sale_test

import (
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kondyan2022/solar-green/sale"
)

func TestDefaultConfig(t *testing.T) {
	price := big.NewInt(50_000_000_000_000_000) // 0.05
	cfg := sale.DefaultConfig(price, 18)

	assert.Equal(t, price, cfg.Price)
	assert.Equal(t, "50000000000000000000000", cfg.WalletCap.String()) // 50,000 tokens
	assert.Equal(t, "1", cfg.MinimumUnit.String())
	assert.Equal(t, 5*7*24*time.Hour, cfg.SaleDuration())
	assert.Equal(t, 5*7*24*time.Hour, cfg.UnlockDelay())
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	base := sale.DefaultConfig(big.NewInt(100), 6)

	cfg := base
	cfg.Price = big.NewInt(0)
	assert.ErrorIs(t, cfg.Validate(), sale.ErrInvalidConfiguration)

	cfg = base
	cfg.Price = nil
	assert.ErrorIs(t, cfg.Validate(), sale.ErrInvalidConfiguration)

	cfg = base
	cfg.WalletCap = big.NewInt(-1)
	assert.ErrorIs(t, cfg.Validate(), sale.ErrInvalidConfiguration)

	cfg = base
	cfg.MinimumUnit = big.NewInt(0)
	assert.ErrorIs(t, cfg.Validate(), sale.ErrInvalidConfiguration)

	// The initial window may not undercut the grace period.
	cfg = base
	cfg.SaleDurationSecs = int64((4 * 7 * 24 * time.Hour) / time.Second)
	assert.ErrorIs(t, cfg.Validate(), sale.ErrInvalidSchedule)

	cfg = base
	cfg.UnlockDelaySecs = 0
	assert.ErrorIs(t, cfg.Validate(), sale.ErrInvalidSchedule)
}

func TestConfigSaveLoadRoundTrip(t *testing.T) {
	cfg := sale.DefaultConfig(big.NewInt(50_000_000_000_000_000), 18)
	path := filepath.Join(t.TempDir(), "sale.json")

	require.NoError(t, cfg.Save(path))

	loaded, err := sale.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Price, loaded.Price)
	assert.Equal(t, cfg.WalletCap, loaded.WalletCap)
	assert.Equal(t, cfg.MinimumUnit, loaded.MinimumUnit)
	assert.Equal(t, cfg.SaleDurationSecs, loaded.SaleDurationSecs)
	assert.Equal(t, cfg.UnlockDelaySecs, loaded.UnlockDelaySecs)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := sale.LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
