package sale

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"time"
)

const (
	// MinimumNotice is the shortest distance into the future the owner may
	// move the sale end time.
	MinimumNotice = 10 * time.Minute

	// graceWindow is the minimum initial sale duration.
	graceWindow = 5 * 7 * 24 * time.Hour

	defaultWalletCapUnits = 50_000
)

// Config holds the owner-controlled sale parameters. Price is denominated in
// payment base units per one whole sale token; WalletCap and MinimumUnit are
// sale-token base units. Durations are measured from construction time.
type Config struct {
	Price            *big.Int `json:"price"`
	WalletCap        *big.Int `json:"walletCap"`
	MinimumUnit      *big.Int `json:"minimumUnit,omitempty"`
	SaleDurationSecs int64    `json:"saleDurationSecs"`
	UnlockDelaySecs  int64    `json:"unlockDelaySecs"`
}

// DefaultConfig returns the reference deployment parameters for a token with
// the given precision: 5-week sale window and vesting lock, 50,000-token
// wallet cap, one base unit minimum purchase.
func DefaultConfig(price *big.Int, tokenDecimals uint8) Config {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(tokenDecimals)), nil)
	return Config{
		Price:            new(big.Int).Set(price),
		WalletCap:        new(big.Int).Mul(big.NewInt(defaultWalletCapUnits), scale),
		MinimumUnit:      big.NewInt(1),
		SaleDurationSecs: int64(graceWindow / time.Second),
		UnlockDelaySecs:  int64(graceWindow / time.Second),
	}
}

// SaleDuration returns the initial sale window length.
func (c *Config) SaleDuration() time.Duration {
	return time.Duration(c.SaleDurationSecs) * time.Second
}

// UnlockDelay returns the vesting lock length.
func (c *Config) UnlockDelay() time.Duration {
	return time.Duration(c.UnlockDelaySecs) * time.Second
}

// Validate checks the configuration for a new sale.
func (c *Config) Validate() error {
	if c.Price == nil || c.Price.Sign() <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrInvalidConfiguration)
	}
	if c.WalletCap == nil || c.WalletCap.Sign() <= 0 {
		return fmt.Errorf("%w: wallet cap must be positive", ErrInvalidConfiguration)
	}
	if c.MinimumUnit != nil && c.MinimumUnit.Sign() <= 0 {
		return fmt.Errorf("%w: minimum unit must be positive", ErrInvalidConfiguration)
	}
	if c.SaleDuration() < graceWindow {
		return fmt.Errorf("%w: sale must stay open at least %s", ErrInvalidSchedule, graceWindow)
	}
	if c.UnlockDelaySecs <= 0 {
		return fmt.Errorf("%w: unlock delay must be positive", ErrInvalidSchedule)
	}
	return nil
}

// LoadConfig reads a Config from a JSON file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes the config to a JSON file.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
