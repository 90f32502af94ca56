// Package feed provides the price-feed capability used for secondary-asset
// conversion. A rate is an integer with an implied number of fractional
// digits, the way Chainlink aggregators report answers.
package feed

import (
	"errors"
	"math/big"
	"sync"
)

// Errors.
var (
	ErrUnavailable = errors.New("rate unavailable")
	ErrInvalidRate = errors.New("invalid rate")
)

// RateFeed reports the latest conversion rate between the secondary asset and
// the native payment currency.
type RateFeed interface {
	// LatestRate returns the current rate and the number of implied
	// fractional digits.
	LatestRate() (rate *big.Int, decimals uint8, err error)
}

// Fixed is a RateFeed with a constant rate.
type Fixed struct {
	rate     *big.Int
	decimals uint8
}

// NewFixed creates a feed that always reports rate with decimals fractional
// digits.
func NewFixed(rate *big.Int, decimals uint8) *Fixed {
	return &Fixed{rate: new(big.Int).Set(rate), decimals: decimals}
}

// LatestRate implements RateFeed.
func (f *Fixed) LatestRate() (*big.Int, uint8, error) {
	if f.rate.Sign() <= 0 {
		return nil, 0, ErrInvalidRate
	}
	return new(big.Int).Set(f.rate), f.decimals, nil
}

// Settable is a RateFeed whose answer can be updated at runtime. It mirrors
// the mock aggregators used in contract test suites.
type Settable struct {
	mu       sync.RWMutex
	rate     *big.Int
	decimals uint8
}

// NewSettable creates a mutable feed with an initial answer.
func NewSettable(decimals uint8, initial *big.Int) *Settable {
	return &Settable{rate: new(big.Int).Set(initial), decimals: decimals}
}

// Set updates the reported rate.
func (s *Settable) Set(rate *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rate = new(big.Int).Set(rate)
}

// LatestRate implements RateFeed.
func (s *Settable) LatestRate() (*big.Int, uint8, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rate == nil || s.rate.Sign() <= 0 {
		return nil, 0, ErrInvalidRate
	}
	return new(big.Int).Set(s.rate), s.decimals, nil
}
