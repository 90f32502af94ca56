package token

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Bank is an in-memory native-currency ledger. It implements NativeLedger.
type Bank struct {
	mu       sync.RWMutex
	balances map[common.Address]*big.Int
}

// NewBank creates an empty native-currency ledger.
func NewBank() *Bank {
	return &Bank{balances: make(map[common.Address]*big.Int)}
}

// Deposit credits amount base units to account out of thin air. Meant for
// genesis funding and tests.
func (b *Bank) Deposit(account common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[account] = new(big.Int).Add(b.balance(account), amount)
}

// BalanceOf returns account's native balance.
func (b *Bank) BalanceOf(account common.Address) *big.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return new(big.Int).Set(b.balance(account))
}

// Transfer moves amount from one account to another.
func (b *Bank) Transfer(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	bal := b.balance(from)
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	b.balances[from] = new(big.Int).Sub(bal, amount)
	b.balances[to] = new(big.Int).Add(b.balance(to), amount)
	return nil
}

func (b *Bank) balance(account common.Address) *big.Int {
	if v, ok := b.balances[account]; ok {
		return v
	}
	return new(big.Int)
}
