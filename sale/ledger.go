package sale

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ledger tracks each wallet's locked purchased balance and the aggregate of
// all outstanding claims. Invariant: total equals the sum of every entry.
// Callers hold the sale lock.
type ledger struct {
	locked map[common.Address]*big.Int
	total  *big.Int
}

func newLedger() *ledger {
	return &ledger{
		locked: make(map[common.Address]*big.Int),
		total:  new(big.Int),
	}
}

func (l *ledger) balanceOf(wallet common.Address) *big.Int {
	if b, ok := l.locked[wallet]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func (l *ledger) totalVested() *big.Int {
	return new(big.Int).Set(l.total)
}

// checkCap reports whether crediting amount would push the wallet past limit.
func (l *ledger) checkCap(wallet common.Address, amount, limit *big.Int) error {
	next := l.balanceOf(wallet)
	next.Add(next, amount)
	if next.Cmp(limit) > 0 {
		return ErrWalletLimitExceeded
	}
	return nil
}

func (l *ledger) credit(wallet common.Address, amount *big.Int) {
	l.locked[wallet] = new(big.Int).Add(l.balanceOf(wallet), amount)
	l.total.Add(l.total, amount)
}

func (l *ledger) debit(wallet common.Address, amount *big.Int) error {
	b := l.balanceOf(wallet)
	if b.Cmp(amount) < 0 {
		return ErrInsufficientClaim
	}
	b.Sub(b, amount)
	if b.Sign() == 0 {
		delete(l.locked, wallet)
	} else {
		l.locked[wallet] = b
	}
	l.total.Sub(l.total, amount)
	return nil
}
