package sale

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Payment methods recorded on receipts.
const (
	PayNative    = "native"
	PaySecondary = "secondary"
)

// Receipt records one successful purchase.
type Receipt struct {
	ID     string
	Buyer  common.Address
	Method string
	Paid   *big.Int // payment base units (native or normalized secondary)
	Tokens *big.Int // sale-token base units vested
	At     time.Time
}

// journal is the append-only record of purchases. Callers hold the sale lock.
type journal struct {
	entries []Receipt
}

func (j *journal) append(buyer common.Address, method string, paid, tokens *big.Int, at time.Time) Receipt {
	r := Receipt{
		ID:     uuid.NewString(),
		Buyer:  buyer,
		Method: method,
		Paid:   new(big.Int).Set(paid),
		Tokens: new(big.Int).Set(tokens),
		At:     at,
	}
	j.entries = append(j.entries, r)
	return r
}

func (j *journal) list() []Receipt {
	out := make([]Receipt, len(j.entries))
	for i, e := range j.entries {
		out[i] = e
		out[i].Paid = new(big.Int).Set(e.Paid)
		out[i].Tokens = new(big.Int).Set(e.Tokens)
	}
	return out
}
