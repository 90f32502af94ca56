package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Asset is the fungible-asset capability consumed by the sale engine.
// Implementations may reject a transfer for their own reasons (for example a
// blacklisted counterparty); callers must treat any returned error as a
// failure of the whole operation.
type Asset interface {
	// Decimals returns the number of fractional digits of one whole unit.
	Decimals() uint8
	// BalanceOf returns the balance of account in base units.
	BalanceOf(account common.Address) *big.Int
	// Transfer moves amount base units from sender to recipient.
	Transfer(sender, to common.Address, amount *big.Int) error
	// TransferFrom moves amount base units from owner to recipient on behalf
	// of spender, consuming spender's allowance.
	TransferFrom(spender, owner, to common.Address, amount *big.Int) error
}

// NativeLedger is the native-currency capability: plain balances and
// transfers, no allowance concept.
type NativeLedger interface {
	BalanceOf(account common.Address) *big.Int
	Transfer(from, to common.Address, amount *big.Int) error
}
