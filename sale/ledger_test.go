package sale

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	walletA = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	walletB = common.HexToAddress("0x00000000000000000000000000000000000000a2")
)

func TestLedgerCreditAndTotal(t *testing.T) {
	l := newLedger()
	l.credit(walletA, big.NewInt(100))
	l.credit(walletA, big.NewInt(50))
	l.credit(walletB, big.NewInt(25))

	assert.Equal(t, "150", l.balanceOf(walletA).String())
	assert.Equal(t, "25", l.balanceOf(walletB).String())
	assert.Equal(t, "175", l.totalVested().String())
}

func TestLedgerDebit(t *testing.T) {
	l := newLedger()
	l.credit(walletA, big.NewInt(100))

	require.NoError(t, l.debit(walletA, big.NewInt(60)))
	assert.Equal(t, "40", l.balanceOf(walletA).String())
	assert.Equal(t, "40", l.totalVested().String())

	assert.ErrorIs(t, l.debit(walletA, big.NewInt(41)), ErrInsufficientClaim)
	assert.ErrorIs(t, l.debit(walletB, big.NewInt(1)), ErrInsufficientClaim)
}

func TestLedgerPrunesEmptyEntries(t *testing.T) {
	l := newLedger()
	l.credit(walletA, big.NewInt(10))
	require.NoError(t, l.debit(walletA, big.NewInt(10)))

	assert.Equal(t, "0", l.balanceOf(walletA).String())
	assert.Empty(t, l.locked)
	assert.Equal(t, "0", l.totalVested().String())
}

func TestLedgerCapCheck(t *testing.T) {
	l := newLedger()
	limit := big.NewInt(100)

	require.NoError(t, l.checkCap(walletA, big.NewInt(100), limit))
	l.credit(walletA, big.NewInt(80))

	require.NoError(t, l.checkCap(walletA, big.NewInt(20), limit))
	assert.ErrorIs(t, l.checkCap(walletA, big.NewInt(21), limit), ErrWalletLimitExceeded)

	// Releasing frees headroom.
	require.NoError(t, l.debit(walletA, big.NewInt(30)))
	require.NoError(t, l.checkCap(walletA, big.NewInt(50), limit))
}

func TestLedgerBalanceOfReturnsCopy(t *testing.T) {
	l := newLedger()
	l.credit(walletA, big.NewInt(10))

	l.balanceOf(walletA).SetInt64(999)
	assert.Equal(t, "10", l.balanceOf(walletA).String())
}
