// Package sale implements a time-bounded token sale with vesting accounting.
// A fixed inventory of a fungible asset is sold for native currency or for a
// secondary asset converted through an external rate feed. Purchases are
// recorded as time-locked claims; the owner can adjust price and schedule and
// withdraw whatever is not committed to outstanding claims.
//
// Every state-mutating operation is serialized on one lock per sale instance
// and either commits fully or leaves no trace. Collaborators (assets, feed,
// access control) are capability interfaces and must not call back into the
// engine.
package sale

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/kondyan2022/solar-green/access"
	"github.com/kondyan2022/solar-green/feed"
	"github.com/kondyan2022/solar-green/token"
)

// Sale is one sale instance. Create it with New.
type Sale struct {
	mu sync.Mutex

	self      common.Address
	asset     token.Asset
	secondary token.Asset
	native    token.NativeLedger
	control   access.Controller
	rates     feed.RateFeed

	price       *big.Int
	walletCap   *big.Int
	minimumUnit *big.Int
	saleEnd     time.Time
	unlockAt    time.Time

	assetDecimals     uint8
	secondaryDecimals uint8

	ledger  *ledger
	journal *journal

	clock clockwork.Clock
	log   *zap.Logger
}

// Option configures a Sale.
type Option func(*Sale)

// WithClock sets the time source. Defaults to the real clock.
func WithClock(c clockwork.Clock) Option {
	return func(s *Sale) { s.clock = c }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Sale) { s.log = log }
}

// WithRateFeed sets the initial rate feed for secondary-asset purchases.
func WithRateFeed(f feed.RateFeed) Option {
	return func(s *Sale) { s.rates = f }
}

// New creates a sale for asset, paid in native currency through native or in
// secondary through a rate feed. self is the sale's own account: inventory is
// whatever sale-token balance that account holds. The sale window and the
// vesting unlock are placed cfg.SaleDuration and cfg.UnlockDelay from now;
// the unlock instant never moves afterwards.
func New(
	self common.Address,
	asset, secondary token.Asset,
	native token.NativeLedger,
	control access.Controller,
	cfg Config,
	opts ...Option,
) (*Sale, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if asset == nil || secondary == nil || native == nil || control == nil {
		return nil, fmt.Errorf("%w: missing collaborator", ErrInvalidConfiguration)
	}

	s := &Sale{
		self:              self,
		asset:             asset,
		secondary:         secondary,
		native:            native,
		control:           control,
		price:             new(big.Int).Set(cfg.Price),
		walletCap:         new(big.Int).Set(cfg.WalletCap),
		minimumUnit:       big.NewInt(1),
		assetDecimals:     asset.Decimals(),
		secondaryDecimals: secondary.Decimals(),
		ledger:            newLedger(),
		journal:           &journal{},
		clock:             clockwork.NewRealClock(),
		log:               zap.NewNop(),
	}
	if cfg.MinimumUnit != nil {
		s.minimumUnit = new(big.Int).Set(cfg.MinimumUnit)
	}
	for _, opt := range opts {
		opt(s)
	}

	now := s.clock.Now()
	s.saleEnd = now.Add(cfg.SaleDuration())
	s.unlockAt = now.Add(cfg.UnlockDelay())
	return s, nil
}

// --- purchases ---

// BuyWithNative sells tokens for payment base units of native currency pulled
// from payer. Returns the vested token amount.
func (s *Sale) BuyWithNative(payer common.Address, payment *big.Int) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isOpen() {
		return nil, ErrSaleClosed
	}
	if payment == nil || payment.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	tokens := tokensForNative(payment, s.price, s.assetDecimals)
	if err := s.admit(payer, tokens); err != nil {
		return nil, err
	}
	if err := s.native.Transfer(payer, s.self, payment); err != nil {
		if errors.Is(err, token.ErrInsufficientBalance) {
			return nil, fmt.Errorf("%w: %v", ErrInsufficientFunds, err)
		}
		return nil, err
	}
	s.commitPurchase(payer, PayNative, payment, tokens)
	return tokens, nil
}

// BuyWithSecondary sells tokens for rawAmount of the secondary asset, where
// rawAmount carries decimalsHint implied fractional digits. The normalized
// amount is pulled from payer via the asset's allowance; the token amount is
// derived from the latest feed rate. Returns the vested token amount.
func (s *Sale) BuyWithSecondary(payer common.Address, rawAmount *big.Int, decimalsHint uint8) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isOpen() {
		return nil, ErrSaleClosed
	}
	tokens, normalized, err := s.quoteSecondary(rawAmount, decimalsHint)
	if err != nil {
		return nil, err
	}
	if err := s.admit(payer, tokens); err != nil {
		return nil, err
	}
	if err := s.secondary.TransferFrom(s.self, payer, s.self, normalized); err != nil {
		switch {
		case errors.Is(err, token.ErrInsufficientAllowance):
			return nil, fmt.Errorf("%w: %v", ErrInsufficientAllowance, err)
		case errors.Is(err, token.ErrInsufficientBalance):
			return nil, fmt.Errorf("%w: %v", ErrInsufficientFunds, err)
		default:
			return nil, err
		}
	}
	s.commitPurchase(payer, PaySecondary, normalized, tokens)
	return tokens, nil
}

// admit runs the inventory and wallet-cap gates for a prospective purchase.
func (s *Sale) admit(wallet common.Address, tokens *big.Int) error {
	if tokens.Cmp(s.minimumUnit) < 0 {
		return ErrInvalidAmount
	}
	if tokens.Cmp(s.available()) > 0 {
		return ErrInsufficientInventory
	}
	return s.ledger.checkCap(wallet, tokens, s.walletCap)
}

func (s *Sale) commitPurchase(buyer common.Address, method string, paid, tokens *big.Int) {
	s.ledger.credit(buyer, tokens)
	r := s.journal.append(buyer, method, paid, tokens, s.clock.Now())
	s.log.Info("purchase recorded",
		zap.String("receipt", r.ID),
		zap.Stringer("buyer", buyer),
		zap.String("method", method),
		zap.String("paid", paid.String()),
		zap.String("tokens", tokens.String()),
	)
}

// --- vesting release ---

// Release transfers amount of wallet's unlocked claim to the wallet itself.
func (s *Sale) Release(wallet common.Address, amount *big.Int) error {
	return s.ReleaseTo(wallet, wallet, amount)
}

// ReleaseTo transfers amount of wallet's unlocked claim to destination. The
// claim is decremented only once the asset transfer has succeeded, so a
// rejected transfer (for example a blacklisted destination) loses nothing.
func (s *Sale) ReleaseTo(wallet, destination common.Address, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clock.Now().Before(s.unlockAt) {
		return ErrLockedPeriodActive
	}
	if destination == (common.Address{}) {
		return ErrInvalidDestination
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Cmp(s.ledger.balanceOf(wallet)) > 0 {
		return ErrInsufficientClaim
	}
	if err := s.asset.Transfer(s.self, destination, amount); err != nil {
		return err
	}
	if err := s.ledger.debit(wallet, amount); err != nil {
		return err
	}
	s.log.Info("claim released",
		zap.Stringer("wallet", wallet),
		zap.Stringer("destination", destination),
		zap.String("amount", amount.String()),
	)
	return nil
}

// --- withdrawals ---

type pool int

const (
	poolNative pool = iota
	poolToken
	poolSecondary
)

func (p pool) String() string {
	switch p {
	case poolNative:
		return "native"
	case poolToken:
		return "token"
	default:
		return "secondary"
	}
}

// WithdrawNative sends the sale's whole native balance to the caller.
func (s *Sale) WithdrawNative(caller common.Address) error {
	return s.withdrawAll(caller, poolNative)
}

// WithdrawNativeAmount sends amount of native currency to the caller.
func (s *Sale) WithdrawNativeAmount(caller common.Address, amount *big.Int) error {
	return s.withdraw(caller, caller, poolNative, amount)
}

// WithdrawNativeTo sends amount of native currency to an explicit recipient.
func (s *Sale) WithdrawNativeTo(caller, to common.Address, amount *big.Int) error {
	return s.withdraw(caller, to, poolNative, amount)
}

// WithdrawToken sends the sale's whole free (non-vested) token inventory to
// the caller.
func (s *Sale) WithdrawToken(caller common.Address) error {
	return s.withdrawAll(caller, poolToken)
}

// WithdrawTokenAmount sends amount of free token inventory to the caller.
func (s *Sale) WithdrawTokenAmount(caller common.Address, amount *big.Int) error {
	return s.withdraw(caller, caller, poolToken, amount)
}

// WithdrawTokenTo sends amount of free token inventory to an explicit
// recipient.
func (s *Sale) WithdrawTokenTo(caller, to common.Address, amount *big.Int) error {
	return s.withdraw(caller, to, poolToken, amount)
}

// WithdrawSecondary sends the sale's whole secondary-asset balance to the
// caller.
func (s *Sale) WithdrawSecondary(caller common.Address) error {
	return s.withdrawAll(caller, poolSecondary)
}

// WithdrawSecondaryAmount sends amount of the secondary asset to the caller.
func (s *Sale) WithdrawSecondaryAmount(caller common.Address, amount *big.Int) error {
	return s.withdraw(caller, caller, poolSecondary, amount)
}

// WithdrawSecondaryTo sends amount of the secondary asset to an explicit
// recipient.
func (s *Sale) WithdrawSecondaryTo(caller, to common.Address, amount *big.Int) error {
	return s.withdraw(caller, to, poolSecondary, amount)
}

func (s *Sale) withdrawAll(caller common.Address, p pool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.control.IsOwner(caller) {
		return ErrUnauthorized
	}
	free := s.freeBalance(p)
	if free.Sign() == 0 {
		return ErrNoFunds
	}
	return s.payOut(p, caller, free)
}

func (s *Sale) withdraw(caller, to common.Address, p pool, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.control.IsOwner(caller) {
		return ErrUnauthorized
	}
	if to == (common.Address{}) {
		return ErrInvalidDestination
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if amount.Cmp(s.freeBalance(p)) > 0 {
		return ErrInsufficientFunds
	}
	return s.payOut(p, to, amount)
}

// freeBalance is the amount of pool p not committed to buyer claims. Only
// sale tokens are ever vested, so the native and secondary pools are free in
// full.
func (s *Sale) freeBalance(p pool) *big.Int {
	switch p {
	case poolNative:
		return s.native.BalanceOf(s.self)
	case poolToken:
		return s.available()
	default:
		return s.secondary.BalanceOf(s.self)
	}
}

func (s *Sale) payOut(p pool, to common.Address, amount *big.Int) error {
	var err error
	switch p {
	case poolNative:
		err = s.native.Transfer(s.self, to, amount)
	case poolToken:
		err = s.asset.Transfer(s.self, to, amount)
	default:
		err = s.secondary.Transfer(s.self, to, amount)
	}
	if err != nil {
		return err
	}
	s.log.Info("withdrawal executed",
		zap.Stringer("pool", p),
		zap.Stringer("to", to),
		zap.String("amount", amount.String()),
	)
	return nil
}

// --- owner configuration ---

// SetPrice updates the sale price. Owner only; the price must stay positive.
func (s *Sale) SetPrice(caller common.Address, price *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.control.IsOwner(caller) {
		return ErrUnauthorized
	}
	if price == nil || price.Sign() <= 0 {
		return ErrInvalidConfiguration
	}
	s.price = new(big.Int).Set(price)
	s.log.Info("price updated", zap.String("price", price.String()))
	return nil
}

// SetSaleEndTime moves the end of the sale window. Owner only; the new end
// must be at least MinimumNotice away, and a closed sale cannot be reopened.
func (s *Sale) SetSaleEndTime(caller common.Address, end time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.control.IsOwner(caller) {
		return ErrUnauthorized
	}
	if !s.isOpen() {
		return ErrSaleClosed
	}
	if end.Before(s.clock.Now().Add(MinimumNotice)) {
		return ErrInvalidSchedule
	}
	s.saleEnd = end
	s.log.Info("sale end updated", zap.Time("end", end))
	return nil
}

// SetRateFeed swaps the rate feed used for secondary-asset conversion. Owner
// only.
func (s *Sale) SetRateFeed(caller common.Address, f feed.RateFeed) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.control.IsOwner(caller) {
		return ErrUnauthorized
	}
	if f == nil {
		return ErrInvalidConfiguration
	}
	s.rates = f
	s.log.Info("rate feed updated")
	return nil
}

// --- read accessors ---

// Price returns the current price in payment base units per whole token.
func (s *Sale) Price() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return new(big.Int).Set(s.price)
}

// WalletCap returns the per-wallet purchase cap in token base units.
func (s *Sale) WalletCap() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return new(big.Int).Set(s.walletCap)
}

// MinimumUnit returns the smallest purchasable token amount.
func (s *Sale) MinimumUnit() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return new(big.Int).Set(s.minimumUnit)
}

// SaleEndTime returns the end of the sale window.
func (s *Sale) SaleEndTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saleEnd
}

// UnlockTime returns the instant vested claims become releasable.
func (s *Sale) UnlockTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlockAt
}

// IsOpen reports whether purchases are currently admitted.
func (s *Sale) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isOpen()
}

// VestedBalanceOf returns wallet's outstanding locked claim.
func (s *Sale) VestedBalanceOf(wallet common.Address) *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.balanceOf(wallet)
}

// TotalVested returns the aggregate of all outstanding claims.
func (s *Sale) TotalVested() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.totalVested()
}

// Available returns the token inventory still for sale: the sale account's
// asset balance minus all outstanding claims. It is derived, never stored.
func (s *Sale) Available() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.available()
}

// NativeBalance returns the native currency held by the sale.
func (s *Sale) NativeBalance() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.native.BalanceOf(s.self)
}

// TokenBalance returns the sale-token balance held by the sale.
func (s *Sale) TokenBalance() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.asset.BalanceOf(s.self)
}

// SecondaryBalance returns the secondary-asset balance held by the sale.
func (s *Sale) SecondaryBalance() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.secondary.BalanceOf(s.self)
}

// Receipts returns a copy of the purchase journal.
func (s *Sale) Receipts() []Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.journal.list()
}

// QuoteNative returns the token amount a native payment would buy at the
// current price, without purchasing.
func (s *Sale) QuoteNative(payment *big.Int) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if payment == nil || payment.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	return tokensForNative(payment, s.price, s.assetDecimals), nil
}

// QuoteSecondary returns the token amount rawAmount of the secondary asset
// would buy at the latest feed rate, without purchasing.
func (s *Sale) QuoteSecondary(rawAmount *big.Int, decimalsHint uint8) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tokens, _, err := s.quoteSecondary(rawAmount, decimalsHint)
	return tokens, err
}

// SecondaryRate returns the token amount one whole secondary unit buys at the
// latest feed rate.
func (s *Sale) SecondaryRate() (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tokens, _, err := s.quoteSecondary(pow10(s.secondaryDecimals), s.secondaryDecimals)
	return tokens, err
}

// --- internal ---

func (s *Sale) isOpen() bool {
	return s.clock.Now().Before(s.saleEnd)
}

func (s *Sale) available() *big.Int {
	return new(big.Int).Sub(s.asset.BalanceOf(s.self), s.ledger.total)
}

func (s *Sale) quoteSecondary(rawAmount *big.Int, decimalsHint uint8) (tokens, normalized *big.Int, err error) {
	if rawAmount == nil || rawAmount.Sign() <= 0 {
		return nil, nil, ErrInvalidAmount
	}
	if s.rates == nil {
		return nil, nil, fmt.Errorf("%w: no rate feed configured", ErrInvalidConfiguration)
	}
	normalized = normalizeSecondary(rawAmount, decimalsHint, s.secondaryDecimals)
	if normalized.Sign() <= 0 {
		return nil, nil, ErrInvalidAmount
	}
	rate, rateDecimals, err := s.rates.LatestRate()
	if err != nil {
		return nil, nil, fmt.Errorf("fetching rate: %w", err)
	}
	tokens = tokensForSecondary(normalized, rate, s.price, s.assetDecimals, rateDecimals)
	return tokens, normalized, nil
}
