package token

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Errors.
var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrMissingRole           = errors.New("missing required role")
	ErrSenderBlacklisted     = errors.New("sender blacklisted")
	ErrAddressBlacklisted    = errors.New("address blacklisted")
	ErrAlreadyBlacklisted    = errors.New("already blacklisted")
	ErrNotBlacklisted        = errors.New("not blacklisted")
	ErrBlacklisterProtected  = errors.New("unacceptable for BLACKLISTER")
	ErrAdminProtected        = errors.New("unacceptable for ADMIN")
	ErrInvalidAmount         = errors.New("invalid amount")
)

// Token is an in-memory fungible asset with role-gated mint/burn and an
// address blacklist. Mint, burn and burn-from require the admin role; the
// blacklist is managed by accounts holding the blacklister role. The deployer
// receives both roles and the initial supply.
type Token struct {
	mu sync.RWMutex

	name     string
	symbol   string
	decimals uint8

	totalSupply  *big.Int
	balances     map[common.Address]*big.Int
	allowances   map[common.Address]map[common.Address]*big.Int
	admins       map[common.Address]bool
	blacklisters map[common.Address]bool
	blacklist    map[common.Address]bool
}

// New creates a token and mints initialSupply base units to deployer.
func New(name, symbol string, decimals uint8, deployer common.Address, initialSupply *big.Int) *Token {
	t := &Token{
		name:         name,
		symbol:       symbol,
		decimals:     decimals,
		totalSupply:  new(big.Int),
		balances:     make(map[common.Address]*big.Int),
		allowances:   make(map[common.Address]map[common.Address]*big.Int),
		admins:       map[common.Address]bool{deployer: true},
		blacklisters: map[common.Address]bool{deployer: true},
		blacklist:    make(map[common.Address]bool),
	}
	if initialSupply != nil && initialSupply.Sign() > 0 {
		t.totalSupply.Set(initialSupply)
		t.balances[deployer] = new(big.Int).Set(initialSupply)
	}
	return t
}

// Name returns the token name.
func (t *Token) Name() string { return t.name }

// Symbol returns the token symbol.
func (t *Token) Symbol() string { return t.symbol }

// Decimals returns the number of fractional digits.
func (t *Token) Decimals() uint8 { return t.decimals }

// WithDecimals scales a whole-unit amount to base units.
func (t *Token) WithDecimals(units int64) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(t.decimals)), nil)
	return scale.Mul(scale, big.NewInt(units))
}

// TotalSupply returns the current total supply in base units.
func (t *Token) TotalSupply() *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(big.Int).Set(t.totalSupply)
}

// BalanceOf returns account's balance in base units.
func (t *Token) BalanceOf(account common.Address) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(big.Int).Set(t.balance(account))
}

// Allowance returns the amount spender may move out of owner's balance.
func (t *Token) Allowance(owner, spender common.Address) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(big.Int).Set(t.allowance(owner, spender))
}

// Approve lets spender move up to amount out of owner's balance.
func (t *Token) Approve(owner, spender common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.allowances[owner]
	if !ok {
		m = make(map[common.Address]*big.Int)
		t.allowances[owner] = m
	}
	m[spender] = new(big.Int).Set(amount)
	return nil
}

// Transfer moves amount from sender to recipient.
func (t *Token) Transfer(sender, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.blacklist[sender] {
		return ErrSenderBlacklisted
	}
	if t.blacklist[to] {
		return ErrAddressBlacklisted
	}
	return t.move(sender, to, amount)
}

// TransferFrom moves amount from owner to recipient on behalf of spender.
func (t *Token) TransferFrom(spender, owner, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.blacklist[spender] {
		return ErrSenderBlacklisted
	}
	if t.blacklist[owner] || t.blacklist[to] {
		return ErrAddressBlacklisted
	}
	if err := t.spendAllowance(owner, spender, amount); err != nil {
		return err
	}
	return t.move(owner, to, amount)
}

// Mint creates amount new base units for recipient. Admin only.
func (t *Token) Mint(caller, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.admins[caller] {
		return ErrMissingRole
	}
	if t.blacklist[to] {
		return ErrAddressBlacklisted
	}
	t.credit(to, amount)
	t.totalSupply.Add(t.totalSupply, amount)
	return nil
}

// Burn destroys amount base units from the caller's balance. Admin only.
func (t *Token) Burn(caller common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.admins[caller] {
		return ErrMissingRole
	}
	if err := t.debit(caller, amount); err != nil {
		return err
	}
	t.totalSupply.Sub(t.totalSupply, amount)
	return nil
}

// BurnFrom destroys amount base units from owner's balance, consuming the
// caller's allowance. Admin only.
func (t *Token) BurnFrom(caller, owner common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.admins[caller] {
		return ErrMissingRole
	}
	if t.blacklist[owner] {
		return ErrAddressBlacklisted
	}
	if err := t.spendAllowance(owner, caller, amount); err != nil {
		return err
	}
	if err := t.debit(owner, amount); err != nil {
		return err
	}
	t.totalSupply.Sub(t.totalSupply, amount)
	return nil
}

// IsAdmin reports whether account holds the admin role.
func (t *Token) IsAdmin(account common.Address) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.admins[account]
}

// IsBlacklister reports whether account holds the blacklister role.
func (t *Token) IsBlacklister(account common.Address) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.blacklisters[account]
}

// IsBlacklisted reports whether account is blacklisted.
func (t *Token) IsBlacklisted(account common.Address) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.blacklist[account]
}

// GrantBlacklister grants the blacklister role. Admin only; a blacklisted
// account cannot receive the role.
func (t *Token) GrantBlacklister(caller, account common.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.admins[caller] {
		return ErrMissingRole
	}
	if t.blacklist[account] {
		return ErrAddressBlacklisted
	}
	t.blacklisters[account] = true
	return nil
}

// RevokeBlacklister revokes the blacklister role. Admin only.
func (t *Token) RevokeBlacklister(caller, account common.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.admins[caller] {
		return ErrMissingRole
	}
	delete(t.blacklisters, account)
	return nil
}

// AddToBlacklist blocks account from sending and receiving. Blacklister only;
// role holders themselves cannot be blacklisted.
func (t *Token) AddToBlacklist(caller, account common.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.blacklisters[caller] {
		return ErrMissingRole
	}
	if t.blacklisters[account] {
		return ErrBlacklisterProtected
	}
	if t.admins[account] {
		return ErrAdminProtected
	}
	if t.blacklist[account] {
		return ErrAlreadyBlacklisted
	}
	t.blacklist[account] = true
	return nil
}

// RemoveFromBlacklist unblocks account. Blacklister only.
func (t *Token) RemoveFromBlacklist(caller, account common.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.blacklisters[caller] {
		return ErrMissingRole
	}
	if !t.blacklist[account] {
		return ErrNotBlacklisted
	}
	delete(t.blacklist, account)
	return nil
}

// --- internal ---

func (t *Token) balance(account common.Address) *big.Int {
	if b, ok := t.balances[account]; ok {
		return b
	}
	return new(big.Int)
}

func (t *Token) allowance(owner, spender common.Address) *big.Int {
	if m, ok := t.allowances[owner]; ok {
		if a, ok := m[spender]; ok {
			return a
		}
	}
	return new(big.Int)
}

func (t *Token) spendAllowance(owner, spender common.Address, amount *big.Int) error {
	a := t.allowance(owner, spender)
	if a.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	t.allowances[owner][spender] = new(big.Int).Sub(a, amount)
	return nil
}

func (t *Token) move(from, to common.Address, amount *big.Int) error {
	if err := t.debit(from, amount); err != nil {
		return err
	}
	t.credit(to, amount)
	return nil
}

func (t *Token) debit(account common.Address, amount *big.Int) error {
	b := t.balance(account)
	if b.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	t.balances[account] = new(big.Int).Sub(b, amount)
	return nil
}

func (t *Token) credit(account common.Address, amount *big.Int) {
	t.balances[account] = new(big.Int).Add(t.balance(account), amount)
}
