// Package access holds the ownership capability the sale engine uses to gate
// privileged operations. The engine only ever asks "is this caller the owner";
// how ownership is decided belongs to the host.
package access

import "github.com/ethereum/go-ethereum/common"

// Controller answers ownership queries for privileged operations.
type Controller interface {
	IsOwner(account common.Address) bool
}

// SingleOwner is a Controller with exactly one owner account.
type SingleOwner struct {
	owner common.Address
}

// NewSingleOwner creates a Controller that recognizes only owner.
func NewSingleOwner(owner common.Address) *SingleOwner {
	return &SingleOwner{owner: owner}
}

// IsOwner reports whether account is the owner.
func (s *SingleOwner) IsOwner(account common.Address) bool {
	return account == s.owner
}
