// Package transfer drives the transfer state machine — init_transfer,
// sign_transfer, fin_transfer, and the fast-transfer fast path — on top
// of the hub ledger and the prover dispatch registry (§4.1, §4.3).
package transfer

import (
	"github.com/omni-bridge/hub/pkg/chain"
)

// Direction classifies what the hub must do to its own escrow accounting
// for a transfer between originChain and destChain, given whether the
// token being moved is native to originChain (§4.3, "direction matrix").
type Direction uint8

const (
	// DirLockEscrow: token is native to originChain moving outward for
	// the first time (or moving further away from its origin) — the hub
	// increases its locked balance for (originChain, token) and the
	// destination mints a wrapped representation.
	DirLockEscrow Direction = iota
	// DirUnlockEscrow: token is returning to its native chain — the hub
	// decreases its locked balance for (destChain, token) and the
	// wrapped representation is burned on originChain.
	DirUnlockEscrow
	// DirPassThrough: token is neither native to originChain nor to
	// destChain (a two-hop peripheral-to-peripheral transfer) — the
	// wrapped representation is burned on originChain and re-minted on
	// destChain with no change to the hub's locked balance, since the
	// true origin-chain lock is untouched.
	DirPassThrough
)

// Classify determines the Direction for a transfer of token from
// originChain to destChain, given the token's registered true origin.
func Classify(originChain, destChain, tokenOrigin chain.Kind) Direction {
	switch {
	case tokenOrigin == originChain:
		return DirLockEscrow
	case tokenOrigin == destChain:
		return DirUnlockEscrow
	default:
		return DirPassThrough
	}
}

// LockedAdjustment describes the ledger-level escrow bookkeeping a
// Direction requires. Chain/Sign are zero values for DirPassThrough.
type LockedAdjustment struct {
	Chain chain.Kind
	Add   bool // true: increase locked balance; false: decrease
}

// Adjustment returns the escrow adjustment implied by dir, or ok=false
// for DirPassThrough, which touches no locked balance.
func Adjustment(dir Direction, originChain, destChain chain.Kind) (LockedAdjustment, bool) {
	switch dir {
	case DirLockEscrow:
		return LockedAdjustment{Chain: originChain, Add: true}, true
	case DirUnlockEscrow:
		return LockedAdjustment{Chain: destChain, Add: false}, true
	default:
		return LockedAdjustment{}, false
	}
}

// UTXOPath reports whether a transfer bound for destChain must go
// through the UTXO connector rather than a standard EVM/Solana-style
// mint/unlock call (§4.3, "UTXO path").
func UTXOPath(destChain chain.Kind) bool {
	return destChain.IsUTXOChain()
}

// RevertLockAction undoes a speculative escrow adjustment applied before
// a destination-side failure was known, restoring the locked balance to
// what it was before the adjustment (§4.3, "revert_lock_actions").
func RevertLockAction(adj LockedAdjustment) LockedAdjustment {
	return LockedAdjustment{Chain: adj.Chain, Add: !adj.Add}
}
