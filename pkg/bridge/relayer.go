package bridge

import (
	"math/big"

	"github.com/omni-bridge/hub/pkg/chain"
)

// RelayerState is the hub's view of one staked relayer (§4.1.1): its
// staked amount, its activity flag, and — while winding down — the time
// its unbonding period clears.
type RelayerState struct {
	Account         chain.Address
	Stake           *big.Int
	Active          bool
	ApplicationTime int64 // unix nanos; set while staked but not yet active
	ActivateAtNanos int64 // ApplicationTime + waiting period
}

// IsActivatable reports whether the relayer's waiting period has elapsed
// as of nowNanos.
func (r RelayerState) IsActivatable(nowNanos int64) bool {
	return !r.Active && nowNanos >= r.ActivateAtNanos
}

// AccountStorage tracks the native-gas-coin balance an account has
// deposited on the hub to pay for its own storage (§4.1.2,
// "storage deposits"). Units are the hub's smallest native denomination.
type AccountStorage struct {
	Total     uint64
	Available uint64
}

// Deduct reserves n units of storage deposit, failing with
// KindInsufficientStorageDeposit if Available can't cover it.
func (s *AccountStorage) Deduct(n uint64) error {
	if s.Available < n {
		return New(KindInsufficientStorageDeposit, "have %d available, need %d", s.Available, n)
	}
	s.Available -= n
	return nil
}

// Release returns n units of previously-deducted storage deposit.
func (s *AccountStorage) Release(n uint64) {
	s.Available += n
	if s.Available > s.Total {
		s.Available = s.Total
	}
}

// PauseFlag is a single bit in the hub's pause bitmask (§4.1.2).
type PauseFlag uint32

const (
	PauseInitTransfer PauseFlag = 1 << iota
	PauseFinTransfer
	PauseSignTransfer
	PauseDeployToken
	PauseFastTransfer
	PauseAll = PauseInitTransfer | PauseFinTransfer | PauseSignTransfer | PauseDeployToken | PauseFastTransfer
)

// PauseMask tracks which operations are currently paused.
type PauseMask uint32

func (m PauseMask) IsPaused(f PauseFlag) bool { return uint32(m)&uint32(f) != 0 }
func (m *PauseMask) Set(f PauseFlag)           { *m |= PauseMask(f) }
func (m *PauseMask) Clear(f PauseFlag)         { *m &^= PauseMask(f) }
