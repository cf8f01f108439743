package bridge

import (
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/omni-bridge/hub/pkg/chain"
	"github.com/omni-bridge/hub/pkg/codec"
)

// FastTransferId identifies a fast-transfer fill request. It is derived
// from the same fields a relayer would otherwise have to wait for an
// init_transfer proof to confirm, so a relayer can match its own
// fronted payout against the eventual on-hub transfer (§3, "fast
// transfers").
type FastTransferId [32]byte

func (id FastTransferId) String() string { return codec.H256(id).String() }

// ComputeFastTransferId hashes the borsh-equivalent encoding of the
// fields a fast-transfer fill commits to: token, amount, recipient,
// the transfer id it will eventually match, and the transfer message.
func ComputeFastTransferId(token chain.Address, amount *big.Int, recipient chain.Address, id TransferId, msg string) FastTransferId {
	w := codec.NewWriter()
	w.String(token.String())
	w.U128(amount)
	w.String(recipient.String())
	w.String(id.OriginChain.String())
	w.U64(id.OriginNonce)
	w.String(msg)
	return FastTransferId(crypto.Keccak256Hash(w.Bytes()))
}

// FastTransferStatus is the fast-transfer fill's lifecycle (§3).
type FastTransferStatus uint8

const (
	// FastTransferUnfulfilled: nobody has fronted the recipient funds yet.
	FastTransferUnfulfilled FastTransferStatus = iota
	// FastTransferFilledBy: a relayer fronted the funds and is waiting to
	// be repaid once the slow path finalises.
	FastTransferFilledBy
	// FastTransferFinalised: the slow path confirmed and the filling
	// relayer has been repaid principal plus fee.
	FastTransferFinalised
)

// FastTransfer is the hub-side bookkeeping record for one fast-transfer
// fill.
type FastTransfer struct {
	Status    FastTransferStatus
	FilledBy  chain.Address // zero value when Unfulfilled
	Amount    *big.Int
	Fee       Fee
	Recipient chain.Address
}

// Fill transitions Unfulfilled -> FilledBy. Filling an already-filled or
// already-finalised transfer is a programming error surfaced as a typed
// bridge error, not a panic, since it can be triggered by a relayer race.
func (ft *FastTransfer) Fill(by chain.Address) error {
	if ft.Status != FastTransferUnfulfilled {
		return New(KindFastTransferAlreadyFilled, "fast transfer already has status %d", ft.Status)
	}
	ft.Status = FastTransferFilledBy
	ft.FilledBy = by
	return nil
}

// Finalise transitions FilledBy -> Finalised, returning the address to be
// repaid. Finalising directly from Unfulfilled pays the slow-path
// recipient instead of a relayer.
func (ft *FastTransfer) Finalise() (payTo chain.Address, err error) {
	switch ft.Status {
	case FastTransferFilledBy:
		ft.Status = FastTransferFinalised
		return ft.FilledBy, nil
	case FastTransferUnfulfilled:
		ft.Status = FastTransferFinalised
		return ft.Recipient, nil
	default:
		return chain.Address{}, New(KindFastTransferAlreadyFilled, "fast transfer already finalised")
	}
}
