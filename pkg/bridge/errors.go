// Package bridge holds the domain types shared by the ledger and the
// prover dispatch layer: transfer identifiers and messages, token
// bindings with decimal normalization, locked-balance accounting, fast
// transfers, relayer staking state, and the closed ProverResult sum type
// returned by every verifier (§3, §4.2).
package bridge

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of error kinds from §7. Every ledger and
// prover-dispatch failure carries one of these so callers can switch on
// kind rather than on error text.
type ErrorKind string

const (
	KindBorsh                     ErrorKind = "Borsh"
	KindUnknownFactory            ErrorKind = "UnknownFactory"
	KindInvalidFee                ErrorKind = "InvalidFee"
	KindInvalidProof              ErrorKind = "InvalidProof"
	KindInvalidProofMessage       ErrorKind = "InvalidProofMessage"
	KindTokenNotRegistered        ErrorKind = "TokenNotRegistered"
	KindTokenDecimalsNotFound     ErrorKind = "TokenDecimalsNotFound"
	KindInvalidAmountToTransfer   ErrorKind = "InvalidAmountToTransfer"
	KindInsufficientStorageDeposit ErrorKind = "InsufficientStorageDeposit"
	KindTransferNotExist          ErrorKind = "TransferNotExist"
	KindTransferAlreadyFinalised  ErrorKind = "TransferAlreadyFinalised"
	KindFastTransferAlreadyFilled ErrorKind = "FastTransferAlreadyFilled"
	KindFastTransferNotFound      ErrorKind = "FastTransferNotFound"
	KindRelayerApplicationExists  ErrorKind = "RelayerApplicationExists"
	KindRelayerInsufficientStake  ErrorKind = "RelayerInsufficientStake"
	KindRelayerNotRegistered      ErrorKind = "RelayerNotRegistered"
	KindRelayerAlreadyActive      ErrorKind = "RelayerAlreadyActive"
	KindNonceAlreadyUsed          ErrorKind = "NonceAlreadyUsed"
	KindSignatureVerificationFailed ErrorKind = "SignatureVerificationFailed"
	KindChainMismatch             ErrorKind = "ChainMismatch"
	KindUnsupportedChain          ErrorKind = "UnsupportedChain"
	KindPaused                    ErrorKind = "Paused"
	KindInvalidHexLength          ErrorKind = "InvalidHexLength"
	KindOverflow                  ErrorKind = "Overflow"
)

// Error wraps an ErrorKind with a human-readable message. Contract
// boundaries surface it as "ERR_<KIND>"; internal callers match on Kind
// via errors.As.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return "ERR_" + string(e.Kind)
	}
	return fmt.Sprintf("ERR_%s: %s", e.Kind, e.Msg)
}

// New builds an *Error for the given kind with a formatted message.
func New(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Is lets errors.Is(err, SentinelFor(kind)) work for simple kind checks,
// and also lets two *Error values of the same kind compare equal.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// SentinelFor returns a bare *Error carrying only a kind, suitable as the
// target of errors.Is.
func SentinelFor(kind ErrorKind) error {
	return &Error{Kind: kind}
}
