// Package ledger implements the hub ledger: the single-writer store of
// transfers, token bindings, locked balances, relayer stakes, account
// storage deposits, and registered provers that every bridge operation
// reads and updates (§4.1, §6.4).
package ledger

import "errors"

// Sentinel errors for ledger lookups that can legitimately miss.
var (
	ErrMetaNotFound       = errors.New("ledger: metadata not found")
	ErrTransferNotFound   = errors.New("ledger: transfer not found")
	ErrFastTransferNotFound = errors.New("ledger: fast transfer not found")
	ErrTokenNotFound      = errors.New("ledger: token binding not found")
	ErrRelayerNotFound    = errors.New("ledger: relayer not found")
	ErrAccountNotFound    = errors.New("ledger: account storage not found")
	ErrProverNotFound     = errors.New("ledger: prover not found")
)
