package ledger

import (
	"github.com/omni-bridge/hub/pkg/bridge"
	"github.com/omni-bridge/hub/pkg/chain"
)

// TransferStatus is a pending transfer's position in the state machine
// driven by init_transfer -> sign_transfer -> fin_transfer (§4.1).
type TransferStatus uint8

const (
	TransferPending TransferStatus = iota
	TransferSigned
	TransferFinalised
)

// TransferRecord is the ledger's persisted view of one transfer.
type TransferRecord struct {
	Id      bridge.TransferId
	Message bridge.TransferMessage
	Status  TransferStatus

	// SignedBy/SignedAt are populated once sign_transfer succeeds:
	// which prover produced the MPC/guardian signature this transfer
	// carries toward its destination chain.
	SignedBy bridge.ProverId

	// FinalisedOnChain/FinalisedTx are populated once fin_transfer is
	// observed on the destination chain.
	FinalisedOnChain chain.Kind
	FinalisedTx      string
}

// FastTransferRecord is the ledger's persisted view of one fast-transfer
// fill, keyed by its FastTransferId.
type FastTransferRecord struct {
	Id bridge.FastTransferId
	bridge.FastTransfer
}

// TokenRegistration is the hub's canonical record for one bridged token:
// its origin chain/address and every chain it has been deployed to
// (§3, §4.1 "bind_token"/"deploy_token").
type TokenRegistration struct {
	TokenID        bridge.TokenID
	OriginChain    chain.Kind
	OriginAddress  chain.Address
	OriginDecimals uint8
	Bindings       map[chain.Kind]bridge.TokenBinding
}

// RelayerRecord is the ledger's persisted view of one relayer's stake
// (§4.1.1).
type RelayerRecord struct {
	bridge.RelayerState
}

// AccountRecord is the ledger's persisted view of one account's storage
// deposit (§4.1.2).
type AccountRecord struct {
	Account chain.Address
	bridge.AccountStorage
}

// ProverBinding names which Verifier id the ledger trusts for proofs
// claiming to originate from a given chain (§4.1, "provers"). A chain may
// have more than one binding during a migration (e.g. both the legacy
// Wormhole path and the MPC path), so the ledger keeps a set.
type ProverBinding struct {
	Chain    chain.Kind
	ProverID bridge.ProverId
}
