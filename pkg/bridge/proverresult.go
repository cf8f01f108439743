package bridge

import (
	"math/big"

	"github.com/omni-bridge/hub/pkg/chain"
)

// ProverId names which verifier produced a ProverResult, so the ledger
// can check it against the prover registered for the claimed origin
// chain (§4.1, "provers").
type ProverId string

// ProverResultKind is the closed set of proof shapes a verifier can
// normalize into (§4.2).
type ProverResultKind uint8

const (
	ProverResultInitTransfer ProverResultKind = iota
	ProverResultFinTransfer
	ProverResultDeployToken
	ProverResultLogMetadata
	ProverResultBtcFinTransfer
)

// InitTransferResult is what a verifier extracts from an origin-chain
// init_transfer log, before the ledger assigns it a TransferId.
type InitTransferResult struct {
	OriginChain chain.Kind
	OriginNonce uint64
	Token       chain.Address
	Amount      *big.Int
	Fee         Fee
	Sender      chain.Address
	Recipient   chain.Address
	Msg         string
}

// FinTransferResult is what a verifier extracts from a destination-chain
// fin_transfer log, used to mark a transfer claimed.
type FinTransferResult struct {
	OriginChain  chain.Kind
	OriginNonce  uint64
	Token        chain.Address
	Amount       *big.Int
	Recipient    chain.Address
	FeeRecipient chain.Address
}

// DeployTokenResult is what a verifier extracts from a destination-chain
// deploy_token log.
type DeployTokenResult struct {
	TokenID   TokenID
	Chain     chain.Kind
	Address   chain.Address
	Decimals  uint8
}

// LogMetadataResult is what a verifier extracts from a log_metadata
// event, used to (re)bind a token's name/symbol/decimals.
type LogMetadataResult struct {
	TokenID  TokenID
	Chain    chain.Kind
	Name     string
	Symbol   string
	Decimals uint8
}

// BtcFinTransferResult is the UTXO-chain analogue of FinTransferResult:
// UTXO chains have no event log, so the verifier reports the spending
// transaction's (reversed, display-order) hash instead of a recipient
// address.
type BtcFinTransferResult struct {
	Chain     chain.Kind
	TxHashBE  [32]byte // big-endian / display order, as UTXO explorers show it
	TransferId TransferId
}

// ProverResult is the closed tagged union every verifier returns: exactly
// one of the typed fields is non-nil, selected by Kind (§4.2). Using an
// explicit struct of optional pointers — rather than an interface — keeps
// the ledger's switch over Kind exhaustive and keeps the type Borsh-
// encodable symmetrically with how it was decoded.
type ProverResult struct {
	Kind ProverResultKind
	Prover ProverId

	InitTransfer   *InitTransferResult
	FinTransfer    *FinTransferResult
	DeployToken    *DeployTokenResult
	LogMetadata    *LogMetadataResult
	BtcFinTransfer *BtcFinTransferResult
}
