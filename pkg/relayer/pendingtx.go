package relayer

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/omni-bridge/hub/pkg/ethereum"
)

// PendingTx tracks one submitted-but-unconfirmed EVM transaction so a
// bumper can escalate its gas price if it stalls (§4.4, "pending-tx
// bumping").
type PendingTx struct {
	Hash       common.Hash
	Nonce      uint64
	GasPrice   *big.Int
	SubmitTime time.Time
	Contract   common.Address
	Data       []byte
	GasLimit   uint64
}

// Bumper escalates the gas price of transactions that haven't confirmed
// within Stale, resubmitting with the same nonce so the replacement
// supersedes the original per standard EVM nonce-replacement rules.
type Bumper struct {
	Client     *ethereum.Client
	Stale      time.Duration
	BumpPct    int64 // e.g. 20 for a 20% bump per round
	MaxBumps   int
	Log        *zap.Logger
}

// Check inspects tx and, if it's older than Stale and still unconfirmed,
// returns a replacement with an escalated gas price. Returns ok=false
// when the transaction is still fresh or has already confirmed.
func (b *Bumper) Check(ctx context.Context, tx *PendingTx) (*PendingTx, bool, error) {
	if time.Since(tx.SubmitTime) < b.Stale {
		return nil, false, nil
	}

	receipt, err := b.Client.GetClient().TransactionReceipt(ctx, tx.Hash)
	if err == nil && receipt != nil {
		return nil, false, nil // confirmed, nothing to bump
	}

	bumped := new(big.Int).Set(tx.GasPrice)
	bumped.Mul(bumped, big.NewInt(100+b.BumpPct))
	bumped.Div(bumped, big.NewInt(100))

	return &PendingTx{
		Nonce:      tx.Nonce,
		GasPrice:   bumped,
		SubmitTime: tx.SubmitTime,
		Contract:   tx.Contract,
		Data:       tx.Data,
		GasLimit:   tx.GasLimit,
	}, true, nil
}

// Sign builds and signs the replacement transaction, ready for
// broadcast by the caller (which also owns the private key material).
func (b *Bumper) Sign(replacement *PendingTx, privateKeyHex string, chainID *big.Int) (*types.Transaction, error) {
	tx := types.NewTransaction(replacement.Nonce, replacement.Contract, big.NewInt(0), replacement.GasLimit, replacement.GasPrice, replacement.Data)
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, err
	}
	return types.SignTx(tx, types.NewEIP155Signer(chainID), privateKey)
}
