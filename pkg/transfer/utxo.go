package transfer

import (
	"context"
	"math/big"

	"github.com/omni-bridge/hub/pkg/bridge"
	"github.com/omni-bridge/hub/pkg/chain"
)

// UTXOConnector abstracts the hub-side connector contract/service that
// assembles and broadcasts a BTC/Zcash spending transaction paying out a
// finalised transfer — UTXO chains have no smart-contract mint/unlock
// call, so the bridge has to construct and relay a raw transaction
// instead (§4.3, "UTXO path").
type UTXOConnector interface {
	SubmitPayout(ctx context.Context, destChain chain.Kind, recipient chain.Address, amount *big.Int, id bridge.TransferId) (txHashLE [32]byte, err error)
}

// SubmitToUTXOConnector dispatches a finalised transfer bound for a
// UTXO-model chain to the configured connector, instead of calling a
// destination contract directly.
func (c *Coordinator) SubmitToUTXOConnector(ctx context.Context, connector UTXOConnector, id bridge.TransferId) ([32]byte, error) {
	rec, err := c.Store.GetTransfer(id)
	if err != nil {
		return [32]byte{}, err
	}
	destChain := rec.Message.Recipient.Chain
	if !UTXOPath(destChain) {
		return [32]byte{}, bridge.New(bridge.KindUnsupportedChain, "transfer %s destination %s is not a UTXO chain", id, destChain)
	}
	return connector.SubmitPayout(ctx, destChain, rec.Message.Recipient, rec.Message.Amount, id)
}
