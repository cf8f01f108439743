package transfer

import (
	"context"
	"math/big"

	"github.com/omni-bridge/hub/pkg/bridge"
	"github.com/omni-bridge/hub/pkg/chain"
)

// FastFill registers a relayer's offer to front a pending transfer's
// payout ahead of slow-path finalisation, and marks that fill so
// FinTransfer can route the eventual repayment to the filling relayer
// instead of the original recipient (§3, "fast transfers").
func (c *Coordinator) FastFill(ctx context.Context, token chain.Address, amount *big.Int, fee bridge.Fee, recipient chain.Address, id bridge.TransferId, msg string, filledBy chain.Address) (bridge.FastTransferId, error) {
	fastID := bridge.ComputeFastTransferId(token, amount, recipient, id, msg)

	if _, err := c.Store.GetFastTransfer(fastID); err != nil {
		if err := c.Store.CreateFastTransfer(fastID, amount, fee, recipient); err != nil {
			return fastID, err
		}
	}
	if err := c.Store.FillFastTransfer(fastID, filledBy); err != nil {
		return fastID, err
	}
	return fastID, nil
}
