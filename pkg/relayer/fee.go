package relayer

import (
	"context"
	"math/big"

	"github.com/omni-bridge/hub/pkg/bridge"
	"github.com/omni-bridge/hub/pkg/chain"
)

// GasPriceSource abstracts wherever the relayer gets a destination
// chain's current gas price from — typically pkg/ethereum.Client, kept
// as an interface here so FeeOracle can be tested without a live RPC.
type GasPriceSource interface {
	GasPriceWei(ctx context.Context, k chain.Kind) (*big.Int, error)
}

// FeeOracle decides whether a transfer's declared native fee is enough
// to cover the relayer's actual cost of submitting fin_transfer on the
// destination chain, including a configurable profit margin (§4.4, "fee
// sufficiency").
type FeeOracle struct {
	Gas         GasPriceSource
	GasEstimate uint64 // gas units fin_transfer is expected to cost
	MarginBps   int64  // relayer profit margin in basis points
}

// IsSufficient reports whether nativeFee covers estimated destination
// gas cost plus margin.
func (f *FeeOracle) IsSufficient(ctx context.Context, destChain chain.Kind, nativeFee *big.Int) (bool, *big.Int, error) {
	price, err := f.Gas.GasPriceWei(ctx, destChain)
	if err != nil {
		return false, nil, err
	}
	cost := new(big.Int).Mul(price, new(big.Int).SetUint64(f.GasEstimate))
	required := new(big.Int).Mul(cost, big.NewInt(10_000+f.MarginBps))
	required.Div(required, big.NewInt(10_000))

	if nativeFee == nil {
		return false, required, nil
	}
	return nativeFee.Cmp(required) >= 0, required, nil
}

// CheckOrReject returns a typed bridge error when the fee is
// insufficient, convenient for call sites that just want to short
// circuit.
func (f *FeeOracle) CheckOrReject(ctx context.Context, destChain chain.Kind, nativeFee *big.Int) error {
	ok, required, err := f.IsSufficient(ctx, destChain, nativeFee)
	if err != nil {
		return err
	}
	if !ok {
		return bridge.New(bridge.KindInvalidFee, "native fee %s is below required %s for %s", nativeFee, required, destChain)
	}
	return nil
}
