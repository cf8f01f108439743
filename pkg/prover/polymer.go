package prover

import (
	"context"

	"github.com/omni-bridge/hub/pkg/bridge"
	"github.com/omni-bridge/hub/pkg/chain"
	"github.com/omni-bridge/hub/pkg/codec"
)

// PolymerContract abstracts the on-hub Polymer verifier contract: given
// a proof blob it returns the already-ABI-decoded InitTransfer fields at
// the fixed offsets Polymer commits to. The bridge never re-implements
// Polymer's own state-proof verification — it only consumes the decoded
// claim (§4.2, "Polymer verifier").
type PolymerContract interface {
	DecodeInitTransfer(ctx context.Context, proofBlob []byte) (*codec.DecodedInitTransfer, chain.Kind, error)
}

// PolymerVerifier delegates proof checking to the configured on-hub
// Polymer contract and normalizes its decoded fields.
type PolymerVerifier struct {
	Contract PolymerContract
}

func NewPolymerVerifier(c PolymerContract) *PolymerVerifier {
	return &PolymerVerifier{Contract: c}
}

func (v *PolymerVerifier) ID() bridge.ProverId { return "polymer" }

func (v *PolymerVerifier) Verify(ctx context.Context, proof Proof) (*bridge.ProverResult, error) {
	if v.Contract == nil {
		return nil, bridge.New(bridge.KindInvalidProof, "no Polymer contract configured")
	}
	d, originChain, err := v.Contract.DecodeInitTransfer(ctx, proof.Raw)
	if err != nil {
		return nil, bridge.New(bridge.KindInvalidProof, "Polymer contract rejected proof: %v", err)
	}

	sender, err := chain.NewEVMAddress(originChain, d.Sender)
	if err != nil {
		return nil, err
	}
	token, err := chain.NewEVMAddress(originChain, d.Token)
	if err != nil {
		return nil, err
	}
	recipient, err := chain.ParseAddress(d.Recipient)
	if err != nil {
		return nil, bridge.New(bridge.KindInvalidProofMessage, "bad recipient: %v", err)
	}

	return &bridge.ProverResult{
		Kind: bridge.ProverResultInitTransfer,
		InitTransfer: &bridge.InitTransferResult{
			OriginChain: originChain,
			OriginNonce: d.OriginNonce,
			Token:       token,
			Amount:      d.Amount,
			Fee:         bridge.Fee{TokenFee: d.Fee, NativeFee: d.NativeFee},
			Sender:      sender,
			Recipient:   recipient,
			Msg:         d.Message,
		},
	}, nil
}
