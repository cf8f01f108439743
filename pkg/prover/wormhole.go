package prover

import (
	"context"

	"github.com/omni-bridge/hub/pkg/bridge"
	"github.com/omni-bridge/hub/pkg/chain"
	"github.com/omni-bridge/hub/pkg/codec"
)

// GuardianVerifier abstracts the external Wormhole guardian set: it
// checks that a VAA carries enough valid guardian signatures over its
// body hash to meet quorum for the guardian set it claims. This is a
// call to an on-hub guardian-set contract/light client, never
// reimplemented here.
type GuardianVerifier interface {
	VerifyQuorum(ctx context.Context, guardianSet uint32, bodyHash [32]byte, sigs []codec.GuardianSignature) error
}

// WormholeVerifier checks Wormhole VAAs emitted by the legacy
// omni-prover-proxy path (§4.2, "Wormhole verifier"; §9 open question —
// both the legacy Wormhole path and the MPC path are supported side by
// side, selected by which ProverId the relayer targets).
type WormholeVerifier struct {
	Guardians GuardianVerifier
}

func NewWormholeVerifier(g GuardianVerifier) *WormholeVerifier {
	return &WormholeVerifier{Guardians: g}
}

func (v *WormholeVerifier) ID() bridge.ProverId { return "wormhole" }

func (v *WormholeVerifier) Verify(ctx context.Context, proof Proof) (*bridge.ProverResult, error) {
	vaa, err := codec.ParseVAA(proof.Raw)
	if err != nil {
		return nil, bridge.New(bridge.KindInvalidProof, "%v", err)
	}

	if v.Guardians != nil {
		if err := v.Guardians.VerifyQuorum(ctx, vaa.GuardianSet, vaa.Hash(), vaa.Signatures); err != nil {
			return nil, bridge.New(bridge.KindSignatureVerificationFailed, "%v", err)
		}
	}

	emitterChain, ok := chain.EmitterChainIDToKind(vaa.EmitterChain)
	if !ok {
		return nil, bridge.New(bridge.KindUnsupportedChain, "unbound Wormhole emitter chain id %d", vaa.EmitterChain)
	}

	kind, payload, err := vaa.PayloadKind()
	if err != nil {
		return nil, bridge.New(bridge.KindInvalidProofMessage, "%v", err)
	}

	r := codec.NewReader(payload)
	switch kind {
	case codec.VAAPayloadInitTransfer:
		return decodeWormholeInitTransfer(emitterChain, r)
	case codec.VAAPayloadFinTransfer:
		return decodeWormholeFinTransfer(emitterChain, r)
	case codec.VAAPayloadDeployToken:
		return decodeWormholeDeployToken(emitterChain, r)
	default:
		return nil, bridge.New(bridge.KindInvalidProofMessage, "unhandled VAA payload kind %d", kind)
	}
}

func decodeWormholeInitTransfer(originChain chain.Kind, r *codec.Reader) (*bridge.ProverResult, error) {
	nonce, err := r.U64()
	if err != nil {
		return nil, bridge.New(bridge.KindBorsh, "%v", err)
	}
	tokenAddr, err := r.String()
	if err != nil {
		return nil, bridge.New(bridge.KindBorsh, "%v", err)
	}
	amount, err := r.U128()
	if err != nil {
		return nil, bridge.New(bridge.KindBorsh, "%v", err)
	}
	tokenFee, err := r.U128()
	if err != nil {
		return nil, bridge.New(bridge.KindBorsh, "%v", err)
	}
	nativeFee, err := r.U128()
	if err != nil {
		return nil, bridge.New(bridge.KindBorsh, "%v", err)
	}
	sender, err := r.String()
	if err != nil {
		return nil, bridge.New(bridge.KindBorsh, "%v", err)
	}
	recipient, err := r.String()
	if err != nil {
		return nil, bridge.New(bridge.KindBorsh, "%v", err)
	}
	msg, err := r.String()
	if err != nil {
		return nil, bridge.New(bridge.KindBorsh, "%v", err)
	}

	token, err := chain.ParseAddress(tokenAddr)
	if err != nil {
		return nil, bridge.New(bridge.KindInvalidProofMessage, "bad token address: %v", err)
	}
	senderAddr, err := chain.ParseAddress(sender)
	if err != nil {
		return nil, bridge.New(bridge.KindInvalidProofMessage, "bad sender address: %v", err)
	}
	recipientAddr, err := chain.ParseAddress(recipient)
	if err != nil {
		return nil, bridge.New(bridge.KindInvalidProofMessage, "bad recipient address: %v", err)
	}

	return &bridge.ProverResult{
		Kind: bridge.ProverResultInitTransfer,
		InitTransfer: &bridge.InitTransferResult{
			OriginChain: originChain,
			OriginNonce: nonce,
			Token:       token,
			Amount:      amount,
			Fee:         bridge.Fee{TokenFee: tokenFee, NativeFee: nativeFee},
			Sender:      senderAddr,
			Recipient:   recipientAddr,
			Msg:         msg,
		},
	}, nil
}

func decodeWormholeFinTransfer(destChain chain.Kind, r *codec.Reader) (*bridge.ProverResult, error) {
	originChainID, err := r.U8()
	if err != nil {
		return nil, bridge.New(bridge.KindBorsh, "%v", err)
	}
	originChain, ok := originChainFromU8(originChainID)
	if !ok {
		return nil, bridge.New(bridge.KindUnsupportedChain, "unknown origin chain id %d", originChainID)
	}
	nonce, err := r.U64()
	if err != nil {
		return nil, bridge.New(bridge.KindBorsh, "%v", err)
	}
	tokenAddr, err := r.String()
	if err != nil {
		return nil, bridge.New(bridge.KindBorsh, "%v", err)
	}
	amount, err := r.U128()
	if err != nil {
		return nil, bridge.New(bridge.KindBorsh, "%v", err)
	}
	recipient, err := r.String()
	if err != nil {
		return nil, bridge.New(bridge.KindBorsh, "%v", err)
	}
	feeRecipient, err := r.String()
	if err != nil {
		return nil, bridge.New(bridge.KindBorsh, "%v", err)
	}

	token, err := chain.ParseAddress(tokenAddr)
	if err != nil {
		return nil, bridge.New(bridge.KindInvalidProofMessage, "bad token address: %v", err)
	}
	recipientAddr, err := chain.ParseAddress(recipient)
	if err != nil {
		return nil, bridge.New(bridge.KindInvalidProofMessage, "bad recipient address: %v", err)
	}
	feeRecipientAddr, err := chain.ParseAddress(feeRecipient)
	if err != nil {
		return nil, bridge.New(bridge.KindInvalidProofMessage, "bad fee recipient address: %v", err)
	}
	_ = destChain

	return &bridge.ProverResult{
		Kind: bridge.ProverResultFinTransfer,
		FinTransfer: &bridge.FinTransferResult{
			OriginChain:  originChain,
			OriginNonce:  nonce,
			Token:        token,
			Amount:       amount,
			Recipient:    recipientAddr,
			FeeRecipient: feeRecipientAddr,
		},
	}, nil
}

func decodeWormholeDeployToken(destChain chain.Kind, r *codec.Reader) (*bridge.ProverResult, error) {
	tokenID, err := r.String()
	if err != nil {
		return nil, bridge.New(bridge.KindBorsh, "%v", err)
	}
	tokenAddr, err := r.String()
	if err != nil {
		return nil, bridge.New(bridge.KindBorsh, "%v", err)
	}
	decimals, err := r.U8()
	if err != nil {
		return nil, bridge.New(bridge.KindBorsh, "%v", err)
	}

	addr, err := chain.ParseAddress(tokenAddr)
	if err != nil {
		return nil, bridge.New(bridge.KindInvalidProofMessage, "bad token address: %v", err)
	}

	return &bridge.ProverResult{
		Kind: bridge.ProverResultDeployToken,
		DeployToken: &bridge.DeployTokenResult{
			TokenID:  bridge.TokenID(tokenID),
			Chain:    destChain,
			Address:  addr,
			Decimals: decimals,
		},
	}, nil
}
