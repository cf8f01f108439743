package prover

import (
	"context"
	"encoding/json"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/omni-bridge/hub/pkg/bridge"
	"github.com/omni-bridge/hub/pkg/chain"
	"github.com/omni-bridge/hub/pkg/codec"
)

// wireMPCProof is the JSON envelope carrying a hub-MPC-signed transfer
// payload: the fields the destination contract re-hashes (§6.3) plus the
// signature over that hash.
type wireMPCProof struct {
	Payload   codec.HubTransferPayload `json:"payload"`
	Signature []byte                   `json:"signature"` // 64-byte compact r||s
}

// MPCVerifier checks the hub's MPC-signed transfer payload against a
// configured MPC public key (§4.2, "MPC verifier" — the modern
// destination-finalisation path, distinct from the legacy Wormhole
// guardian path).
type MPCVerifier struct {
	PubKey *secp256k1.PublicKey
}

func NewMPCVerifier(pubKey *secp256k1.PublicKey) *MPCVerifier {
	return &MPCVerifier{PubKey: pubKey}
}

func (v *MPCVerifier) ID() bridge.ProverId { return "mpc" }

func (v *MPCVerifier) Verify(ctx context.Context, proof Proof) (*bridge.ProverResult, error) {
	var wp wireMPCProof
	if err := json.Unmarshal(proof.Raw, &wp); err != nil {
		return nil, bridge.New(bridge.KindInvalidProof, "malformed MPC proof envelope: %v", err)
	}
	if len(wp.Signature) != 64 {
		return nil, bridge.New(bridge.KindInvalidProof, "MPC signature must be 64 bytes, got %d", len(wp.Signature))
	}

	hash, err := wp.Payload.Hash()
	if err != nil {
		return nil, bridge.New(bridge.KindInvalidProofMessage, "cannot re-derive payload hash: %v", err)
	}

	if v.PubKey != nil {
		var r, s secp256k1.ModNScalar
		r.SetByteSlice(wp.Signature[:32])
		s.SetByteSlice(wp.Signature[32:64])
		sig := ecdsa.NewSignature(&r, &s)
		if !sig.Verify(hash[:], v.PubKey) {
			return nil, bridge.New(bridge.KindSignatureVerificationFailed, "MPC signature does not verify against configured key")
		}
	}

	originChain, ok := originChainFromU64(wp.Payload.ChainID)
	if !ok {
		return nil, bridge.New(bridge.KindUnsupportedChain, "unbound MPC origin chain id %s", wp.Payload.ChainID)
	}

	token, err := chain.NewEVMAddress(originChain, wp.Payload.Token)
	if err != nil {
		return nil, err
	}
	sender, err := chain.NewEVMAddress(originChain, wp.Payload.Sender)
	if err != nil {
		return nil, err
	}
	recipient, err := chain.ParseAddress(wp.Payload.Recipient)
	if err != nil {
		return nil, bridge.New(bridge.KindInvalidProofMessage, "bad recipient: %v", err)
	}

	return &bridge.ProverResult{
		Kind: bridge.ProverResultInitTransfer,
		InitTransfer: &bridge.InitTransferResult{
			OriginChain: originChain,
			OriginNonce: wp.Payload.OriginNonce,
			Token:       token,
			Amount:      wp.Payload.Amount,
			Fee:         bridge.Fee{TokenFee: wp.Payload.TokenFee, NativeFee: wp.Payload.NativeFee},
			Sender:      sender,
			Recipient:   recipient,
			Msg:         wp.Payload.Message,
		},
	}, nil
}

func originChainFromU64(chainID *big.Int) (chain.Kind, bool) {
	if chainID == nil || !chainID.IsUint64() {
		return 0, false
	}
	k := chain.Kind(chainID.Uint64())
	return k, k.Valid()
}
