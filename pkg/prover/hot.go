package prover

import (
	"context"
	"encoding/json"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/omni-bridge/hub/pkg/bridge"
	"github.com/omni-bridge/hub/pkg/chain"
)

// wireHotProof is the JSON envelope for the HOT verifier: a flat
// InitTransferResult plus a recoverable secp256k1 signature (one of two
// possible recovery ids, either of which the verifier accepts — the
// signer's wallet software doesn't always agree on which it used).
type wireHotProof struct {
	OriginChain string `json:"origin_chain"`
	OriginNonce uint64 `json:"origin_nonce"`
	Token       string `json:"token"`
	Amount      string `json:"amount"`
	TokenFee    string `json:"token_fee"`
	NativeFee   string `json:"native_fee"`
	Sender      string `json:"sender"`
	Recipient   string `json:"recipient"`
	Msg         string `json:"msg"`
	Digest      []byte `json:"digest"`
	SignatureA  []byte `json:"signature_a"` // recovery id 0 candidate
	SignatureB  []byte `json:"signature_b"` // recovery id 1 candidate
}

// HotVerifier checks a dual-recovery-id secp256k1 signature against a
// configured key, with no external light client involved (§4.2, "HOT
// verifier" — the simplest of the six, used for the hub's directly
// co-signed relay path).
type HotVerifier struct {
	PubKey *secp256k1.PublicKey
}

func NewHotVerifier(pubKey *secp256k1.PublicKey) *HotVerifier {
	return &HotVerifier{PubKey: pubKey}
}

func (v *HotVerifier) ID() bridge.ProverId { return "hot" }

func (v *HotVerifier) Verify(ctx context.Context, proof Proof) (*bridge.ProverResult, error) {
	var wp wireHotProof
	if err := json.Unmarshal(proof.Raw, &wp); err != nil {
		return nil, bridge.New(bridge.KindInvalidProof, "malformed HOT proof envelope: %v", err)
	}

	if v.PubKey != nil {
		if !verifyEitherRecovery(wp.Digest, wp.SignatureA, v.PubKey) &&
			!verifyEitherRecovery(wp.Digest, wp.SignatureB, v.PubKey) {
			return nil, bridge.New(bridge.KindSignatureVerificationFailed, "neither candidate signature verifies")
		}
	}

	originChain, ok := chain.ParseKind(wp.OriginChain)
	if !ok {
		return nil, bridge.New(bridge.KindUnsupportedChain, "unknown origin chain %q", wp.OriginChain)
	}
	token, err := chain.ParseAddress(wp.Token)
	if err != nil {
		return nil, bridge.New(bridge.KindInvalidProofMessage, "bad token: %v", err)
	}
	sender, err := chain.ParseAddress(wp.Sender)
	if err != nil {
		return nil, bridge.New(bridge.KindInvalidProofMessage, "bad sender: %v", err)
	}
	recipient, err := chain.ParseAddress(wp.Recipient)
	if err != nil {
		return nil, bridge.New(bridge.KindInvalidProofMessage, "bad recipient: %v", err)
	}
	amount, err := parseDecimal(wp.Amount)
	if err != nil {
		return nil, bridge.New(bridge.KindInvalidProofMessage, "bad amount %q", wp.Amount)
	}
	tokenFee, err := parseDecimal(wp.TokenFee)
	if err != nil {
		return nil, bridge.New(bridge.KindInvalidProofMessage, "bad token fee %q", wp.TokenFee)
	}
	nativeFee, err := parseDecimal(wp.NativeFee)
	if err != nil {
		return nil, bridge.New(bridge.KindInvalidProofMessage, "bad native fee %q", wp.NativeFee)
	}

	return &bridge.ProverResult{
		Kind: bridge.ProverResultInitTransfer,
		InitTransfer: &bridge.InitTransferResult{
			OriginChain: originChain,
			OriginNonce: wp.OriginNonce,
			Token:       token,
			Amount:      amount,
			Fee:         bridge.Fee{TokenFee: tokenFee, NativeFee: nativeFee},
			Sender:      sender,
			Recipient:   recipient,
			Msg:         wp.Msg,
		},
	}, nil
}

func parseDecimal(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, bridge.New(bridge.KindInvalidProofMessage, "not a base-10 integer: %q", s)
	}
	return n, nil
}

func verifyEitherRecovery(digest, sig []byte, pubKey *secp256k1.PublicKey) bool {
	if len(sig) != 64 || len(digest) == 0 {
		return false
	}
	var r, s secp256k1.ModNScalar
	r.SetByteSlice(sig[:32])
	s.SetByteSlice(sig[32:64])
	return ecdsa.NewSignature(&r, &s).Verify(digest, pubKey)
}
