package prover

import (
	"context"
	"encoding/json"

	"github.com/omni-bridge/hub/pkg/bridge"
	"github.com/omni-bridge/hub/pkg/chain"
	"github.com/omni-bridge/hub/pkg/merkle"
)

// UTXOLightClient abstracts the SPV light client an UTXO-chain verifier
// consults: given a claimed spending transaction it checks the
// transaction's Merkle inclusion in a header it already considers final
// (§4.3, "UTXO path").
type UTXOLightClient interface {
	VerifyTransactionInclusion(ctx context.Context, k chain.Kind, txHashLE [32]byte, receipt *merkle.Receipt) error
}

// wireUTXOProof is the JSON envelope a relayer submits for the BTC/UTXO
// verifier.
type wireUTXOProof struct {
	TxHashLE    [32]byte       `json:"tx_hash_le"` // little-endian, wire order
	Receipt     merkle.Receipt `json:"receipt"`
	OriginChain string         `json:"origin_chain"`
	OriginNonce uint64         `json:"origin_nonce"`
}

// UTXOVerifier checks BTC/Zcash spending transactions via SPV inclusion
// proof. Because UTXO chains have no event log, the result it emits is a
// BtcFinTransferResult carrying the spending transaction's display-order
// (big-endian) hash rather than a decoded recipient (§4.2, "BTC/UTXO
// verifier").
type UTXOVerifier struct {
	Light UTXOLightClient
}

func NewUTXOVerifier(light UTXOLightClient) *UTXOVerifier {
	return &UTXOVerifier{Light: light}
}

func (v *UTXOVerifier) ID() bridge.ProverId { return "utxo" }

func (v *UTXOVerifier) Verify(ctx context.Context, proof Proof) (*bridge.ProverResult, error) {
	if !proof.Kind.IsUTXOChain() {
		return nil, bridge.New(bridge.KindUnsupportedChain, "UTXO verifier cannot handle chain %s", proof.Kind)
	}
	var wp wireUTXOProof
	if err := json.Unmarshal(proof.Raw, &wp); err != nil {
		return nil, bridge.New(bridge.KindInvalidProof, "malformed UTXO proof envelope: %v", err)
	}

	if v.Light != nil {
		if err := v.Light.VerifyTransactionInclusion(ctx, proof.Kind, wp.TxHashLE, &wp.Receipt); err != nil {
			return nil, bridge.New(bridge.KindInvalidProof, "%v", err)
		}
	}

	originChain, ok := chain.ParseKind(wp.OriginChain)
	if !ok {
		return nil, bridge.New(bridge.KindUnsupportedChain, "unknown origin chain %q", wp.OriginChain)
	}

	return &bridge.ProverResult{
		Kind: bridge.ProverResultBtcFinTransfer,
		BtcFinTransfer: &bridge.BtcFinTransferResult{
			Chain:    proof.Kind,
			TxHashBE: reverse32(wp.TxHashLE),
			TransferId: bridge.TransferId{
				OriginChain: originChain,
				OriginNonce: wp.OriginNonce,
			},
		},
	}, nil
}

// reverse32 flips wire-order (little-endian) bytes to the big-endian
// display order UTXO block explorers use for transaction hashes.
func reverse32(b [32]byte) [32]byte {
	for i, j := 0, 31; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}
