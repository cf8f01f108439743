package prover

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"testing"

	"github.com/omni-bridge/hub/pkg/chain"
	"github.com/omni-bridge/hub/pkg/merkle"
)

type fakeHeaders struct {
	root   [32]byte
	height uint64
}

func (f fakeHeaders) MerkleRootAt(k chain.Kind, height uint64) ([32]byte, bool) {
	if height != f.height {
		return [32]byte{}, false
	}
	return f.root, true
}

func leafHash(b byte) [32]byte {
	return sha256.Sum256([]byte{b})
}

func TestUTXOVerifier_Verify_InclusionReceipt(t *testing.T) {
	leaves := [][]byte{}
	var spend [32]byte
	for i := byte(0); i < 4; i++ {
		h := leafHash(i)
		if i == 2 {
			spend = h
		}
		leaves = append(leaves, h[:])
	}

	receipt, err := merkle.BuildReceipt(leaves, 2, 100)
	if err != nil {
		t.Fatalf("BuildReceipt: %v", err)
	}

	tree, err := merkle.BuildTree(leaves)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	var root [32]byte
	copy(root[:], tree.Root())

	light := merkle.NewLightClient(fakeHeaders{root: root, height: 100})
	v := NewUTXOVerifier(light)

	raw, err := json.Marshal(wireUTXOProof{
		TxHashLE:    spend,
		Receipt:     *receipt,
		OriginChain: "btc",
		OriginNonce: 7,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	result, err := v.Verify(context.Background(), Proof{Kind: chain.Btc, Raw: raw})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if result.BtcFinTransfer.TransferId.OriginNonce != 7 {
		t.Errorf("origin nonce = %d, want 7", result.BtcFinTransfer.TransferId.OriginNonce)
	}
	if result.BtcFinTransfer.TxHashBE != reverse32(spend) {
		t.Error("tx hash not reversed to display order")
	}
}

func TestUTXOVerifier_Verify_RejectsForgedAnchor(t *testing.T) {
	leaves := [][]byte{}
	for i := byte(0); i < 4; i++ {
		h := leafHash(i)
		leaves = append(leaves, h[:])
	}
	receipt, err := merkle.BuildReceipt(leaves, 0, 100)
	if err != nil {
		t.Fatalf("BuildReceipt: %v", err)
	}

	// A header store that never recognizes height 100 rejects the
	// proof even though the receipt is internally self-consistent.
	light := merkle.NewLightClient(fakeHeaders{height: 999})
	v := NewUTXOVerifier(light)

	var spend [32]byte
	copy(spend[:], leaves[0])
	raw, _ := json.Marshal(wireUTXOProof{TxHashLE: spend, Receipt: *receipt, OriginChain: "btc", OriginNonce: 1})

	_, err = v.Verify(context.Background(), Proof{Kind: chain.Btc, Raw: raw})
	if err == nil {
		t.Fatal("expected error for untrusted header height")
	}
}
