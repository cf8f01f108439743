package merkle

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/omni-bridge/hub/pkg/chain"
)

// HeaderStore looks up the transaction Merkle root committed by a trusted
// UTXO-chain block header at a given height. Populated out of band by a
// header-sync process; this package only verifies inclusion against what
// it is told is final.
type HeaderStore interface {
	MerkleRootAt(k chain.Kind, height uint64) ([32]byte, bool)
}

// LightClient checks UTXO spending-transaction inclusion receipts against
// Merkle roots a HeaderStore already considers final. It satisfies the
// UTXO verifier's light-client dependency (§4.2, "BTC/UTXO verifier")
// without needing a full node: the relayer supplies a Receipt, and the
// client refuses to trust the relayer's claimed anchor unless it matches
// the header store's own root for that height.
type LightClient struct {
	Headers HeaderStore
}

func NewLightClient(headers HeaderStore) *LightClient {
	return &LightClient{Headers: headers}
}

// VerifyTransactionInclusion checks that txHashLE is included, via the
// supplied receipt, in the block at blockHeight.
func (c *LightClient) VerifyTransactionInclusion(ctx context.Context, k chain.Kind, txHashLE [32]byte, receipt *Receipt) error {
	if receipt == nil {
		return fmt.Errorf("missing merkle receipt")
	}
	if receipt.Start != hex.EncodeToString(txHashLE[:]) {
		return fmt.Errorf("receipt start does not match claimed transaction hash")
	}

	root, ok := c.Headers.MerkleRootAt(k, receipt.LocalBlock)
	if !ok {
		return fmt.Errorf("no trusted header for %s at height %d", k, receipt.LocalBlock)
	}
	if receipt.Anchor != hex.EncodeToString(root[:]) {
		return fmt.Errorf("receipt anchor does not match trusted header root at height %d", receipt.LocalBlock)
	}

	return receipt.Validate()
}

// BuildReceipt constructs a portable Receipt for the leaf at leafIndex,
// building a Tree over leaves and converting its InclusionProof to
// Receipt form. Used by relayers assembling a UTXO fin_transfer proof
// from a block's transaction hashes.
func BuildReceipt(leaves [][]byte, leafIndex int, blockHeight uint64) (*Receipt, error) {
	tree, err := BuildTree(leaves)
	if err != nil {
		return nil, err
	}
	proof, err := tree.GenerateProof(leafIndex)
	if err != nil {
		return nil, err
	}

	entries := make([]ReceiptEntry, len(proof.Path))
	for i, node := range proof.Path {
		entries[i] = ReceiptEntry{Hash: node.Hash, Right: node.Position == Right}
	}

	return &Receipt{
		Start:      proof.LeafHash,
		Anchor:     tree.RootHex(),
		LocalBlock: blockHeight,
		Entries:    entries,
	}, nil
}
