// Package relayer implements the off-chain pipeline that watches
// peripheral chains for bridge events, submits proofs to the hub, and
// carries finalised transfers back out to their destination: per-chain
// indexers, a durable work queue, nonce and pending-transaction
// management, and a fee sufficiency oracle (§4.4).
package relayer

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/omni-bridge/hub/pkg/chain"
)

// CursorStore persists, per chain, the last block height an indexer has
// fully processed, so a relayer restart resumes without re-scanning the
// whole chain or silently skipping blocks.
type CursorStore struct {
	kv KV
}

// KV is the minimal persistence interface cursor/nonce/pending-tx state
// needs; pkg/kvdb satisfies it, same as the ledger's KV.
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
}

func NewCursorStore(kv KV) *CursorStore {
	return &CursorStore{kv: kv}
}

func cursorKey(k chain.Kind) []byte {
	return []byte(fmt.Sprintf("relayer:cursor:%s", k))
}

// Get returns the last processed block height for k, or 0 if none is
// recorded yet.
func (s *CursorStore) Get(ctx context.Context, k chain.Kind) (uint64, error) {
	v, err := s.kv.Get(cursorKey(k))
	if err != nil {
		return 0, err
	}
	if len(v) != 8 {
		return 0, nil
	}
	return binary.BigEndian.Uint64(v), nil
}

// Advance persists height as the new cursor for k. Callers must only
// advance forward; going backward would silently re-process events as
// new.
func (s *CursorStore) Advance(ctx context.Context, k chain.Kind, height uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], height)
	return s.kv.Set(cursorKey(k), b[:])
}
