// Package prover dispatches a chain's proof format to the verifier
// registered for it and normalizes the result into a bridge.ProverResult
// (§4.2). The dispatch pattern — a mutex-guarded map of named
// implementations behind Register/Get/List — mirrors how this codebase
// picks a per-chain execution strategy elsewhere.
package prover

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/omni-bridge/hub/pkg/bridge"
	"github.com/omni-bridge/hub/pkg/chain"
)

// Proof is the opaque, chain-specific evidence a relayer submits to
// sign_transfer / fin_transfer: raw log bytes, a VAA, an MPC payload, or
// a Merkle inclusion proof, depending on which Verifier ends up handling
// it.
type Proof struct {
	Kind chain.Kind
	Raw  []byte
}

// Verifier checks one Proof and, if valid, returns the normalized result
// it attests to. Implementations must not mutate shared state; all hub
// bookkeeping happens in pkg/ledger after Verify succeeds.
type Verifier interface {
	// ID names this verifier for registration and ProverResult.Prover.
	ID() bridge.ProverId
	// Verify checks proof and returns the claim it proves.
	Verify(ctx context.Context, proof Proof) (*bridge.ProverResult, error)
}

var (
	mu        sync.RWMutex
	verifiers = make(map[bridge.ProverId]Verifier)
)

// Register adds v to the registry, keyed by its ID. Re-registering the
// same ID replaces the previous verifier, which tests rely on to install
// fakes.
func Register(v Verifier) {
	mu.Lock()
	defer mu.Unlock()
	verifiers[v.ID()] = v
}

// Get returns the verifier registered under id.
func Get(id bridge.ProverId) (Verifier, bool) {
	mu.RLock()
	defer mu.RUnlock()
	v, ok := verifiers[id]
	return v, ok
}

// List returns the registered prover ids in sorted order.
func List() []bridge.ProverId {
	mu.RLock()
	defer mu.RUnlock()
	ids := make([]bridge.ProverId, 0, len(verifiers))
	for id := range verifiers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Dispatch looks up the verifier for proverID and runs it against proof.
func Dispatch(ctx context.Context, proverID bridge.ProverId, proof Proof) (*bridge.ProverResult, error) {
	v, ok := Get(proverID)
	if !ok {
		return nil, bridge.New(bridge.KindUnknownFactory, "no verifier registered for prover %q", proverID)
	}
	result, err := v.Verify(ctx, proof)
	if err != nil {
		return nil, fmt.Errorf("prover %s: %w", proverID, err)
	}
	result.Prover = proverID
	return result, nil
}
