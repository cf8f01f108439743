package relayer

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/omni-bridge/hub/pkg/chain"
	"github.com/omni-bridge/hub/pkg/ethereum"
)

// NonceManager hands out sequential EVM account nonces for a relayer's
// hot wallet on one chain, so concurrent fin_transfer submissions never
// collide on the same nonce (§4.4, "nonce management").
type NonceManager struct {
	mu      sync.Mutex
	client  *ethereum.Client
	account common.Address
	next    uint64
	primed  bool
}

func NewNonceManager(client *ethereum.Client, account common.Address) *NonceManager {
	return &NonceManager{client: client, account: account}
}

// Next returns the next nonce to use, fetching the account's current
// pending nonce from the chain on first use and incrementing locally
// thereafter.
func (m *NonceManager) Next(ctx context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.primed {
		n, err := m.client.GetNonce(ctx, m.account)
		if err != nil {
			return 0, err
		}
		m.next = n
		m.primed = true
	}
	n := m.next
	m.next++
	return n, nil
}

// Resync re-fetches the account's pending nonce from the chain,
// discarding the local counter — used after a nonce-related submission
// failure to recover from drift.
func (m *NonceManager) Resync(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, err := m.client.GetNonce(ctx, m.account)
	if err != nil {
		return err
	}
	m.next = n
	m.primed = true
	return nil
}

// managers keys a process-wide pool of NonceManagers by chain, so every
// worker submitting on behalf of the same relayer account shares one
// sequence.
type ManagerPool struct {
	mu       sync.Mutex
	managers map[chain.Kind]*NonceManager
}

func NewManagerPool() *ManagerPool {
	return &ManagerPool{managers: make(map[chain.Kind]*NonceManager)}
}

func (p *ManagerPool) Get(k chain.Kind, client *ethereum.Client, account common.Address) *NonceManager {
	p.mu.Lock()
	defer p.mu.Unlock()
	if m, ok := p.managers[k]; ok {
		return m
	}
	m := NewNonceManager(client, account)
	p.managers[k] = m
	return m
}
