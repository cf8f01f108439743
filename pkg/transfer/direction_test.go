package transfer

import (
	"testing"

	"github.com/omni-bridge/hub/pkg/chain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name                          string
		origin, dest, tokenOrigin chain.Kind
		want                          Direction
	}{
		{"native outbound", chain.Eth, chain.Base, chain.Eth, DirLockEscrow},
		{"returning home", chain.Base, chain.Eth, chain.Eth, DirUnlockEscrow},
		{"two-hop peripheral", chain.Base, chain.Arb, chain.Eth, DirPassThrough},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.origin, tc.dest, tc.tokenOrigin)
			if got != tc.want {
				t.Errorf("Classify(%s, %s, %s) = %v, want %v", tc.origin, tc.dest, tc.tokenOrigin, got, tc.want)
			}
		})
	}
}

func TestAdjustment_LockEscrowLocksOriginChain(t *testing.T) {
	adj, ok := Adjustment(DirLockEscrow, chain.Eth, chain.Base)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if adj.Chain != chain.Eth || !adj.Add {
		t.Errorf("got %+v, want {Chain: Eth, Add: true}", adj)
	}
}

func TestAdjustment_UnlockEscrowUnlocksDestChain(t *testing.T) {
	adj, ok := Adjustment(DirUnlockEscrow, chain.Base, chain.Eth)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if adj.Chain != chain.Eth || adj.Add {
		t.Errorf("got %+v, want {Chain: Eth, Add: false}", adj)
	}
}

func TestAdjustment_PassThroughTouchesNothing(t *testing.T) {
	_, ok := Adjustment(DirPassThrough, chain.Base, chain.Arb)
	if ok {
		t.Error("expected ok=false for DirPassThrough")
	}
}

func TestRevertLockAction(t *testing.T) {
	adj := LockedAdjustment{Chain: chain.Eth, Add: true}
	reverted := RevertLockAction(adj)
	if reverted.Chain != chain.Eth || reverted.Add {
		t.Errorf("got %+v, want {Chain: Eth, Add: false}", reverted)
	}
}

func TestUTXOPath(t *testing.T) {
	if !UTXOPath(chain.Btc) {
		t.Error("expected Btc to be a UTXO path")
	}
	if UTXOPath(chain.Eth) {
		t.Error("expected Eth to not be a UTXO path")
	}
}
