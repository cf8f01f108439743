package ledger

import (
	"errors"
	"math/big"
	"testing"

	"github.com/omni-bridge/hub/pkg/bridge"
	"github.com/omni-bridge/hub/pkg/chain"
)

type memKV struct{ m map[string][]byte }

func newMemKV() *memKV { return &memKV{m: map[string][]byte{}} }

func (k *memKV) Get(key []byte) ([]byte, error) { return k.m[string(key)], nil }
func (k *memKV) Set(key, value []byte) error {
	k.m[string(key)] = append([]byte{}, value...)
	return nil
}

func mustEVM(t *testing.T, k chain.Kind, b byte) chain.Address {
	t.Helper()
	var raw [20]byte
	raw[19] = b
	a, err := chain.NewEVMAddress(k, raw)
	if err != nil {
		t.Fatalf("NewEVMAddress: %v", err)
	}
	return a
}

func TestMarkNonceUsed_RejectsReplay(t *testing.T) {
	s := NewLedgerStore(newMemKV())
	if err := s.MarkNonceUsed(chain.Eth, 7); err != nil {
		t.Fatalf("first mark: %v", err)
	}
	err := s.MarkNonceUsed(chain.Eth, 7)
	if !errors.Is(err, bridge.SentinelFor(bridge.KindNonceAlreadyUsed)) {
		t.Fatalf("want KindNonceAlreadyUsed, got %v", err)
	}
}

func TestMarkNonceUsed_DistinctNoncesIndependent(t *testing.T) {
	s := NewLedgerStore(newMemKV())
	if err := s.MarkNonceUsed(chain.Eth, 1023); err != nil {
		t.Fatalf("mark 1023: %v", err)
	}
	if err := s.MarkNonceUsed(chain.Eth, 1024); err != nil {
		t.Fatalf("mark 1024 (next shard): %v", err)
	}
	used, err := s.IsNonceUsed(chain.Eth, 5)
	if err != nil {
		t.Fatalf("IsNonceUsed: %v", err)
	}
	if used {
		t.Error("nonce 5 should not be marked used")
	}
}

func TestLockedBalance_AddSubRoundTrip(t *testing.T) {
	s := NewLedgerStore(newMemKV())
	tokenID := bridge.TokenID("usdc")
	if err := s.AddLocked(chain.Eth, tokenID, big.NewInt(100)); err != nil {
		t.Fatalf("AddLocked: %v", err)
	}
	if err := s.AddLocked(chain.Eth, tokenID, big.NewInt(50)); err != nil {
		t.Fatalf("AddLocked: %v", err)
	}
	got, err := s.GetLocked(chain.Eth, tokenID)
	if err != nil {
		t.Fatalf("GetLocked: %v", err)
	}
	if got.Cmp(big.NewInt(150)) != 0 {
		t.Fatalf("locked = %s, want 150", got)
	}
	if err := s.SubLocked(chain.Eth, tokenID, big.NewInt(150)); err != nil {
		t.Fatalf("SubLocked: %v", err)
	}
	got, _ = s.GetLocked(chain.Eth, tokenID)
	if got.Sign() != 0 {
		t.Fatalf("locked = %s, want 0", got)
	}
}

func TestLockedBalance_SubUnderflow(t *testing.T) {
	s := NewLedgerStore(newMemKV())
	err := s.SubLocked(chain.Eth, bridge.TokenID("usdc"), big.NewInt(1))
	if !errors.Is(err, bridge.SentinelFor(bridge.KindInvalidAmountToTransfer)) {
		t.Fatalf("want KindInvalidAmountToTransfer, got %v", err)
	}
}

func TestTransferLifecycle(t *testing.T) {
	s := NewLedgerStore(newMemKV())
	id := bridge.TransferId{OriginChain: chain.Eth, OriginNonce: 1}
	msg := bridge.TransferMessage{
		Amount: big.NewInt(100),
		Sender: mustEVM(t, chain.Eth, 1),
	}
	if err := s.InitTransfer(id, msg); err != nil {
		t.Fatalf("InitTransfer: %v", err)
	}

	rec, err := s.GetTransfer(id)
	if err != nil {
		t.Fatalf("GetTransfer: %v", err)
	}
	if rec.Status != TransferPending {
		t.Fatalf("status = %v, want Pending", rec.Status)
	}

	if err := s.MarkSigned(id, "evm"); err != nil {
		t.Fatalf("MarkSigned: %v", err)
	}
	if err := s.MarkFinalised(id, chain.Base, "0xabc"); err != nil {
		t.Fatalf("MarkFinalised: %v", err)
	}

	err = s.MarkFinalised(id, chain.Base, "0xabc")
	if !errors.Is(err, bridge.SentinelFor(bridge.KindTransferAlreadyFinalised)) {
		t.Fatalf("want KindTransferAlreadyFinalised, got %v", err)
	}
}

func TestTokenRegistry_IsTokenOrigin(t *testing.T) {
	s := NewLedgerStore(newMemKV())
	tokenID := bridge.TokenID("usdc")
	origin := mustEVM(t, chain.Eth, 9)
	if err := s.RegisterTokenOrigin(tokenID, chain.Eth, origin, 6); err != nil {
		t.Fatalf("RegisterTokenOrigin: %v", err)
	}

	if !s.IsTokenOrigin(origin, chain.Eth) {
		t.Error("expected origin token to be recognized")
	}

	other := mustEVM(t, chain.Eth, 10)
	if s.IsTokenOrigin(other, chain.Eth) {
		t.Error("unregistered address should not be a token origin")
	}
}

func TestFastTransfer_FillThenFinalise(t *testing.T) {
	s := NewLedgerStore(newMemKV())
	id := bridge.FastTransferId{0x01}
	relayer := mustEVM(t, chain.Base, 2)
	recipient := mustEVM(t, chain.Base, 3)

	if err := s.CreateFastTransfer(id, big.NewInt(100), bridge.Fee{TokenFee: big.NewInt(1)}, recipient); err != nil {
		t.Fatalf("CreateFastTransfer: %v", err)
	}
	if err := s.FillFastTransfer(id, relayer); err != nil {
		t.Fatalf("FillFastTransfer: %v", err)
	}

	payTo, err := s.FinaliseFastTransfer(id)
	if err != nil {
		t.Fatalf("FinaliseFastTransfer: %v", err)
	}
	if !payTo.Equal(relayer) {
		t.Fatalf("payTo = %s, want the filling relayer %s", payTo, relayer)
	}
}

func TestNextDestinationNonce_Increments(t *testing.T) {
	s := NewLedgerStore(newMemKV())
	first, err := s.NextDestinationNonce(chain.Base)
	if err != nil {
		t.Fatalf("NextDestinationNonce: %v", err)
	}
	second, err := s.NextDestinationNonce(chain.Base)
	if err != nil {
		t.Fatalf("NextDestinationNonce: %v", err)
	}
	if second != first+1 {
		t.Fatalf("second = %d, want %d", second, first+1)
	}
}
