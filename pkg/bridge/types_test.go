package bridge

import (
	"errors"
	"math/big"
	"testing"

	"github.com/omni-bridge/hub/pkg/chain"
)

type allowAllTokens struct{}

func (allowAllTokens) IsTokenOrigin(token chain.Address, originChain chain.Kind) bool { return true }

func mustEVMAddr(t *testing.T, k chain.Kind, b byte) chain.Address {
	t.Helper()
	var raw [20]byte
	raw[19] = b
	a, err := chain.NewEVMAddress(k, raw)
	if err != nil {
		t.Fatalf("NewEVMAddress: %v", err)
	}
	return a
}

func TestTransferMessage_Validate_AmountBelowFee(t *testing.T) {
	msg := TransferMessage{
		Amount:    big.NewInt(10),
		Fee:       Fee{TokenFee: big.NewInt(20)},
		Sender:    mustEVMAddr(t, chain.Eth, 1),
		Recipient: mustEVMAddr(t, chain.Base, 2),
	}
	err := msg.Validate(chain.Eth, allowAllTokens{})
	if !errors.Is(err, SentinelFor(KindInvalidFee)) {
		t.Fatalf("want KindInvalidFee, got %v", err)
	}
}

func TestTransferMessage_Validate_SenderChainMismatch(t *testing.T) {
	msg := TransferMessage{
		Amount:    big.NewInt(100),
		Fee:       Fee{TokenFee: big.NewInt(1)},
		Sender:    mustEVMAddr(t, chain.Base, 1),
		Recipient: mustEVMAddr(t, chain.Eth, 2),
	}
	err := msg.Validate(chain.Eth, allowAllTokens{})
	if !errors.Is(err, SentinelFor(KindChainMismatch)) {
		t.Fatalf("want KindChainMismatch, got %v", err)
	}
}

func TestTransferMessage_Validate_UTXORecipientRejectsNativeFee(t *testing.T) {
	recipient, err := chain.NewUTXOAddress(chain.Btc, "bc1qexampleaddressxxxxxxxxxxxxxxxxxxxxxxxxx")
	if err != nil {
		t.Fatalf("NewUTXOAddress: %v", err)
	}
	msg := TransferMessage{
		Amount:    big.NewInt(100),
		Fee:       Fee{TokenFee: big.NewInt(1), NativeFee: big.NewInt(5)},
		Sender:    mustEVMAddr(t, chain.Eth, 1),
		Recipient: recipient,
	}
	err = msg.Validate(chain.Eth, allowAllTokens{})
	if !errors.Is(err, SentinelFor(KindInvalidFee)) {
		t.Fatalf("want KindInvalidFee, got %v", err)
	}
}

func TestTransferMessage_Validate_OK(t *testing.T) {
	msg := TransferMessage{
		Amount:    big.NewInt(100),
		Fee:       Fee{TokenFee: big.NewInt(1), NativeFee: big.NewInt(5)},
		Sender:    mustEVMAddr(t, chain.Eth, 1),
		Recipient: mustEVMAddr(t, chain.Base, 2),
	}
	if err := msg.Validate(chain.Eth, allowAllTokens{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConvertToChainAmount_TruncatesDust(t *testing.T) {
	// origin has 18 decimals, destination 6: lose the low 12 digits.
	amount := new(big.Int)
	amount.SetString("1234567890123456789", 10)
	onChain, dust, err := ConvertToChainAmount(amount, 18, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if onChain.String() != "1234567" {
		t.Fatalf("onChain = %s, want 1234567", onChain)
	}
	if dust.String() != "890123456789" {
		t.Fatalf("dust = %s, want 890123456789", dust)
	}
}

func TestConvertToChainAmount_ScalesUpWithNoDust(t *testing.T) {
	onChain, dust, err := ConvertToChainAmount(big.NewInt(5), 6, 18)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := new(big.Int).Mul(big.NewInt(5), pow10(12))
	if onChain.Cmp(want) != 0 {
		t.Fatalf("onChain = %s, want %s", onChain, want)
	}
	if dust.Sign() != 0 {
		t.Fatalf("dust = %s, want 0", dust)
	}
}

func TestConvertFromChainAmount_RoundTrip(t *testing.T) {
	onChain, _, err := ConvertToChainAmount(big.NewInt(123), 18, 6)
	if err != nil {
		t.Fatalf("ConvertToChainAmount: %v", err)
	}
	back, err := ConvertFromChainAmount(onChain, 18, 6)
	if err != nil {
		t.Fatalf("ConvertFromChainAmount: %v", err)
	}
	want := new(big.Int).Mul(onChain, pow10(12))
	if back.Cmp(want) != 0 {
		t.Fatalf("back = %s, want %s", back, want)
	}
}

func TestConvertFromChainAmount_NotRepresentable(t *testing.T) {
	// 6 decimals on chain, 18 at origin: scaling down 1 unit isn't exact.
	_, err := ConvertFromChainAmount(big.NewInt(1), 6, 18)
	if !errors.Is(err, SentinelFor(KindInvalidAmountToTransfer)) {
		t.Fatalf("want KindInvalidAmountToTransfer, got %v", err)
	}
}
