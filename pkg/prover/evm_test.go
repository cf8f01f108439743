package prover

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/omni-bridge/hub/pkg/bridge"
	"github.com/omni-bridge/hub/pkg/chain"
	"github.com/omni-bridge/hub/pkg/codec"
)

func abiType(t *testing.T, s string) abi.Type {
	t.Helper()
	typ, err := abi.NewType(s, "", nil)
	if err != nil {
		t.Fatalf("abi.NewType(%q): %v", s, err)
	}
	return typ
}

func encodeInitTransferData(t *testing.T, amount, fee, nativeFee *big.Int, recipient, msg string) []byte {
	t.Helper()
	args := abi.Arguments{
		{Type: abiType(t, "uint128")},
		{Type: abiType(t, "uint128")},
		{Type: abiType(t, "uint128")},
		{Type: abiType(t, "string")},
		{Type: abiType(t, "string")},
	}
	data, err := args.Pack(amount, fee, nativeFee, recipient, msg)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	return data
}

func wireProof(t *testing.T, sender, token common.Address, originNonce uint64, data []byte) []byte {
	t.Helper()
	type wireEVMProof struct {
		TxHash   codec.H256   `json:"tx_hash"`
		LogIndex uint32       `json:"log_index"`
		Address  string       `json:"address"`
		Topics   []codec.H256 `json:"topics"`
		Data     []byte       `json:"data"`
	}
	p := wireEVMProof{
		Address: "0x00000000000000000000000000000000000001",
		Topics: []codec.H256{
			codec.H256(codec.TopicInitTransfer),
			codec.H256(common.BytesToHash(sender.Bytes())),
			codec.H256(common.BytesToHash(token.Bytes())),
			codec.H256(common.BigToHash(new(big.Int).SetUint64(originNonce))),
		},
		Data: data,
	}
	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func TestEVMVerifier_Verify_InitTransfer(t *testing.T) {
	v := NewEVMVerifier(nil)

	sender := common.HexToAddress("0x1111111111111111111111111111111111111111")
	token := common.HexToAddress("0x2222222222222222222222222222222222222222")

	data := encodeInitTransferData(t, big.NewInt(1000), big.NewInt(10), big.NewInt(0), "base:0x3333333333333333333333333333333333333333", "hello")
	raw := wireProof(t, sender, token, 42, data)

	result, err := v.Verify(context.Background(), Proof{Kind: chain.Eth, Raw: raw})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if result.Kind != bridge.ProverResultInitTransfer {
		t.Fatalf("kind = %v, want ProverResultInitTransfer", result.Kind)
	}
	if result.InitTransfer.OriginNonce != 42 {
		t.Errorf("origin nonce = %d, want 42", result.InitTransfer.OriginNonce)
	}
	if result.InitTransfer.Amount.Cmp(big.NewInt(1000)) != 0 {
		t.Errorf("amount = %s, want 1000", result.InitTransfer.Amount)
	}
	if result.InitTransfer.Sender.Chain != chain.Eth {
		t.Errorf("sender chain = %s, want eth", result.InitTransfer.Sender.Chain)
	}
}

func TestEVMVerifier_Verify_RejectsNonEVMChain(t *testing.T) {
	v := NewEVMVerifier(nil)
	_, err := v.Verify(context.Background(), Proof{Kind: chain.Btc, Raw: []byte("{}")})
	if err == nil {
		t.Fatal("expected error for non-EVM chain")
	}
}

func TestEVMVerifier_Verify_MalformedEnvelope(t *testing.T) {
	v := NewEVMVerifier(nil)
	_, err := v.Verify(context.Background(), Proof{Kind: chain.Eth, Raw: []byte("not json")})
	if err == nil {
		t.Fatal("expected error for malformed envelope")
	}
}

func TestDispatch_UnknownProver(t *testing.T) {
	_, err := Dispatch(context.Background(), "does-not-exist", Proof{Kind: chain.Eth})
	if err == nil {
		t.Fatal("expected error for unknown prover")
	}
}

func TestRegister_Dispatch(t *testing.T) {
	v := NewEVMVerifier(nil)
	Register(v)

	sender := common.HexToAddress("0x1111111111111111111111111111111111111111")
	token := common.HexToAddress("0x2222222222222222222222222222222222222222")
	data := encodeInitTransferData(t, big.NewInt(1), big.NewInt(0), big.NewInt(0), "base:0x3333333333333333333333333333333333333333", "")
	raw := wireProof(t, sender, token, 1, data)

	result, err := Dispatch(context.Background(), v.ID(), Proof{Kind: chain.Eth, Raw: raw})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.Prover != v.ID() {
		t.Errorf("result.Prover = %s, want %s", result.Prover, v.ID())
	}
}
