// Command hubsim runs an in-process hub ledger against a synthetic EVM
// InitTransfer log, exercising proof verification and ledger admission
// end-to-end without any live chain RPC — useful for smoke-testing the
// ledger and prover wiring.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"os"

	dbm "github.com/cometbft/cometbft-db"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/omni-bridge/hub/pkg/bridge"
	"github.com/omni-bridge/hub/pkg/chain"
	"github.com/omni-bridge/hub/pkg/codec"
	"github.com/omni-bridge/hub/pkg/kvdb"
	"github.com/omni-bridge/hub/pkg/ledger"
	"github.com/omni-bridge/hub/pkg/prover"
	"github.com/omni-bridge/hub/pkg/transfer"
)

var logger = log.New(os.Stdout, "[hubsim] ", log.LstdFlags)

func main() {
	db := dbm.NewMemDB()
	store := ledger.NewLedgerStore(kvdb.NewKVAdapter(db))
	coordinator := transfer.NewCoordinator(store)
	prover.Register(prover.NewEVMVerifier(nil))

	tokenID := bridge.TokenID("usdc")
	token, _ := chain.NewEVMAddress(chain.Eth, addr20(2))
	if err := store.RegisterTokenOrigin(tokenID, chain.Eth, token, 6); err != nil {
		logger.Fatalf("register token: %v", err)
	}
	if err := store.RegisterProver(chain.Eth, "evm"); err != nil {
		logger.Fatalf("bind prover: %v", err)
	}

	sender, _ := chain.NewEVMAddress(chain.Eth, addr20(1))
	recipient, _ := chain.NewEVMAddress(chain.Base, addr20(3))

	raw, err := buildInitTransferProof(sender, token, recipient, 1)
	if err != nil {
		logger.Fatalf("build proof: %v", err)
	}

	ctx := context.Background()

	id, err := transfer.DispatchAndInit(ctx, coordinator, "evm", prover.Proof{Kind: chain.Eth, Raw: raw})
	if err != nil {
		logger.Fatalf("init transfer: %v", err)
	}
	fmt.Printf("admitted transfer %s\n", id)

	// sign_transfer allocates destination_nonce at sign time, not at
	// init time (§3, "filled when the hub signs for that destination").
	// A second call for the same transfer is idempotent.
	payload, err := coordinator.SignTransfer(ctx, id, "evm")
	if err != nil {
		logger.Fatalf("sign transfer: %v", err)
	}
	again, err := coordinator.SignTransfer(ctx, id, "evm")
	if err != nil {
		logger.Fatalf("sign transfer (replay): %v", err)
	}
	fmt.Printf("destination_nonce=%d (idempotent replay: %d)\n", payload.DestinationNonce, again.DestinationNonce)

	runHubOriginatedDemo(ctx, coordinator, store)
}

// runHubOriginatedDemo exercises the direct, caller-initiated
// init_transfer path (§4.1, first bullet; §8 Scenario 2: "Hub→EVM"),
// where the hub itself is the origin chain and no proof is involved:
// a hub-native token is sent out to an EVM recipient, locking escrow
// for the destination the way the EVM→hub demo above unlocks it.
func runHubOriginatedDemo(ctx context.Context, coordinator *transfer.Coordinator, store *ledger.LedgerStore) {
	hubTokenID := bridge.TokenID("wrapped-near")
	hubToken, _ := chain.NewHubAddress("wrap.near")
	if err := store.RegisterTokenOrigin(hubTokenID, chain.Near, hubToken, 24); err != nil {
		logger.Fatalf("register hub-native token: %v", err)
	}
	if err := store.RegisterProver(chain.Near, "evm"); err != nil {
		logger.Fatalf("bind hub prover: %v", err)
	}

	caller, _ := chain.NewHubAddress("alice.near")
	recipient, _ := chain.NewEVMAddress(chain.Eth, addr20(4))
	if err := store.CreditStorage(caller, 10); err != nil {
		logger.Fatalf("credit storage: %v", err)
	}

	fee := bridge.Fee{TokenFee: big.NewInt(5), NativeFee: big.NewInt(0)}
	id, err := coordinator.InitTransferDirect(ctx, caller, hubToken, big.NewInt(500), recipient, fee, "")
	if err != nil {
		logger.Fatalf("init transfer (hub-originated): %v", err)
	}
	fmt.Printf("hub-originated transfer %s sends 500 of a hub-native token to EVM\n", id)

	payload, err := coordinator.SignTransfer(ctx, id, "evm")
	if err != nil {
		logger.Fatalf("sign transfer (hub-originated): %v", err)
	}
	fmt.Printf("hub-originated destination_nonce=%d\n", payload.DestinationNonce)
}

var nonIndexedInitTransfer = abi.Arguments{
	{Type: mustType("uint128")},
	{Type: mustType("uint128")},
	{Type: mustType("uint128")},
	{Type: mustType("string")},
	{Type: mustType("string")},
}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// buildInitTransferProof ABI-encodes an InitTransfer log the way the
// EVM factory contract would, for the EVM verifier to decode.
func buildInitTransferProof(sender, token, recipient chain.Address, originNonce uint64) ([]byte, error) {
	amount := big.NewInt(1_000_000)
	fee := big.NewInt(100)
	nativeFee := big.NewInt(0)

	data, err := nonIndexedInitTransfer.Pack(amount, fee, nativeFee, recipient.String(), "")
	if err != nil {
		return nil, fmt.Errorf("pack InitTransfer data: %w", err)
	}

	type wireEVMProof struct {
		TxHash   codec.H256   `json:"tx_hash"`
		LogIndex uint32       `json:"log_index"`
		Address  string       `json:"address"`
		Topics   []codec.H256 `json:"topics"`
		Data     []byte       `json:"data"`
	}

	senderAddr := common.BytesToAddress(sender.Raw[:20])
	tokenAddr := common.BytesToAddress(token.Raw[:20])

	proof := wireEVMProof{
		TxHash:   codec.H256{0x01},
		LogIndex: 0,
		Address:  "0x000000000000000000000000000000000000aa",
		Topics: []codec.H256{
			codec.H256(codec.TopicInitTransfer),
			codec.H256(common.BytesToHash(senderAddr.Bytes())),
			codec.H256(common.BytesToHash(tokenAddr.Bytes())),
			codec.H256(common.BigToHash(new(big.Int).SetUint64(originNonce))),
		},
		Data: data,
	}
	return json.Marshal(proof)
}

func addr20(b byte) [20]byte {
	var a [20]byte
	a[19] = b
	return a
}
