package transfer

import (
	"context"
	"fmt"
	"math/big"

	"github.com/omni-bridge/hub/pkg/bridge"
	"github.com/omni-bridge/hub/pkg/chain"
	"github.com/omni-bridge/hub/pkg/ledger"
	"github.com/omni-bridge/hub/pkg/prover"
)

// storageDepositInitTransfer is the fixed min_required_balance(init)
// deducted from a caller's storage deposit for each pending transfer it
// opens, and restored once that transfer is removed (§3, "AccountStorage";
// §4.1, init_transfer precondition).
const storageDepositInitTransfer = 1

// Coordinator applies a verified ProverResult to the hub ledger,
// enforcing the init_transfer -> sign_transfer -> fin_transfer sequence
// and the escrow accounting each step implies (§4.1, §4.3).
type Coordinator struct {
	Store *ledger.LedgerStore
}

func NewCoordinator(store *ledger.LedgerStore) *Coordinator {
	return &Coordinator{Store: store}
}

// checkNotPaused enforces the §4.1.2 pause bitmask before a mutating
// operation runs.
func (c *Coordinator) checkNotPaused(f bridge.PauseFlag) error {
	paused, err := c.Store.IsPaused(f)
	if err != nil {
		return err
	}
	if paused {
		return bridge.New(bridge.KindPaused, "operation is paused")
	}
	return nil
}

// escrowAdjust applies the §4.3 direction-matrix escrow adjustment for a
// transfer of tokenID from originChain to destChain, given the token's
// registered true origin.
func (c *Coordinator) escrowAdjust(originChain, destChain, tokenOrigin chain.Kind, tokenID bridge.TokenID, amount *big.Int) error {
	dir := Classify(originChain, destChain, tokenOrigin)
	adj, ok := Adjustment(dir, originChain, destChain)
	if !ok {
		return nil
	}
	if adj.Add {
		return c.Store.AddLocked(adj.Chain, tokenID, amount)
	}
	return c.Store.SubLocked(adj.Chain, tokenID, amount)
}

// InitTransfer admits a newly observed origin-chain transfer into the
// ledger as Pending, after checking it hasn't been processed before and
// applying the escrow adjustment its Direction implies. This is the
// proof-consuming path: the transfer originated on a peripheral chain and
// r was extracted from a verified ProverResult (§4.2, §4.3).
func (c *Coordinator) InitTransfer(ctx context.Context, r *bridge.InitTransferResult) (bridge.TransferId, error) {
	id := bridge.TransferId{OriginChain: r.OriginChain, OriginNonce: r.OriginNonce}

	if err := c.checkNotPaused(bridge.PauseInitTransfer); err != nil {
		return id, err
	}
	if err := c.Store.MarkNonceUsed(r.OriginChain, r.OriginNonce); err != nil {
		return id, err
	}

	tokenID, err := c.Store.TokenIDForAddress(r.OriginChain, r.Token)
	if err != nil {
		return id, bridge.New(bridge.KindTokenNotRegistered, "token %s unknown on %s", r.Token, r.OriginChain)
	}
	reg, err := c.Store.GetTokenRegistration(tokenID)
	if err != nil {
		return id, err
	}

	msg := bridge.TransferMessage{
		OriginNonce: r.OriginNonce,
		Token:       r.Token,
		Amount:      r.Amount,
		Fee:         r.Fee,
		Sender:      r.Sender,
		Recipient:   r.Recipient,
		Msg:         r.Msg,
	}
	if err := msg.Validate(r.OriginChain, c.Store); err != nil {
		return id, err
	}

	if err := c.escrowAdjust(r.OriginChain, r.Recipient.Chain, reg.OriginChain, tokenID, r.Amount); err != nil {
		return id, err
	}

	if err := c.Store.InitTransfer(id, msg); err != nil {
		return id, err
	}
	return id, nil
}

// InitTransferDirect is the hub-native, caller-initiated init_transfer:
// the hub itself is the origin chain, there is no prover.Proof to
// verify, and the origin_nonce comes from the hub's own global
// current_origin_nonce counter rather than a peripheral chain's log
// (§3, "Nonces"; §4.1, first bullet). It is how value leaves the hub —
// e.g. Hub→EVM, burning a bridged token the caller already holds.
func (c *Coordinator) InitTransferDirect(ctx context.Context, caller, token chain.Address, amount *big.Int, recipient chain.Address, fee bridge.Fee, msg string) (bridge.TransferId, error) {
	if err := c.checkNotPaused(bridge.PauseInitTransfer); err != nil {
		return bridge.TransferId{}, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return bridge.TransferId{}, bridge.New(bridge.KindInvalidAmountToTransfer, "amount must be positive")
	}

	if err := c.Store.DeductStorage(caller, storageDepositInitTransfer); err != nil {
		return bridge.TransferId{}, err
	}

	tokenID, err := c.Store.TokenIDForAddress(chain.Near, token)
	if err != nil {
		_ = c.Store.ReleaseStorage(caller, storageDepositInitTransfer)
		return bridge.TransferId{}, bridge.New(bridge.KindTokenNotRegistered, "token %s unknown on hub", token)
	}
	reg, err := c.Store.GetTokenRegistration(tokenID)
	if err != nil {
		_ = c.Store.ReleaseStorage(caller, storageDepositInitTransfer)
		return bridge.TransferId{}, err
	}

	nonce, err := c.Store.NextOriginNonce()
	if err != nil {
		_ = c.Store.ReleaseStorage(caller, storageDepositInitTransfer)
		return bridge.TransferId{}, err
	}
	id := bridge.TransferId{OriginChain: chain.Near, OriginNonce: nonce}

	msgVal := bridge.TransferMessage{
		OriginNonce: nonce,
		Token:       token,
		Amount:      amount,
		Fee:         fee,
		Sender:      caller,
		Recipient:   recipient,
		Msg:         msg,
	}
	if err := msgVal.Validate(chain.Near, c.Store); err != nil {
		_ = c.Store.ReleaseStorage(caller, storageDepositInitTransfer)
		return id, err
	}

	if err := c.escrowAdjust(chain.Near, recipient.Chain, reg.OriginChain, tokenID, amount); err != nil {
		_ = c.Store.ReleaseStorage(caller, storageDepositInitTransfer)
		return id, err
	}

	if err := c.Store.InitTransfer(id, msgVal); err != nil {
		_ = c.Store.ReleaseStorage(caller, storageDepositInitTransfer)
		return id, err
	}
	return id, nil
}

// SignTransfer records that proverID produced the signature/VAA a
// relayer will carry to the destination chain, allocating the
// destination_nonce at sign time (§3, "filled when the hub signs for
// that destination"; §4.1, sign_transfer). A transfer already Signed or
// Finalised is idempotent: it returns the previously-allocated payload
// rather than allocating (or erroring) again, per §8 Scenario 2.
func (c *Coordinator) SignTransfer(ctx context.Context, id bridge.TransferId, proverID bridge.ProverId) (bridge.TransferMessage, error) {
	if err := c.checkNotPaused(bridge.PauseSignTransfer); err != nil {
		return bridge.TransferMessage{}, err
	}

	boundProver, err := c.Store.GetProver(id.OriginChain)
	if err != nil {
		return bridge.TransferMessage{}, err
	}
	if boundProver != proverID {
		return bridge.TransferMessage{}, bridge.New(bridge.KindUnknownFactory, "prover %s is not bound to chain %s (want %s)", proverID, id.OriginChain, boundProver)
	}

	rec, err := c.Store.GetTransfer(id)
	if err != nil {
		return bridge.TransferMessage{}, err
	}
	if rec.Status != ledger.TransferPending {
		// Already signed (or finalised): reuse the destination_nonce
		// already allocated instead of touching the counter again.
		return rec.Message, nil
	}

	nonce, err := c.Store.NextDestinationNonce(rec.Message.Recipient.Chain)
	if err != nil {
		return bridge.TransferMessage{}, err
	}
	rec.Message.DestinationNonce = nonce

	if err := c.Store.PutTransfer(*rec); err != nil {
		return bridge.TransferMessage{}, err
	}
	if err := c.Store.MarkSigned(id, proverID); err != nil {
		return bridge.TransferMessage{}, err
	}
	return rec.Message, nil
}

// FinTransfer applies a verified destination-chain fin_transfer result:
// marks the transfer Finalised and pays out any fast-transfer relayer
// that had already fronted the funds.
func (c *Coordinator) FinTransfer(ctx context.Context, r *bridge.FinTransferResult, destChain chain.Kind, txRef string) (chain.Address, error) {
	if err := c.checkNotPaused(bridge.PauseFinTransfer); err != nil {
		return chain.Address{}, err
	}

	id := bridge.TransferId{OriginChain: r.OriginChain, OriginNonce: r.OriginNonce}
	if err := c.Store.MarkFinalised(id, destChain, txRef); err != nil {
		return chain.Address{}, err
	}

	if rec, err := c.Store.GetTransfer(id); err == nil {
		_ = c.Store.ReleaseStorage(rec.Message.Sender, storageDepositInitTransfer)
	}

	fastID := bridge.ComputeFastTransferId(r.Token, r.Amount, r.Recipient, id, "")
	payTo, err := c.Store.FinaliseFastTransfer(fastID)
	if err != nil {
		// No matching fast-transfer fill: the slow path pays the
		// recipient directly, which is not an error.
		return r.Recipient, nil
	}
	return payTo, nil
}

// ClaimFee closes out a hub-originated transfer once proof of its
// destination-side completion is brought back to the hub: it finalises
// the record and releases the caller's storage deposit, the source-side
// counterpart to FinTransfer's destination-side bookkeeping (§3,
// Lifecycle, "removed on successful claim_fee (source side)"; §4.1,
// claim_fee).
func (c *Coordinator) ClaimFee(ctx context.Context, proverID bridge.ProverId, proof prover.Proof) (bridge.TransferId, error) {
	result, err := prover.Dispatch(ctx, proverID, proof)
	if err != nil {
		return bridge.TransferId{}, err
	}
	if result.Kind != bridge.ProverResultFinTransfer || result.FinTransfer == nil {
		return bridge.TransferId{}, bridge.New(bridge.KindInvalidProofMessage, "expected FinTransfer result for claim_fee, got kind %d", result.Kind)
	}
	r := result.FinTransfer
	id := bridge.TransferId{OriginChain: r.OriginChain, OriginNonce: r.OriginNonce}

	rec, err := c.Store.GetTransfer(id)
	if err != nil {
		return id, err
	}
	if rec.Status == ledger.TransferFinalised {
		return id, bridge.New(bridge.KindTransferAlreadyFinalised, "transfer %s already finalised", id)
	}

	if err := c.Store.MarkFinalised(id, r.Recipient.Chain, proof.Kind.String()); err != nil {
		return id, err
	}
	if err := c.Store.ReleaseStorage(rec.Message.Sender, storageDepositInitTransfer); err != nil {
		return id, err
	}
	return id, nil
}

// UpdateFee bumps a still-pending transfer's fee, enforcing the
// monotonicity invariant that both the token-fee and native-fee can only
// increase (§4.1, update_fee; §8 property 8, Scenario 6).
func (c *Coordinator) UpdateFee(ctx context.Context, id bridge.TransferId, newFee bridge.Fee) error {
	rec, err := c.Store.GetTransfer(id)
	if err != nil {
		return err
	}
	if rec.Status == ledger.TransferFinalised {
		return bridge.New(bridge.KindTransferAlreadyFinalised, "transfer %s already finalised", id)
	}
	if newFee.TokenFee == nil || newFee.NativeFee == nil {
		return bridge.New(bridge.KindInvalidFee, "new fee must set both token_fee and native_fee")
	}

	old := rec.Message.Fee
	if old.TokenFee != nil && newFee.TokenFee.Cmp(old.TokenFee) < 0 {
		return bridge.New(bridge.KindInvalidFee, "new token fee %s is less than current %s", newFee.TokenFee, old.TokenFee)
	}
	if old.NativeFee != nil && newFee.NativeFee.Cmp(old.NativeFee) < 0 {
		return bridge.New(bridge.KindInvalidFee, "new native fee %s is less than current %s", newFee.NativeFee, old.NativeFee)
	}
	if rec.Message.Amount != nil && rec.Message.Amount.Cmp(newFee.TokenFee) < 0 {
		return bridge.New(bridge.KindInvalidFee, "amount %s is less than new token fee %s", rec.Message.Amount, newFee.TokenFee)
	}

	rec.Message.Fee = newFee
	return c.Store.PutTransfer(*rec)
}

// DispatchAndInit runs proof through the prover registry and, if it
// decodes to an InitTransfer claim, admits it via InitTransfer.
func DispatchAndInit(ctx context.Context, c *Coordinator, proverID bridge.ProverId, proof prover.Proof) (bridge.TransferId, error) {
	result, err := prover.Dispatch(ctx, proverID, proof)
	if err != nil {
		return bridge.TransferId{}, err
	}
	if result.Kind != bridge.ProverResultInitTransfer || result.InitTransfer == nil {
		return bridge.TransferId{}, fmt.Errorf("transfer: expected InitTransfer result, got kind %d", result.Kind)
	}
	return c.InitTransfer(ctx, result.InitTransfer)
}
