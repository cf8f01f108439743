package ledger

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/omni-bridge/hub/pkg/bridge"
	"github.com/omni-bridge/hub/pkg/chain"
)

// KV is the minimal key-value interface the ledger needs. pkg/kvdb wraps
// a cometbft-db handle behind it.
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
}

// LedgerStore provides high-level, typed access to hub ledger data kept
// in the KV store.
//
// CONCURRENCY: LedgerStore assumes single-writer access — one goroutine
// applying operations in sequence, the way the hub chain applies
// transactions one at a time. Read-only callers (RPC handlers) must
// synchronize externally if they share a LedgerStore with a writer.
type LedgerStore struct {
	kv KV
}

// NewLedgerStore creates a new LedgerStore instance.
func NewLedgerStore(kv KV) *LedgerStore {
	return &LedgerStore{kv: kv}
}

// ====== KV Key Layout ======

var (
	keyTransferPrefix     = []byte("transfer:")      // + origin_chain byte + nonce(BE8) -> TransferRecord
	keyFastTransferPrefix = []byte("fasttransfer:")   // + FastTransferId(32) -> FastTransferRecord
	keyTokenPrefix        = []byte("token:")          // + TokenID -> TokenRegistration
	keyTokenAddrPrefix    = []byte("token_by_addr:")  // + chain byte + address string -> TokenID
	keyLockedPrefix       = []byte("locked:")         // + chain byte + TokenID -> big.Int decimal string
	keyRelayerPrefix      = []byte("relayer:")        // + address string -> RelayerRecord
	keyAccountPrefix      = []byte("account:")        // + address string -> AccountRecord
	keyProverPrefix       = []byte("prover:")         // + chain byte -> ProverBinding
	keyDestNoncePrefix    = []byte("destnonce:")      // + chain byte -> uint64(BE8), next nonce to assign
	keyUsedNoncePrefix    = []byte("usednonce:")      // + origin_chain byte + nonce_shard(BE8) -> bitmap(128 bytes, 1024 bits)
	keyPauseMask          = []byte("pause:mask")      // -> uint32(BE4)
	keyOriginNonce        = []byte("originnonce")     // -> uint64(BE8), global current_origin_nonce for hub-initiated transfers
)

func transferKey(id bridge.TransferId) []byte {
	k := append([]byte{}, keyTransferPrefix...)
	k = append(k, byte(id.OriginChain))
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], id.OriginNonce)
	return append(k, n[:]...)
}

func fastTransferKey(id bridge.FastTransferId) []byte {
	return append(append([]byte{}, keyFastTransferPrefix...), id[:]...)
}

func tokenKey(id bridge.TokenID) []byte {
	return append(append([]byte{}, keyTokenPrefix...), []byte(id)...)
}

func tokenByAddrKey(c chain.Kind, addr chain.Address) []byte {
	k := append([]byte{}, keyTokenAddrPrefix...)
	k = append(k, byte(c))
	return append(k, []byte(addr.String())...)
}

func lockedKeyBytes(c chain.Kind, token bridge.TokenID) []byte {
	k := append([]byte{}, keyLockedPrefix...)
	k = append(k, byte(c))
	return append(k, []byte(token)...)
}

func relayerKey(addr chain.Address) []byte {
	return append(append([]byte{}, keyRelayerPrefix...), []byte(addr.String())...)
}

func accountKey(addr chain.Address) []byte {
	return append(append([]byte{}, keyAccountPrefix...), []byte(addr.String())...)
}

func proverKey(c chain.Kind) []byte {
	return append(append([]byte{}, keyProverPrefix...), byte(c))
}

func destNonceKey(c chain.Kind) []byte {
	return append(append([]byte{}, keyDestNoncePrefix...), byte(c))
}

// ====== Transfers ======

// InitTransfer creates a new pending TransferRecord. Returns
// ErrTransferNotFound-adjacent conflict only via the caller's own replay
// check (MarkNonceUsed) — this method does not itself reject duplicates.
func (s *LedgerStore) InitTransfer(id bridge.TransferId, msg bridge.TransferMessage) error {
	rec := TransferRecord{Id: id, Message: msg, Status: TransferPending}
	return s.putJSON(transferKey(id), rec)
}

// PutTransfer overwrites a TransferRecord in place, for operations
// (update_fee) that mutate a pending transfer without changing its
// lifecycle status.
func (s *LedgerStore) PutTransfer(rec TransferRecord) error {
	return s.putJSON(transferKey(rec.Id), rec)
}

// GetTransfer loads a TransferRecord by id.
func (s *LedgerStore) GetTransfer(id bridge.TransferId) (*TransferRecord, error) {
	var rec TransferRecord
	ok, err := s.getJSON(transferKey(id), &rec)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTransferNotFound
	}
	return &rec, nil
}

// MarkSigned transitions a transfer Pending -> Signed once sign_transfer
// succeeds, recording which prover produced the signature.
func (s *LedgerStore) MarkSigned(id bridge.TransferId, prover bridge.ProverId) error {
	rec, err := s.GetTransfer(id)
	if err != nil {
		return err
	}
	if rec.Status == TransferFinalised {
		return bridge.New(bridge.KindTransferAlreadyFinalised, "transfer %s already finalised", id)
	}
	rec.Status = TransferSigned
	rec.SignedBy = prover
	return s.putJSON(transferKey(id), *rec)
}

// MarkFinalised transitions a transfer to Finalised once fin_transfer is
// observed, recording the destination chain and transaction reference.
func (s *LedgerStore) MarkFinalised(id bridge.TransferId, onChain chain.Kind, tx string) error {
	rec, err := s.GetTransfer(id)
	if err != nil {
		return err
	}
	if rec.Status == TransferFinalised {
		return bridge.New(bridge.KindTransferAlreadyFinalised, "transfer %s already finalised", id)
	}
	rec.Status = TransferFinalised
	rec.FinalisedOnChain = onChain
	rec.FinalisedTx = tx
	return s.putJSON(transferKey(id), *rec)
}

// ====== Fast transfers ======

func (s *LedgerStore) CreateFastTransfer(id bridge.FastTransferId, amount *big.Int, fee bridge.Fee, recipient chain.Address) error {
	rec := FastTransferRecord{
		Id: id,
		FastTransfer: bridge.FastTransfer{
			Status:    bridge.FastTransferUnfulfilled,
			Amount:    amount,
			Fee:       fee,
			Recipient: recipient,
		},
	}
	return s.putJSON(fastTransferKey(id), rec)
}

func (s *LedgerStore) GetFastTransfer(id bridge.FastTransferId) (*FastTransferRecord, error) {
	var rec FastTransferRecord
	ok, err := s.getJSON(fastTransferKey(id), &rec)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrFastTransferNotFound
	}
	return &rec, nil
}

func (s *LedgerStore) FillFastTransfer(id bridge.FastTransferId, by chain.Address) error {
	rec, err := s.GetFastTransfer(id)
	if err != nil {
		return err
	}
	if err := rec.Fill(by); err != nil {
		return err
	}
	return s.putJSON(fastTransferKey(id), *rec)
}

func (s *LedgerStore) FinaliseFastTransfer(id bridge.FastTransferId) (chain.Address, error) {
	rec, err := s.GetFastTransfer(id)
	if err != nil {
		return chain.Address{}, err
	}
	payTo, err := rec.Finalise()
	if err != nil {
		return chain.Address{}, err
	}
	if err := s.putJSON(fastTransferKey(id), *rec); err != nil {
		return chain.Address{}, err
	}
	return payTo, nil
}

// ====== Token registry ======

// RegisterTokenOrigin creates a new TokenRegistration for a token native
// to originChain.
func (s *LedgerStore) RegisterTokenOrigin(tokenID bridge.TokenID, originChain chain.Kind, originAddr chain.Address, originDecimals uint8) error {
	reg := TokenRegistration{
		TokenID:        tokenID,
		OriginChain:    originChain,
		OriginAddress:  originAddr,
		OriginDecimals: originDecimals,
		Bindings:       map[chain.Kind]bridge.TokenBinding{},
	}
	if err := s.putJSON(tokenKey(tokenID), reg); err != nil {
		return err
	}
	return s.kv.Set(tokenByAddrKey(originChain, originAddr), []byte(tokenID))
}

// BindToken records (or updates) a token's binding on a non-origin chain,
// per deploy_token/log_metadata/bind_token (§4.1).
func (s *LedgerStore) BindToken(tokenID bridge.TokenID, binding bridge.TokenBinding) error {
	reg, err := s.GetTokenRegistration(tokenID)
	if err != nil {
		return err
	}
	reg.Bindings[binding.Chain] = binding
	if err := s.putJSON(tokenKey(tokenID), *reg); err != nil {
		return err
	}
	return s.kv.Set(tokenByAddrKey(binding.Chain, binding.Address), []byte(tokenID))
}

func (s *LedgerStore) GetTokenRegistration(tokenID bridge.TokenID) (*TokenRegistration, error) {
	var reg TokenRegistration
	ok, err := s.getJSON(tokenKey(tokenID), &reg)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTokenNotFound
	}
	if reg.Bindings == nil {
		reg.Bindings = map[chain.Kind]bridge.TokenBinding{}
	}
	return &reg, nil
}

// TokenIDForAddress resolves the canonical TokenID for a token address
// observed on chain c.
func (s *LedgerStore) TokenIDForAddress(c chain.Kind, addr chain.Address) (bridge.TokenID, error) {
	v, err := s.kv.Get(tokenByAddrKey(c, addr))
	if err != nil || len(v) == 0 {
		return "", ErrTokenNotFound
	}
	return bridge.TokenID(v), nil
}

// IsTokenOrigin implements bridge.TokenOriginLookup: true when token is
// exactly the registered origin address for originChain.
func (s *LedgerStore) IsTokenOrigin(token chain.Address, originChain chain.Kind) bool {
	tokenID, err := s.TokenIDForAddress(originChain, token)
	if err != nil {
		return false
	}
	reg, err := s.GetTokenRegistration(tokenID)
	if err != nil {
		return false
	}
	return reg.OriginChain == originChain && reg.OriginAddress.Equal(token)
}

// ====== Locked tokens ======

func (s *LedgerStore) GetLocked(c chain.Kind, token bridge.TokenID) (*big.Int, error) {
	v, err := s.kv.Get(lockedKeyBytes(c, token))
	if err != nil {
		return nil, err
	}
	if len(v) == 0 {
		return big.NewInt(0), nil
	}
	n, ok := new(big.Int).SetString(string(v), 10)
	if !ok {
		return nil, fmt.Errorf("ledger: corrupt locked balance for %s on %s", token, c)
	}
	return n, nil
}

func (s *LedgerStore) AddLocked(c chain.Kind, token bridge.TokenID, amount *big.Int) error {
	cur, err := s.GetLocked(c, token)
	if err != nil {
		return err
	}
	next := new(big.Int).Add(cur, amount)
	if next.BitLen() > 128 {
		return bridge.New(bridge.KindOverflow, "locked balance for %s on %s would overflow 128 bits", token, c)
	}
	return s.kv.Set(lockedKeyBytes(c, token), []byte(next.String()))
}

func (s *LedgerStore) SubLocked(c chain.Kind, token bridge.TokenID, amount *big.Int) error {
	cur, err := s.GetLocked(c, token)
	if err != nil {
		return err
	}
	if cur.Cmp(amount) < 0 {
		return bridge.New(bridge.KindInvalidAmountToTransfer, "insufficient locked balance for %s on %s: have %s, need %s", token, c, cur, amount)
	}
	return s.kv.Set(lockedKeyBytes(c, token), []byte(new(big.Int).Sub(cur, amount).String()))
}

// ====== Relayers ======

func (s *LedgerStore) GetRelayer(addr chain.Address) (*RelayerRecord, error) {
	var rec RelayerRecord
	ok, err := s.getJSON(relayerKey(addr), &rec)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRelayerNotFound
	}
	return &rec, nil
}

func (s *LedgerStore) PutRelayer(rec RelayerRecord) error {
	return s.putJSON(relayerKey(rec.Account), rec)
}

// ====== Account storage deposits ======

func (s *LedgerStore) GetAccount(addr chain.Address) (*AccountRecord, error) {
	var rec AccountRecord
	ok, err := s.getJSON(accountKey(addr), &rec)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &rec, nil
}

func (s *LedgerStore) PutAccount(rec AccountRecord) error {
	return s.putJSON(accountKey(rec.Account), rec)
}

// ====== Provers ======

func (s *LedgerStore) RegisterProver(c chain.Kind, proverID bridge.ProverId) error {
	return s.putJSON(proverKey(c), ProverBinding{Chain: c, ProverID: proverID})
}

func (s *LedgerStore) GetProver(c chain.Kind) (bridge.ProverId, error) {
	var pb ProverBinding
	ok, err := s.getJSON(proverKey(c), &pb)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrProverNotFound
	}
	return pb.ProverID, nil
}

// ====== Destination nonces ======

// NextDestinationNonce returns the next ordering nonce the hub assigns
// for transfers bound to destChain, incrementing the stored counter.
func (s *LedgerStore) NextDestinationNonce(destChain chain.Kind) (uint64, error) {
	v, err := s.kv.Get(destNonceKey(destChain))
	if err != nil {
		return 0, err
	}
	var next uint64
	if len(v) == 8 {
		next = binary.BigEndian.Uint64(v) + 1
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], next)
	if err := s.kv.Set(destNonceKey(destChain), b[:]); err != nil {
		return 0, err
	}
	return next, nil
}

// NextOriginNonce returns the next value of the hub's global
// current_origin_nonce counter, incrementing the stored value. It backs
// the direct, caller-initiated init_transfer, where the hub itself is
// the origin chain (§3, "Nonces"; §4.1, "init_transfer").
func (s *LedgerStore) NextOriginNonce() (uint64, error) {
	v, err := s.kv.Get(keyOriginNonce)
	if err != nil {
		return 0, err
	}
	var next uint64
	if len(v) == 8 {
		next = binary.BigEndian.Uint64(v) + 1
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], next)
	if err := s.kv.Set(keyOriginNonce, b[:]); err != nil {
		return 0, err
	}
	return next, nil
}

// ====== Account storage deposit bookkeeping ======

// CreditStorage increases addr's total and available storage deposit by
// n, as a storage_deposit action would before the account can open
// pending transfers (§3, "AccountStorage").
func (s *LedgerStore) CreditStorage(addr chain.Address, n uint64) error {
	rec, err := s.GetAccount(addr)
	if err != nil {
		if !errors.Is(err, ErrAccountNotFound) {
			return err
		}
		rec = &AccountRecord{Account: addr}
	}
	rec.AccountStorage.Total += n
	rec.AccountStorage.Available += n
	return s.PutAccount(*rec)
}

// DeductStorage reserves n units of addr's available storage deposit,
// failing with KindInsufficientStorageDeposit if it isn't covered
// (§4.1, init_transfer precondition "caller has available storage").
func (s *LedgerStore) DeductStorage(addr chain.Address, n uint64) error {
	rec, err := s.GetAccount(addr)
	if err != nil {
		if !errors.Is(err, ErrAccountNotFound) {
			return err
		}
		rec = &AccountRecord{Account: addr}
	}
	if err := rec.AccountStorage.Deduct(n); err != nil {
		return err
	}
	return s.PutAccount(*rec)
}

// ReleaseStorage restores n units of previously-deducted storage deposit
// to addr, as happens when a pending transfer is removed (§3,
// "AccountStorage").
func (s *LedgerStore) ReleaseStorage(addr chain.Address, n uint64) error {
	rec, err := s.GetAccount(addr)
	if err != nil {
		return err
	}
	rec.AccountStorage.Release(n)
	return s.PutAccount(*rec)
}

// ====== Used-nonce replay guard ======

const nonceShardBits = 1024
const nonceShardBytes = nonceShardBits / 8

func usedNonceKey(originChain chain.Kind, nonce uint64) ([]byte, uint64) {
	shard := nonce / nonceShardBits
	bit := nonce % nonceShardBits
	k := append([]byte{}, keyUsedNoncePrefix...)
	k = append(k, byte(originChain))
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], shard)
	return append(k, n[:]...), bit
}

// IsNonceUsed reports whether (originChain, nonce) has already been
// finalised, guarding against transfer replay (§7, NonceAlreadyUsed).
func (s *LedgerStore) IsNonceUsed(originChain chain.Kind, nonce uint64) (bool, error) {
	key, bit := usedNonceKey(originChain, nonce)
	v, err := s.kv.Get(key)
	if err != nil {
		return false, err
	}
	if len(v) != nonceShardBytes {
		return false, nil
	}
	return v[bit/8]&(1<<(bit%8)) != 0, nil
}

// MarkNonceUsed records (originChain, nonce) as consumed. Returns
// KindNonceAlreadyUsed if it was already set.
func (s *LedgerStore) MarkNonceUsed(originChain chain.Kind, nonce uint64) error {
	key, bit := usedNonceKey(originChain, nonce)
	v, err := s.kv.Get(key)
	if err != nil {
		return err
	}
	shard := make([]byte, nonceShardBytes)
	if len(v) == nonceShardBytes {
		copy(shard, v)
	}
	if shard[bit/8]&(1<<(bit%8)) != 0 {
		return bridge.New(bridge.KindNonceAlreadyUsed, "nonce %d on %s already used", nonce, originChain)
	}
	shard[bit/8] |= 1 << (bit % 8)
	return s.kv.Set(key, shard)
}

// ====== Pause mask ======

func (s *LedgerStore) GetPauseMask() (bridge.PauseMask, error) {
	v, err := s.kv.Get(keyPauseMask)
	if err != nil {
		return 0, err
	}
	if len(v) != 4 {
		return 0, nil
	}
	return bridge.PauseMask(binary.BigEndian.Uint32(v)), nil
}

func (s *LedgerStore) SetPauseMask(m bridge.PauseMask) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(m))
	return s.kv.Set(keyPauseMask, b[:])
}

// IsPaused reports whether f is currently raised in the pause bitmask
// (§4.1.2).
func (s *LedgerStore) IsPaused(f bridge.PauseFlag) (bool, error) {
	mask, err := s.GetPauseMask()
	if err != nil {
		return false, err
	}
	return mask.IsPaused(f), nil
}

// Pause raises f in the pause bitmask. Only a pausable_admin caller is
// meant to reach this (§4.1.2); the ledger itself does not authorize —
// that's the contract-boundary's job (§9, "global role table").
func (s *LedgerStore) Pause(f bridge.PauseFlag) error {
	mask, err := s.GetPauseMask()
	if err != nil {
		return err
	}
	mask.Set(f)
	return s.SetPauseMask(mask)
}

// Unpause clears f in the pause bitmask. Only admin, not
// pausable_admin, is meant to reach this (§4.1.2).
func (s *LedgerStore) Unpause(f bridge.PauseFlag) error {
	mask, err := s.GetPauseMask()
	if err != nil {
		return err
	}
	mask.Clear(f)
	return s.SetPauseMask(mask)
}

// ====== Relayer staking (§4.1.1) ======

// ApplyForTrustedRelayer registers addr's stake and starts its waiting
// period. Re-applying while an application already exists is rejected —
// the applicant must resign first.
func (s *LedgerStore) ApplyForTrustedRelayer(addr chain.Address, stake, minStake *big.Int, nowNanos, waitingPeriodNanos int64) error {
	if _, err := s.GetRelayer(addr); err == nil {
		return bridge.New(bridge.KindRelayerApplicationExists, "relayer %s already has an application", addr)
	} else if !errors.Is(err, ErrRelayerNotFound) {
		return err
	}
	if stake == nil || stake.Cmp(minStake) < 0 {
		return bridge.New(bridge.KindRelayerInsufficientStake, "stake %s below required %s", stake, minStake)
	}
	rec := RelayerRecord{RelayerState: bridge.RelayerState{
		Account:         addr,
		Stake:           stake,
		Active:          false,
		ApplicationTime: nowNanos,
		ActivateAtNanos: nowNanos + waitingPeriodNanos,
	}}
	return s.PutRelayer(rec)
}

// ActivateIfReady promotes addr's application to Active once its
// waiting period has elapsed as of nowNanos, returning whether it did.
func (s *LedgerStore) ActivateIfReady(addr chain.Address, nowNanos int64) (bool, error) {
	rec, err := s.GetRelayer(addr)
	if err != nil {
		return false, err
	}
	if !rec.RelayerState.IsActivatable(nowNanos) {
		return false, nil
	}
	rec.Active = true
	if err := s.PutRelayer(*rec); err != nil {
		return false, err
	}
	return true, nil
}

// IsTrustedRelayer reports whether addr may sign transfers on behalf of
// users: always true for DAO/UnrestrictedRelayer roles, otherwise true
// once staked and past its activation time (§8 property 6).
func (s *LedgerStore) IsTrustedRelayer(addr chain.Address, nowNanos int64, alwaysTrusted bool) bool {
	if alwaysTrusted {
		return true
	}
	rec, err := s.GetRelayer(addr)
	if err != nil {
		return false
	}
	return rec.Active || rec.RelayerState.IsActivatable(nowNanos)
}

// GetRelayerStake returns addr's currently staked amount.
func (s *LedgerStore) GetRelayerStake(addr chain.Address) (*big.Int, error) {
	rec, err := s.GetRelayer(addr)
	if err != nil {
		return nil, err
	}
	return rec.Stake, nil
}

// GetRelayerApplication returns addr's full relayer record, exposing
// its stake and activation time to the is_trusted_relayer /
// get_relayer_application queries of §4.1.1.
func (s *LedgerStore) GetRelayerApplication(addr chain.Address) (*RelayerRecord, error) {
	return s.GetRelayer(addr)
}

// ResignTrustedRelayer removes addr's relayer record and returns the
// stake that must be refunded to it.
func (s *LedgerStore) ResignTrustedRelayer(addr chain.Address) (*big.Int, error) {
	rec, err := s.GetRelayer(addr)
	if err != nil {
		return nil, err
	}
	if err := s.kv.Set(relayerKey(addr), []byte{}); err != nil {
		return nil, err
	}
	return rec.Stake, nil
}

// RejectRelayerApplication removes addr's application, only while it
// hasn't yet activated (§4.1.1, "reject is permitted only while
// block_time < activate_at").
func (s *LedgerStore) RejectRelayerApplication(addr chain.Address, nowNanos int64) error {
	rec, err := s.GetRelayer(addr)
	if err != nil {
		return err
	}
	if rec.Active || nowNanos >= rec.ActivateAtNanos {
		return bridge.New(bridge.KindRelayerAlreadyActive, "relayer %s has already activated", addr)
	}
	return s.kv.Set(relayerKey(addr), []byte{})
}

// ====== JSON helpers ======

func (s *LedgerStore) putJSON(key []byte, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("ledger: marshal %s: %w", key, err)
	}
	return s.kv.Set(key, b)
}

// getJSON returns ok=false (no error) when the key is simply absent,
// mirroring the KV's own "not found" convention of an empty value.
func (s *LedgerStore) getJSON(key []byte, out any) (bool, error) {
	b, err := s.kv.Get(key)
	if err != nil {
		return false, fmt.Errorf("ledger: get %s: %w", key, err)
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("ledger: unmarshal %s: %w", key, err)
	}
	return true, nil
}
