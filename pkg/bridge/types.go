package bridge

import (
	"math/big"

	"github.com/omni-bridge/hub/pkg/chain"
)

// TransferId names an init_transfer by its origin chain and the nonce
// that chain assigned it. It is the hub's primary key for a transfer
// (§3).
type TransferId struct {
	OriginChain chain.Kind
	OriginNonce uint64
}

func (id TransferId) String() string {
	return id.OriginChain.String() + ":" + big.NewInt(0).SetUint64(id.OriginNonce).String()
}

// Fee splits the fee a relayer is paid into the token-denominated part
// (deducted from Amount) and the native-gas part (paid separately on the
// destination chain, §3).
type Fee struct {
	TokenFee  *big.Int
	NativeFee *big.Int
}

// TransferMessage is the normalized representation of an init_transfer,
// independent of which chain originated it (§3).
type TransferMessage struct {
	OriginNonce      uint64
	DestinationNonce uint64
	Token            chain.Address
	Amount           *big.Int
	Fee              Fee
	Sender           chain.Address
	Recipient        chain.Address
	Msg              string
}

// TokenOriginLookup answers whether a token address belongs to the chain
// it claims to originate on. The ledger's token registry implements it;
// bridge stays free of a ledger import.
type TokenOriginLookup interface {
	IsTokenOrigin(token chain.Address, originChain chain.Kind) bool
}

// Validate checks the invariants of §3: amount covers the token fee, the
// sender's chain tag matches the declared origin chain, a UTXO
// destination never carries a native fee, and the token is either native
// to the origin chain or a known bridged token.
func (m TransferMessage) Validate(originChain chain.Kind, tokens TokenOriginLookup) error {
	if m.Amount == nil || m.Fee.TokenFee == nil {
		return New(KindInvalidAmountToTransfer, "amount and token fee must be set")
	}
	if m.Amount.Cmp(m.Fee.TokenFee) < 0 {
		return New(KindInvalidFee, "amount %s is less than token fee %s", m.Amount, m.Fee.TokenFee)
	}
	if m.Sender.Chain != originChain {
		return New(KindChainMismatch, "sender chain %s does not match origin chain %s", m.Sender.Chain, originChain)
	}
	if m.Recipient.Chain.IsUTXOChain() && m.Fee.NativeFee != nil && m.Fee.NativeFee.Sign() != 0 {
		return New(KindInvalidFee, "UTXO recipients cannot be paid a native fee")
	}
	if tokens != nil && !tokens.IsTokenOrigin(m.Token, originChain) {
		return New(KindTokenNotRegistered, "token %s is not registered as originating on %s", m.Token, originChain)
	}
	return nil
}

// TokenID is the hub's canonical identifier for a bridged token, shared
// across all of its per-chain bindings.
type TokenID string

// TokenBinding records one (token, chain) pairing: the address the token
// is known by on that chain and its decimals there, alongside the
// decimals recorded at the token's origin (§3, §4.1).
type TokenBinding struct {
	TokenID        TokenID
	Chain          chain.Kind
	Address        chain.Address
	DecimalsOnChain uint8
	OriginDecimals uint8
}

// pow10 returns 10^n as a *big.Int.
func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// ConvertToChainAmount rescales a hub-denominated amount to the decimals
// of a specific chain. When the origin has more decimals than the
// destination the conversion truncates and returns the truncated dust;
// when the destination has more decimals it scales up exactly, and dust
// is always zero (§3, "divisibility").
func ConvertToChainAmount(amountHub *big.Int, originDecimals, decimalsOnChain uint8) (onChain, dust *big.Int, err error) {
	if amountHub == nil || amountHub.Sign() < 0 {
		return nil, nil, New(KindInvalidAmountToTransfer, "amount must be non-negative")
	}
	diff := int(originDecimals) - int(decimalsOnChain)
	if diff >= 0 {
		scale := pow10(diff)
		q, r := new(big.Int).QuoRem(amountHub, scale, new(big.Int))
		return q, r, nil
	}
	scale := pow10(-diff)
	return new(big.Int).Mul(amountHub, scale), big.NewInt(0), nil
}

// ConvertFromChainAmount is the inverse of ConvertToChainAmount: it
// rescales an amount observed on a peripheral chain back to hub decimals.
// This direction never loses precision.
func ConvertFromChainAmount(amountOnChain *big.Int, originDecimals, decimalsOnChain uint8) (*big.Int, error) {
	if amountOnChain == nil || amountOnChain.Sign() < 0 {
		return nil, New(KindInvalidAmountToTransfer, "amount must be non-negative")
	}
	diff := int(originDecimals) - int(decimalsOnChain)
	if diff >= 0 {
		return new(big.Int).Mul(amountOnChain, pow10(diff)), nil
	}
	scale := pow10(-diff)
	q, r := new(big.Int).QuoRem(amountOnChain, scale, new(big.Int))
	if r.Sign() != 0 {
		return nil, New(KindInvalidAmountToTransfer, "amount %s is not representable at %d decimals", amountOnChain, originDecimals)
	}
	return q, nil
}
