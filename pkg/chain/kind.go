// Package chain defines the closed set of chains the bridge understands and
// the tagged-union address type used to address accounts on any of them.
package chain

import "fmt"

// Kind is the closed enumeration of chains the bridge can move value
// between. New chains are added here, never inferred from strings at
// runtime.
type Kind uint8

const (
	Near Kind = iota
	Eth
	Base
	Arb
	Bnb
	Pol
	Sol
	Btc
	Zcash
)

var kindNames = [...]string{
	Near:  "near",
	Eth:   "eth",
	Base:  "base",
	Arb:   "arb",
	Bnb:   "bnb",
	Pol:   "pol",
	Sol:   "sol",
	Btc:   "btc",
	Zcash: "zcash",
}

// String renders the canonical lower-case chain tag used in OmniAddress
// textual form and in config/CLI flags.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

// ParseKind maps a chain tag back to its Kind. Returns false for anything
// outside the closed set — callers must not guess.
func ParseKind(tag string) (Kind, bool) {
	for k, name := range kindNames {
		if name == tag {
			return Kind(k), true
		}
	}
	return 0, false
}

// IsEVMChain reports whether k uses 20-byte EVM addresses and RLP/ABI
// proofs.
func (k Kind) IsEVMChain() bool {
	switch k {
	case Eth, Base, Arb, Bnb, Pol:
		return true
	default:
		return false
	}
}

// IsUTXOChain reports whether k is a UTXO-model chain reached through the
// UTXO connector path (§4.3 "UTXO path").
func (k Kind) IsUTXOChain() bool {
	switch k {
	case Btc, Zcash:
		return true
	default:
		return false
	}
}

// IsHub reports whether k is the hub chain itself.
func (k Kind) IsHub() bool {
	return k == Near
}

// IsSolanaLike reports whether k uses 32-byte program-derived keys
// (base58 textual form).
func (k Kind) IsSolanaLike() bool {
	return k == Sol
}

// Valid reports whether k is a member of the closed enumeration.
func (k Kind) Valid() bool {
	return int(k) < len(kindNames) && kindNames[k] != ""
}

// EmitterChainID maps a Wormhole emitter_chain id (§4.2 "Wormhole
// verifier") to a Kind. Returns false for ids the bridge doesn't bind.
func EmitterChainIDToKind(id uint16) (Kind, bool) {
	switch id {
	case 1:
		return Sol, true
	case 2:
		return Eth, true
	case 23:
		return Arb, true
	case 30:
		return Base, true
	default:
		return 0, false
	}
}
