package chain

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/btcsuite/btcutil/base58"
	"github.com/btcsuite/btcutil/bech32"
	mrtronbase58 "github.com/mr-tron/base58"
)

// Sentinel errors for address parsing/construction. Kept flat and small —
// callers match on these with errors.Is, not string comparison.
var (
	ErrUnknownChainTag   = errors.New("chain: unknown chain tag")
	ErrMalformedAddress  = errors.New("chain: malformed address")
	ErrWrongPayloadKind  = errors.New("chain: payload does not match chain's address kind")
	ErrAccountIDTooLong  = errors.New("chain: hub account identifier exceeds 64 characters")
	ErrAccountIDNotUTF8  = errors.New("chain: hub account identifier is not valid UTF-8")
	ErrEmptyUTXOAddress  = errors.New("chain: empty UTXO address string")
)

const maxHubAccountLen = 64

// Address is the tagged union `{chain_kind, payload}` from §3. Exactly one
// parser/serializer exists per chain kind — never heuristic.
//
//   - EVM chains:   Raw is a 20-byte hash (H160).
//   - Solana-like:  Raw is a 32-byte key.
//   - Hub chain:    Text is a bounded UTF-8 account identifier (<=64 chars).
//   - UTXO chains:  Text is the bech32/base58 address string, kept opaque.
type Address struct {
	Chain Kind
	Raw   [32]byte // only the first 20/32 bytes are meaningful, per Chain
	Text  string   // used for Hub and UTXO chains; empty otherwise
}

// NewEVMAddress builds an Address for an EVM chain from a 20-byte hash.
func NewEVMAddress(k Kind, h160 [20]byte) (Address, error) {
	if !k.IsEVMChain() {
		return Address{}, fmt.Errorf("%w: %s is not an EVM chain", ErrWrongPayloadKind, k)
	}
	var a Address
	a.Chain = k
	copy(a.Raw[:20], h160[:])
	return a, nil
}

// NewSolanaAddress builds an Address for the Solana-like chain from a
// 32-byte program-derived key.
func NewSolanaAddress(key [32]byte) Address {
	return Address{Chain: Sol, Raw: key}
}

// NewHubAddress builds an Address for the hub chain from a bounded
// account identifier.
func NewHubAddress(accountID string) (Address, error) {
	if err := validateHubAccountID(accountID); err != nil {
		return Address{}, err
	}
	return Address{Chain: Near, Text: accountID}, nil
}

// NewUTXOAddress builds an Address for a UTXO chain from its bech32/base58
// textual form. The string is kept opaque — this bridge never decodes it
// beyond what's needed for equality and for handing it to the connector.
func NewUTXOAddress(k Kind, text string) (Address, error) {
	if !k.IsUTXOChain() {
		return Address{}, fmt.Errorf("%w: %s is not a UTXO chain", ErrWrongPayloadKind, k)
	}
	if err := ValidateUTXOAddressShape(text); err != nil {
		return Address{}, err
	}
	return Address{Chain: k, Text: text}, nil
}

func validateHubAccountID(id string) error {
	if !utf8.ValidString(id) {
		return ErrAccountIDNotUTF8
	}
	if utf8.RuneCountInString(id) > maxHubAccountLen {
		return ErrAccountIDTooLong
	}
	return nil
}

// H160 returns the 20-byte EVM payload. Only meaningful when Chain.IsEVMChain().
func (a Address) H160() [20]byte {
	var out [20]byte
	copy(out[:], a.Raw[:20])
	return out
}

// SolanaKey returns the 32-byte Solana-like payload.
func (a Address) SolanaKey() [32]byte {
	return a.Raw
}

// payloadString renders the chain-specific payload half of the textual
// form, per the one-parser-one-serializer-per-chain rule.
func (a Address) payloadString() string {
	switch {
	case a.Chain.IsEVMChain():
		return "0x" + hex.EncodeToString(a.Raw[:20])
	case a.Chain.IsSolanaLike():
		return mrtronbase58.Encode(a.Raw[:32])
	case a.Chain.IsHub(), a.Chain.IsUTXOChain():
		return a.Text
	default:
		return ""
	}
}

// String renders the canonical "<chain>:<payload>" textual form (§3).
func (a Address) String() string {
	return a.Chain.String() + ":" + a.payloadString()
}

// Equal compares two addresses for exact identity (same chain, same
// payload bytes/text).
func (a Address) Equal(b Address) bool {
	if a.Chain != b.Chain {
		return false
	}
	if a.Chain.IsHub() || a.Chain.IsUTXOChain() {
		return a.Text == b.Text
	}
	return a.Raw == b.Raw
}

// ParseAddress parses the canonical "<chain>:<payload>" textual form back
// into an Address. Round-trips with String() on valid inputs.
func ParseAddress(s string) (Address, error) {
	idx := strings.IndexByte(s, ':')
	if idx < 0 {
		return Address{}, fmt.Errorf("%w: %q has no chain prefix", ErrMalformedAddress, s)
	}
	tag, payload := s[:idx], s[idx+1:]
	k, ok := ParseKind(tag)
	if !ok {
		return Address{}, fmt.Errorf("%w: %q", ErrUnknownChainTag, tag)
	}
	switch {
	case k.IsEVMChain():
		return parseEVMPayload(k, payload)
	case k.IsSolanaLike():
		return parseSolanaPayload(payload)
	case k.IsHub():
		return NewHubAddress(payload)
	case k.IsUTXOChain():
		return NewUTXOAddress(k, payload)
	default:
		return Address{}, fmt.Errorf("%w: %s", ErrUnknownChainTag, k)
	}
}

func parseEVMPayload(k Kind, payload string) (Address, error) {
	payload = strings.TrimPrefix(payload, "0x")
	payload = strings.TrimPrefix(payload, "0X")
	raw, err := hex.DecodeString(payload)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrMalformedAddress, err)
	}
	if len(raw) != 20 {
		return Address{}, fmt.Errorf("%w: EVM address must be 20 bytes, got %d", ErrMalformedAddress, len(raw))
	}
	var h [20]byte
	copy(h[:], raw)
	return NewEVMAddress(k, h)
}

func parseSolanaPayload(payload string) (Address, error) {
	raw, err := mrtronbase58.Decode(payload)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrMalformedAddress, err)
	}
	if len(raw) != 32 {
		return Address{}, fmt.Errorf("%w: Solana key must be 32 bytes, got %d", ErrMalformedAddress, len(raw))
	}
	var key [32]byte
	copy(key[:], raw)
	return NewSolanaAddress(key), nil
}

// ValidateUTXOAddressShape performs a light structural sanity check on a
// UTXO address string: it must decode either as bech32 (segwit) or as a
// base58check string. It does not attempt to re-derive network params,
// since the bridge treats the string as opaque once validated.
func ValidateUTXOAddressShape(text string) error {
	if text == "" {
		return ErrEmptyUTXOAddress
	}
	if _, _, err := bech32.Decode(text); err == nil {
		return nil
	}
	if decoded := base58.Decode(text); len(decoded) > 4 {
		return nil
	}
	return fmt.Errorf("%w: %q is neither bech32 nor base58check", ErrMalformedAddress, text)
}
