// Package codec implements the bridge's stable wire encodings: a
// borsh-equivalent binary codec for hub-signed payloads, the EVM ABI event
// table, the Wormhole VAA layout, and the fixed-width hash types shared by
// all of them (§4.5, §6).
package codec

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidHexLength = errors.New("codec: invalid hex length")
	ErrInvalidHex        = errors.New("codec: invalid hex encoding")
)

// H160 is a strict 20-byte hash: no zero-padding, hex must decode to
// exactly 20 bytes.
type H160 [20]byte

// ParseH160 strips an optional "0x" prefix and requires exactly 20 bytes.
func ParseH160(s string) (H160, error) {
	raw, err := decodeStrictHex(s)
	if err != nil {
		return H160{}, err
	}
	if len(raw) != 20 {
		return H160{}, fmt.Errorf("%w: H160 wants 20 bytes, got %d", ErrInvalidHexLength, len(raw))
	}
	var h H160
	copy(h[:], raw)
	return h, nil
}

func (h H160) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// H256 is a 32-byte hash, zero-padded from the right when the hex input
// is shorter than 32 bytes (unlike H160, which never pads).
type H256 [32]byte

// ParseH256 strips an optional "0x" prefix and zero-pads short input from
// the right up to 32 bytes; longer input is an error.
func ParseH256(s string) (H256, error) {
	raw, err := decodeStrictHex(s)
	if err != nil {
		return H256{}, err
	}
	if len(raw) > 32 {
		return H256{}, fmt.Errorf("%w: H256 wants at most 32 bytes, got %d", ErrInvalidHexLength, len(raw))
	}
	var h H256
	copy(h[32-len(raw):], raw)
	return h, nil
}

func (h H256) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func decodeStrictHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return raw, nil
}
