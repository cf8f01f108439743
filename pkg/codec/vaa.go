package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// Wormhole VAA (Verified Action Approval) layout, §6.2:
//
//	Header : [version:u8][guardian_set:u32-BE][num_sig:u8]
//	Sigs   : num_sig x 66 bytes
//	Body   : [timestamp:u32-BE][nonce:u32-BE][emitter_chain:u16-BE]
//	         [emitter_address:32][sequence:u64-BE][consistency:u8][payload:...]
//
// Hash = keccak256(body). First byte of payload is the sub-message
// discriminator (0=InitTransfer, 1=FinTransfer, 2=DeployToken).

const guardianSigLen = 66

var (
	ErrVAATooShort      = errors.New("codec: VAA shorter than its declared header")
	ErrVAABadSignature   = errors.New("codec: VAA signature block truncated")
	ErrVAABadDiscriminant = errors.New("codec: VAA payload has unknown discriminator")
)

// GuardianSignature is one 66-byte signature entry: [guardian_index:u8][sig:65].
type GuardianSignature struct {
	GuardianIndex uint8
	Signature     [65]byte
}

// VAA is a parsed guardian-signed message, prior to guardian-set
// signature verification (which is an external light-client call, §4.2).
type VAA struct {
	Version      uint8
	GuardianSet  uint32
	Signatures   []GuardianSignature
	Timestamp    uint32
	Nonce        uint32
	EmitterChain uint16
	EmitterAddr  [32]byte
	Sequence     uint64
	Consistency  uint8
	Payload      []byte

	Body []byte // raw body bytes, for hashing and re-verification
}

// VAAPayloadKind is the discriminator byte of a VAA payload.
type VAAPayloadKind uint8

const (
	VAAPayloadInitTransfer VAAPayloadKind = 0
	VAAPayloadFinTransfer  VAAPayloadKind = 1
	VAAPayloadDeployToken  VAAPayloadKind = 2
)

// ParseVAA decodes the raw VAA bytes (already base64/hex-decoded by the
// caller) into a VAA struct. It does not verify guardian signatures —
// that's delegated to the external guardian verifier contract.
func ParseVAA(raw []byte) (*VAA, error) {
	if len(raw) < 6 {
		return nil, ErrVAATooShort
	}
	v := &VAA{}
	v.Version = raw[0]
	v.GuardianSet = binary.BigEndian.Uint32(raw[1:5])
	numSig := int(raw[5])
	pos := 6

	if len(raw) < pos+numSig*guardianSigLen {
		return nil, ErrVAABadSignature
	}
	v.Signatures = make([]GuardianSignature, numSig)
	for i := 0; i < numSig; i++ {
		block := raw[pos : pos+guardianSigLen]
		var gs GuardianSignature
		gs.GuardianIndex = block[0]
		copy(gs.Signature[:], block[1:66])
		v.Signatures[i] = gs
		pos += guardianSigLen
	}

	body := raw[pos:]
	if len(body) < 4+4+2+32+8+1 {
		return nil, fmt.Errorf("%w: body too short", ErrVAATooShort)
	}
	v.Body = body
	v.Timestamp = binary.BigEndian.Uint32(body[0:4])
	v.Nonce = binary.BigEndian.Uint32(body[4:8])
	v.EmitterChain = binary.BigEndian.Uint16(body[8:10])
	copy(v.EmitterAddr[:], body[10:42])
	v.Sequence = binary.BigEndian.Uint64(body[42:50])
	v.Consistency = body[50]
	v.Payload = body[51:]
	return v, nil
}

// Hash returns keccak256(body), the digest guardians sign over.
func (v *VAA) Hash() [32]byte {
	return crypto.Keccak256Hash(v.Body)
}

// PayloadKind reads the discriminator byte of Payload.
func (v *VAA) PayloadKind() (VAAPayloadKind, []byte, error) {
	if len(v.Payload) < 1 {
		return 0, nil, ErrVAABadDiscriminant
	}
	kind := VAAPayloadKind(v.Payload[0])
	switch kind {
	case VAAPayloadInitTransfer, VAAPayloadFinTransfer, VAAPayloadDeployToken:
		return kind, v.Payload[1:], nil
	default:
		return 0, nil, fmt.Errorf("%w: %d", ErrVAABadDiscriminant, v.Payload[0])
	}
}
