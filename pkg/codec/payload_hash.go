package codec

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// HubTransferPayload is the set of fields the hub MPC-signs for a
// destination contract to verify on finalisation (§6.3).
type HubTransferPayload struct {
	ChainID     *big.Int
	Emitter     common.Address
	Sender      common.Address
	Token       common.Address
	OriginNonce uint64
	Amount      *big.Int
	TokenFee    *big.Int
	NativeFee   *big.Int
	Recipient   string
	Message     string
}

var hubPayloadArgs = abi.Arguments{
	{Type: mustType("uint256")},
	{Type: mustType("address")},
	{Type: mustType("address")},
	{Type: mustType("address")},
	{Type: mustType("uint64")},
	{Type: mustType("uint128")},
	{Type: mustType("uint128")},
	{Type: mustType("uint128")},
	{Type: mustType("string")},
	{Type: mustType("string")},
}

// Hash computes keccak256(abi_encode(...)) exactly per §6.3, the digest
// the destination contract re-derives to check the MPC signature.
func (p HubTransferPayload) Hash() ([32]byte, error) {
	packed, err := hubPayloadArgs.Pack(
		p.ChainID,
		p.Emitter,
		p.Sender,
		p.Token,
		p.OriginNonce,
		p.Amount,
		p.TokenFee,
		p.NativeFee,
		p.Recipient,
		p.Message,
	)
	if err != nil {
		return [32]byte{}, err
	}
	return crypto.Keccak256Hash(packed), nil
}
