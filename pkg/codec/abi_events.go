package codec

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// EVM event signatures from §6.1. Topic-0 hashes are computed once at
// package init and MUST match what the destination factory contracts
// emit — a mismatch is a verification error, never silently accepted.
var (
	sigInitTransfer = "InitTransfer(address,address,uint64,uint128,uint128,uint128,string,string)"
	sigFinTransfer  = "FinTransfer(uint8,uint64,address,uint128,address,string)"
	sigDeployToken  = "DeployToken(address,string,string,string,uint8,uint8)"
	sigLogMetadata  = "LogMetadata(address,string,string,uint8)"

	TopicInitTransfer = crypto.Keccak256Hash([]byte(sigInitTransfer))
	TopicFinTransfer  = crypto.Keccak256Hash([]byte(sigFinTransfer))
	TopicDeployToken  = crypto.Keccak256Hash([]byte(sigDeployToken))
	TopicLogMetadata  = crypto.Keccak256Hash([]byte(sigLogMetadata))
)

var ErrTopicMismatch = errors.New("codec: log topic-0 does not match expected event signature hash")

// EVMLog is the minimal shape of a decoded log entry the EVM and MPC
// verifiers need: topics (topic[0] is the signature hash) plus the ABI
// encoded non-indexed data.
type EVMLog struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// DecodedInitTransfer mirrors the EVM InitTransfer event.
type DecodedInitTransfer struct {
	Sender      common.Address
	Token       common.Address
	OriginNonce uint64
	Amount      *big.Int
	Fee         *big.Int
	NativeFee   *big.Int
	Recipient   string
	Message     string
}

// DecodedFinTransfer mirrors the EVM FinTransfer event.
type DecodedFinTransfer struct {
	OriginChain uint8
	OriginNonce uint64
	Token       common.Address
	Amount      *big.Int
	Recipient   common.Address
	FeeRecipient string
}

// DecodedDeployToken mirrors the EVM DeployToken event.
type DecodedDeployToken struct {
	Token          common.Address
	NameOnHub      string
	Name           string
	Symbol         string
	Decimals       uint8
	OriginDecimals uint8
}

// DecodedLogMetadata mirrors the EVM LogMetadata event.
type DecodedLogMetadata struct {
	Token    common.Address
	Name     string
	Symbol   string
	Decimals uint8
}

var (
	nonIndexedInitTransfer = abi.Arguments{
		{Type: mustType("uint128")},
		{Type: mustType("uint128")},
		{Type: mustType("uint128")},
		{Type: mustType("string")},
		{Type: mustType("string")},
	}
	nonIndexedFinTransfer = abi.Arguments{
		{Type: mustType("address")},
		{Type: mustType("uint128")},
		{Type: mustType("address")},
		{Type: mustType("string")},
	}
	nonIndexedDeployToken = abi.Arguments{
		{Type: mustType("string")},
		{Type: mustType("string")},
		{Type: mustType("string")},
		{Type: mustType("uint8")},
		{Type: mustType("uint8")},
	}
	nonIndexedLogMetadata = abi.Arguments{
		{Type: mustType("string")},
		{Type: mustType("string")},
		{Type: mustType("uint8")},
	}
)

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(fmt.Sprintf("codec: bad ABI type %q: %v", t, err))
	}
	return typ
}

// DecodeInitTransfer decodes an EVM InitTransfer log. topics[0] must equal
// TopicInitTransfer.
func DecodeInitTransfer(log EVMLog) (*DecodedInitTransfer, error) {
	if len(log.Topics) != 4 || log.Topics[0] != TopicInitTransfer {
		return nil, fmt.Errorf("%w: want %s", ErrTopicMismatch, TopicInitTransfer)
	}
	vals, err := nonIndexedInitTransfer.Unpack(log.Data)
	if err != nil {
		return nil, fmt.Errorf("codec: unpack InitTransfer data: %w", err)
	}
	return &DecodedInitTransfer{
		Sender:      common.BytesToAddress(log.Topics[1].Bytes()),
		Token:       common.BytesToAddress(log.Topics[2].Bytes()),
		OriginNonce: new(big.Int).SetBytes(log.Topics[3].Bytes()).Uint64(),
		Amount:      vals[0].(*big.Int),
		Fee:         vals[1].(*big.Int),
		NativeFee:   vals[2].(*big.Int),
		Recipient:   vals[3].(string),
		Message:     vals[4].(string),
	}, nil
}

// DecodeFinTransfer decodes an EVM FinTransfer log.
func DecodeFinTransfer(log EVMLog) (*DecodedFinTransfer, error) {
	if len(log.Topics) != 3 || log.Topics[0] != TopicFinTransfer {
		return nil, fmt.Errorf("%w: want %s", ErrTopicMismatch, TopicFinTransfer)
	}
	vals, err := nonIndexedFinTransfer.Unpack(log.Data)
	if err != nil {
		return nil, fmt.Errorf("codec: unpack FinTransfer data: %w", err)
	}
	originChain := new(big.Int).SetBytes(log.Topics[1].Bytes()).Uint64()
	return &DecodedFinTransfer{
		OriginChain:  uint8(originChain),
		OriginNonce:  new(big.Int).SetBytes(log.Topics[2].Bytes()).Uint64(),
		Token:        vals[0].(common.Address),
		Amount:       vals[1].(*big.Int),
		Recipient:    vals[2].(common.Address),
		FeeRecipient: vals[3].(string),
	}, nil
}

// DecodeDeployToken decodes an EVM DeployToken log.
func DecodeDeployToken(log EVMLog) (*DecodedDeployToken, error) {
	if len(log.Topics) != 2 || log.Topics[0] != TopicDeployToken {
		return nil, fmt.Errorf("%w: want %s", ErrTopicMismatch, TopicDeployToken)
	}
	vals, err := nonIndexedDeployToken.Unpack(log.Data)
	if err != nil {
		return nil, fmt.Errorf("codec: unpack DeployToken data: %w", err)
	}
	return &DecodedDeployToken{
		Token:          common.BytesToAddress(log.Topics[1].Bytes()),
		NameOnHub:      vals[0].(string),
		Name:           vals[1].(string),
		Symbol:         vals[2].(string),
		Decimals:       vals[3].(uint8),
		OriginDecimals: vals[4].(uint8),
	}, nil
}

// DecodeLogMetadata decodes an EVM LogMetadata log.
func DecodeLogMetadata(log EVMLog) (*DecodedLogMetadata, error) {
	if len(log.Topics) != 2 || log.Topics[0] != TopicLogMetadata {
		return nil, fmt.Errorf("%w: want %s", ErrTopicMismatch, TopicLogMetadata)
	}
	vals, err := nonIndexedLogMetadata.Unpack(log.Data)
	if err != nil {
		return nil, fmt.Errorf("codec: unpack LogMetadata data: %w", err)
	}
	return &DecodedLogMetadata{
		Token:    common.BytesToAddress(log.Topics[1].Bytes()),
		Name:     vals[0].(string),
		Symbol:   vals[1].(string),
		Decimals: vals[2].(uint8),
	}, nil
}
