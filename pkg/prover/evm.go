package prover

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/omni-bridge/hub/pkg/bridge"
	"github.com/omni-bridge/hub/pkg/chain"
	"github.com/omni-bridge/hub/pkg/codec"
)

// LightClient abstracts the external light client a verifier consults to
// confirm a log was actually included in the chain it claims to come
// from — block header chain, Merkle receipt trie, or equivalent. The
// verifier never re-implements consensus; it only re-derives the claim
// from already-confirmed inclusion.
type LightClient interface {
	// VerifyLogInclusion checks that log at logIndex within the
	// transaction identified by txHash is present in a block the light
	// client already considers final, for the given chain.
	VerifyLogInclusion(ctx context.Context, k chain.Kind, txHash [32]byte, logIndex uint32, log codec.EVMLog) error
}

// wireEVMProof is the JSON envelope a relayer submits for the EVM
// verifier: the log itself plus the inclusion proof the light client
// needs (opaque to this package beyond txHash/logIndex).
type wireEVMProof struct {
	TxHash   codec.H256   `json:"tx_hash"`
	LogIndex uint32       `json:"log_index"`
	Address  string       `json:"address"`
	Topics   []codec.H256 `json:"topics"`
	Data     []byte       `json:"data"`
}

// EVMVerifier checks logs emitted by the bridge's EVM-family factory
// contracts (§4.2, "EVM verifier").
type EVMVerifier struct {
	Light LightClient
}

func NewEVMVerifier(light LightClient) *EVMVerifier {
	return &EVMVerifier{Light: light}
}

func (v *EVMVerifier) ID() bridge.ProverId { return "evm" }

func (v *EVMVerifier) Verify(ctx context.Context, proof Proof) (*bridge.ProverResult, error) {
	if !proof.Kind.IsEVMChain() {
		return nil, bridge.New(bridge.KindUnsupportedChain, "EVM verifier cannot handle chain %s", proof.Kind)
	}
	var wp wireEVMProof
	if err := json.Unmarshal(proof.Raw, &wp); err != nil {
		return nil, bridge.New(bridge.KindInvalidProof, "malformed EVM proof envelope: %v", err)
	}

	log := codec.EVMLog{
		Address: common.HexToAddress(wp.Address),
		Topics:  make([]common.Hash, len(wp.Topics)),
		Data:    wp.Data,
	}
	for i, t := range wp.Topics {
		log.Topics[i] = common.Hash(t)
	}

	if v.Light != nil {
		if err := v.Light.VerifyLogInclusion(ctx, proof.Kind, wp.TxHash, wp.LogIndex, log); err != nil {
			return nil, fmt.Errorf("%w: %v", bridge.SentinelFor(bridge.KindInvalidProof), err)
		}
	}

	if len(log.Topics) == 0 {
		return nil, bridge.New(bridge.KindInvalidProof, "EVM proof has no topics")
	}

	switch log.Topics[0] {
	case codec.TopicInitTransfer:
		d, err := codec.DecodeInitTransfer(log)
		if err != nil {
			return nil, bridge.New(bridge.KindInvalidProofMessage, "%v", err)
		}
		sender, err := chain.NewEVMAddress(proof.Kind, d.Sender)
		if err != nil {
			return nil, err
		}
		token, err := chain.NewEVMAddress(proof.Kind, d.Token)
		if err != nil {
			return nil, err
		}
		recipient, err := chain.ParseAddress(d.Recipient)
		if err != nil {
			return nil, bridge.New(bridge.KindInvalidProofMessage, "bad recipient address: %v", err)
		}
		return &bridge.ProverResult{
			Kind: bridge.ProverResultInitTransfer,
			InitTransfer: &bridge.InitTransferResult{
				OriginChain: proof.Kind,
				OriginNonce: d.OriginNonce,
				Token:       token,
				Amount:      d.Amount,
				Fee:         bridge.Fee{TokenFee: d.Fee, NativeFee: d.NativeFee},
				Sender:      sender,
				Recipient:   recipient,
				Msg:         d.Message,
			},
		}, nil

	case codec.TopicFinTransfer:
		d, err := codec.DecodeFinTransfer(log)
		if err != nil {
			return nil, bridge.New(bridge.KindInvalidProofMessage, "%v", err)
		}
		originChain, ok := originChainFromU8(d.OriginChain)
		if !ok {
			return nil, bridge.New(bridge.KindUnsupportedChain, "unknown origin chain id %d", d.OriginChain)
		}
		token, err := chain.NewEVMAddress(proof.Kind, d.Token)
		if err != nil {
			return nil, err
		}
		recipient, err := chain.NewEVMAddress(proof.Kind, d.Recipient)
		if err != nil {
			return nil, err
		}
		feeRecipient, err := chain.ParseAddress(d.FeeRecipient)
		if err != nil {
			return nil, bridge.New(bridge.KindInvalidProofMessage, "bad fee recipient: %v", err)
		}
		return &bridge.ProverResult{
			Kind: bridge.ProverResultFinTransfer,
			FinTransfer: &bridge.FinTransferResult{
				OriginChain:  originChain,
				OriginNonce:  d.OriginNonce,
				Token:        token,
				Amount:       d.Amount,
				Recipient:    recipient,
				FeeRecipient: feeRecipient,
			},
		}, nil

	case codec.TopicDeployToken:
		d, err := codec.DecodeDeployToken(log)
		if err != nil {
			return nil, bridge.New(bridge.KindInvalidProofMessage, "%v", err)
		}
		addr, err := chain.NewEVMAddress(proof.Kind, d.Token)
		if err != nil {
			return nil, err
		}
		return &bridge.ProverResult{
			Kind: bridge.ProverResultDeployToken,
			DeployToken: &bridge.DeployTokenResult{
				TokenID:  bridge.TokenID(d.NameOnHub),
				Chain:    proof.Kind,
				Address:  addr,
				Decimals: d.Decimals,
			},
		}, nil

	case codec.TopicLogMetadata:
		d, err := codec.DecodeLogMetadata(log)
		if err != nil {
			return nil, bridge.New(bridge.KindInvalidProofMessage, "%v", err)
		}
		addr, err := chain.NewEVMAddress(proof.Kind, d.Token)
		if err != nil {
			return nil, err
		}
		return &bridge.ProverResult{
			Kind: bridge.ProverResultLogMetadata,
			LogMetadata: &bridge.LogMetadataResult{
				TokenID:  bridge.TokenID(addr.String()),
				Chain:    proof.Kind,
				Name:     d.Name,
				Symbol:   d.Symbol,
				Decimals: d.Decimals,
			},
		}, nil

	default:
		return nil, bridge.New(bridge.KindInvalidProofMessage, "unrecognized event topic %s", log.Topics[0])
	}
}

func originChainFromU8(id uint8) (chain.Kind, bool) {
	k := chain.Kind(id)
	return k, k.Valid()
}
