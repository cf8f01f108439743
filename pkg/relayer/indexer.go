package relayer

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/omni-bridge/hub/pkg/chain"
	"github.com/omni-bridge/hub/pkg/codec"
	"github.com/omni-bridge/hub/pkg/ethereum"
)

// WorkItem is one unit of proof-submission work the indexer hands to the
// queue: enough to reconstruct a prover.Proof without re-fetching the
// log (§4.4, "relayer pipeline").
type WorkItem struct {
	Chain    chain.Kind
	TxHash   codec.H256
	LogIndex uint32
	Topic0   codec.H256
	Log      codec.EVMLog
}

// Key uniquely identifies a WorkItem for queue deduplication.
func (w WorkItem) Key() string {
	return fmt.Sprintf("%s:%s:%d", w.Chain, w.TxHash, w.LogIndex)
}

// EVMIndexer polls one EVM-family chain's factory contract for new logs
// between the stored cursor and chain head, and enqueues a WorkItem per
// log found.
type EVMIndexer struct {
	Chain         chain.Kind
	Client        *ethereum.Client
	ContractAddr  common.Address
	Cursor        *CursorStore
	Queue         Enqueuer
	Confirmations int64
	Log           *zap.Logger
}

// Enqueuer abstracts the durable work queue so the indexer doesn't
// import the queue's storage backend directly.
type Enqueuer interface {
	Enqueue(ctx context.Context, item WorkItem) error
}

var watchedTopics = []common.Hash{
	codec.TopicInitTransfer,
	codec.TopicFinTransfer,
	codec.TopicDeployToken,
	codec.TopicLogMetadata,
}

// Poll scans one batch of new blocks and enqueues any matching logs,
// returning the new cursor height.
func (idx *EVMIndexer) Poll(ctx context.Context) (uint64, error) {
	from, err := idx.Cursor.Get(ctx, idx.Chain)
	if err != nil {
		return 0, err
	}
	head, err := idx.Client.GetLatestBlockNumber(ctx)
	if err != nil {
		return from, err
	}
	safeHead := head - idx.Confirmations
	if safeHead < 0 || uint64(safeHead) <= from {
		return from, nil
	}

	logs, err := idx.Client.FilterLogs(ctx, idx.ContractAddr, int64(from)+1, safeHead, [][]common.Hash{watchedTopics})
	if err != nil {
		return from, err
	}

	for _, l := range logs {
		item := WorkItem{
			Chain:    idx.Chain,
			TxHash:   codec.H256(l.TxHash),
			LogIndex: uint32(l.Index),
			Log: codec.EVMLog{
				Address: l.Address,
				Topics:  l.Topics,
				Data:    l.Data,
			},
		}
		if len(l.Topics) > 0 {
			item.Topic0 = codec.H256(l.Topics[0])
		}
		if err := idx.Queue.Enqueue(ctx, item); err != nil {
			if idx.Log != nil {
				idx.Log.Error("enqueue failed", zap.String("chain", idx.Chain.String()), zap.Error(err))
			}
			return from, err
		}
	}

	if err := idx.Cursor.Advance(ctx, idx.Chain, uint64(safeHead)); err != nil {
		return from, err
	}
	return uint64(safeHead), nil
}
