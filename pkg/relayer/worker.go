package relayer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/omni-bridge/hub/pkg/bridge"
	"github.com/omni-bridge/hub/pkg/codec"
	"github.com/omni-bridge/hub/pkg/prover"
	"github.com/omni-bridge/hub/pkg/transfer"
)

// Dequeuer abstracts the durable queue's consumer side so Worker can be
// tested against a fake.
type Dequeuer interface {
	Dequeue(ctx context.Context, timeout time.Duration) (WorkItem, bool, error)
	Requeue(ctx context.Context, item WorkItem) error
}

// wireEVMProof mirrors pkg/prover's unexported envelope shape so the
// worker can build one without prover exporting it.
type wireEVMProof struct {
	TxHash   codec.H256   `json:"tx_hash"`
	LogIndex uint32       `json:"log_index"`
	Address  string       `json:"address"`
	Topics   []codec.H256 `json:"topics"`
	Data     []byte       `json:"data"`
}

// Worker drains a queue of indexed WorkItems, reconstructs the EVM
// verifier's proof envelope, dispatches it to the hub, and requeues on
// transient failure (§4.4, "relayer pipeline").
type Worker struct {
	Queue       Dequeuer
	Coordinator *transfer.Coordinator
	ProverID    bridge.ProverId
	Metrics     *Metrics
	MaxRetries  int
	Log         *zap.Logger
}

// Run dequeues work items until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		item, ok, err := w.Queue.Dequeue(ctx, 5*time.Second)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		w.process(ctx, item)
	}
}

func (w *Worker) process(ctx context.Context, item WorkItem) {
	attemptID := uuid.NewString()

	raw, err := json.Marshal(wireEVMProof{
		TxHash:   item.TxHash,
		LogIndex: item.LogIndex,
		Address:  item.Log.Address.Hex(),
		Topics:   toH256s(item.Log.Topics),
		Data:     item.Log.Data,
	})
	if err != nil {
		w.reject(ctx, item, attemptID, err)
		return
	}

	proof := prover.Proof{Kind: item.Chain, Raw: raw}

	switch item.Topic0 {
	case codec.TopicInitTransfer:
		_, err = transfer.DispatchAndInit(ctx, w.Coordinator, w.ProverID, proof)
	case codec.TopicFinTransfer:
		err = w.finTransfer(ctx, proof)
	default:
		// DeployToken/LogMetadata are handled by the token-registration
		// path, not the transfer coordinator; nothing to do here yet.
		return
	}

	if err != nil {
		w.reject(ctx, item, attemptID, err)
		return
	}
	if w.Metrics != nil {
		w.Metrics.ProofsSubmitted.WithLabelValues(item.Chain.String()).Inc()
	}
	if w.Log != nil {
		w.Log.Info("work item admitted", zap.String("key", item.Key()), zap.String("attempt_id", attemptID))
	}
}

func (w *Worker) finTransfer(ctx context.Context, proof prover.Proof) error {
	result, err := prover.Dispatch(ctx, w.ProverID, proof)
	if err != nil {
		return err
	}
	if result.Kind != bridge.ProverResultFinTransfer || result.FinTransfer == nil {
		return bridge.New(bridge.KindInvalidProofMessage, "expected FinTransfer result, got kind %d", result.Kind)
	}
	_, err = w.Coordinator.FinTransfer(ctx, result.FinTransfer, result.FinTransfer.Recipient.Chain, proof.Kind.String())
	return err
}

func (w *Worker) reject(ctx context.Context, item WorkItem, attemptID string, cause error) {
	if w.Log != nil {
		w.Log.Error("work item failed", zap.String("key", item.Key()), zap.String("attempt_id", attemptID), zap.Error(cause))
	}
	if w.Metrics != nil {
		w.Metrics.ProofsFailed.WithLabelValues(item.Chain.String(), string(bridge.KindInvalidProof)).Inc()
	}
	if requeueErr := w.Queue.Requeue(ctx, item); requeueErr != nil && w.Log != nil {
		w.Log.Error("requeue failed", zap.String("key", item.Key()), zap.String("attempt_id", attemptID), zap.Error(requeueErr))
	}
}

func toH256s(hs []common.Hash) []codec.H256 {
	out := make([]codec.H256, len(hs))
	for i, h := range hs {
		out[i] = codec.H256(h)
	}
	return out
}
