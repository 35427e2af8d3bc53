package chain

import (
	"github.com/l2rollup/settlement/log"
	"github.com/l2rollup/settlement/metrics"
	"github.com/l2rollup/settlement/types"
)

// EventSink receives every state change the source contracts would
// have logged as an on-chain event. Its method signatures are the
// topic schema: a caller standing in for an indexer or a test
// assertion implements this interface instead of parsing log topics.
type EventSink interface {
	CommitterChanged(committer types.Address)
	TokenRegistered(addr types.Address, index uint32)
	AccountRegistered(addr types.Address, slotIndex uint32)
	RollupBlockCommitted(blockNumber uint64, numTransitions int)
	Transition(blockNumber uint64, index int, data []byte)
	DecodedTransition(blockNumber uint64, index int, transitionType types.TransitionType)
	FraudProofRun(blocksPruned int)
}

// LogEventSink fans every event out to a structured logger (Info for
// admin and commit events, Debug for per-transition events and
// no-fraud proofs, Warn for a proof that prunes) and updates the
// matching metrics for every event except DecodedTransition, which is
// logged only. cmd/rollupd wires it into Chain; chain.New falls back to
// NullEventSink when given no sink.
type LogEventSink struct {
	logger     *log.Logger
	transMeter *metrics.Meter
}

// NewLogEventSink returns a LogEventSink writing to logger.
func NewLogEventSink(logger *log.Logger) *LogEventSink {
	return &LogEventSink{logger: logger, transMeter: metrics.NewMeter()}
}

// TransitionRate1 returns the 1-minute EWMA rate of committed
// transitions per second, for operators polling throughput without
// scraping the full metrics registry.
func (s *LogEventSink) TransitionRate1() float64 {
	return s.transMeter.Rate1()
}

func (s *LogEventSink) CommitterChanged(committer types.Address) {
	s.logger.Info("committer changed", "committer", committer.Hex())
	metrics.CommitterRotationsTotal.Inc()
}

func (s *LogEventSink) TokenRegistered(addr types.Address, index uint32) {
	s.logger.Info("token registered", "address", addr.Hex(), "index", index)
	metrics.TokensRegisteredTotal.Inc()
}

func (s *LogEventSink) AccountRegistered(addr types.Address, slotIndex uint32) {
	s.logger.Info("account registered", "address", addr.Hex(), "slotIndex", slotIndex)
	metrics.AccountsRegisteredTotal.Inc()
}

func (s *LogEventSink) RollupBlockCommitted(blockNumber uint64, numTransitions int) {
	s.logger.Info("block committed", "blockNumber", blockNumber, "numTransitions", numTransitions)
	metrics.BlocksCommittedTotal.Inc()
	metrics.BlocksLiveGauge.Inc()
}

func (s *LogEventSink) Transition(blockNumber uint64, index int, data []byte) {
	s.logger.Debug("transition", "blockNumber", blockNumber, "index", index, "bytes", len(data))
	metrics.TransitionsCommittedTotal.Inc()
	s.transMeter.Mark(1)
}

func (s *LogEventSink) DecodedTransition(blockNumber uint64, index int, transitionType types.TransitionType) {
	s.logger.Debug("decoded transition", "blockNumber", blockNumber, "index", index, "type", transitionType.String())
}

func (s *LogEventSink) FraudProofRun(blocksPruned int) {
	metrics.FraudProofsRunTotal.Inc()
	if blocksPruned > 0 {
		s.logger.Warn("fraud proof adjudicated: pruning", "blocksPruned", blocksPruned)
		metrics.FraudDetectedTotal.Inc()
		for i := 0; i < blocksPruned; i++ {
			metrics.BlocksLiveGauge.Dec()
		}
	} else {
		s.logger.Debug("fraud proof adjudicated: no fraud")
	}
}

// NullEventSink discards every event. Used by tests that only care
// about Chain's return values.
type NullEventSink struct{}

func (NullEventSink) CommitterChanged(types.Address)                      {}
func (NullEventSink) TokenRegistered(types.Address, uint32)               {}
func (NullEventSink) AccountRegistered(types.Address, uint32)             {}
func (NullEventSink) RollupBlockCommitted(uint64, int)                    {}
func (NullEventSink) Transition(uint64, int, []byte)                      {}
func (NullEventSink) DecodedTransition(uint64, int, types.TransitionType) {}
func (NullEventSink) FraudProofRun(int)                                   {}
