package chain

import (
	"testing"

	"github.com/l2rollup/settlement/log"
	"github.com/l2rollup/settlement/metrics"
	"github.com/l2rollup/settlement/types"
)

func TestLogEventSinkTransitionRateTracksMarks(t *testing.T) {
	sink := NewLogEventSink(log.Default())
	if rate := sink.TransitionRate1(); rate != 0 {
		t.Fatalf("rate before any transitions = %f, want 0", rate)
	}
	sink.Transition(0, 0, []byte("a transition"))
	// A single mark does not move the 1-minute EWMA until it ticks, but
	// Mark must not panic and Count must reflect the event immediately.
	if sink.transMeter.Count() != 1 {
		t.Fatalf("transMeter.Count() = %d, want 1", sink.transMeter.Count())
	}
}

func TestLogEventSinkFraudProofRunIncrementsCounters(t *testing.T) {
	before := metrics.FraudProofsRunTotal.Value()
	beforeDetected := metrics.FraudDetectedTotal.Value()

	sink := NewLogEventSink(log.Default())
	sink.FraudProofRun(0)
	if got := metrics.FraudProofsRunTotal.Value(); got != before+1 {
		t.Fatalf("FraudProofsRunTotal = %d, want %d", got, before+1)
	}
	if got := metrics.FraudDetectedTotal.Value(); got != beforeDetected {
		t.Fatalf("FraudDetectedTotal should not move on a no-fraud run, got %d want %d", got, beforeDetected)
	}

	sink.FraudProofRun(2)
	if got := metrics.FraudDetectedTotal.Value(); got != beforeDetected+1 {
		t.Fatalf("FraudDetectedTotal = %d, want %d", got, beforeDetected+1)
	}
}

func TestNullEventSinkImplementsEventSink(t *testing.T) {
	var _ EventSink = NullEventSink{}
	var sink EventSink = NullEventSink{}
	sink.FraudProofRun(3)
	sink.DecodedTransition(0, 0, types.TransitionType(0))
}
