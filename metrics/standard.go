package metrics

// Pre-defined metrics for the settlement core. All metrics live in
// DefaultRegistry so they are globally accessible without passing a
// registry around; chain.LogEventSink increments these on every
// commit/prove/admin call.

var (
	// ---- Rollup chain metrics ----

	// BlocksCommittedTotal counts blocks successfully appended to the ledger.
	BlocksCommittedTotal = DefaultRegistry.Counter("blocks_committed_total")
	// BlocksLiveGauge tracks the number of non-tombstoned blocks.
	BlocksLiveGauge = DefaultRegistry.Gauge("blocks_live_gauge")
	// TransitionsCommittedTotal counts individual transitions included in committed blocks.
	TransitionsCommittedTotal = DefaultRegistry.Counter("transitions_committed_total")
	// FraudProofsRunTotal counts ProveTransitionInvalid invocations.
	FraudProofsRunTotal = DefaultRegistry.Counter("fraud_proofs_run_total")
	// FraudDetectedTotal counts ProveTransitionInvalid calls that pruned a block.
	FraudDetectedTotal = DefaultRegistry.Counter("fraud_detected_total")

	// ---- Validator / committer metrics ----

	// CommitterRotationsTotal counts round-robin committer changes.
	CommitterRotationsTotal = DefaultRegistry.Counter("committer_rotations_total")

	// ---- Registry metrics ----

	// TokensRegisteredTotal counts token addresses allocated an index.
	TokensRegisteredTotal = DefaultRegistry.Counter("tokens_registered_total")
	// AccountsRegisteredTotal counts account slots created by a create-variant
	// transition (CreateAndDeposit or CreateAndTransfer) that a fraud proof found valid.
	AccountsRegisteredTotal = DefaultRegistry.Counter("accounts_registered_total")
)
