package clob

import "context"

// ReplaySource is the authoritative upstream collaborator that, when
// triggered, replays every currently-open order back through the
// normal ingress path (NATS clob.orders / create_order), so the engine
// ends up with the same resting state it had before restart. Its wire
// contract is out of scope for this module (§1); only this narrow
// capability is depended on here.
type ReplaySource interface {
	TriggerReplay(ctx context.Context) error
}

// RecoveryInitiator is the once-per-boot caller described in §4.7: after
// the request surface binds and signals readiness, it synchronously
// asks the upstream to replay open orders. The engine is a derived
// view (§1 Non-goals: no on-disk persistence of the book itself), so
// serving before replay completes would present an empty book and
// accept crossing orders that should have matched against replayed
// state.
type RecoveryInitiator struct {
	source ReplaySource
}

func NewRecoveryInitiator(source ReplaySource) *RecoveryInitiator {
	return &RecoveryInitiator{source: source}
}

// Run performs the replay call. The caller (cmd/clobd) is responsible
// for the §7 Fatal policy: abort the process with a non-zero exit
// status if this returns an error.
func (r *RecoveryInitiator) Run(ctx context.Context) error {
	return r.source.TriggerReplay(ctx)
}
