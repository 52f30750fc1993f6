package clob

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// IngressRouter is the single entry point from both the request surface
// and the pub/sub surface (§4.6). It enforces a process-wide unique
// tx_id guard before dispatching to the BookRegistry, so both surfaces
// converge onto the same per-market serialization order.
//
// Lock order (§5): seenTxIDs mutex -> BookRegistry -> per-market book.
// The seenTxIDs mutex is held only long enough to test-and-set the id
// and is released before the registry and engine locks are taken.
type IngressRouter struct {
	registry *BookRegistry

	mu        sync.Mutex
	seenTxIDs map[string]struct{}
}

func NewIngressRouter(registry *BookRegistry) *IngressRouter {
	return &IngressRouter{
		registry:  registry,
		seenTxIDs: make(map[string]struct{}),
	}
}

// Submit is called by both the NATS order subscription and the
// create_order request handler. If tx_id has been seen before, the
// order is logged and dropped (idempotent re-delivery tolerance),
// regardless of whether the prior submission was accepted or rejected.
func (r *IngressRouter) Submit(order Order) (Outcome, error) {
	if order.TxID == "" {
		return Rejected, ErrEmptyTxID
	}

	r.mu.Lock()
	if _, seen := r.seenTxIDs[order.TxID]; seen {
		r.mu.Unlock()
		log.Warn().
			Str("tx_id", order.TxID).
			Str("market_id", order.MarketID).
			Msg("duplicate tx_id suppressed")
		return Rejected, ErrDuplicateTxID
	}
	r.seenTxIDs[order.TxID] = struct{}{}
	r.mu.Unlock()

	eng, err := r.registry.Lookup(order.MarketID)
	if err != nil {
		log.Error().
			Err(err).
			Str("market_id", order.MarketID).
			Str("tx_id", order.TxID).
			Msg("order submitted for unknown market")
		return Rejected, err
	}

	outcome, err := eng.Apply(order)
	if err != nil {
		log.Error().
			Err(err).
			Str("tx_id", order.TxID).
			Msg("order rejected by matching engine")
	}
	// Policy: the tx_id remains in seenTxIDs even on Rejected, so a
	// retried submission of the same rejected order is also dropped.
	return outcome, err
}

// Cancel routes a cancellation to the named market's engine.
func (r *IngressRouter) Cancel(marketID, txID string) (bool, error) {
	eng, err := r.registry.Lookup(marketID)
	if err != nil {
		return false, err
	}
	return eng.Cancel(txID), nil
}
