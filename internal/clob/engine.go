package clob

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// MatchingEngine serializes all mutations on one market's OrderBook and
// runs the matching algorithm on every incoming order (§4.2). A single
// sync.RWMutex is the literal implementation of §5's locking discipline:
// Apply and Cancel take the write lock; Snapshot and BestPrices take the
// read lock.
type MatchingEngine struct {
	marketID  string
	publisher EventPublisher

	mu   sync.RWMutex
	book *OrderBook
}

func newMatchingEngine(marketID string, publisher EventPublisher) *MatchingEngine {
	return &MatchingEngine{
		marketID:  marketID,
		publisher: publisher,
		book:      newOrderBook(),
	}
}

// Apply ownership-transfers order into the engine. Accepted means the
// order was fully processed (matched to completion, rested, or
// discarded as a market_limit remainder). Rejected covers invariant
// violations only; duplicate tx_id suppression happens upstream in the
// IngressRouter (§4.6).
func (e *MatchingEngine) Apply(order Order) (Outcome, error) {
	if err := order.Validate(); err != nil {
		return Rejected, err
	}
	order.MarketID = CanonicalMarketID(order.MarketID)

	e.mu.Lock()
	var events []MatchEvent
	remainder := runMatch(e.book, order, func(ev MatchEvent) {
		events = append(events, ev)
	})

	if remainder.Qty.IsPositive() {
		if remainder.MarketLimit {
			log.Info().
				Str("tx_id", remainder.TxID).
				Str("market_id", remainder.MarketID).
				Str("remaining_qty", remainder.Qty.String()).
				Msg("discarding unfilled market_limit remainder")
		} else if err := e.book.insert(remainder); err != nil {
			e.mu.Unlock()
			return Rejected, err
		}
	}
	e.mu.Unlock()

	// Publication happens outside the critical section: it is
	// fire-and-forget and must never hold the book lock across its own
	// suspension point (§5).
	for _, ev := range events {
		e.publish(ev)
	}

	return Accepted, nil
}

func (e *MatchingEngine) publish(ev MatchEvent) {
	var err error
	if ev.Kind == Full {
		err = e.publisher.Publish(SubjectMatchesFull, ev)
	} else {
		err = e.publisher.Publish(SubjectMatchesPartial, ev)
	}
	if err != nil {
		log.Error().
			Err(err).
			Str("market_id", ev.MarketID).
			Str("kind", ev.Kind.String()).
			Msg("match event publish failed; continuing without retry")
	}
}

// Cancel removes the resting order with tx_id, returning true iff an
// order was removed.
func (e *MatchingEngine) Cancel(txID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.cancel(txID)
}

// Snapshot delegates to the book under a read acquisition.
func (e *MatchingEngine) Snapshot(depth int) (bids, asks []LevelSnapshot) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.book.snapshot(depth)
}

// BestPrices delegates to the book under a read acquisition.
func (e *MatchingEngine) BestPrices() (bestBid, bestAsk decimal.Decimal) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.book.bestPrices()
}

// DetailedSnapshot delegates to the book under a read acquisition,
// returning individual resting orders rather than level aggregates
// (backs the external get_book contract, §6).
func (e *MatchingEngine) DetailedSnapshot(depth int) (bids, asks []Order) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.book.detailedOrders(depth)
}

// OpenOrdersForAccount delegates to the book under a read acquisition.
func (e *MatchingEngine) OpenOrdersForAccount(accountID string) []Order {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.book.restingOrdersFor(accountID)
}
