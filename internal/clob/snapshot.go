package clob

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/tomb.v2"
)

// streamCadence is the re-poll cadence for the streaming snapshot and
// price variants (§4.5).
const streamCadence = time.Second

// OrderDetail is the per-order payload of the external get_book /
// get_orders_for_user contracts (§6), grounded on the original
// implementation's OrderDetail shape.
type OrderDetail struct {
	TxID      string
	AccountID string
	PriceUSD  decimal.Decimal
	Qty       decimal.Decimal
}

func toOrderDetails(orders []Order) []OrderDetail {
	out := make([]OrderDetail, len(orders))
	for i, o := range orders {
		out[i] = OrderDetail{TxID: o.TxID, AccountID: o.AccountID, PriceUSD: o.PriceUSD, Qty: o.Qty}
	}
	return out
}

// BookView is the depth-bounded snapshot returned by SnapshotReader.Snapshot.
type BookView struct {
	Bids []OrderDetail
	Asks []OrderDetail
}

// PriceUpdate is the (best_bid, best_ask, timestamp) tuple returned by
// SnapshotReader.PriceUpdate and get_price (§4.5, §6).
type PriceUpdate struct {
	BestBid     decimal.Decimal
	BestAsk     decimal.Decimal
	TimestampMS int64
}

// SnapshotReader is the stateless read path: for each call it acquires
// a read view of the named market's book and produces a depth-bounded
// snapshot or a top-of-book price update (§4.5).
type SnapshotReader struct {
	registry *BookRegistry
}

func NewSnapshotReader(registry *BookRegistry) *SnapshotReader {
	return &SnapshotReader{registry: registry}
}

// Snapshot acquires a read view of market's book and returns its
// (bids, asks) snapshot. Concurrent with mutations, the read sees
// either the pre- or post-state of a given Apply, never an interleaving
// (§5), because MatchingEngine.Snapshot takes the same RWMutex Apply
// writes under.
func (s *SnapshotReader) Snapshot(marketID string, depth int) (BookView, error) {
	eng, err := s.registry.Lookup(marketID)
	if err != nil {
		return BookView{}, err
	}
	bids, asks := eng.DetailedSnapshot(depth)
	return BookView{Bids: toOrderDetails(bids), Asks: toOrderDetails(asks)}, nil
}

// PriceUpdate returns (best_bid, best_ask, wall-clock timestamp in
// milliseconds); a missing side reports MidpointSentinel.
func (s *SnapshotReader) PriceUpdate(marketID string) (PriceUpdate, error) {
	eng, err := s.registry.Lookup(marketID)
	if err != nil {
		return PriceUpdate{}, err
	}
	bestBid, bestAsk := eng.BestPrices()
	return PriceUpdate{BestBid: bestBid, BestAsk: bestAsk, TimestampMS: time.Now().UnixMilli()}, nil
}

// StreamSnapshot opens a subscription that re-polls Snapshot at a
// 1-second cadence and delivers the current value on the returned
// channel. The stream stops when ctx is cancelled (the caller's analog
// of "the subscriber drops its receiver" in §4.5, since Go has no
// receiver-drop detection) or when t is dying.
func (s *SnapshotReader) StreamSnapshot(ctx context.Context, t *tomb.Tomb, marketID string, depth int) <-chan BookView {
	out := make(chan BookView, 1)
	t.Go(func() error {
		defer close(out)
		ticker := time.NewTicker(streamCadence)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-t.Dying():
				return nil
			case <-ticker.C:
				view, err := s.Snapshot(marketID, depth)
				if err != nil {
					return err
				}
				select {
				case out <- view:
				case <-ctx.Done():
					return nil
				case <-t.Dying():
					return nil
				}
			}
		}
	})
	return out
}

// StreamPrice is StreamSnapshot's analog for top-of-book price updates.
func (s *SnapshotReader) StreamPrice(ctx context.Context, t *tomb.Tomb, marketID string) <-chan PriceUpdate {
	out := make(chan PriceUpdate, 1)
	t.Go(func() error {
		defer close(out)
		ticker := time.NewTicker(streamCadence)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-t.Dying():
				return nil
			case <-ticker.C:
				update, err := s.PriceUpdate(marketID)
				if err != nil {
					return err
				}
				select {
				case out <- update:
				case <-ctx.Done():
					return nil
				case <-t.Dying():
					return nil
				}
			}
		}
	})
	return out
}
