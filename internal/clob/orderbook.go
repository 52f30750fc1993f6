package clob

import (
	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"
)

// priceLevels is sorted most-aggressive-first for both sides. Bids carry
// a strictly positive key (I2), so the largest value is the best bid.
// Asks carry a strictly negative key, so the largest (least negative,
// i.e. closest to zero) value is the best ask. Because the two sides
// occupy disjoint sign domains (spec §3), one descending comparator
// serves both trees — there is no need for the teacher's separate
// ascending/descending comparators per side.
type priceLevels = btree.BTreeG[*PriceLevel]

func newPriceLevels() *priceLevels {
	return btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price.GreaterThan(b.Price)
	})
}

// bookLocation is the auxiliary tx_id index the spec recommends for
// O(1) cancel.
type bookLocation struct {
	side  Side
	price decimal.Decimal
}

// OrderBook is the per-market in-memory state: two price-indexed
// collections of price levels, plus the set of live tx_ids resting in
// either side. OrderBook does not match; MatchingEngine composes these
// primitives to run the matching algorithm (§4.1).
type OrderBook struct {
	bids *priceLevels
	asks *priceLevels

	liveTxIDs map[string]bookLocation
}

// MidpointSentinel is returned for an absent side of the book by
// BestPrices, representing the midpoint of a [0,1]-priced binary market.
var MidpointSentinel = decimal.NewFromFloat(0.5)

func newOrderBook() *OrderBook {
	return &OrderBook{
		bids:      newPriceLevels(),
		asks:      newPriceLevels(),
		liveTxIDs: make(map[string]bookLocation),
	}
}

func (b *OrderBook) levelsFor(side Side) *priceLevels {
	if side == Bid {
		return b.bids
	}
	return b.asks
}

// insert appends order to the FIFO at its keyed price level, creating
// the level if absent. Rejects zero-priced orders.
func (b *OrderBook) insert(o Order) error {
	if o.PriceUSD.IsZero() {
		return ErrZeroPrice
	}
	side := o.Side()
	levels := b.levelsFor(side)

	lvl, ok := levels.Get(&PriceLevel{Price: o.PriceUSD})
	if !ok {
		lvl = newPriceLevel(o.PriceUSD)
		levels.Set(lvl)
	}
	lvl.push(newRestingOrder(o))
	b.liveTxIDs[o.TxID] = bookLocation{side: side, price: o.PriceUSD}
	return nil
}

// bestLevel returns the most aggressive non-empty price level on side,
// or nil if that side of the book is empty.
func (b *OrderBook) bestLevel(side Side) *PriceLevel {
	lvl, ok := b.levelsFor(side).Min()
	if !ok {
		return nil
	}
	return lvl
}

// popIfDrained removes an empty price level from side.
func (b *OrderBook) popIfDrained(side Side, price decimal.Decimal) {
	levels := b.levelsFor(side)
	lvl, ok := levels.Get(&PriceLevel{Price: price})
	if ok && lvl.isEmpty() {
		levels.Delete(lvl)
	}
}

// dropHead removes the fully-consumed head order of lvl on side,
// cleaning up the tx_id index and the level itself if now empty.
func (b *OrderBook) dropHead(side Side, lvl *PriceLevel) {
	head := lvl.head()
	if head == nil {
		return
	}
	delete(b.liveTxIDs, head.order.TxID)
	lvl.popHead()
	if lvl.isEmpty() {
		b.popIfDrained(side, lvl.Price)
	}
}

// cancel locates and removes the resting order with this tx_id from
// whichever side it rests on, in O(1) via the auxiliary index.
func (b *OrderBook) cancel(txID string) bool {
	loc, ok := b.liveTxIDs[txID]
	if !ok {
		return false
	}
	levels := b.levelsFor(loc.side)
	lvl, ok := levels.Get(&PriceLevel{Price: loc.price})
	if !ok {
		delete(b.liveTxIDs, txID)
		return false
	}
	removed := lvl.remove(txID)
	if removed {
		delete(b.liveTxIDs, txID)
		if lvl.isEmpty() {
			levels.Delete(lvl)
		}
	}
	return removed
}

// LevelSnapshot is a point-in-time (price, level-size) pair.
type LevelSnapshot struct {
	Price decimal.Decimal
	Size  int
}

// snapshot produces bids (top-down, highest first) and asks (top-down,
// best-i.e.-closest-to-zero first), truncated to depth; depth == 0
// means "all levels".
func (b *OrderBook) snapshot(depth int) (bids, asks []LevelSnapshot) {
	bids = collectLevels(b.bids, depth)
	asks = collectLevels(b.asks, depth)
	return bids, asks
}

func collectLevels(levels *priceLevels, depth int) []LevelSnapshot {
	var out []LevelSnapshot
	levels.Scan(func(lvl *PriceLevel) bool {
		out = append(out, LevelSnapshot{Price: lvl.Price, Size: lvl.size()})
		return depth == 0 || len(out) < depth
	})
	return out
}

// bestPrices returns (best_bid_price, best_ask_price); an absent side
// reports MidpointSentinel.
func (b *OrderBook) bestPrices() (bestBid, bestAsk decimal.Decimal) {
	bestBid, bestAsk = MidpointSentinel, MidpointSentinel
	if lvl := b.bestLevel(Bid); lvl != nil {
		bestBid = lvl.Price
	}
	if lvl := b.bestLevel(Ask); lvl != nil {
		bestAsk = lvl.Price
	}
	return bestBid, bestAsk
}

// detailedOrders returns the individual resting orders (not aggregated
// by level) top-down by price priority then FIFO per level, truncated
// to the first depth price levels on each side (0 means all levels).
// This backs the external get_book contract (§6), whose OrderDetail
// payload is per-order rather than per-level.
func (b *OrderBook) detailedOrders(depth int) (bids, asks []Order) {
	bids = collectOrders(b.bids, depth)
	asks = collectOrders(b.asks, depth)
	return bids, asks
}

func collectOrders(levels *priceLevels, depth int) []Order {
	var out []Order
	nLevels := 0
	levels.Scan(func(lvl *PriceLevel) bool {
		for _, o := range lvl.orders {
			out = append(out, o.order)
		}
		nLevels++
		return depth == 0 || nLevels < depth
	})
	return out
}

// restingOrdersFor returns every resting order whose account matches
// accountID case-insensitively, across both sides (used by
// BookRegistry.ListOpenOrdersForAccount).
func (b *OrderBook) restingOrdersFor(accountID string) []Order {
	var out []Order
	want := CanonicalAccountID(accountID)
	collect := func(levels *priceLevels) {
		levels.Scan(func(lvl *PriceLevel) bool {
			for _, o := range lvl.orders {
				if CanonicalAccountID(o.order.AccountID) == want {
					out = append(out, o.order)
				}
			}
			return true
		})
	}
	collect(b.bids)
	collect(b.asks)
	return out
}
