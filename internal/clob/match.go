package clob

import "github.com/shopspring/decimal"

// MatchKind classifies a match event from the aggressor's perspective:
// Full means the incoming (taker) order's remaining qty reached zero on
// this fill; Partial means it did not.
type MatchKind int

const (
	Partial MatchKind = iota
	Full
)

func (k MatchKind) String() string {
	if k == Full {
		return "full"
	}
	return "partial"
}

// MatchEvent records one executed fill. YesOrder and NoOrder are
// snapshots of the two resting/incoming orders at the moment of the
// fill (post-decrement), always in YES-first canonical order (I6),
// regardless of which side was the aggressor.
type MatchEvent struct {
	Kind     MatchKind
	MarketID string
	Price    decimal.Decimal // trade price: always the resting (maker) order's price
	YesOrder Order
	NoOrder  Order
}

// Outcome is the result of MatchingEngine.Apply.
type Outcome int

const (
	Accepted Outcome = iota
	Rejected
)

// runMatch executes the matching algorithm of §4.2 against incoming,
// mutating book and invoking onEvent for every fill in generation order.
// It returns the remainder of incoming's quantity left after the loop
// (zero if fully filled).
func runMatch(book *OrderBook, incoming Order, onEvent func(MatchEvent)) Order {
	takerSide := incoming.Side()
	oppositeSide := Ask
	if takerSide == Ask {
		oppositeSide = Bid
	}

	for incoming.Qty.IsPositive() {
		lvl := book.bestLevel(oppositeSide)
		if lvl == nil {
			break
		}
		resting := lvl.head()
		if resting == nil {
			// Level exists but was left empty by a prior bug; reconcile and stop.
			book.popIfDrained(oppositeSide, lvl.Price)
			break
		}

		// Cross check: a match is possible iff the bid's price meets or
		// exceeds the ask's magnitude. For an incoming bid that is
		// |incoming| >= |resting|; for an incoming ask, |resting| >= |incoming|.
		bidPrice, askPrice := incoming.AbsPrice(), resting.order.AbsPrice()
		if takerSide == Ask {
			bidPrice, askPrice = askPrice, bidPrice
		}
		if bidPrice.LessThan(askPrice) {
			break
		}

		fill := decimalMin(incoming.Qty, resting.order.Qty)
		incoming.Qty = incoming.Qty.Sub(fill)
		resting.order.Qty = resting.order.Qty.Sub(fill)

		kind := Partial
		if incoming.Qty.IsZero() {
			kind = Full
		}

		// Trade price rule: maker (resting order) sets the price.
		tradePrice := resting.order.PriceUSD.Abs()

		// I6: YES (positive price) first, NO (negative price) second.
		var yes, no Order
		if takerSide == Bid {
			yes, no = incoming, resting.order
		} else {
			yes, no = resting.order, incoming
		}

		onEvent(MatchEvent{
			Kind:     kind,
			MarketID: incoming.MarketID,
			Price:    tradePrice,
			YesOrder: yes,
			NoOrder:  no,
		})

		if resting.order.Qty.IsZero() {
			book.dropHead(oppositeSide, lvl)
		}
		if incoming.Qty.IsZero() {
			break
		}
	}

	return incoming
}

func decimalMin(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
