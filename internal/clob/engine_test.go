package clob

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestOrder builds an order with sensible defaults for the
// price-time priority scenarios in spec.md §8.
func newTestOrder(txID, marketID, accountID string, price, qty float64, marketLimit bool) Order {
	return Order{
		TxID:        txID,
		MarketID:    marketID,
		AccountID:   accountID,
		MarketLimit: marketLimit,
		PriceUSD:    decimal.NewFromFloat(price),
		Qty:         decimal.NewFromFloat(qty),
	}
}

func newTestEngine() (*MatchingEngine, *InMemoryPublisher) {
	pub := NewInMemoryPublisher()
	return newMatchingEngine("m1", pub), pub
}

// Scenario A — full match at maker's price.
func TestScenarioA_FullMatchAtMakerPrice(t *testing.T) {
	eng, pub := newTestEngine()

	outcome, err := eng.Apply(newTestOrder("a", "m1", "u1", 0.60, 10, false))
	require.NoError(t, err)
	assert.Equal(t, Accepted, outcome)

	outcome, err = eng.Apply(newTestOrder("b", "m1", "u2", -0.55, 10, false))
	require.NoError(t, err)
	assert.Equal(t, Accepted, outcome)

	calls := pub.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, SubjectMatchesFull, calls[0].Subject)
	assert.Equal(t, Full, calls[0].Event.Kind)
	assert.True(t, calls[0].Event.Price.Equal(decimal.NewFromFloat(0.60)))
	assert.Equal(t, "a", calls[0].Event.YesOrder.TxID)
	assert.Equal(t, "b", calls[0].Event.NoOrder.TxID)
	assert.True(t, calls[0].Event.YesOrder.Qty.IsZero())
	assert.True(t, calls[0].Event.NoOrder.Qty.IsZero())

	bids, asks := eng.Snapshot(0)
	assert.Empty(t, bids)
	assert.Empty(t, asks)
}

// Scenario B — partial then full.
func TestScenarioB_PartialThenFull(t *testing.T) {
	eng, pub := newTestEngine()

	_, err := eng.Apply(newTestOrder("a", "m1", "u1", 0.60, 10, false))
	require.NoError(t, err)

	_, err = eng.Apply(newTestOrder("b", "m1", "u2", -0.60, 4, false))
	require.NoError(t, err)

	calls := pub.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, Partial, calls[0].Event.Kind)
	assert.True(t, calls[0].Event.NoOrder.Qty.IsZero(), "b fully consumed")
	assert.True(t, calls[0].Event.YesOrder.Qty.Equal(decimal.NewFromFloat(6)), "a rests with qty 6")

	bids, asks := eng.Snapshot(0)
	require.Len(t, bids, 1)
	assert.True(t, bids[0].Price.Equal(decimal.NewFromFloat(0.60)))
	assert.Equal(t, 1, bids[0].Size)
	assert.Empty(t, asks)

	_, err = eng.Apply(newTestOrder("c", "m1", "u3", -0.60, 6, false))
	require.NoError(t, err)

	calls = pub.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, Full, calls[1].Event.Kind)

	bids, asks = eng.Snapshot(0)
	assert.Empty(t, bids)
	assert.Empty(t, asks)
}

// Scenario C — non-cross rests.
func TestScenarioC_NonCrossRests(t *testing.T) {
	eng, pub := newTestEngine()

	_, err := eng.Apply(newTestOrder("a", "m1", "u1", 0.40, 5, false))
	require.NoError(t, err)
	_, err = eng.Apply(newTestOrder("b", "m1", "u2", -0.55, 5, false))
	require.NoError(t, err)

	assert.Empty(t, pub.Calls())

	bids, asks := eng.Snapshot(0)
	require.Len(t, bids, 1)
	require.Len(t, asks, 1)
	assert.True(t, bids[0].Price.Equal(decimal.NewFromFloat(0.40)))
	assert.True(t, asks[0].Price.Equal(decimal.NewFromFloat(-0.55)))
}

// Scenario D — market_limit discards remainder.
func TestScenarioD_MarketLimitDiscardsRemainder(t *testing.T) {
	eng, pub := newTestEngine()

	_, err := eng.Apply(newTestOrder("a", "m1", "u1", 0.60, 5, false))
	require.NoError(t, err)

	outcome, err := eng.Apply(newTestOrder("b", "m1", "u2", -0.60, 20, true))
	require.NoError(t, err)
	assert.Equal(t, Accepted, outcome)

	calls := pub.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, Partial, calls[0].Event.Kind)
	assert.True(t, calls[0].Event.YesOrder.Qty.IsZero())

	bids, asks := eng.Snapshot(0)
	assert.Empty(t, bids)
	assert.Empty(t, asks)
}

// Scenario E — duplicate tx_id suppressed, at the MatchingEngine level
// a duplicate submission is simply a second Apply call — suppression
// itself is IngressRouter's job (see router_test.go); this asserts that
// applying the identical order twice directly to the engine (bypassing
// the router) would double the resting qty, motivating the guard.
func TestScenarioE_WithoutRouterDuplicateDoublesBook(t *testing.T) {
	eng, _ := newTestEngine()

	_, err := eng.Apply(newTestOrder("a", "m1", "u1", 0.60, 10, false))
	require.NoError(t, err)
	_, err = eng.Apply(newTestOrder("a", "m1", "u1", 0.60, 10, false))
	require.NoError(t, err)

	bids, _ := eng.Snapshot(0)
	require.Len(t, bids, 1)
	assert.Equal(t, 2, bids[0].Size, "engine alone has no idempotency guard")
}

// Scenario F — cancel removes.
func TestScenarioF_CancelRemoves(t *testing.T) {
	eng, _ := newTestEngine()

	_, err := eng.Apply(newTestOrder("a", "m1", "u1", 0.60, 10, false))
	require.NoError(t, err)

	assert.True(t, eng.Cancel("a"))

	bids, asks := eng.Snapshot(0)
	assert.Empty(t, bids)
	assert.Empty(t, asks)

	assert.False(t, eng.Cancel("a"))
}

// P1: after any sequence of Apply calls, the book is never crossed at rest.
func TestP1_NeverCrossedAtRest(t *testing.T) {
	eng, _ := newTestEngine()

	orders := []Order{
		newTestOrder("a", "m1", "u1", 0.30, 5, false),
		newTestOrder("b", "m1", "u2", 0.45, 5, false),
		newTestOrder("c", "m1", "u3", -0.80, 5, false),
		newTestOrder("d", "m1", "u4", -0.46, 20, false),
		newTestOrder("e", "m1", "u5", 0.90, 3, false),
	}
	for _, o := range orders {
		_, err := eng.Apply(o)
		require.NoError(t, err)
	}

	bestBid, bestAsk := eng.BestPrices()
	if !bestBid.Equal(MidpointSentinel) && !bestAsk.Equal(MidpointSentinel) {
		assert.True(t, bestBid.LessThan(bestAsk.Abs()), "book must not be crossed at rest")
	}
}

// P2: fills + remaining resting qty + discarded remainder == o.qty.
func TestP2_QuantityConservedForIncomingOrder(t *testing.T) {
	eng, pub := newTestEngine()

	_, err := eng.Apply(newTestOrder("a", "m1", "u1", 0.60, 10, false))
	require.NoError(t, err)

	incomingQty := decimal.NewFromFloat(15)
	_, err = eng.Apply(Order{
		TxID: "b", MarketID: "m1", AccountID: "u2",
		MarketLimit: true,
		PriceUSD:    decimal.NewFromFloat(-0.60),
		Qty:         incomingQty,
	})
	require.NoError(t, err)

	calls := pub.Calls()
	require.Len(t, calls, 1)
	restingFillQty := decimal.NewFromFloat(10) // a's full original qty was consumed
	discardedRemainder := incomingQty.Sub(restingFillQty)
	assert.True(t, restingFillQty.Add(discardedRemainder).Equal(incomingQty))
}

// P5: for every emitted match event, the first element has positive
// price_usd and the second has negative price_usd.
func TestP5_CanonicalOrderingOfMatchEvents(t *testing.T) {
	eng, pub := newTestEngine()

	_, err := eng.Apply(newTestOrder("a", "m1", "u1", -0.60, 10, false)) // ask rests first
	require.NoError(t, err)
	_, err = eng.Apply(newTestOrder("b", "m1", "u2", 0.65, 10, false)) // bid aggresses
	require.NoError(t, err)

	calls := pub.Calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Event.YesOrder.PriceUSD.IsPositive())
	assert.True(t, calls[0].Event.NoOrder.PriceUSD.IsNegative())
}
