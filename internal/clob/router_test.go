package clob

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() (*IngressRouter, *BookRegistry, *InMemoryPublisher) {
	pub := NewInMemoryPublisher()
	reg := NewBookRegistry(pub)
	return NewIngressRouter(reg), reg, pub
}

// Scenario E — duplicate tx_id suppressed.
func TestScenarioE_DuplicateTxIDSuppressedByRouter(t *testing.T) {
	router, reg, _ := newTestRouter()
	require.True(t, reg.CreateMarket("m1"))

	outcome, err := router.Submit(newTestOrder("a", "m1", "u1", 0.60, 10, false))
	require.NoError(t, err)
	assert.Equal(t, Accepted, outcome)

	outcome, err = router.Submit(newTestOrder("a", "m1", "u1", 0.60, 10, false))
	assert.ErrorIs(t, err, ErrDuplicateTxID)
	assert.Equal(t, Rejected, outcome)

	eng, err := reg.Lookup("m1")
	require.NoError(t, err)
	bids, _ := eng.Snapshot(0)
	require.Len(t, bids, 1)
	assert.Equal(t, 1, bids[0].Size, "only one resting order, the duplicate was dropped")
}

// P6: submitting the same tx_id twice affects the book exactly once,
// even when the first submission was rejected.
func TestP6_DuplicateOfRejectedOrderAlsoDropped(t *testing.T) {
	router, reg, _ := newTestRouter()
	require.True(t, reg.CreateMarket("m1"))

	// Zero price is rejected by the engine, but the tx_id is still
	// marked seen (policy: duplicates of a rejected tx_id are dropped).
	outcome, err := router.Submit(Order{
		TxID: "bad", MarketID: "m1", AccountID: "u1",
		PriceUSD: decimal.Zero, Qty: decimal.NewFromInt(1),
	})
	assert.Equal(t, Rejected, outcome)
	assert.ErrorIs(t, err, ErrZeroPrice)

	outcome, err = router.Submit(newTestOrder("bad", "m1", "u1", 0.60, 10, false))
	assert.Equal(t, Rejected, outcome)
	assert.ErrorIs(t, err, ErrDuplicateTxID)

	eng, err := reg.Lookup("m1")
	require.NoError(t, err)
	bids, _ := eng.Snapshot(0)
	assert.Empty(t, bids, "the valid-looking resubmission must still be dropped")
}

// P7: cancel(tx_id) followed by another submission of any different
// order leaves the book identical to one where the cancelled order
// never rested.
func TestP7_CancelThenDifferentOrderMatchesNeverRestedBaseline(t *testing.T) {
	router, reg, _ := newTestRouter()
	require.True(t, reg.CreateMarket("m1"))

	_, err := router.Submit(newTestOrder("a", "m1", "u1", 0.60, 10, false))
	require.NoError(t, err)
	ok, err := router.Cancel("m1", "a")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = router.Submit(newTestOrder("z", "m1", "u2", 0.45, 3, false))
	require.NoError(t, err)

	eng, _ := reg.Lookup("m1")
	bids, _ := eng.Snapshot(0)
	require.Len(t, bids, 1)
	assert.True(t, bids[0].Price.Equal(decimal.NewFromFloat(0.45)))
}

func TestIngressRouter_UnknownMarketRejected(t *testing.T) {
	router, _, _ := newTestRouter()
	outcome, err := router.Submit(newTestOrder("a", "does-not-exist", "u1", 0.6, 1, false))
	assert.Equal(t, Rejected, outcome)
	assert.ErrorIs(t, err, ErrUnknownMarket)
}

func TestIngressRouter_EmptyTxIDRejected(t *testing.T) {
	router, reg, _ := newTestRouter()
	require.True(t, reg.CreateMarket("m1"))
	outcome, err := router.Submit(newTestOrder("", "m1", "u1", 0.6, 1, false))
	assert.Equal(t, Rejected, outcome)
	assert.ErrorIs(t, err, ErrEmptyTxID)
}
