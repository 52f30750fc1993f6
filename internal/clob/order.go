// Package clob implements the per-market central limit order book: the
// price-sorted book, the price-time priority matching algorithm, the
// registry of markets, the ingress duplicate guard, and the read-side
// snapshot and recovery operations described in SPEC_FULL.md.
package clob

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side is derived from the sign of an Order's PriceUSD. Positive prices
// are bids on the YES outcome; negative prices are asks, whose unsigned
// magnitude is the offered price.
type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Bid {
		return "bid"
	}
	return "ask"
}

var (
	ErrZeroPrice    = errors.New("clob: price_usd must be nonzero")
	ErrNonPositiveQ = errors.New("clob: qty must be strictly positive")
	ErrEmptyTxID    = errors.New("clob: tx_id must not be empty")
	ErrEmptyMarket  = errors.New("clob: market_id must not be empty")
)

// Order is an immutable value describing a priced share-quantity intent
// on a binary outcome. Ownership transfers into the engine on Apply;
// callers must not mutate an Order after submission.
type Order struct {
	TxID        string
	MarketID    string
	AccountID   string
	MarketLimit bool
	PriceUSD    decimal.Decimal
	Qty         decimal.Decimal
}

// Validate enforces the data-model invariants that do not depend on book
// state: nonzero price, strictly positive quantity, non-empty ids.
func (o Order) Validate() error {
	if o.TxID == "" {
		return ErrEmptyTxID
	}
	if o.MarketID == "" {
		return ErrEmptyMarket
	}
	if o.PriceUSD.IsZero() {
		return ErrZeroPrice
	}
	if !o.Qty.IsPositive() {
		return ErrNonPositiveQ
	}
	return nil
}

// Side reports the side implied by the sign of PriceUSD. Callers MUST
// have validated the order (nonzero price) before calling this.
func (o Order) Side() Side {
	if o.PriceUSD.IsPositive() {
		return Bid
	}
	return Ask
}

// AbsPrice returns the unsigned magnitude of PriceUSD, used for crossing
// comparisons (both sides compare on magnitude).
func (o Order) AbsPrice() decimal.Decimal {
	return o.PriceUSD.Abs()
}

// CanonicalMarketID lower-cases a market id, matching the engine's
// case-insensitive market_id canonicalization.
func CanonicalMarketID(marketID string) string {
	return strings.ToLower(marketID)
}

// CanonicalAccountID lower-cases an account id for case-insensitive
// account matching (BookRegistry.ListOpenOrdersForAccount).
func CanonicalAccountID(accountID string) string {
	return strings.ToLower(accountID)
}

// restingOrder is the mutable, book-resident representation of an Order:
// same identity, decrementing Qty as fills consume it.
type restingOrder struct {
	order    Order
	restedAt time.Time
}

func newRestingOrder(o Order) *restingOrder {
	return &restingOrder{order: o, restedAt: time.Now()}
}
