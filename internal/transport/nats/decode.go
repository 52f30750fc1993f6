package nats

import (
	"github.com/shopspring/decimal"

	"github.com/saiputravu/clob/internal/clob"
)

// fromWireOrder parses the string-encoded decimal fields of an incoming
// wire order. Decimal values travel as strings, not JSON numbers, to
// avoid float round-tripping through the wire (same convention the
// trade price and quantities use on the match-event subjects).
func fromWireOrder(w wireIncomingOrder) (clob.Order, error) {
	price, err := decimal.NewFromString(w.PriceUSD)
	if err != nil {
		return clob.Order{}, err
	}
	qty, err := decimal.NewFromString(w.Qty)
	if err != nil {
		return clob.Order{}, err
	}

	return clob.Order{
		TxID:        w.TxID,
		MarketID:    w.MarketID,
		AccountID:   w.AccountID,
		MarketLimit: w.MarketLimit,
		PriceUSD:    price,
		Qty:         qty,
	}, nil
}
