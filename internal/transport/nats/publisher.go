// Package nats adapts the clob core onto the NATS pub/sub surface named
// in SPEC_FULL.md §6: match events out on clob.matches.full /
// clob.matches.partial, orders in on clob.orders.
package nats

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/saiputravu/clob/internal/clob"
)

// wireMatchEvent is the JSON payload shape published on the match
// subjects: one JSON object carrying the YES-side order (yes_order), the
// NO-side order (no_order), the trade price, the market and the match
// kind. The payload is an object, not a bare two-element array.
type wireMatchEvent struct {
	MarketID string    `json:"market_id"`
	Price    string    `json:"price_usd"`
	YesOrder wireOrder `json:"yes_order"`
	NoOrder  wireOrder `json:"no_order"`
	Kind     string    `json:"kind"`
}

type wireOrder struct {
	TxID      string `json:"tx_id"`
	AccountID string `json:"account_id"`
	PriceUSD  string `json:"price_usd"`
	Qty       string `json:"qty"`
}

func toWireOrder(o clob.Order) wireOrder {
	return wireOrder{
		TxID:      o.TxID,
		AccountID: o.AccountID,
		PriceUSD:  o.PriceUSD.String(),
		Qty:       o.Qty.String(),
	}
}

// Publisher implements clob.EventPublisher by JSON-encoding and
// publishing onto a NATS connection. Publish errors are logged, never
// returned as fatal: §4.4/§7 PublishFailed policy is "log and
// continue," the core never blocks on or retries publication.
type Publisher struct {
	conn *nats.Conn
}

func NewPublisher(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

func (p *Publisher) Publish(subject string, event clob.MatchEvent) error {
	payload := wireMatchEvent{
		MarketID: event.MarketID,
		Price:    event.Price.String(),
		Kind:     event.Kind.String(),
		YesOrder: toWireOrder(event.YesOrder),
		NoOrder:  toWireOrder(event.NoOrder),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("failed to marshal match event")
		return fmt.Errorf("nats: marshal match event: %w", err)
	}

	if err := p.conn.Publish(subject, data); err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("failed to publish match event")
		return fmt.Errorf("nats: publish %s: %w", subject, err)
	}
	return nil
}
