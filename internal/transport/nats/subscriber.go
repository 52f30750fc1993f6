package nats

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"github.com/saiputravu/clob/internal/clob"
	"github.com/saiputravu/clob/internal/workerpool"
)

// wireIncomingOrder is the JSON shape accepted on clob.orders.
type wireIncomingOrder struct {
	TxID        string `json:"tx_id"`
	MarketID    string `json:"market_id"`
	AccountID   string `json:"account_id"`
	MarketLimit bool   `json:"market_limit"`
	PriceUSD    string `json:"price_usd"`
	Qty         string `json:"qty"`
}

// OrderSubscriber drains clob.orders into the IngressRouter through a
// worker pool, so decode-and-apply work runs concurrently while the
// router's tx_id guard still serializes duplicate detection.
type OrderSubscriber struct {
	conn   *nats.Conn
	router *clob.IngressRouter
	pool   *workerpool.Pool
	sub    *nats.Subscription
}

// NewOrderSubscriber builds a subscriber backed by a pool of
// concurrency workers.
func NewOrderSubscriber(conn *nats.Conn, router *clob.IngressRouter, concurrency int) *OrderSubscriber {
	s := &OrderSubscriber{conn: conn, router: router}
	s.pool = workerpool.New(concurrency, s.handleTask)
	return s
}

// Start subscribes to clob.orders and starts the worker pool under t.
func (s *OrderSubscriber) Start(t *tomb.Tomb) error {
	sub, err := s.conn.Subscribe(clob.SubjectOrders, func(msg *nats.Msg) {
		s.pool.Submit(msg.Data)
	})
	if err != nil {
		return err
	}
	s.sub = sub

	t.Go(func() error {
		s.pool.Run(t)
		return nil
	})
	return nil
}

func (s *OrderSubscriber) handleTask(_ *tomb.Tomb, task any) error {
	data, ok := task.([]byte)
	if !ok {
		return nil
	}

	var wire wireIncomingOrder
	if err := json.Unmarshal(data, &wire); err != nil {
		log.Warn().Err(err).Msg("dropping malformed order payload")
		return nil
	}

	order, err := fromWireOrder(wire)
	if err != nil {
		log.Warn().Err(err).Str("tx_id", wire.TxID).Msg("dropping order with invalid price/qty")
		return nil
	}

	if _, err := s.router.Submit(order); err != nil {
		log.Info().Err(err).Str("tx_id", order.TxID).Msg("order not applied")
	}
	return nil
}

func (s *OrderSubscriber) Stop() error {
	if s.sub == nil {
		return nil
	}
	return s.sub.Drain()
}
