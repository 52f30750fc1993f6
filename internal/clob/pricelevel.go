package clob

import "github.com/shopspring/decimal"

// PriceLevel is a FIFO queue of resting orders at a single price. All
// orders at a level share the same signed PriceUSD (I2); the level is
// removed by the owning OrderBook as soon as it drains (I3).
type PriceLevel struct {
	Price  decimal.Decimal
	orders []*restingOrder
}

func newPriceLevel(price decimal.Decimal) *PriceLevel {
	return &PriceLevel{Price: price}
}

func (lvl *PriceLevel) push(o *restingOrder) {
	lvl.orders = append(lvl.orders, o)
}

// head returns the oldest resting order at this level without removing
// it (I5: strict FIFO by insertion order).
func (lvl *PriceLevel) head() *restingOrder {
	if len(lvl.orders) == 0 {
		return nil
	}
	return lvl.orders[0]
}

// popHead removes the oldest order once fully consumed.
func (lvl *PriceLevel) popHead() {
	if len(lvl.orders) == 0 {
		return
	}
	lvl.orders = lvl.orders[1:]
}

// remove deletes the order with the given tx_id from anywhere in the
// level's queue (used by cancel), preserving FIFO order of the rest.
func (lvl *PriceLevel) remove(txID string) bool {
	for i, o := range lvl.orders {
		if o.order.TxID == txID {
			lvl.orders = append(lvl.orders[:i], lvl.orders[i+1:]...)
			return true
		}
	}
	return false
}

func (lvl *PriceLevel) isEmpty() bool {
	return len(lvl.orders) == 0
}

func (lvl *PriceLevel) size() int {
	return len(lvl.orders)
}
