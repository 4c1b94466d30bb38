package domain

import (
	"fmt"
	"strings"
	"time"
)

// Direction tells whether a trade bought or sold the stock.
type Direction int

const (
	Buy Direction = iota
	Sell
)

func (d Direction) String() string {
	switch d {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	default:
		return "Unknown"
	}
}

func (d Direction) Valid() bool {
	return d == Buy || d == Sell
}

// ParseDirection accepts B, BUY, S or SELL in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "B", "BUY":
		return Buy, nil
	case "S", "SELL":
		return Sell, nil
	default:
		return 0, fmt.Errorf("invalid trade direction: %q", s)
	}
}

// Trade is a single buy or sell event. Price is in pennies.
type Trade struct {
	Timestamp time.Time `json:"timestamp"`
	Quantity  int64     `json:"quantity"`
	Direction Direction `json:"direction"`
	Price     float64   `json:"price"`
}

func NewTrade(timestamp time.Time, quantity int64, direction Direction, price float64) Trade {
	return Trade{
		Timestamp: timestamp,
		Quantity:  quantity,
		Direction: direction,
		Price:     price,
	}
}

// Equal reports structural equality. Timestamps are compared as instants.
func (t Trade) Equal(other Trade) bool {
	return t.Timestamp.Equal(other.Timestamp) &&
		t.Quantity == other.Quantity &&
		t.Direction == other.Direction &&
		t.Price == other.Price
}
