package domain

import (
	"iter"
	"slices"
	"time"
)

// Ledger holds the trades of one stock, most recent first.
//
// The order is established at insertion time by Append. Trades are stored
// by value, so nothing returned by the ledger can disturb it.
type Ledger struct {
	trades []Trade
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{trades: make([]Trade, 0)}
}

// Append inserts t ahead of the first trade with a strictly older
// timestamp. Trades sharing a timestamp keep their insertion order.
func (l *Ledger) Append(t Trade) {
	l.trades = AppendOrdered(l.trades, t)
}

// AppendOrdered inserts t into trades, which must already be sorted by
// descending timestamp, and returns the extended slice.
func AppendOrdered(trades []Trade, t Trade) []Trade {
	i := 0
	for ; i < len(trades); i++ {
		if t.Timestamp.After(trades[i].Timestamp) {
			break
		}
	}
	return slices.Insert(trades, i, t)
}

// Len returns the number of recorded trades.
func (l *Ledger) Len() int {
	return len(l.trades)
}

// All iterates over the trades, most recent first.
func (l *Ledger) All() iter.Seq[Trade] {
	return slices.Values(l.trades)
}

// Trades returns a copy of the trades, most recent first.
func (l *Ledger) Trades() []Trade {
	return slices.Clone(l.trades)
}

// Latest returns the most recent trade.
func (l *Ledger) Latest() (Trade, bool) {
	if len(l.trades) == 0 {
		return Trade{}, false
	}
	return l.trades[0], true
}

// Remove deletes the first trade structurally equal to t.
func (l *Ledger) Remove(t Trade) bool {
	i := slices.IndexFunc(l.trades, t.Equal)
	if i < 0 {
		return false
	}
	l.trades = slices.Delete(l.trades, i, i+1)
	return true
}

// Clear drops every trade.
func (l *Ledger) Clear() {
	l.trades = l.trades[:0]
}

// VolumeWeightedPrice is the quantity weighted average price of the trades
// strictly newer than now-window. It is Unknown when no quantity falls in
// the window.
func (l *Ledger) VolumeWeightedPrice(window time.Duration, now time.Time) float64 {
	return VolumeWeightedPrice(l.trades, window, now)
}

// VolumeWeightedPrice computes sum(qty*price)/sum(qty) over the trades with
// a timestamp after now-window. The order of trades does not matter.
func VolumeWeightedPrice(trades []Trade, window time.Duration, now time.Time) float64 {
	limit := now.Add(-window)

	var num, den float64
	for _, t := range trades {
		if t.Timestamp.After(limit) {
			num += float64(t.Quantity) * t.Price
			den += float64(t.Quantity)
		}
	}

	if den <= 0 {
		return Unknown()
	}
	return num / den
}
