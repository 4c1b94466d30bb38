package domain

import (
	"iter"
	"math"
	"slices"
)

// Registry is the ordered set of stocks known to the process. Symbols are
// not required to be unique.
type Registry struct {
	stocks []*Stock
}

// NewRegistry creates a registry holding stocks in the given order.
func NewRegistry(stocks ...*Stock) *Registry {
	r := &Registry{stocks: make([]*Stock, 0, len(stocks))}
	for _, s := range stocks {
		r.Add(s)
	}
	return r
}

// Add appends s without checking for a duplicate symbol.
func (r *Registry) Add(s *Stock) {
	r.stocks = append(r.stocks, s)
}

// Lookup returns the stock with the given symbol, or nil. With duplicates
// the last one added wins.
func (r *Registry) Lookup(symbol string) *Stock {
	var found *Stock
	for _, s := range r.stocks {
		if s.Symbol == symbol {
			found = s
		}
	}
	return found
}

// Remove deletes the stock Lookup would return.
func (r *Registry) Remove(symbol string) bool {
	for i := len(r.stocks) - 1; i >= 0; i-- {
		if r.stocks[i].Symbol == symbol {
			r.stocks = slices.Delete(r.stocks, i, i+1)
			return true
		}
	}
	return false
}

func (r *Registry) Len() int {
	return len(r.stocks)
}

// All iterates over the stocks in insertion order.
func (r *Registry) All() iter.Seq[*Stock] {
	return slices.Values(r.stocks)
}

// Stocks returns the stocks in insertion order.
func (r *Registry) Stocks() []*Stock {
	return slices.Clone(r.stocks)
}

// GeometricMeanIndex is the all-share index of the registry.
func (r *Registry) GeometricMeanIndex() float64 {
	return GeometricMeanIndex(r.stocks)
}

// GeometricMeanIndex is the n-th root of the product of the last prices,
// computed as exp(mean(log p)) so large catalogues do not overflow. It is
// Unknown for an empty slice or as soon as one stock has no price.
//
// Zero and negative prices give what the direct product would: 0 for any
// zero price, the absolute mean for an even count of negatives and Unknown
// for an odd count unless the slice holds a single stock.
func GeometricMeanIndex(stocks []*Stock) float64 {
	if len(stocks) == 0 {
		return Unknown()
	}

	var (
		sum       float64
		negatives int
		zero      bool
	)
	for _, s := range stocks {
		if !s.HasLastPrice() {
			return Unknown()
		}
		switch {
		case s.LastPrice == 0:
			zero = true
		case s.LastPrice < 0:
			negatives++
			sum += math.Log(-s.LastPrice)
		default:
			sum += math.Log(s.LastPrice)
		}
	}

	n := float64(len(stocks))
	switch {
	case zero:
		return 0
	case negatives%2 == 0:
		return math.Exp(sum / n)
	case len(stocks) == 1:
		return stocks[0].LastPrice
	default:
		return Unknown()
	}
}
