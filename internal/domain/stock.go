package domain

import (
	"fmt"
	"strings"
)

// Kind is the closed set of stock variants.
type Kind int

const (
	Common Kind = iota
	Preferred
)

func (k Kind) String() string {
	switch k {
	case Common:
		return "Common"
	case Preferred:
		return "Preferred"
	default:
		return "Unknown"
	}
}

func (k Kind) Valid() bool {
	return k == Common || k == Preferred
}

// ParseKind accepts common/ordinary and preferred in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c", "common", "ordinary":
		return Common, nil
	case "p", "preferred":
		return Preferred, nil
	default:
		return 0, fmt.Errorf("invalid stock kind: %q", s)
	}
}

// Stock is a tradable instrument. FixedDividend is only meaningful for
// Preferred stocks and is a ratio (0.02 is 2%).
//
// LastPrice starts Unknown and is only changed by callers. Symbol is stored
// as given; normalising case is up to the caller.
type Stock struct {
	Symbol        string
	Kind          Kind
	LastDividend  float64
	FixedDividend float64
	ParValue      float64
	LastPrice     float64

	trades *Ledger
}

// NewCommonStock creates a common stock with no known price.
func NewCommonStock(symbol string, lastDividend, parValue float64) *Stock {
	return &Stock{
		Symbol:       symbol,
		Kind:         Common,
		LastDividend: lastDividend,
		ParValue:     parValue,
		LastPrice:    Unknown(),
		trades:       NewLedger(),
	}
}

// NewPreferredStock creates a preferred stock with no known price.
func NewPreferredStock(symbol string, lastDividend, fixedDividend, parValue float64) *Stock {
	return &Stock{
		Symbol:        symbol,
		Kind:          Preferred,
		LastDividend:  lastDividend,
		FixedDividend: fixedDividend,
		ParValue:      parValue,
		LastPrice:     Unknown(),
		trades:        NewLedger(),
	}
}

// Trades returns the ledger owned by the stock.
func (s *Stock) Trades() *Ledger {
	if s.trades == nil {
		s.trades = NewLedger()
	}
	return s.trades
}

// HasLastPrice reports whether a last price has been set.
func (s *Stock) HasLastPrice() bool {
	return !IsUnknown(s.LastPrice)
}

// DividendYield is the yield at price. Price must be strictly positive.
//
//	Common:    LastDividend / price
//	Preferred: FixedDividend * ParValue / price
func (s *Stock) DividendYield(price float64) float64 {
	switch s.Kind {
	case Common:
		if price <= 0 || s.LastDividend < 0 {
			return Unknown()
		}
		return s.LastDividend / price
	case Preferred:
		if price <= 0 || s.FixedDividend < 0 || s.ParValue < 0 {
			return Unknown()
		}
		return s.FixedDividend * s.ParValue / price
	default:
		return Unknown()
	}
}

// CurrentDividendYield is DividendYield at LastPrice.
func (s *Stock) CurrentDividendYield() float64 {
	return s.DividendYield(s.LastPrice)
}

// PERatio is price / LastDividend for both kinds. Unlike DividendYield a
// zero price is accepted and gives 0.
// TODO: confirm whether preferred stocks should use the fixed dividend here.
func (s *Stock) PERatio(price float64) float64 {
	if !s.Kind.Valid() {
		return Unknown()
	}
	if s.LastDividend <= 0 || price < 0 {
		return Unknown()
	}
	return price / s.LastDividend
}

// CurrentPERatio is PERatio at LastPrice.
func (s *Stock) CurrentPERatio() float64 {
	return s.PERatio(s.LastPrice)
}
