package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jeovahfialho/sssm/internal/domain"
	"github.com/jeovahfialho/sssm/pkg/logger"
	"github.com/jeovahfialho/sssm/pkg/metrics"
	"go.uber.org/zap"
)

var (
	ErrStockNotFound = errors.New("stock not found")
	ErrInvalidPrice  = errors.New("invalid price")
	ErrInvalidTrade  = errors.New("invalid trade")
)

// MarketService is the operation surface used by the console and the
// importer. It owns one registry and is not safe for concurrent use.
type MarketService struct {
	registry *domain.Registry
	window   time.Duration
	now      func() time.Time
}

func NewMarketService(registry *domain.Registry, window time.Duration) *MarketService {
	if registry == nil {
		registry = domain.NewRegistry()
	}
	return &MarketService{
		registry: registry,
		window:   window,
		now:      time.Now,
	}
}

// SetClock replaces the reference "now" of the volume weighted price.
func (s *MarketService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *MarketService) Now() time.Time {
	return s.now()
}

func (s *MarketService) Window() time.Duration {
	return s.window
}

func (s *MarketService) Registry() *domain.Registry {
	return s.registry
}

// NormalizeSymbol is the form in which symbols are stored and looked up.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// AddStock registers stock under its normalized symbol.
func (s *MarketService) AddStock(stock *domain.Stock) {
	stock.Symbol = NormalizeSymbol(stock.Symbol)
	s.registry.Add(stock)

	logger.Info("stock added",
		zap.String("symbol", stock.Symbol),
		zap.Stringer("kind", stock.Kind))
}

func (s *MarketService) Stocks() []*domain.Stock {
	return s.registry.Stocks()
}

func (s *MarketService) Stock(symbol string) (*domain.Stock, error) {
	stock := s.registry.Lookup(NormalizeSymbol(symbol))
	if stock == nil {
		return nil, fmt.Errorf("%w: %s", ErrStockNotFound, symbol)
	}
	return stock, nil
}

// DividendYield is computed at price, or at the last price when price is nil.
func (s *MarketService) DividendYield(symbol string, price *float64) (float64, error) {
	stock, err := s.Stock(symbol)
	if err != nil {
		return domain.Unknown(), err
	}

	var value float64
	if price == nil {
		value = stock.CurrentDividendYield()
	} else {
		value = stock.DividendYield(*price)
	}

	s.observe("dividend_yield", stock.Symbol, value)
	return value, nil
}

// PERatio is computed at price, or at the last price when price is nil.
func (s *MarketService) PERatio(symbol string, price *float64) (float64, error) {
	stock, err := s.Stock(symbol)
	if err != nil {
		return domain.Unknown(), err
	}

	var value float64
	if price == nil {
		value = stock.CurrentPERatio()
	} else {
		value = stock.PERatio(*price)
	}

	s.observe("pe_ratio", stock.Symbol, value)
	return value, nil
}

// SetLastPrice rejects negative prices; the last price is either a
// non-negative value or Unknown.
func (s *MarketService) SetLastPrice(symbol string, price float64) error {
	stock, err := s.Stock(symbol)
	if err != nil {
		return err
	}
	return setLastPrice(stock, price)
}

func setLastPrice(stock *domain.Stock, price float64) error {
	if price < 0 {
		return fmt.Errorf("%w: %v for %s", ErrInvalidPrice, price, stock.Symbol)
	}

	stock.LastPrice = price

	logger.Info("last price set",
		zap.String("symbol", stock.Symbol),
		zap.Float64("price", price))
	return nil
}

// MarkToLatestTrades sets the last price of every stock that has trades to
// the price of its most recent one. Stocks whose latest trade carries an
// invalid price keep their last price. It returns the number of stocks
// updated.
func (s *MarketService) MarkToLatestTrades() int {
	updated := 0
	for stock := range s.registry.All() {
		latest, ok := stock.Trades().Latest()
		if !ok {
			continue
		}
		if err := setLastPrice(stock, latest.Price); err != nil {
			logger.Warn("last price not updated",
				zap.String("symbol", stock.Symbol),
				zap.Error(err))
			continue
		}
		updated++
	}
	return updated
}

func (s *MarketService) RecordTrade(symbol string, trade domain.Trade) error {
	stock, err := s.Stock(symbol)
	if err != nil {
		return err
	}
	if !trade.Direction.Valid() {
		return fmt.Errorf("%w: direction %d", ErrInvalidTrade, trade.Direction)
	}

	stock.Trades().Append(trade)
	metrics.RecordTrade(trade.Direction.String())

	logger.Info("trade recorded",
		zap.String("symbol", stock.Symbol),
		zap.Time("timestamp", trade.Timestamp),
		zap.Stringer("direction", trade.Direction),
		zap.Int64("quantity", trade.Quantity),
		zap.Float64("price", trade.Price))
	return nil
}

// Trades returns the ledger of symbol, most recent first.
func (s *MarketService) Trades(symbol string) ([]domain.Trade, error) {
	stock, err := s.Stock(symbol)
	if err != nil {
		return nil, err
	}
	return stock.Trades().Trades(), nil
}

// VolumeWeightedPrice uses the configured window ending at the clock's now.
func (s *MarketService) VolumeWeightedPrice(symbol string) (float64, error) {
	stock, err := s.Stock(symbol)
	if err != nil {
		return domain.Unknown(), err
	}

	value := stock.Trades().VolumeWeightedPrice(s.window, s.now())
	s.observe("volume_weighted_price", stock.Symbol, value)
	return value, nil
}

// AllShareIndex is the geometric mean of the last prices of every stock.
func (s *MarketService) AllShareIndex() float64 {
	value := s.registry.GeometricMeanIndex()
	metrics.RecordAllShareIndex(value)

	if domain.IsUnknown(value) {
		logger.Debug("all share index unknown", zap.Int("stocks", s.registry.Len()))
	}
	return value
}

func (s *MarketService) observe(metric, symbol string, value float64) {
	metrics.RecordCalculation(metric, value)

	if domain.IsUnknown(value) {
		logger.Debug("calculation has no value",
			zap.String("metric", metric),
			zap.String("symbol", symbol))
	}
}
