package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jeovahfialho/sssm/internal/domain"
	"github.com/jeovahfialho/sssm/internal/ingestion"
	"github.com/jeovahfialho/sssm/internal/service"
	"github.com/jeovahfialho/sssm/pkg/logger"
	"github.com/jeovahfialho/sssm/pkg/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TimestampLayout is how trade timestamps are shown.
const TimestampLayout = "2006-01-02 15:04:05"

var ErrUnknownKind = errors.New("unknown stock kind")

// Menu is the interactive loop over a MarketService.
type Menu struct {
	svc *service.MarketService
	in  *bufio.Scanner
	out io.Writer
}

func NewMenu(svc *service.MarketService, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		svc: svc,
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// Run reads choices until q or the end of the input.
func (m *Menu) Run() error {
	for {
		m.printChoices()

		choice, ok := m.readLine()
		if !ok {
			return m.in.Err()
		}

		var err error
		switch strings.ToLower(choice) {
		case "0":
			err = PrintStocks(m.out, m.svc.Stocks())
		case "1":
			m.dividendYield()
		case "2":
			m.peRatio()
		case "3":
			m.recordTrade()
		case "4":
			m.allShareIndex()
		case "5":
			m.showTrades()
		case "6":
			m.setLastPrice()
		case "7":
			m.addStock()
		case "m":
			err = metrics.WriteText(m.out)
		case "q":
			return nil
		default:
			m.println("Invalid choice!")
		}

		if err != nil {
			logger.Error("menu action failed", zap.String("choice", choice), zap.Error(err))
			m.printf("Error: %v\n", err)
		}
	}
}

func (m *Menu) printChoices() {
	m.println("Choices:")
	m.println("0 - Display Stock List")
	m.println("1 - Calculate Yield")
	m.println("2 - Calculate P/E")
	m.println("3 - Record a Trade")
	m.println("4 - Calculate All Share Index")
	m.printf("5 - Show trades on a Stock (and Volume Weighted Price within last %s)\n", m.svc.Window())
	m.println("6 - Set Last Price for a Stock")
	m.println("7 - Add a Stock")
	m.println("m - Show metrics")
	m.println("q - Quit")
	fmt.Fprint(m.out, ">")
}

func (m *Menu) dividendYield() {
	stock, ok := m.askStock("Calculate Yield of which Symbol ?")
	if !ok {
		return
	}
	price, ok := m.askOptionalPrice()
	if !ok {
		return
	}

	value, err := m.svc.DividendYield(stock.Symbol, price)
	if err != nil {
		m.println("Symbol not found!")
		return
	}
	m.printf("Symbol: %3s\tYield:%s\n", stock.Symbol, FormatValue(value))
}

func (m *Menu) peRatio() {
	stock, ok := m.askStock("Calculate PE of which Symbol ?")
	if !ok {
		return
	}
	price, ok := m.askOptionalPrice()
	if !ok {
		return
	}

	value, err := m.svc.PERatio(stock.Symbol, price)
	if err != nil {
		m.println("Symbol not found!")
		return
	}
	m.printf("Symbol: %3s\tP/E:%s\n", stock.Symbol, FormatValue(value))
}

func (m *Menu) setLastPrice() {
	stock, ok := m.askStock("Set Last Price related to which Symbol ?")
	if !ok {
		return
	}

	m.println("Insert last Price:")
	input, _ := m.readLine()
	price, err := ingestion.ParseNumber(input)
	if err != nil {
		m.println("Invalid numeric value")
		return
	}

	err = m.svc.SetLastPrice(stock.Symbol, price)
	switch {
	case errors.Is(err, service.ErrInvalidPrice):
		m.println("Invalid numeric value")
	case err != nil:
		m.println("Symbol not found!")
	}
}

func (m *Menu) addStock() {
	m.println("Symbol of the new stock ?")
	symbol, _ := m.readLine()
	symbol = service.NormalizeSymbol(symbol)
	if symbol == "" {
		m.println("Invalid symbol!")
		return
	}

	m.println("C - Common or P - Preferred ?")
	input, _ := m.readLine()
	kind, err := domain.ParseKind(input)
	if err != nil {
		m.println("Invalid stock type!")
		return
	}

	m.println("Last dividend ?")
	lastDividend, ok := m.askNonNegative()
	if !ok {
		return
	}

	var fixedDividend float64
	if kind == domain.Preferred {
		m.println("Fixed dividend (percent) ?")
		percent, ok := m.askNonNegative()
		if !ok {
			return
		}
		fixedDividend = percent / 100
	}

	m.println("Par value ?")
	parValue, ok := m.askNonNegative()
	if !ok {
		return
	}

	var stock *domain.Stock
	switch kind {
	case domain.Preferred:
		stock = domain.NewPreferredStock(symbol, lastDividend, fixedDividend, parValue)
	default:
		stock = domain.NewCommonStock(symbol, lastDividend, parValue)
	}
	m.svc.AddStock(stock)
	m.printf("Stock %s added\n", symbol)
}

// askNonNegative reads a number that must not be negative.
func (m *Menu) askNonNegative() (float64, bool) {
	input, _ := m.readLine()
	v, err := ingestion.ParseNumber(input)
	if err != nil || v < 0 {
		m.println("Invalid numeric value")
		return 0, false
	}
	return v, true
}

func (m *Menu) recordTrade() {
	stock, ok := m.askStock("Record a trade related to which Symbol ?")
	if !ok {
		return
	}

	m.println("Related to which date/time ? (empty or \"now\" for the current time)")
	input, _ := m.readLine()
	timestamp := m.svc.Now()
	if input != "" && !strings.EqualFold(input, "now") {
		var err error
		timestamp, err = ingestion.ParseTimestampInLocation(input, time.Local)
		if err != nil {
			m.println("Invalid date/time")
			return
		}
	}

	m.println("B - Buy or S - Sell ?")
	input, _ = m.readLine()
	direction, err := domain.ParseDirection(input)
	if err != nil {
		m.println("Invalid Operation!")
		return
	}

	m.println("Quantity ?")
	input, _ = m.readLine()
	quantity, err := strconv.ParseInt(input, 10, 64)
	if err != nil {
		m.println("Invalid Quantity!")
		return
	}

	m.println("Price (in pennies) ?")
	input, _ = m.readLine()
	price, err := ingestion.ParseNumber(input)
	if err != nil {
		m.println("Invalid price!")
		return
	}

	trade := domain.NewTrade(timestamp, quantity, direction, price)
	m.printTrade(trade)
	m.printf("Add to Stock %s ? (Y to confirm or any other input to cancel)\n", stock.Symbol)
	input, _ = m.readLine()
	if !strings.EqualFold(input, "y") {
		m.println("Operation cancelled!")
		return
	}

	if err := m.svc.RecordTrade(stock.Symbol, trade); err != nil {
		m.println("Symbol not found!")
	}
}

func (m *Menu) showTrades() {
	stock, ok := m.askStock("Show trades related to which Symbol ?")
	if !ok {
		return
	}

	trades, err := m.svc.Trades(stock.Symbol)
	if err != nil {
		m.println("Symbol not found!")
		return
	}

	if len(trades) == 0 {
		m.println("No trades recorded!")
	} else {
		m.printf("%20s\tB/S\tQty\tPrice\n", "Timestamp")
		for _, trade := range trades {
			m.printTrade(trade)
		}
	}

	vwp, _ := m.svc.VolumeWeightedPrice(stock.Symbol)
	m.printf("Last %s Volume Weighted Price: %s\n", m.svc.Window(), FormatValue(vwp))
}

func (m *Menu) allShareIndex() {
	index := m.svc.AllShareIndex()
	if domain.IsUnknown(index) {
		m.println("Some stocks don't have last price!")
		return
	}
	m.printf("AllShare Index, based on last prices, is %s\n", FormatValue(index))
}

// askStock prompts for a symbol and resolves it.
func (m *Menu) askStock(prompt string) (*domain.Stock, bool) {
	m.println(prompt)
	symbol, _ := m.readLine()

	stock, err := m.svc.Stock(symbol)
	if err != nil {
		m.println("Symbol not found!")
		return nil, false
	}
	return stock, true
}

// askOptionalPrice returns nil for an empty answer, meaning the last price.
func (m *Menu) askOptionalPrice() (*float64, bool) {
	m.println("At which price ? (or leave empty to use stock last price)")
	input, _ := m.readLine()
	if input == "" {
		return nil, true
	}

	price, err := ingestion.ParseNumber(input)
	if err != nil {
		m.println("Invalid number!")
		return nil, false
	}
	return &price, true
}

func (m *Menu) printTrade(trade domain.Trade) {
	m.printf("%20s\t%s\t%d\t%s\n",
		trade.Timestamp.Format(TimestampLayout), trade.Direction, trade.Quantity, FormatValue(trade.Price))
}

func (m *Menu) readLine() (string, bool) {
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) println(s string) {
	fmt.Fprintln(m.out, s)
}

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}

// PrintStocks writes the stock table. It fails on a stock of unknown kind.
func PrintStocks(w io.Writer, stocks []*domain.Stock) error {
	fmt.Fprintln(w, "Stock in memory:")

	tw := tabwriter.NewWriter(w, 0, 8, 1, ' ', 0)
	fmt.Fprintln(tw, "Symbol\tType\tL. Div\tF. Div\tPar V.\tPrice\tTrades")

	for _, stock := range stocks {
		var fixed string
		switch stock.Kind {
		case domain.Common:
			fixed = "-"
		case domain.Preferred:
			fixed = FormatValue(stock.FixedDividend*100) + "%"
		default:
			tw.Flush()
			return fmt.Errorf("%w: %s", ErrUnknownKind, stock.Symbol)
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			stock.Symbol,
			stock.Kind,
			FormatValue(stock.LastDividend),
			fixed,
			FormatValue(stock.ParValue),
			FormatValue(stock.LastPrice),
			stock.Trades().Len())
	}

	return tw.Flush()
}

// FormatValue renders v with two decimals, or "unknown" for the sentinel.
func FormatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "unknown"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}
