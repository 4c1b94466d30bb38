package console

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/jeovahfialho/sssm/internal/domain"
	"github.com/jeovahfialho/sssm/internal/service"
)

var testNow = time.Date(2015, 10, 1, 12, 0, 0, 0, time.UTC)

func runMenu(t *testing.T, svc *service.MarketService, lines ...string) string {
	t.Helper()

	if svc == nil {
		svc = service.NewMarketService(domain.NewRegistry(service.DefaultCatalogue()...), 15*time.Minute)
		svc.SetClock(func() time.Time { return testNow })
	}

	var out bytes.Buffer
	menu := NewMenu(svc, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	if err := menu.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return out.String()
}

func TestMenu_Scenarios(t *testing.T) {
	testCases := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "list stocks",
			input: []string{"0", "q"},
			want:  []string{"Stock in memory:", "GIN", "Preferred", "2.00%", "unknown"},
		},
		{
			name:  "yield at last price",
			input: []string{"6", "pop", "80", "1", "POP", "", "q"},
			want:  []string{"Symbol: POP\tYield:0.10"},
		},
		{
			name:  "yield at explicit price with comma",
			input: []string{"1", "gin", "50,0", "q"},
			want:  []string{"Symbol: GIN\tYield:0.04"},
		},
		{
			name:  "P/E without last price",
			input: []string{"2", "ALE", "", "q"},
			want:  []string{"Symbol: ALE\tP/E:unknown"},
		},
		{
			name:  "unknown symbol",
			input: []string{"1", "XYZ", "q"},
			want:  []string{"Symbol not found!"},
		},
		{
			name:  "invalid price",
			input: []string{"2", "TEA", "ten", "q"},
			want:  []string{"Invalid number!"},
		},
		{
			name: "record trade and show volume weighted price",
			input: []string{
				"3", "joe", "2015-10-01T11:55:00Z", "B", "10", "100", "Y",
				"3", "JOE", "now", "s", "10", "50", "y",
				"5", "JOE", "q",
			},
			want: []string{
				"2015-10-01 11:55:00\tBuy\t10\t100.00",
				"2015-10-01 12:00:00\tSell\t10\t50.00",
				"Last 15m0s Volume Weighted Price: 75.00",
			},
		},
		{
			name:  "cancelled trade",
			input: []string{"3", "TEA", "now", "B", "1", "1", "n", "5", "TEA", "q"},
			want:  []string{"Operation cancelled!", "No trades recorded!", "Volume Weighted Price: unknown"},
		},
		{
			name:  "invalid direction",
			input: []string{"3", "TEA", "now", "X", "q"},
			want:  []string{"Invalid Operation!"},
		},
		{
			name:  "invalid quantity",
			input: []string{"3", "TEA", "now", "B", "1.5", "q"},
			want:  []string{"Invalid Quantity!"},
		},
		{
			name:  "negative last price is rejected",
			input: []string{"6", "POP", "-10", "1", "POP", "", "q"},
			want:  []string{"Invalid numeric value", "Symbol: POP\tYield:unknown"},
		},
		{
			name: "add preferred stock",
			input: []string{
				"7", "zzz", "P", "5", "3", "200",
				"1", "ZZZ", "100", "0", "q",
			},
			want: []string{"Stock ZZZ added", "Symbol: ZZZ\tYield:0.06", "3.00%"},
		},
		{
			name:  "add common stock",
			input: []string{"7", "new", "common", "2", "50", "2", "NEW", "4", "q"},
			want:  []string{"Stock NEW added", "Symbol: NEW\tP/E:2.00"},
		},
		{
			name:  "add stock with unknown type",
			input: []string{"7", "BAD", "X", "1", "NOPE", "q"},
			want:  []string{"Invalid stock type!", "Symbol not found!"},
		},
		{
			name:  "add stock with negative par value",
			input: []string{"7", "BAD", "C", "1", "-5", "q"},
			want:  []string{"Invalid numeric value"},
		},
		{
			name:  "index without prices",
			input: []string{"4", "q"},
			want:  []string{"Some stocks don't have last price!"},
		},
		{
			name:  "invalid choice",
			input: []string{"9", "Q"},
			want:  []string{"Invalid choice!"},
		},
		{
			name:  "metrics",
			input: []string{"m", "q"},
			want:  []string{"sssm_all_share_index"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := runMenu(t, nil, tc.input...)
			for _, want := range tc.want {
				if !strings.Contains(out, want) {
					t.Errorf("output does not contain %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestMenu_AllShareIndex(t *testing.T) {
	svc := service.NewMarketService(domain.NewRegistry(
		domain.NewCommonStock("AAA", 1, 100),
		domain.NewCommonStock("BBB", 1, 100),
	), time.Minute)

	out := runMenu(t, svc, "6", "aaa", "4", "6", "bbb", "9", "4", "q")
	if !strings.Contains(out, "AllShare Index, based on last prices, is 6.00") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestMenu_EndOfInputStops(t *testing.T) {
	out := runMenu(t, nil, "0")
	if !strings.Contains(out, "TEA") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestPrintStocks_UnknownKind(t *testing.T) {
	stock := domain.NewCommonStock("BAD", 1, 1)
	stock.Kind = domain.Kind(7)

	var out bytes.Buffer
	err := PrintStocks(&out, []*domain.Stock{domain.NewCommonStock("OK", 1, 1), stock})
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("PrintStocks() error = %v, want ErrUnknownKind", err)
	}
}

func TestFormatValue(t *testing.T) {
	testCases := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{0.1, "0.10"},
		{75, "75.00"},
		{2.345, "2.35"},
		{domain.Unknown(), "unknown"},
		{math.Inf(1), "unknown"},
	}

	for _, tc := range testCases {
		if got := FormatValue(tc.in); got != tc.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
