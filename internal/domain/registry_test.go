package domain

import (
	"fmt"
	"math"
	"testing"
)

func TestRegistry_GeometricMeanIndex(t *testing.T) {
	stock1 := NewCommonStock("TS1", 5, 100)
	stock2 := NewCommonStock("TS2", 10, 100)
	stock3 := NewCommonStock("TS3", 15, 100)
	registry := NewRegistry(stock1, stock2, stock3)

	// no prices at all
	assertValue(t, "index without prices", registry.GeometricMeanIndex(), Unknown())

	stock1.LastPrice = 110
	stock2.LastPrice = 50

	// one stock still without a price
	assertValue(t, "index with a missing price", registry.GeometricMeanIndex(), Unknown())

	stock3.LastPrice = 10

	want := math.Pow(110*50*10, 1.0/3)
	assertValue(t, "index", registry.GeometricMeanIndex(), want)
}

func TestRegistry_GeometricMeanIndexEmpty(t *testing.T) {
	assertValue(t, "empty registry index", NewRegistry().GeometricMeanIndex(), Unknown())
	assertValue(t, "nil slice index", GeometricMeanIndex(nil), Unknown())
}

func TestRegistry_LookupLastMatchWins(t *testing.T) {
	first := NewCommonStock("DUP", 1, 100)
	other := NewCommonStock("ONE", 2, 100)
	last := NewPreferredStock("DUP", 3, 0.1, 100)
	registry := NewRegistry(first, other, last)

	if got := registry.Lookup("DUP"); got != last {
		t.Errorf("Lookup(DUP) = %p, want the last added %p", got, last)
	}
	if got := registry.Lookup("ONE"); got != other {
		t.Errorf("Lookup(ONE) = %p, want %p", got, other)
	}
	if got := registry.Lookup("one"); got != nil {
		t.Errorf("Lookup is case sensitive, got %v", got)
	}
	if got := registry.Lookup("NONE"); got != nil {
		t.Errorf("Lookup(NONE) = %v, want nil", got)
	}
}

func TestRegistry_AddRemoveAndOrder(t *testing.T) {
	registry := NewRegistry()
	symbols := []string{"TEA", "POP", "ALE", "POP"}
	for _, s := range symbols {
		registry.Add(NewCommonStock(s, 1, 100))
	}

	if registry.Len() != len(symbols) {
		t.Fatalf("Len() = %d, want %d", registry.Len(), len(symbols))
	}

	i := 0
	for stock := range registry.All() {
		if stock.Symbol != symbols[i] {
			t.Errorf("stock %d = %s, want %s", i, stock.Symbol, symbols[i])
		}
		i++
	}

	first := registry.Stocks()[1]
	if !registry.Remove("POP") {
		t.Fatal("Remove(POP) returned false")
	}
	if got := registry.Lookup("POP"); got != first {
		t.Errorf("after Remove, Lookup(POP) = %p, want the earlier %p", got, first)
	}
	if registry.Remove("XYZ") {
		t.Error("Remove(XYZ) returned true")
	}
	if registry.Len() != 3 {
		t.Errorf("Len() = %d, want 3", registry.Len())
	}
}

func TestGeometricMeanIndex_LargeCatalogue(t *testing.T) {
	stocks := make([]*Stock, 400)
	for i := range stocks {
		stocks[i] = NewCommonStock(fmt.Sprintf("S%03d", i), 1, 100)
		stocks[i].LastPrice = 1000
	}

	// the direct product would be 1e1200
	assertValue(t, "large catalogue index", GeometricMeanIndex(stocks), 1000)

	for _, s := range stocks {
		s.LastPrice = 1e-3
	}
	assertValue(t, "small prices index", GeometricMeanIndex(stocks), 1e-3)
}

func TestGeometricMeanIndex_ZeroAndNegativePrices(t *testing.T) {
	priced := func(prices ...float64) []*Stock {
		stocks := make([]*Stock, len(prices))
		for i, p := range prices {
			stocks[i] = NewCommonStock(fmt.Sprintf("S%d", i), 1, 100)
			stocks[i].LastPrice = p
		}
		return stocks
	}

	testCases := []struct {
		name   string
		stocks []*Stock
		want   float64
	}{
		{"zero price", priced(110, 0, 10), 0},
		{"zero with a missing price", priced(0, Unknown()), Unknown()},
		{"two negatives", priced(-10, -40), 20},
		{"one negative of two", priced(-10, 40), Unknown()},
		{"single negative", priced(-5), -5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assertValue(t, tc.name, GeometricMeanIndex(tc.stocks), tc.want)
		})
	}
}
