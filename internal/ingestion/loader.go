package ingestion

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jeovahfialho/sssm/internal/domain"
	"github.com/jeovahfialho/sssm/pkg/metrics"
)

// TradeRecorder appends a trade to the ledger of symbol.
type TradeRecorder interface {
	RecordTrade(symbol string, trade domain.Trade) error
}

// Loader applies parsed records to a recorder. Ledgers are not safe for
// concurrent appends, so every Load holds the same lock.
type Loader struct {
	mu       sync.Mutex
	recorder TradeRecorder
}

func NewLoader(recorder TradeRecorder) *Loader {
	return &Loader{recorder: recorder}
}

// Load records the trades in line order so trades sharing a timestamp keep
// their file order. It stops early only when ctx is done.
func (l *Loader) Load(ctx context.Context, records []Record) (int64, []error) {
	ordered := make([]Record, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Line < ordered[j].Line
	})

	l.mu.Lock()
	defer l.mu.Unlock()

	var count int64
	var errs []error

	for _, record := range ordered {
		if err := ctx.Err(); err != nil {
			return count, append(errs, err)
		}

		if err := l.recorder.RecordTrade(record.Symbol, record.Trade); err != nil {
			metrics.RecordTradeImported("error")
			errs = append(errs, fmt.Errorf("line %d: %w", record.Line, err))
			continue
		}

		metrics.RecordTradeImported("success")
		count++
	}

	return count, errs
}
