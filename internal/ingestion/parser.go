package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jeovahfialho/sssm/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrInvalidRecord = errors.New("invalid trade record")

// TimestampLayouts are tried in order when reading a trade timestamp.
var TimestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Record is one parsed line: a trade and the symbol it belongs to.
type Record struct {
	Line   int
	Symbol string
	Trade  domain.Trade
}

type ParseResult struct {
	Records []Record
	Errors  []error
}

// Parser reads semicolon separated trade files with a header line:
//
//	Symbol;Timestamp;Direction;Quantity;Price
type Parser struct {
	batchSize int
	workers   int
}

func NewParser(batchSize, workers int) *Parser {
	if batchSize <= 0 {
		batchSize = 1
	}
	if workers <= 0 {
		workers = 1
	}
	return &Parser{
		batchSize: batchSize,
		workers:   workers,
	}
}

type line struct {
	number int
	fields []string
}

// ParseFile parses reader with a pool of workers. Records come back in no
// particular order; each one carries its line number.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) (*ParseResult, error) {
	csvReader := csv.NewReader(reader)
	csvReader.Comma = ';'
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true

	if _, err := csvReader.Read(); err != nil {
		if err == io.EOF {
			return &ParseResult{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	jobs := make(chan line, p.workers*2)
	results := make(chan *ParseResult, p.workers)
	readErrs := make([]error, 0)
	readerDone := make(chan struct{})

	var wg sync.WaitGroup

	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go p.worker(ctx, jobs, results, &wg)
	}

	go func() {
		defer close(readerDone)
		defer close(jobs)

		number := 1
		for {
			if ctx.Err() != nil {
				return
			}
			record, err := csvReader.Read()
			if err == io.EOF {
				return
			}
			number++
			if err != nil {
				var parseErr *csv.ParseError
				if !errors.As(err, &parseErr) {
					readErrs = append(readErrs, fmt.Errorf("read line %d: %w", number, err))
					return
				}
				readErrs = append(readErrs, fmt.Errorf("%w: line %d: %v", ErrInvalidRecord, number, err))
				continue
			}
			select {
			case jobs <- line{number: number, fields: record}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	finalResult := &ParseResult{
		Records: make([]Record, 0, p.batchSize),
		Errors:  make([]error, 0),
	}

	for result := range results {
		finalResult.Records = append(finalResult.Records, result.Records...)
		finalResult.Errors = append(finalResult.Errors, result.Errors...)
	}
	<-readerDone
	finalResult.Errors = append(finalResult.Errors, readErrs...)

	if err := ctx.Err(); err != nil {
		return finalResult, err
	}
	return finalResult, nil
}

func (p *Parser) worker(ctx context.Context, jobs <-chan line,
	results chan<- *ParseResult, wg *sync.WaitGroup) {

	defer wg.Done()

	batch := &ParseResult{
		Records: make([]Record, 0, p.batchSize),
	}

	for {
		select {
		case <-ctx.Done():
			if len(batch.Records) > 0 || len(batch.Errors) > 0 {
				results <- batch
			}
			return

		case job, ok := <-jobs:
			if !ok {
				if len(batch.Records) > 0 || len(batch.Errors) > 0 {
					results <- batch
				}
				return
			}

			record, err := ParseRecord(job.fields)
			if err != nil {
				batch.Errors = append(batch.Errors, fmt.Errorf("line %d: %w", job.number, err))
				continue
			}
			record.Line = job.number

			batch.Records = append(batch.Records, *record)

			if len(batch.Records) >= p.batchSize {
				results <- batch
				batch = &ParseResult{
					Records: make([]Record, 0, p.batchSize),
				}
			}
		}
	}
}

// ParseRecord converts the fields of one line into a Record.
func ParseRecord(fields []string) (*Record, error) {
	if len(fields) < 5 {
		return nil, fmt.Errorf("%w: expected 5 fields, got %d", ErrInvalidRecord, len(fields))
	}

	symbol := strings.ToUpper(strings.TrimSpace(fields[0]))
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", ErrInvalidRecord)
	}

	timestamp, err := ParseTimestamp(fields[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	direction, err := domain.ParseDirection(fields[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	quantity, err := strconv.ParseInt(strings.TrimSpace(fields[3]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid quantity: %v", ErrInvalidRecord, err)
	}

	price, err := ParseNumber(fields[4])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid price: %v", ErrInvalidRecord, err)
	}

	return &Record{
		Symbol: symbol,
		Trade:  domain.NewTrade(timestamp, quantity, direction, price),
	}, nil
}

// ParseTimestamp tries each of TimestampLayouts, in UTC when no zone is given.
func ParseTimestamp(s string) (time.Time, error) {
	return ParseTimestampInLocation(s, time.UTC)
}

// ParseTimestampInLocation is ParseTimestamp with loc used for timestamps
// that carry no zone.
func ParseTimestampInLocation(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range TimestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp: %q", s)
}

// ParseNumber reads a decimal number written with either '.' or ','.
func ParseNumber(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.Replace(strings.TrimSpace(s), ",", ".", -1))
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}
