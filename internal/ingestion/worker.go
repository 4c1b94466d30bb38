package ingestion

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jeovahfialho/sssm/pkg/logger"
	"github.com/jeovahfialho/sssm/pkg/metrics"
	"go.uber.org/zap"
)

// WorkerPool imports trade files. Files are parsed concurrently; loading
// happens afterwards, one file at a time in the order they were given.
type WorkerPool struct {
	workers  int
	parser   *Parser
	loader   *Loader
	jobQueue chan Job
	wg       sync.WaitGroup
}

type Job struct {
	Index    int
	FilePath string
	Result   chan<- JobResult
}

type JobResult struct {
	FilePath     string
	RecordsCount int64
	Errors       []error
	Error        error

	index   int
	records []Record
}

func NewWorkerPool(workers int, parser *Parser, loader *Loader) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	return &WorkerPool{
		workers:  workers,
		parser:   parser,
		loader:   loader,
		jobQueue: make(chan Job, workers*2),
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
}

func (wp *WorkerPool) Submit(job Job) {
	wp.jobQueue <- job
}

// ImportFiles parses every file through the pool, then loads them in the
// order of files so trades sharing a timestamp end up in the same order on
// every run. Results follow the order of files. A pool runs a single import.
func (wp *WorkerPool) ImportFiles(ctx context.Context, files []string) []JobResult {
	results := make(chan JobResult, len(files))

	wp.Start(ctx)
	go func() {
		for i, file := range files {
			wp.Submit(Job{Index: i, FilePath: file, Result: results})
		}
		wp.Stop()
		close(results)
	}()

	parsed := make([]JobResult, len(files))
	for result := range results {
		parsed[result.index] = result
	}

	for i := range parsed {
		wp.loadFile(ctx, &parsed[i])
	}
	return parsed
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		if ctx.Err() != nil {
			job.Result <- JobResult{FilePath: job.FilePath, Error: ctx.Err(), index: job.Index}
			continue
		}

		logger.Debug("parsing file",
			zap.Int("worker", id),
			zap.String("file", job.FilePath))

		result := wp.parseFile(ctx, job.FilePath)
		result.index = job.Index
		job.Result <- result
	}
}

func (wp *WorkerPool) parseFile(ctx context.Context, filePath string) JobResult {
	file, err := os.Open(filePath)
	if err != nil {
		return JobResult{
			FilePath: filePath,
			Error:    fmt.Errorf("open file: %w", err),
		}
	}
	defer file.Close()

	parseTimer := metrics.NewTimer()
	parseResult, err := wp.parser.ParseFile(ctx, file)
	parseTimer.ObserveDuration(metrics.ImportDuration.WithLabelValues("parse"))
	if err != nil {
		return JobResult{
			FilePath: filePath,
			Error:    fmt.Errorf("parse: %w", err),
		}
	}
	for range parseResult.Errors {
		metrics.RecordTradeImported("invalid")
	}

	return JobResult{
		FilePath: filePath,
		Errors:   parseResult.Errors,
		records:  parseResult.Records,
	}
}

func (wp *WorkerPool) loadFile(ctx context.Context, result *JobResult) {
	if result.Error != nil {
		logger.Warn("file not imported",
			zap.String("file", result.FilePath),
			zap.Error(result.Error))
		return
	}

	loadTimer := metrics.NewTimer()
	count, loadErrs := wp.loader.Load(ctx, result.records)
	loadTimer.ObserveDuration(metrics.ImportDuration.WithLabelValues("load"))

	result.RecordsCount = count
	result.Errors = append(result.Errors, loadErrs...)
	result.records = nil

	if len(result.Errors) > 0 {
		logger.Warn("file imported with errors",
			zap.String("file", result.FilePath),
			zap.Int64("records", count),
			zap.Int("errors", len(result.Errors)))
	} else {
		logger.Info("file imported",
			zap.String("file", result.FilePath),
			zap.Int64("records", count))
	}
}
