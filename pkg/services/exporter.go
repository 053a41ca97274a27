package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kerbaras/minty/pkg/data"
	"github.com/kerbaras/minty/pkg/integrations"
	"github.com/sirupsen/logrus"
)

const (
	StatusDownloading = "downloading"
	StatusProcessing  = "processing"
	StatusComplete    = "complete"
	StatusError       = "error"
)

// ExportProgress represents the progress of a chapter export
type ExportProgress struct {
	ChapterID   data.ID
	Title       string
	CurrentPage int
	TotalPages  int
	Status      string
	Error       error
	// Path is set once the export is complete.
	Path string
}

// Fetcher downloads raw page images.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// Exporter turns a chapter's pages into an EPUB: pages are downloaded with
// bounded concurrency, normalized, and published in their original order.
type Exporter struct {
	fetcher      Fetcher
	processor    integrations.Processor
	publisher    integrations.Publisher
	concurrency  int
	rateLimiter  *time.Ticker
	progressChan chan ExportProgress
	log          logrus.FieldLogger
}

type ExporterOption func(*Exporter)

// WithRateLimit spaces page downloads at least interval apart. Zero disables
// the limit.
func WithRateLimit(interval time.Duration) ExporterOption {
	return func(e *Exporter) {
		if e.rateLimiter != nil {
			e.rateLimiter.Stop()
			e.rateLimiter = nil
		}
		if interval > 0 {
			e.rateLimiter = time.NewTicker(interval)
		}
	}
}

func WithConcurrency(n int) ExporterOption {
	return func(e *Exporter) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

func WithExportLogger(log logrus.FieldLogger) ExporterOption {
	return func(e *Exporter) { e.log = log }
}

func NewExporter(fetcher Fetcher, processor integrations.Processor, publisher integrations.Publisher, opts ...ExporterOption) *Exporter {
	e := &Exporter{
		fetcher:      fetcher,
		processor:    processor,
		publisher:    publisher,
		concurrency:  3,
		rateLimiter:  time.NewTicker(250 * time.Millisecond), // 4 req/sec
		progressChan: make(chan ExportProgress, 100),
		log:          logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithField("component", "exporter")
	return e
}

// GetProgressChannel returns the channel for receiving export progress updates
func (e *Exporter) GetProgressChannel() <-chan ExportProgress {
	return e.progressChan
}

// ExportChapter downloads every page of chapter and writes the EPUB. The
// first failing page aborts the export.
func (e *Exporter) ExportChapter(ctx context.Context, chapter *data.Chapter) (string, error) {
	if chapter == nil {
		return "", fmt.Errorf("chapter cannot be nil")
	}

	path, err := e.export(ctx, chapter)
	if err != nil {
		e.log.WithError(err).WithField("chapter_id", chapter.ID).Warn("export failed")
		e.sendProgress(ExportProgress{
			ChapterID:  chapter.ID,
			Title:      chapter.Title,
			TotalPages: len(chapter.Images),
			Status:     StatusError,
			Error:      err,
		})
		return "", err
	}

	e.log.WithFields(logrus.Fields{"chapter_id": chapter.ID, "path": path}).Info("chapter exported")
	e.sendProgress(ExportProgress{
		ChapterID:   chapter.ID,
		Title:       chapter.Title,
		CurrentPage: len(chapter.Images),
		TotalPages:  len(chapter.Images),
		Status:      StatusComplete,
		Path:        path,
	})
	return path, nil
}

func (e *Exporter) export(ctx context.Context, chapter *data.Chapter) (string, error) {
	total := len(chapter.Images)
	if total == 0 {
		return "", fmt.Errorf("no pages found for chapter %s", chapter.ID)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.sendProgress(ExportProgress{
		ChapterID:  chapter.ID,
		Title:      chapter.Title,
		TotalPages: total,
		Status:     StatusDownloading,
	})

	pages := make([]integrations.Page, total)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		done      int
		firstErr  error
		semaphore = make(chan struct{}, e.concurrency)
	)

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	for i, ref := range chapter.Images {
		wg.Add(1)
		go func(i int, ref string) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-semaphore }()

			if err := e.wait(ctx); err != nil {
				return
			}

			raw, err := e.fetcher.Fetch(ctx, ref)
			if err != nil {
				fail(fmt.Errorf("failed to download page %d: %w", i+1, err))
				return
			}
			page, err := e.processor.Process(raw)
			if err != nil {
				fail(fmt.Errorf("failed to process page %d: %w", i+1, err))
				return
			}

			// Each goroutine owns its slot, so order survives concurrency
			pages[i] = page

			mu.Lock()
			done++
			current := done
			mu.Unlock()

			e.sendProgress(ExportProgress{
				ChapterID:   chapter.ID,
				Title:       chapter.Title,
				CurrentPage: current,
				TotalPages:  total,
				Status:      StatusDownloading,
			})
		}(i, ref)
	}

	wg.Wait()

	if firstErr != nil {
		return "", firstErr
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("export canceled: %w", err)
	}

	e.sendProgress(ExportProgress{
		ChapterID:   chapter.ID,
		Title:       chapter.Title,
		CurrentPage: total,
		TotalPages:  total,
		Status:      StatusProcessing,
	})

	path, err := e.publisher.Publish(chapter, pages)
	if err != nil {
		return "", fmt.Errorf("failed to write EPUB: %w", err)
	}
	return path, nil
}

func (e *Exporter) wait(ctx context.Context) error {
	if e.rateLimiter == nil {
		return ctx.Err()
	}
	select {
	case <-e.rateLimiter.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// sendProgress sends a progress update (non-blocking)
func (e *Exporter) sendProgress(progress ExportProgress) {
	select {
	case e.progressChan <- progress:
	default:
		// Channel full, skip this update
	}
}

// Close stops the rate limiter. The progress channel stays open so pending
// listeners are not woken with zero values.
func (e *Exporter) Close() {
	if e.rateLimiter != nil {
		e.rateLimiter.Stop()
	}
}
