package library

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/rulebook/internal/doctree"
)

// Library loads documents and keeps them available for lookup. It owns the
// background goroutines that evict old uploads and refresh the default
// document.
type Library struct {
	store *Store
	stats *ParseStats
	opts  doctree.Options
	log   *slog.Logger

	defaultSource    doctree.Source
	defaultExtractor doctree.Extractor
	defaultLocation  string
	refreshInterval  time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
	wg      sync.WaitGroup
}

// Config wires a Library. Options apply to the default document only;
// every other document is loaded with the options passed to Load.
type Config struct {
	Options doctree.Options
	TTL     time.Duration

	// The default document. Source may be nil to start without one.
	Source          doctree.Source
	Extractor       doctree.Extractor
	Location        string
	RefreshInterval time.Duration
}

func NewLibrary(cfg Config, log *slog.Logger) *Library {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Library{
		store:            NewStore(cfg.TTL),
		stats:            NewParseStats(time.Hour),
		opts:             cfg.Options,
		log:              log,
		defaultSource:    cfg.Source,
		defaultExtractor: cfg.Extractor,
		defaultLocation:  cfg.Location,
		refreshInterval:  cfg.RefreshInterval,
	}
}

// Load builds a fresh document from src with opts and stores it under id.
// On failure nothing is stored and any previous entry with the same id is
// kept.
func (l *Library) Load(ctx context.Context, id, title, location string, opts doctree.Options, src doctree.Source, ex doctree.Extractor) (*Entry, error) {
	if opts.Logger == nil {
		opts.Logger = l.log.With("doc_id", id)
	}
	start := time.Now()
	doc := doctree.New(opts)
	err := doc.Parse(ctx, src, ex)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		l.stats.RecordFailure(elapsed)
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	l.stats.Record(elapsed)

	now := time.Now()
	e := &Entry{
		ID:        id,
		Title:     title,
		Source:    location,
		Document:  doc,
		UpdatedAt: now,
	}
	l.store.Put(e)
	l.log.Info("document loaded", "doc_id", id, "sections", doc.Len(), "duration_ms", elapsed)
	return e, nil
}

// LoadDefault (re)loads the configured default document.
func (l *Library) LoadDefault(ctx context.Context) error {
	if l.defaultSource == nil {
		return fmt.Errorf("no default source configured")
	}
	_, err := l.Load(ctx, DefaultID, "", l.defaultLocation, l.opts, l.defaultSource, l.defaultExtractor)
	return err
}

// Start loads the default document and launches the cleanup and refresh
// loops. A failed initial load is returned; the loops are not started.
func (l *Library) Start(ctx context.Context) error {
	if l.defaultSource != nil {
		if err := l.LoadDefault(ctx); err != nil {
			return err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return nil
	}
	loopCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				if n := l.store.Cleanup(); n > 0 {
					l.log.Info("evicted documents", "count", n)
				}
			}
		}
	}()

	if l.refreshInterval > 0 && l.defaultSource != nil {
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			ticker := time.NewTicker(l.refreshInterval)
			defer ticker.Stop()
			for {
				select {
				case <-loopCtx.Done():
					return
				case <-ticker.C:
					if err := l.LoadDefault(loopCtx); err != nil {
						l.log.Warn("refresh failed, keeping previous document", "error", err)
					}
				}
			}
		}()
	}
	return nil
}

// Stop ends the background loops and waits for them. A Start still loading
// the default document will not launch its loops afterwards.
func (l *Library) Stop() {
	l.mu.Lock()
	l.stopped = true
	if l.cancel != nil {
		l.cancel()
	}
	l.mu.Unlock()
	l.wg.Wait()
}

// Get returns the entry for id, or nil.
func (l *Library) Get(id string) *Entry {
	return l.store.Get(id)
}

// Delete removes an uploaded document. The default document cannot be
// deleted.
func (l *Library) Delete(id string) (bool, error) {
	if id == DefaultID {
		return false, fmt.Errorf("the default document cannot be deleted")
	}
	return l.store.Delete(id), nil
}

// List returns all entries ordered by ID.
func (l *Library) List() []*Entry {
	return l.store.List()
}

// Stats returns the load latency tracker.
func (l *Library) Stats() *ParseStats {
	return l.stats
}
