package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"culture_hotspots/internal/adapters/observability"
	"culture_hotspots/internal/domain"
)

const progressEvery = 50

// mappedRow is one source row after decoding and mapping.
type mappedRow struct {
	line int
	h    domain.Hotspot
	err  error
}

type IngestionService struct {
	repo    domain.HotspotStore
	cache   domain.Cache
	workers int
}

func NewIngestionService(r domain.HotspotStore, cache domain.Cache, workers int) *IngestionService {
	if workers <= 0 {
		workers = 1
	}
	return &IngestionService{repo: r, cache: cache, workers: workers}
}

// Initialize is the bootstrap entry point: it ingests src when the store is
// still empty and logs the outcome.
func (s *IngestionService) Initialize(ctx context.Context, src domain.RowSource) (domain.IngestionReport, error) {
	rep, err := s.Ingest(ctx, src)
	if err != nil {
		log.Error().Err(err).Str("source", src.Name()).Msg("hotspot ingestion failed")
		return rep, err
	}
	if rep.Skipped {
		log.Info().Int("existing", rep.Existing).Msg("store already populated; skipping ingestion")
	}
	return rep, nil
}

// Ingest loads every row of src into the store unless the store already holds
// data. Rows that cannot be decoded, mapped or stored are counted as failed
// and skipped. Errors opening or reading the source abort the run.
func (s *IngestionService) Ingest(ctx context.Context, src domain.RowSource) (domain.IngestionReport, error) {
	rep := domain.IngestionReport{RunID: uuid.NewString()}

	n, err := s.repo.Count(ctx)
	if err != nil {
		observability.ObserveIngestRun("failed")
		return rep, fmt.Errorf("count hotspots: %w", err)
	}
	if n > 0 {
		rep.Skipped, rep.Existing = true, n
		observability.ObserveIngestRun("skipped")
		return rep, nil
	}

	logger := log.With().Str("run", rep.RunID).Str("source", src.Name()).Logger()
	logger.Info().Int("workers", s.workers).Msg("starting hotspot ingestion")

	body, err := src.Open(ctx)
	if err != nil {
		observability.ObserveIngestRun("failed")
		return rep, fmt.Errorf("open source %s: %w", src.Name(), err)
	}
	defer body.Close()

	rows, err := newRowReader(body)
	if err != nil {
		observability.ObserveIngestRun("failed")
		return rep, fmt.Errorf("source %s: %w", src.Name(), err)
	}

	var (
		ok, failed atomic.Int64
		fatal      error
	)
	sem := semaphore.NewWeighted(int64(s.workers))
	fail := func(line int, id string, err error) {
		failed.Add(1)
		observability.ObserveIngestRow("failed")
		logger.Warn().Int("row", line).Str("id", id).Err(err).Msg("skipping hotspot row")
	}

	// Workers map rows concurrently; a single writer drains their result
	// slots in file order so store order matches the source and a later
	// duplicate id always wins.
	pending := make(chan chan mappedRow, s.workers)
	written := make(chan struct{})
	go func() {
		defer close(written)
		for slot := range pending {
			m := <-slot
			if m.err != nil {
				fail(m.line, m.h.ID, m.err)
				continue
			}
			if err := s.repo.Put(ctx, m.h); err != nil {
				fail(m.line, m.h.ID, err)
				continue
			}
			observability.ObserveIngestRow("ok")
			if done := ok.Add(1); done%progressEvery == 0 {
				logger.Info().Int64("stored", done).Msg("ingestion progress")
			}
		}
	}()

	for line := 1; ; line++ {
		raw, err := rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !isRowError(err) {
			fatal = fmt.Errorf("read source %s: %w", src.Name(), err)
			break
		}
		rep.Total++

		// acquire before launching the goroutine; release inside it
		if aerr := sem.Acquire(ctx, 1); aerr != nil {
			fail(line, "", aerr)
			fatal = aerr
			break
		}
		slot := make(chan mappedRow, 1)
		pending <- slot
		go func(line int, raw domain.RawRow, rowErr error) {
			defer sem.Release(1)
			if rowErr != nil {
				slot <- mappedRow{line: line, err: rowErr}
				return
			}
			h, err := mapRow(raw)
			slot <- mappedRow{line: line, h: h, err: err}
		}(line, raw, err)
	}
	close(pending)
	<-written

	rep.Succeeded = int(ok.Load())
	rep.Failed = int(failed.Load())
	s.invalidate(ctx)

	if fatal != nil {
		observability.ObserveIngestRun("failed")
		return rep, fatal
	}
	observability.ObserveIngestRun("completed")
	logger.Info().
		Int("total", rep.Total).
		Int("succeeded", rep.Succeeded).
		Int("failed", rep.Failed).
		Msg("hotspot ingestion completed")
	return rep, nil
}

// Clear removes every hotspot so the next Ingest runs again.
func (s *IngestionService) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear hotspots: %w", err)
	}
	s.invalidate(ctx)
	log.Info().Msg("hotspot store cleared")
	return nil
}

// Reingest clears the store and ingests src from scratch.
func (s *IngestionService) Reingest(ctx context.Context, src domain.RowSource) (domain.IngestionReport, error) {
	if err := s.Clear(ctx); err != nil {
		return domain.IngestionReport{}, err
	}
	return s.Ingest(ctx, src)
}

func (s *IngestionService) invalidate(ctx context.Context) { invalidateCache(ctx, s.cache) }
