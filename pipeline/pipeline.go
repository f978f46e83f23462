package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"leaderflow/config"
	"leaderflow/logger"
	"leaderflow/models"
	"leaderflow/processor"
	"leaderflow/reader"
	"leaderflow/writer"
)

// Mirror uploads a snapshot to remote storage after the local write. Nil
// mirrors are allowed; local files are the primary output.
type Mirror interface {
	Upload(ctx context.Context, snap *models.Snapshot) error
}

// Pipeline runs one fetch-normalize-write cycle per configured source.
// Sources are independent: each runs in its own goroutine, and a failing
// source never blocks or poisons its siblings.
type Pipeline struct {
	config *config.Config
	snaps  *writer.SnapshotWriter
	mirror Mirror
	log    *logger.Log
	now    func() time.Time
}

// NewPipeline assembles the pipeline from configuration. mirror may be nil.
func NewPipeline(cfg *config.Config, snaps *writer.SnapshotWriter, mirror Mirror) *Pipeline {
	return &Pipeline{
		config: cfg,
		snaps:  snaps,
		mirror: mirror,
		log:    logger.GetLogger(),
		now:    time.Now,
	}
}

// Run executes one full cycle across every configured source and returns an
// error only when every attempted source failed. Partial failure is normal
// operation: the failing source gets a fallback snapshot and its siblings
// publish as usual.
func (p *Pipeline) Run(ctx context.Context) error {
	runID := uuid.New().String()
	log := p.log.WithComponent("pipeline").WithFields(logger.Fields{"run_id": runID})

	start := time.Now()
	log.WithFields(logger.Fields{"sources": len(p.config.Sources)}).Info("starting leaderboard run")

	var wg sync.WaitGroup
	var attempted, failed int64

	for _, src := range p.config.Sources {
		if ok, reason := src.Ready(); !ok {
			log.WithSource(src.Name).WithFields(logger.Fields{"reason": reason}).Warn("skipping source")
			continue
		}

		atomic.AddInt64(&attempted, 1)
		wg.Add(1)
		go func(src config.SourceConfig) {
			defer wg.Done()
			if err := p.runSource(ctx, src, runID); err != nil {
				atomic.AddInt64(&failed, 1)
				log.WithSource(src.Name).WithError(err).Error("source cycle failed")
			}
		}(src)
	}

	wg.Wait()

	attemptedFinal := atomic.LoadInt64(&attempted)
	failedFinal := atomic.LoadInt64(&failed)

	logger.LogPerformanceEntry(log, "pipeline", "run", time.Since(start), logger.Fields{
		"attempted": attemptedFinal,
		"failed":    failedFinal,
	})
	p.log.LogMetric("pipeline", "sources_failed", failedFinal, "counter", logger.Fields{"run_id": runID})

	if attemptedFinal == 0 {
		return fmt.Errorf("no sources were ready to run")
	}
	if failedFinal == attemptedFinal {
		return fmt.Errorf("all %d sources failed", attemptedFinal)
	}

	log.WithFields(logger.Fields{
		"attempted": attemptedFinal,
		"failed":    failedFinal,
	}).Info("leaderboard run complete")
	return nil
}

// runSource executes the cycle for a single source. Fetch failure still
// produces a snapshot: empty rows, the static ladder and the error recorded
// in metadata, so downstream consumers always have a current document.
func (p *Pipeline) runSource(ctx context.Context, src config.SourceConfig, runID string) error {
	log := p.log.WithComponent("pipeline").WithSource(src.Name).WithFields(logger.Fields{
		"run_id": runID,
	})

	ladder := processor.LadderFromEntries(src.Prizes)
	fetchedAt := p.now().UTC().Format(time.RFC3339)

	payload, err := reader.NewSource(src, p.config.Reader).Fetch(ctx)
	if err != nil {
		snap := p.failureSnapshot(src, ladder, runID, fetchedAt, payload, err)
		if _, werr := p.snaps.Write(snap); werr != nil {
			log.WithError(werr).Error("failed to write fallback snapshot")
		}
		return fmt.Errorf("fetch %s: %w", src.Name, err)
	}

	if err := p.snaps.WriteRaw(src.Name, payload.Data); err != nil {
		log.WithError(err).Warn("raw payload dump failed")
	}

	result := processor.Normalize(payload.Data, ladder, processor.Options{
		CentsUnits:    src.Units == "cents",
		Size:          src.Size,
		RankByWagered: src.RankByWagered,
		PayloadPrizes: src.PayloadPrizes,
	})

	snap := &models.Snapshot{
		SchemaVersion: models.SchemaVersion,
		Rows:          result.Rows,
		Prizes:        result.Prizes,
		Metadata: models.Metadata{
			Source:       src.Name,
			RunID:        runID,
			FetchedAt:    fetchedAt,
			URL:          payload.URL,
			Tried:        payload.Tried,
			Period:       sourcePeriod(src, p.now()),
			TotalEntries: len(result.Rows),
		},
	}

	if _, err := p.snaps.Write(snap); err != nil {
		return fmt.Errorf("write snapshot %s: %w", src.Name, err)
	}

	if p.mirror != nil {
		if err := p.mirror.Upload(ctx, snap); err != nil {
			log.WithError(err).Warn("mirror upload failed")
		}
	}

	p.log.LogMetric("pipeline", "rows_published", len(result.Rows), "counter", logger.Fields{
		"source": src.Name,
		"run_id": runID,
	})
	return nil
}

func (p *Pipeline) failureSnapshot(src config.SourceConfig, ladder processor.Ladder, runID, fetchedAt string, payload *reader.Payload, ferr error) *models.Snapshot {
	meta := models.Metadata{
		Source:    src.Name,
		RunID:     runID,
		FetchedAt: fetchedAt,
		Error:     ferr.Error(),
		Period:    sourcePeriod(src, p.now()),
	}
	if payload != nil {
		meta.Tried = payload.Tried
	}

	return &models.Snapshot{
		SchemaVersion: models.SchemaVersion,
		Rows:          []models.Row{},
		Prizes:        ladder.Entries(),
		Metadata:      meta,
	}
}

// sourcePeriod resolves the date window for snapshot metadata, mirroring
// what the reader sends upstream.
func sourcePeriod(src config.SourceConfig, now time.Time) *models.Period {
	switch src.DateRange.Mode {
	case "month":
		w := reader.MonthWindow(now)
		return &models.Period{
			Start: w.Start.Format("2006-01-02"),
			End:   w.End.Format("2006-01-02"),
		}
	case "fixed":
		return &models.Period{Start: src.DateRange.Start, End: src.DateRange.End}
	default:
		return nil
	}
}
