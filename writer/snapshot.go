package writer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"leaderflow/logger"
	"leaderflow/models"
)

// SnapshotWriter persists leaderboard snapshots as pretty-printed JSON files,
// one per source. Files are written atomically: a temp file in the target
// directory is renamed over the destination so readers never observe a
// partial document.
type SnapshotWriter struct {
	dir      string
	writeRaw bool
	log      *logger.Log
}

// NewSnapshotWriter creates a writer rooted at dir. The directory is created
// on the first write.
func NewSnapshotWriter(dir string, writeRaw bool) *SnapshotWriter {
	return &SnapshotWriter{
		dir:      dir,
		writeRaw: writeRaw,
		log:      logger.GetLogger(),
	}
}

// Dir returns the snapshot directory.
func (w *SnapshotWriter) Dir() string { return w.dir }

// Write persists the snapshot for its source. Rows and prizes are never
// emitted as JSON null; an empty snapshot still serializes with empty arrays
// so consumers can index into it unconditionally.
func (w *SnapshotWriter) Write(snap *models.Snapshot) (string, error) {
	log := w.log.WithComponent("snapshot_writer").WithSource(snap.Metadata.Source).WithFields(logger.Fields{
		"rows": len(snap.Rows),
	})

	if snap.Rows == nil {
		snap.Rows = []models.Row{}
	}
	if snap.Prizes == nil {
		snap.Prizes = []models.PrizeEntry{}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	path := filepath.Join(w.dir, snap.Metadata.Source+"-leaderboard.json")
	if err := w.writeAtomic(path, data); err != nil {
		log.WithError(err).Error("failed to write snapshot")
		return "", err
	}

	logger.IncrementSnapshotWrite(int64(len(data)))
	w.log.LogMetric("snapshot_writer", "snapshots_written", 1, "counter", logger.Fields{
		"source": snap.Metadata.Source,
	})
	log.WithFields(logger.Fields{"path": path, "bytes": len(data)}).Info("snapshot written")

	return path, nil
}

// WriteRaw dumps the undecoded upstream payload next to the snapshot for
// debugging new sources. No-op unless raw writing is enabled.
func (w *SnapshotWriter) WriteRaw(source string, payload interface{}) error {
	if !w.writeRaw {
		return nil
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal raw payload: %w", err)
	}

	path := filepath.Join(w.dir, source+"-raw.json")
	if err := w.writeAtomic(path, data); err != nil {
		w.log.WithComponent("snapshot_writer").WithSource(source).WithError(err).Warn("failed to write raw payload")
		return err
	}
	return nil
}

func (w *SnapshotWriter) writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(w.dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
