package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leveltrack/leveltrack/internal/storage"
	"github.com/leveltrack/leveltrack/internal/worker"
)

// FileName is the snapshot artifact written into the export directory
const FileName = "player_levels.csv"

// csvHeader is the artifact's single header row
var csvHeader = []string{"Player ID", "Level", "Is Completed", "Prize"}

// Exporter streams a snapshot of all player level progress to a CSV
// artifact. The read side is a forward-only storage cursor and the
// write side is flushed row by row, so memory stays bounded no matter
// how large the progress table grows.
type Exporter struct {
	storage storage.Storage
	runner  *worker.Runner
	dir     string
	logger  *slog.Logger
}

// NewExporter creates a new snapshot exporter writing into dir
func NewExporter(storage storage.Storage, runner *worker.Runner, dir string, logger *slog.Logger) *Exporter {
	return &Exporter{
		storage: storage,
		runner:  runner,
		dir:     dir,
		logger:  logger,
	}
}

// Submit schedules a snapshot export on the background runner and
// returns immediately. The returned Task exposes completion and
// failure; callers on the request path typically drop it, which keeps
// the trigger fire-and-forget without losing the error channel for
// callers that want one.
func (e *Exporter) Submit(ctx context.Context) (*worker.Task, error) {
	return e.runner.Submit(ctx, "snapshot-export", e.run)
}

func (e *Exporter) run(ctx context.Context) error {
	path := filepath.Join(e.dir, FileName)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}

	if err := e.WriteSnapshot(ctx, file); err != nil {
		_ = file.Close()
		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}

	e.logger.Info("snapshot exported", slog.String("path", path))
	return nil
}

// WriteSnapshot streams the joined progress snapshot to w as CSV, one
// output row per cursor row. A missing prize renders as an empty
// field, never an omitted column.
func (e *Exporter) WriteSnapshot(ctx context.Context, w io.Writer) error {
	cursor, err := e.storage.SnapshotPlayerLevels(ctx)
	if err != nil {
		return fmt.Errorf("open snapshot cursor: %w", err)
	}
	defer func() { _ = cursor.Close() }()

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}

	for {
		row, ok, err := cursor.Next()
		if err != nil {
			return fmt.Errorf("read snapshot row: %w", err)
		}
		if !ok {
			break
		}

		if err := writer.Write([]string{
			string(row.PlayerID),
			row.LevelTitle,
			formatBool(row.IsCompleted),
			row.PrizeTitle,
		}); err != nil {
			return fmt.Errorf("write export row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush export: %w", err)
	}
	return nil
}

// formatBool renders completion flags as True/False, the artifact's
// established format
func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
