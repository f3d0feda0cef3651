package factory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leveltrack/leveltrack/internal/model"
	"github.com/leveltrack/leveltrack/internal/services/export"
)

// Exercises the full start/complete/grant/export flow through wired
// components
func TestFullProgressFlow(t *testing.T) {
	app := NewTestApp(t.TempDir())
	ctx := context.Background()

	_, err := app.ContentService.RegisterPlayer(ctx, "P1")
	require.NoError(t, err)
	_, err = app.ContentService.CreatePrize(ctx, &model.Prize{ID: "gold", Title: "Gold"})
	require.NoError(t, err)
	_, err = app.ContentService.CreateLevel(ctx, &model.Level{ID: "l1", Title: "L1-title", Order: 1, PrizeID: "gold"})
	require.NoError(t, err)

	_, err = app.Tracker.StartLevel(ctx, "P1", "l1")
	require.NoError(t, err)

	app.MockClock.Advance(15 * time.Minute)

	pl, err := app.Tracker.CompleteLevel(ctx, "P1", "l1", 950)
	require.NoError(t, err)
	assert.True(t, pl.IsCompleted)
	assert.Equal(t, 950, pl.Score)

	grant, err := app.Tracker.GetGrant(ctx, "P1", "l1")
	require.NoError(t, err)
	assert.Equal(t, model.PrizeID("gold"), grant.PrizeID)

	task, err := app.Exporter.Submit(ctx)
	require.NoError(t, err)

	select {
	case <-task.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("export did not finish in time")
	}
	require.NoError(t, task.Err())

	data, err := os.ReadFile(filepath.Join(app.ExportDir, export.FileName))
	require.NoError(t, err)
	assert.Equal(t,
		"Player ID,Level,Is Completed,Prize\nP1,L1-title,True,Gold\n",
		string(data),
	)
}

func TestNewRejectsUnknownStorageType(t *testing.T) {
	_, err := New(Config{StorageType: "bogus"})
	assert.Error(t, err)
}

func TestNewDefaultsToMemoryStorage(t *testing.T) {
	app, err := New(Config{})
	require.NoError(t, err)
	assert.NotNil(t, app.Storage)
	assert.NotNil(t, app.Tracker)
	assert.NotNil(t, app.Exporter)
}

func TestNewRequiresRedisConfig(t *testing.T) {
	_, err := New(Config{StorageType: "redis"})
	assert.Error(t, err)
}

func TestNewRequiresPostgresDSN(t *testing.T) {
	_, err := New(Config{StorageType: "postgres"})
	assert.Error(t, err)
}
