package factory

import (
	"time"

	"github.com/leveltrack/leveltrack/internal/dependencies/mocks"
	"github.com/leveltrack/leveltrack/internal/storage/memory"
	"github.com/leveltrack/leveltrack/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock

	// ExportDir is the temporary directory exports land in
	ExportDir string
}

// NewTestApp creates an App configured for testing with mocked
// dependencies and an in-memory store
func NewTestApp(exportDir string) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	app := newWithDependencies(store, mockClock, exportDir, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		ExportDir: exportDir,
	}
}
