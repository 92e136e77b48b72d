package cli

import (
	"bytes"
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/drawsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/drawsync/internal/core/domain"
	"github.com/custodia-labs/drawsync/internal/core/services"
)

// mockSyncService implements driving.SyncService for testing.
type mockSyncService struct {
	report *domain.SyncReport
	err    error
	calls  int
}

func (m *mockSyncService) Sync(_ context.Context) (*domain.SyncReport, error) {
	m.calls++
	return m.report, m.err
}

func (m *mockSyncService) Status(_ context.Context) (*domain.SyncReport, error) {
	return m.report, nil
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	scheduler   domain.SchedulerConfig
	validateErr error
	saved       *domain.AppSettings
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings:  domain.DefaultAppSettings(),
		scheduler: domain.DefaultSchedulerConfig(),
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.saved = settings
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	return m.scheduler
}

// mockScheduler implements driving.Scheduler for testing.
type mockScheduler struct {
	mu       sync.Mutex
	started  bool
	stopped  bool
	updates  []domain.TaskConfig
	updateID string
	startErr error
}

func (m *mockScheduler) Start(ctx context.Context) error {
	m.mu.Lock()
	m.started = true
	startErr := m.startErr
	m.mu.Unlock()
	if startErr != nil {
		return startErr
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	return nil
}

func (m *mockScheduler) UpdateInterval(_ context.Context, taskID string, enabled bool, interval time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateID = taskID
	m.updates = append(m.updates, domain.TaskConfig{Enabled: enabled, Interval: interval})
	return nil
}

func testDraw(id int64) domain.DrawRecord {
	return domain.DrawRecord{
		SequenceID:      id,
		IssueLabel:      strconv.FormatInt(id, 10),
		DrawTimestamp:   "2024-03-17",
		WeekdayLabel:    "日",
		PrimaryNumbers:  [6]int{1, 5, 12, 20, 28, 33},
		SecondaryNumber: 7,
	}
}

// setupTestApp installs an App backed by an in-memory store seeded with ids
// and resets command flag state.
func setupTestApp(t *testing.T, ids ...int64) *App {
	t.Helper()

	store := memory.NewDrawStore()
	for _, id := range ids {
		require.NoError(t, store.Upsert(context.Background(), testDraw(id)))
	}

	a := &App{
		Settings:   newMockSettingsService(),
		Sync:       &mockSyncService{report: &domain.SyncReport{StopReason: domain.StopCaughtUp}},
		Draws:      services.NewDrawService(store),
		Scheduler:  &mockScheduler{},
		ServerAddr: "127.0.0.1:0",
	}

	oldApp, oldOwns := app, ownsApp
	app, ownsApp = a, false
	drawsJSON, syncStrict, serveAddr = false, false, ""
	t.Cleanup(func() {
		app, ownsApp = oldApp, oldOwns
		drawsJSON, syncStrict, serveAddr = false, false, ""
		rootCmd.SetArgs(nil)
	})
	return a
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// syncBuffer is a bytes.Buffer safe for concurrent writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
