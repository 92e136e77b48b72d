package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/drawsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/drawsync/internal/connectors/zhcw"
	"github.com/custodia-labs/drawsync/internal/core/domain"
	"github.com/custodia-labs/drawsync/internal/core/ports/driven"
)

// mockDrawSource implements driven.DrawSource for testing.
type mockDrawSource struct {
	mu       sync.Mutex
	pages    map[int][]domain.RawDraw
	errs     map[int][]error // consumed one per request
	size     int
	requests []int
	onFetch  func(page int)
}

var _ driven.DrawSource = (*mockDrawSource)(nil)

func newMockDrawSource() *mockDrawSource {
	return &mockDrawSource{
		pages: make(map[int][]domain.RawDraw),
		errs:  make(map[int][]error),
		size:  30,
	}
}

func (m *mockDrawSource) FetchPage(ctx context.Context, page int) ([]domain.RawDraw, error) {
	m.mu.Lock()
	m.requests = append(m.requests, page)
	var err error
	if errs := m.errs[page]; len(errs) > 0 {
		err, m.errs[page] = errs[0], errs[1:]
	}
	batch := m.pages[page]
	onFetch := m.onFetch
	m.mu.Unlock()

	if onFetch != nil {
		onFetch(page)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (m *mockDrawSource) PageSize() int {
	return m.size
}

func (m *mockDrawSource) requested() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.requests...)
}

// rawPage returns entries from newest down to oldest inclusive.
func rawPage(newest, oldest int64) []domain.RawDraw {
	out := make([]domain.RawDraw, 0, newest-oldest+1)
	for id := newest; id >= oldest; id-- {
		out = append(out, rawDraw(id))
	}
	return out
}

func rawDraw(id int64) domain.RawDraw {
	return domain.RawDraw{
		Issue:       strconv.FormatInt(id, 10),
		OpenTime:    "2024-03-17",
		Week:        "日",
		FrontNumber: "01,05,12,20,28,33",
		BackNumber:  "07",
	}
}

// failingDrawStore wraps the memory store with injectable failures.
type failingDrawStore struct {
	*memory.DrawStore
	latestErr error
	upsertErr map[int64]error
}

func (f *failingDrawStore) LatestSequenceID(ctx context.Context) (int64, error) {
	if f.latestErr != nil {
		return 0, f.latestErr
	}
	return f.DrawStore.LatestSequenceID(ctx)
}

func (f *failingDrawStore) Upsert(ctx context.Context, record domain.DrawRecord) error {
	if err, ok := f.upsertErr[record.SequenceID]; ok {
		return err
	}
	return f.DrawStore.Upsert(ctx, record)
}

func seedStore(t *testing.T, store *memory.DrawStore, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		rec, err := domain.NewDrawRecord(rawDraw(id))
		require.NoError(t, err)
		require.NoError(t, store.Upsert(context.Background(), rec))
	}
}

func testSyncSettings() domain.SyncSettings {
	return domain.SyncSettings{PageSize: 30}
}

// ==================== SyncDriver Tests ====================

func TestSyncDriver_EmptyStoreBootstrap(t *testing.T) {
	store := memory.NewDrawStore()
	source := newMockDrawSource()
	source.pages[1] = rawPage(2024030, 2024001)

	driver := NewSyncDriver(store, source, testSyncSettings())
	report, err := driver.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 30, report.Inserted)
	assert.Equal(t, 2, report.PagesFetched)
	assert.Equal(t, []int{1, 2}, source.requested())
	assert.Equal(t, domain.StopEndOfData, report.StopReason)
	assert.Equal(t, int64(0), report.KnownMax)
	assert.NotEmpty(t, report.RunID)
	assert.False(t, report.Running)

	ids := store.IDs()
	require.Len(t, ids, 30)
	assert.Equal(t, int64(2024030), ids[0])
	assert.Equal(t, int64(2024001), ids[29])
}

func TestSyncDriver_ResumesFromHighWaterMark(t *testing.T) {
	store := memory.NewDrawStore()
	seedStore(t, store, 2024014, 2024015)

	source := newMockDrawSource()
	source.pages[1] = rawPage(2024030, 2024001)

	driver := NewSyncDriver(store, source, testSyncSettings())
	report, err := driver.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2024015), report.KnownMax)
	assert.Equal(t, 15, report.Inserted)
	assert.Equal(t, 1, report.PagesFetched)
	assert.Equal(t, []int{1}, source.requested())
	assert.Equal(t, domain.StopCaughtUp, report.StopReason)

	ids := store.IDs()
	require.Len(t, ids, 17)
	assert.Equal(t, int64(2024030), ids[0])
	assert.Equal(t, []int64{2024015, 2024014}, ids[15:])
}

func TestSyncDriver_BoundaryTermination(t *testing.T) {
	store := memory.NewDrawStore()
	seedStore(t, store, 2024005)

	source := newMockDrawSource()
	source.pages[1] = rawPage(2024065, 2024036)
	source.pages[2] = rawPage(2024035, 2024006)
	source.pages[3] = rawPage(2024005, 2023976)
	source.pages[4] = rawPage(2023150, 2023121)

	driver := NewSyncDriver(store, source, testSyncSettings())
	report, err := driver.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, source.requested(), "page after the boundary page is never requested")
	assert.Equal(t, 60, report.Inserted)
	assert.Equal(t, domain.StopCaughtUp, report.StopReason)
}

func TestSyncDriver_IdempotentRerun(t *testing.T) {
	store := memory.NewDrawStore()
	source := newMockDrawSource()
	source.pages[1] = rawPage(2024010, 2024001)

	driver := NewSyncDriver(store, source, testSyncSettings())
	_, err := driver.Sync(context.Background())
	require.NoError(t, err)

	report, err := driver.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Inserted)
	assert.Equal(t, domain.StopCaughtUp, report.StopReason)
	assert.Len(t, store.IDs(), 10)
}

func TestSyncDriver_ShortPageStops(t *testing.T) {
	store := memory.NewDrawStore()
	source := newMockDrawSource()
	source.pages[1] = rawPage(2024030, 2024001)
	source.pages[2] = rawPage(2023150, 2023141)

	driver := NewSyncDriver(store, source, testSyncSettings())
	report, err := driver.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, source.requested())
	assert.Equal(t, 40, report.Inserted)
	assert.Equal(t, domain.StopEndOfData, report.StopReason)
}

func TestSyncDriver_FetchFailure(t *testing.T) {
	store := memory.NewDrawStore()
	source := newMockDrawSource()
	source.errs[1] = []error{errors.New("malformed: " + domain.ErrFetchFailed.Error())}

	driver := NewSyncDriver(store, source, testSyncSettings())
	report, err := driver.Sync(context.Background())

	require.NoError(t, err, "fetch failures are reported, not returned")
	assert.Equal(t, 0, report.Inserted)
	assert.Equal(t, domain.StopFetchFailed, report.StopReason)
	assert.True(t, report.StopReason.IsFailure())
	assert.NotEmpty(t, report.LastError)
	assert.Equal(t, 0, report.PagesFetched)
	assert.Empty(t, store.IDs())
}

func TestSyncDriver_FetchFailureAfterProgressKeepsRecords(t *testing.T) {
	store := memory.NewDrawStore()
	source := newMockDrawSource()
	source.pages[1] = rawPage(2024060, 2024031)
	source.errs[2] = []error{domain.ErrFetchFailed}

	driver := NewSyncDriver(store, source, testSyncSettings())
	report, err := driver.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 30, report.Inserted)
	assert.Equal(t, domain.StopFetchFailed, report.StopReason)
	assert.Len(t, store.IDs(), 30)
}

func TestSyncDriver_FetchRetries(t *testing.T) {
	store := memory.NewDrawStore()
	source := newMockDrawSource()
	source.pages[1] = rawPage(2024005, 2024001)
	source.errs[1] = []error{domain.ErrFetchFailed, domain.ErrFetchFailed}

	settings := testSyncSettings()
	settings.FetchRetries = 2

	driver := NewSyncDriver(store, source, settings)
	report, err := driver.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1}, source.requested())
	assert.Equal(t, 5, report.Inserted)
	assert.Equal(t, domain.StopEndOfData, report.StopReason)
}

func TestSyncDriver_RemoteRejectionNotRetried(t *testing.T) {
	store := memory.NewDrawStore()
	source := newMockDrawSource()
	source.pages[1] = rawPage(2024005, 2024001)
	source.errs[1] = []error{&zhcw.RemoteError{Code: "9", Message: "busy"}}

	settings := testSyncSettings()
	settings.FetchRetries = 2

	driver := NewSyncDriver(store, source, settings)
	report, err := driver.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int{1}, source.requested())
	assert.Equal(t, domain.StopFetchFailed, report.StopReason)
	assert.Contains(t, report.LastError, "remote error code 9")
	assert.Empty(t, store.IDs())
}

func TestSyncDriver_ServerErrorRetried(t *testing.T) {
	store := memory.NewDrawStore()
	source := newMockDrawSource()
	source.pages[1] = rawPage(2024005, 2024001)
	source.errs[1] = []error{&zhcw.APIError{StatusCode: http.StatusBadGateway}}

	settings := testSyncSettings()
	settings.FetchRetries = 1

	driver := NewSyncDriver(store, source, settings)
	report, err := driver.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int{1, 1}, source.requested())
	assert.Equal(t, 5, report.Inserted)
	assert.Equal(t, domain.StopEndOfData, report.StopReason)
}

func TestSyncDriver_StoreUnavailable(t *testing.T) {
	store := &failingDrawStore{
		DrawStore: memory.NewDrawStore(),
		latestErr: errors.New("database is locked"),
	}
	source := newMockDrawSource()

	driver := NewSyncDriver(store, source, testSyncSettings())
	report, err := driver.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.StopStoreUnavailable, report.StopReason)
	assert.Contains(t, report.LastError, "database is locked")
	assert.Empty(t, source.requested())
}

func TestSyncDriver_UpsertFailureContinues(t *testing.T) {
	store := &failingDrawStore{
		DrawStore: memory.NewDrawStore(),
		upsertErr: map[int64]error{2024003: errors.New("disk full")},
	}
	source := newMockDrawSource()
	source.pages[1] = rawPage(2024005, 2024001)

	driver := NewSyncDriver(store, source, testSyncSettings())
	report, err := driver.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, report.Inserted)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []int64{2024005, 2024004, 2024002, 2024001}, store.IDs())
}

func TestSyncDriver_MalformedEntriesSkipped(t *testing.T) {
	store := memory.NewDrawStore()
	source := newMockDrawSource()

	badFront := rawDraw(2024004)
	badFront.FrontNumber = "01,02,03"
	badIssue := rawDraw(0)
	badIssue.Issue = "abc"

	source.pages[1] = []domain.RawDraw{rawDraw(2024005), badFront, badIssue, rawDraw(2024003)}

	driver := NewSyncDriver(store, source, testSyncSettings())
	report, err := driver.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, []int64{2024005, 2024003}, store.IDs())
}

func TestSyncDriver_PageLimit(t *testing.T) {
	store := memory.NewDrawStore()
	source := newMockDrawSource()
	source.pages[1] = rawPage(2024060, 2024031)
	source.pages[2] = rawPage(2024030, 2024001)

	settings := testSyncSettings()
	settings.MaxPages = 1

	driver := NewSyncDriver(store, source, settings)
	report, err := driver.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int{1}, source.requested())
	assert.Equal(t, domain.StopPageLimit, report.StopReason)
}

func TestSyncDriver_Cancelled(t *testing.T) {
	store := memory.NewDrawStore()
	source := newMockDrawSource()
	source.pages[1] = rawPage(2024060, 2024031)
	source.pages[2] = rawPage(2024030, 2024001)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	source.onFetch = func(page int) {
		if page == 2 {
			cancel()
		}
	}

	driver := NewSyncDriver(store, source, testSyncSettings())
	report, err := driver.Sync(ctx)

	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Equal(t, domain.StopCancelled, report.StopReason)
	assert.Equal(t, 30, report.Inserted, "records from completed pages stay committed")
}

func TestSyncDriver_PageDelay(t *testing.T) {
	store := memory.NewDrawStore()
	source := newMockDrawSource()
	source.pages[1] = rawPage(2024060, 2024031)

	settings := testSyncSettings()
	settings.PageDelay = 50 * time.Millisecond

	driver := NewSyncDriver(store, source, settings)
	start := time.Now()
	_, err := driver.Sync(context.Background())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond, "second page waits for the limiter")
	assert.Equal(t, []int{1, 2}, source.requested())
}

func TestSyncDriver_DeadlineBeforeNextPage(t *testing.T) {
	store := memory.NewDrawStore()
	source := newMockDrawSource()
	source.pages[1] = rawPage(2024060, 2024031)
	source.pages[2] = rawPage(2024030, 2024001)

	settings := testSyncSettings()
	settings.PageDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	driver := NewSyncDriver(store, source, settings)
	report, err := driver.Sync(ctx)

	require.NoError(t, err, "a deadline the limiter cannot meet is reported, not returned")
	assert.NoError(t, ctx.Err())
	assert.Equal(t, domain.StopDeadline, report.StopReason)
	assert.False(t, report.StopReason.IsFailure())
	assert.NotEmpty(t, report.LastError)
	assert.Equal(t, []int{1}, source.requested())
	assert.Equal(t, 1, report.PagesFetched)
	assert.Equal(t, 30, report.Inserted)
}

func TestSyncDriver_Overlap(t *testing.T) {
	store := memory.NewDrawStore()
	source := newMockDrawSource()
	source.pages[1] = rawPage(2024005, 2024001)

	release := make(chan struct{})
	entered := make(chan struct{})
	source.onFetch = func(int) {
		close(entered)
		<-release
	}

	driver := NewSyncDriver(store, source, testSyncSettings())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = driver.Sync(context.Background())
	}()

	<-entered
	status, err := driver.Status(context.Background())
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.True(t, status.Running)

	_, err = driver.Sync(context.Background())
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)

	close(release)
	<-done

	status, err = driver.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.Equal(t, 5, status.Inserted)
}

func TestSyncDriver_StatusBeforeRun(t *testing.T) {
	driver := NewSyncDriver(memory.NewDrawStore(), newMockDrawSource(), testSyncSettings())
	status, err := driver.Status(context.Background())
	require.NoError(t, err)
	assert.Nil(t, status)
}

func TestSyncDriver_PageSizeFromSource(t *testing.T) {
	source := newMockDrawSource()
	source.size = 10
	driver := NewSyncDriver(memory.NewDrawStore(), source, domain.SyncSettings{})
	assert.Equal(t, 10, driver.settings.PageSize)
}

// ==================== Source Integration Tests ====================

// zhcwPage renders entries newest to oldest as a JSONP response body.
// Issues listed in incomplete are sent with an empty backNumber.
func zhcwPage(newest, oldest int64, incomplete ...int64) string {
	skip := make(map[int64]bool, len(incomplete))
	for _, id := range incomplete {
		skip[id] = true
	}

	entries := make([]string, 0, newest-oldest+1)
	for id := newest; id >= oldest; id-- {
		back := "07"
		if skip[id] {
			back = ""
		}
		entries = append(entries, fmt.Sprintf(
			`{"issue":"%d","openTime":"2024-03-17","week":"日","frontNumber":"01,05,12,20,28,33","backNumber":%q}`,
			id, back))
	}
	return `jQuery1({"errorCode":"0","value":[` + strings.Join(entries, ",") + `]});`
}

func TestSyncDriver_IncompleteEntryKeepsPaging(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("pageNum") {
		case "1":
			fmt.Fprint(w, zhcwPage(2024090, 2024061, 2024075))
		case "2":
			fmt.Fprint(w, zhcwPage(2024060, 2024031))
		default:
			fmt.Fprint(w, `jQuery1({"errorCode":"0","value":[]});`)
		}
	}))
	t.Cleanup(server.Close)

	source := zhcw.New(zhcw.ParseConfig(domain.SourceSettings{BaseURL: server.URL}, 30), server.Client())
	store := memory.NewDrawStore()

	driver := NewSyncDriver(store, source, domain.SyncSettings{})
	report, err := driver.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, report.PagesFetched, "a page with an incomplete entry is still a full page")
	assert.Equal(t, 59, report.Inserted)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, domain.StopEndOfData, report.StopReason)

	ids := store.IDs()
	require.Len(t, ids, 59)
	assert.Equal(t, int64(2024090), ids[0])
	assert.Equal(t, int64(2024031), ids[58])
	assert.NotContains(t, ids, int64(2024075))
}
