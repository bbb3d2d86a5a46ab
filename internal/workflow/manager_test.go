package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bindery/internal/queue"
	"bindery/internal/services"
	"bindery/internal/services/calibreweb"
	"bindery/internal/services/spotweb"
	"bindery/internal/testsupport"
)

type fakeSearcher struct {
	mu      sync.Mutex
	release *spotweb.Release
	err     error
	calls   int
}

func (f *fakeSearcher) Search(ctx context.Context, author, title string) (*spotweb.Release, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.release, f.err
}

type submission struct {
	nzbURL  string
	jobName string
}

type fakeSubmitter struct {
	mu    sync.Mutex
	err   error
	calls []submission
}

func (f *fakeSubmitter) Submit(ctx context.Context, nzbURL, jobName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, submission{nzbURL: nzbURL, jobName: jobName})
	return f.err
}

type fakeCatalog struct {
	book     *calibreweb.Book
	bookErr  error
	shelf    *calibreweb.Shelf
	shelfErr error
	addErr   error
	added    [][2]int64
}

func (f *fakeCatalog) FindBook(ctx context.Context, author, title string) (*calibreweb.Book, error) {
	return f.book, f.bookErr
}

func (f *fakeCatalog) ResolveShelf(ctx context.Context, name string) (*calibreweb.Shelf, error) {
	return f.shelf, f.shelfErr
}

func (f *fakeCatalog) Shelves(ctx context.Context) ([]calibreweb.Shelf, error) {
	if f.shelf == nil {
		return nil, nil
	}
	return []calibreweb.Shelf{*f.shelf}, nil
}

func (f *fakeCatalog) AddToShelf(ctx context.Context, bookID, shelfID int64) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, [2]int64{bookID, shelfID})
	return nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	found   int
	shelved int
	failed  int
}

func (f *fakeNotifier) NotifyBookFound(context.Context, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.found++
	return nil
}

func (f *fakeNotifier) NotifyBookShelved(context.Context, string, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shelved++
	return nil
}

func (f *fakeNotifier) NotifyItemFailed(context.Context, string, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed++
	return nil
}

func (f *fakeNotifier) NotifyError(context.Context, error, string) error { return nil }

func (f *fakeNotifier) TestNotification(context.Context) error { return nil }

type managerFixture struct {
	manager   *Manager
	store     *queue.Store
	searcher  *fakeSearcher
	submitter *fakeSubmitter
	catalog   *fakeCatalog
	notifier  *fakeNotifier
}

func newFixture(t *testing.T, withCatalog bool) *managerFixture {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	fx := &managerFixture{
		store:     store,
		searcher:  &fakeSearcher{},
		submitter: &fakeSubmitter{},
		notifier:  &fakeNotifier{},
	}
	var catalog Catalog
	if withCatalog {
		fx.catalog = &fakeCatalog{}
		catalog = fx.catalog
	}
	fx.manager = NewManagerWithClients(cfg, store, nil, fx.notifier, fx.searcher, fx.submitter, catalog)
	return fx
}

func mustGet(t *testing.T, store *queue.Store, id int64) *queue.Item {
	t.Helper()
	item, err := store.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if item == nil {
		t.Fatalf("item %d not found", id)
	}
	return item
}

func TestSearchSweepNoShelfGoesStraightToFound(t *testing.T) {
	fx := newFixture(t, false)
	fx.searcher.release = &spotweb.Release{Title: "Horst Fjell - De schreeuw EPUB", NzbURL: "http://spotweb.test/nzb/1"}
	item := testsupport.AddItem(t, fx.store, "Horst Fjell", "De schreeuw")

	fx.manager.runSearchSweep(context.Background())

	got := mustGet(t, fx.store, item.ID)
	if got.Status != queue.StatusFound {
		t.Fatalf("status = %s, want %s", got.Status, queue.StatusFound)
	}
	if got.NzbURL != "http://spotweb.test/nzb/1" {
		t.Errorf("nzb url = %q", got.NzbURL)
	}
	if got.LastSearch == nil {
		t.Error("last search timestamp not recorded")
	}
	if len(fx.submitter.calls) != 1 {
		t.Fatalf("submissions = %d, want 1", len(fx.submitter.calls))
	}
	if fx.submitter.calls[0].jobName != "Horst Fjell - De schreeuw" {
		t.Errorf("job name = %q", fx.submitter.calls[0].jobName)
	}
	if fx.notifier.found != 1 {
		t.Errorf("found notifications = %d, want 1", fx.notifier.found)
	}
}

func TestSearchSweepShelfRequestedEntersImporting(t *testing.T) {
	fx := newFixture(t, true)
	fx.searcher.release = &spotweb.Release{Title: "match", NzbURL: "http://spotweb.test/nzb/2"}

	item, err := fx.store.Add(context.Background(), "Horst Fjell", "De schreeuw", "Thrillers", "test")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	fx.manager.runSearchSweep(context.Background())

	got := mustGet(t, fx.store, item.ID)
	if got.Status != queue.StatusImporting {
		t.Fatalf("status = %s, want %s", got.Status, queue.StatusImporting)
	}
}

func TestSearchSweepShelfWithoutCatalogFallsBackToFound(t *testing.T) {
	fx := newFixture(t, false)
	fx.searcher.release = &spotweb.Release{Title: "match", NzbURL: "http://spotweb.test/nzb/3"}

	item, err := fx.store.Add(context.Background(), "Horst Fjell", "De schreeuw", "Thrillers", "test")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	fx.manager.runSearchSweep(context.Background())

	got := mustGet(t, fx.store, item.ID)
	if got.Status != queue.StatusFound {
		t.Fatalf("status = %s, want %s", got.Status, queue.StatusFound)
	}
}

func TestSearchSweepNoMatchStaysPending(t *testing.T) {
	fx := newFixture(t, false)
	item := testsupport.AddItem(t, fx.store, "Horst Fjell", "De schreeuw")

	fx.manager.runSearchSweep(context.Background())

	got := mustGet(t, fx.store, item.ID)
	if got.Status != queue.StatusPending {
		t.Fatalf("status = %s, want %s", got.Status, queue.StatusPending)
	}
	if got.ErrorMessage != "no matching release found" {
		t.Errorf("error message = %q", got.ErrorMessage)
	}
	if len(fx.submitter.calls) != 0 {
		t.Errorf("submissions = %d, want 0", len(fx.submitter.calls))
	}
}

func TestSearchSweepSubmitFailureKeepsNzbURL(t *testing.T) {
	fx := newFixture(t, false)
	fx.searcher.release = &spotweb.Release{Title: "match", NzbURL: "http://spotweb.test/nzb/4"}
	fx.submitter.err = services.Wrap(services.ErrTransient, "sabnzbd", "submit", "queue full", nil)
	item := testsupport.AddItem(t, fx.store, "Horst Fjell", "De schreeuw")

	fx.manager.runSearchSweep(context.Background())

	got := mustGet(t, fx.store, item.ID)
	if got.Status != queue.StatusFailed {
		t.Fatalf("status = %s, want %s", got.Status, queue.StatusFailed)
	}
	if got.NzbURL != "http://spotweb.test/nzb/4" {
		t.Errorf("nzb url = %q, want the located link preserved", got.NzbURL)
	}
	if fx.notifier.failed != 1 {
		t.Errorf("failure notifications = %d, want 1", fx.notifier.failed)
	}

	// An explicit retry returns the item to the pool without losing the link.
	if _, err := fx.store.Retry(context.Background(), item.ID); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	got = mustGet(t, fx.store, item.ID)
	if got.Status != queue.StatusPending {
		t.Fatalf("status after retry = %s, want %s", got.Status, queue.StatusPending)
	}
	if got.NzbURL != "http://spotweb.test/nzb/4" {
		t.Errorf("nzb url after retry = %q", got.NzbURL)
	}
}

func TestSearchSweepSearchErrorFailsItem(t *testing.T) {
	fx := newFixture(t, false)
	fx.searcher.err = services.Wrap(services.ErrTransient, "spotweb", "search", "index unreachable", nil)
	item := testsupport.AddItem(t, fx.store, "Horst Fjell", "De schreeuw")

	fx.manager.runSearchSweep(context.Background())

	got := mustGet(t, fx.store, item.ID)
	if got.Status != queue.StatusFailed {
		t.Fatalf("status = %s, want %s", got.Status, queue.StatusFailed)
	}
	if got.ErrorMessage == "" {
		t.Error("error message not recorded")
	}
}

func TestImportSweepShelvesBook(t *testing.T) {
	fx := newFixture(t, true)
	fx.catalog.book = &calibreweb.Book{ID: 42, Title: "De schreeuw", Author: "Horst Fjell"}
	fx.catalog.shelf = &calibreweb.Shelf{ID: 7, Name: "Thrillers"}

	item, err := fx.store.Add(context.Background(), "Horst Fjell", "De schreeuw", "Thrillers", "test")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	item.Status = queue.StatusImporting
	if err := fx.store.Update(context.Background(), item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fx.manager.runImportSweep(context.Background())

	got := mustGet(t, fx.store, item.ID)
	if got.Status != queue.StatusShelved {
		t.Fatalf("status = %s, want %s", got.Status, queue.StatusShelved)
	}
	if got.ErrorMessage != "" {
		t.Errorf("error message = %q, want empty", got.ErrorMessage)
	}
	if len(fx.catalog.added) != 1 || fx.catalog.added[0] != [2]int64{42, 7} {
		t.Errorf("shelf additions = %v", fx.catalog.added)
	}
	if fx.notifier.shelved != 1 {
		t.Errorf("shelved notifications = %d, want 1", fx.notifier.shelved)
	}
}

func TestImportSweepBookNotInCatalogIsIdempotent(t *testing.T) {
	fx := newFixture(t, true)

	item, err := fx.store.Add(context.Background(), "Horst Fjell", "De schreeuw", "Thrillers", "test")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	item.Status = queue.StatusImporting
	if err := fx.store.Update(context.Background(), item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	logsBefore, err := fx.store.Logs(context.Background(), &item.ID, 100)
	if err != nil {
		t.Fatalf("Logs: %v", err)
	}

	fx.manager.runImportSweep(context.Background())
	fx.manager.runImportSweep(context.Background())

	got := mustGet(t, fx.store, item.ID)
	if got.Status != queue.StatusImporting {
		t.Fatalf("status = %s, want %s", got.Status, queue.StatusImporting)
	}

	logsAfter, err := fx.store.Logs(context.Background(), &item.ID, 100)
	if err != nil {
		t.Fatalf("Logs: %v", err)
	}
	if len(logsAfter) != len(logsBefore) {
		t.Errorf("log entries grew from %d to %d while waiting on the catalog", len(logsBefore), len(logsAfter))
	}
}

func TestImportSweepNoShelfResolvesToFound(t *testing.T) {
	fx := newFixture(t, true)
	item := testsupport.AddItem(t, fx.store, "Horst Fjell", "De schreeuw")
	item.Status = queue.StatusImporting
	if err := fx.store.Update(context.Background(), item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fx.manager.runImportSweep(context.Background())

	got := mustGet(t, fx.store, item.ID)
	if got.Status != queue.StatusFound {
		t.Fatalf("status = %s, want %s", got.Status, queue.StatusFound)
	}
}

func TestImportSweepUnknownShelfKeepsRetrying(t *testing.T) {
	fx := newFixture(t, true)
	fx.catalog.book = &calibreweb.Book{ID: 42, Title: "De schreeuw", Author: "Horst Fjell"}

	item, err := fx.store.Add(context.Background(), "Horst Fjell", "De schreeuw", "Nonexistent", "test")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	item.Status = queue.StatusImporting
	if err := fx.store.Update(context.Background(), item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fx.manager.runImportSweep(context.Background())
	fx.manager.runImportSweep(context.Background())

	got := mustGet(t, fx.store, item.ID)
	if got.Status != queue.StatusImporting {
		t.Fatalf("status = %s, want %s", got.Status, queue.StatusImporting)
	}
	if got.ErrorMessage == "" {
		t.Error("missing shelf not surfaced on the item")
	}
}

func TestImportSweepRetryableErrorStaysImporting(t *testing.T) {
	fx := newFixture(t, true)
	fx.catalog.bookErr = services.Wrap(services.ErrAuth, "calibreweb", "search", "session rejected", nil)

	item, err := fx.store.Add(context.Background(), "Horst Fjell", "De schreeuw", "Thrillers", "test")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	item.Status = queue.StatusImporting
	if err := fx.store.Update(context.Background(), item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fx.manager.runImportSweep(context.Background())

	got := mustGet(t, fx.store, item.ID)
	if got.Status != queue.StatusImporting {
		t.Fatalf("status = %s, want %s", got.Status, queue.StatusImporting)
	}
	if fx.notifier.failed != 0 {
		t.Errorf("failure notifications = %d, want 0", fx.notifier.failed)
	}
}

func TestImportSweepNonRetryableErrorFailsItem(t *testing.T) {
	fx := newFixture(t, true)
	fx.catalog.bookErr = services.Wrap(services.ErrConfiguration, "calibreweb", "search", "bad base url", nil)

	item, err := fx.store.Add(context.Background(), "Horst Fjell", "De schreeuw", "Thrillers", "test")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	item.Status = queue.StatusImporting
	if err := fx.store.Update(context.Background(), item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fx.manager.runImportSweep(context.Background())

	got := mustGet(t, fx.store, item.ID)
	if got.Status != queue.StatusFailed {
		t.Fatalf("status = %s, want %s", got.Status, queue.StatusFailed)
	}
}

func TestTriggerSearchRejectedWhileRunning(t *testing.T) {
	fx := newFixture(t, false)

	if err := fx.manager.TriggerSearch(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("TriggerSearch before Start = %v, want ErrNotRunning", err)
	}

	if err := fx.manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer fx.manager.Stop()

	// Occupy the guard the way an in-flight sweep would.
	if !fx.manager.searchRunning.CompareAndSwap(false, true) {
		t.Fatal("could not claim the sweep guard")
	}
	defer fx.manager.searchRunning.Store(false)

	if err := fx.manager.TriggerSearch(); !errors.Is(err, ErrSearchRunning) {
		t.Fatalf("TriggerSearch during sweep = %v, want ErrSearchRunning", err)
	}
}

func TestConcurrentSweepSkippedByGuard(t *testing.T) {
	fx := newFixture(t, false)
	testsupport.AddItem(t, fx.store, "Horst Fjell", "De schreeuw")

	if !fx.manager.searchRunning.CompareAndSwap(false, true) {
		t.Fatal("could not claim the sweep guard")
	}
	fx.manager.runSearchSweep(context.Background())
	fx.manager.searchRunning.Store(false)

	if fx.searcher.calls != 0 {
		t.Errorf("searcher calls = %d, want 0 while the guard is held", fx.searcher.calls)
	}
}

func TestStartResetsInterruptedSearches(t *testing.T) {
	fx := newFixture(t, false)
	item := testsupport.AddItem(t, fx.store, "Horst Fjell", "De schreeuw")
	item.Status = queue.StatusSearching
	if err := fx.store.Update(context.Background(), item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// Hold the guard so the startup sweep cannot immediately re-claim the
	// item before we observe its state.
	fx.manager.searchRunning.Store(true)
	if err := fx.manager.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer fx.manager.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for {
		got := mustGet(t, fx.store, item.ID)
		if got.Status == queue.StatusPending {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("status = %s, want %s", got.Status, queue.StatusPending)
		}
		time.Sleep(10 * time.Millisecond)
	}
	fx.manager.searchRunning.Store(false)
}

func TestStatusReportsQueueStats(t *testing.T) {
	fx := newFixture(t, false)
	testsupport.AddItem(t, fx.store, "Horst Fjell", "De schreeuw")
	testsupport.AddItem(t, fx.store, "Ada Voss", "Nachtlicht")

	summary := fx.manager.Status(context.Background())
	if summary.Running {
		t.Error("running = true before Start")
	}
	if summary.QueueStats[queue.StatusPending] != 2 {
		t.Errorf("pending count = %d, want 2", summary.QueueStats[queue.StatusPending])
	}
}
