package queue_test

import (
	"context"
	"errors"
	"testing"

	"bindery/internal/queue"
	"bindery/internal/testsupport"
)

func TestAddAndGet(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	item, err := store.Add(ctx, "Horst Fjell", "De schreeuw", "thrillers", "cli")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if item.Status != queue.StatusPending {
		t.Errorf("new item status = %q, want pending", item.Status)
	}
	if item.ShelfName != "thrillers" {
		t.Errorf("shelf name = %q", item.ShelfName)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched == nil || fetched.Author != "Horst Fjell" || fetched.Title != "De schreeuw" {
		t.Fatalf("fetched item mismatch: %+v", fetched)
	}
	if fetched.CreatedAt.IsZero() || fetched.UpdatedAt.IsZero() {
		t.Error("timestamps not persisted")
	}
}

func TestAddRejectsDuplicates(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := store.Add(ctx, "Anna Smit", "Het huis", "", "cli"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_, err := store.Add(ctx, "ANNA SMIT", "het HUIS", "", "cli")
	if !errors.Is(err, queue.ErrDuplicate) {
		t.Fatalf("duplicate add error = %v, want ErrDuplicate", err)
	}
}

func TestAddRequiresAuthorAndTitle(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	if _, err := store.Add(context.Background(), " ", "Title", "", "cli"); err == nil {
		t.Error("expected error for blank author")
	}
	if _, err := store.Add(context.Background(), "Author", "", "", "cli"); err == nil {
		t.Error("expected error for blank title")
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	item := testsupport.AddItem(t, store, "Anna Smit", "Het huis")
	item.Status = queue.StatusFound
	item.NzbURL = "https://indexer.test/get/abc"
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != queue.StatusFound {
		t.Errorf("status = %q, want found", fetched.Status)
	}
	if fetched.NzbURL != "https://indexer.test/get/abc" {
		t.Errorf("nzb url = %q", fetched.NzbURL)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	a := testsupport.AddItem(t, store, "Author One", "Book One")
	testsupport.AddItem(t, store, "Author Two", "Book Two")

	a.Status = queue.StatusImporting
	if err := store.Update(ctx, a); err != nil {
		t.Fatalf("Update: %v", err)
	}

	importing, err := store.ItemsByStatus(ctx, queue.StatusImporting)
	if err != nil {
		t.Fatalf("ItemsByStatus: %v", err)
	}
	if len(importing) != 1 || importing[0].ID != a.ID {
		t.Fatalf("importing items = %+v", importing)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("List returned %d items, want 2", len(all))
	}
}

func TestRetryResetsFailedAndSearching(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	failed := testsupport.AddItem(t, store, "Author One", "Book One")
	failed.Status = queue.StatusFailed
	failed.ErrorMessage = "download rejected"
	if err := store.Update(ctx, failed); err != nil {
		t.Fatal(err)
	}

	stuck := testsupport.AddItem(t, store, "Author Two", "Book Two")
	stuck.Status = queue.StatusSearching
	if err := store.Update(ctx, stuck); err != nil {
		t.Fatal(err)
	}

	shelved := testsupport.AddItem(t, store, "Author Three", "Book Three")
	shelved.Status = queue.StatusShelved
	if err := store.Update(ctx, shelved); err != nil {
		t.Fatal(err)
	}

	affected, err := store.Retry(ctx)
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if affected != 2 {
		t.Fatalf("Retry affected %d rows, want 2", affected)
	}

	refetched, err := store.GetByID(ctx, failed.ID)
	if err != nil {
		t.Fatal(err)
	}
	if refetched.Status != queue.StatusPending {
		t.Errorf("failed item status = %q, want pending", refetched.Status)
	}
	if refetched.ErrorMessage != "" {
		t.Errorf("error message not cleared: %q", refetched.ErrorMessage)
	}

	untouched, err := store.GetByID(ctx, shelved.ID)
	if err != nil {
		t.Fatal(err)
	}
	if untouched.Status != queue.StatusShelved {
		t.Errorf("shelved item status = %q, want shelved", untouched.Status)
	}
}

func TestRetryKeepsNzbURL(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	item := testsupport.AddItem(t, store, "Anna Smit", "Het huis")
	item.Status = queue.StatusFailed
	item.NzbURL = "https://indexer.test/get/abc"
	item.ErrorMessage = "submission failed"
	if err := store.Update(ctx, item); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Retry(ctx, item.ID); err != nil {
		t.Fatalf("Retry: %v", err)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fetched.NzbURL != "https://indexer.test/get/abc" {
		t.Errorf("nzb url lost on retry: %q", fetched.NzbURL)
	}
}

func TestResetStuckSearching(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	item := testsupport.AddItem(t, store, "Anna Smit", "Het huis")
	item.Status = queue.StatusSearching
	if err := store.Update(ctx, item); err != nil {
		t.Fatal(err)
	}

	affected, err := store.ResetStuckSearching(ctx)
	if err != nil {
		t.Fatalf("ResetStuckSearching: %v", err)
	}
	if affected != 1 {
		t.Fatalf("affected = %d, want 1", affected)
	}
}

func TestRemoveDeletesItemAndLogs(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	item := testsupport.AddItem(t, store, "Anna Smit", "Het huis")
	if err := store.AppendLog(ctx, &item.ID, "info", "search started"); err != nil {
		t.Fatalf("AppendLog: %v", err)
	}

	removed, err := store.Remove(ctx, item.ID)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !removed {
		t.Fatal("Remove reported no rows")
	}

	logs, err := store.Logs(ctx, &item.ID, 10)
	if err != nil {
		t.Fatalf("Logs: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("logs not cascaded: %+v", logs)
	}

	removed, err = store.Remove(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Error("Remove of missing item should report false")
	}
}

func TestLogsNewestFirst(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	item := testsupport.AddItem(t, store, "Anna Smit", "Het huis")
	for _, msg := range []string{"first", "second", "third"} {
		if err := store.AppendLog(ctx, &item.ID, "info", msg); err != nil {
			t.Fatal(err)
		}
	}

	logs, err := store.Logs(ctx, &item.ID, 2)
	if err != nil {
		t.Fatalf("Logs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("got %d logs, want 2", len(logs))
	}
	if logs[0].Message != "third" || logs[1].Message != "second" {
		t.Errorf("log order wrong: %+v", logs)
	}
}

func TestHealthCounts(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	testsupport.AddItem(t, store, "Author One", "Book One")
	shelved := testsupport.AddItem(t, store, "Author Two", "Book Two")
	shelved.Status = queue.StatusShelved
	if err := store.Update(ctx, shelved); err != nil {
		t.Fatal(err)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Total != 2 || health.Pending != 1 || health.Shelved != 1 {
		t.Errorf("health = %+v", health)
	}
}

func TestCheckHealth(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	health, err := store.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable || !health.TableExists {
		t.Errorf("health = %+v", health)
	}
	if !health.IntegrityCheck {
		t.Error("integrity check failed")
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := queue.ParseStatus(" Pending "); !ok || status != queue.StatusPending {
		t.Errorf("ParseStatus(Pending) = %q, %v", status, ok)
	}
	if _, ok := queue.ParseStatus("bogus"); ok {
		t.Error("ParseStatus should reject unknown values")
	}
}
