package main

import (
	"testing"

	"bindery/internal/ipc"
)

func TestBuildQueueStatusRowsFollowsLifecycleOrder(t *testing.T) {
	stats := map[string]int{
		"shelved":   4,
		"pending":   2,
		"importing": 1,
	}

	rows := buildQueueStatusRows(stats)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	order := []string{"pending", "importing", "shelved"}
	for i, want := range order {
		if rows[i][0] != want {
			t.Errorf("row %d: expected status %q, got %q", i, want, rows[i][0])
		}
	}
	if rows[0][1] != "2" {
		t.Errorf("expected pending count 2, got %s", rows[0][1])
	}
}

func TestBuildQueueStatusRowsEmpty(t *testing.T) {
	if rows := buildQueueStatusRows(nil); rows != nil {
		t.Fatalf("expected nil rows for empty stats, got %v", rows)
	}
}

func TestBuildWishlistRows(t *testing.T) {
	items := []ipc.QueueItem{
		{ID: 7, Author: "Horst Fjell", Title: "De schreeuw", Status: "found"},
		{ID: 8, Author: "A", Title: "B", Status: "failed", ShelfName: "Thrillers", ErrorMessage: "submit failed"},
	}

	rows := buildWishlistRows(items)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][4] != "-" {
		t.Errorf("expected placeholder shelf, got %q", rows[0][4])
	}
	if rows[1][4] != "Thrillers" {
		t.Errorf("expected shelf name, got %q", rows[1][4])
	}
	if rows[1][5] != "submit failed" {
		t.Errorf("expected error message column, got %q", rows[1][5])
	}
}

func TestTruncateLongValues(t *testing.T) {
	long := "this error message is far too long to display inside a single table column"
	got := truncate(long, 20)
	if len(got) != 20 {
		t.Fatalf("expected truncated length 20, got %d (%q)", len(got), got)
	}
	if got[17:] != "..." {
		t.Errorf("expected ellipsis suffix, got %q", got)
	}
	if truncate("short", 20) != "short" {
		t.Errorf("short values should pass through unchanged")
	}
}
