// Copyright 2026 © The Rolekit Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Millisecond)
	events := []Event{
		{Kind: KindComposition, Role: "coder", Outcome: "success", CreatedAt: base},
		{Kind: KindDispatch, Role: "coder", Tool: "swot", Outcome: "failure",
			Detail: "Tool 'swot' has no implementation.", CreatedAt: base.Add(time.Millisecond)},
	}
	for _, e := range events {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	got, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	// Newest first.
	if got[0].Kind != KindDispatch || got[0].Tool != "swot" {
		t.Fatalf("unexpected first event: %+v", got[0])
	}
	if got[0].ID == "" {
		t.Fatalf("expected generated id")
	}
	if got[1].Kind != KindComposition || got[1].Role != "coder" {
		t.Fatalf("unexpected second event: %+v", got[1])
	}
}

func TestRecentLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		e := Event{Kind: KindRoute, Role: "", Outcome: "success",
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Millisecond)}
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	got, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
}
