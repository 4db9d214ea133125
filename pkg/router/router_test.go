// Copyright 2026 © The Rolekit Authors
// SPDX-License-Identifier: Apache-2.0

package router

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jllopis/rolekit/pkg/sandbox"
)

func testTable(threshold float64) *Table {
	return NewTable([]Candidate{
		{Name: "eisenhower", RequiredFields: []string{"urgency", "importance"},
			Axes: Axes{X: "urgency", Y: "importance"}},
		{Name: "value_effort", RequiredFields: []string{"impact", "effort"},
			Axes: Axes{X: "effort", Y: "impact"}},
		{Name: "swot"},
	}, threshold)
}

func TestCoverage(t *testing.T) {
	items := []map[string]any{
		{"urgency": 0.9, "importance": 0.7},
		{"urgency": 0.2},
	}
	if got := Coverage(items, []string{"urgency", "importance"}); got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
	if got := Coverage(items, []string{"urgency"}); got != 1.0 {
		t.Fatalf("expected 1.0, got %v", got)
	}
	if got := Coverage(nil, []string{"urgency"}); got != 0 {
		t.Fatalf("expected 0 for empty items, got %v", got)
	}
}

func TestRouteForcedOverride(t *testing.T) {
	table := testTable(0.8)
	// Case-insensitive, and item contents are irrelevant, including empty.
	got := table.Route(Request{Mode: "force", FrameworkHint: "Swot"})
	if got == nil || got.Name != "swot" {
		t.Fatalf("expected swot, got %+v", got)
	}

	// A forced miss short-circuits: later rules are not evaluated even
	// though the items would have scored.
	got = table.Route(Request{
		Mode:          "force",
		FrameworkHint: "unknown",
		Items:         []map[string]any{{"urgency": 1, "importance": 1}},
	})
	if got != nil {
		t.Fatalf("expected nil for forced miss, got %+v", got)
	}
}

func TestRouteStructuralShortcut(t *testing.T) {
	table := testTable(0.8)
	buckets := map[string][]any{
		"S": {"fast"}, "W": {"fragile"}, "O": {"growth"}, "T": {"rivals"},
	}
	got := table.Route(Request{Buckets: buckets})
	if got == nil || got.Name != "swot" {
		t.Fatalf("expected structural shortcut to swot, got %+v", got)
	}

	// A missing or empty bucket disables the shortcut.
	incomplete := map[string][]any{"S": {"x"}, "W": {"y"}, "O": {"z"}, "T": {}}
	if got := table.Route(Request{Buckets: incomplete}); got != nil {
		t.Fatalf("expected nil for incomplete buckets, got %+v", got)
	}
}

func TestRouteCoverageScoring(t *testing.T) {
	table := NewTable([]Candidate{
		{Name: "a", RequiredFields: []string{"x"}},
		{Name: "b", RequiredFields: []string{"x", "y"}},
	}, 0.8)

	// Both score 1.0; the strict > scan keeps first declaration on a tie.
	got := table.Route(Request{Items: []map[string]any{{"x": 1, "y": 2}}})
	if got == nil || got.Name != "a" {
		t.Fatalf("expected declaration-order tie-break to a, got %+v", got)
	}

	// b is excluded at coverage 0.0, a wins at 1.0.
	got = table.Route(Request{Items: []map[string]any{{"x": 1}}})
	if got == nil || got.Name != "a" {
		t.Fatalf("expected a, got %+v", got)
	}
}

func TestRouteThreshold(t *testing.T) {
	table := testTable(0.8)
	// Half coverage is below the threshold: no candidate.
	got := table.Route(Request{Items: []map[string]any{
		{"urgency": 1, "importance": 1},
		{"note": "no fields"},
	}})
	if got != nil {
		t.Fatalf("expected nil below threshold, got %+v", got)
	}

	got = table.Route(Request{Items: []map[string]any{
		{"urgency": 1, "importance": 1},
	}})
	if got == nil || got.Name != "eisenhower" {
		t.Fatalf("expected eisenhower at full coverage, got %+v", got)
	}
}

func TestRouteEmptyItems(t *testing.T) {
	// Every candidate scores 0 on empty items; with a zero threshold the
	// first scoring candidate is returned, otherwise none is.
	if got := testTable(0.8).Route(Request{}); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
	if got := testTable(0).Route(Request{}); got == nil || got.Name != "eisenhower" {
		t.Fatalf("expected first scoring candidate at zero threshold, got %+v", got)
	}
}

func TestRouteAxesHintFallback(t *testing.T) {
	table := testTable(0.8)
	got := table.Route(Request{
		Items:    []map[string]any{{"note": "unscoreable"}},
		AxesHint: []string{"Impact"},
	})
	if got == nil || got.Name != "value_effort" {
		t.Fatalf("expected axis-hint fallback to value_effort, got %+v", got)
	}

	got = table.Route(Request{AxesHint: []string{"nothing"}})
	if got != nil {
		t.Fatalf("expected nil for unmatched hints, got %+v", got)
	}
}

func TestFromDocs(t *testing.T) {
	catalogDoc := map[string]any{
		"tools": []any{
			map[string]any{
				"name": "eisenhower",
				"detect": map[string]any{
					"required_fields": []any{"urgency", "importance"},
					"axes":            map[string]any{"x": "urgency", "y": "importance"},
				},
			},
			map[string]any{"name": "swot"},
			map[string]any{"description": "unnamed, dropped"},
		},
	}
	rulesDoc := map[string]any{
		"routing": map[string]any{
			"thresholds": map[string]any{"coverage": 0.8},
		},
	}

	table, err := FromDocs(catalogDoc, rulesDoc)
	if err != nil {
		t.Fatalf("from docs: %v", err)
	}
	if table.Threshold() != 0.8 {
		t.Fatalf("unexpected threshold: %v", table.Threshold())
	}
	candidates := table.Candidates()
	if len(candidates) != 2 {
		t.Fatalf("expected unnamed entries dropped, got %v", candidates)
	}
	if candidates[0].Axes.X != "urgency" || len(candidates[0].RequiredFields) != 2 {
		t.Fatalf("unexpected candidate: %+v", candidates[0])
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	root, err := sandbox.NewRoot(dir)
	if err != nil {
		t.Fatalf("new root: %v", err)
	}
	catalog := `tools:
  - name: eisenhower
    detect:
      required_fields: [urgency, importance]
      axes: {x: urgency, y: importance}
  - name: swot
`
	rules := `routing:
  thresholds:
    coverage: 0.8
`
	if err := os.WriteFile(filepath.Join(dir, "tools.yaml"), []byte(catalog), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "router.yaml"), []byte(rules), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	table, err := Load(root, "tools.yaml", "router.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(table.Candidates()) != 2 || table.Threshold() != 0.8 {
		t.Fatalf("unexpected table: %+v", table)
	}
}
