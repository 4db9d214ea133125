// Copyright 2026 © The Rolekit Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"testing"
)

func TestDefaultCatalogNames(t *testing.T) {
	cat := Default()
	for _, name := range []string{"swot", "eisenhower", "value_effort", "prompt_cache"} {
		if _, ok := cat.Lookup(name); !ok {
			t.Fatalf("expected %q in default catalog", name)
		}
	}
	if _, ok := cat.Lookup("not_a_tool"); ok {
		t.Fatalf("unexpected catalog entry")
	}
}

func TestSWOT(t *testing.T) {
	input := map[string]any{
		"buckets": map[string]any{
			"S": []any{"fast", "typed"},
			"W": []any{"verbose"},
		},
	}
	out, err := SWOT(context.Background(), []any{input})
	if err != nil {
		t.Fatalf("swot: %v", err)
	}
	result := out.(map[string]any)
	if result["layout"] != "swot_grid" || result["framework"] != "SWOT" {
		t.Fatalf("unexpected result shape: %v", result)
	}
	meta := result["meta"].(map[string]any)
	if meta["total_items"] != 3 {
		t.Fatalf("expected 3 items, got %v", meta["total_items"])
	}
	sections := result["sections"].(map[string]any)
	// Missing buckets materialize as empty sections.
	if got := sections["O"].([]any); len(got) != 0 {
		t.Fatalf("expected empty O section, got %v", got)
	}
}

func TestEisenhowerQuadrants(t *testing.T) {
	input := map[string]any{
		"items": []any{
			map[string]any{"id": "a", "title": "Fire", "urgency": 0.9, "importance": 0.9},
			map[string]any{"id": "b", "urgency": 0.1, "importance": 0.9},
			map[string]any{"id": "c", "urgency": 0.9, "importance": 0.1},
			map[string]any{"id": "d"},
		},
	}
	out, err := Eisenhower(context.Background(), []any{input})
	if err != nil {
		t.Fatalf("eisenhower: %v", err)
	}
	result := out.(map[string]any)
	cards := result["cards"].([]map[string]any)
	wantQuadrants := []string{"Q1", "Q2", "Q3", "Q4"}
	for i, card := range cards {
		if card["quadrant"] != wantQuadrants[i] {
			t.Fatalf("card %d: expected %s, got %v", i, wantQuadrants[i], card["quadrant"])
		}
	}
	if cards[3]["title"] != "Untitled" {
		t.Fatalf("expected Untitled fallback, got %v", cards[3]["title"])
	}
	meta := result["meta"].(map[string]any)
	dist := meta["quadrant_distribution"].(map[string]int)
	if dist["Q1"] != 1 || dist["Q4"] != 1 {
		t.Fatalf("unexpected distribution: %v", dist)
	}
}

func TestValueEffortQuadrants(t *testing.T) {
	input := map[string]any{
		"items": []any{
			map[string]any{"impact": 0.9, "effort": 0.1}, // quick win
			map[string]any{"impact": 0.9, "effort": 0.9}, // major project
			map[string]any{"impact": 0.1, "effort": 0.9}, // thankless
		},
	}
	out, err := ValueEffort(context.Background(), []any{input})
	if err != nil {
		t.Fatalf("value_effort: %v", err)
	}
	result := out.(map[string]any)
	cards := result["cards"].([]map[string]any)
	if cards[0]["quadrant"] != "Q1" || cards[1]["quadrant"] != "Q2" || cards[2]["quadrant"] != "Q4" {
		t.Fatalf("unexpected quadrants: %v", cards)
	}
	axes := result["axes"].(map[string]any)
	if axes["x"] != "effort" || axes["y"] != "impact" {
		t.Fatalf("unexpected axes: %v", axes)
	}
}

func TestFrameworksTolerateMissingInput(t *testing.T) {
	for name, fn := range Default() {
		if _, err := fn(context.Background(), nil); err != nil {
			t.Fatalf("%s should tolerate empty input: %v", name, err)
		}
	}
}
