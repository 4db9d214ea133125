// Copyright 2026 © The Rolekit Authors
// SPDX-License-Identifier: Apache-2.0

// Package catalog holds the built-in tool implementations the composer
// binds declared tools against. The catalog is assembled once at startup
// and treated as immutable.
package catalog

import (
	"context"
	"fmt"

	"github.com/jllopis/rolekit/pkg/tool"
)

func inputMapping(args []any) map[string]any {
	if len(args) == 0 {
		return map[string]any{}
	}
	if m, ok := args[0].(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func itemsOf(input map[string]any) []map[string]any {
	seq, ok := input["items"].([]any)
	if !ok {
		return nil
	}
	items := make([]map[string]any, 0, len(seq))
	for _, entry := range seq {
		if m, ok := entry.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items
}

func uiPrefs(input map[string]any) map[string]any {
	if prefs, ok := input["prefs"].(map[string]any); ok {
		if ui, ok := prefs["ui"].(map[string]any); ok {
			return ui
		}
	}
	return map[string]any{"style": "cards", "theme": "neutral"}
}

func scalarValue(item map[string]any, field string) float64 {
	switch v := item[field].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

// quadrant describes one cell of a 2x2 analysis grid.
type quadrant struct {
	X    string `json:"x"`
	Y    string `json:"y"`
	Name string `json:"name"`
}

func quadrantize(items []map[string]any, xField, yField string,
	assign func(x, y float64) string) ([]map[string]any, map[string]int) {
	cards := make([]map[string]any, 0, len(items))
	counts := map[string]int{"Q1": 0, "Q2": 0, "Q3": 0, "Q4": 0}
	for _, item := range items {
		x := scalarValue(item, xField)
		y := scalarValue(item, yField)
		q := assign(x, y)
		counts[q]++

		id, ok := item["id"]
		if !ok {
			id = fmt.Sprintf("item_%d", len(cards))
		}
		title, ok := item["title"]
		if !ok {
			title = "Untitled"
		}
		cards = append(cards, map[string]any{
			"id":       id,
			"title":    title,
			"quadrant": q,
			"x":        x,
			"y":        y,
			"data":     item,
		})
	}
	return cards, counts
}

// SWOT builds the four-section grid from the request buckets.
func SWOT(_ context.Context, args []any) (any, error) {
	input := inputMapping(args)
	buckets, _ := input["buckets"].(map[string]any)

	sections := map[string]any{}
	counts := map[string]int{}
	total := 0
	for _, key := range []string{"S", "W", "O", "T"} {
		entries, _ := buckets[key].([]any)
		if entries == nil {
			entries = []any{}
		}
		sections[key] = entries
		counts[key] = len(entries)
		total += len(entries)
	}

	return map[string]any{
		"layout":    "swot_grid",
		"framework": "SWOT",
		"sections":  sections,
		"ui":        uiPrefs(input),
		"meta": map[string]any{
			"total_items":    total,
			"section_counts": counts,
		},
	}, nil
}

// Eisenhower places items on the urgency/importance quadrant grid.
func Eisenhower(_ context.Context, args []any) (any, error) {
	input := inputMapping(args)
	items := itemsOf(input)

	cards, counts := quadrantize(items, "urgency", "importance", func(x, y float64) string {
		switch {
		case x >= 0.5 && y >= 0.5:
			return "Q1"
		case x < 0.5 && y >= 0.5:
			return "Q2"
		case x >= 0.5 && y < 0.5:
			return "Q3"
		default:
			return "Q4"
		}
	})

	return map[string]any{
		"layout":    "quadrant",
		"framework": "eisenhower",
		"axes":      map[string]any{"x": "urgency", "y": "importance"},
		"quadrants": map[string]quadrant{
			"Q1": {X: "high", Y: "high", Name: "Do Now"},
			"Q2": {X: "low", Y: "high", Name: "Schedule"},
			"Q3": {X: "high", Y: "low", Name: "Delegate"},
			"Q4": {X: "low", Y: "low", Name: "Eliminate"},
		},
		"cards": cards,
		"ui":    uiPrefs(input),
		"meta": map[string]any{
			"total_items":           len(items),
			"quadrant_distribution": counts,
		},
	}, nil
}

// ValueEffort places items on the effort/impact quadrant grid.
func ValueEffort(_ context.Context, args []any) (any, error) {
	input := inputMapping(args)
	items := itemsOf(input)

	cards, counts := quadrantize(items, "effort", "impact", func(x, y float64) string {
		switch {
		case y >= 0.5 && x < 0.5:
			return "Q1"
		case y >= 0.5 && x >= 0.5:
			return "Q2"
		case y < 0.5 && x < 0.5:
			return "Q3"
		default:
			return "Q4"
		}
	})

	return map[string]any{
		"layout":    "quadrant",
		"framework": "value_effort",
		"axes":      map[string]any{"x": "effort", "y": "impact"},
		"quadrants": map[string]quadrant{
			"Q1": {X: "low", Y: "high", Name: "Quick Wins"},
			"Q2": {X: "high", Y: "high", Name: "Major Projects"},
			"Q3": {X: "low", Y: "low", Name: "Fill-ins"},
			"Q4": {X: "high", Y: "low", Name: "Thankless Tasks"},
		},
		"cards": cards,
		"ui":    uiPrefs(input),
		"meta": map[string]any{
			"total_items":           len(items),
			"quadrant_distribution": counts,
		},
	}, nil
}

var _ tool.Func = SWOT
