// Copyright 2026 © The Rolekit Authors
// SPDX-License-Identifier: Apache-2.0

// Package router selects among competing tool candidates by field-coverage
// scoring against declared detection requirements. Selection is a pure
// function of the request and two static catalogs; there are no hidden
// heuristics and every verdict is traceable to its inputs.
package router

import (
	"strings"

	rkerrors "github.com/jllopis/rolekit/pkg/errors"
)

// Axes are the declared x/y axis labels of a candidate's detection block.
type Axes struct {
	X string
	Y string
}

// Candidate is one entry in the static routing catalog. Candidates are
// loaded once at process start and read-only thereafter.
type Candidate struct {
	Name           string
	Description    string
	RequiredFields []string
	Axes           Axes
}

// Request is the routing payload. Items are opaque field bags; only field
// presence matters to scoring.
type Request struct {
	Mode          string           `json:"mode,omitempty"`
	FrameworkHint string           `json:"framework_hint,omitempty"`
	Buckets       map[string][]any `json:"buckets,omitempty"`
	Items         []map[string]any `json:"items,omitempty"`
	AxesHint      []string         `json:"axes_hint,omitempty"`
}

// bucketKeys is the fixed structural shape reserved for the grid candidate.
var bucketKeys = [4]string{"S", "W", "O", "T"}

// structuralCandidate is the catalog name bound to the four-bucket shape.
const structuralCandidate = "swot"

// Table holds the routing catalog and threshold.
type Table struct {
	candidates []Candidate
	threshold  float64
}

// NewTable builds a routing table from an ordered candidate list and a
// coverage threshold. Declaration order is significant: it breaks scoring
// ties and orders the axis-hint fallback scan.
func NewTable(candidates []Candidate, threshold float64) *Table {
	return &Table{candidates: append([]Candidate(nil), candidates...), threshold: threshold}
}

// Candidates returns the catalog in declaration order.
func (t *Table) Candidates() []Candidate {
	return append([]Candidate(nil), t.candidates...)
}

// Threshold returns the configured coverage threshold.
func (t *Table) Threshold() float64 { return t.threshold }

// Coverage is the fraction of items whose every required field is present.
// An empty item set scores 0 for every candidate by definition.
func Coverage(items []map[string]any, required []string) float64 {
	if len(items) == 0 {
		return 0
	}
	covered := 0
	for _, item := range items {
		all := true
		for _, field := range required {
			if _, ok := item[field]; !ok {
				all = false
				break
			}
		}
		if all {
			covered++
		}
	}
	return float64(covered) / float64(len(items))
}

// Route applies the priority-ordered selection rules and returns at most
// one candidate. A nil return means "no applicable tool", not an error.
func (t *Table) Route(req Request) *Candidate {
	// Rule 1: forced override short-circuits everything, including misses.
	if req.Mode == "force" && req.FrameworkHint != "" {
		return t.byName(strings.ToLower(req.FrameworkHint))
	}

	// Rule 2: the four-bucket structural shape bypasses scoring.
	if hasStructuralShape(req.Buckets) {
		if c := t.byName(structuralCandidate); c != nil {
			return c
		}
	}

	// Rule 3: coverage scoring. Candidates without detection requirements
	// are skipped; strict > keeps the first maximal score on exact ties.
	var best *Candidate
	bestScore := -1.0
	for i := range t.candidates {
		c := &t.candidates[i]
		if len(c.RequiredFields) == 0 {
			continue
		}
		if score := Coverage(req.Items, c.RequiredFields); score > bestScore {
			best = c
			bestScore = score
		}
	}
	if best != nil && bestScore >= t.threshold {
		out := *best
		return &out
	}

	// Rule 4: axis-hint fallback.
	if len(req.AxesHint) > 0 {
		hints := make(map[string]bool, len(req.AxesHint))
		for _, h := range req.AxesHint {
			hints[strings.ToLower(h)] = true
		}
		for i := range t.candidates {
			c := t.candidates[i]
			x := strings.ToLower(c.Axes.X)
			y := strings.ToLower(c.Axes.Y)
			if (x != "" && hints[x]) || (y != "" && hints[y]) {
				out := c
				return &out
			}
		}
	}

	return nil
}

func (t *Table) byName(name string) *Candidate {
	for i := range t.candidates {
		if t.candidates[i].Name == name {
			out := t.candidates[i]
			return &out
		}
	}
	return nil
}

func hasStructuralShape(buckets map[string][]any) bool {
	if buckets == nil {
		return false
	}
	for _, key := range bucketKeys {
		if len(buckets[key]) == 0 {
			return false
		}
	}
	return true
}

// FromDocs builds a Table from parsed catalog and routing-rules documents.
// The catalog document holds an ordered "tools" sequence; the rules
// document holds routing.thresholds.coverage.
func FromDocs(catalogDoc, rulesDoc map[string]any) (*Table, error) {
	seq, ok := catalogDoc["tools"].([]any)
	if !ok {
		return nil, rkerrors.Newf(rkerrors.CodeParseError, "routing catalog has no tools sequence")
	}
	candidates := make([]Candidate, 0, len(seq))
	for _, entry := range seq {
		doc, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		c := Candidate{}
		if name, ok := doc["name"].(string); ok {
			c.Name = name
		}
		if desc, ok := doc["description"].(string); ok {
			c.Description = desc
		}
		if detect, ok := doc["detect"].(map[string]any); ok {
			if fields, ok := detect["required_fields"].([]any); ok {
				for _, f := range fields {
					if s, ok := f.(string); ok {
						c.RequiredFields = append(c.RequiredFields, s)
					}
				}
			}
			if axes, ok := detect["axes"].(map[string]any); ok {
				if x, ok := axes["x"].(string); ok {
					c.Axes.X = x
				}
				if y, ok := axes["y"].(string); ok {
					c.Axes.Y = y
				}
			}
		}
		if c.Name == "" {
			continue
		}
		candidates = append(candidates, c)
	}

	threshold, err := thresholdFromDoc(rulesDoc)
	if err != nil {
		return nil, err
	}
	return NewTable(candidates, threshold), nil
}

func thresholdFromDoc(rulesDoc map[string]any) (float64, error) {
	routing, ok := rulesDoc["routing"].(map[string]any)
	if !ok {
		return 0, rkerrors.Newf(rkerrors.CodeParseError, "routing rules have no routing section")
	}
	thresholds, ok := routing["thresholds"].(map[string]any)
	if !ok {
		return 0, rkerrors.Newf(rkerrors.CodeParseError, "routing rules have no thresholds section")
	}
	switch v := thresholds["coverage"].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, rkerrors.Newf(rkerrors.CodeParseError, "routing coverage threshold is not numeric")
	}
}
