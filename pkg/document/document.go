// Copyright 2026 © The Rolekit Authors
// SPDX-License-Identifier: Apache-2.0

// Package document loads declarative YAML and plain-text documents from
// inside the sandbox and resolves cross-file references.
package document

import (
	"os"

	"gopkg.in/yaml.v3"

	rkerrors "github.com/jllopis/rolekit/pkg/errors"
	"github.com/jllopis/rolekit/pkg/sandbox"
)

// LoadStructured parses the file at path into a generic key/value tree.
// A document whose root is not a mapping yields an empty mapping rather
// than an error. Parse failures carry the sandbox-relative path so the
// message never leaks an absolute location.
func LoadStructured(root *sandbox.Root, path string) (map[string]any, error) {
	if err := root.AdmitResolved(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rkerrors.New(rkerrors.CodeParseError, "failed to read "+root.Rel(path), err)
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, rkerrors.New(rkerrors.CodeParseError, "failed to parse "+root.Rel(path), err)
	}
	mapping, ok := doc.(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}
	return mapping, nil
}

// LoadText returns the raw file content decoded as text, with no
// interpretation.
func LoadText(root *sandbox.Root, path string) (string, error) {
	if err := root.AdmitResolved(path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", rkerrors.New(rkerrors.CodeParseError, "failed to read "+root.Rel(path), err)
	}
	return string(data), nil
}
