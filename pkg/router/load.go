// Copyright 2026 © The Rolekit Authors
// SPDX-License-Identifier: Apache-2.0

package router

import (
	"path/filepath"

	"github.com/jllopis/rolekit/pkg/document"
	"github.com/jllopis/rolekit/pkg/sandbox"
)

// Load reads the routing catalog and rules documents from inside the
// sandbox and builds the table. Paths are sandbox-relative.
func Load(root *sandbox.Root, catalogPath, rulesPath string) (*Table, error) {
	catalogDoc, err := document.LoadStructured(root, filepath.Join(root.Dir(), catalogPath))
	if err != nil {
		return nil, err
	}
	rulesDoc, err := document.LoadStructured(root, filepath.Join(root.Dir(), rulesPath))
	if err != nil {
		return nil, err
	}
	return FromDocs(catalogDoc, rulesDoc)
}
