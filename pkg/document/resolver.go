// Copyright 2026 © The Rolekit Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"os"
	"path/filepath"
	"strings"

	rkerrors "github.com/jllopis/rolekit/pkg/errors"
	"github.com/jllopis/rolekit/pkg/sandbox"
)

// Resolve turns a relative import reference plus a base location into a
// verified, contained, existing absolute path. It is the single chokepoint
// all cross-file references pass through.
//
// baseLocation may be either a directory or a file path: when it is not an
// existing directory its parent directory is used, so callers can pass the
// role file path and the role directory interchangeably.
func Resolve(root *sandbox.Root, baseLocation, ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", rkerrors.New(rkerrors.CodeInvalidImport, "import reference must be a non-empty string", nil)
	}

	baseDir := baseLocation
	if info, err := os.Stat(baseLocation); err != nil || !info.IsDir() {
		baseDir = filepath.Dir(baseLocation)
	}

	candidate := filepath.Join(baseDir, ref)
	if err := root.AdmitResolved(candidate); err != nil {
		return "", rkerrors.Newf(rkerrors.CodeInvalidImport,
			"import %q escapes the sandbox root", ref)
	}
	if _, err := os.Stat(candidate); err != nil {
		// Report the original reference, not the resolved absolute path.
		return "", rkerrors.Newf(rkerrors.CodeMissingImport,
			"import %q was not found", ref)
	}
	return candidate, nil
}
