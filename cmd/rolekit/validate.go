// Copyright 2026 © The Rolekit Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jllopis/rolekit/pkg/config"
	"github.com/jllopis/rolekit/pkg/role"
)

type validateResult struct {
	Roles   []checkResult `json:"roles"`
	Overall string        `json:"overall"`
}

type checkResult struct {
	Name        string            `json:"name"`
	Status      string            `json:"status"` // "ok", "warn", "error"
	Message     string            `json:"message,omitempty"`
	Diagnostics []role.Diagnostic `json:"diagnostics,omitempty"`
}

// runValidate composes every given role document (all discovered roles
// when none are given) and reports composition errors and diagnostics.
// Diagnostics downgrade a role to "warn"; composition failure is "error".
func runValidate(ctx context.Context, cfg *config.Config, logger *slog.Logger, global globalFlags, args []string) {
	engine, cleanup, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		fatal(err)
	}
	defer cleanup()

	targets := args
	if len(targets) == 0 {
		targets, err = engine.Roles(ctx)
		if err != nil {
			fatal(err)
		}
		if len(targets) == 0 {
			fatal(fmt.Errorf("no role documents found under %q", cfg.Sandbox.Root))
		}
	}

	result := validateResult{Roles: []checkResult{}}
	hasError := false
	hasWarn := false

	for _, target := range targets {
		check := checkResult{Name: target, Status: "ok"}
		agent, err := composeArg(ctx, engine, target)
		switch {
		case err != nil:
			check.Status = "error"
			check.Message = err.Error()
			hasError = true
		case len(agent.Diagnostics) > 0:
			check.Status = "warn"
			check.Diagnostics = agent.Diagnostics
			hasWarn = true
		}
		result.Roles = append(result.Roles, check)
	}

	if hasError {
		result.Overall = "error"
	} else if hasWarn {
		result.Overall = "warn"
	} else {
		result.Overall = "ok"
	}

	if global.JSON {
		printJSON(result)
	} else {
		for _, check := range result.Roles {
			fmt.Printf("%-7s %s", check.Status, check.Name)
			if check.Message != "" {
				fmt.Printf(": %s", check.Message)
			}
			fmt.Println()
			for _, d := range check.Diagnostics {
				fmt.Printf("        %s: %s\n", d.Kind, d.Detail)
			}
		}
		fmt.Printf("overall: %s\n", result.Overall)
	}

	if hasError {
		os.Exit(1)
	}
}
