// Copyright 2026 © The Rolekit Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"

	"github.com/jllopis/rolekit/pkg/tool"
)

// Default returns the static implementation catalog. It maps every
// declared tool name the stock role documents use to its implementation;
// names absent here compose as unbound tools.
func Default() tool.Catalog {
	return tool.Catalog{
		"swot":                 SWOT,
		"eisenhower":           Eisenhower,
		"value_effort":         ValueEffort,
		"prompt_cache":         promptCache,
		"file_manager":         fileManager,
		"user_profile_manager": userProfileManager,
		"create_learning_plan": createLearningPlan,
		"find_analogy":         findAnalogy,
		"generate_quiz":        generateQuiz,
		"evaluate_answer":      evaluateAnswer,
	}
}

// The utility tools answer with fixed shapes; they exist so stock roles
// compose fully bound and exercise the dispatch path end to end.

func promptCache(_ context.Context, _ []any) (any, error) {
	return map[string]any{"status": "success", "message": "Prompt cache accessed."}, nil
}

func fileManager(_ context.Context, _ []any) (any, error) {
	return map[string]any{"status": "success", "files": []any{"file1.txt", "file2.txt"}}, nil
}

func userProfileManager(_ context.Context, _ []any) (any, error) {
	return map[string]any{
		"status":       "success",
		"user_profile": map[string]any{"name": "Jules", "preferences": "Python"},
	}, nil
}

func createLearningPlan(_ context.Context, _ []any) (any, error) {
	return map[string]any{
		"status": "success",
		"plan":   "1. Learn basics. 2. Practice. 3. Advanced topics.",
	}, nil
}

func findAnalogy(_ context.Context, _ []any) (any, error) {
	return map[string]any{
		"status":  "success",
		"analogy": "A tool registry is like a phone book for functions.",
	}, nil
}

func generateQuiz(_ context.Context, _ []any) (any, error) {
	return map[string]any{
		"status": "success",
		"quiz": []any{
			map[string]any{"question": "What is Go?", "answer": "A programming language."},
		},
	}, nil
}

func evaluateAnswer(_ context.Context, _ []any) (any, error) {
	return map[string]any{
		"status":   "success",
		"feedback": "Your answer is correct and well-explained.",
	}, nil
}
