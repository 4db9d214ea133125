// Copyright 2026 © The Rolekit Authors
// SPDX-License-Identifier: Apache-2.0

// Package httpapi exposes the composition engine over an HTTP+JSON binding.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	rkerrors "github.com/jllopis/rolekit/pkg/errors"
	"github.com/jllopis/rolekit/pkg/role"
	"github.com/jllopis/rolekit/pkg/router"
	"github.com/jllopis/rolekit/pkg/runtime"
)

// DefaultMaxBodyBytes caps request bodies when the caller does not set a limit.
const DefaultMaxBodyBytes = 1 << 20

// Server routes HTTP+JSON requests to the engine.
type Server struct {
	Engine       *runtime.Engine
	MaxBodyBytes int64
}

// New creates an HTTP+JSON server wrapper around the engine.
func New(engine *runtime.Engine) *Server {
	return &Server{Engine: engine, MaxBodyBytes: DefaultMaxBodyBytes}
}

type composeRequest struct {
	Role     string `json:"role"`
	RolePath string `json:"role_path"`
}

type toolView struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Bound       bool   `json:"bound"`
}

type agentView struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Persona     map[string]any    `json:"persona"`
	Rules       []string          `json:"rules"`
	Tools       []toolView        `json:"tools"`
	Diagnostics []role.Diagnostic `json:"diagnostics,omitempty"`
}

type runRequest struct {
	Tool string `json:"tool"`
	Args any    `json:"args"`
}

type runResponse struct {
	OK      bool   `json:"ok"`
	Result  any    `json:"result,omitempty"`
	Message string `json:"message,omitempty"`
}

type routeResponse struct {
	Framework   string `json:"framework,omitempty"`
	Description string `json:"description,omitempty"`
	Matched     bool   `json:"matched"`
}

type rolesResponse struct {
	Roles []string `json:"roles"`
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.Engine == nil {
		writeError(w, rkerrors.Newf(rkerrors.CodeInternal, "engine not configured"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody())

	segments := normalizePath(r.URL.Path)
	if len(segments) == 0 {
		http.NotFound(w, r)
		return
	}
	switch segments[0] {
	case "roles:compose":
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		s.handleCompose(w, r)
	case "route":
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		s.handleRoute(w, r)
	case "roles":
		s.handleRoles(w, r, segments)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	var req composeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	agent, err := s.compose(r, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(agent))
}

func (s *Server) handleRoles(w http.ResponseWriter, r *http.Request, segments []string) {
	if len(segments) == 1 {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		roles, err := s.Engine.Roles(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if roles == nil {
			roles = []string{}
		}
		writeJSON(w, http.StatusOK, rolesResponse{Roles: roles})
		return
	}
	if len(segments) == 3 && segments[2] == "tools:run" {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		s.handleRun(w, r, segments[1])
		return
	}
	http.NotFound(w, r)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, roleName string) {
	var req runRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Tool) == "" {
		writeError(w, rkerrors.Newf(rkerrors.CodeInvalidInput, "tool name is required"))
		return
	}
	agent, err := s.Engine.ComposeNamed(r.Context(), roleName)
	if err != nil {
		writeError(w, err)
		return
	}
	result := s.Engine.Dispatch(r.Context(), agent, req.Tool, req.Args)
	writeJSON(w, http.StatusOK, runResponse{
		OK:      result.OK(),
		Result:  result.Value(),
		Message: result.Message(),
	})
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	var req router.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	candidate := s.Engine.Route(r.Context(), req)
	resp := routeResponse{Matched: candidate != nil}
	if candidate != nil {
		resp.Framework = candidate.Name
		resp.Description = candidate.Description
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) compose(r *http.Request, req composeRequest) (*role.Agent, error) {
	switch {
	case strings.TrimSpace(req.Role) != "":
		return s.Engine.ComposeNamed(r.Context(), req.Role)
	case strings.TrimSpace(req.RolePath) != "":
		return s.Engine.Compose(r.Context(), req.RolePath)
	default:
		return nil, rkerrors.Newf(rkerrors.CodeInvalidInput, "role or role_path is required")
	}
}

func (s *Server) maxBody() int64 {
	if s.MaxBodyBytes > 0 {
		return s.MaxBodyBytes
	}
	return DefaultMaxBodyBytes
}

func viewOf(agent *role.Agent) agentView {
	view := agentView{
		Name:        agent.Name,
		Description: agent.Description,
		Persona:     agent.Persona,
		Rules:       agent.Rules,
		Diagnostics: agent.Diagnostics,
		Tools:       []toolView{},
	}
	if view.Persona == nil {
		view.Persona = map[string]any{}
	}
	if view.Rules == nil {
		view.Rules = []string{}
	}
	for _, t := range agent.Registry.List() {
		view.Tools = append(view.Tools, toolView{
			Name:        t.Name,
			Description: t.Spec.Description,
			Bound:       t.Bound(),
		})
	}
	return view
}

func decodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(out); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return rkerrors.Newf(rkerrors.CodeInvalidInput, "request body exceeds %d bytes", maxErr.Limit)
		}
		return rkerrors.New(rkerrors.CodeInvalidInput, "invalid request body", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	re := rkerrors.As(err)
	status := re.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	body := map[string]any{
		"type":   "about:blank",
		"title":  string(re.Code),
		"detail": re.Message,
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func normalizePath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
