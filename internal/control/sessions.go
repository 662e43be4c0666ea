package control

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/seantiz/bashlet/internal/sandbox"
	"github.com/seantiz/bashlet/internal/session"
)

const maxBodySize = 1 << 20 // 1 MB

type createSessionRequest struct {
	Name       string           `json:"name,omitempty"`
	Mounts     []sandbox.Mount  `json:"mounts,omitempty"`
	Env        []sandbox.EnvVar `json:"env,omitempty"`
	Workdir    string           `json:"workdir,omitempty"`
	WasmBinary string           `json:"wasm_binary,omitempty"`
	TTL        string           `json:"ttl,omitempty"`
}

type listSessionsResponse struct {
	Sessions []*session.Record `json:"sessions"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var ttlSeconds *int64
	if req.TTL != "" {
		seconds, err := session.ParseTTL(req.TTL)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ttlSeconds = &seconds
	}

	record := session.NewRecord(req.Name, req.Workdir, req.Mounts, req.Env, req.WasmBinary, ttlSeconds)
	if err := s.store.Save(record); err != nil {
		s.writeSandboxError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List()
	if err != nil {
		s.writeSandboxError(w, err)
		return
	}
	if records == nil {
		records = []*session.Record{}
	}
	s.writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: records})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := s.store.Get(id)
	if err != nil {
		s.writeSandboxError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.store.Delete(id); err != nil {
		s.writeSandboxError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type executeRequest struct {
	Command string `json:"command"`
	Backend string `json:"backend,omitempty"`
}

type executeResponse struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

func (s *Server) handleExecuteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req executeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Command == "" {
		s.writeError(w, http.StatusBadRequest, "command is required")
		return
	}

	record, err := s.store.Get(id)
	if err != nil {
		s.writeSandboxError(w, err)
		return
	}

	kind := req.Backend
	if kind == "" {
		kind = s.defaultBackend
	}

	backend, err := s.factory.Create(sandbox.BackendConfig{Kind: kind})
	if err != nil {
		sandboxExecutionsTotal.WithLabelValues(kind, "backend_unavailable").Inc()
		s.writeSandboxError(w, err)
		return
	}
	defer backend.Shutdown(context.Background())

	result, err := backend.Execute(r.Context(), req.Command, sandbox.RuntimeParams{
		Mounts:  record.Mounts,
		Env:     record.Env,
		Workdir: record.Workdir,
	})
	if err != nil {
		sandboxExecutionsTotal.WithLabelValues(backend.Name(), "error").Inc()
		s.writeSandboxError(w, err)
		return
	}
	sandboxExecutionsTotal.WithLabelValues(backend.Name(), "completed").Inc()

	if err := s.store.Touch(record.ID); err != nil {
		s.logger.Warn("failed to touch session after execute", "session", record.ID, "error", err)
	}

	s.writeJSON(w, http.StatusOK, executeResponse{
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
		ExitCode: result.ExitCode,
	})
}
