package control

import (
	"encoding/json"
	"net/http"

	"github.com/seantiz/bashlet/internal/sandbox"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeSandboxError maps a sandbox.Error's Kind to an HTTP status and writes
// it; any other error becomes a 500.
func (s *Server) writeSandboxError(w http.ResponseWriter, err error) {
	sErr, ok := err.(*sandbox.Error)
	if !ok {
		s.logger.Error("unexpected error", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	switch sErr.Kind {
	case sandbox.KindSessionNotFound:
		s.writeError(w, http.StatusNotFound, sErr.Error())
	case sandbox.KindSessionExpired:
		s.writeError(w, http.StatusGone, sErr.Error())
	case sandbox.KindSessionNameExists, sandbox.KindConfig, sandbox.KindMountPathNotFound:
		s.writeError(w, http.StatusBadRequest, sErr.Error())
	case sandbox.KindBackendNotAvailable:
		s.writeError(w, http.StatusServiceUnavailable, sErr.Error())
	case sandbox.KindSandboxTimeout:
		s.writeError(w, http.StatusGatewayTimeout, sErr.Error())
	default:
		s.logger.Error("sandbox error", "kind", sErr.Kind, "error", err)
		s.writeError(w, http.StatusInternalServerError, sErr.Error())
	}
}
