package control

import "net/http"

func (s *Server) handleListBackends(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.factory.AvailableBackends())
}
