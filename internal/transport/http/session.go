package http

import (
	"context"
	"net/http"

	"github.com/fleshka4/pair-explorer/internal/transport/http/dto"
	"github.com/fleshka4/pair-explorer/internal/transport/http/validate"
)

func (s *Server) handleSession(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, dto.NewSessionResponse(s.sess.Snapshot()))
}

func (s *Server) handleSessionAddress(w http.ResponseWriter, r *http.Request) {
	q, code, err := validate.AddressQueryValidate(r, http.MethodPut)
	if err != nil {
		s.writeJSON(w, code, dto.ErrorResponse{Error: err.Error()})
		return
	}

	s.sess.SetPairAddress(q.Address)
	s.writeJSON(w, http.StatusOK, dto.NewSessionResponse(s.sess.Snapshot()))
}

// handleSessionFetch runs a fetch through the session. Fetch failures are
// part of the session state, so the response is 200 either way.
func (s *Server) handleSessionFetch(w http.ResponseWriter, r *http.Request) {
	q, code, err := validate.AddressQueryValidate(r, http.MethodPost)
	if err != nil {
		s.writeJSON(w, code, dto.ErrorResponse{Error: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.fetchTimeout)
	defer cancel()

	if q.Present {
		s.writeJSON(w, http.StatusOK, dto.NewSessionResponse(s.sess.FetchAddress(ctx, q.Address)))
		return
	}
	s.writeJSON(w, http.StatusOK, dto.NewSessionResponse(s.sess.Fetch(ctx)))
}
