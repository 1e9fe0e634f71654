package http

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/fleshka4/pair-explorer/internal/apperrors"
	"github.com/fleshka4/pair-explorer/internal/transport/http/dto"
	"github.com/fleshka4/pair-explorer/internal/transport/http/validate"
)

func (s *Server) handlePair(w http.ResponseWriter, r *http.Request) {
	req, code, err := validate.PairRequestValidate(r)
	if err != nil {
		if code == 0 {
			code = http.StatusBadRequest
		}
		s.writeJSON(w, code, dto.ErrorResponse{Error: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.fetchTimeout)
	defer cancel()

	rec, err := s.svc.FetchPair(ctx, req.Address)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, dto.NewPairResponse(rec))
}

// statusFor maps an error kind to the HTTP status reported for it.
func statusFor(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindInputValidation:
		return http.StatusBadRequest
	case apperrors.KindProviderUnavailable:
		return http.StatusServiceUnavailable
	case apperrors.KindNetworkOrAggregation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := apperrors.KindOf(err)
	if kind == apperrors.KindUnknown {
		s.logger.Error("unclassified error", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}

	s.writeJSON(w, statusFor(err), dto.ErrorResponse{
		Error: apperrors.UserMessage(err),
		Kind:  kind.String(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("response write error", zap.Error(err))
	}
}
