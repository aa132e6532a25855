package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/renaissancebro/AGI-seed/internal/domain"
	"github.com/renaissancebro/AGI-seed/internal/emotion"
	"github.com/renaissancebro/AGI-seed/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func identityID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid identity id")
		return uuid.Nil, false
	}
	return id, true
}

// writeServiceError maps service and domain errors onto status codes.
// Anything unrecognized is reported as fallback with a 500.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrIdentityNotFound),
		errors.Is(err, domain.ErrBeliefNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrIdentityConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrCoreLabelMissing),
		errors.Is(err, service.ErrTargetMissing),
		errors.Is(err, service.ErrDuplicateBelief),
		errors.Is(err, service.ErrPromptEmpty),
		errors.Is(err, service.ErrFeedbackEmpty),
		errors.Is(err, domain.ErrInvalidBelief),
		errors.Is(err, domain.ErrInvalidExperience),
		errors.Is(err, domain.ErrInvalidAspiration),
		errors.Is(err, domain.ErrInvalidStandard),
		errors.Is(err, emotion.ErrInvalidRecognition),
		errors.Is(err, emotion.ErrInvalidExposure):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrCompletion):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
