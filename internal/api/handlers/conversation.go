package handlers

import (
	"net/http"

	"github.com/renaissancebro/AGI-seed/internal/domain"
	"github.com/renaissancebro/AGI-seed/internal/service"
)

type ConversationHandler struct {
	svc *service.ConversationService
}

func NewConversationHandler(svc *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

type respondRequest struct {
	Prompt string `json:"prompt"`
	UserID string `json:"user_id,omitempty"`
}

func (h *ConversationHandler) Respond(w http.ResponseWriter, r *http.Request) {
	id, ok := identityID(w, r)
	if !ok {
		return
	}
	var req respondRequest
	if !decode(w, r, &req) {
		return
	}

	it, err := h.svc.Respond(r.Context(), id, req.Prompt, req.UserID)
	if err != nil {
		writeServiceError(w, err, "failed to respond")
		return
	}
	writeJSON(w, http.StatusOK, it)
}

type feedbackRequest struct {
	Feedback     string `json:"feedback"`
	FeedbackType string `json:"feedback_type"`
}

func (h *ConversationHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	id, ok := identityID(w, r)
	if !ok {
		return
	}
	var req feedbackRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.svc.ReceiveFeedback(r.Context(), id, req.Feedback, domain.FeedbackType(req.FeedbackType))
	if err != nil {
		writeServiceError(w, err, "failed to process feedback")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ConversationHandler) Replay(w http.ResponseWriter, r *http.Request) {
	id, ok := identityID(w, r)
	if !ok {
		return
	}
	snap, err := h.svc.Replay(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to replay feedback")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *ConversationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id, ok := identityID(w, r)
	if !ok {
		return
	}
	stats, err := h.svc.Stats(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to get stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type probeRequest struct {
	Prompt string `json:"prompt"`
}

func (h *ConversationHandler) Probe(w http.ResponseWriter, r *http.Request) {
	var req probeRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Probe(r.Context(), req.Prompt)
	if err != nil {
		writeServiceError(w, err, "failed to probe")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
