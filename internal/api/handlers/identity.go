package handlers

import (
	"net/http"

	"github.com/renaissancebro/AGI-seed/internal/domain"
	"github.com/renaissancebro/AGI-seed/internal/service"
)

type IdentityHandler struct {
	svc *service.IdentityService
}

func NewIdentityHandler(svc *service.IdentityService) *IdentityHandler {
	return &IdentityHandler{svc: svc}
}

type createIdentityRequest struct {
	CoreLabel      string               `json:"core_label"`
	EnableEmotions bool                 `json:"enable_emotions"`
	Beliefs        []service.BeliefSpec `json:"beliefs"`
	// DefaultBeliefs seeds the conversational belief set when Beliefs is empty.
	DefaultBeliefs bool `json:"default_beliefs"`
}

func (h *IdentityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createIdentityRequest
	if !decode(w, r, &req) {
		return
	}

	beliefs := req.Beliefs
	if len(beliefs) == 0 && req.DefaultBeliefs {
		beliefs = service.DefaultBeliefs()
	}

	snap, err := h.svc.Create(r.Context(), req.CoreLabel, req.EnableEmotions, beliefs)
	if err != nil {
		writeServiceError(w, err, "failed to create identity")
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *IdentityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := identityID(w, r)
	if !ok {
		return
	}
	snap, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to get identity")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *IdentityHandler) AddBelief(w http.ResponseWriter, r *http.Request) {
	id, ok := identityID(w, r)
	if !ok {
		return
	}
	var spec service.BeliefSpec
	if !decode(w, r, &spec) {
		return
	}
	snap, err := h.svc.AddBelief(r.Context(), id, spec)
	if err != nil {
		writeServiceError(w, err, "failed to add belief")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type experienceRequest struct {
	TargetBelief    string  `json:"target_belief"`
	Content         string  `json:"content"`
	Valence         string  `json:"valence"`
	Intensity       float64 `json:"intensity"`
	Source          string  `json:"source"`
	ApplyModulation bool    `json:"apply_modulation"`
}

func (h *IdentityHandler) IntegrateExperience(w http.ResponseWriter, r *http.Request) {
	id, ok := identityID(w, r)
	if !ok {
		return
	}
	var req experienceRequest
	if !decode(w, r, &req) {
		return
	}

	exp := domain.Experience{
		Content:   req.Content,
		Valence:   domain.Valence(req.Valence),
		Intensity: req.Intensity,
		Source:    req.Source,
	}
	res, err := h.svc.IntegrateExperience(r.Context(), id, req.TargetBelief, exp, req.ApplyModulation)
	if err != nil {
		writeServiceError(w, err, "failed to integrate experience")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *IdentityHandler) Recover(w http.ResponseWriter, r *http.Request) {
	id, ok := identityID(w, r)
	if !ok {
		return
	}
	snap, err := h.svc.Recover(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to recover identity")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
