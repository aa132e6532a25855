package handlers

import (
	"net/http"

	"github.com/renaissancebro/AGI-seed/internal/domain"
	"github.com/renaissancebro/AGI-seed/internal/emotion"
	"github.com/renaissancebro/AGI-seed/internal/service"
)

type EmotionHandler struct {
	svc *service.EmotionService
}

func NewEmotionHandler(svc *service.EmotionService) *EmotionHandler {
	return &EmotionHandler{svc: svc}
}

func (h *EmotionHandler) State(w http.ResponseWriter, r *http.Request) {
	id, ok := identityID(w, r)
	if !ok {
		return
	}
	st, err := h.svc.State(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to get emotional state")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type comfortRequest struct {
	Content        string    `json:"content"`
	SemanticVector []float64 `json:"semantic_vector"`
	Confidence     float64   `json:"confidence"`
	Predictability float64   `json:"predictability"`
}

func (h *EmotionHandler) Comfort(w http.ResponseWriter, r *http.Request) {
	id, ok := identityID(w, r)
	if !ok {
		return
	}
	var req comfortRequest
	if !decode(w, r, &req) {
		return
	}

	in := emotion.NewComfortInput(req.Content, req.SemanticVector, req.Confidence, req.Predictability)
	res, err := h.svc.ProcessComfort(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err, "failed to process comfort")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type aspirationRequest struct {
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	DomainVector     []float64 `json:"domain_vector"`
	Strength         float64   `json:"strength"`
	IntegrationStyle string    `json:"integration_style"`
}

func (h *EmotionHandler) AddAspiration(w http.ResponseWriter, r *http.Request) {
	id, ok := identityID(w, r)
	if !ok {
		return
	}
	var req aspirationRequest
	if !decode(w, r, &req) {
		return
	}
	if req.IntegrationStyle == "" {
		req.IntegrationStyle = string(domain.IntegrationOptional)
	}

	a, err := domain.NewAspiration(req.Name, req.Description, req.DomainVector, req.Strength, domain.IntegrationStyle(req.IntegrationStyle))
	if err != nil {
		writeServiceError(w, err, "failed to add aspiration")
		return
	}
	if err := h.svc.AddAspiration(r.Context(), id, a); err != nil {
		writeServiceError(w, err, "failed to add aspiration")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

type achievementRequest struct {
	Content      string    `json:"content"`
	DomainVector []float64 `json:"domain_vector"`
	Recognition  string    `json:"recognition"`
}

func (h *EmotionHandler) Achieve(w http.ResponseWriter, r *http.Request) {
	id, ok := identityID(w, r)
	if !ok {
		return
	}
	var req achievementRequest
	if !decode(w, r, &req) {
		return
	}

	action, err := emotion.NewPrideAction(req.Content, req.DomainVector, emotion.Recognition(req.Recognition))
	if err != nil {
		writeServiceError(w, err, "failed to process achievement")
		return
	}
	res, err := h.svc.Achieve(r.Context(), id, action)
	if err != nil {
		writeServiceError(w, err, "failed to process achievement")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type standardRequest struct {
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Strength       float64   `json:"strength"`
	SemanticVector []float64 `json:"semantic_vector,omitempty"`
}

func (h *EmotionHandler) AddStandard(w http.ResponseWriter, r *http.Request) {
	id, ok := identityID(w, r)
	if !ok {
		return
	}
	var req standardRequest
	if !decode(w, r, &req) {
		return
	}

	st, err := domain.NewInternalizedStandard(req.Name, req.Description, req.Strength, req.SemanticVector)
	if err != nil {
		writeServiceError(w, err, "failed to add standard")
		return
	}
	if err := h.svc.AddStandard(r.Context(), id, st); err != nil {
		writeServiceError(w, err, "failed to add standard")
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

type actionRequest struct {
	Content       string  `json:"content"`
	ExposureLevel float64 `json:"exposure_level"`
}

func (h *EmotionHandler) PerformAction(w http.ResponseWriter, r *http.Request) {
	id, ok := identityID(w, r)
	if !ok {
		return
	}
	var req actionRequest
	if !decode(w, r, &req) {
		return
	}

	action, err := emotion.NewShameAction(req.Content, req.ExposureLevel)
	if err != nil {
		writeServiceError(w, err, "failed to process action")
		return
	}
	res, err := h.svc.PerformAction(r.Context(), id, action)
	if err != nil {
		writeServiceError(w, err, "failed to process action")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
