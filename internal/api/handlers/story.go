// story.go — обработчики вех истории пары.
package handlers

import (
	"log/slog"
	"net/http"

	apierrors "wedding-backend/internal/api/errors"
	"wedding-backend/internal/domain/model"
	"wedding-backend/internal/service"
)

// StoryHandler — обработчик endpoints вех истории.
type StoryHandler struct {
	story  *service.StoryService
	logger *slog.Logger
}

// NewStoryHandler создаёт обработчик вех истории.
func NewStoryHandler(story *service.StoryService, logger *slog.Logger) *StoryHandler {
	return &StoryHandler{
		story:  story,
		logger: logger.With(slog.String("component", "story_handler")),
	}
}

// List обрабатывает GET /api/v1/story.
// Публичный endpoint — отдаёт вехи для страницы "Наша история".
func (h *StoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.story.List(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, items)
}

// Create обрабатывает POST /api/v1/story.
func (h *StoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.MilestoneCreate
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "некорректное JSON-тело запроса")
		return
	}

	m, err := h.story.Create(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusCreated, m)
}

// milestoneUpdateRequest — тело запроса PUT /api/v1/story.
type milestoneUpdateRequest struct {
	ID string `json:"id"`
	model.MilestoneUpdate
}

// Update обрабатывает PUT /api/v1/story.
// ID передаётся в теле, nil-поля не изменяются.
func (h *StoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req milestoneUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "некорректное JSON-тело запроса")
		return
	}
	if req.ID == "" {
		apierrors.ValidationError(w, "поле id обязательно")
		return
	}

	m, err := h.story.Update(r.Context(), req.ID, req.MilestoneUpdate)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, m)
}

// Delete обрабатывает DELETE /api/v1/story?id=.
func (h *StoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}

	if err := h.story.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	apierrors.WriteSuccessMessage(w, http.StatusOK, nil, "веха удалена")
}
