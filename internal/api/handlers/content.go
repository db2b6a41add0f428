// content.go — обработчики редактируемого контента сайта.
package handlers

import (
	"log/slog"
	"net/http"

	apierrors "wedding-backend/internal/api/errors"
	"wedding-backend/internal/domain/model"
	"wedding-backend/internal/service"
)

// ContentHandler — обработчик endpoints контента.
type ContentHandler struct {
	content *service.ContentService
	logger  *slog.Logger
}

// NewContentHandler создаёт обработчик контента.
func NewContentHandler(content *service.ContentService, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{
		content: content,
		logger:  logger.With(slog.String("component", "content_handler")),
	}
}

// List обрабатывает GET /api/v1/content[?section=].
// Публичный endpoint — отдаёт контент для отрисовки сайта.
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.content.List(r.Context(), r.URL.Query().Get("section"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, items)
}

// Upsert обрабатывает POST /api/v1/content.
// Создаёт или обновляет контент по паре (section, content_key).
func (h *ContentHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req model.ContentUpsert
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "некорректное JSON-тело запроса")
		return
	}

	c, err := h.content.Upsert(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, c)
}

// contentUpdateRequest — тело запроса PUT /api/v1/content.
type contentUpdateRequest struct {
	ID string `json:"id"`
	model.ContentUpsert
}

// Update обрабатывает PUT /api/v1/content.
// ID передаётся в теле; перезаписываются все изменяемые поля.
func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req contentUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "некорректное JSON-тело запроса")
		return
	}
	if req.ID == "" {
		apierrors.ValidationError(w, "поле id обязательно")
		return
	}

	c, err := h.content.Update(r.Context(), req.ID, req.ContentUpsert)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, c)
}

// Delete обрабатывает DELETE /api/v1/content?id=.
func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}

	if err := h.content.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	apierrors.WriteSuccessMessage(w, http.StatusOK, nil, "контент удалён")
}
