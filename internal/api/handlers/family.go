// family.go — обработчики членов семьи и свадебной команды.
package handlers

import (
	"log/slog"
	"net/http"

	apierrors "wedding-backend/internal/api/errors"
	"wedding-backend/internal/domain/model"
	"wedding-backend/internal/service"
)

// FamilyHandler — обработчик endpoints членов семьи.
type FamilyHandler struct {
	family *service.FamilyService
	logger *slog.Logger
}

// NewFamilyHandler создаёт обработчик членов семьи.
func NewFamilyHandler(family *service.FamilyService, logger *slog.Logger) *FamilyHandler {
	return &FamilyHandler{
		family: family,
		logger: logger.With(slog.String("component", "family_handler")),
	}
}

// List обрабатывает GET /api/v1/family[?role=].
// Публичный endpoint — отдаёт членов семьи для страницы сайта.
func (h *FamilyHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.family.List(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, items)
}

// Create обрабатывает POST /api/v1/family.
func (h *FamilyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.FamilyMemberCreate
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "некорректное JSON-тело запроса")
		return
	}

	f, err := h.family.Create(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusCreated, f)
}

// familyUpdateRequest — тело запроса PUT /api/v1/family.
type familyUpdateRequest struct {
	ID string `json:"id"`
	model.FamilyMemberUpdate
}

// Update обрабатывает PUT /api/v1/family.
// ID передаётся в теле, nil-поля не изменяются.
func (h *FamilyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req familyUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "некорректное JSON-тело запроса")
		return
	}
	if req.ID == "" {
		apierrors.ValidationError(w, "поле id обязательно")
		return
	}

	f, err := h.family.Update(r.Context(), req.ID, req.FamilyMemberUpdate)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, f)
}

// Delete обрабатывает DELETE /api/v1/family?id=.
func (h *FamilyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}

	if err := h.family.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	apierrors.WriteSuccessMessage(w, http.StatusOK, nil, "член семьи удалён")
}
