// media.go — обработчики медиакаталога: multipart-загрузка,
// список, обновление метаданных, удаление.
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	apierrors "wedding-backend/internal/api/errors"
	"wedding-backend/internal/domain/model"
	"wedding-backend/internal/service"
)

// MediaHandler — обработчик endpoints медиакаталога.
type MediaHandler struct {
	media  *service.MediaService
	logger *slog.Logger
}

// NewMediaHandler создаёт обработчик медиакаталога.
func NewMediaHandler(media *service.MediaService, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{
		media:  media,
		logger: logger.With(slog.String("component", "media_handler")),
	}
}

// List обрабатывает GET /api/v1/media[?category=&featured=true].
// Публичный endpoint — отдаёт медиафайлы для галереи сайта.
func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	featuredOnly := r.URL.Query().Get("featured") == "true"

	items, err := h.media.List(r.Context(), r.URL.Query().Get("category"), featuredOnly)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, items)
}

// intFormValue разбирает опциональное целочисленное поле формы.
// Пустое или нечисловое значение — nil.
func intFormValue(r *http.Request, field string) *int {
	v := r.FormValue(field)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

// Upload обрабатывает POST /api/v1/media (multipart/form-data).
// Поля формы: file (обязательное), category, alt_text, is_featured,
// width, height (размеры изображения определяет клиент).
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		apierrors.ValidationError(w, "некорректная multipart-форма или слишком большой файл")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		apierrors.ValidationError(w, "поле file обязательно")
		return
	}
	defer file.Close()

	m, err := h.media.Upload(r.Context(), service.MediaUpload{
		Reader:           file,
		OriginalFilename: header.Filename,
		MimeType:         header.Header.Get("Content-Type"),
		Category:         r.FormValue("category"),
		AltText:          r.FormValue("alt_text"),
		Width:            intFormValue(r, "width"),
		Height:           intFormValue(r, "height"),
		IsFeatured:       r.FormValue("is_featured") == "true",
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusCreated, m)
}

// mediaUpdateRequest — тело запроса PUT /api/v1/media.
type mediaUpdateRequest struct {
	ID string `json:"id"`
	model.MediaUpdate
}

// Update обрабатывает PUT /api/v1/media.
// ID передаётся в теле, nil-поля не изменяются.
func (h *MediaHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req mediaUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		apierrors.ValidationError(w, "некорректное JSON-тело запроса")
		return
	}
	if req.ID == "" {
		apierrors.ValidationError(w, "поле id обязательно")
		return
	}

	m, err := h.media.Update(r.Context(), req.ID, req.MediaUpdate)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	apierrors.WriteSuccess(w, http.StatusOK, m)
}

// Delete обрабатывает DELETE /api/v1/media?id=.
// Удаляет запись и блоб из хранилища.
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromQuery(w, r)
	if !ok {
		return
	}

	if err := h.media.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	apierrors.WriteSuccessMessage(w, http.StatusOK, nil, "медиафайл удалён")
}
