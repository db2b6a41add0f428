package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"wedding-backend/internal/domain/model"
	"wedding-backend/internal/repository"
	"wedding-backend/internal/service"
	"wedding-backend/internal/storage"
)

// --- Фейковые репозитории в памяти ---

type memContentRepo struct {
	items map[string]*model.ContentItem
}

func (r *memContentRepo) Upsert(ctx context.Context, p model.ContentUpsert) (*model.ContentItem, error) {
	key := p.Section + "/" + p.ContentKey
	if c, ok := r.items[key]; ok {
		c.ContentValue = p.ContentValue
		return c, nil
	}
	c := &model.ContentItem{
		ID: uuid.New(), Section: p.Section, ContentKey: p.ContentKey,
		ContentValue: p.ContentValue,
		CreatedAt:    time.Now(), UpdatedAt: time.Now(),
	}
	r.items[key] = c
	return c, nil
}

func (r *memContentRepo) UpdateByID(ctx context.Context, id string, p model.ContentUpsert) (*model.ContentItem, error) {
	newKey := p.Section + "/" + p.ContentKey
	for key, c := range r.items {
		if c.ID.String() != id {
			continue
		}
		if other, ok := r.items[newKey]; ok && other.ID != c.ID {
			return nil, repository.ErrConflict
		}
		delete(r.items, key)
		c.Section = p.Section
		c.ContentKey = p.ContentKey
		c.ContentValue = p.ContentValue
		c.UpdatedAt = time.Now()
		r.items[newKey] = c
		return c, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memContentRepo) GetBySectionKey(ctx context.Context, section, key string) (*model.ContentItem, error) {
	c, ok := r.items[section+"/"+key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (r *memContentRepo) List(ctx context.Context, section string) ([]*model.ContentItem, error) {
	var out []*model.ContentItem
	for _, c := range r.items {
		if section == "" || c.Section == section {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memContentRepo) Delete(ctx context.Context, id string) error {
	for k, c := range r.items {
		if c.ID.String() == id {
			delete(r.items, k)
			return nil
		}
	}
	return repository.ErrNotFound
}

type memMediaRepo struct {
	items map[uuid.UUID]*model.Media
}

func (r *memMediaRepo) WithTx(tx pgx.Tx) repository.MediaRepository { return r }

func (r *memMediaRepo) Create(ctx context.Context, p model.MediaCreate) (*model.Media, error) {
	max := 0
	for _, m := range r.items {
		if m.Category == p.Category && m.SortOrder > max {
			max = m.SortOrder
		}
	}
	m := &model.Media{
		ID: uuid.New(), Filename: p.Filename, OriginalFilename: p.OriginalFilename,
		URL: p.URL, BlobURL: p.BlobURL, MimeType: p.MimeType, Size: p.Size,
		Width: p.Width, Height: p.Height, AltText: p.AltText, Category: p.Category,
		SortOrder: max + 1, IsFeatured: p.IsFeatured,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	r.items[m.ID] = m
	return m, nil
}

func (r *memMediaRepo) GetByID(ctx context.Context, id string) (*model.Media, error) {
	for _, m := range r.items {
		if m.ID.String() == id {
			return m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memMediaRepo) List(ctx context.Context, category string, featuredOnly bool) ([]*model.Media, error) {
	var out []*model.Media
	for _, m := range r.items {
		if category != "" && m.Category != category {
			continue
		}
		if featuredOnly && !m.IsFeatured {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *memMediaRepo) Update(ctx context.Context, id string, p model.MediaUpdate) (*model.Media, error) {
	m, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.AltText != nil {
		m.AltText = *p.AltText
	}
	if p.Category != nil {
		m.Category = *p.Category
	}
	if p.IsFeatured != nil {
		m.IsFeatured = *p.IsFeatured
	}
	if p.SortOrder != nil {
		m.SortOrder = *p.SortOrder
	}
	return m, nil
}

func (r *memMediaRepo) Delete(ctx context.Context, id string) (*model.Media, error) {
	m, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	delete(r.items, m.ID)
	return m, nil
}

type memBlobStore struct {
	saved map[string][]byte
}

func (s *memBlobStore) Save(ctx context.Context, r io.Reader, originalFilename, contentType string) (*storage.SaveResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	name := "blob-" + originalFilename
	s.saved[name] = data
	return &storage.SaveResult{
		Filename: name,
		URL:      "/uploads/" + name,
		BlobURL:  "/uploads/" + name,
		Size:     int64(len(data)),
	}, nil
}

func (s *memBlobStore) Delete(ctx context.Context, filename string) error {
	delete(s.saved, filename)
	return nil
}

// memTx выполняет fn без реальной транзакции.
type memTx struct{}

func (memTx) RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error { return fn(nil) }

type memUserRepo struct {
	users map[string]*model.User
}

func (r *memUserRepo) Create(ctx context.Context, email, hash, role string) (*model.User, error) {
	if _, ok := r.users[email]; ok {
		return nil, repository.ErrConflict
	}
	u := &model.User{ID: uuid.New(), Email: email, PasswordHash: hash, Role: role}
	r.users[email] = u
	return u, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	for _, u := range r.users {
		if u.ID.String() == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

// --- Вспомогательные функции ---

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// apiResponse — разобранный конверт ответа API.
type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("ошибка разбора ответа: %v (тело: %s)", err, rec.Body.String())
	}
	return resp
}

// --- Тесты ContentHandler ---

func newContentHandler() (*ContentHandler, *memContentRepo) {
	repo := &memContentRepo{items: make(map[string]*model.ContentItem)}
	svc := service.NewContentService(repo, discardLogger())
	return NewContentHandler(svc, discardLogger()), repo
}

func TestContentUpsertHandler(t *testing.T) {
	h, _ := newContentHandler()

	body := `{"section":"hero","content_key":"title","content_value":"Анна и Иван"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/content", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Upsert(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, хотели 200 (тело: %s)", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Error("success = false")
	}

	var item model.ContentItem
	if err := json.Unmarshal(resp.Data, &item); err != nil {
		t.Fatalf("разбор data: %v", err)
	}
	if string(item.ContentValue) != `"Анна и Иван"` {
		t.Errorf("content_value = %s", item.ContentValue)
	}
}

func TestContentUpdateHandler(t *testing.T) {
	h, repo := newContentHandler()
	c, _ := repo.Upsert(context.Background(), model.ContentUpsert{
		Section: "hero", ContentKey: "title", ContentValue: json.RawMessage(`"старое"`),
	})

	body := `{"id":"` + c.ID.String() + `","section":"hero","content_key":"title","content_value":"новое"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/content", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, хотели 200 (тело: %s)", rec.Code, rec.Body.String())
	}
	var item model.ContentItem
	resp := decodeResponse(t, rec)
	if err := json.Unmarshal(resp.Data, &item); err != nil {
		t.Fatalf("разбор data: %v", err)
	}
	if string(item.ContentValue) != `"новое"` {
		t.Errorf("content_value = %s", item.ContentValue)
	}

	// Без id — 400
	body = `{"section":"hero","content_key":"title","content_value":"x"}`
	req = httptest.NewRequest(http.MethodPut, "/api/v1/content", strings.NewReader(body))
	rec = httptest.NewRecorder()
	h.Update(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("без id: статус = %d, хотели 400", rec.Code)
	}

	// Несуществующий id — 404
	body = `{"id":"` + uuid.NewString() + `","section":"hero","content_key":"title","content_value":"x"}`
	req = httptest.NewRequest(http.MethodPut, "/api/v1/content", strings.NewReader(body))
	rec = httptest.NewRecorder()
	h.Update(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("неизвестный id: статус = %d, хотели 404", rec.Code)
	}
}

func TestContentUpsertHandlerBadJSON(t *testing.T) {
	h, _ := newContentHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/content", strings.NewReader("{не json"))
	rec := httptest.NewRecorder()
	h.Upsert(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("статус = %d, хотели 400", rec.Code)
	}
	if resp := decodeResponse(t, rec); resp.Success {
		t.Error("success = true для ошибки")
	}
}

func TestContentUpsertHandlerValidation(t *testing.T) {
	h, _ := newContentHandler()

	// Отсутствует section
	body := `{"content_key":"title","content_value":"v"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/content", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Upsert(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("статус = %d, хотели 400", rec.Code)
	}
}

func TestContentListHandler(t *testing.T) {
	h, repo := newContentHandler()
	_, _ = repo.Upsert(context.Background(), model.ContentUpsert{
		Section: "hero", ContentKey: "title", ContentValue: json.RawMessage(`"v"`),
	})
	_, _ = repo.Upsert(context.Background(), model.ContentUpsert{
		Section: "venue", ContentKey: "address", ContentValue: json.RawMessage(`"a"`),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/content?section=hero", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, хотели 200", rec.Code)
	}
	var items []model.ContentItem
	resp := decodeResponse(t, rec)
	if err := json.Unmarshal(resp.Data, &items); err != nil {
		t.Fatalf("разбор data: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("записей = %d, хотели 1", len(items))
	}
}

func TestContentDeleteHandler(t *testing.T) {
	h, repo := newContentHandler()
	c, _ := repo.Upsert(context.Background(), model.ContentUpsert{
		Section: "hero", ContentKey: "title", ContentValue: json.RawMessage(`"v"`),
	})

	// Без параметра id — 400
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/content", nil)
	rec := httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("без id: статус = %d, хотели 400", rec.Code)
	}

	// Удаление существующего
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/content?id="+c.ID.String(), nil)
	rec = httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("статус = %d, хотели 200", rec.Code)
	}

	// Повторное удаление — 404
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/content?id="+c.ID.String(), nil)
	rec = httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("повторное удаление: статус = %d, хотели 404", rec.Code)
	}
}

// --- Тесты MediaHandler ---

func newMediaTestHandler() (*MediaHandler, *memBlobStore) {
	repo := &memMediaRepo{items: make(map[uuid.UUID]*model.Media)}
	blobs := &memBlobStore{saved: make(map[string][]byte)}
	svc := service.NewMediaService(repo, memTx{}, blobs, discardLogger())
	return NewMediaHandler(svc, discardLogger()), blobs
}

// multipartUpload собирает multipart-тело с файлом и полями формы.
func multipartUpload(t *testing.T, filename, contentType, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if filename != "" {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		hdr.Set("Content-Type", contentType)
		part, err := mw.CreatePart(hdr)
		if err != nil {
			t.Fatalf("создание части file: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("запись содержимого: %v", err)
		}
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("поле %s: %v", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("закрытие multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestMediaUploadHandler(t *testing.T) {
	h, blobs := newMediaTestHandler()

	body, contentType := multipartUpload(t, "ceremony.jpg", "image/jpeg", "данные файла",
		map[string]string{
			"category":    "hero",
			"alt_text":    "Церемония",
			"is_featured": "true",
			"width":       "1920",
		})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/media", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("статус = %d, хотели 201 (тело: %s)", rec.Code, rec.Body.String())
	}
	var m model.Media
	resp := decodeResponse(t, rec)
	if err := json.Unmarshal(resp.Data, &m); err != nil {
		t.Fatalf("разбор data: %v", err)
	}
	if m.Category != model.MediaCategoryHero {
		t.Errorf("category = %q, хотели hero", m.Category)
	}
	if !m.IsFeatured {
		t.Error("is_featured не сохранён")
	}
	if m.Width == nil || *m.Width != 1920 {
		t.Errorf("width = %v, хотели 1920", m.Width)
	}
	if m.SortOrder != 1 {
		t.Errorf("sort_order = %d, хотели 1", m.SortOrder)
	}
	if _, ok := blobs.saved[m.Filename]; !ok {
		t.Errorf("блоб %q не записан в хранилище", m.Filename)
	}
}

func TestMediaUploadHandlerMissingFile(t *testing.T) {
	h, _ := newMediaTestHandler()

	body, contentType := multipartUpload(t, "", "", "", map[string]string{"category": "hero"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/media", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("статус = %d, хотели 400", rec.Code)
	}
}

func TestMediaUploadHandlerForbiddenType(t *testing.T) {
	h, _ := newMediaTestHandler()

	body, contentType := multipartUpload(t, "script.exe", "application/octet-stream", "MZ", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/media", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("статус = %d, хотели 400", rec.Code)
	}
}

// --- Тесты AuthHandler ---

func newAuthTestHandler(t *testing.T) *AuthHandler {
	t.Helper()
	repo := &memUserRepo{users: make(map[string]*model.User)}
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	_, _ = repo.Create(context.Background(), "admin@wedding.example", string(hash), model.RoleAdmin)

	svc := service.NewAuthService(repo, "0123456789abcdef0123456789abcdef", time.Hour, discardLogger())
	return NewAuthHandler(svc, discardLogger())
}

func TestLoginHandler(t *testing.T) {
	h := newAuthTestHandler(t)

	body := `{"email":"admin@wedding.example","password":"correct-horse"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, хотели 200 (тело: %s)", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	var res service.LoginResult
	if err := json.Unmarshal(resp.Data, &res); err != nil {
		t.Fatalf("разбор data: %v", err)
	}
	if res.Token == "" {
		t.Error("токен пустой")
	}
	if res.User.Email != "admin@wedding.example" {
		t.Errorf("email = %q", res.User.Email)
	}
}

func TestLoginHandlerWrongPassword(t *testing.T) {
	h := newAuthTestHandler(t)

	body := `{"email":"admin@wedding.example","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("статус = %d, хотели 401", rec.Code)
	}
}

// --- Тесты HealthHandler ---

type stubChecker struct {
	status, message string
}

func (c *stubChecker) CheckReady() (string, string) { return c.status, c.message }

func TestHealthLive(t *testing.T) {
	h := NewHealthHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	h.HealthLive(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("статус = %d, хотели 200", rec.Code)
	}
}

func TestHealthReady(t *testing.T) {
	// PostgreSQL доступен
	h := NewHealthHandler(&stubChecker{status: "ok", message: "подключение активно"})
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	h.HealthReady(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("ok: статус = %d, хотели 200", rec.Code)
	}

	// PostgreSQL недоступен
	h = NewHealthHandler(&stubChecker{status: "fail", message: "нет подключения"})
	rec = httptest.NewRecorder()
	h.HealthReady(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("fail: статус = %d, хотели 503", rec.Code)
	}
}
