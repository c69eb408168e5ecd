package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	accountingapp "github.com/erp/accounting/internal/application/accounting"
	"github.com/erp/accounting/internal/domain/accounting"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/domain/shared/valueobject"
	"github.com/erp/accounting/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDocumentRepository implements accounting.DocumentRepository for testing
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindAll(ctx context.Context, filter accounting.DocumentFilter) ([]accounting.Document, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]accounting.Document), args.Get(1).(int64), args.Error(2)
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *accounting.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) Update(ctx context.Context, doc *accounting.Document, expected shared.RowVersion) error {
	args := m.Called(ctx, doc, expected)
	return args.Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id uuid.UUID, expected shared.RowVersion) error {
	args := m.Called(ctx, id, expected)
	return args.Error(0)
}

var _ accounting.DocumentRepository = (*MockDocumentRepository)(nil)

// MockDocumentLineRepository implements accounting.DocumentLineRepository for testing
type MockDocumentLineRepository struct {
	mock.Mock
}

func (m *MockDocumentLineRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.DocumentLine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.DocumentLine), args.Error(1)
}

func (m *MockDocumentLineRepository) FindByDocumentID(ctx context.Context, documentID uuid.UUID) ([]accounting.DocumentLine, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]accounting.DocumentLine), args.Error(1)
}

func (m *MockDocumentLineRepository) Create(ctx context.Context, line *accounting.DocumentLine) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

func (m *MockDocumentLineRepository) Update(ctx context.Context, line *accounting.DocumentLine, expected shared.RowVersion) error {
	args := m.Called(ctx, line, expected)
	return args.Error(0)
}

func (m *MockDocumentLineRepository) Delete(ctx context.Context, id uuid.UUID, expected shared.RowVersion) error {
	args := m.Called(ctx, id, expected)
	return args.Error(0)
}

var _ accounting.DocumentLineRepository = (*MockDocumentLineRepository)(nil)

// Test helpers

func setupDocumentTestRouter() (*gin.Engine, *MockDocumentRepository, *MockDocumentLineRepository) {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	docRepo := new(MockDocumentRepository)
	lineRepo := new(MockDocumentLineRepository)
	service := accountingapp.NewDocumentService(docRepo, lineRepo)
	h := NewDocumentHandler(service)

	router := gin.New()
	router.GET("/documents/:id", h.GetByID)
	router.POST("/documents", h.Create)
	router.PUT("/documents/:id", h.Update)
	router.DELETE("/documents/:id", h.Delete)
	router.POST("/documents/:id/post", h.Post)

	return router, docRepo, lineRepo
}

func newTestDocument() *accounting.Document {
	return &accounting.Document{
		VersionedBase: shared.NewVersionedBase(),
		Number:        "INV-2026-0007",
		Type:          accounting.DocumentTypeInvoice,
		PartnerName:   "Acme GmbH",
		IssueDate:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Currency:      valueobject.EUR,
		Status:        accounting.DocumentStatusDraft,
	}
}

func quoted(token shared.RowVersion) string {
	return `"` + token.Encode() + `"`
}

// Tests

func TestDocumentHandler_GetByID(t *testing.T) {
	t.Run("returns document with quoted ETag", func(t *testing.T) {
		router, docRepo, _ := setupDocumentTestRouter()
		doc := newTestDocument()

		docRepo.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)

		req, _ := http.NewRequest(http.MethodGet, "/documents/"+doc.ID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, quoted(doc.RowVersion), w.Header().Get("ETag"))
	})

	t.Run("returns 404 for unknown document", func(t *testing.T) {
		router, docRepo, _ := setupDocumentTestRouter()
		id := uuid.New()

		docRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		req, _ := http.NewRequest(http.MethodGet, "/documents/"+id.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDocumentHandler_Update(t *testing.T) {
	updateBody := func() *bytes.Buffer {
		body, _ := json.Marshal(accountingapp.UpdateDocumentRequest{
			PartnerName: "New Partner AG",
			IssueDate:   time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		})
		return bytes.NewBuffer(body)
	}

	t.Run("missing If-Match answers 400", func(t *testing.T) {
		router, _, _ := setupDocumentTestRouter()

		req, _ := http.NewRequest(http.MethodPut, "/documents/"+uuid.New().String(), updateBody())
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_PRECONDITION_REQUIRED")
	})

	t.Run("undecodable If-Match answers 400", func(t *testing.T) {
		router, _, _ := setupDocumentTestRouter()

		req, _ := http.NewRequest(http.MethodPut, "/documents/"+uuid.New().String(), updateBody())
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("If-Match", `"not-base64!!"`)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_PRECONDITION_MALFORMED")
	})

	t.Run("stale token answers 409 and echoes current token in ETag", func(t *testing.T) {
		router, docRepo, _ := setupDocumentTestRouter()
		doc := newTestDocument()
		stale := shared.NewRowVersion()

		docRepo.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)

		req, _ := http.NewRequest(http.MethodPut, "/documents/"+doc.ID.String(), updateBody())
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("If-Match", quoted(stale))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, quoted(doc.RowVersion), w.Header().Get("ETag"))
		assert.Contains(t, w.Body.String(), "ERR_CONCURRENCY_CONFLICT")
		assert.Contains(t, w.Body.String(), stale.Encode())
		assert.Contains(t, w.Body.String(), doc.RowVersion.Encode())
		docRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("matching token answers 200 with a fresh ETag", func(t *testing.T) {
		router, docRepo, _ := setupDocumentTestRouter()
		doc := newTestDocument()
		current := doc.RowVersion

		docRepo.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)
		docRepo.On("Update", mock.Anything, mock.AnythingOfType("*accounting.Document"), current).Return(nil)

		req, _ := http.NewRequest(http.MethodPut, "/documents/"+doc.ID.String(), updateBody())
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("If-Match", quoted(current))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		newTag := w.Header().Get("ETag")
		assert.NotEmpty(t, newTag)
		assert.NotEqual(t, quoted(current), newTag)
		docRepo.AssertExpectations(t)
	})

	t.Run("weak validator prefix is accepted", func(t *testing.T) {
		router, docRepo, _ := setupDocumentTestRouter()
		doc := newTestDocument()
		current := doc.RowVersion

		docRepo.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)
		docRepo.On("Update", mock.Anything, mock.AnythingOfType("*accounting.Document"), current).Return(nil)

		req, _ := http.NewRequest(http.MethodPut, "/documents/"+doc.ID.String(), updateBody())
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("If-Match", `W/"`+current.Encode()+`"`)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestDocumentHandler_Create(t *testing.T) {
	t.Run("creates document and sets initial ETag", func(t *testing.T) {
		router, docRepo, _ := setupDocumentTestRouter()

		docRepo.On("Create", mock.Anything, mock.AnythingOfType("*accounting.Document")).Return(nil)

		body, _ := json.Marshal(accountingapp.CreateDocumentRequest{
			Number:      "INV-2026-0008",
			Type:        "INVOICE",
			PartnerName: "Acme GmbH",
			IssueDate:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			Currency:    "EUR",
		})
		req, _ := http.NewRequest(http.MethodPost, "/documents", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NotEmpty(t, w.Header().Get("ETag"))
		docRepo.AssertExpectations(t)
	})

	t.Run("rejects unsupported currency", func(t *testing.T) {
		router, _, _ := setupDocumentTestRouter()

		body, _ := json.Marshal(map[string]any{
			"number":       "INV-2026-0009",
			"type":         "INVOICE",
			"partner_name": "Acme GmbH",
			"issue_date":   "2026-03-10T00:00:00Z",
			"currency":     "XXX",
		})
		req, _ := http.NewRequest(http.MethodPost, "/documents", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDocumentHandler_Delete(t *testing.T) {
	t.Run("deletes with matching token", func(t *testing.T) {
		router, docRepo, _ := setupDocumentTestRouter()
		doc := newTestDocument()
		current := doc.RowVersion

		docRepo.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)
		docRepo.On("Delete", mock.Anything, doc.ID, current).Return(nil)

		req, _ := http.NewRequest(http.MethodDelete, "/documents/"+doc.ID.String(), nil)
		req.Header.Set("If-Match", quoted(current))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		docRepo.AssertExpectations(t)
	})

	t.Run("missing If-Match answers 400 without touching the store", func(t *testing.T) {
		router, docRepo, _ := setupDocumentTestRouter()

		req, _ := http.NewRequest(http.MethodDelete, "/documents/"+uuid.New().String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		docRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDocumentHandler_Post(t *testing.T) {
	t.Run("posts a draft with matching token", func(t *testing.T) {
		router, docRepo, _ := setupDocumentTestRouter()
		doc := newTestDocument()
		current := doc.RowVersion

		docRepo.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)
		docRepo.On("Update", mock.Anything, mock.AnythingOfType("*accounting.Document"), current).Return(nil)

		req, _ := http.NewRequest(http.MethodPost, "/documents/"+doc.ID.String()+"/post", nil)
		req.Header.Set("If-Match", quoted(current))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"POSTED"`)
	})
}
