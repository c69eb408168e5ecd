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
	"github.com/erp/accounting/internal/domain/costing"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/domain/shared/valueobject"
	"github.com/erp/accounting/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCostHeaderRepository implements costing.CostHeaderRepository for testing
type MockCostHeaderRepository struct {
	mock.Mock
}

func (m *MockCostHeaderRepository) FindByID(ctx context.Context, id uuid.UUID) (*costing.CostHeader, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*costing.CostHeader), args.Error(1)
}

func (m *MockCostHeaderRepository) FindAll(ctx context.Context, filter costing.CostHeaderFilter) ([]costing.CostHeader, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]costing.CostHeader), args.Get(1).(int64), args.Error(2)
}

func (m *MockCostHeaderRepository) Create(ctx context.Context, header *costing.CostHeader) error {
	args := m.Called(ctx, header)
	return args.Error(0)
}

func (m *MockCostHeaderRepository) Update(ctx context.Context, header *costing.CostHeader, expected shared.RowVersion) error {
	args := m.Called(ctx, header, expected)
	return args.Error(0)
}

func (m *MockCostHeaderRepository) Delete(ctx context.Context, id uuid.UUID, expected shared.RowVersion) error {
	args := m.Called(ctx, id, expected)
	return args.Error(0)
}

func (m *MockCostHeaderRepository) SaveDistribution(ctx context.Context, headerID uuid.UUID, lines []*costing.CostLine) error {
	args := m.Called(ctx, headerID, lines)
	return args.Error(0)
}

var _ costing.CostHeaderRepository = (*MockCostHeaderRepository)(nil)

// MockCostLineRepository implements costing.CostLineRepository for testing
type MockCostLineRepository struct {
	mock.Mock
}

func (m *MockCostLineRepository) FindByID(ctx context.Context, id uuid.UUID) (*costing.CostLine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*costing.CostLine), args.Error(1)
}

func (m *MockCostLineRepository) FindByHeaderID(ctx context.Context, headerID uuid.UUID) ([]costing.CostLine, error) {
	args := m.Called(ctx, headerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]costing.CostLine), args.Error(1)
}

func (m *MockCostLineRepository) Create(ctx context.Context, line *costing.CostLine) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

func (m *MockCostLineRepository) Update(ctx context.Context, line *costing.CostLine, expected shared.RowVersion) error {
	args := m.Called(ctx, line, expected)
	return args.Error(0)
}

func (m *MockCostLineRepository) Delete(ctx context.Context, id uuid.UUID, expected shared.RowVersion) error {
	args := m.Called(ctx, id, expected)
	return args.Error(0)
}

var _ costing.CostLineRepository = (*MockCostLineRepository)(nil)

// Test helpers

func setupCostTestRouter() (*gin.Engine, *MockDocumentRepository, *MockCostHeaderRepository, *MockCostLineRepository) {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	docRepo := new(MockDocumentRepository)
	headerRepo := new(MockCostHeaderRepository)
	lineRepo := new(MockCostLineRepository)
	service := accountingapp.NewCostService(docRepo, headerRepo, lineRepo)
	h := NewCostHandler(service)

	router := gin.New()
	router.GET("/costs", h.List)
	router.GET("/costs/:id", h.GetByID)
	router.POST("/costs", h.Create)
	router.PUT("/costs/:id", h.Update)
	router.DELETE("/costs/:id", h.Delete)
	router.POST("/costs/:id/distribute", h.Distribute)
	router.PUT("/cost-lines/:id", h.UpdateLine)

	return router, docRepo, headerRepo, lineRepo
}

func newTestCostHeaderWithLines(quantities ...string) *costing.CostHeader {
	header := &costing.CostHeader{
		VersionedBase: shared.NewVersionedBase(),
		DocumentID:    uuid.New(),
		Description:   "Freight Q1",
		DueDate:       time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
		Currency:      valueobject.EUR,
		Amount:        decimal.RequireFromString("120.00"),
	}
	for _, q := range quantities {
		header.Lines = append(header.Lines, costing.CostLine{
			VersionedBase: shared.NewVersionedBase(),
			CostHeaderID:  header.ID,
			Description:   "line",
			Quantity:      decimal.RequireFromString(q),
		})
	}
	return header
}

// Tests

func TestCostHandler_GetByID(t *testing.T) {
	t.Run("returns header with derived totals and quoted ETag", func(t *testing.T) {
		router, _, headerRepo, _ := setupCostTestRouter()
		header := newTestCostHeaderWithLines("1", "2")

		headerRepo.On("FindByID", mock.Anything, header.ID).Return(header, nil)

		req, _ := http.NewRequest(http.MethodGet, "/costs/"+header.ID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, quoted(header.RowVersion), w.Header().Get("ETag"))
	})
}

func TestCostHandler_List(t *testing.T) {
	t.Run("filters by document", func(t *testing.T) {
		router, _, headerRepo, _ := setupCostTestRouter()
		docID := uuid.New()

		headerRepo.On("FindAll", mock.Anything, mock.MatchedBy(func(f costing.CostHeaderFilter) bool {
			return f.DocumentID == docID
		})).Return([]costing.CostHeader{}, int64(0), nil)

		req, _ := http.NewRequest(http.MethodGet, "/costs?document_id="+docID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		headerRepo.AssertExpectations(t)
	})

	t.Run("malformed document filter answers 400", func(t *testing.T) {
		router, _, headerRepo, _ := setupCostTestRouter()

		req, _ := http.NewRequest(http.MethodGet, "/costs?document_id=not-a-uuid", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		headerRepo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
	})
}

func TestCostHandler_Distribute(t *testing.T) {
	t.Run("distributes by quantity without requiring If-Match", func(t *testing.T) {
		router, _, headerRepo, _ := setupCostTestRouter()
		header := newTestCostHeaderWithLines("1", "2")

		headerRepo.On("FindByID", mock.Anything, header.ID).Return(header, nil)
		headerRepo.On("SaveDistribution", mock.Anything, header.ID, mock.Anything).Return(nil)

		body, _ := json.Marshal(accountingapp.DistributeRequest{Method: 1})
		req, _ := http.NewRequest(http.MethodPost, "/costs/"+header.ID.String()+"/distribute", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"items_processed":2`)
		headerRepo.AssertExpectations(t)
	})

	t.Run("manual distribution without amounts answers 400", func(t *testing.T) {
		router, _, headerRepo, _ := setupCostTestRouter()
		header := newTestCostHeaderWithLines("1")

		headerRepo.On("FindByID", mock.Anything, header.ID).Return(header, nil)

		body, _ := json.Marshal(accountingapp.DistributeRequest{Method: 3})
		req, _ := http.NewRequest(http.MethodPost, "/costs/"+header.ID.String()+"/distribute", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		headerRepo.AssertNotCalled(t, "SaveDistribution", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown manual line id answers 404", func(t *testing.T) {
		router, _, headerRepo, _ := setupCostTestRouter()
		header := newTestCostHeaderWithLines("1")

		headerRepo.On("FindByID", mock.Anything, header.ID).Return(header, nil)

		body, _ := json.Marshal(accountingapp.DistributeRequest{
			Method: 3,
			Amounts: map[uuid.UUID]decimal.Decimal{
				uuid.New(): decimal.RequireFromString("120.00"),
			},
		})
		req, _ := http.NewRequest(http.MethodPost, "/costs/"+header.ID.String()+"/distribute", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		headerRepo.AssertNotCalled(t, "SaveDistribution", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCostHandler_Update(t *testing.T) {
	t.Run("stale token answers 409 with current token in ETag", func(t *testing.T) {
		router, _, headerRepo, _ := setupCostTestRouter()
		header := newTestCostHeaderWithLines()
		stale := shared.NewRowVersion()

		headerRepo.On("FindByID", mock.Anything, header.ID).Return(header, nil)

		body, _ := json.Marshal(accountingapp.UpdateCostHeaderRequest{
			Description: "Freight Q1 revised",
			DueDate:     time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC),
			Amount:      decimal.RequireFromString("150.00"),
		})
		req, _ := http.NewRequest(http.MethodPut, "/costs/"+header.ID.String(), bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("If-Match", quoted(stale))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, quoted(header.RowVersion), w.Header().Get("ETag"))
		assert.Contains(t, w.Body.String(), stale.Encode())
		assert.Contains(t, w.Body.String(), header.RowVersion.Encode())
	})
}

func TestCostHandler_UpdateLine(t *testing.T) {
	t.Run("missing If-Match answers 400", func(t *testing.T) {
		router, _, _, lineRepo := setupCostTestRouter()

		body, _ := json.Marshal(accountingapp.UpdateCostLineRequest{Description: "adjusted"})
		req, _ := http.NewRequest(http.MethodPut, "/cost-lines/"+uuid.New().String(), bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		lineRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}
