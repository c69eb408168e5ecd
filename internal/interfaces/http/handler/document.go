package handler

import (
	"context"

	accountingapp "github.com/erp/accounting/internal/application/accounting"
	"github.com/erp/accounting/internal/domain/accounting"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentHandler handles document-related API endpoints
type DocumentHandler struct {
	BaseHandler
	documentService *accountingapp.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *accountingapp.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
	}
}

// ListDocumentsRequest represents document list query parameters
type ListDocumentsRequest struct {
	dto.ListRequest
	Type   string `form:"type" binding:"omitempty,oneof=INVOICE CREDIT_NOTE RECEIPT"`
	Status string `form:"status" binding:"omitempty,oneof=DRAFT POSTED CANCELLED"`
}

// List godoc
// @ID           listDocuments
// @Summary      List documents
// @Description  List documents with optional type, status and search filters
// @Tags         documents
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        type query string false "Document type" Enums(INVOICE, CREDIT_NOTE, RECEIPT)
// @Param        status query string false "Document status" Enums(DRAFT, POSTED, CANCELLED)
// @Param        search query string false "Search in number and partner name"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /accounting/documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	req := ListDocumentsRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	docs, total, err := h.documentService.ListDocuments(c.Request.Context(), accounting.DocumentFilter{
		Search:   req.Search,
		Type:     accounting.DocumentType(req.Type),
		Status:   accounting.DocumentStatus(req.Status),
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, docs, total, req.Page, req.PageSize)
}

// GetByID godoc
// @ID           getDocumentById
// @Summary      Get document by ID
// @Description  Retrieve a document; the response ETag carries the row version token
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response
// @Header       200 {string} ETag "Current row version token"
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /accounting/documents/{id} [get]
func (h *DocumentHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	doc, err := h.documentService.GetDocument(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SetETag(c, doc.RowVersion)
	h.Success(c, doc)
}

// Create godoc
// @ID           createDocument
// @Summary      Create a new document
// @Description  Create a draft accounting document
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        request body accounting.CreateDocumentRequest true "Document creation request"
// @Success      201 {object} dto.Response
// @Header       201 {string} ETag "Initial row version token"
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /accounting/documents [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	var req accountingapp.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.documentService.CreateDocument(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SetETag(c, doc.RowVersion)
	h.Created(c, doc)
}

// Update godoc
// @ID           updateDocument
// @Summary      Update a document
// @Description  Update document fields; requires the If-Match row version token
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        If-Match header string true "Row version token from a previous read"
// @Param        request body accounting.UpdateDocumentRequest true "Document update request"
// @Success      200 {object} dto.Response
// @Header       200 {string} ETag "New row version token"
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /accounting/documents/{id} [put]
func (h *DocumentHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	expected, ok := h.RequireIfMatch(c)
	if !ok {
		return
	}

	var req accountingapp.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.documentService.UpdateDocument(c.Request.Context(), id, expected, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SetETag(c, doc.RowVersion)
	h.Success(c, doc)
}

// Post godoc
// @ID           postDocument
// @Summary      Post a document
// @Description  Transition a draft document to posted; requires If-Match
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        If-Match header string true "Row version token from a previous read"
// @Success      200 {object} dto.Response
// @Header       200 {string} ETag "New row version token"
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /accounting/documents/{id}/post [post]
func (h *DocumentHandler) Post(c *gin.Context) {
	h.transition(c, h.documentService.PostDocument)
}

// Cancel godoc
// @ID           cancelDocument
// @Summary      Cancel a document
// @Description  Transition a document to cancelled; requires If-Match
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        If-Match header string true "Row version token from a previous read"
// @Success      200 {object} dto.Response
// @Header       200 {string} ETag "New row version token"
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /accounting/documents/{id}/cancel [post]
func (h *DocumentHandler) Cancel(c *gin.Context) {
	h.transition(c, h.documentService.CancelDocument)
}

func (h *DocumentHandler) transition(c *gin.Context, apply func(ctx context.Context, id uuid.UUID, expected shared.RowVersion) (*accountingapp.DocumentResponse, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	expected, ok := h.RequireIfMatch(c)
	if !ok {
		return
	}

	doc, err := apply(c.Request.Context(), id, expected)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SetETag(c, doc.RowVersion)
	h.Success(c, doc)
}

// Delete godoc
// @ID           deleteDocument
// @Summary      Delete a document
// @Description  Logically delete a document; requires If-Match
// @Tags         documents
// @Param        id path string true "Document ID" format(uuid)
// @Param        If-Match header string true "Row version token from a previous read"
// @Success      204
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /accounting/documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	expected, ok := h.RequireIfMatch(c)
	if !ok {
		return
	}

	if err := h.documentService.DeleteDocument(c.Request.Context(), id, expected); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// ListLines godoc
// @ID           listDocumentLines
// @Summary      List document lines
// @Description  List the lines of a document in line-number order
// @Tags         document-lines
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /accounting/documents/{id}/lines [get]
func (h *DocumentHandler) ListLines(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	lines, err := h.documentService.ListLines(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lines)
}

// CreateLine godoc
// @ID           createDocumentLine
// @Summary      Add a line to a document
// @Description  Append a line to a draft document; line numbers are assigned by the server
// @Tags         document-lines
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body accounting.CreateDocumentLineRequest true "Line creation request"
// @Success      201 {object} dto.Response
// @Header       201 {string} ETag "Initial row version token"
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /accounting/documents/{id}/lines [post]
func (h *DocumentHandler) CreateLine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	var req accountingapp.CreateDocumentLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	line, err := h.documentService.CreateLine(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SetETag(c, line.RowVersion)
	h.Created(c, line)
}

// GetLine godoc
// @ID           getDocumentLineById
// @Summary      Get document line by ID
// @Description  Retrieve a document line; the response ETag carries the row version token
// @Tags         document-lines
// @Produce      json
// @Param        id path string true "Line ID" format(uuid)
// @Success      200 {object} dto.Response
// @Header       200 {string} ETag "Current row version token"
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /accounting/lines/{id} [get]
func (h *DocumentHandler) GetLine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid line ID")
		return
	}

	line, err := h.documentService.GetLine(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SetETag(c, line.RowVersion)
	h.Success(c, line)
}

// UpdateLine godoc
// @ID           updateDocumentLine
// @Summary      Update a document line
// @Description  Update line fields; requires the If-Match row version token
// @Tags         document-lines
// @Accept       json
// @Produce      json
// @Param        id path string true "Line ID" format(uuid)
// @Param        If-Match header string true "Row version token from a previous read"
// @Param        request body accounting.UpdateDocumentLineRequest true "Line update request"
// @Success      200 {object} dto.Response
// @Header       200 {string} ETag "New row version token"
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /accounting/lines/{id} [put]
func (h *DocumentHandler) UpdateLine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid line ID")
		return
	}

	expected, ok := h.RequireIfMatch(c)
	if !ok {
		return
	}

	var req accountingapp.UpdateDocumentLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	line, err := h.documentService.UpdateLine(c.Request.Context(), id, expected, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SetETag(c, line.RowVersion)
	h.Success(c, line)
}

// DeleteLine godoc
// @ID           deleteDocumentLine
// @Summary      Delete a document line
// @Description  Logically delete a document line; requires If-Match
// @Tags         document-lines
// @Param        id path string true "Line ID" format(uuid)
// @Param        If-Match header string true "Row version token from a previous read"
// @Success      204
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /accounting/lines/{id} [delete]
func (h *DocumentHandler) DeleteLine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid line ID")
		return
	}

	expected, ok := h.RequireIfMatch(c)
	if !ok {
		return
	}

	if err := h.documentService.DeleteLine(c.Request.Context(), id, expected); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
