package handler

import (
	accountingapp "github.com/erp/accounting/internal/application/accounting"
	"github.com/erp/accounting/internal/domain/costing"
	"github.com/erp/accounting/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CostHandler handles cost header and cost line API endpoints
type CostHandler struct {
	BaseHandler
	costService *accountingapp.CostService
}

// NewCostHandler creates a new CostHandler
func NewCostHandler(costService *accountingapp.CostService) *CostHandler {
	return &CostHandler{
		costService: costService,
	}
}

// ListCostHeadersRequest represents cost header list query parameters
type ListCostHeadersRequest struct {
	dto.ListRequest
	DocumentID string `form:"document_id" binding:"omitempty,uuid"`
}

// List godoc
// @ID           listCostHeaders
// @Summary      List cost headers
// @Description  List cost headers with optional document and search filters
// @Tags         costs
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        document_id query string false "Filter by document ID" format(uuid)
// @Param        search query string false "Search in description"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /accounting/costs [get]
func (h *CostHandler) List(c *gin.Context) {
	req := ListCostHeadersRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := costing.CostHeaderFilter{
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.DocumentID != "" {
		docID, err := uuid.Parse(req.DocumentID)
		if err != nil {
			h.BadRequest(c, "Invalid document ID filter")
			return
		}
		filter.DocumentID = docID
	}

	headers, total, err := h.costService.ListCostHeaders(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, headers, total, req.Page, req.PageSize)
}

// GetByID godoc
// @ID           getCostHeaderById
// @Summary      Get cost header by ID
// @Description  Retrieve a cost header with its lines and derived totals; the response ETag carries the row version token
// @Tags         costs
// @Produce      json
// @Param        id path string true "Cost header ID" format(uuid)
// @Success      200 {object} dto.Response
// @Header       200 {string} ETag "Current row version token"
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /accounting/costs/{id} [get]
func (h *CostHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid cost header ID")
		return
	}

	header, err := h.costService.GetCostHeader(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SetETag(c, header.RowVersion)
	h.Success(c, header)
}

// Create godoc
// @ID           createCostHeader
// @Summary      Create a new cost header
// @Description  Create a cost header attached to an existing document
// @Tags         costs
// @Accept       json
// @Produce      json
// @Param        request body accounting.CreateCostHeaderRequest true "Cost header creation request"
// @Success      201 {object} dto.Response
// @Header       201 {string} ETag "Initial row version token"
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /accounting/costs [post]
func (h *CostHandler) Create(c *gin.Context) {
	var req accountingapp.CreateCostHeaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	header, err := h.costService.CreateCostHeader(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SetETag(c, header.RowVersion)
	h.Created(c, header)
}

// Update godoc
// @ID           updateCostHeader
// @Summary      Update a cost header
// @Description  Update cost header fields; requires the If-Match row version token
// @Tags         costs
// @Accept       json
// @Produce      json
// @Param        id path string true "Cost header ID" format(uuid)
// @Param        If-Match header string true "Row version token from a previous read"
// @Param        request body accounting.UpdateCostHeaderRequest true "Cost header update request"
// @Success      200 {object} dto.Response
// @Header       200 {string} ETag "New row version token"
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /accounting/costs/{id} [put]
func (h *CostHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid cost header ID")
		return
	}

	expected, ok := h.RequireIfMatch(c)
	if !ok {
		return
	}

	var req accountingapp.UpdateCostHeaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	header, err := h.costService.UpdateCostHeader(c.Request.Context(), id, expected, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SetETag(c, header.RowVersion)
	h.Success(c, header)
}

// Delete godoc
// @ID           deleteCostHeader
// @Summary      Delete a cost header
// @Description  Logically delete a cost header; requires If-Match
// @Tags         costs
// @Param        id path string true "Cost header ID" format(uuid)
// @Param        If-Match header string true "Row version token from a previous read"
// @Success      204
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /accounting/costs/{id} [delete]
func (h *CostHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid cost header ID")
		return
	}

	expected, ok := h.RequireIfMatch(c)
	if !ok {
		return
	}

	if err := h.costService.DeleteCostHeader(c.Request.Context(), id, expected); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Distribute godoc
// @ID           distributeCosts
// @Summary      Distribute a cost across its lines
// @Description  Spread the header's nominal amount across its lines by quantity (1), by value (2) or manually (3). The write replaces per-line amounts without checking their individual row versions.
// @Tags         costs
// @Accept       json
// @Produce      json
// @Param        id path string true "Cost header ID" format(uuid)
// @Param        request body accounting.DistributeRequest true "Distribution request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /accounting/costs/{id}/distribute [post]
func (h *CostHandler) Distribute(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid cost header ID")
		return
	}

	var req accountingapp.DistributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.costService.Distribute(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// CreateLine godoc
// @ID           createCostLine
// @Summary      Add a line to a cost header
// @Description  Append a cost line to a cost header
// @Tags         cost-lines
// @Accept       json
// @Produce      json
// @Param        id path string true "Cost header ID" format(uuid)
// @Param        request body accounting.CreateCostLineRequest true "Cost line creation request"
// @Success      201 {object} dto.Response
// @Header       201 {string} ETag "Initial row version token"
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /accounting/costs/{id}/lines [post]
func (h *CostHandler) CreateLine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid cost header ID")
		return
	}

	var req accountingapp.CreateCostLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	line, err := h.costService.CreateCostLine(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SetETag(c, line.RowVersion)
	h.Created(c, line)
}

// GetLine godoc
// @ID           getCostLineById
// @Summary      Get cost line by ID
// @Description  Retrieve a cost line; the response ETag carries the row version token
// @Tags         cost-lines
// @Produce      json
// @Param        id path string true "Cost line ID" format(uuid)
// @Success      200 {object} dto.Response
// @Header       200 {string} ETag "Current row version token"
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /accounting/cost-lines/{id} [get]
func (h *CostHandler) GetLine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid cost line ID")
		return
	}

	line, err := h.costService.GetCostLine(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SetETag(c, line.RowVersion)
	h.Success(c, line)
}

// UpdateLine godoc
// @ID           updateCostLine
// @Summary      Update a cost line
// @Description  Update cost line fields; requires the If-Match row version token
// @Tags         cost-lines
// @Accept       json
// @Produce      json
// @Param        id path string true "Cost line ID" format(uuid)
// @Param        If-Match header string true "Row version token from a previous read"
// @Param        request body accounting.UpdateCostLineRequest true "Cost line update request"
// @Success      200 {object} dto.Response
// @Header       200 {string} ETag "New row version token"
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /accounting/cost-lines/{id} [put]
func (h *CostHandler) UpdateLine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid cost line ID")
		return
	}

	expected, ok := h.RequireIfMatch(c)
	if !ok {
		return
	}

	var req accountingapp.UpdateCostLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	line, err := h.costService.UpdateCostLine(c.Request.Context(), id, expected, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SetETag(c, line.RowVersion)
	h.Success(c, line)
}

// DeleteLine godoc
// @ID           deleteCostLine
// @Summary      Delete a cost line
// @Description  Logically delete a cost line; requires If-Match
// @Tags         cost-lines
// @Param        id path string true "Cost line ID" format(uuid)
// @Param        If-Match header string true "Row version token from a previous read"
// @Success      204
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /accounting/cost-lines/{id} [delete]
func (h *CostHandler) DeleteLine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid cost line ID")
		return
	}

	expected, ok := h.RequireIfMatch(c)
	if !ok {
		return
	}

	if err := h.costService.DeleteCostLine(c.Request.Context(), id, expected); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
