package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/domain/document"
	"tradebook/internal/infrastructure/http/v1/dto"
)

// DocumentHandler handles HTTP requests for one document kind.
// The same handler serves both purchases and sales; the kind is fixed at
// registration and never taken from the request body.
type DocumentHandler struct {
	*BaseHandler
	processor *document.Processor
	kind      document.Kind
}

// NewDocumentHandler creates a document handler for the given kind.
func NewDocumentHandler(base *BaseHandler, processor *document.Processor, kind document.Kind) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler: base,
		processor:   processor,
		kind:        kind,
	}
}

// Create handles POST - create a document, optionally confirming it.
func (h *DocumentHandler) Create(c *gin.Context) {
	tid, ok := h.TenantID(c)
	if !ok {
		return
	}

	var req dto.CreateDocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToCreateInput(h.kind)
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.processor.Create(c.Request.Context(), tid, in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, result)
}

// Get handles GET /:id - fetch a document with items.
func (h *DocumentHandler) Get(c *gin.Context) {
	tid, ok := h.TenantID(c)
	if !ok {
		return
	}

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.processor.Get(c.Request.Context(), tid, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Update handles PUT /:id - replace items and patch header fields.
func (h *DocumentHandler) Update(c *gin.Context) {
	tid, ok := h.TenantID(c)
	if !ok {
		return
	}

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateDocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToUpdateInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.processor.Update(c.Request.Context(), tid, docID, in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// Confirm handles POST /:id/confirm - promote a draft and apply stock deltas.
func (h *DocumentHandler) Confirm(c *gin.Context) {
	tid, ok := h.TenantID(c)
	if !ok {
		return
	}

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	result, err := h.processor.Confirm(c.Request.Context(), tid, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// Delete handles DELETE /:id - reverse stock deltas and cancel the document.
func (h *DocumentHandler) Delete(c *gin.Context) {
	tid, ok := h.TenantID(c)
	if !ok {
		return
	}

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	result, err := h.processor.Delete(c.Request.Context(), tid, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// List handles GET - list documents of this kind with filtering.
func (h *DocumentHandler) List(c *gin.Context) {
	tid, ok := h.TenantID(c)
	if !ok {
		return
	}

	kind := h.kind
	filter := document.ListFilter{
		Kind:   &kind,
		Search: c.Query("search"),
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if status := c.Query("status"); status != "" {
		s := document.Status(status)
		filter.Status = &s
	}

	if counterpartyID := c.Query("counterpartyId"); counterpartyID != "" {
		if parsed, err := id.Parse(counterpartyID); err == nil {
			filter.CounterpartyID = &parsed
		}
	}

	if warehouseID := c.Query("warehouseId"); warehouseID != "" {
		if parsed, err := id.Parse(warehouseID); err == nil {
			filter.WarehouseID = &parsed
		}
	}

	if dateFrom := c.Query("dateFrom"); dateFrom != "" {
		if parsed, err := time.Parse(time.RFC3339, dateFrom); err == nil {
			filter.DateFrom = &parsed
		}
	}

	if dateTo := c.Query("dateTo"); dateTo != "" {
		if parsed, err := time.Parse(time.RFC3339, dateTo); err == nil {
			filter.DateTo = &parsed
		}
	}

	result, err := h.processor.List(c.Request.Context(), tid, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// RegisterRoutes registers document routes on the group.
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.POST("/:id/confirm", h.Confirm)
	rg.DELETE("/:id", h.Delete)
}
