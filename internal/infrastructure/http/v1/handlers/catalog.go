package handlers

import (
	"github.com/gin-gonic/gin"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/domain/catalog"
	"tradebook/internal/infrastructure/http/v1/dto"
)

// CatalogHandler handles HTTP requests for the product, counterparty and
// warehouse catalogs.
type CatalogHandler struct {
	*BaseHandler
	service *catalog.Service
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(base *BaseHandler, service *catalog.Service) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: base,
		service:     service,
	}
}

// CreateProduct handles POST /products.
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	tid, ok := h.TenantID(c)
	if !ok {
		return
	}

	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := req.ToEntity()
	if err := h.service.CreateProduct(c.Request.Context(), tid, p); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, p)
}

// GetProduct handles GET /products/:id.
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	tid, ok := h.TenantID(c)
	if !ok {
		return
	}

	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	p, err := h.service.GetProduct(c.Request.Context(), tid, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// ListProducts handles GET /products.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	tid, ok := h.TenantID(c)
	if !ok {
		return
	}

	items, err := h.service.ListProducts(c.Request.Context(), tid, h.listFilter(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, items)
}

// CreateCounterparty handles POST /counterparties.
func (h *CatalogHandler) CreateCounterparty(c *gin.Context) {
	tid, ok := h.TenantID(c)
	if !ok {
		return
	}

	var req dto.CreateCounterpartyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cp := req.ToEntity()
	if err := h.service.CreateCounterparty(c.Request.Context(), tid, cp); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, cp)
}

// ListCounterparties handles GET /counterparties.
func (h *CatalogHandler) ListCounterparties(c *gin.Context) {
	tid, ok := h.TenantID(c)
	if !ok {
		return
	}

	items, err := h.service.ListCounterparties(c.Request.Context(), tid, h.listFilter(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, items)
}

// CreateWarehouse handles POST /warehouses.
func (h *CatalogHandler) CreateWarehouse(c *gin.Context) {
	tid, ok := h.TenantID(c)
	if !ok {
		return
	}

	var req dto.CreateWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	w := req.ToEntity()
	if err := h.service.CreateWarehouse(c.Request.Context(), tid, w); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, w)
}

// ListWarehouses handles GET /warehouses.
func (h *CatalogHandler) ListWarehouses(c *gin.Context) {
	tid, ok := h.TenantID(c)
	if !ok {
		return
	}

	items, err := h.service.ListWarehouses(c.Request.Context(), tid, h.listFilter(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, items)
}

func (h *CatalogHandler) listFilter(c *gin.Context) catalog.ListFilter {
	return catalog.ListFilter{
		Search: c.Query("search"),
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
}

// RegisterRoutes registers catalog routes on the group.
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.POST("", h.CreateProduct)
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
	}

	counterparties := rg.Group("/counterparties")
	{
		counterparties.POST("", h.CreateCounterparty)
		counterparties.GET("", h.ListCounterparties)
	}

	warehouses := rg.Group("/warehouses")
	{
		warehouses.POST("", h.CreateWarehouse)
		warehouses.GET("", h.ListWarehouses)
	}
}
