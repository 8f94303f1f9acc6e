package handlers

import (
	"github.com/gin-gonic/gin"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/domain/catalog"
	"tradebook/internal/domain/stock"
)

// StockHandler serves read-only stock views.
type StockHandler struct {
	*BaseHandler
	ledger  stock.Ledger
	catalog *catalog.Service
}

// NewStockHandler creates a stock handler.
func NewStockHandler(base *BaseHandler, ledger stock.Ledger, catalogSvc *catalog.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		ledger:      ledger,
		catalog:     catalogSvc,
	}
}

// Balance handles GET /balances/:productId - current balance for one product.
func (h *StockHandler) Balance(c *gin.Context) {
	tid, ok := h.TenantID(c)
	if !ok {
		return
	}

	productID, err := id.Parse(c.Param("productId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid product id format"))
		return
	}

	balance, err := h.ledger.Balance(c.Request.Context(), tid, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"productId": productID.String(),
		"quantity":  balance,
	})
}

// Low handles GET /low - products at or below their reorder threshold.
func (h *StockHandler) Low(c *gin.Context) {
	tid, ok := h.TenantID(c)
	if !ok {
		return
	}

	products, err := h.catalog.ListProducts(c.Request.Context(), tid, catalog.ListFilter{})
	if err != nil {
		h.Error(c, err)
		return
	}

	levels := make([]stock.Level, 0)
	for _, p := range products {
		if !p.AtOrBelowMinStock() {
			continue
		}
		levels = append(levels, stock.Level{
			ProductID:   p.ID,
			ProductCode: p.Code,
			Quantity:    p.CurrentStock,
			MinStock:    p.MinStock,
			IsService:   p.IsService,
		})
	}

	h.OK(c, levels)
}

// RegisterRoutes registers stock routes on the group.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/balances/:productId", h.Balance)
	rg.GET("/low", h.Low)
}
