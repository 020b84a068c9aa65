package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	snapshotapp "github.com/senkronix/b2b-bridge/internal/application/snapshot"
	"github.com/senkronix/b2b-bridge/internal/domain/catalog"
	"github.com/senkronix/b2b-bridge/internal/interfaces/http/dto"
)

// SnapshotHandler serves the published catalog and customer ledger, and
// accepts full replacements from the sync agent.
type SnapshotHandler struct {
	BaseHandler
	service *snapshotapp.Service
	logger  *zap.Logger
}

// NewSnapshotHandler creates a snapshot handler.
func NewSnapshotHandler(service *snapshotapp.Service, logger *zap.Logger) *SnapshotHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotHandler{service: service, logger: logger}
}

// ReplaceCatalog handles POST /api/products
func (h *SnapshotHandler) ReplaceCatalog(c *gin.Context) {
	var items []catalog.Item
	if err := c.ShouldBindJSON(&items); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "request body must be a JSON array of products")
		return
	}

	count, err := h.service.ReplaceCatalog(c.Request.Context(), items)
	if err != nil {
		h.logger.Error("catalog replacement failed", zap.Error(err))
		h.InternalError(c, "could not store the catalog")
		return
	}

	h.Success(c, gin.H{"received": count})
}

// GetCatalog handles GET /api/products
func (h *SnapshotHandler) GetCatalog(c *gin.Context) {
	items, err := h.service.Catalog(c.Request.Context())
	if err != nil {
		h.logger.Error("catalog read failed", zap.Error(err))
		h.InternalError(c, "could not load the catalog")
		return
	}
	h.Success(c, items)
}

// ReplaceBalances handles POST /api/customer-balances
func (h *SnapshotHandler) ReplaceBalances(c *gin.Context) {
	var balances []catalog.CustomerBalance
	if err := c.ShouldBindJSON(&balances); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "request body must be a JSON array of balances")
		return
	}

	count, err := h.service.ReplaceBalances(c.Request.Context(), balances)
	if err != nil {
		h.logger.Error("ledger replacement failed", zap.Error(err))
		h.InternalError(c, "could not store the ledger")
		return
	}

	h.Success(c, gin.H{"received": count})
}

// GetBalances handles GET /api/customer-balances
func (h *SnapshotHandler) GetBalances(c *gin.Context) {
	balances, err := h.service.Balances(c.Request.Context())
	if err != nil {
		h.logger.Error("ledger read failed", zap.Error(err))
		h.InternalError(c, "could not load the ledger")
		return
	}
	h.Success(c, balances)
}
