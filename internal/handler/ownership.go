package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmerrifield20/cardledger/internal/ownership"
	"github.com/jmerrifield20/cardledger/internal/principal"
	"github.com/jmerrifield20/cardledger/internal/service"
	"go.uber.org/zap"
)

// OwnershipHandler serves the ownership ledger.
type OwnershipHandler struct {
	svc    *service.LedgerService
	logger *zap.Logger
}

// NewOwnershipHandler creates a new OwnershipHandler.
func NewOwnershipHandler(svc *service.LedgerService, logger *zap.Logger) *OwnershipHandler {
	return &OwnershipHandler{svc: svc, logger: logger}
}

// Register mounts the ownership routes on the given router group.
func (h *OwnershipHandler) Register(rg *gin.RouterGroup) {
	o := rg.Group("/ownership/cards/:id")
	{
		o.POST("", h.RegisterOwnership)
		o.GET("", h.GetOwner)
		o.POST("/transfer", h.Transfer)
		o.GET("/history", h.History)
		o.GET("/history/:idx", h.HistoryEntry)
	}
}

// RegisterOwnership handles POST /ownership/cards/:id. The caller becomes
// the owner.
func (h *OwnershipHandler) RegisterOwnership(c *gin.Context) {
	p, ok := caller(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.svc.RegisterOwnership(c.Request.Context(), p, id); err != nil {
		respondError(c, h.logger, "register ownership", err)
		return
	}
	c.JSON(http.StatusCreated, ownership.OwnerRecord{CardID: id, Owner: p})
}

type transferOwnershipRequest struct {
	NewOwner principal.Principal `json:"new_owner" binding:"required"`
}

type transferOwnershipResponse struct {
	CardID       uint64              `json:"card_id"`
	Owner        principal.Principal `json:"owner"`
	TransferDate uint64              `json:"transfer_date"`
}

// Transfer handles POST /ownership/cards/:id/transfer.
func (h *OwnershipHandler) Transfer(c *gin.Context) {
	p, ok := caller(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req transferOwnershipRequest
	if !bindJSON(c, &req) {
		return
	}

	at, err := h.svc.TransferOwnership(c.Request.Context(), p, id, req.NewOwner)
	if err != nil {
		respondError(c, h.logger, "transfer ownership", err)
		return
	}
	c.JSON(http.StatusOK, transferOwnershipResponse{CardID: id, Owner: req.NewOwner, TransferDate: at})
}

// GetOwner handles GET /ownership/cards/:id.
func (h *OwnershipHandler) GetOwner(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	rec, found, err := h.svc.Owner(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "get owner", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "card ownership not registered"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

type historyResponse struct {
	CardID  uint64                   `json:"card_id"`
	Count   uint64                   `json:"count"`
	Entries []ownership.HistoryEntry `json:"entries"`
}

// History handles GET /ownership/cards/:id/history. Count is the card's
// history counter. Cards without ownership report count 0 rather than 404.
func (h *OwnershipHandler) History(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	count, err := h.svc.HistoryCount(ctx, id)
	if err != nil {
		respondError(c, h.logger, "ownership history count", err)
		return
	}
	entries, err := h.svc.History(ctx, id)
	if err != nil {
		respondError(c, h.logger, "ownership history", err)
		return
	}
	if entries == nil {
		entries = []ownership.HistoryEntry{}
	}
	c.JSON(http.StatusOK, historyResponse{CardID: id, Count: count, Entries: entries})
}

// HistoryEntry handles GET /ownership/cards/:id/history/:idx.
func (h *OwnershipHandler) HistoryEntry(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	idx, ok := uintParam(c, "idx")
	if !ok {
		return
	}

	entry, found, err := h.svc.HistoryEntry(c.Request.Context(), id, idx)
	if err != nil {
		respondError(c, h.logger, "ownership history entry", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "history entry not found"})
		return
	}
	c.JSON(http.StatusOK, entry)
}
