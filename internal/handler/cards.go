package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmerrifield20/cardledger/internal/cards"
	"github.com/jmerrifield20/cardledger/internal/principal"
	"github.com/jmerrifield20/cardledger/internal/service"
	"go.uber.org/zap"
)

// CardHandler serves the card registry.
type CardHandler struct {
	svc    *service.LedgerService
	logger *zap.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(svc *service.LedgerService, logger *zap.Logger) *CardHandler {
	return &CardHandler{svc: svc, logger: logger}
}

// Register mounts the card routes on the given router group.
func (h *CardHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/cards", h.RegisterCard)
	rg.GET("/cards/:id", h.GetCard)
	rg.GET("/admin/cards", h.Admin)
	rg.POST("/admin/cards/transfer", h.TransferAdmin)
}

type registerCardResponse struct {
	ID uint64 `json:"id"`
}

// RegisterCard handles POST /cards.
func (h *CardHandler) RegisterCard(c *gin.Context) {
	p, ok := caller(c)
	if !ok {
		return
	}
	var in cards.CardInput
	if !bindJSON(c, &in) {
		return
	}

	id, err := h.svc.RegisterCard(c.Request.Context(), p, in)
	if err != nil {
		respondError(c, h.logger, "register card", err)
		return
	}
	c.JSON(http.StatusCreated, registerCardResponse{ID: id})
}

// GetCard handles GET /cards/:id.
func (h *CardHandler) GetCard(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	card, found, err := h.svc.GetCard(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "get card", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}
	c.JSON(http.StatusOK, card)
}

type transferAdminRequest struct {
	NewAdmin principal.Principal `json:"new_admin" binding:"required"`
}

type adminResponse struct {
	Admin principal.Principal `json:"admin"`
}

// TransferAdmin handles POST /admin/cards/transfer.
func (h *CardHandler) TransferAdmin(c *gin.Context) {
	p, ok := caller(c)
	if !ok {
		return
	}
	var req transferAdminRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.svc.TransferCardAdmin(c.Request.Context(), p, req.NewAdmin); err != nil {
		respondError(c, h.logger, "transfer card admin", err)
		return
	}
	c.JSON(http.StatusOK, adminResponse{Admin: req.NewAdmin})
}

// Admin handles GET /admin/cards.
func (h *CardHandler) Admin(c *gin.Context) {
	admin, err := h.svc.CardAdmin(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "card admin", err)
		return
	}
	c.JSON(http.StatusOK, adminResponse{Admin: admin})
}
