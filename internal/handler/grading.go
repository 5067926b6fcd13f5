package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmerrifield20/cardledger/internal/principal"
	"github.com/jmerrifield20/cardledger/internal/service"
	"go.uber.org/zap"
)

// GradingHandler serves the grading registry.
type GradingHandler struct {
	svc    *service.LedgerService
	logger *zap.Logger
}

// NewGradingHandler creates a new GradingHandler.
func NewGradingHandler(svc *service.LedgerService, logger *zap.Logger) *GradingHandler {
	return &GradingHandler{svc: svc, logger: logger}
}

// Register mounts the grading routes on the given router group.
func (h *GradingHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/grading")
	{
		g.POST("/graders", h.AddGrader)
		g.GET("/graders", h.ListGraders)
		g.GET("/graders/:principal", h.CheckGrader)
		g.DELETE("/graders/:principal", h.RemoveGrader)
		g.POST("/cards/:id", h.GradeCard)
		g.GET("/cards/:id", h.GetGrading)
	}
	rg.GET("/admin/grading", h.Admin)
	rg.POST("/admin/grading/transfer", h.TransferAdmin)
}

type addGraderRequest struct {
	Grader principal.Principal `json:"grader" binding:"required"`
}

type graderStatus struct {
	Grader   principal.Principal `json:"grader"`
	Verified bool                `json:"verified"`
}

// AddGrader handles POST /grading/graders.
func (h *GradingHandler) AddGrader(c *gin.Context) {
	p, ok := caller(c)
	if !ok {
		return
	}
	var req addGraderRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.svc.AddGrader(c.Request.Context(), p, req.Grader); err != nil {
		respondError(c, h.logger, "add grader", err)
		return
	}
	c.JSON(http.StatusOK, graderStatus{Grader: req.Grader, Verified: true})
}

// RemoveGrader handles DELETE /grading/graders/:principal.
func (h *GradingHandler) RemoveGrader(c *gin.Context) {
	p, ok := caller(c)
	if !ok {
		return
	}
	grader := principal.Principal(c.Param("principal"))

	if err := h.svc.RemoveGrader(c.Request.Context(), p, grader); err != nil {
		respondError(c, h.logger, "remove grader", err)
		return
	}
	c.JSON(http.StatusOK, graderStatus{Grader: grader, Verified: false})
}

// ListGraders handles GET /grading/graders.
func (h *GradingHandler) ListGraders(c *gin.Context) {
	graders, err := h.svc.Graders(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "list graders", err)
		return
	}
	if graders == nil {
		graders = []principal.Principal{}
	}
	c.JSON(http.StatusOK, gin.H{"graders": graders, "count": len(graders)})
}

// CheckGrader handles GET /grading/graders/:principal. Unknown principals
// are reported as unverified rather than missing.
func (h *GradingHandler) CheckGrader(c *gin.Context) {
	grader := principal.Principal(c.Param("principal"))

	verified, err := h.svc.IsVerifiedGrader(c.Request.Context(), grader)
	if err != nil {
		respondError(c, h.logger, "check grader", err)
		return
	}
	c.JSON(http.StatusOK, graderStatus{Grader: grader, Verified: verified})
}

type gradeCardRequest struct {
	Grade *uint32 `json:"grade" binding:"required"`
	Notes string  `json:"notes"`
}

type gradeCardResponse struct {
	CardID      uint64 `json:"card_id"`
	GradingDate uint64 `json:"grading_date"`
}

// GradeCard handles POST /grading/cards/:id.
func (h *GradingHandler) GradeCard(c *gin.Context) {
	p, ok := caller(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req gradeCardRequest
	if !bindJSON(c, &req) {
		return
	}

	at, err := h.svc.GradeCard(c.Request.Context(), p, id, *req.Grade, req.Notes)
	if err != nil {
		respondError(c, h.logger, "grade card", err)
		return
	}
	c.JSON(http.StatusCreated, gradeCardResponse{CardID: id, GradingDate: at})
}

// GetGrading handles GET /grading/cards/:id.
func (h *GradingHandler) GetGrading(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	rec, found, err := h.svc.GetGrading(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "get grading", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "grading not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// TransferAdmin handles POST /admin/grading/transfer.
func (h *GradingHandler) TransferAdmin(c *gin.Context) {
	p, ok := caller(c)
	if !ok {
		return
	}
	var req transferAdminRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.svc.TransferGradingAdmin(c.Request.Context(), p, req.NewAdmin); err != nil {
		respondError(c, h.logger, "transfer grading admin", err)
		return
	}
	c.JSON(http.StatusOK, adminResponse{Admin: req.NewAdmin})
}

// Admin handles GET /admin/grading.
func (h *GradingHandler) Admin(c *gin.Context) {
	admin, err := h.svc.GradingAdmin(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "grading admin", err)
		return
	}
	c.JSON(http.StatusOK, adminResponse{Admin: admin})
}
