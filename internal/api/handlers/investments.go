package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gw-invest-ledger/internal/api/middleware"
	"gw-invest-ledger/internal/service"
)

// InvestmentsHandler обработчик инвестиционных позиций
type InvestmentsHandler struct {
	service *service.LedgerService
	logger  *logrus.Logger
}

// NewInvestmentsHandler создает новый обработчик позиций
func NewInvestmentsHandler(service *service.LedgerService, logger *logrus.Logger) *InvestmentsHandler {
	return &InvestmentsHandler{
		service: service,
		logger:  logger,
	}
}

// InvestRequest запрос на вложение
type InvestRequest struct {
	PlanID    int64   `json:"plan_id" binding:"required,gt=0"`
	Principal float64 `json:"principal" binding:"required,gt=0"`
	Method    string  `json:"method" binding:"required,oneof=BTC ETH SOL"`
}

// Invest создает заявку на вложение в план
// @Summary Request an investment
// @Description Create a pending investment position in a plan
// @Tags investments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body InvestRequest true "Investment data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/investments [post]
func (h *InvestmentsHandler) Invest(c *gin.Context) {
	uid, err := middleware.GetUID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req InvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	position, err := h.service.RequestInvestment(c.Request.Context(), uid, req.PlanID, req.Principal, req.Method)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Investment request created",
		"position": position,
	})
}

// MyInvestments возвращает позиции пользователя
// @Summary List own investments
// @Tags investments
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /api/v1/investments [get]
func (h *InvestmentsHandler) MyInvestments(c *gin.Context) {
	uid, err := middleware.GetUID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	views, err := h.service.UserPositions(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"investments": views})
}

// AllInvestments возвращает все позиции (админ)
// @Summary List all investments
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Router /api/v1/admin/investments [get]
func (h *InvestmentsHandler) AllInvestments(c *gin.Context) {
	views, err := h.service.AllPositions(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"investments": views})
}

// Approve одобряет позицию (админ)
// @Summary Approve an investment
// @Description Approve a pending position and return its accrual parameters
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Position ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/admin/investments/{id}/approve [post]
func (h *InvestmentsHandler) Approve(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	approval, err := h.service.ApprovePosition(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Investment approved",
		"position":     approval.Position,
		"dailyReturn":  approval.DailyReturn,
		"durationDays": approval.DurationDays,
	})
}

// Process переводит позицию в processing (админ)
// @Summary Mark an investment as processing
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Position ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/admin/investments/{id}/process [post]
func (h *InvestmentsHandler) Process(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	position, err := h.service.ProcessPosition(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Investment processing", "position": position})
}

// Decline отклоняет позицию (админ)
// @Summary Decline an investment
// @Description Decline a position and refund its principal
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Position ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/admin/investments/{id}/decline [post]
func (h *InvestmentsHandler) Decline(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	position, err := h.service.DeclinePosition(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Investment declined", "position": position})
}

// End завершает позицию (админ)
// @Summary End an investment
// @Description End an approved position; accrual stops
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Position ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/admin/investments/{id}/end [post]
func (h *InvestmentsHandler) End(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	position, err := h.service.EndPosition(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Investment ended", "position": position})
}
