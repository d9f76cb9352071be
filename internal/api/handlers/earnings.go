package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gw-invest-ledger/internal/api/middleware"
	"gw-invest-ledger/internal/service"
)

// EarningsHandler обработчик записей дохода
type EarningsHandler struct {
	service *service.LedgerService
	logger  *logrus.Logger
}

// NewEarningsHandler создает новый обработчик дохода
func NewEarningsHandler(service *service.LedgerService, logger *logrus.Logger) *EarningsHandler {
	return &EarningsHandler{
		service: service,
		logger:  logger,
	}
}

// EarningRequest запрос на ручное начисление или удержание дохода
type EarningRequest struct {
	UID        string  `json:"uid" binding:"required"`
	Amount     float64 `json:"amount" binding:"required,gt=0"`
	PlanID     int64   `json:"plan_id"`
	PositionID int64   `json:"position_id"`
}

// MyEarnings возвращает записи дохода пользователя
// @Summary List own earnings
// @Description Get earnings records in consumption order with the available total
// @Tags earnings
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /api/v1/earnings [get]
func (h *EarningsHandler) MyEarnings(c *gin.Context) {
	uid, err := middleware.GetUID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	records, err := h.service.Earnings(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	total, err := h.service.TotalEarnings(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"earnings":      records,
		"totalEarnings": total,
	})
}

// AllEarnings возвращает все записи дохода (админ)
// @Summary List all earnings
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Router /api/v1/admin/earnings [get]
func (h *EarningsHandler) AllEarnings(c *gin.Context) {
	records, err := h.service.AllEarnings(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"earnings": records})
}

// Grant начисляет доход вручную (админ)
// @Summary Grant an earning
// @Description Credit an earning to a user's primary balance
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body EarningRequest true "Earning data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/admin/earnings/grant [post]
func (h *EarningsHandler) Grant(c *gin.Context) {
	var req EarningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	record, err := h.service.GrantEarning(c.Request.Context(), req.UID, req.Amount, req.PlanID, req.PositionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Earning granted", "earning": record})
}

// Deduct удерживает доход вручную (админ)
// @Summary Deduct an earning
// @Description Debit a user's primary balance and consume earnings FIFO
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body EarningRequest true "Deduction data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/admin/earnings/deduct [post]
func (h *EarningsHandler) Deduct(c *gin.Context) {
	var req EarningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.service.DeductEarning(c.Request.Context(), req.UID, req.Amount, req.PlanID, req.PositionID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Earning deducted"})
}
