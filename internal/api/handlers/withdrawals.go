package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gw-invest-ledger/internal/api/middleware"
	"gw-invest-ledger/internal/service"
)

// WithdrawalsHandler обработчик заявок на вывод средств
type WithdrawalsHandler struct {
	service *service.LedgerService
	logger  *logrus.Logger
}

// NewWithdrawalsHandler создает новый обработчик выводов
func NewWithdrawalsHandler(service *service.LedgerService, logger *logrus.Logger) *WithdrawalsHandler {
	return &WithdrawalsHandler{
		service: service,
		logger:  logger,
	}
}

// WithdrawRequest запрос на вывод
type WithdrawRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Destination string  `json:"destination" binding:"required"`
	Method      string  `json:"method" binding:"required,oneof=BTC ETH SOL"`
}

// Request создает заявку на вывод средств
// @Summary Request a withdrawal
// @Description Create a pending withdrawal request; funds move on approval
// @Tags withdrawals
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body WithdrawRequest true "Withdrawal data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/withdrawals [post]
func (h *WithdrawalsHandler) Request(c *gin.Context) {
	uid, err := middleware.GetUID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	withdrawal, err := h.service.RequestWithdrawal(c.Request.Context(), uid, req.Amount, req.Destination, req.Method)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Withdrawal request created",
		"withdrawal": withdrawal,
	})
}

// MyWithdrawals возвращает заявки пользователя
// @Summary List own withdrawals
// @Tags withdrawals
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /api/v1/withdrawals [get]
func (h *WithdrawalsHandler) MyWithdrawals(c *gin.Context) {
	uid, err := middleware.GetUID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	withdrawals, err := h.service.UserWithdrawals(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdrawals": withdrawals})
}

// AllWithdrawals возвращает все заявки (админ)
// @Summary List all withdrawals
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Router /api/v1/admin/withdrawals [get]
func (h *WithdrawalsHandler) AllWithdrawals(c *gin.Context) {
	withdrawals, err := h.service.AllWithdrawals(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdrawals": withdrawals})
}

// Approve одобряет заявку на вывод (админ)
// @Summary Approve a withdrawal
// @Description Approve a withdrawal; balance is debited and earnings consumed FIFO
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Withdrawal ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/admin/withdrawals/{id}/approve [post]
func (h *WithdrawalsHandler) Approve(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	withdrawal, err := h.service.ApproveWithdrawal(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Withdrawal approved", "withdrawal": withdrawal})
}

// Process переводит заявку в processing (админ)
// @Summary Mark a withdrawal as processing
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Withdrawal ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/admin/withdrawals/{id}/process [post]
func (h *WithdrawalsHandler) Process(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	withdrawal, err := h.service.ProcessWithdrawal(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Withdrawal processing", "withdrawal": withdrawal})
}

// Decline отклоняет заявку (админ)
// @Summary Decline a withdrawal
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Withdrawal ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/admin/withdrawals/{id}/decline [post]
func (h *WithdrawalsHandler) Decline(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	withdrawal, err := h.service.DeclineWithdrawal(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Withdrawal declined", "withdrawal": withdrawal})
}
