package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gw-invest-ledger/internal/api/middleware"
	"gw-invest-ledger/internal/service"
)

// DepositsHandler обработчик заявок на пополнение
type DepositsHandler struct {
	service *service.LedgerService
	logger  *logrus.Logger
}

// NewDepositsHandler создает новый обработчик пополнений
func NewDepositsHandler(service *service.LedgerService, logger *logrus.Logger) *DepositsHandler {
	return &DepositsHandler{
		service: service,
		logger:  logger,
	}
}

// DepositRequest запрос на пополнение
type DepositRequest struct {
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	FromParty string  `json:"from_party" binding:"required"`
	Method    string  `json:"method" binding:"required,oneof=BTC ETH SOL"`
}

// Request создает заявку на пополнение
// @Summary Request a deposit
// @Description Create a pending deposit request; wallets are credited on approval
// @Tags deposits
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body DepositRequest true "Deposit data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/deposits [post]
func (h *DepositsHandler) Request(c *gin.Context) {
	uid, err := middleware.GetUID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	deposit, err := h.service.RequestDeposit(c.Request.Context(), uid, req.Amount, req.FromParty, req.Method)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Deposit request created",
		"deposit": deposit,
	})
}

// MyDeposits возвращает заявки пользователя
// @Summary List own deposits
// @Tags deposits
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /api/v1/deposits [get]
func (h *DepositsHandler) MyDeposits(c *gin.Context) {
	uid, err := middleware.GetUID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	deposits, err := h.service.UserDeposits(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deposits": deposits})
}

// AllDeposits возвращает все заявки (админ)
// @Summary List all deposits
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Router /api/v1/admin/deposits [get]
func (h *DepositsHandler) AllDeposits(c *gin.Context) {
	deposits, err := h.service.AllDeposits(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deposits": deposits})
}

// Approve одобряет заявку на пополнение (админ)
// @Summary Approve a deposit
// @Description Approve a deposit; the method wallet and primary balance are credited
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Deposit ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/admin/deposits/{id}/approve [post]
func (h *DepositsHandler) Approve(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	deposit, err := h.service.ApproveDeposit(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deposit approved", "deposit": deposit})
}

// Process переводит заявку в processing (админ)
// @Summary Mark a deposit as processing
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Deposit ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/admin/deposits/{id}/process [post]
func (h *DepositsHandler) Process(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	deposit, err := h.service.ProcessDeposit(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deposit processing", "deposit": deposit})
}

// Decline отклоняет заявку (админ)
// @Summary Decline a deposit
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Deposit ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/admin/deposits/{id}/decline [post]
func (h *DepositsHandler) Decline(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	deposit, err := h.service.DeclineDeposit(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deposit declined", "deposit": deposit})
}
