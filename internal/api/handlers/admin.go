package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gw-invest-ledger/internal/service"
)

// AdminHandler обработчик административных операций учета
type AdminHandler struct {
	service *service.LedgerService
	logger  *logrus.Logger
}

// NewAdminHandler создает новый обработчик административных операций
func NewAdminHandler(service *service.LedgerService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger,
	}
}

// AdjustRequest запрос на ручную корректировку кошелька
type AdjustRequest struct {
	UID    string  `json:"uid" binding:"required"`
	Wallet string  `json:"wallet" binding:"required,oneof=primary BTC ETH SOL"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Action string  `json:"action" binding:"required,oneof=credit debit"`
}

// Adjust выполняет ручную корректировку кошелька.
// Корректировка не попадает в журнал транзакций.
// @Summary Adjust a wallet
// @Description Manually credit or debit a wallet cell
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body AdjustRequest true "Adjustment data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/admin/wallets/adjust [post]
func (h *AdminHandler) Adjust(c *gin.Context) {
	var req AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	newBalance, err := h.service.AdjustWallet(c.Request.Context(), req.UID, req.Wallet, req.Amount, req.Action)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Wallet adjusted",
		"new_balance": newBalance,
	})
}

// AuditTrail возвращает объединенное аудиторское представление
// @Summary Audit trail
// @Description Merged view of positions, transactions and withdrawals, newest first
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Router /api/v1/admin/audit [get]
func (h *AdminHandler) AuditTrail(c *gin.Context) {
	entries, err := h.service.AuditTrail(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"audit": entries})
}
