package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gw-invest-ledger/internal/api/middleware"
	"gw-invest-ledger/internal/service"
)

// WalletHandler обработчик для операций с кошельками
type WalletHandler struct {
	service *service.LedgerService
	logger  *logrus.Logger
}

// NewWalletHandler создает новый обработчик кошельков
func NewWalletHandler(service *service.LedgerService, logger *logrus.Logger) *WalletHandler {
	return &WalletHandler{
		service: service,
		logger:  logger,
	}
}

// GetBalance возвращает кошельки пользователя
// @Summary Get balances
// @Description Get all wallet cells of the authenticated account
// @Tags wallet
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/balance [get]
func (h *WalletHandler) GetBalance(c *gin.Context) {
	uid, err := middleware.GetUID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	balances, err := h.service.Balances(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balances})
}

// GetTransactions возвращает журнал транзакций пользователя
// @Summary Get transactions
// @Description Get the transaction log of the authenticated account
// @Tags wallet
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Max entries" default(100)
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /api/v1/transactions [get]
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	uid, err := middleware.GetUID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit := 100
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	transactions, err := h.service.UserTransactions(c.Request.Context(), uid, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}
