package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gw-invest-ledger/internal/plans"
)

// PlansHandler обработчик справочника планов
type PlansHandler struct {
	catalog plans.Catalog
	logger  *logrus.Logger
}

// NewPlansHandler создает новый обработчик планов
func NewPlansHandler(catalog plans.Catalog, logger *logrus.Logger) *PlansHandler {
	return &PlansHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// List возвращает все инвестиционные планы
// @Summary List investment plans
// @Description Get the catalog of investment plans
// @Tags plans
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /api/v1/plans [get]
func (h *PlansHandler) List(c *gin.Context) {
	list, err := h.catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": list})
}

// Get возвращает один план по идентификатору
// @Summary Get an investment plan
// @Tags plans
// @Produce json
// @Param id path int true "Plan ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /api/v1/plans/{id} [get]
func (h *PlansHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	plan, err := h.catalog.Plan(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": plan})
}
