package handlers

import (
	"net/http"

	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// PrizeHandler handles prize inventory requests
type PrizeHandler struct {
	prizeService services.PrizeService
}

// NewPrizeHandler creates a new PrizeHandler
func NewPrizeHandler(prizeService services.PrizeService) *PrizeHandler {
	return &PrizeHandler{prizeService: prizeService}
}

// CreatePrize handles POST /prizes
func (h *PrizeHandler) CreatePrize(c *gin.Context) {
	var req models.PrizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBind(c, err)
		return
	}
	prize, err := h.prizeService.CreatePrize(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, prize)
}

// UpdatePrize handles PUT /prizes/:id
func (h *PrizeHandler) UpdatePrize(c *gin.Context) {
	var req models.PrizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBind(c, err)
		return
	}
	prize, err := h.prizeService.UpdatePrize(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, prize)
}

// GetPrize handles GET /prizes/:id
func (h *PrizeHandler) GetPrize(c *gin.Context) {
	prize, err := h.prizeService.GetPrize(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, prize)
}

// ListPrizes handles GET /prizes
func (h *PrizeHandler) ListPrizes(c *gin.Context) {
	page, limit := pagination(c)
	prizes, err := h.prizeService.ListPrizes(c.Request.Context(), page, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ListResponse[*models.Prize]{Items: prizes, Page: page, Limit: limit})
}

// ListAvailablePrizes handles GET /prizes/available
func (h *PrizeHandler) ListAvailablePrizes(c *gin.Context) {
	prizes, err := h.prizeService.ListAvailablePrizes(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": prizes})
}
