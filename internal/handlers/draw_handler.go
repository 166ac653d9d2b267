package handlers

import (
	"net/http"

	"github.com/ArowuTest/retail-loyalty-backend/internal/middleware"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// DrawHandler handles lottery draw requests
type DrawHandler struct {
	drawService services.DrawService
}

// NewDrawHandler creates a new DrawHandler
func NewDrawHandler(drawService services.DrawService) *DrawHandler {
	return &DrawHandler{drawService: drawService}
}

// CreateDraw handles POST /draws
func (h *DrawHandler) CreateDraw(c *gin.Context) {
	var req models.CreateDrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBind(c, err)
		return
	}
	req.CreatedBy = middleware.AdminID(c)

	draw, err := h.drawService.CreateDraw(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, draw)
}

// GetDraw handles GET /draws/:id
func (h *DrawHandler) GetDraw(c *gin.Context) {
	draw, err := h.drawService.GetDraw(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, draw)
}

// ListDraws handles GET /draws
func (h *DrawHandler) ListDraws(c *gin.Context) {
	page, limit := pagination(c)
	draws, err := h.drawService.ListDraws(c.Request.Context(), page, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ListResponse[*models.LotteryDraw]{Items: draws, Page: page, Limit: limit})
}

// RunDraw handles POST /draws/:id/run
func (h *DrawHandler) RunDraw(c *gin.Context) {
	var req models.RunDrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBind(c, err)
		return
	}
	result, err := h.drawService.RunLotteryDraw(c.Request.Context(), c.Param("id"), req.WinnerCount)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CompleteDraw handles POST /draws/:id/complete
func (h *DrawHandler) CompleteDraw(c *gin.Context) {
	draw, err := h.drawService.CompleteDraw(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, draw)
}

// CancelDraw handles POST /draws/:id/cancel
func (h *DrawHandler) CancelDraw(c *gin.Context) {
	draw, err := h.drawService.CancelDraw(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, draw)
}

// ListWinners handles GET /draws/:id/winners
func (h *DrawHandler) ListWinners(c *gin.Context) {
	winners, err := h.drawService.ListWinners(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": winners})
}
