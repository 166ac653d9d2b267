package handlers

import (
	"net/http"

	"github.com/ArowuTest/retail-loyalty-backend/internal/middleware"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// WinnerHandler handles prize selection and collection
type WinnerHandler struct {
	winnerService services.WinnerService
}

// NewWinnerHandler creates a new WinnerHandler
func NewWinnerHandler(winnerService services.WinnerService) *WinnerHandler {
	return &WinnerHandler{winnerService: winnerService}
}

// GetWinner handles GET /winners/:id
func (h *WinnerHandler) GetWinner(c *gin.Context) {
	winner, err := h.winnerService.GetWinner(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, winner)
}

// ChoosePrize handles POST /winners/:id/choose-prize
func (h *WinnerHandler) ChoosePrize(c *gin.Context) {
	var req models.ChoosePrizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBind(c, err)
		return
	}
	winner, err := h.winnerService.ChoosePrizeForWinner(c.Request.Context(), c.Param("id"), req.PrizeID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, winner)
}

// CollectPrize handles POST /winners/:id/collect
func (h *WinnerHandler) CollectPrize(c *gin.Context) {
	var req models.CollectPrizeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortBind(c, err)
			return
		}
	}
	winner, err := h.winnerService.CollectPrize(c.Request.Context(), c.Param("id"), middleware.AdminID(c), req.Note)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, winner)
}
