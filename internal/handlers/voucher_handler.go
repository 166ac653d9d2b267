package handlers

import (
	"net/http"
	"time"

	"github.com/ArowuTest/retail-loyalty-backend/internal/middleware"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// VoucherHandler handles voucher validation, redemption and administration
type VoucherHandler struct {
	voucherService services.VoucherService
	now            func() time.Time
}

// NewVoucherHandler creates a new VoucherHandler
func NewVoucherHandler(voucherService services.VoucherService, now func() time.Time) *VoucherHandler {
	if now == nil {
		now = time.Now
	}
	return &VoucherHandler{voucherService: voucherService, now: now}
}

// ValidateVoucher handles POST /vouchers/validate. An unusable voucher is a
// 200 with valid=false; only an unknown code is an error.
func (h *VoucherHandler) ValidateVoucher(c *gin.Context) {
	var req models.ValidateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBind(c, err)
		return
	}
	result, err := h.voucherService.ValidateVoucher(c.Request.Context(), req.Code)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RedeemVoucher handles POST /vouchers/redeem
func (h *VoucherHandler) RedeemVoucher(c *gin.Context) {
	var req models.RedeemVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBind(c, err)
		return
	}
	voucher, err := h.voucherService.RedeemVoucher(c.Request.Context(), req.Code, req.TransactionID, middleware.AdminID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, voucher)
}

// GetVoucher handles GET /vouchers/:id
func (h *VoucherHandler) GetVoucher(c *gin.Context) {
	voucher, err := h.voucherService.GetVoucher(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, voucher)
}

// ListLogs handles GET /vouchers/:id/logs
func (h *VoucherHandler) ListLogs(c *gin.Context) {
	logs, err := h.voucherService.ListVoucherLogs(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": logs})
}

// CancelVoucher handles POST /vouchers/:id/cancel
func (h *VoucherHandler) CancelVoucher(c *gin.Context) {
	var req models.CancelVoucherRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortBind(c, err)
			return
		}
	}
	voucher, err := h.voucherService.CancelVoucher(c.Request.Context(), c.Param("id"), middleware.AdminID(c), req.Note)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, voucher)
}

// ExpireVouchers handles POST /vouchers/expire, running the sweep on demand
func (h *VoucherHandler) ExpireVouchers(c *gin.Context) {
	count, err := h.voucherService.SweepExpiredVouchers(c.Request.Context(), h.now())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expired": count})
}
