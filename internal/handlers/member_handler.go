package handlers

import (
	"net/http"

	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// MemberHandler handles member-related HTTP requests
type MemberHandler struct {
	memberService      services.MemberService
	voucherService     services.VoucherService
	transactionService services.TransactionService
}

// NewMemberHandler creates a new MemberHandler
func NewMemberHandler(memberService services.MemberService, voucherService services.VoucherService, transactionService services.TransactionService) *MemberHandler {
	return &MemberHandler{
		memberService:      memberService,
		voucherService:     voucherService,
		transactionService: transactionService,
	}
}

// CreateMember handles POST /members
func (h *MemberHandler) CreateMember(c *gin.Context) {
	var req models.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBind(c, err)
		return
	}
	member, err := h.memberService.CreateMember(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

// GetMember handles GET /members/:id
func (h *MemberHandler) GetMember(c *gin.Context) {
	member, err := h.memberService.GetMember(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// ListVouchers handles GET /members/:id/vouchers?status=ACTIVE
func (h *MemberHandler) ListVouchers(c *gin.Context) {
	page, limit := pagination(c)
	status := models.VoucherStatus(c.Query("status"))
	vouchers, err := h.voucherService.ListVouchersByMember(c.Request.Context(), c.Param("id"), status, page, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ListResponse[*models.Voucher]{Items: vouchers, Page: page, Limit: limit})
}

// ListTransactions handles GET /members/:id/transactions
func (h *MemberHandler) ListTransactions(c *gin.Context) {
	page, limit := pagination(c)
	txns, err := h.transactionService.ListTransactionsByMember(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ListResponse[*models.Transaction]{Items: txns, Page: page, Limit: limit})
}
