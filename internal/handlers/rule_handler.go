package handlers

import (
	"net/http"
	"time"

	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// RuleHandler handles promotional rule administration
type RuleHandler struct {
	ruleService services.RuleService
}

// NewRuleHandler creates a new RuleHandler
func NewRuleHandler(ruleService services.RuleService) *RuleHandler {
	return &RuleHandler{ruleService: ruleService}
}

// CreateRule handles POST /rules
func (h *RuleHandler) CreateRule(c *gin.Context) {
	var req models.RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBind(c, err)
		return
	}
	rule, err := h.ruleService.CreateRule(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// UpdateRule handles PUT /rules/:id
func (h *RuleHandler) UpdateRule(c *gin.Context) {
	var req models.RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBind(c, err)
		return
	}
	rule, err := h.ruleService.UpdateRule(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// GetRule handles GET /rules/:id
func (h *RuleHandler) GetRule(c *gin.Context) {
	rule, err := h.ruleService.GetRule(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// ListRules handles GET /rules
func (h *RuleHandler) ListRules(c *gin.Context) {
	page, limit := pagination(c)
	rules, err := h.ruleService.ListRules(c.Request.Context(), page, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ListResponse[*models.Rule]{Items: rules, Page: page, Limit: limit})
}

// GetActiveRule handles GET /rules/active
func (h *RuleHandler) GetActiveRule(c *gin.Context) {
	rule, err := h.ruleService.GetActiveRule(c.Request.Context(), time.Now())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// ActivateRule handles POST /rules/:id/activate
func (h *RuleHandler) ActivateRule(c *gin.Context) {
	rule, err := h.ruleService.ActivateRule(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// DeactivateRule handles POST /rules/:id/deactivate
func (h *RuleHandler) DeactivateRule(c *gin.Context) {
	rule, err := h.ruleService.DeactivateRule(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rule)
}
