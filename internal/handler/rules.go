package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tradealerts/internal/confluence"
)

type RuleHandler struct {
	Rules *confluence.Store
}

func (h *RuleHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/rules")
	group.GET("", h.list)
	group.GET("/summary", h.summary)
	group.PUT("/:index/enabled", h.setEnabled)
	group.POST("/reload", h.reload)
}

func (h *RuleHandler) list(c *gin.Context) {
	if h.Rules == nil {
		Error(c, http.StatusInternalServerError, "rule store unavailable")
		return
	}
	Ok(c, h.Rules.Rules(), nil)
}

func (h *RuleHandler) summary(c *gin.Context) {
	if h.Rules == nil {
		Error(c, http.StatusInternalServerError, "rule store unavailable")
		return
	}
	Ok(c, h.Rules.Summary(), nil)
}

type setEnabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (h *RuleHandler) setEnabled(c *gin.Context) {
	if h.Rules == nil {
		Error(c, http.StatusInternalServerError, "rule store unavailable")
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid rule index")
		return
	}
	var req setEnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
		Error(c, http.StatusBadRequest, "enabled flag required")
		return
	}
	if err := h.Rules.SetEnabled(index, *req.Enabled); err != nil {
		Error(c, http.StatusNotFound, err.Error())
		return
	}
	Ok(c, h.Rules.Summary(), nil)
}

func (h *RuleHandler) reload(c *gin.Context) {
	if h.Rules == nil {
		Error(c, http.StatusInternalServerError, "rule store unavailable")
		return
	}
	if err := h.Rules.Reload(); err != nil {
		Error(c, http.StatusBadGateway, err.Error())
		return
	}
	Ok(c, h.Rules.Summary(), nil)
}
