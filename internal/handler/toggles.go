package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tradealerts/internal/toggle"
)

type ToggleHandler struct {
	Toggles *toggle.Service
}

func (h *ToggleHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/toggles")
	group.GET("/:symbol", h.get)
	group.PUT("/:symbol", h.set)
	group.POST("/:symbol/defaults", h.ensureDefaults)
}

func (h *ToggleHandler) get(c *gin.Context) {
	if h.Toggles == nil {
		Error(c, http.StatusInternalServerError, "toggle service unavailable")
		return
	}
	symbol := strings.TrimSpace(c.Param("symbol"))
	Ok(c, h.Toggles.Get(c.Request.Context(), symbol), nil)
}

func (h *ToggleHandler) set(c *gin.Context) {
	if h.Toggles == nil {
		Error(c, http.StatusInternalServerError, "toggle service unavailable")
		return
	}
	symbol := strings.TrimSpace(c.Param("symbol"))

	var updates map[string]bool
	if err := c.ShouldBindJSON(&updates); err != nil || len(updates) == 0 {
		Error(c, http.StatusBadRequest, "toggle map required")
		return
	}
	result := h.Toggles.SetMany(c.Request.Context(), symbol, updates)
	if result == nil {
		Error(c, http.StatusBadGateway, "toggle update failed")
		return
	}
	Ok(c, result, nil)
}

func (h *ToggleHandler) ensureDefaults(c *gin.Context) {
	if h.Toggles == nil {
		Error(c, http.StatusInternalServerError, "toggle service unavailable")
		return
	}
	symbol := strings.TrimSpace(c.Param("symbol"))
	if !h.Toggles.EnsureDefaults(c.Request.Context(), symbol) {
		Error(c, http.StatusBadGateway, "defaults seeding failed")
		return
	}
	Ok(c, h.Toggles.Get(c.Request.Context(), symbol), nil)
}
