package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tradealerts/internal/models"
	"tradealerts/internal/notify"
	"tradealerts/internal/state"
	"tradealerts/internal/toggle"
)

type WebhookHandler struct {
	Directory *notify.Directory
	States    *state.Service
	Toggles   *toggle.Service
}

func (h *WebhookHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/webhooks")
	group.GET("", h.list)
	group.PUT("/:symbol", h.set)
	group.DELETE("/:symbol", h.remove)
}

func (h *WebhookHandler) list(c *gin.Context) {
	if h.Directory == nil {
		Error(c, http.StatusInternalServerError, "webhook directory unavailable")
		return
	}
	Ok(c, h.Directory.List(c.Request.Context()), nil)
}

type setWebhookRequest struct {
	URL  string `json:"url" binding:"required"`
	Note string `json:"note"`
}

func (h *WebhookHandler) set(c *gin.Context) {
	if h.Directory == nil {
		Error(c, http.StatusInternalServerError, "webhook directory unavailable")
		return
	}
	symbol := strings.TrimSpace(c.Param("symbol"))

	var req setWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "url required")
		return
	}
	ctx := c.Request.Context()
	if !h.Directory.Set(ctx, symbol, req.URL, req.Note) {
		Error(c, http.StatusBadGateway, "webhook update failed")
		return
	}
	// Registering a symbol also seeds its state rows and default toggles so
	// the first live alert finds everything in place.
	if !strings.EqualFold(symbol, models.DefaultEndpointSymbol) {
		if h.States != nil {
			h.States.EnsureExists(ctx, symbol)
		}
		if h.Toggles != nil {
			h.Toggles.EnsureDefaults(ctx, symbol)
		}
	}
	name := strings.ToUpper(symbol)
	if strings.EqualFold(symbol, models.DefaultEndpointSymbol) {
		name = models.DefaultEndpointSymbol
	}
	Ok(c, gin.H{"symbol": name}, nil)
}

func (h *WebhookHandler) remove(c *gin.Context) {
	if h.Directory == nil {
		Error(c, http.StatusInternalServerError, "webhook directory unavailable")
		return
	}
	symbol := strings.TrimSpace(c.Param("symbol"))
	if !h.Directory.Remove(c.Request.Context(), symbol) {
		Error(c, http.StatusNotFound, "webhook not found")
		return
	}
	Ok(c, gin.H{"removed": true}, nil)
}
