package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tradealerts/internal/repository"
	"tradealerts/internal/state"
)

type StateHandler struct {
	States *state.Service
	Repo   repository.Repository
}

func (h *StateHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/states")
	group.GET("/symbols", h.listSymbols)
	group.GET("/history", h.listHistory)
	group.POST("/bootstrap", h.bootstrap)
	group.GET("/:symbol", h.getStates)
	group.GET("/:symbol/summary", h.getSummary)
}

func (h *StateHandler) getStates(c *gin.Context) {
	if h.States == nil {
		Error(c, http.StatusInternalServerError, "state service unavailable")
		return
	}
	symbol := strings.TrimSpace(c.Param("symbol"))
	items := h.States.GetAllStates(c.Request.Context(), symbol)
	Ok(c, items, nil)
}

func (h *StateHandler) getSummary(c *gin.Context) {
	if h.States == nil {
		Error(c, http.StatusInternalServerError, "state service unavailable")
		return
	}
	symbol := strings.TrimSpace(c.Param("symbol"))
	Ok(c, h.States.GetSummary(c.Request.Context(), symbol), nil)
}

func (h *StateHandler) listSymbols(c *gin.Context) {
	if h.States == nil {
		Error(c, http.StatusInternalServerError, "state service unavailable")
		return
	}
	Ok(c, h.States.Symbols(c.Request.Context()), nil)
}

func (h *StateHandler) listHistory(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable")
		return
	}
	params := repository.ListStateChangesParams{
		Limit:     intQuery(c, "limit", 50),
		Offset:    intQuery(c, "offset", 0),
		Symbol:    strQueryPtr(c, "symbol"),
		Timeframe: strQueryPtr(c, "timeframe"),
		Indicator: strQueryPtr(c, "indicator"),
	}
	items, err := h.Repo.ListStateChanges(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error())
		return
	}
	meta := map[string]any{
		"limit":  params.Limit,
		"offset": params.Offset,
		"count":  len(items),
	}
	Ok(c, items, meta)
}

func (h *StateHandler) bootstrap(c *gin.Context) {
	if h.States == nil {
		Error(c, http.StatusInternalServerError, "state service unavailable")
		return
	}
	restored, err := h.States.BootstrapFromHistory(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error())
		return
	}
	Ok(c, gin.H{"restored": restored}, nil)
}

func intQuery(c *gin.Context, key string, def int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}

func strQueryPtr(c *gin.Context, key string) *string {
	if val := strings.TrimSpace(c.Query(key)); val != "" {
		return &val
	}
	return nil
}
