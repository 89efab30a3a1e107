package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// envelope is the uniform admin-API response wrapper. Meta carries listing
// pagination; error responses echo the HTTP status as the code.
type envelope struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, envelope{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{
		Code:    status,
		Message: message,
	})
}
