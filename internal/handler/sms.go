package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tradealerts/internal/alert"
	"tradealerts/internal/notify"
	"tradealerts/internal/parser"
)

// SMSHandler ingests forwarded alert messages, runs them through the
// pipeline, and delivers the ones that pass.
type SMSHandler struct {
	Parser    *parser.Parser
	Pipeline  *alert.Pipeline
	Directory *notify.Directory
	Sender    *notify.Sender
	Location  *time.Location
	ScalpURL  string
	Logger    *zap.Logger
}

func (h *SMSHandler) Register(r *gin.Engine) {
	r.POST("/webhook/sms", h.receive)
}

type smsBody struct {
	Message string `json:"message"`
	Body    string `json:"body"`
	Text    string `json:"text"`
}

func (h *SMSHandler) receive(c *gin.Context) {
	if h.Parser == nil || h.Pipeline == nil {
		Error(c, http.StatusInternalServerError, "pipeline unavailable")
		return
	}

	message := h.extractMessage(c)
	if message == "" {
		Error(c, http.StatusBadRequest, "empty message")
		return
	}
	receivedAt := time.Now()

	ev, ok := h.Parser.Parse(message, receivedAt)
	if !ok {
		h.log().Info("unparseable alert message", zap.String("message", message))
		Ok(c, gin.H{"parsed": false}, nil)
		return
	}

	ctx := c.Request.Context()
	decision := h.Pipeline.Process(ctx, ev)
	if decision.Deliver {
		if url, found := h.Directory.Resolve(ctx, ev.Symbol); found {
			content := notify.FormatAlert(ev, decision.Tag, h.Location)
			if err := h.Sender.Send(ctx, url, content); err != nil {
				h.log().Error("alert delivery failed", zap.String("symbol", ev.Symbol), zap.Error(err))
			}
		}
	}

	scalp := h.Pipeline.ProcessScalp(ctx, ev, receivedAt)
	if scalp.Deliver && h.ScalpURL != "" {
		content := notify.FormatAlert(ev, scalp.Tag, h.Location)
		if err := h.Sender.Send(ctx, h.ScalpURL, content); err != nil {
			h.log().Error("scalp delivery failed", zap.String("symbol", ev.Symbol), zap.Error(err))
		}
	}

	Ok(c, gin.H{
		"parsed":   true,
		"symbol":   ev.Symbol,
		"decision": decision,
		"scalp":    scalp,
	}, nil)
}

// extractMessage accepts either a JSON body with a message/body/text field
// or the raw request body as plain text.
func (h *SMSHandler) extractMessage(c *gin.Context) string {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 64<<10))
	if err != nil {
		return ""
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return ""
	}
	if strings.HasPrefix(text, "{") {
		var body smsBody
		if err := json.Unmarshal(raw, &body); err == nil {
			for _, candidate := range []string{body.Message, body.Body, body.Text} {
				if strings.TrimSpace(candidate) != "" {
					return strings.TrimSpace(candidate)
				}
			}
		}
		// JSON without a recognized field carries nothing usable.
		return ""
	}
	return text
}

func (h *SMSHandler) log() *zap.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return zap.NewNop()
}
