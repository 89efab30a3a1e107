// Package notify owns outbound delivery: resolving a symbol's webhook,
// formatting the chat message, and the POST itself.
package notify

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"tradealerts/internal/models"
	"tradealerts/internal/repository"
)

// Directory maps symbols to their outbound webhooks, with the "default" row
// as fallback for unmapped symbols.
type Directory struct {
	Repo      repository.Repository
	Logger    *zap.Logger
	OpTimeout time.Duration

	mu sync.Mutex
}

// Resolve returns the webhook URL for a symbol: the symbol's own endpoint if
// configured, else the default row, else nothing.
func (d *Directory) Resolve(ctx context.Context, symbol string) (string, bool) {
	if d == nil || d.Repo == nil {
		return "", false
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	d.mu.Lock()
	defer d.mu.Unlock()
	ctx, cancel := d.opCtx(ctx)
	defer cancel()

	if item := d.get(ctx, symbol); item != nil && item.URL != "" {
		return item.URL, true
	}
	if item := d.get(ctx, models.DefaultEndpointSymbol); item != nil && item.URL != "" {
		return item.URL, true
	}
	d.log().Warn("no webhook configured", zap.String("symbol", symbol))
	return "", false
}

func (d *Directory) Set(ctx context.Context, symbol, url, note string) bool {
	if d == nil || d.Repo == nil {
		return false
	}
	symbol = normalizeEndpointSymbol(symbol)
	if symbol == "" || strings.TrimSpace(url) == "" {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	ctx, cancel := d.opCtx(ctx)
	defer cancel()

	item := models.WebhookEndpoint{Symbol: symbol, URL: strings.TrimSpace(url), Note: note}
	if err := d.Repo.UpsertWebhookEndpoint(ctx, &item); err != nil {
		d.log().Error("webhook upsert failed", zap.String("symbol", symbol), zap.Error(err))
		return false
	}
	d.log().Info("webhook updated", zap.String("symbol", symbol))
	return true
}

// Remove deletes a symbol's endpoint. The default row cannot be removed.
func (d *Directory) Remove(ctx context.Context, symbol string) bool {
	if d == nil || d.Repo == nil {
		return false
	}
	symbol = normalizeEndpointSymbol(symbol)
	if symbol == "" || symbol == models.DefaultEndpointSymbol {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	ctx, cancel := d.opCtx(ctx)
	defer cancel()

	removed, err := d.Repo.DeleteWebhookEndpoint(ctx, symbol)
	if err != nil {
		d.log().Error("webhook delete failed", zap.String("symbol", symbol), zap.Error(err))
		return false
	}
	return removed
}

func (d *Directory) List(ctx context.Context) []models.WebhookEndpoint {
	if d == nil || d.Repo == nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	ctx, cancel := d.opCtx(ctx)
	defer cancel()

	items, err := d.Repo.ListWebhookEndpoints(ctx)
	if err != nil {
		d.log().Error("webhook list failed", zap.Error(err))
		return nil
	}
	return items
}

// Symbols lists configured symbols, excluding the default fallback row.
func (d *Directory) Symbols(ctx context.Context) []string {
	var symbols []string
	for _, item := range d.List(ctx) {
		if item.Symbol != models.DefaultEndpointSymbol {
			symbols = append(symbols, item.Symbol)
		}
	}
	return symbols
}

func (d *Directory) get(ctx context.Context, symbol string) *models.WebhookEndpoint {
	item, err := d.Repo.GetWebhookEndpoint(ctx, symbol)
	if err != nil {
		d.log().Error("webhook read failed", zap.String("symbol", symbol), zap.Error(err))
		return nil
	}
	return item
}

// normalizeEndpointSymbol uppercases symbols but keeps the reserved default
// row's lowercase key.
func normalizeEndpointSymbol(symbol string) string {
	symbol = strings.TrimSpace(symbol)
	if strings.EqualFold(symbol, models.DefaultEndpointSymbol) {
		return models.DefaultEndpointSymbol
	}
	return strings.ToUpper(symbol)
}

func (d *Directory) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if d.OpTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.OpTimeout)
}

func (d *Directory) log() *zap.Logger {
	if d != nil && d.Logger != nil {
		return d.Logger
	}
	return zap.NewNop()
}
