package repository

import (
	"context"

	"tradealerts/internal/models"
)

// ListStateChangesParams filters the history listing. Nil filters match all.
type ListStateChangesParams struct {
	Symbol    *string
	Timeframe *string
	Indicator *string
	Limit     int
	Offset    int
}

// Repository is the persistence boundary for the state, toggle, webhook and
// metadata stores. Each method is one critical section; callers own the
// read-modify-write locking around sequences of calls.
type Repository interface {
	// Timeframe state. Upserts key on (symbol, timeframe).
	GetTimeframeState(ctx context.Context, symbol, timeframe string) (*models.TimeframeState, error)
	ListTimeframeStates(ctx context.Context, symbol string) ([]models.TimeframeState, error)
	ListStateSymbols(ctx context.Context) ([]string, error)
	UpsertTimeframeState(ctx context.Context, item *models.TimeframeState) error

	// Append-only history.
	InsertStateChange(ctx context.Context, item *models.StateChange) error
	ListStateChanges(ctx context.Context, params ListStateChangesParams) ([]models.StateChange, error)
	// ListLatestStateChanges returns, for every (symbol, timeframe,
	// indicator) key, the most recent history row. Recovery source for
	// rebuilding timeframe states.
	ListLatestStateChanges(ctx context.Context) ([]models.StateChange, error)

	// Per-symbol toggle documents.
	GetSymbolToggles(ctx context.Context, symbol string) (*models.SymbolToggles, error)
	UpsertSymbolToggles(ctx context.Context, item *models.SymbolToggles) error

	// Outbound webhook endpoints.
	GetWebhookEndpoint(ctx context.Context, symbol string) (*models.WebhookEndpoint, error)
	ListWebhookEndpoints(ctx context.Context) ([]models.WebhookEndpoint, error)
	UpsertWebhookEndpoint(ctx context.Context, item *models.WebhookEndpoint) error
	DeleteWebhookEndpoint(ctx context.Context, symbol string) (bool, error)

	// Process-wide key-value metadata. Last write wins.
	GetMetadataByKey(ctx context.Context, key string) (*models.Metadata, error)
	UpsertMetadata(ctx context.Context, item *models.Metadata) error
}
