// Package memoryrepository is a mutex-guarded in-memory Repository used by
// tests and as the dev fallback when no database DSN is configured.
package memoryrepository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tradealerts/internal/models"
	"tradealerts/internal/repository"
)

type Store struct {
	mu sync.RWMutex

	states    map[string]*models.TimeframeState // symbol|timeframe
	changes   []models.StateChange
	toggles   map[string]*models.SymbolToggles
	endpoints map[string]*models.WebhookEndpoint
	metadata  map[string]*models.Metadata

	nextStateID  uint64
	nextChangeID uint64
	nextMetaID   uint64
}

var _ repository.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		states:    map[string]*models.TimeframeState{},
		toggles:   map[string]*models.SymbolToggles{},
		endpoints: map[string]*models.WebhookEndpoint{},
		metadata:  map[string]*models.Metadata{},
	}
}

func stateKey(symbol, timeframe string) string {
	return symbol + "|" + timeframe
}

func (s *Store) GetTimeframeState(_ context.Context, symbol, timeframe string) (*models.TimeframeState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.states[stateKey(symbol, timeframe)]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (s *Store) ListTimeframeStates(_ context.Context, symbol string) ([]models.TimeframeState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []models.TimeframeState
	for _, item := range s.states {
		if item.Symbol == symbol {
			items = append(items, *item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *Store) ListStateSymbols(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]struct{}{}
	var symbols []string
	for _, item := range s.states {
		if _, ok := seen[item.Symbol]; ok {
			continue
		}
		seen[item.Symbol] = struct{}{}
		symbols = append(symbols, item.Symbol)
	}
	sort.Strings(symbols)
	return symbols, nil
}

func (s *Store) UpsertTimeframeState(_ context.Context, item *models.TimeframeState) error {
	if item == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := stateKey(item.Symbol, item.Timeframe)
	now := time.Now().UTC()
	if existing, ok := s.states[key]; ok {
		item.ID = existing.ID
		item.CreatedAt = existing.CreatedAt
	} else {
		s.nextStateID++
		item.ID = s.nextStateID
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
	}
	item.UpdatedAt = now
	cp := *item
	s.states[key] = &cp
	return nil
}

func (s *Store) InsertStateChange(_ context.Context, item *models.StateChange) error {
	if item == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextChangeID++
	item.ID = s.nextChangeID
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	s.changes = append(s.changes, *item)
	return nil
}

func (s *Store) ListStateChanges(_ context.Context, params repository.ListStateChangesParams) ([]models.StateChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	match := func(filter *string, v string) bool {
		return filter == nil || strings.TrimSpace(*filter) == "" || strings.TrimSpace(*filter) == v
	}
	var items []models.StateChange
	for i := len(s.changes) - 1; i >= 0; i-- {
		c := s.changes[i]
		if match(params.Symbol, c.Symbol) && match(params.Timeframe, c.Timeframe) && match(params.Indicator, c.Indicator) {
			items = append(items, c)
		}
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil, nil
	}
	items = items[offset:]
	limit := params.Limit
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) ListLatestStateChanges(_ context.Context) ([]models.StateChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	latest := map[string]models.StateChange{}
	for _, c := range s.changes {
		key := c.Symbol + "|" + c.Timeframe + "|" + c.Indicator
		if prev, ok := latest[key]; !ok || c.ID > prev.ID {
			latest[key] = c
		}
	}
	items := make([]models.StateChange, 0, len(latest))
	for _, c := range latest {
		items = append(items, c)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *Store) GetSymbolToggles(_ context.Context, symbol string) (*models.SymbolToggles, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.toggles[symbol]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (s *Store) UpsertSymbolToggles(_ context.Context, item *models.SymbolToggles) error {
	if item == nil || strings.TrimSpace(item.Symbol) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	item.UpdatedAt = time.Now().UTC()
	cp := *item
	s.toggles[item.Symbol] = &cp
	return nil
}

func (s *Store) GetWebhookEndpoint(_ context.Context, symbol string) (*models.WebhookEndpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.endpoints[symbol]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (s *Store) ListWebhookEndpoints(_ context.Context) ([]models.WebhookEndpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]models.WebhookEndpoint, 0, len(s.endpoints))
	for _, item := range s.endpoints {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Symbol < items[j].Symbol })
	return items, nil
}

func (s *Store) UpsertWebhookEndpoint(_ context.Context, item *models.WebhookEndpoint) error {
	if item == nil || strings.TrimSpace(item.Symbol) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := s.endpoints[item.Symbol]; ok {
		item.CreatedAt = existing.CreatedAt
	} else if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	cp := *item
	s.endpoints[item.Symbol] = &cp
	return nil
}

func (s *Store) DeleteWebhookEndpoint(_ context.Context, symbol string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.endpoints[symbol]; !ok {
		return false, nil
	}
	delete(s.endpoints, symbol)
	return true, nil
}

func (s *Store) GetMetadataByKey(_ context.Context, key string) (*models.Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.metadata[key]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (s *Store) UpsertMetadata(_ context.Context, item *models.Metadata) error {
	if item == nil || strings.TrimSpace(item.Key) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := s.metadata[item.Key]; ok {
		item.ID = existing.ID
		item.CreatedAt = existing.CreatedAt
	} else {
		s.nextMetaID++
		item.ID = s.nextMetaID
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
	}
	item.UpdatedAt = now
	cp := *item
	s.metadata[item.Key] = &cp
	return nil
}

// ResetStates drops every timeframe state row but keeps history. Recovery
// drills and tests use it to prove bootstrap rebuilds state from history
// alone.
func (s *Store) ResetStates() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = map[string]*models.TimeframeState{}
}
