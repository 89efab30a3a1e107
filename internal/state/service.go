package state

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"tradealerts/internal/models"
	"tradealerts/internal/repository"
	"tradealerts/internal/timeframe"
)

// Service owns the per-(symbol, timeframe) directional state machine and its
// append-only history. A single coarse lock serializes every read-modify-write
// sequence process-wide; alert volume is human-rate. Backing-store faults are
// absorbed into safe defaults and logged,
// never raised to callers.
type Service struct {
	Repo      repository.Repository
	Logger    *zap.Logger
	OpTimeout time.Duration

	mu sync.Mutex
}

// RecordEvent applies one directional event. Returns false on invalid
// indicator/direction or a store fault. Recording the direction an indicator
// already has is a no-op: no history row, no timestamp bump.
func (s *Service) RecordEvent(ctx context.Context, symbol, tf, indicator, direction string, price *decimal.Decimal) bool {
	if s == nil || s.Repo == nil {
		return false
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	tf = timeframe.Normalize(tf)
	indicator = strings.ToLower(strings.TrimSpace(indicator))
	direction = strings.ToUpper(strings.TrimSpace(direction))

	if indicator != models.IndicatorEMA && indicator != models.IndicatorMACD {
		s.log().Error("invalid indicator", zap.String("indicator", indicator))
		return false
	}
	if direction != models.StatusBullish && direction != models.StatusBearish {
		s.log().Error("invalid direction", zap.String("direction", direction))
		return false
	}
	if !timeframe.Contains(tf) {
		s.log().Warn("unknown timeframe", zap.String("symbol", symbol), zap.String("timeframe", tf))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	current, err := s.Repo.GetTimeframeState(ctx, symbol, tf)
	if err != nil {
		s.log().Error("state read failed", zap.String("symbol", symbol), zap.String("timeframe", tf), zap.Error(err))
		return false
	}

	oldStatus := models.StatusUnknown
	if current != nil {
		oldStatus = current.Status(indicator)
	}
	if oldStatus == direction {
		s.log().Info("state unchanged, skipping",
			zap.String("symbol", symbol),
			zap.String("timeframe", tf),
			zap.String("indicator", indicator),
			zap.String("status", direction),
		)
		return true
	}

	now := time.Now().UTC()
	next := models.TimeframeState{
		Symbol:     symbol,
		Timeframe:  tf,
		EMAStatus:  models.StatusUnknown,
		MACDStatus: models.StatusUnknown,
	}
	if current != nil {
		next = *current
	}
	switch indicator {
	case models.IndicatorEMA:
		next.EMAStatus = direction
		next.LastEMAUpdate = &now
		next.LastEMAPrice = price
	case models.IndicatorMACD:
		next.MACDStatus = direction
		next.LastMACDUpdate = &now
		next.LastMACDPrice = price
	}

	// State is committed before history: a crash in between loses an audit
	// row, never current-state correctness.
	if err := s.Repo.UpsertTimeframeState(ctx, &next); err != nil {
		s.log().Error("state upsert failed", zap.String("symbol", symbol), zap.String("timeframe", tf), zap.Error(err))
		return false
	}
	change := models.StateChange{
		Symbol:    symbol,
		Timeframe: tf,
		Indicator: indicator,
		OldStatus: oldStatus,
		NewStatus: direction,
		Price:     price,
	}
	if err := s.Repo.InsertStateChange(ctx, &change); err != nil {
		s.log().Error("history append failed", zap.String("symbol", symbol), zap.String("timeframe", tf), zap.Error(err))
	}

	s.log().Info("state updated",
		zap.String("symbol", symbol),
		zap.String("timeframe", tf),
		zap.String("indicator", indicator),
		zap.String("old", oldStatus),
		zap.String("new", direction),
	)
	return true
}

// GetState returns the current state for one (symbol, timeframe), nil when
// absent or on a store fault.
func (s *Service) GetState(ctx context.Context, symbol, tf string) *models.TimeframeState {
	if s == nil || s.Repo == nil {
		return nil
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	tf = timeframe.Normalize(tf)

	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	item, err := s.Repo.GetTimeframeState(ctx, symbol, tf)
	if err != nil {
		s.log().Error("state read failed", zap.String("symbol", symbol), zap.String("timeframe", tf), zap.Error(err))
		return nil
	}
	return item
}

// GetAllStates returns every timeframe state for a symbol in hierarchy order;
// unrecognized timeframes sort last.
func (s *Service) GetAllStates(ctx context.Context, symbol string) []models.TimeframeState {
	if s == nil || s.Repo == nil {
		return nil
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	items, err := s.Repo.ListTimeframeStates(ctx, symbol)
	if err != nil {
		s.log().Error("state list failed", zap.String("symbol", symbol), zap.Error(err))
		return nil
	}
	sort.SliceStable(items, func(i, j int) bool {
		return timeframe.Rank(items[i].Timeframe) < timeframe.Rank(items[j].Timeframe)
	})
	return items
}

// Symbols lists every symbol with at least one tracked state row.
func (s *Service) Symbols(ctx context.Context) []string {
	if s == nil || s.Repo == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	symbols, err := s.Repo.ListStateSymbols(ctx)
	if err != nil {
		s.log().Error("symbol list failed", zap.Error(err))
		return nil
	}
	sort.Strings(symbols)
	return symbols
}

type TimeframeDetail struct {
	Timeframe  string `json:"timeframe"`
	EMAStatus  string `json:"ema_status"`
	MACDStatus string `json:"macd_status"`
}

type Summary struct {
	Symbol           string            `json:"symbol"`
	TotalTimeframes  int               `json:"total_timeframes"`
	EMABullishCount  int               `json:"ema_bullish_count"`
	EMABearishCount  int               `json:"ema_bearish_count"`
	MACDBullishCount int               `json:"macd_bullish_count"`
	MACDBearishCount int               `json:"macd_bearish_count"`
	Timeframes       []TimeframeDetail `json:"timeframes"`
}

// GetSummary aggregates bullish/bearish counts per indicator across all known
// timeframes for a symbol.
func (s *Service) GetSummary(ctx context.Context, symbol string) Summary {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	summary := Summary{Symbol: symbol}
	for _, item := range s.GetAllStates(ctx, symbol) {
		summary.TotalTimeframes++
		summary.Timeframes = append(summary.Timeframes, TimeframeDetail{
			Timeframe:  item.Timeframe,
			EMAStatus:  item.EMAStatus,
			MACDStatus: item.MACDStatus,
		})
		switch item.EMAStatus {
		case models.StatusBullish:
			summary.EMABullishCount++
		case models.StatusBearish:
			summary.EMABearishCount++
		}
		switch item.MACDStatus {
		case models.StatusBullish:
			summary.MACDBullishCount++
		case models.StatusBearish:
			summary.MACDBearishCount++
		}
	}
	return summary
}

// BootstrapFromHistory rebuilds every timeframe state by replaying the most
// recent history row per (symbol, timeframe, indicator). History is the sole
// source of truth for this operation; it is idempotent and safe at startup.
func (s *Service) BootstrapFromHistory(ctx context.Context) (int, error) {
	if s == nil || s.Repo == nil {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	changes, err := s.Repo.ListLatestStateChanges(ctx)
	if err != nil {
		s.log().Error("bootstrap history read failed", zap.Error(err))
		return 0, err
	}

	type key struct{ symbol, tf string }
	rebuilt := map[key]*models.TimeframeState{}
	order := []key{}
	for _, c := range changes {
		k := key{c.Symbol, c.Timeframe}
		item, ok := rebuilt[k]
		if !ok {
			item = &models.TimeframeState{
				Symbol:     c.Symbol,
				Timeframe:  c.Timeframe,
				EMAStatus:  models.StatusUnknown,
				MACDStatus: models.StatusUnknown,
			}
			rebuilt[k] = item
			order = append(order, k)
		}
		ts := c.CreatedAt
		switch c.Indicator {
		case models.IndicatorEMA:
			item.EMAStatus = c.NewStatus
			item.LastEMAUpdate = &ts
			item.LastEMAPrice = c.Price
		case models.IndicatorMACD:
			item.MACDStatus = c.NewStatus
			item.LastMACDUpdate = &ts
			item.LastMACDPrice = c.Price
		}
	}

	count := 0
	for _, k := range order {
		item := rebuilt[k]
		existing, err := s.Repo.GetTimeframeState(ctx, k.symbol, k.tf)
		if err != nil {
			s.log().Error("bootstrap state read failed", zap.String("symbol", k.symbol), zap.String("timeframe", k.tf), zap.Error(err))
			return count, err
		}
		if existing != nil {
			item.ID = existing.ID
			item.CreatedAt = existing.CreatedAt
		}
		if err := s.Repo.UpsertTimeframeState(ctx, item); err != nil {
			s.log().Error("bootstrap state upsert failed", zap.String("symbol", k.symbol), zap.String("timeframe", k.tf), zap.Error(err))
			return count, err
		}
		count++
	}

	s.log().Info("state bootstrapped from history", zap.Int("rebuilt", count))
	return count, nil
}

// EnsureExists seeds placeholder rows (full hierarchy, both indicators
// UNKNOWN) for a symbol that has none, so a freshly registered symbol shows
// up in aggregate listings before its first event. Existing rows are left
// untouched.
func (s *Service) EnsureExists(ctx context.Context, symbol string) bool {
	if s == nil || s.Repo == nil {
		return false
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	existing, err := s.Repo.ListTimeframeStates(ctx, symbol)
	if err != nil {
		s.log().Error("state list failed", zap.String("symbol", symbol), zap.Error(err))
		return false
	}
	if len(existing) > 0 {
		return true
	}
	for _, tf := range timeframe.Hierarchy {
		item := models.TimeframeState{
			Symbol:     symbol,
			Timeframe:  tf,
			EMAStatus:  models.StatusUnknown,
			MACDStatus: models.StatusUnknown,
		}
		if err := s.Repo.UpsertTimeframeState(ctx, &item); err != nil {
			s.log().Error("placeholder upsert failed", zap.String("symbol", symbol), zap.String("timeframe", tf), zap.Error(err))
			return false
		}
	}
	s.log().Info("seeded placeholder states", zap.String("symbol", symbol))
	return true
}

// GetMetadata reads a process-wide key-value fact. False when absent or on a
// store fault.
func (s *Service) GetMetadata(ctx context.Context, key string) (string, bool) {
	if s == nil || s.Repo == nil {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	item, err := s.Repo.GetMetadataByKey(ctx, key)
	if err != nil {
		s.log().Error("metadata read failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	if item == nil {
		return "", false
	}
	var value string
	if err := json.Unmarshal(item.Value, &value); err != nil {
		return "", false
	}
	return value, true
}

// SetMetadata upserts a process-wide key-value fact. Last write wins.
func (s *Service) SetMetadata(ctx context.Context, key, value string) bool {
	if s == nil || s.Repo == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	raw, _ := json.Marshal(value)
	item := models.Metadata{
		Key:   key,
		Value: datatypes.JSON(raw),
	}
	if err := s.Repo.UpsertMetadata(ctx, &item); err != nil {
		s.log().Error("metadata upsert failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Service) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.OpTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.OpTimeout)
}

func (s *Service) log() *zap.Logger {
	if s != nil && s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
