// Package toggle implements per-(symbol, tag) alert suppression flags. The
// gate fails open: an unconfigured tag, a missing row, or a store fault all
// mean "enabled"; alerts are never silently suppressed by absence of
// configuration.
package toggle

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"tradealerts/internal/models"
	"tradealerts/internal/repository"
)

// Bases seeded (times every configured timeframe suffix) by EnsureDefaults.
var defaultBases = []string{"C", "CALL", "Call", "P", "PUT", "Put"}

type Service struct {
	Repo      repository.Repository
	Logger    *zap.Logger
	OpTimeout time.Duration

	// TagSuffixes are the timeframe suffixes used when seeding defaults
	// ("1","5",...,"1D").
	TagSuffixes []string

	mu sync.Mutex
}

// NormalizeTag applies the storage casing rule: tags in the mixed-case
// "Call"/"Put" family are kept verbatim, every other tag is uppercased. The
// asymmetry is load-bearing; do not unify the casing.
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	if strings.HasPrefix(tag, "Call") || strings.HasPrefix(tag, "Put") {
		return tag
	}
	return strings.ToUpper(tag)
}

// IsEnabled reports whether an alert tag is enabled for a symbol. Lookup
// order: exact-case match, then uppercase, then default true.
func (s *Service) IsEnabled(ctx context.Context, symbol, tag string) bool {
	if s == nil || s.Repo == nil {
		return true
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	toggles, ok := s.load(ctx, symbol)
	if !ok || len(toggles) == 0 {
		return true
	}
	if enabled, found := toggles[tag]; found {
		return enabled
	}
	if enabled, found := toggles[strings.ToUpper(tag)]; found {
		return enabled
	}
	return true
}

// Get returns a copy of the symbol's toggle map.
func (s *Service) Get(ctx context.Context, symbol string) map[string]bool {
	if s == nil || s.Repo == nil {
		return map[string]bool{}
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	toggles, _ := s.load(ctx, symbol)
	if toggles == nil {
		toggles = map[string]bool{}
	}
	return toggles
}

// SetMany merges updates into the symbol's toggle map (keys normalized per
// NormalizeTag) and returns the resulting map. Nil on a store fault.
func (s *Service) SetMany(ctx context.Context, symbol string, updates map[string]bool) map[string]bool {
	if s == nil || s.Repo == nil {
		return nil
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	toggles, ok := s.load(ctx, symbol)
	if !ok {
		return nil
	}
	if toggles == nil {
		toggles = map[string]bool{}
	}
	for tag, enabled := range updates {
		toggles[NormalizeTag(tag)] = enabled
	}
	if !s.persist(ctx, symbol, toggles) {
		return nil
	}
	return toggles
}

// EnsureDefaults seeds every base x suffix combination as enabled for a
// symbol without overwriting entries that already exist.
func (s *Service) EnsureDefaults(ctx context.Context, symbol string) bool {
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

	toggles, ok := s.load(ctx, symbol)
	if !ok {
		return false
	}
	if toggles == nil {
		toggles = map[string]bool{}
	}
	added := 0
	for _, base := range defaultBases {
		for _, suffix := range s.suffixes() {
			tag := base + suffix
			if _, exists := toggles[tag]; !exists {
				toggles[tag] = true
				added++
			}
		}
	}
	if added == 0 {
		return true
	}
	if !s.persist(ctx, symbol, toggles) {
		return false
	}
	s.log().Info("seeded default toggles", zap.String("symbol", symbol), zap.Int("added", added))
	return true
}

func (s *Service) suffixes() []string {
	if len(s.TagSuffixes) > 0 {
		return s.TagSuffixes
	}
	return []string{"1", "5", "15", "30", "1H", "2H", "4H", "1D"}
}

// load reads the symbol's toggle map. The second return is false only on a
// store fault; a missing row is (nil, true).
func (s *Service) load(ctx context.Context, symbol string) (map[string]bool, bool) {
	item, err := s.Repo.GetSymbolToggles(ctx, symbol)
	if err != nil {
		s.log().Error("toggle read failed", zap.String("symbol", symbol), zap.Error(err))
		return nil, false
	}
	if item == nil || len(item.Toggles) == 0 {
		return nil, true
	}
	var toggles map[string]bool
	if err := json.Unmarshal(item.Toggles, &toggles); err != nil {
		s.log().Error("toggle document malformed", zap.String("symbol", symbol), zap.Error(err))
		return nil, true
	}
	return toggles, true
}

func (s *Service) persist(ctx context.Context, symbol string, toggles map[string]bool) bool {
	raw, err := json.Marshal(toggles)
	if err != nil {
		s.log().Error("toggle marshal failed", zap.String("symbol", symbol), zap.Error(err))
		return false
	}
	item := models.SymbolToggles{
		Symbol:  symbol,
		Toggles: datatypes.JSON(raw),
	}
	if err := s.Repo.UpsertSymbolToggles(ctx, &item); err != nil {
		s.log().Error("toggle upsert failed", zap.String("symbol", symbol), zap.Error(err))
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
