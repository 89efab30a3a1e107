package confluence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

type document struct {
	Rules []Rule `json:"rules"`
}

// Store holds the mutable rule configuration, backed by a JSON document on
// disk. When the document is missing at load time the default rule set is
// synthesized and persisted back.
type Store struct {
	path   string
	logger *zap.Logger

	mu    sync.Mutex
	rules []Rule
}

func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

// Load reads the rule document, creating it from defaults when absent. A
// malformed document leaves the store empty (every event then passes the
// no-applicable-rules default) rather than failing startup.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.rules = DefaultRules()
		if err := s.save(); err != nil {
			s.logger.Error("write default rules failed", zap.String("path", s.path), zap.Error(err))
			return err
		}
		s.logger.Info("created default confluence rules", zap.String("path", s.path), zap.Int("rules", len(s.rules)))
		return nil
	}
	if err != nil {
		s.rules = nil
		s.logger.Error("read rules failed", zap.String("path", s.path), zap.Error(err))
		return err
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.rules = nil
		s.logger.Error("parse rules failed", zap.String("path", s.path), zap.Error(err))
		return err
	}
	s.rules = doc.Rules
	s.logger.Info("loaded confluence rules", zap.String("path", s.path), zap.Int("rules", len(s.rules)))
	return nil
}

// Reload re-reads the document, picking up external edits at runtime.
func (s *Store) Reload() error {
	return s.Load()
}

// Rules returns a copy of the current ordered rule set.
func (s *Store) Rules() []Rule {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// SetEnabled toggles one rule by its position in the document and persists
// the change.
func (s *Store) SetEnabled(index int, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.rules) {
		return fmt.Errorf("rule index %d out of range (%d rules)", index, len(s.rules))
	}
	s.rules[index].Enabled = enabled
	if err := s.save(); err != nil {
		return err
	}
	s.logger.Info("rule toggled",
		zap.Int("index", index),
		zap.String("name", s.rules[index].Name),
		zap.Bool("enabled", enabled),
	)
	return nil
}

type RuleInfo struct {
	Name              string `json:"name"`
	Enabled           bool   `json:"enabled"`
	Action            string `json:"action"`
	RequirementsCount int    `json:"requirements_count"`
}

type RulesSummary struct {
	TotalRules    int        `json:"total_rules"`
	EnabledRules  int        `json:"enabled_rules"`
	DisabledRules int        `json:"disabled_rules"`
	Rules         []RuleInfo `json:"rules"`
}

func (s *Store) Summary() RulesSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary := RulesSummary{TotalRules: len(s.rules)}
	for _, r := range s.rules {
		if r.Enabled {
			summary.EnabledRules++
		} else {
			summary.DisabledRules++
		}
		summary.Rules = append(summary.Rules, RuleInfo{
			Name:              r.Name,
			Enabled:           r.Enabled,
			Action:            r.Action,
			RequirementsCount: len(r.Requirements),
		})
	}
	return summary
}

// save writes atomically (tmp + rename). Caller holds the lock.
func (s *Store) save() error {
	raw, err := json.MarshalIndent(document{Rules: s.rules}, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
