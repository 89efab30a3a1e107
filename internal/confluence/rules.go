// Package confluence gates alert delivery on agreement of indicator
// direction across timeframes, driven by a configurable rule set.
package confluence

import (
	"encoding/json"
	"strings"

	"tradealerts/internal/models"
	"tradealerts/internal/timeframe"
)

// Rule actions.
const (
	ActionAllow = "ALLOW"
	ActionBlock = "BLOCK"
)

// Requirement check fields.
const (
	CheckEMAStatus  = "ema_status"
	CheckMACDStatus = "macd_status"
)

// Match is one trigger field: either the wildcard or an exact value. It
// serializes as the sentinel string "any" or the literal, keeping the rule
// document format stable.
type Match struct {
	Any   bool
	Value string
}

func MatchAny() Match           { return Match{Any: true} }
func MatchExact(v string) Match { return Match{Value: v} }

func (m Match) Matches(v string) bool {
	return m.Any || strings.EqualFold(m.Value, v)
}

func (m Match) MarshalJSON() ([]byte, error) {
	if m.Any {
		return json.Marshal("any")
	}
	return json.Marshal(m.Value)
}

func (m *Match) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "any") {
		*m = Match{Any: true}
		return nil
	}
	*m = Match{Value: s}
	return nil
}

// TimeframeRef names the timeframe a requirement inspects: a literal label,
// or "next_higher" resolved against the triggering event's timeframe.
type TimeframeRef struct {
	NextHigher bool
	Literal    string
}

// Resolve returns the concrete timeframe to inspect. False when the symbolic
// reference has no target (triggering timeframe unknown or already highest).
func (r TimeframeRef) Resolve(eventTimeframe string) (string, bool) {
	if r.NextHigher {
		return timeframe.NextHigher(eventTimeframe)
	}
	return timeframe.Normalize(r.Literal), true
}

func (r TimeframeRef) MarshalJSON() ([]byte, error) {
	if r.NextHigher {
		return json.Marshal("next_higher")
	}
	return json.Marshal(r.Literal)
}

func (r *TimeframeRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.EqualFold(strings.TrimSpace(s), "next_higher") {
		*r = TimeframeRef{NextHigher: true}
		return nil
	}
	*r = TimeframeRef{Literal: strings.TrimSpace(s)}
	return nil
}

// Expectation is the value a requirement demands: a literal status, or
// "same_direction" resolved to the triggering event's direction.
type Expectation struct {
	SameDirection bool
	Literal       string
}

func (e Expectation) Expected(eventDirection string) string {
	if e.SameDirection {
		return strings.ToUpper(eventDirection)
	}
	return strings.ToUpper(e.Literal)
}

func (e Expectation) MarshalJSON() ([]byte, error) {
	if e.SameDirection {
		return json.Marshal("same_direction")
	}
	return json.Marshal(e.Literal)
}

func (e *Expectation) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.EqualFold(strings.TrimSpace(s), "same_direction") {
		*e = Expectation{SameDirection: true}
		return nil
	}
	*e = Expectation{Literal: strings.TrimSpace(s)}
	return nil
}

type Trigger struct {
	Timeframe     Match `json:"timeframe"`
	CrossoverType Match `json:"crossover_type"`
	Direction     Match `json:"direction"`
}

func (t Trigger) Matches(ev models.CrossoverEvent) bool {
	return t.Timeframe.Matches(ev.Timeframe) &&
		t.CrossoverType.Matches(ev.Indicator) &&
		t.Direction.Matches(ev.Direction)
}

type Requirement struct {
	Timeframe TimeframeRef `json:"timeframe"`
	Check     string       `json:"check"`
	MustBe    Expectation  `json:"must_be"`
}

type Rule struct {
	Name         string        `json:"name"`
	Enabled      bool          `json:"enabled"`
	Trigger      Trigger       `json:"trigger"`
	Requirements []Requirement `json:"requirements"`
	Action       string        `json:"action"`
}

// DefaultRules is the documented default set written when no rule document
// exists: next-higher-EMA confluence for both crossover kinds, plus a
// catch-all block rule shipped disabled.
func DefaultRules() []Rule {
	nextHigherEMA := []Requirement{{
		Timeframe: TimeframeRef{NextHigher: true},
		Check:     CheckEMAStatus,
		MustBe:    Expectation{SameDirection: true},
	}}
	return []Rule{
		{
			Name:    "MACD confluence with next higher EMA",
			Enabled: true,
			Trigger: Trigger{
				Timeframe:     MatchAny(),
				CrossoverType: MatchExact(models.IndicatorMACD),
				Direction:     MatchAny(),
			},
			Requirements: nextHigherEMA,
			Action:       ActionAllow,
		},
		{
			Name:    "EMA confluence with next higher EMA",
			Enabled: true,
			Trigger: Trigger{
				Timeframe:     MatchAny(),
				CrossoverType: MatchExact(models.IndicatorEMA),
				Direction:     MatchAny(),
			},
			Requirements: nextHigherEMA,
			Action:       ActionAllow,
		},
		{
			Name:    "Block alerts without confluence",
			Enabled: false,
			Trigger: Trigger{
				Timeframe:     MatchAny(),
				CrossoverType: MatchAny(),
				Direction:     MatchAny(),
			},
			Requirements: []Requirement{},
			Action:       ActionBlock,
		},
	}
}
