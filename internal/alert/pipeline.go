// Package alert orchestrates one inbound event through the core gates:
// state update, confluence rules, tag derivation, toggle suppression.
package alert

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"tradealerts/internal/confluence"
	"tradealerts/internal/models"
	"tradealerts/internal/state"
	"tradealerts/internal/timeframe"
	"tradealerts/internal/toggle"
)

// Decision is the outbound contract to the delivery layer: whether to
// deliver, the resolved alert tag when so, and the gate that decided.
type Decision struct {
	Deliver bool   `json:"deliver"`
	Tag     string `json:"tag,omitempty"`
	Reason  string `json:"reason"`
}

type Pipeline struct {
	States  *state.Service
	Rules   *confluence.Engine
	Toggles *toggle.Service
	Session SessionWindow
	Logger  *zap.Logger
}

// Process runs the main channel: record the event, evaluate confluence
// against the updated snapshot, derive the tag, consult the toggle gate.
func (p *Pipeline) Process(ctx context.Context, ev models.CrossoverEvent) Decision {
	ev = normalize(ev)

	if !p.States.RecordEvent(ctx, ev.Symbol, ev.Timeframe, ev.Indicator, ev.Direction, ev.Price) {
		return Decision{Reason: "invalid_event"}
	}

	states := p.States.GetAllStates(ctx, ev.Symbol)
	if !p.Rules.Evaluate(ev, states) {
		p.log().Info("alert blocked by confluence",
			zap.String("symbol", ev.Symbol),
			zap.String("timeframe", ev.Timeframe),
			zap.String("direction", ev.Direction),
		)
		return Decision{Reason: "confluence_blocked"}
	}

	tag, ok := DeriveTag(ev.Direction, ev.Timeframe)
	if !ok {
		p.log().Warn("no tag for timeframe, skipping delivery",
			zap.String("symbol", ev.Symbol),
			zap.String("timeframe", ev.Timeframe),
		)
		return Decision{Reason: "no_tag"}
	}

	if !p.Toggles.IsEnabled(ctx, ev.Symbol, tag) {
		p.log().Info("alert suppressed by toggle",
			zap.String("symbol", ev.Symbol),
			zap.String("tag", tag),
		)
		return Decision{Tag: tag, Reason: "toggle_disabled"}
	}

	return Decision{Deliver: true, Tag: tag, Reason: "allowed"}
}

// ProcessScalp runs the scalp channel's fixed rule set: weekday session
// window only, EMA crossovers only, 1MIN needs 5MIN EMA agreement, 5MIN
// always fires, everything else never does. It reads state but does not
// write it (Process already recorded the event).
func (p *Pipeline) ProcessScalp(ctx context.Context, ev models.CrossoverEvent, now time.Time) Decision {
	ev = normalize(ev)

	if open, reason := p.Session.Check(now); !open {
		return Decision{Reason: reason}
	}
	if ev.Indicator != models.IndicatorEMA {
		return Decision{Reason: "not_ema"}
	}
	if ev.Direction != models.StatusBullish && ev.Direction != models.StatusBearish {
		return Decision{Reason: "invalid_direction"}
	}

	bullish := ev.Direction == models.StatusBullish
	switch ev.Timeframe {
	case "1MIN":
		var fiveMin *models.TimeframeState
		for _, st := range p.States.GetAllStates(ctx, ev.Symbol) {
			if st.Timeframe == "5MIN" {
				s := st
				fiveMin = &s
				break
			}
		}
		if fiveMin == nil {
			return Decision{Reason: "no_5min_state"}
		}
		if fiveMin.EMAStatus != ev.Direction {
			p.log().Info("scalp 1MIN filtered, no 5MIN confluence",
				zap.String("symbol", ev.Symbol),
				zap.String("direction", ev.Direction),
				zap.String("five_min_ema", fiveMin.EMAStatus),
			)
			return Decision{Reason: "no_confluence"}
		}
		if bullish {
			return Decision{Deliver: true, Tag: "C1", Reason: "allowed"}
		}
		return Decision{Deliver: true, Tag: "P1", Reason: "allowed"}
	case "5MIN":
		if bullish {
			return Decision{Deliver: true, Tag: "C5", Reason: "allowed"}
		}
		return Decision{Deliver: true, Tag: "P5", Reason: "allowed"}
	default:
		return Decision{Reason: "timeframe_not_allowed"}
	}
}

func normalize(ev models.CrossoverEvent) models.CrossoverEvent {
	ev.Symbol = strings.ToUpper(strings.TrimSpace(ev.Symbol))
	ev.Timeframe = timeframe.Normalize(ev.Timeframe)
	ev.Indicator = strings.ToLower(strings.TrimSpace(ev.Indicator))
	ev.Direction = strings.ToUpper(strings.TrimSpace(ev.Direction))
	return ev
}

func (p *Pipeline) log() *zap.Logger {
	if p != nil && p.Logger != nil {
		return p.Logger
	}
	return zap.NewNop()
}
