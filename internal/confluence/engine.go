package confluence

import (
	"go.uber.org/zap"

	"tradealerts/internal/models"
)

// Engine evaluates the rule set against an incoming event and a snapshot of
// the symbol's current states.
//
// Decision table:
//   - no enabled rule matches the trigger  -> ALLOW (no applicable policy)
//   - first matching rule whose every requirement holds -> that rule's action
//   - rules matched but none satisfied     -> BLOCK
//   - internal fault during evaluation     -> ALLOW (favor delivery over
//     silence under misconfiguration)
type Engine struct {
	Store  *Store
	Logger *zap.Logger
}

func (e *Engine) Evaluate(ev models.CrossoverEvent, states []models.TimeframeState) (allow bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log().Error("rule evaluation fault, allowing alert",
				zap.String("symbol", ev.Symbol),
				zap.Any("fault", r),
			)
			allow = true
		}
	}()

	byTimeframe := make(map[string]models.TimeframeState, len(states))
	for _, st := range states {
		byTimeframe[st.Timeframe] = st
	}

	var applicable []Rule
	if e.Store != nil {
		for _, rule := range e.Store.Rules() {
			if rule.Enabled && rule.Trigger.Matches(ev) {
				applicable = append(applicable, rule)
			}
		}
	}

	if len(applicable) == 0 {
		e.log().Info("no applicable rules, allowing",
			zap.String("symbol", ev.Symbol),
			zap.String("timeframe", ev.Timeframe),
		)
		return true
	}

	for _, rule := range applicable {
		if e.requirementsMet(rule, ev, byTimeframe) {
			e.log().Info("rule passed",
				zap.String("symbol", ev.Symbol),
				zap.String("rule", rule.Name),
				zap.String("action", rule.Action),
			)
			return rule.Action == ActionAllow
		}
		e.log().Info("rule failed",
			zap.String("symbol", ev.Symbol),
			zap.String("rule", rule.Name),
		)
	}

	e.log().Info("no matching rule satisfied, blocking",
		zap.String("symbol", ev.Symbol),
		zap.String("timeframe", ev.Timeframe),
	)
	return false
}

func (e *Engine) requirementsMet(rule Rule, ev models.CrossoverEvent, states map[string]models.TimeframeState) bool {
	for _, req := range rule.Requirements {
		if !e.requirementMet(req, ev, states) {
			return false
		}
	}
	return true
}

func (e *Engine) requirementMet(req Requirement, ev models.CrossoverEvent, states map[string]models.TimeframeState) bool {
	tf, ok := req.Timeframe.Resolve(ev.Timeframe)
	if !ok {
		e.log().Info("no higher timeframe", zap.String("timeframe", ev.Timeframe))
		return false
	}

	st, ok := states[tf]
	if !ok {
		e.log().Info("no state for required timeframe",
			zap.String("symbol", ev.Symbol),
			zap.String("timeframe", tf),
		)
		return false
	}

	var current string
	switch req.Check {
	case CheckEMAStatus:
		current = st.EMAStatus
	case CheckMACDStatus:
		current = st.MACDStatus
	default:
		e.log().Warn("unknown requirement check", zap.String("check", req.Check))
		return false
	}

	required := req.MustBe.Expected(ev.Direction)
	passed := current == required
	e.log().Debug("requirement checked",
		zap.String("symbol", ev.Symbol),
		zap.String("timeframe", tf),
		zap.String("check", req.Check),
		zap.String("current", current),
		zap.String("required", required),
		zap.Bool("passed", passed),
	)
	return passed
}

func (e *Engine) log() *zap.Logger {
	if e != nil && e.Logger != nil {
		return e.Logger
	}
	return zap.NewNop()
}
