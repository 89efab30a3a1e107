package state

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"tradealerts/internal/models"
	"tradealerts/internal/repository"
	memoryrepository "tradealerts/internal/repository/memory"
	"tradealerts/internal/timeframe"
)

func newService(store *memoryrepository.Store) *Service {
	return &Service{Repo: store}
}

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestRecordEventCreatesStateAndHistory(t *testing.T) {
	store := memoryrepository.New()
	svc := newService(store)
	ctx := context.Background()

	if !svc.RecordEvent(ctx, "spy", "15min", "ema", "bullish", decPtr("580.25")) {
		t.Fatalf("RecordEvent failed")
	}

	got := svc.GetState(ctx, "SPY", "15MIN")
	if got == nil {
		t.Fatalf("expected state row for SPY 15MIN")
	}
	if got.EMAStatus != models.StatusBullish {
		t.Fatalf("EMAStatus = %q, want BULLISH", got.EMAStatus)
	}
	if got.MACDStatus != models.StatusUnknown {
		t.Fatalf("MACDStatus = %q, want UNKNOWN", got.MACDStatus)
	}
	if got.LastEMAUpdate == nil {
		t.Fatalf("LastEMAUpdate not set")
	}
	if got.LastMACDUpdate != nil {
		t.Fatalf("LastMACDUpdate should stay nil for an EMA event")
	}

	changes, err := store.ListStateChanges(ctx, listAll())
	if err != nil {
		t.Fatalf("ListStateChanges: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("history rows = %d, want 1", len(changes))
	}
	if changes[0].OldStatus != models.StatusUnknown || changes[0].NewStatus != models.StatusBullish {
		t.Fatalf("transition = %s->%s, want UNKNOWN->BULLISH", changes[0].OldStatus, changes[0].NewStatus)
	}
}

func TestRecordEventDuplicateIsNoOp(t *testing.T) {
	store := memoryrepository.New()
	svc := newService(store)
	ctx := context.Background()

	if !svc.RecordEvent(ctx, "SPY", "1HR", "macd", "BULLISH", nil) {
		t.Fatalf("first RecordEvent failed")
	}
	first := svc.GetState(ctx, "SPY", "1HR")
	if first == nil || first.LastMACDUpdate == nil {
		t.Fatalf("expected MACD timestamp after first event")
	}
	stamp := *first.LastMACDUpdate

	// Same direction again: success, but no new history row and no
	// timestamp bump.
	if !svc.RecordEvent(ctx, "SPY", "1HR", "macd", "BULLISH", nil) {
		t.Fatalf("duplicate RecordEvent should report success")
	}
	second := svc.GetState(ctx, "SPY", "1HR")
	if !second.LastMACDUpdate.Equal(stamp) {
		t.Fatalf("duplicate event bumped LastMACDUpdate")
	}
	changes, _ := store.ListStateChanges(ctx, listAll())
	if len(changes) != 1 {
		t.Fatalf("history rows = %d, want 1", len(changes))
	}
}

func TestRecordEventIndicatorsIndependent(t *testing.T) {
	store := memoryrepository.New()
	svc := newService(store)
	ctx := context.Background()

	svc.RecordEvent(ctx, "SPY", "4HR", "ema", "BULLISH", nil)
	svc.RecordEvent(ctx, "SPY", "4HR", "macd", "BEARISH", nil)

	got := svc.GetState(ctx, "SPY", "4HR")
	if got.EMAStatus != models.StatusBullish || got.MACDStatus != models.StatusBearish {
		t.Fatalf("got EMA=%s MACD=%s, want BULLISH/BEARISH", got.EMAStatus, got.MACDStatus)
	}
}

func TestRecordEventRejectsBadInput(t *testing.T) {
	svc := newService(memoryrepository.New())
	ctx := context.Background()

	if svc.RecordEvent(ctx, "SPY", "1HR", "rsi", "BULLISH", nil) {
		t.Fatalf("unknown indicator accepted")
	}
	if svc.RecordEvent(ctx, "SPY", "1HR", "ema", "SIDEWAYS", nil) {
		t.Fatalf("unknown direction accepted")
	}
}

func TestRecordEventUnknownTimeframeStillTracked(t *testing.T) {
	svc := newService(memoryrepository.New())
	ctx := context.Background()

	if !svc.RecordEvent(ctx, "SPY", "3MIN", "ema", "BULLISH", nil) {
		t.Fatalf("unknown timeframe should be tracked, not rejected")
	}
	if got := svc.GetState(ctx, "SPY", "3MIN"); got == nil {
		t.Fatalf("expected state row for unknown timeframe")
	}
}

func TestGetAllStatesHierarchyOrder(t *testing.T) {
	svc := newService(memoryrepository.New())
	ctx := context.Background()

	// Insert out of order.
	svc.RecordEvent(ctx, "SPY", "1DAY", "ema", "BULLISH", nil)
	svc.RecordEvent(ctx, "SPY", "5MIN", "ema", "BEARISH", nil)
	svc.RecordEvent(ctx, "SPY", "1HR", "ema", "BULLISH", nil)

	items := svc.GetAllStates(ctx, "SPY")
	if len(items) != 3 {
		t.Fatalf("states = %d, want 3", len(items))
	}
	want := []string{"5MIN", "1HR", "1DAY"}
	for i, tf := range want {
		if items[i].Timeframe != tf {
			t.Fatalf("position %d = %s, want %s", i, items[i].Timeframe, tf)
		}
	}
}

func TestGetSummaryCounts(t *testing.T) {
	svc := newService(memoryrepository.New())
	ctx := context.Background()

	svc.RecordEvent(ctx, "SPY", "5MIN", "ema", "BULLISH", nil)
	svc.RecordEvent(ctx, "SPY", "15MIN", "ema", "BEARISH", nil)
	svc.RecordEvent(ctx, "SPY", "15MIN", "macd", "BULLISH", nil)

	sum := svc.GetSummary(ctx, "SPY")
	if sum.TotalTimeframes != 2 {
		t.Fatalf("TotalTimeframes = %d, want 2", sum.TotalTimeframes)
	}
	if sum.EMABullishCount != 1 || sum.EMABearishCount != 1 {
		t.Fatalf("EMA counts = %d/%d, want 1/1", sum.EMABullishCount, sum.EMABearishCount)
	}
	if sum.MACDBullishCount != 1 || sum.MACDBearishCount != 0 {
		t.Fatalf("MACD counts = %d/%d, want 1/0", sum.MACDBullishCount, sum.MACDBearishCount)
	}
}

func TestBootstrapFromHistoryRestoresState(t *testing.T) {
	store := memoryrepository.New()
	svc := newService(store)
	ctx := context.Background()

	svc.RecordEvent(ctx, "SPY", "1HR", "ema", "BULLISH", decPtr("580.00"))
	svc.RecordEvent(ctx, "SPY", "1HR", "ema", "BEARISH", decPtr("578.50"))
	svc.RecordEvent(ctx, "SPY", "1HR", "macd", "BULLISH", nil)
	svc.RecordEvent(ctx, "QQQ", "1DAY", "macd", "BEARISH", nil)

	before := svc.GetState(ctx, "SPY", "1HR")

	// Wipe state, keep history, replay.
	store.ResetStates()
	if got := svc.GetState(ctx, "SPY", "1HR"); got != nil {
		t.Fatalf("state should be gone after reset")
	}

	restored, err := svc.BootstrapFromHistory(ctx)
	if err != nil {
		t.Fatalf("BootstrapFromHistory: %v", err)
	}
	if restored != 2 {
		t.Fatalf("restored = %d, want 2", restored)
	}

	after := svc.GetState(ctx, "SPY", "1HR")
	if after == nil {
		t.Fatalf("SPY 1HR not restored")
	}
	if after.EMAStatus != before.EMAStatus || after.MACDStatus != before.MACDStatus {
		t.Fatalf("restored EMA=%s MACD=%s, want EMA=%s MACD=%s",
			after.EMAStatus, after.MACDStatus, before.EMAStatus, before.MACDStatus)
	}
	if after.LastEMAPrice == nil || !after.LastEMAPrice.Equal(decimal.RequireFromString("578.50")) {
		t.Fatalf("restored EMA price = %v, want 578.50", after.LastEMAPrice)
	}
	if qqq := svc.GetState(ctx, "QQQ", "1DAY"); qqq == nil || qqq.MACDStatus != models.StatusBearish {
		t.Fatalf("QQQ 1DAY not restored to BEARISH")
	}
}

func TestEnsureExistsSeedsFullHierarchy(t *testing.T) {
	svc := newService(memoryrepository.New())
	ctx := context.Background()

	if !svc.EnsureExists(ctx, "qqq") {
		t.Fatalf("EnsureExists failed")
	}
	items := svc.GetAllStates(ctx, "QQQ")
	if len(items) != len(timeframe.Hierarchy) {
		t.Fatalf("seeded %d rows, want %d", len(items), len(timeframe.Hierarchy))
	}
	for _, item := range items {
		if item.EMAStatus != models.StatusUnknown || item.MACDStatus != models.StatusUnknown {
			t.Fatalf("%s seeded as %s/%s, want UNKNOWN/UNKNOWN", item.Timeframe, item.EMAStatus, item.MACDStatus)
		}
	}

	// Idempotent: a second call never overwrites live state.
	svc.RecordEvent(ctx, "QQQ", "1HR", "ema", "BULLISH", nil)
	svc.EnsureExists(ctx, "QQQ")
	if got := svc.GetState(ctx, "QQQ", "1HR"); got.EMAStatus != models.StatusBullish {
		t.Fatalf("EnsureExists overwrote live state")
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	svc := newService(memoryrepository.New())
	ctx := context.Background()

	if _, ok := svc.GetMetadata(ctx, "daily_summary_last_sent"); ok {
		t.Fatalf("absent key reported present")
	}
	if !svc.SetMetadata(ctx, "daily_summary_last_sent", "2026-08-28") {
		t.Fatalf("SetMetadata failed")
	}
	got, ok := svc.GetMetadata(ctx, "daily_summary_last_sent")
	if !ok || got != "2026-08-28" {
		t.Fatalf("GetMetadata = %q/%v, want 2026-08-28/true", got, ok)
	}
}

func listAll() repository.ListStateChangesParams {
	return repository.ListStateChangesParams{}
}

// faultRepo fails every read; methods it does not override panic if reached.
type faultRepo struct{ repository.Repository }

func (faultRepo) GetTimeframeState(context.Context, string, string) (*models.TimeframeState, error) {
	return nil, errors.New("store offline")
}

func (faultRepo) ListTimeframeStates(context.Context, string) ([]models.TimeframeState, error) {
	return nil, errors.New("store offline")
}

func (faultRepo) ListLatestStateChanges(context.Context) ([]models.StateChange, error) {
	return nil, errors.New("store offline")
}

func (faultRepo) GetMetadataByKey(context.Context, string) (*models.Metadata, error) {
	return nil, errors.New("store offline")
}

func TestStoreFaultsAbsorbedToSafeDefaults(t *testing.T) {
	svc := &Service{Repo: faultRepo{}}
	ctx := context.Background()

	if svc.RecordEvent(ctx, "SPY", "5MIN", "ema", "BULLISH", nil) {
		t.Fatalf("RecordEvent should report failure on a store fault")
	}
	if got := svc.GetState(ctx, "SPY", "5MIN"); got != nil {
		t.Fatalf("GetState on store fault = %+v, want nil", got)
	}
	if got := svc.GetAllStates(ctx, "SPY"); got != nil {
		t.Fatalf("GetAllStates on store fault = %v, want nil", got)
	}
	if sum := svc.GetSummary(ctx, "SPY"); sum.TotalTimeframes != 0 {
		t.Fatalf("GetSummary on store fault = %+v, want empty", sum)
	}
	if _, err := svc.BootstrapFromHistory(ctx); err == nil {
		t.Fatalf("BootstrapFromHistory should surface the store fault")
	}
	if _, ok := svc.GetMetadata(ctx, "daily_summary_last_sent"); ok {
		t.Fatalf("GetMetadata on store fault should report absent")
	}
}
