package timeframe

import "testing"

func TestNextHigher(t *testing.T) {
	next, ok := NextHigher("5MIN")
	if !ok || next != "15MIN" {
		t.Fatalf("NextHigher(5MIN)=%q,%v want 15MIN,true", next, ok)
	}
	next, ok = NextHigher("4hr")
	if !ok || next != "1DAY" {
		t.Fatalf("NextHigher(4hr)=%q,%v want 1DAY,true", next, ok)
	}
}

func TestNextHigher_TopOfHierarchy(t *testing.T) {
	if _, ok := NextHigher("1DAY"); ok {
		t.Fatalf("NextHigher(1DAY) should have no higher timeframe")
	}
}

func TestNextHigher_UnknownLabel(t *testing.T) {
	if _, ok := NextHigher("bogus"); ok {
		t.Fatalf("NextHigher(bogus) should not resolve")
	}
}

func TestNormalizeAndContains(t *testing.T) {
	if !Contains(" 5min ") {
		t.Fatalf("Contains should normalize case and whitespace")
	}
	if Contains("7MIN") {
		t.Fatalf("Contains(7MIN)=true want false")
	}
}

func TestRank_UnknownSortsLast(t *testing.T) {
	if Rank("1MIN") != 0 {
		t.Fatalf("Rank(1MIN)=%d want 0", Rank("1MIN"))
	}
	if Rank("bogus") <= Rank("1DAY") {
		t.Fatalf("unknown timeframe must sort after every known one")
	}
}

func TestTagSuffix(t *testing.T) {
	cases := map[string]string{
		"1MIN": "1", "5MIN": "5", "30MIN": "30", "1HR": "1H", "1DAY": "1D",
	}
	for tf, want := range cases {
		got, ok := TagSuffix(tf)
		if !ok || got != want {
			t.Fatalf("TagSuffix(%s)=%q,%v want %q,true", tf, got, ok, want)
		}
	}
	if _, ok := TagSuffix("90MIN"); ok {
		t.Fatalf("TagSuffix(90MIN) should be unknown")
	}
}
