package alert

import (
	"tradealerts/internal/models"
	"tradealerts/internal/timeframe"
)

var minuteFrames = map[string]bool{"1MIN": true, "5MIN": true, "15MIN": true, "30MIN": true}

// DeriveTag builds the alert-classification code used as the toggle key and
// in outbound formatting: the short C/P family on minute timeframes, the
// long CALL/PUT family on hour and day timeframes, plus the hierarchy's tag
// suffix (C5, P30, CALL1H, PUT1D). False for unknown timeframes: an
// untaggable event cannot pass the toggle gate and is never delivered.
func DeriveTag(direction, tf string) (string, bool) {
	tf = timeframe.Normalize(tf)
	suffix, ok := timeframe.TagSuffix(tf)
	if !ok {
		return "", false
	}

	bullish := direction == models.StatusBullish
	if minuteFrames[tf] {
		if bullish {
			return "C" + suffix, true
		}
		return "P" + suffix, true
	}
	if bullish {
		return "CALL" + suffix, true
	}
	return "PUT" + suffix, true
}
