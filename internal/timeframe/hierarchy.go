// Package timeframe defines the fixed total order over timeframe labels used
// for confluence checks. The order is static configuration, not derived.
package timeframe

import "strings"

// Hierarchy lists the known timeframes from smallest to largest granularity.
var Hierarchy = []string{"1MIN", "5MIN", "15MIN", "30MIN", "1HR", "2HR", "4HR", "1DAY"}

// tagSuffixes maps each timeframe to the short suffix used in alert tags
// (C5, CALL1H, PUT1D, ...). Mirrors the toggle-default key universe.
var tagSuffixes = map[string]string{
	"1MIN":  "1",
	"5MIN":  "5",
	"15MIN": "15",
	"30MIN": "30",
	"1HR":   "1H",
	"2HR":   "2H",
	"4HR":   "4H",
	"1DAY":  "1D",
}

// Normalize uppercases and trims a timeframe label for hierarchy lookups.
func Normalize(tf string) string {
	return strings.ToUpper(strings.TrimSpace(tf))
}

// Contains reports whether tf (after normalization) is a known timeframe.
func Contains(tf string) bool {
	return indexOf(Normalize(tf)) >= 0
}

// NextHigher returns the next larger timeframe in the hierarchy. The second
// return is false when tf is unknown or is already the largest timeframe.
func NextHigher(tf string) (string, bool) {
	i := indexOf(Normalize(tf))
	if i < 0 || i >= len(Hierarchy)-1 {
		return "", false
	}
	return Hierarchy[i+1], true
}

// Rank returns the sort position of a timeframe. Unknown labels sort after
// every known one.
func Rank(tf string) int {
	if i := indexOf(Normalize(tf)); i >= 0 {
		return i
	}
	return len(Hierarchy)
}

// TagSuffix returns the alert-tag suffix for a timeframe ("5MIN" -> "5",
// "1HR" -> "1H"). False for unknown timeframes: no suffix means no tag, and
// untaggable events never reach delivery.
func TagSuffix(tf string) (string, bool) {
	s, ok := tagSuffixes[Normalize(tf)]
	return s, ok
}

func indexOf(tf string) int {
	for i, h := range Hierarchy {
		if h == tf {
			return i
		}
	}
	return -1
}
