package loader

import (
	"strconv"
	"strings"

	"github.com/dmsanchez/traysim/internal/simclock"
)

// ParseClock reads an "HH:MM" value into a continuous hour count. The bool
// reports whether the value was present and well formed.
func ParseClock(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(hh))
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(strings.TrimSpace(mm))
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return simclock.HourFloat(h, m), true
}

// ParseBool accepts the truthy spellings found in the plant's spreadsheets.
func ParseBool(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRUE", "VERDADERO", "SI", "YES", "1":
		return true
	}
	return false
}

// ParseFloat reads a possibly locale-formatted number ("1.234,56" or plain
// "1234.56"), falling back to def on anything malformed. The loader never
// fails a whole file over one bad cell.
func ParseFloat(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return def
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else if dotGrouped(s) {
		s = strings.ReplaceAll(s, ".", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

// dotGrouped reports whether the dots in s look like thousands separators
// ("1.234.500") rather than a decimal point ("3.5").
func dotGrouped(s string) bool {
	groups := strings.Split(strings.TrimPrefix(s, "-"), ".")
	if len(groups) < 2 {
		return false
	}
	for i, g := range groups {
		if g == "" {
			return false
		}
		if i > 0 && len(g) != 3 {
			return false
		}
		for _, r := range g {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

// ParseInt is ParseFloat truncated to an integer, with its own default.
func ParseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v := ParseFloat(s, float64(def))
	return int(v)
}
