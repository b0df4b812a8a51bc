package venue

import (
	"encoding/json"
	"strings"
	"time"
)

// Providers deliver weekly hours in three per-day shapes:
//
//	[["11:00", "02:00"]]   open/close pair
//	["11:00-02:00"]        single open-close string
//	anything else          malformed, skipped
//
// Block keeps malformedness explicit instead of guessing: a block that does
// not match a known shape unmarshals with Valid=false and is ignored by
// every consumer.

// Hours maps a lowercase weekday name to its open/close blocks.
type Hours map[string][]Block

// Block is one open/close interval of a day.
type Block struct {
	Open  string
	Close string
	Valid bool
}

// UnmarshalJSON accepts the pair and string shapes; everything else is kept
// as an invalid block rather than failing the surrounding document.
func (b *Block) UnmarshalJSON(data []byte) error {
	*b = Block{}

	var pair []string
	if err := json.Unmarshal(data, &pair); err == nil && len(pair) == 2 {
		b.Open, b.Close, b.Valid = pair[0], pair[1], true
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil && strings.Contains(s, "-") {
		open, close, _ := strings.Cut(s, "-")
		b.Open, b.Close, b.Valid = open, close, true
		return nil
	}

	return nil
}

// MarshalJSON writes valid blocks back in the pair shape.
func (b Block) MarshalJSON() ([]byte, error) {
	if !b.Valid {
		return []byte("null"), nil
	}
	return json.Marshal([2]string{b.Open, b.Close})
}

// lateCloseFrom and lateCloseTo bound the late-night band: a closing time at
// or after 23:00, or before 06:00 (spilling past midnight).
const (
	lateCloseFrom = 23 * 60
	lateCloseTo   = 6 * 60
)

// HasLateClose reports whether any day closes in the late-night band.
// Malformed blocks and unparseable close times are skipped silently.
func (h Hours) HasLateClose() bool {
	for _, blocks := range h {
		for _, b := range blocks {
			if !b.Valid {
				continue
			}
			m, ok := parseMinutes(b.Close)
			if !ok {
				continue
			}
			if m >= lateCloseFrom || m < lateCloseTo {
				return true
			}
		}
	}
	return false
}

// parseMinutes parses "HH:MM" (with optional seconds) into minutes since
// midnight.
func parseMinutes(s string) (int, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute(), true
		}
	}
	return 0, false
}
