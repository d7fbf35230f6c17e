package scores

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// TimestampLayout is the ISO-8601 form used for UpdatedAt (UTC, milliseconds).
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Entry is the best score recorded for one game.
type Entry struct {
	Value     float64 `json:"value"`
	Meta      Meta    `json:"meta"`
	UpdatedAt string  `json:"updatedAt"`
}

// FormatTimestamp renders t in the UpdatedAt layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Clone returns a copy that shares no metadata with e.
func (e Entry) Clone() Entry {
	e.Meta = e.Meta.Clone()
	return e
}

// Time parses UpdatedAt. Entries written by other tools may carry any
// RFC 3339 timestamp, so both layouts are accepted.
func (e Entry) Time() (time.Time, bool) {
	if t, err := time.Parse(TimestampLayout, e.UpdatedAt); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, e.UpdatedAt); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// EntryFromJSON sanitizes one persisted record. It returns nil when res is
// not an object or its value does not coerce to a finite number. A missing
// or non-string updatedAt is replaced by now.
func EntryFromJSON(res gjson.Result, now string) *Entry {
	if !res.IsObject() {
		return nil
	}
	value, ok := coerceNumber(res.Get("value"))
	if !ok {
		return nil
	}
	entry := &Entry{
		Value:     value,
		Meta:      MetaFromJSON(res.Get("meta")),
		UpdatedAt: now,
	}
	if ts := res.Get("updatedAt"); ts.Type == gjson.String {
		entry.UpdatedAt = ts.Str
	}
	return entry
}

// coerceNumber follows loose numeric conversion: numbers pass, numeric
// strings parse (blank is zero), booleans are 1 or 0, null is zero.
func coerceNumber(res gjson.Result) (float64, bool) {
	var f float64
	switch res.Type {
	case gjson.Number:
		f = res.Num
	case gjson.True:
		f = 1
	case gjson.False, gjson.Null:
		if !res.Exists() {
			return 0, false
		}
		f = 0
	case gjson.String:
		s := strings.TrimSpace(res.Str)
		if s == "" {
			f = 0
			break
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FormatValue is the default rendering of a score value.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
