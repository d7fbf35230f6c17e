package ledger

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/vovakirdan/arcade-ledger/internal/scores"
)

// blob is the persisted ledger: one JSON object keyed by game id.
type blob struct {
	raw   []byte
	valid bool
}

// parseBlob accepts only a JSON object. Anything else is reported as
// corrupt and treated as an empty ledger.
func parseBlob(raw string, ok bool) (b blob, corrupt bool) {
	if !ok || strings.TrimSpace(raw) == "" {
		return blob{}, false
	}
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		return blob{}, true
	}
	return blob{raw: []byte(raw), valid: true}, false
}

// entry returns the sanitized entry for gameID, or nil.
func (b blob) entry(gameID, now string) *scores.Entry {
	if !b.valid {
		return nil
	}
	var found *scores.Entry
	gjson.ParseBytes(b.raw).ForEach(func(key, value gjson.Result) bool {
		if key.String() != gameID {
			return true
		}
		// Later duplicates win, as with JSON.parse.
		found = scores.EntryFromJSON(value, now)
		return true
	})
	return found
}

// records returns every member keyed by game id, with nil for members
// that do not hold a valid entry. Later duplicates win.
func (b blob) records(now string) map[string]*scores.Entry {
	out := make(map[string]*scores.Entry)
	if !b.valid {
		return out
	}
	gjson.ParseBytes(b.raw).ForEach(func(key, value gjson.Result) bool {
		out[key.String()] = scores.EntryFromJSON(value, now)
		return true
	})
	return out
}

// entries returns every valid entry.
func (b blob) entries(now string) map[string]scores.Entry {
	out := make(map[string]scores.Entry)
	for id, e := range b.records(now) {
		if e != nil {
			out[id] = *e
		}
	}
	return out
}

// members counts the members named gameID.
func (b blob) members(gameID string) int {
	if !b.valid {
		return 0
	}
	n := 0
	gjson.ParseBytes(b.raw).ForEach(func(key, _ gjson.Result) bool {
		if key.String() == gameID {
			n++
		}
		return true
	})
	return n
}

// with returns the blob text with gameID set to e. Only that member is
// rewritten; the bytes of every other member are kept as they were.
// Duplicate members for gameID collapse into one.
func (b blob) with(gameID string, e scores.Entry) (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	base := []byte("{}")
	if b.valid {
		base = b.raw
	}
	path := escapePath(gameID)
	// sjson addresses the first occurrence; drop all but the last.
	for n := b.members(gameID); n > 1; n-- {
		if base, err = sjson.DeleteBytes(base, path); err != nil {
			return "", err
		}
	}
	out, err := sjson.SetRawBytes(base, path, data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// escapePath escapes the characters that gjson/sjson treat as path syntax.
func escapePath(key string) string {
	var sb strings.Builder
	sb.Grow(len(key))
	for _, r := range key {
		switch r {
		case '\\', '.', '*', '?', '|', '#', '@', '!', ':', '=', '<', '>', '%', '"', ',', '[', ']', '{', '}', '(', ')':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
