package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/vovakirdan/arcade-ledger/internal/scores"
)

const testNow = "2026-10-19T12:00:00.000Z"

func TestParseBlob(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		ok      bool
		valid   bool
		corrupt bool
	}{
		{name: "absent", raw: "", ok: false},
		{name: "blank", raw: "  ", ok: true},
		{name: "object", raw: `{"pong":{"value":1}}`, ok: true, valid: true},
		{name: "empty object", raw: `{}`, ok: true, valid: true},
		{name: "array", raw: `[]`, ok: true, corrupt: true},
		{name: "truncated", raw: `{"pong":`, ok: true, corrupt: true},
		{name: "scalar", raw: `12`, ok: true, corrupt: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, corrupt := parseBlob(tt.raw, tt.ok)
			assert.Equal(t, tt.valid, b.valid)
			assert.Equal(t, tt.corrupt, corrupt)
		})
	}
}

func TestBlobEntryLaterDuplicateWins(t *testing.T) {
	b, _ := parseBlob(`{"pong":{"value":1},"pong":{"value":2}}`, true)
	e := b.entry("pong", testNow)
	require.NotNil(t, e)
	assert.Equal(t, 2.0, e.Value)
	assert.Equal(t, testNow, e.UpdatedAt)

	// An invalid later duplicate hides the earlier one.
	b, _ = parseBlob(`{"pong":{"value":1},"pong":{"value":"x"}}`, true)
	assert.Nil(t, b.entry("pong", testNow))
	assert.NotContains(t, b.entries(testNow), "pong")
}

func TestBlobWithRewritesOneMember(t *testing.T) {
	b, _ := parseBlob(`{"snake":{"value":3,"extra":[1,2]},"pong":{"value":1}}`, true)

	out, err := b.with("pong", scores.Entry{Value: 9, Meta: scores.Meta{"combo": scores.Number(2)}, UpdatedAt: testNow})
	require.NoError(t, err)

	assert.Equal(t, `{"value":3,"extra":[1,2]}`, gjson.Get(out, "snake").Raw)
	assert.Equal(t, 9.0, gjson.Get(out, "pong.value").Num)
	assert.Equal(t, 2.0, gjson.Get(out, "pong.meta.combo").Num)
	assert.Equal(t, testNow, gjson.Get(out, "pong.updatedAt").Str)
}

func TestBlobWithCollapsesDuplicates(t *testing.T) {
	b, _ := parseBlob(`{"pong":{"value":10},"snake":{"value":3},"pong":{"value":5}}`, true)
	require.Equal(t, 2, b.members("pong"))

	out, err := b.with("pong", scores.Entry{Value: 7, UpdatedAt: testNow})
	require.NoError(t, err)

	next, corrupt := parseBlob(out, true)
	require.False(t, corrupt)
	assert.Equal(t, 1, next.members("pong"))
	assert.Equal(t, 7.0, next.entry("pong", testNow).Value)
	assert.Equal(t, 3.0, next.entry("snake", testNow).Value)
}

func TestBlobWithStartsFromEmptyObject(t *testing.T) {
	var b blob
	out, err := b.with("pong", scores.Entry{Value: 1, UpdatedAt: testNow})
	require.NoError(t, err)
	assert.JSONEq(t, `{"pong":{"value":1,"meta":{},"updatedAt":"`+testNow+`"}}`, out)
}

func TestEscapePath(t *testing.T) {
	for _, id := range []string{"plain", "v1.2", "a*b?", "x|y", "#tag", "@mod", "k:v", "back\\slash", "a,b"} {
		t.Run(id, func(t *testing.T) {
			var b blob
			out, err := b.with(id, scores.Entry{Value: 7, UpdatedAt: testNow})
			require.NoError(t, err)

			parsed, corrupt := parseBlob(out, true)
			require.False(t, corrupt)
			e := parsed.entry(id, testNow)
			require.NotNil(t, e, "stored as %s", out)
			assert.Equal(t, 7.0, e.Value)
		})
	}
	assert.Equal(t, `v1\.2`, escapePath("v1.2"))
}
