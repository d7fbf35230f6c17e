package scores

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestSanitizeMetaKeepsPrimitives(t *testing.T) {
	meta := SanitizeMeta(map[string]any{
		"combo":    3,
		"accuracy": 97.5,
		"name":     "ACE",
		"perfect":  true,
		"ghost":    nil,
		"nested": map[string]any{
			"lap":  int64(2),
			"best": map[string]any{"split": 12.25},
		},
	})

	want := Meta{
		"combo":    Number(3),
		"accuracy": Number(97.5),
		"name":     String("ACE"),
		"perfect":  Bool(true),
		"ghost":    Null{},
		"nested": Map{
			"lap":  Number(2),
			"best": Map{"split": Number(12.25)},
		},
	}
	assert.True(t, Equal(want, meta), "got %#v", meta)
}

func TestSanitizeMetaDropsExoticValues(t *testing.T) {
	type point struct{ X, Y int }
	ch := make(chan int)

	meta := SanitizeMeta(map[string]any{
		"keep":   1,
		"fn":     func() {},
		"ch":     ch,
		"list":   []any{map[string]any{"a": 1}},
		"struct": point{1, 2},
		"ptr":    &point{},
		"nested": map[string]any{"fn": func() {}, "ok": "yes"},
	})

	assert.Equal(t, []string{"keep", "nested"}, meta.Keys())
	assert.True(t, Equal(Map{"ok": String("yes")}, meta["nested"]))
}

func TestSanitizeNonFiniteNumbersBecomeNull(t *testing.T) {
	meta := SanitizeMeta(map[string]any{
		"nan": math.NaN(),
		"inf": math.Inf(1),
	})
	assert.Equal(t, Null{}, meta["nan"])
	assert.Equal(t, Null{}, meta["inf"])
}

func TestSanitizeMetaNonMapIsEmpty(t *testing.T) {
	for _, in := range []any{nil, 3, "text", []int{1}, func() {}} {
		meta := SanitizeMeta(in)
		assert.NotNil(t, meta)
		assert.Empty(t, meta)
	}
}

func TestSanitizeNamedMapTypes(t *testing.T) {
	meta := SanitizeMeta(map[string]any{
		"counts": map[string]int{"a": 1, "b": 2},
	})
	assert.True(t, Equal(Map{"a": Number(1), "b": Number(2)}, meta["counts"]))
}

func TestSanitizeIsIdempotent(t *testing.T) {
	in := map[string]any{
		"a": 1.5,
		"b": map[string]any{"c": "d", "e": nil, "f": false},
	}
	once := SanitizeMeta(in)

	data, err := json.Marshal(once)
	require.NoError(t, err)
	twice := MetaFromJSON(gjson.ParseBytes(data))

	assert.True(t, Equal(once, twice), "round trip changed meta: %s", data)
	assert.True(t, Equal(once, SanitizeMeta(once)))
}

func TestMapMarshalSortedKeys(t *testing.T) {
	data, err := json.Marshal(Map{"z": Number(1), "a": Null{}, "m": Map{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":null,"m":{},"z":1}`, string(data))
	assert.Equal(t, `{"a":null,"m":{},"z":1}`, string(data))
}

func TestMetaFromJSONDropsArrays(t *testing.T) {
	meta := MetaFromJSON(gjson.Parse(`{"a":[1,2],"b":{"c":[{}]},"d":"x"}`))
	assert.Equal(t, []string{"b", "d"}, meta.Keys())
	assert.Empty(t, meta["b"])
}

func TestCloneIsDeep(t *testing.T) {
	orig := Map{"n": Map{"x": Number(1)}}
	cp := orig.Clone()
	cp["n"].(Map)["x"] = Number(2)
	assert.Equal(t, Number(1), orig["n"].(Map)["x"])
}

func TestPlain(t *testing.T) {
	got := Map{"n": Number(2), "s": String("x"), "z": Null{}, "m": Map{"b": Bool(true)}}.Plain()
	assert.Equal(t, map[string]any{
		"n": 2.0,
		"s": "x",
		"z": nil,
		"m": map[string]any{"b": true},
	}, got)
}
