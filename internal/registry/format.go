package registry

import (
	"math"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vovakirdan/arcade-ledger/internal/scores"
)

// FormatData is the value format templates are executed with.
type FormatData struct {
	Value float64
	Meta  scores.Meta
}

// Get returns the plain metadata value for key, or nil.
func (d FormatData) Get(key string) any {
	v, ok := d.Meta[key]
	if !ok {
		return nil
	}
	return scores.Map{key: v}.Plain()[key]
}

// IsNum reports whether key holds a number.
func (d FormatData) IsNum(key string) bool {
	_, ok := d.Meta[key].(scores.Number)
	return ok
}

// Num converts the value under key to a number. Missing keys and values
// that do not convert give NaN; null gives zero.
func (d FormatData) Num(key string) float64 {
	v, ok := d.Meta[key]
	if !ok {
		return math.NaN()
	}
	return toNumber(v)
}

// NumOr is Num with def standing in for a missing or null value.
func (d FormatData) NumOr(key string, def float64) float64 {
	v, ok := d.Meta[key]
	if !ok {
		return def
	}
	if _, isNull := v.(scores.Null); isNull {
		return def
	}
	return toNumber(v)
}

func toNumber(v scores.Value) float64 {
	switch x := v.(type) {
	case scores.Number:
		return float64(x)
	case scores.Bool:
		if x {
			return 1
		}
		return 0
	case scores.Null:
		return 0
	case scores.String:
		s := strings.TrimSpace(string(x))
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

var printer = message.NewPrinter(language.English)

var funcs = template.FuncMap{
	"num": scores.FormatValue,
	"group": func(v float64) string {
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return printer.Sprintf("%d", int64(v))
		}
		return scores.FormatValue(v)
	},
	"plural": func(n float64, one, many string) string {
		if n == 1 {
			return one
		}
		return many
	},
	"round": round,
	"fixed": func(digits int, v float64) string {
		return strconv.FormatFloat(v, 'f', digits, 64)
	},
	"clock": clock,
	"finite": func(v float64) bool {
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	},
	"sub": func(a, b float64) float64 { return a - b },
	"fallback": func(v, def float64) float64 {
		if math.IsNaN(v) || v == 0 {
			return def
		}
		return v
	},
}

// round rounds half up, matching the usual score display rounding.
func round(v float64) float64 {
	return math.Floor(v + 0.5)
}

// clock renders milliseconds as mm:ss.mmm.
func clock(ms float64) string {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		ms = 0
	}
	total := int64(math.Max(0, round(ms)))
	minutes := total / 60000
	seconds := (total % 60000) / 1000
	millis := total % 1000

	var sb strings.Builder
	sb.WriteString(pad(minutes, 2))
	sb.WriteByte(':')
	sb.WriteString(pad(seconds, 2))
	sb.WriteByte('.')
	sb.WriteString(pad(millis, 3))
	return sb.String()
}

func pad(n int64, width int) string {
	s := strconv.FormatInt(n, 10)
	if len(s) < width {
		s = strings.Repeat("0", width-len(s)) + s
	}
	return s
}

func newTemplate(name string) *template.Template {
	return template.New(name).Option("missingkey=zero").Funcs(funcs)
}

func execute(t *template.Template, e scores.Entry) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, FormatData{Value: e.Value, Meta: e.Meta}); err != nil {
		return "", err
	}
	return sb.String(), nil
}
