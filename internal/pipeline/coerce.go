package pipeline

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const dateLayout = "2006-01-02"

// amountMultipliers expands unit suffixes on amounts. Matched longest
// suffix first; the bare "m" (milyar) entry must stay last so it cannot
// shadow "jt" style suffixes.
var amountMultipliers = []struct {
	suffix string
	factor float64
}{
	{"milyar", 1e9},
	{"miliar", 1e9},
	{"billion", 1e9},
	{"juta", 1e6},
	{"million", 1e6},
	{"jt", 1e6},
	{"ribu", 1e3},
	{"thousand", 1e3},
	{"rb", 1e3},
	{"k", 1e3},
	{"m", 1e9},
}

// weightMultipliers normalizes mass units to grams. Bare numbers are
// already grams.
var weightMultipliers = []struct {
	suffix string
	factor float64
}{
	{"kg", 1000},
	{"gram", 1},
	{"gr", 1},
	{"g", 1},
}

// Normalizer converts untrusted extracted values into typed fields. No
// coercion failure ever escapes it: every failure resolves to the field's
// documented default and is logged, never raised.
type Normalizer struct {
	log zerolog.Logger
	now func() time.Time
}

// NewNormalizer creates a Normalizer using the wall clock.
func NewNormalizer(log zerolog.Logger) *Normalizer {
	return &Normalizer{log: log, now: time.Now}
}

// Amount coerces a monetary value. Numbers are taken at face value;
// strings have currency symbols stripped and unit suffixes expanded
// (15rb -> 15000, 3jt -> 3000000). Failure resolves to 0.
func (n *Normalizer) Amount(field string, v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		if f, ok := parseScaled(val, amountMultipliers, stripCurrency); ok {
			return f
		}
	}
	n.fallback(field, v, "0")
	return 0
}

// WeightGrams coerces a mass value to grams. Bare numbers are taken as
// already-grams; kg is expanded. Failure resolves to 0.0.
func (n *Normalizer) WeightGrams(field string, v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		if f, ok := parseScaled(val, weightMultipliers, nil); ok {
			return f
		}
	}
	n.fallback(field, v, "0.0")
	return 0
}

// Quantity coerces a positive integer count. Failure or a non-positive
// value resolves to the given default.
func (n *Normalizer) Quantity(field string, v interface{}, def int) int {
	switch val := v.(type) {
	case float64:
		if q := int(val); q > 0 {
			return q
		}
	case int:
		if val > 0 {
			return val
		}
	case string:
		if q, err := strconv.Atoi(strings.TrimSpace(val)); err == nil && q > 0 {
			return q
		}
	}
	n.fallback(field, v, strconv.Itoa(def))
	return def
}

// Date coerces a strict YYYY-MM-DD date. Unparseable dates resolve to
// today; dates strictly in the future are never trusted from the model and
// are clamped to today.
func (n *Normalizer) Date(field string, v interface{}) string {
	today := n.now().Format(dateLayout)

	s, ok := v.(string)
	if !ok {
		if v != nil {
			n.fallback(field, v, today)
		}
		return today
	}

	parsed, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		n.fallback(field, v, today)
		return today
	}

	if parsed.Format(dateLayout) > today {
		n.log.Warn().Str("field", field).Str("value", s).Msg("Future date from model, using today")
		return today
	}

	return parsed.Format(dateLayout)
}

// Text coerces a free-text field; empty or whitespace-only values resolve
// to the fallback constant.
func (n *Normalizer) Text(field string, v interface{}, fallback string) string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		if v != nil {
			n.fallback(field, v, fallback)
		}
		return fallback
	}
	return strings.TrimSpace(s)
}

// Member coerces a categorical field: a case-sensitive exact match against
// the allow-list is identity, anything else resolves to the fallback.
func (n *Normalizer) Member(field string, v interface{}, allowed []string, fallback string) string {
	s, ok := v.(string)
	if !ok {
		if v != nil {
			n.fallback(field, v, fallback)
		}
		return fallback
	}

	s = strings.TrimSpace(s)
	for _, a := range allowed {
		if s == a {
			return s
		}
	}

	n.fallback(field, v, fallback)
	return fallback
}

// Brand coerces a metal brand, stripping the generic "emas " prefix before
// matching the allow-list.
func (n *Normalizer) Brand(field string, v interface{}, allowed []string) string {
	if s, ok := v.(string); ok {
		trimmed := strings.TrimSpace(s)
		lower := strings.ToLower(trimmed)
		if strings.HasPrefix(lower, brandPrefix) {
			v = strings.TrimSpace(trimmed[len(brandPrefix):])
		}
	}
	return n.Member(field, v, allowed, FallbackBrand)
}

func (n *Normalizer) fallback(field string, v interface{}, def string) {
	n.log.Warn().
		Str("field", field).
		Interface("value", v).
		Str("default", def).
		Msg("Field coercion failed, using default")
}

// parseScaled parses a numeric string with an optional unit suffix,
// applying the matching multiplier. preClean optionally strips symbols
// (currency markers) before matching.
func parseScaled(s string, multipliers []struct {
	suffix string
	factor float64
}, preClean func(string) string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if preClean != nil {
		s = preClean(s)
	}
	if s == "" {
		return 0, false
	}

	factor := 1.0
	for _, m := range multipliers {
		if strings.HasSuffix(s, m.suffix) {
			factor = m.factor
			s = strings.TrimSpace(strings.TrimSuffix(s, m.suffix))
			break
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f * factor, true
}

// stripCurrency removes currency markers and separators the model may have
// left on an amount ("Rp 15.000," style formatting is out of scope; the
// prompt asks the model to drop separators).
func stripCurrency(s string) string {
	s = strings.TrimPrefix(s, "rp")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}
