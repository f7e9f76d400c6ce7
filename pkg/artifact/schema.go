// Package artifact extracts typed fields from the text files a simulator run
// leaves behind: the line-oriented stats.txt and the free-form run.log.
//
// Extraction is driven by a declarative schema. Each Field names a pattern
// with a single capture group and an aggregation Rule; Extract applies the
// whole schema in one pass per field. A field that is absent or whose
// captures do not parse is missing from the result. Extraction never fails.
package artifact

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Rule selects how repeated captures of a field are combined.
type Rule uint8

const (
	// FirstMatch keeps the raw text of the first capture.
	FirstMatch Rule = iota + 1
	// SumInt adds every capture parsed as a base-10 integer.
	SumInt
	// SumFloat adds every capture parsed as a float, rounded to one decimal.
	SumFloat
	// AnyTrue is true if any capture declares YES.
	AnyTrue
)

// Field is one entry of an extraction schema.
type Field struct {
	Name    string
	Pattern *regexp.Regexp // exactly one capture group
	Rule    Rule
}

// Value is an extracted field. Which member is meaningful depends on Rule.
type Value struct {
	Rule  Rule
	Text  string
	Int   int64
	Float float64
	Bool  bool
}

// Values maps field names to extracted values. Absent keys mean the field was
// not found or did not parse.
type Values map[string]Value

// Extract applies schema to content.
func Extract(schema []Field, content string) Values {
	out := make(Values, len(schema))
	for _, f := range schema {
		if v, ok := extractField(f, content); ok {
			out[f.Name] = v
		}
	}
	return out
}

func extractField(f Field, content string) (Value, bool) {
	if f.Rule == FirstMatch {
		m := f.Pattern.FindStringSubmatch(content)
		if m == nil {
			return Value{}, false
		}
		return Value{Rule: FirstMatch, Text: m[1]}, true
	}

	matches := f.Pattern.FindAllStringSubmatch(content, -1)
	v := Value{Rule: f.Rule}
	seen := false
	for _, m := range matches {
		switch f.Rule {
		case SumInt:
			n, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				continue
			}
			v.Int += n
		case SumFloat:
			x, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			v.Float += x
		case AnyTrue:
			if strings.EqualFold(strings.TrimSpace(m[1]), "yes") {
				v.Bool = true
			}
		default:
			continue
		}
		seen = true
	}
	if !seen {
		return Value{}, false
	}
	if f.Rule == SumFloat {
		v.Float = math.Round(v.Float*10) / 10
	}
	return v, true
}

// Int returns the named field as an integer.
func (vs Values) Int(name string) (int64, bool) {
	v, ok := vs[name]
	if !ok {
		return 0, false
	}
	switch v.Rule {
	case SumInt:
		return v.Int, true
	case FirstMatch:
		n, err := strconv.ParseInt(v.Text, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// Float returns the named field as a float. FirstMatch text accepts decimal
// and scientific notation.
func (vs Values) Float(name string) (float64, bool) {
	v, ok := vs[name]
	if !ok {
		return 0, false
	}
	switch v.Rule {
	case SumFloat:
		return v.Float, true
	case SumInt:
		return float64(v.Int), true
	case FirstMatch:
		x, err := strconv.ParseFloat(v.Text, 64)
		if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	}
	return 0, false
}

// Bool returns the named AnyTrue field. ok is false if the field was never
// declared.
func (vs Values) Bool(name string) (value, ok bool) {
	v, found := vs[name]
	if !found || v.Rule != AnyTrue {
		return false, false
	}
	return v.Bool, true
}

// Text returns the raw text of a FirstMatch field.
func (vs Values) Text(name string) (string, bool) {
	v, ok := vs[name]
	if !ok || v.Rule != FirstMatch {
		return "", false
	}
	return v.Text, true
}

// Merge copies every entry of other into vs, overwriting duplicates.
func (vs Values) Merge(other Values) {
	for k, v := range other {
		vs[k] = v
	}
}
