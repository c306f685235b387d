package engine

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"mercator-hq/formgate/pkg/form/ast"
)

// Submission maps field ids to raw submitted values as decoded from JSON or YAML.
// Keys may be missing for unanswered fields.
type Submission map[string]interface{}

// Value is a submitted value normalized to the shape of its field type.
//
// A missing key, an explicit null, and a value of the wrong shape all normalize to
// the type's empty value (empty string, empty list, empty mapping). Comparisons never
// see anything else, which keeps every operator total.
type Value struct {
	fieldType ast.FieldType
	present   bool
	mismatch  bool

	scalar interface{}
	list   []string
	matrix map[string]string
}

// NormalizeValue shapes raw according to fieldType. present reports whether the key
// existed in the submission.
func NormalizeValue(fieldType ast.FieldType, raw interface{}, present bool) Value {
	v := Value{fieldType: fieldType, present: present && raw != nil}
	if raw == nil {
		return v
	}

	switch fieldType.Shape() {
	case ast.ShapeList:
		list, ok := toStringList(raw)
		if !ok {
			v.mismatch = true
			return v
		}
		v.list = list
	case ast.ShapeMatrix:
		matrix, ok := toMatrix(raw)
		if !ok {
			v.mismatch = true
			return v
		}
		v.matrix = matrix
	default:
		switch raw.(type) {
		case []interface{}, []string, map[string]interface{}, map[interface{}]interface{}:
			v.mismatch = true
			return v
		}
		v.scalar = raw
	}
	return v
}

// Lookup normalizes the submission value for field.
func (s Submission) Lookup(field *ast.Field) Value {
	raw, ok := s[field.ID]
	return NormalizeValue(field.Type, raw, ok)
}

// Present reports whether a non-null value was submitted.
func (v Value) Present() bool {
	return v.present
}

// Mismatch reports whether a value was submitted with the wrong shape.
func (v Value) Mismatch() bool {
	return v.mismatch
}

// IsEmpty applies the type's empty-value definition.
func (v Value) IsEmpty() bool {
	switch v.fieldType.Shape() {
	case ast.ShapeList:
		return len(v.list) == 0
	case ast.ShapeMatrix:
		return len(v.matrix) == 0
	}

	if v.scalar == nil {
		return true
	}
	if v.fieldType == ast.FieldTypeCheckbox {
		checked, ok := toBool(v.scalar)
		return !ok || !checked
	}
	if s, ok := v.scalar.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// String returns the scalar as text; empty for absent or non-scalar values.
func (v Value) String() string {
	if v.scalar == nil {
		return ""
	}
	return scalarString(v.scalar)
}

// List returns the list items; nil for non-list fields.
func (v Value) List() []string {
	return v.list
}

// Matrix returns the row to column mapping; nil for non-matrix fields.
func (v Value) Matrix() map[string]string {
	return v.matrix
}

// Float returns the scalar as a number when it is numeric.
func (v Value) Float() (float64, bool) {
	return toFloat(v.scalar)
}

func scalarString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	case map[string]interface{}:
		// File descriptors are reduced to their name.
		for _, key := range []string{"name", "file_name", "id"} {
			if s, ok := val[key]; ok {
				return scalarString(s)
			}
		}
	}
	return fmt.Sprint(v)
}

func toFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toBool(v interface{}) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1", "yes", "on":
			return true, true
		case "false", "0", "no", "off", "":
			return false, true
		}
		return false, false
	}
	if f, ok := toFloat(v); ok {
		switch f {
		case 1:
			return true, true
		case 0:
			return false, true
		}
	}
	return false, false
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func toDate(v interface{}) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func toStringList(raw interface{}) ([]string, bool) {
	switch val := raw.(type) {
	case []string:
		return val, true
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if item == nil {
				continue
			}
			out = append(out, scalarString(item))
		}
		return out, true
	}
	return nil, false
}

func toMatrix(raw interface{}) (map[string]string, bool) {
	switch val := raw.(type) {
	case map[string]string:
		out := make(map[string]string, len(val))
		for row, col := range val {
			out[row] = col
		}
		return out, true
	case map[string]interface{}:
		out := make(map[string]string, len(val))
		for row, col := range val {
			if col == nil {
				continue
			}
			out[row] = scalarString(col)
		}
		return out, true
	case map[interface{}]interface{}:
		out := make(map[string]string, len(val))
		for row, col := range val {
			if col == nil {
				continue
			}
			out[scalarString(row)] = scalarString(col)
		}
		return out, true
	}
	return nil, false
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
