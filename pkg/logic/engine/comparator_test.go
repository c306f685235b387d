package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mercator-hq/formgate/pkg/form/ast"
)

// absent marks a submission without the referenced key.
type absentValue struct{}

var absent = absentValue{}

func TestComparator_Compare(t *testing.T) {
	tests := []struct {
		name          string
		fieldType     ast.FieldType
		operator      ast.Operator
		actual        interface{}
		expected      interface{}
		wantMatch     bool
		wantSupported bool
	}{
		// text family
		{"text equals", ast.FieldTypeText, ast.OperatorEquals, "Berlin", "Berlin", true, true},
		{"text equals is case sensitive", ast.FieldTypeText, ast.OperatorEquals, "berlin", "Berlin", false, true},
		{"text not equals on absent", ast.FieldTypeText, ast.OperatorDoesNotEqual, absent, "x", true, true},
		{"text contains", ast.FieldTypeText, ast.OperatorContains, "hello world", "lo w", true, true},
		{"text contains empty needle", ast.FieldTypeText, ast.OperatorContains, "hello", "", false, true},
		{"text does not contain", ast.FieldTypeText, ast.OperatorDoesNotContain, "hello", "xyz", true, true},
		{"text starts with", ast.FieldTypeEmail, ast.OperatorStartsWith, "ops@example.com", "ops@", true, true},
		{"text ends with", ast.FieldTypeURL, ast.OperatorEndsWith, "https://example.com", ".com", true, true},
		{"text is empty on absent", ast.FieldTypeText, ast.OperatorIsEmpty, absent, nil, true, true},
		{"text is empty on whitespace", ast.FieldTypeText, ast.OperatorIsEmpty, "   ", nil, true, true},
		{"text is not empty", ast.FieldTypePhoneNumber, ast.OperatorIsNotEmpty, "+4930123456", nil, true, true},
		{"text length greater than", ast.FieldTypeText, ast.OperatorContentLengthGreaterThan, "abc", 2, true, true},
		{"text length counts runes", ast.FieldTypeText, ast.OperatorContentLengthEquals, "größe", 5, true, true},
		{"text length with bad operand", ast.FieldTypeText, ast.OperatorContentLengthEquals, "abc", "three", false, true},
		{"text on list value", ast.FieldTypeText, ast.OperatorIsEmpty, []interface{}{"a"}, nil, true, true},
		{"text ordering unsupported", ast.FieldTypeText, ast.OperatorGreaterThan, "b", "a", false, false},

		// number family
		{"number equals numeric string", ast.FieldTypeNumber, ast.OperatorEquals, "42", 42, true, true},
		{"number equals float", ast.FieldTypeNumber, ast.OperatorEquals, 42.0, "42", true, true},
		{"number greater than", ast.FieldTypeNumber, ast.OperatorGreaterThan, 10, "5", true, true},
		{"number greater than or equal", ast.FieldTypeRating, ast.OperatorGreaterThanOrEqual, 4, 4, true, true},
		{"number less than absent", ast.FieldTypeNumber, ast.OperatorLessThan, absent, 5, false, true},
		{"number non numeric actual", ast.FieldTypeNumber, ast.OperatorGreaterThan, "abc", 5, false, true},
		{"number non numeric expected", ast.FieldTypeScale, ast.OperatorLessThan, 3, "many", false, true},
		{"number not equals", ast.FieldTypeNumber, ast.OperatorDoesNotEqual, 3, 4, true, true},
		{"number contains unsupported", ast.FieldTypeNumber, ast.OperatorContains, 3, 3, false, false},

		// date family
		{"date before", ast.FieldTypeDate, ast.OperatorBefore, "2024-01-01", "2024-06-01", true, true},
		{"date after", ast.FieldTypeDate, ast.OperatorAfter, "2024-01-01", "2024-06-01", false, true},
		{"date on or after same day", ast.FieldTypeDate, ast.OperatorOnOrAfter, "2024-06-01", "2024-06-01", true, true},
		{"date equals across layouts", ast.FieldTypeDate, ast.OperatorEquals, "2024-06-01T00:00:00Z", "2024-06-01", true, true},
		{"date less than alias", ast.FieldTypeDate, ast.OperatorLessThan, "2023-12-31", "2024-01-01", true, true},
		{"date invalid actual", ast.FieldTypeDate, ast.OperatorAfter, "yesterday", "2024-01-01", false, true},
		{"date absent", ast.FieldTypeDate, ast.OperatorOnOrBefore, absent, "2024-01-01", false, true},

		// choice family
		{"select equals", ast.FieldTypeSelect, ast.OperatorEquals, "Ja", "Ja", true, true},
		{"select not equals", ast.FieldTypeSelect, ast.OperatorDoesNotEqual, "Nein", "Ja", true, true},
		{"select is empty", ast.FieldTypeSelect, ast.OperatorIsEmpty, absent, nil, true, true},
		{"select contains unsupported", ast.FieldTypeSelect, ast.OperatorContains, "Ja", "J", false, false},

		// checkbox family
		{"checkbox checked", ast.FieldTypeCheckbox, ast.OperatorEquals, true, true, true, true},
		{"checkbox string true", ast.FieldTypeCheckbox, ast.OperatorEquals, "true", "1", true, true},
		{"checkbox absent equals false", ast.FieldTypeCheckbox, ast.OperatorEquals, absent, false, true, true},
		{"checkbox unchecked not equals true", ast.FieldTypeCheckbox, ast.OperatorDoesNotEqual, false, true, true, true},
		{"checkbox garbage expected", ast.FieldTypeCheckbox, ast.OperatorEquals, true, "perhaps", false, true},
		{"checkbox contains unsupported", ast.FieldTypeCheckbox, ast.OperatorContains, true, true, false, false},

		// list family
		{"multi select contains all", ast.FieldTypeMultiSelect, ast.OperatorContains, []interface{}{"a", "b", "c"}, []interface{}{"a", "c"}, true, true},
		{"multi select contains scalar", ast.FieldTypeMultiSelect, ast.OperatorContains, []interface{}{"a", "b"}, "b", true, true},
		{"multi select contains missing", ast.FieldTypeMultiSelect, ast.OperatorContains, []interface{}{"a", "b"}, []interface{}{"a", "z"}, false, true},
		{"multi select does not contain", ast.FieldTypeMultiSelect, ast.OperatorDoesNotContain, []interface{}{"a"}, "z", true, true},
		{"multi select equals ignores order", ast.FieldTypeMultiSelect, ast.OperatorEquals, []interface{}{"b", "a"}, []string{"a", "b"}, true, true},
		{"multi select equals subset", ast.FieldTypeMultiSelect, ast.OperatorEquals, []interface{}{"a"}, []string{"a", "b"}, false, true},
		{"multi select absent contains", ast.FieldTypeMultiSelect, ast.OperatorContains, absent, "a", false, true},
		{"multi select scalar value", ast.FieldTypeMultiSelect, ast.OperatorIsEmpty, "a", nil, true, true},

		// files family
		{"files count equals", ast.FieldTypeFiles, ast.OperatorContentLengthEquals, []interface{}{"a.pdf", "b.pdf"}, 2, true, true},
		{"files count less than", ast.FieldTypeFiles, ast.OperatorContentLengthLessThan, []interface{}{"a.pdf"}, 3, true, true},
		{"files is not empty", ast.FieldTypeFiles, ast.OperatorIsNotEmpty, []interface{}{map[string]interface{}{"name": "a.pdf"}}, nil, true, true},
		{"files equals unsupported", ast.FieldTypeFiles, ast.OperatorEquals, []interface{}{"a.pdf"}, "a.pdf", false, false},

		// matrix family
		{
			name:          "matrix equals answered row",
			fieldType:     ast.FieldTypeMatrix,
			operator:      ast.OperatorEquals,
			actual:        map[string]interface{}{"A": "x", "B": "y"},
			expected:      map[string]interface{}{"A": "x"},
			wantMatch:     true,
			wantSupported: true,
		},
		{
			name:          "matrix equals absent row",
			fieldType:     ast.FieldTypeMatrix,
			operator:      ast.OperatorEquals,
			actual:        map[string]interface{}{"A": "x", "B": "y"},
			expected:      map[string]interface{}{"C": "z"},
			wantMatch:     false,
			wantSupported: true,
		},
		{
			name:          "matrix equals every expected row",
			fieldType:     ast.FieldTypeMatrix,
			operator:      ast.OperatorEquals,
			actual:        map[string]interface{}{"A": "x", "B": "y"},
			expected:      map[string]interface{}{"A": "x", "B": "q"},
			wantMatch:     false,
			wantSupported: true,
		},
		{
			name:          "matrix equals on absent submission",
			fieldType:     ast.FieldTypeMatrix,
			operator:      ast.OperatorEquals,
			actual:        absent,
			expected:      map[string]interface{}{"A": "x"},
			wantMatch:     false,
			wantSupported: true,
		},
		{
			name:          "matrix contains any row",
			fieldType:     ast.FieldTypeMatrix,
			operator:      ast.OperatorContains,
			actual:        map[string]interface{}{"A": "x", "B": "y"},
			expected:      map[string]interface{}{"A": "q", "B": "y"},
			wantMatch:     true,
			wantSupported: true,
		},
		{
			name:          "matrix does not contain",
			fieldType:     ast.FieldTypeMatrix,
			operator:      ast.OperatorDoesNotContain,
			actual:        map[string]interface{}{"A": "x"},
			expected:      map[string]interface{}{"A": "y"},
			wantMatch:     true,
			wantSupported: true,
		},
		{
			name:          "matrix scalar expected",
			fieldType:     ast.FieldTypeMatrix,
			operator:      ast.OperatorEquals,
			actual:        map[string]interface{}{"A": "x"},
			expected:      "x",
			wantMatch:     false,
			wantSupported: true,
		},
		{
			name:          "matrix wrong shape reads empty",
			fieldType:     ast.FieldTypeMatrix,
			operator:      ast.OperatorIsEmpty,
			actual:        []interface{}{"x"},
			wantMatch:     true,
			wantSupported: true,
		},
		{
			name:          "matrix starts with unsupported",
			fieldType:     ast.FieldTypeMatrix,
			operator:      ast.OperatorStartsWith,
			actual:        map[string]interface{}{"A": "x"},
			expected:      "x",
			wantMatch:     false,
			wantSupported: false,
		},

		{"unknown field type", ast.FieldType("signature"), ast.OperatorEquals, "x", "x", false, false},
	}

	c := NewComparator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value := NormalizeValue(tt.fieldType, tt.actual, true)
			if tt.actual == absent {
				value = NormalizeValue(tt.fieldType, nil, false)
			}

			matched, supported := c.Compare(tt.fieldType, tt.operator, value, tt.expected)
			assert.Equal(t, tt.wantSupported, supported, "supported")
			assert.Equal(t, tt.wantMatch, matched, "matched")
		})
	}
}

func TestComparator_EveryFamilyHasEmptinessChecks(t *testing.T) {
	for _, ft := range ast.FieldTypes() {
		if ft == ast.FieldTypeCheckbox {
			continue
		}
		t.Run(string(ft), func(t *testing.T) {
			assert.True(t, Supports(ft, ast.OperatorIsEmpty))
			assert.True(t, Supports(ft, ast.OperatorIsNotEmpty))
		})
	}
}

func TestOperatorsFor(t *testing.T) {
	assert.Equal(t, []ast.Operator{ast.OperatorEquals, ast.OperatorDoesNotEqual}, OperatorsFor(ast.FieldTypeCheckbox))
	assert.Contains(t, OperatorsFor(ast.FieldTypeMatrix), ast.OperatorContains)
	assert.NotContains(t, OperatorsFor(ast.FieldTypeMatrix), ast.OperatorGreaterThan)
	assert.Empty(t, OperatorsFor(ast.FieldType("signature")))
}

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		name         string
		fieldType    ast.FieldType
		raw          interface{}
		present      bool
		wantEmpty    bool
		wantMismatch bool
	}{
		{"missing key", ast.FieldTypeText, nil, false, true, false},
		{"explicit null", ast.FieldTypeText, nil, true, true, false},
		{"scalar", ast.FieldTypeText, "hi", true, false, false},
		{"scalar given list", ast.FieldTypeText, []interface{}{"hi"}, true, true, true},
		{"scalar given mapping", ast.FieldTypeNumber, map[string]interface{}{"a": 1}, true, true, true},
		{"list given scalar", ast.FieldTypeMultiSelect, "a", true, true, true},
		{"list with nulls", ast.FieldTypeMultiSelect, []interface{}{nil}, true, true, false},
		{"matrix given list", ast.FieldTypeMatrix, []interface{}{"a"}, true, true, true},
		{"matrix with null rows", ast.FieldTypeMatrix, map[string]interface{}{"A": nil}, true, true, false},
		{"matrix yaml keys", ast.FieldTypeMatrix, map[interface{}]interface{}{"A": "x"}, true, false, false},
		{"checkbox false", ast.FieldTypeCheckbox, false, true, true, false},
		{"checkbox true", ast.FieldTypeCheckbox, true, true, false, false},
		{"number zero", ast.FieldTypeNumber, 0, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NormalizeValue(tt.fieldType, tt.raw, tt.present)
			assert.Equal(t, tt.wantEmpty, v.IsEmpty(), "empty")
			assert.Equal(t, tt.wantMismatch, v.Mismatch(), "mismatch")
		})
	}
}
