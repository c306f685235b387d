package engine

import (
	"strings"
	"unicode/utf8"

	"mercator-hq/formgate/pkg/form/ast"
)

// Family groups field types that compare the same way.
type Family string

const (
	FamilyText     Family = "text"
	FamilyNumber   Family = "number"
	FamilyDate     Family = "date"
	FamilyChoice   Family = "choice"
	FamilyCheckbox Family = "checkbox"
	FamilyList     Family = "list"
	FamilyFiles    Family = "files"
	FamilyMatrix   Family = "matrix"
)

var fieldFamilies = map[ast.FieldType]Family{
	ast.FieldTypeText:        FamilyText,
	ast.FieldTypeEmail:       FamilyText,
	ast.FieldTypeURL:         FamilyText,
	ast.FieldTypePhoneNumber: FamilyText,
	ast.FieldTypeNumber:      FamilyNumber,
	ast.FieldTypeRating:      FamilyNumber,
	ast.FieldTypeScale:       FamilyNumber,
	ast.FieldTypeDate:        FamilyDate,
	ast.FieldTypeSelect:      FamilyChoice,
	ast.FieldTypeCheckbox:    FamilyCheckbox,
	ast.FieldTypeMultiSelect: FamilyList,
	ast.FieldTypeFiles:       FamilyFiles,
	ast.FieldTypeMatrix:      FamilyMatrix,
}

// FamilyOf returns the comparison family of a field type.
func FamilyOf(ft ast.FieldType) (Family, bool) {
	f, ok := fieldFamilies[ft]
	return f, ok
}

// CompareFunc compares a normalized submitted value against a comparison value taken
// verbatim from the condition. It must not panic for any input.
type CompareFunc func(actual Value, expected interface{}) bool

type tableKey struct {
	family   Family
	operator ast.Operator
}

// Comparator is the lookup table from (family, operator) to comparison function.
type Comparator struct {
	table map[tableKey]CompareFunc
}

// NewComparator returns the standard comparison table.
func NewComparator() *Comparator {
	c := &Comparator{table: make(map[tableKey]CompareFunc)}

	c.register(FamilyText, map[ast.Operator]CompareFunc{
		ast.OperatorEquals:                   textEquals,
		ast.OperatorDoesNotEqual:             negate(textEquals),
		ast.OperatorContains:                 textContains,
		ast.OperatorDoesNotContain:           negate(textContains),
		ast.OperatorStartsWith:               textStartsWith,
		ast.OperatorEndsWith:                 textEndsWith,
		ast.OperatorIsEmpty:                  isEmpty,
		ast.OperatorIsNotEmpty:               negate(isEmpty),
		ast.OperatorContentLengthEquals:      textLength(func(a, b float64) bool { return a == b }),
		ast.OperatorContentLengthGreaterThan: textLength(func(a, b float64) bool { return a > b }),
		ast.OperatorContentLengthLessThan:    textLength(func(a, b float64) bool { return a < b }),
	})

	c.register(FamilyNumber, map[ast.Operator]CompareFunc{
		ast.OperatorEquals:             numberCompare(func(a, b float64) bool { return a == b }),
		ast.OperatorDoesNotEqual:       negate(numberCompare(func(a, b float64) bool { return a == b })),
		ast.OperatorGreaterThan:        numberCompare(func(a, b float64) bool { return a > b }),
		ast.OperatorGreaterThanOrEqual: numberCompare(func(a, b float64) bool { return a >= b }),
		ast.OperatorLessThan:           numberCompare(func(a, b float64) bool { return a < b }),
		ast.OperatorLessThanOrEqual:    numberCompare(func(a, b float64) bool { return a <= b }),
		ast.OperatorIsEmpty:            isEmpty,
		ast.OperatorIsNotEmpty:         negate(isEmpty),
	})

	before := dateCompare(func(sign int) bool { return sign < 0 })
	after := dateCompare(func(sign int) bool { return sign > 0 })
	onOrBefore := dateCompare(func(sign int) bool { return sign <= 0 })
	onOrAfter := dateCompare(func(sign int) bool { return sign >= 0 })
	sameDate := dateCompare(func(sign int) bool { return sign == 0 })
	c.register(FamilyDate, map[ast.Operator]CompareFunc{
		ast.OperatorEquals:             sameDate,
		ast.OperatorDoesNotEqual:       negate(sameDate),
		ast.OperatorBefore:             before,
		ast.OperatorAfter:              after,
		ast.OperatorOnOrBefore:         onOrBefore,
		ast.OperatorOnOrAfter:          onOrAfter,
		ast.OperatorLessThan:           before,
		ast.OperatorGreaterThan:        after,
		ast.OperatorLessThanOrEqual:    onOrBefore,
		ast.OperatorGreaterThanOrEqual: onOrAfter,
		ast.OperatorIsEmpty:            isEmpty,
		ast.OperatorIsNotEmpty:         negate(isEmpty),
	})

	c.register(FamilyChoice, map[ast.Operator]CompareFunc{
		ast.OperatorEquals:       textEquals,
		ast.OperatorDoesNotEqual: negate(textEquals),
		ast.OperatorIsEmpty:      isEmpty,
		ast.OperatorIsNotEmpty:   negate(isEmpty),
	})

	c.register(FamilyCheckbox, map[ast.Operator]CompareFunc{
		ast.OperatorEquals:       checkboxEquals,
		ast.OperatorDoesNotEqual: negate(checkboxEquals),
	})

	c.register(FamilyList, map[ast.Operator]CompareFunc{
		ast.OperatorEquals:         listEquals,
		ast.OperatorDoesNotEqual:   negate(listEquals),
		ast.OperatorContains:       listContains,
		ast.OperatorDoesNotContain: negate(listContains),
		ast.OperatorIsEmpty:        isEmpty,
		ast.OperatorIsNotEmpty:     negate(isEmpty),
	})

	c.register(FamilyFiles, map[ast.Operator]CompareFunc{
		ast.OperatorIsEmpty:                  isEmpty,
		ast.OperatorIsNotEmpty:               negate(isEmpty),
		ast.OperatorContentLengthEquals:      listLength(func(a, b float64) bool { return a == b }),
		ast.OperatorContentLengthGreaterThan: listLength(func(a, b float64) bool { return a > b }),
		ast.OperatorContentLengthLessThan:    listLength(func(a, b float64) bool { return a < b }),
	})

	c.register(FamilyMatrix, map[ast.Operator]CompareFunc{
		ast.OperatorEquals:         matrixEquals,
		ast.OperatorDoesNotEqual:   negate(matrixEquals),
		ast.OperatorContains:       matrixContains,
		ast.OperatorDoesNotContain: negate(matrixContains),
		ast.OperatorIsEmpty:        isEmpty,
		ast.OperatorIsNotEmpty:     negate(isEmpty),
	})

	return c
}

func (c *Comparator) register(family Family, funcs map[ast.Operator]CompareFunc) {
	for op, fn := range funcs {
		c.table[tableKey{family: family, operator: op}] = fn
	}
}

// Supports reports whether op applies to fields of type ft.
func (c *Comparator) Supports(ft ast.FieldType, op ast.Operator) bool {
	family, ok := FamilyOf(ft)
	if !ok {
		return false
	}
	_, ok = c.table[tableKey{family: family, operator: op}]
	return ok
}

// OperatorsFor lists the operators that apply to ft in canonical order.
func (c *Comparator) OperatorsFor(ft ast.FieldType) []ast.Operator {
	var ops []ast.Operator
	for _, op := range ast.Operators() {
		if c.Supports(ft, op) {
			ops = append(ops, op)
		}
	}
	return ops
}

// Compare evaluates op for a submitted value of type ft. The second result is false
// when the table has no entry for the pair; the comparison is then false.
func (c *Comparator) Compare(ft ast.FieldType, op ast.Operator, actual Value, expected interface{}) (bool, bool) {
	family, ok := FamilyOf(ft)
	if !ok {
		return false, false
	}
	fn, ok := c.table[tableKey{family: family, operator: op}]
	if !ok {
		return false, false
	}
	return fn(actual, expected), true
}

var defaultComparator = NewComparator()

// Supports reports whether op applies to ft in the standard table.
func Supports(ft ast.FieldType, op ast.Operator) bool {
	return defaultComparator.Supports(ft, op)
}

// OperatorsFor lists the operators of the standard table that apply to ft.
func OperatorsFor(ft ast.FieldType) []ast.Operator {
	return defaultComparator.OperatorsFor(ft)
}

func negate(fn CompareFunc) CompareFunc {
	return func(actual Value, expected interface{}) bool {
		return !fn(actual, expected)
	}
}

func isEmpty(actual Value, _ interface{}) bool {
	return actual.IsEmpty()
}

func textEquals(actual Value, expected interface{}) bool {
	return actual.String() == scalarString(expected)
}

func textContains(actual Value, expected interface{}) bool {
	needle := scalarString(expected)
	return needle != "" && strings.Contains(actual.String(), needle)
}

func textStartsWith(actual Value, expected interface{}) bool {
	prefix := scalarString(expected)
	return prefix != "" && strings.HasPrefix(actual.String(), prefix)
}

func textEndsWith(actual Value, expected interface{}) bool {
	suffix := scalarString(expected)
	return suffix != "" && strings.HasSuffix(actual.String(), suffix)
}

func textLength(cmp func(a, b float64) bool) CompareFunc {
	return func(actual Value, expected interface{}) bool {
		want, ok := toFloat(expected)
		if !ok {
			return false
		}
		return cmp(float64(utf8.RuneCountInString(actual.String())), want)
	}
}

func numberCompare(cmp func(a, b float64) bool) CompareFunc {
	return func(actual Value, expected interface{}) bool {
		got, ok := actual.Float()
		if !ok {
			return false
		}
		want, ok := toFloat(expected)
		if !ok {
			return false
		}
		return cmp(got, want)
	}
}

// dateCompare passes the sign of actual minus expected to cmp.
func dateCompare(cmp func(sign int) bool) CompareFunc {
	return func(actual Value, expected interface{}) bool {
		got, ok := toDate(actual.scalar)
		if !ok {
			return false
		}
		want, ok := toDate(expected)
		if !ok {
			return false
		}
		return cmp(got.Compare(want))
	}
}

func checkboxEquals(actual Value, expected interface{}) bool {
	want, ok := toBool(expected)
	if !ok {
		return false
	}
	got := false
	if actual.scalar != nil {
		if got, ok = toBool(actual.scalar); !ok {
			return false
		}
	}
	return got == want
}

func expectedList(expected interface{}) []string {
	if list, ok := toStringList(expected); ok {
		return list
	}
	if expected == nil {
		return nil
	}
	return []string{scalarString(expected)}
}

// listContains holds when every expected item is selected.
func listContains(actual Value, expected interface{}) bool {
	want := expectedList(expected)
	if len(want) == 0 {
		return false
	}
	have := make(map[string]bool, len(actual.list))
	for _, item := range actual.list {
		have[item] = true
	}
	for _, item := range want {
		if !have[item] {
			return false
		}
	}
	return true
}

// listEquals is set equality ignoring order and duplicates.
func listEquals(actual Value, expected interface{}) bool {
	want := make(map[string]bool)
	for _, item := range expectedList(expected) {
		want[item] = true
	}
	have := make(map[string]bool, len(actual.list))
	for _, item := range actual.list {
		have[item] = true
	}
	if len(want) != len(have) {
		return false
	}
	for item := range want {
		if !have[item] {
			return false
		}
	}
	return true
}

func listLength(cmp func(a, b float64) bool) CompareFunc {
	return func(actual Value, expected interface{}) bool {
		want, ok := toFloat(expected)
		if !ok {
			return false
		}
		return cmp(float64(len(actual.list)), want)
	}
}

// matrixEquals holds when every row named in expected is answered with the same
// column. A row missing from the submission does not match.
func matrixEquals(actual Value, expected interface{}) bool {
	want, ok := toMatrix(expected)
	if !ok {
		return false
	}
	for row, col := range want {
		got, answered := actual.matrix[row]
		if !answered || got != col {
			return false
		}
	}
	return true
}

// matrixContains holds when at least one row named in expected is answered with the
// same column.
func matrixContains(actual Value, expected interface{}) bool {
	want, ok := toMatrix(expected)
	if !ok {
		return false
	}
	for _, row := range sortedKeys(want) {
		if got, answered := actual.matrix[row]; answered && got == want[row] {
			return true
		}
	}
	return false
}
