package ast

// FieldType identifies the kind of input a field collects.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeEmail       FieldType = "email"
	FieldTypeURL         FieldType = "url"
	FieldTypePhoneNumber FieldType = "phone_number"
	FieldTypeNumber      FieldType = "number"
	FieldTypeRating      FieldType = "rating"
	FieldTypeScale       FieldType = "scale"
	FieldTypeDate        FieldType = "date"
	FieldTypeSelect      FieldType = "select"
	FieldTypeCheckbox    FieldType = "checkbox"
	FieldTypeMultiSelect FieldType = "multi_select"
	FieldTypeFiles       FieldType = "files"
	FieldTypeMatrix      FieldType = "matrix"
)

// Shape describes the structure of a submitted value.
type Shape int

const (
	ShapeScalar Shape = iota // a single string, number or boolean
	ShapeList                // an ordered list of scalars
	ShapeMatrix              // a mapping from row key to column key
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeList:
		return "list"
	case ShapeMatrix:
		return "matrix"
	default:
		return "scalar"
	}
}

var fieldShapes = map[FieldType]Shape{
	FieldTypeText:        ShapeScalar,
	FieldTypeEmail:       ShapeScalar,
	FieldTypeURL:         ShapeScalar,
	FieldTypePhoneNumber: ShapeScalar,
	FieldTypeNumber:      ShapeScalar,
	FieldTypeRating:      ShapeScalar,
	FieldTypeScale:       ShapeScalar,
	FieldTypeDate:        ShapeScalar,
	FieldTypeSelect:      ShapeScalar,
	FieldTypeCheckbox:    ShapeScalar,
	FieldTypeMultiSelect: ShapeList,
	FieldTypeFiles:       ShapeList,
	FieldTypeMatrix:      ShapeMatrix,
}

// FieldTypes returns every supported field type in a stable order.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText, FieldTypeEmail, FieldTypeURL, FieldTypePhoneNumber,
		FieldTypeNumber, FieldTypeRating, FieldTypeScale, FieldTypeDate,
		FieldTypeSelect, FieldTypeCheckbox, FieldTypeMultiSelect, FieldTypeFiles,
		FieldTypeMatrix,
	}
}

// IsKnown reports whether t is a supported field type.
func (t FieldType) IsKnown() bool {
	_, ok := fieldShapes[t]
	return ok
}

// Shape returns the value shape for t. Unknown types are scalar.
func (t FieldType) Shape() Shape {
	return fieldShapes[t]
}

// Form is a parsed form definition. Fields keep document order.
type Form struct {
	ID       string
	Name     string
	Version  string
	Fields   []*Field
	Location Location

	index map[string]int
}

// NewForm builds a form and indexes its fields by id.
func NewForm(id string, fields ...*Field) *Form {
	f := &Form{ID: id, Fields: fields}
	f.Reindex()
	return f
}

// Reindex rebuilds the id index. Call it after mutating Fields and before the form is
// shared between goroutines.
func (f *Form) Reindex() {
	f.index = make(map[string]int, len(f.Fields))
	for i, field := range f.Fields {
		if _, dup := f.index[field.ID]; !dup {
			f.index[field.ID] = i
		}
	}
}

// Field looks up a field by id.
func (f *Form) Field(id string) (*Field, bool) {
	if f.index != nil {
		i, ok := f.index[id]
		if !ok {
			return nil, false
		}
		return f.Fields[i], true
	}
	for _, field := range f.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return nil, false
}

// FieldIDs returns field ids in document order.
func (f *Form) FieldIDs() []string {
	ids := make([]string, len(f.Fields))
	for i, field := range f.Fields {
		ids[i] = field.ID
	}
	return ids
}

// Field is a single form input.
type Field struct {
	ID       string
	Name     string // Human label used in messages
	Type     FieldType
	Required bool // Base requiredness before logic
	Hidden   bool // Base visibility before logic
	Config   TypeConfig
	Logic    *Logic
	Location Location
}

// Label returns the display name, falling back to the id.
func (f *Field) Label() string {
	if f.Name != "" {
		return f.Name
	}
	return f.ID
}

// TypeConfig holds type-specific parameters. Only the keys relevant to the field's
// type are consulted.
type TypeConfig struct {
	// matrix
	Rows         []string `mapstructure:"rows"`
	Columns      []string `mapstructure:"columns"`
	RowsRequired bool     `mapstructure:"rows_required"`

	// select, multi_select
	Options       []string `mapstructure:"options"`
	AllowCreation bool     `mapstructure:"allow_creation"`

	// number
	Min *float64 `mapstructure:"min"`
	Max *float64 `mapstructure:"max"`

	// text
	MinLength *int `mapstructure:"min_length"`
	MaxLength *int `mapstructure:"max_length"`

	// rating, scale
	RatingMax int      `mapstructure:"rating_max"`
	ScaleMin  *float64 `mapstructure:"scale_min"`
	ScaleMax  *float64 `mapstructure:"scale_max"`

	// files
	MaxFiles int `mapstructure:"max_files"`

	// phone_number
	StrictPhone bool `mapstructure:"strict_phone"`
}

// HasRow reports whether row is one of the configured matrix rows.
func (c *TypeConfig) HasRow(row string) bool {
	return containsString(c.Rows, row)
}

// HasColumn reports whether column is one of the configured matrix columns.
func (c *TypeConfig) HasColumn(column string) bool {
	return containsString(c.Columns, column)
}

// HasOption reports whether option is one of the configured choices.
func (c *TypeConfig) HasOption(option string) bool {
	return containsString(c.Options, option)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Logic attaches a condition tree and the actions applied when it holds.
type Logic struct {
	Conditions *ConditionNode
	Actions    []ActionType
	Location   Location
}

// IsInert reports whether the logic block has no effect: no leaves to evaluate or no
// actions to apply.
func (l *Logic) IsInert() bool {
	return l == nil || len(l.Actions) == 0 || l.Conditions.LeafCount() == 0
}
