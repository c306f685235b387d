package engine

import (
	"sort"
	"strings"
)

// Reason codes carried by ErrorMessage.
const (
	ReasonRequired           = "required"
	ReasonInvalidType        = "invalid_type"
	ReasonInvalidEmail       = "invalid_email"
	ReasonInvalidURL         = "invalid_url"
	ReasonInvalidPhone       = "invalid_phone"
	ReasonInvalidNumber      = "invalid_number"
	ReasonMin                = "min"
	ReasonMax                = "max"
	ReasonMinLength          = "min_length"
	ReasonMaxLength          = "max_length"
	ReasonInvalidRating      = "invalid_rating"
	ReasonInvalidDate        = "invalid_date"
	ReasonInvalidOption      = "invalid_option"
	ReasonInvalidBoolean     = "invalid_boolean"
	ReasonTooManyFiles       = "too_many_files"
	ReasonInvalidMatrixValue = "invalid_matrix_value"
	ReasonMissingRow         = "missing_row"
)

var defaultMessages = map[string]string{
	ReasonRequired:           "The {label} field is required.",
	ReasonInvalidType:        "The {label} field has an invalid format.",
	ReasonInvalidEmail:       "The {label} field must be a valid email address.",
	ReasonInvalidURL:         "The {label} field must be a valid URL.",
	ReasonInvalidPhone:       "The {label} field must be a valid phone number.",
	ReasonInvalidNumber:      "The {label} field must be a number.",
	ReasonMin:                "The {label} field must be at least {min}.",
	ReasonMax:                "The {label} field must not be greater than {max}.",
	ReasonMinLength:          "The {label} field must be at least {min} characters.",
	ReasonMaxLength:          "The {label} field must not be greater than {max} characters.",
	ReasonInvalidRating:      "The {label} field must be a whole number between 1 and {max}.",
	ReasonInvalidDate:        "The {label} field must be a valid date.",
	ReasonInvalidOption:      "The selected value '{value}' is invalid for {label}.",
	ReasonInvalidBoolean:     "The {label} field must be true or false.",
	ReasonTooManyFiles:       "The {label} field may not have more than {max} files.",
	ReasonInvalidMatrixValue: "Invalid value '{value}' for row '{row}'.",
	ReasonMissingRow:         "The row '{row}' is required.",
}

// messageCatalog renders templates by reason. It is read-only after construction.
type messageCatalog struct {
	templates map[string]string
}

func newMessageCatalog(overrides map[string]string) *messageCatalog {
	templates := make(map[string]string, len(defaultMessages)+len(overrides))
	for reason, tmpl := range defaultMessages {
		templates[reason] = tmpl
	}
	for reason, tmpl := range overrides {
		templates[reason] = tmpl
	}
	return &messageCatalog{templates: templates}
}

// render substitutes {name} placeholders with params. Unknown reasons fall back to
// the reason code itself.
func (m *messageCatalog) render(reason string, params map[string]string) ErrorMessage {
	tmpl, ok := m.templates[reason]
	if !ok {
		tmpl = reason
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", params[k])
	}

	return ErrorMessage{
		Reason:  reason,
		Message: strings.NewReplacer(pairs...).Replace(tmpl),
		Params:  params,
	}
}
