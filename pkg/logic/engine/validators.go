package engine

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"mercator-hq/formgate/pkg/form/ast"
)

// validate checks single values against go-playground/validator tags. It is safe for
// concurrent use and caches parsed tags.
var validate = validator.New()

// defaultRatingMax applies when a rating field does not configure rating_max.
const defaultRatingMax = 5

// violation is an unrendered validation failure.
type violation struct {
	reason string
	params map[string]string
}

func newViolation(reason string, kv ...string) violation {
	params := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		params[kv[i]] = kv[i+1]
	}
	return violation{reason: reason, params: params}
}

// typeValidator checks a present, non-empty value of the right shape.
type typeValidator func(cfg *ast.TypeConfig, v Value) []violation

var typeValidators = map[ast.FieldType]typeValidator{
	ast.FieldTypeText:        validateText,
	ast.FieldTypeEmail:       validateTag("email", ReasonInvalidEmail),
	ast.FieldTypeURL:         validateTag("url", ReasonInvalidURL),
	ast.FieldTypePhoneNumber: validatePhone,
	ast.FieldTypeNumber:      validateNumber,
	ast.FieldTypeRating:      validateRating,
	ast.FieldTypeScale:       validateScale,
	ast.FieldTypeDate:        validateDate,
	ast.FieldTypeSelect:      validateSelect,
	ast.FieldTypeMultiSelect: validateMultiSelect,
	ast.FieldTypeFiles:       validateFiles,
	ast.FieldTypeMatrix:      validateMatrix,
}

// ValidateField validates one value against its field definition and resolved state.
// Hidden fields never produce errors. A missing required value yields a single
// "required" error and skips the type checks.
func (e *Engine) ValidateField(field *ast.Field, state FieldState, value Value) []ErrorMessage {
	if !state.Visible {
		return nil
	}

	var violations []violation
	switch {
	case value.Mismatch():
		violations = append(violations, newViolation(ReasonInvalidType))
	case field.Type == ast.FieldTypeCheckbox && value.Present() && !isBooleanLike(value):
		violations = append(violations, newViolation(ReasonInvalidBoolean, "value", value.String()))
	case value.IsEmpty():
		if state.Required {
			violations = append(violations, newViolation(ReasonRequired))
		}
	default:
		if check, ok := typeValidators[field.Type]; ok {
			violations = check(&field.Config, value)
		}
	}

	if len(violations) == 0 {
		return nil
	}
	messages := make([]ErrorMessage, len(violations))
	for i, v := range violations {
		v.params["label"] = field.Label()
		messages[i] = e.messages.render(v.reason, v.params)
	}
	return messages
}

func isBooleanLike(v Value) bool {
	_, ok := toBool(v.scalar)
	return ok
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func validateText(cfg *ast.TypeConfig, v Value) []violation {
	n := utf8.RuneCountInString(v.String())
	if cfg.MinLength != nil && n < *cfg.MinLength {
		return []violation{newViolation(ReasonMinLength, "min", strconv.Itoa(*cfg.MinLength))}
	}
	if cfg.MaxLength != nil && n > *cfg.MaxLength {
		return []violation{newViolation(ReasonMaxLength, "max", strconv.Itoa(*cfg.MaxLength))}
	}
	return nil
}

func validateTag(tag, reason string) typeValidator {
	return func(cfg *ast.TypeConfig, v Value) []violation {
		s := strings.TrimSpace(v.String())
		if err := validate.Var(s, tag); err != nil {
			return []violation{newViolation(reason, "value", s)}
		}
		return validateText(cfg, v)
	}
}

// validatePhone requires E.164 when strict_phone is set. Otherwise it accepts common
// punctuation around 7 to 15 digits.
func validatePhone(cfg *ast.TypeConfig, v Value) []violation {
	s := strings.TrimSpace(v.String())
	if cfg.StrictPhone {
		if err := validate.Var(s, "e164"); err != nil {
			return []violation{newViolation(ReasonInvalidPhone, "value", s)}
		}
		return nil
	}

	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case strings.ContainsRune(" ()-./", r):
		default:
			return []violation{newViolation(ReasonInvalidPhone, "value", s)}
		}
	}
	if digits < 7 || digits > 15 {
		return []violation{newViolation(ReasonInvalidPhone, "value", s)}
	}
	return nil
}

func validateNumber(cfg *ast.TypeConfig, v Value) []violation {
	return checkRange(v, cfg.Min, cfg.Max)
}

func validateScale(cfg *ast.TypeConfig, v Value) []violation {
	return checkRange(v, cfg.ScaleMin, cfg.ScaleMax)
}

func checkRange(v Value, lo, hi *float64) []violation {
	f, ok := v.Float()
	if !ok {
		return []violation{newViolation(ReasonInvalidNumber, "value", v.String())}
	}
	if lo != nil && f < *lo {
		return []violation{newViolation(ReasonMin, "min", formatFloat(*lo), "value", v.String())}
	}
	if hi != nil && f > *hi {
		return []violation{newViolation(ReasonMax, "max", formatFloat(*hi), "value", v.String())}
	}
	return nil
}

func validateRating(cfg *ast.TypeConfig, v Value) []violation {
	ceiling := cfg.RatingMax
	if ceiling <= 0 {
		ceiling = defaultRatingMax
	}
	f, ok := v.Float()
	if !ok || f != float64(int64(f)) || f < 1 || f > float64(ceiling) {
		return []violation{newViolation(ReasonInvalidRating, "max", strconv.Itoa(ceiling), "value", v.String())}
	}
	return nil
}

func validateDate(_ *ast.TypeConfig, v Value) []violation {
	if _, ok := toDate(v.scalar); !ok {
		return []violation{newViolation(ReasonInvalidDate, "value", v.String())}
	}
	return nil
}

func validateSelect(cfg *ast.TypeConfig, v Value) []violation {
	if cfg.AllowCreation || len(cfg.Options) == 0 {
		return nil
	}
	if s := v.String(); !cfg.HasOption(s) {
		return []violation{newViolation(ReasonInvalidOption, "value", s)}
	}
	return nil
}

func validateMultiSelect(cfg *ast.TypeConfig, v Value) []violation {
	if cfg.AllowCreation || len(cfg.Options) == 0 {
		return nil
	}
	var out []violation
	for _, item := range v.List() {
		if !cfg.HasOption(item) {
			out = append(out, newViolation(ReasonInvalidOption, "value", item))
		}
	}
	return out
}

func validateFiles(cfg *ast.TypeConfig, v Value) []violation {
	if cfg.MaxFiles > 0 && len(v.List()) > cfg.MaxFiles {
		return []violation{newViolation(ReasonTooManyFiles, "max", strconv.Itoa(cfg.MaxFiles))}
	}
	return nil
}

// validateMatrix walks the configured rows in order. Submitted rows that are not
// configured are ignored.
func validateMatrix(cfg *ast.TypeConfig, v Value) []violation {
	submitted := v.Matrix()

	var out []violation
	for _, row := range cfg.Rows {
		col, answered := submitted[row]
		switch {
		case answered && !cfg.HasColumn(col):
			out = append(out, newViolation(ReasonInvalidMatrixValue, "row", row, "value", col))
		case !answered && cfg.RowsRequired:
			out = append(out, newViolation(ReasonMissingRow, "row", row))
		}
	}
	return out
}
