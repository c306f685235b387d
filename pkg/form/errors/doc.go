// Package errors provides load-time error reporting for form definitions.
//
// Problems are collected in an ErrorList instead of failing on the first one. Each
// entry carries a type (syntax, structural, semantic, io), a severity and the source
// location. Only error-severity entries make a definition malformed; warnings such as
// stale field references are reported but do not block loading.
//
//	errs := errors.NewErrorList()
//	errs.AddError(errors.ErrorTypeStructural, "grid", "matrix field requires columns", loc)
//	if err := errs.ToError(); err != nil {
//	    return err
//	}
package errors
