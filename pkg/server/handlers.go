package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"mercator-hq/formgate/pkg/form/ast"
	"mercator-hq/formgate/pkg/logic/engine"
	"mercator-hq/formgate/pkg/logic/manager"
)

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes an API error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FormList is the body of GET /forms.
type FormList struct {
	Version string                 `json:"version"`
	Forms   []manager.FormMetadata `json:"forms"`
}

// FormView is the public description of a form.
type FormView struct {
	ID      string      `json:"id"`
	Name    string      `json:"name,omitempty"`
	Version string      `json:"version,omitempty"`
	Fields  []FieldView `json:"fields"`
}

// FieldView describes one field of a form.
type FieldView struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Hidden   bool   `json:"hidden"`
	HasLogic bool   `json:"has_logic"`
}

// ValidateRequest is the body of POST /forms/{id}/validate.
type ValidateRequest struct {
	Fields []string          `json:"fields"`
	Data   engine.Submission `json:"data"`
}

type formHandlers struct {
	forms   FormService
	maxBody int64
	logger  *slog.Logger
}

func (h *formHandlers) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, FormList{
		Version: h.forms.Version(),
		Forms:   h.forms.Metadata(),
	})
}

func (h *formHandlers) get(w http.ResponseWriter, r *http.Request) {
	f, err := h.forms.Form(chi.URLParam(r, "formID"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newFormView(f))
}

// validate runs partial validation for live feedback. Field errors are part of a
// 200 response.
func (h *formHandlers) validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if len(req.Fields) == 0 {
		if q := r.URL.Query().Get("fields"); q != "" {
			req.Fields = splitFields(q)
		}
	}
	if len(req.Fields) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "at least one field id is required")
		return
	}

	result, err := h.forms.ValidateFields(r.Context(), chi.URLParam(r, "formID"), req.Data, req.Fields...)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// submit runs complete validation. An invalid submission answers 422 with the
// {"message", "errors"} body.
func (h *formHandlers) submit(w http.ResponseWriter, r *http.Request) {
	var data engine.Submission
	if err := h.decode(w, r, &data); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.forms.ValidateSubmission(r.Context(), chi.URLParam(r, "formID"), data)
	var invalid *engine.SubmissionError
	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusUnprocessableEntity, invalid)
	case err != nil:
		h.writeServiceError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

func (h *formHandlers) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		case errors.Is(err, io.EOF):
			return errors.New("request body is empty")
		default:
			return fmt.Errorf("invalid JSON body: %w", err)
		}
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}

func (h *formHandlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, manager.ErrFormNotFound) {
		writeError(w, http.StatusNotFound, "form_not_found", err.Error())
		return
	}
	h.logger.ErrorContext(r.Context(), "Form request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal_error", "evaluation failed")
}

func newFormView(f *ast.Form) FormView {
	view := FormView{ID: f.ID, Name: f.Name, Version: f.Version, Fields: make([]FieldView, len(f.Fields))}
	for i, field := range f.Fields {
		view.Fields[i] = FieldView{
			ID:       field.ID,
			Name:     field.Name,
			Type:     string(field.Type),
			Required: field.Required,
			Hidden:   field.Hidden,
			HasLogic: field.Logic != nil,
		}
	}
	return view
}

func splitFields(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	writeJSON(w, code, ErrorResponse{Error: ErrorDetail{Code: errCode, Message: message}})
}
