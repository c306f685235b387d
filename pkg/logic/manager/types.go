package manager

import (
	"time"

	"mercator-hq/formgate/pkg/config"
	"mercator-hq/formgate/pkg/form/ast"
)

// LoaderConfig contains configuration for loading form documents from disk.
type LoaderConfig struct {
	// Extensions is the list of file extensions treated as form documents.
	Extensions []string

	// MaxFileSize is the maximum document size in bytes.
	MaxFileSize int64

	// MaxDepth bounds condition nesting.
	MaxDepth int

	// Strict promotes validation warnings to errors.
	Strict bool

	// SkipHidden skips dot-files and dot-directories.
	SkipHidden bool

	// FollowSymlinks loads symlinked files.
	FollowSymlinks bool
}

// DefaultLoaderConfig returns the default loader configuration.
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		Extensions:     config.DefaultFormsExtensions(),
		MaxFileSize:    config.DefaultFormsMaxFileSize,
		MaxDepth:       config.DefaultEngineMaxDepth,
		SkipHidden:     true,
		FollowSymlinks: true,
	}
}

// LoaderConfigFrom builds a loader configuration from the forms and engine sections.
func LoaderConfigFrom(forms config.FormsConfig, maxDepth int) *LoaderConfig {
	cfg := DefaultLoaderConfig()
	if len(forms.Extensions) > 0 {
		cfg.Extensions = forms.Extensions
	}
	if forms.MaxFileSize > 0 {
		cfg.MaxFileSize = forms.MaxFileSize
	}
	if maxDepth > 0 {
		cfg.MaxDepth = maxDepth
	}
	cfg.Strict = forms.Strict
	cfg.SkipHidden = forms.SkipHidden
	return cfg
}

// LoadedForm is a parsed and validated form with its source.
type LoadedForm struct {
	Form *ast.Form

	// SourceFile is the path the form was read from.
	SourceFile string

	// Checksum is the hex SHA-256 of the document bytes.
	Checksum string

	// Warnings is the number of validation warnings reported while loading.
	Warnings int
}

// FormMetadata summarizes a registered form.
type FormMetadata struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Version    string `json:"version,omitempty"`
	SourceFile string `json:"source_file"`
	FieldCount int    `json:"field_count"`
	Checksum   string `json:"checksum"`
}

// RegistryStats describes the registry contents.
type RegistryStats struct {
	FormCount  int       `json:"form_count"`
	FieldCount int       `json:"field_count"`
	Version    string    `json:"version"`
	LoadTime   time.Time `json:"load_time"`
}

// Reload statuses recorded in metrics.
const (
	ReloadSuccess = "success"
	ReloadFailure = "failure"
)

// Evaluation outcomes recorded in metrics.
const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)
