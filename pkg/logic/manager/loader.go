package manager

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"mercator-hq/formgate/pkg/form"
	formErrors "mercator-hq/formgate/pkg/form/errors"
)

// FormLoader reads form documents from a single file or a directory tree and
// runs them through the form parser and validator.
type FormLoader struct {
	config *LoaderConfig
	forms  *form.Loader
	logger *slog.Logger
}

// NewFormLoader creates a loader. A nil config uses DefaultLoaderConfig.
func NewFormLoader(config *LoaderConfig, logger *slog.Logger) *FormLoader {
	if config == nil {
		config = DefaultLoaderConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &FormLoader{
		config: config,
		forms: form.NewLoader().
			WithMaxFileSize(config.MaxFileSize).
			WithMaxDepth(config.MaxDepth).
			WithStrict(config.Strict),
		logger: logger,
	}
}

// Load loads path as a single form file or, for a directory, every form file
// below it.
func (l *FormLoader) Load(path string) ([]*LoadedForm, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, statError(path, err)
	}

	if info.IsDir() {
		return l.LoadFromDirectory(path)
	}

	loaded, err := l.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	return []*LoadedForm{loaded}, nil
}

// LoadFromFile loads a single form file. It checks the size limit and UTF-8
// encoding before parsing.
func (l *FormLoader) LoadFromFile(path string) (*LoadedForm, error) {
	loaded, problems, err := l.Inspect(path)
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		return nil, &ParseError{FilePath: path, Problems: problems}
	}

	for _, w := range problems.Warnings() {
		l.logger.Warn("Form validation warning",
			"file", path,
			"form_id", loaded.Form.ID,
			"field_id", w.FieldID,
			"type", string(w.Type),
			"message", w.Message,
			"suggestion", w.Suggestion,
		)
	}
	return loaded, nil
}

// Inspect reads and checks a single form file and returns every problem found.
// err reports files that could not be read; loaded is nil when the problems
// contain errors.
func (l *FormLoader) Inspect(path string) (loaded *LoadedForm, problems *formErrors.ErrorList, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, statError(path, err)
	}

	if !info.Mode().IsRegular() {
		return nil, nil, &LoadError{FilePath: path, Message: "not a regular file"}
	}

	if info.Size() > l.config.MaxFileSize {
		return nil, nil, &LoadError{
			FilePath: path,
			Message:  fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", info.Size(), l.config.MaxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &LoadError{FilePath: path, Message: "failed to read file", Cause: err}
	}

	if !utf8.Valid(data) {
		return nil, nil, &LoadError{FilePath: path, Message: "file contains invalid UTF-8 encoding"}
	}

	f, problems := l.forms.CheckBytes(data, path)
	if problems.HasErrors() || f == nil {
		return nil, problems, nil
	}

	sum := sha256.Sum256(data)
	return &LoadedForm{
		Form:       f,
		SourceFile: path,
		Checksum:   hex.EncodeToString(sum[:]),
		Warnings:   len(problems.Warnings()),
	}, problems, nil
}

// Files lists the form files Load would read for path: path itself for a file,
// the matching files below it for a directory.
func (l *FormLoader) Files(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, statError(path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	return l.collectFormFiles(path)
}

// LoadFromDirectory loads every form file below dir. Files that fail are collected
// in an *ErrorList returned together with the forms that loaded.
func (l *FormLoader) LoadFromDirectory(dir string) ([]*LoadedForm, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, statError(dir, err)
	}
	if !info.IsDir() {
		return nil, &LoadError{FilePath: dir, Message: "not a directory"}
	}

	files, err := l.collectFormFiles(dir)
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, &LoadError{FilePath: dir, Message: "no form files found in directory"}
	}

	var loaded []*LoadedForm
	errList := &ErrorList{}

	for _, path := range files {
		f, err := l.LoadFromFile(path)
		if err != nil {
			errList.Add(err)
			continue
		}
		loaded = append(loaded, f)
	}

	if len(loaded) == 0 {
		return nil, errList
	}
	return loaded, errList.ToError()
}

// collectFormFiles returns the form file paths below dir in lexical order.
func (l *FormLoader) collectFormFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if l.config.SkipHidden && path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if !l.config.FollowSymlinks {
				return nil
			}
			target, err := os.Stat(path)
			if err != nil {
				l.logger.Warn("Skipping broken symlink", "path", path, "error", err)
				return nil
			}
			if !target.Mode().IsRegular() {
				return nil
			}
		}

		if !l.hasValidExtension(path) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, &LoadError{FilePath: dir, Message: "failed to walk directory", Cause: err}
	}

	sort.Strings(files)
	return files, nil
}

func (l *FormLoader) hasValidExtension(path string) bool {
	return hasExtension(path, l.config.Extensions)
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, valid := range extensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}

func statError(path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return &LoadError{FilePath: path, Message: "file not found", Cause: err}
	case os.IsPermission(err):
		return &LoadError{FilePath: path, Message: "permission denied", Cause: err}
	default:
		return &LoadError{FilePath: path, Message: "failed to access file", Cause: err}
	}
}
