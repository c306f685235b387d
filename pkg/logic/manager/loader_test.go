package manager

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	formErrors "mercator-hq/formgate/pkg/form/errors"
	"mercator-hq/formgate/pkg/telemetry/logging"
)

func TestFormLoader_LoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "feedback.yaml", feedbackForm)

	loaded, err := NewFormLoader(nil, nil).LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "feedback", loaded.Form.ID)
	assert.Equal(t, path, loaded.SourceFile)
	assert.Len(t, loaded.Checksum, 64)
	assert.Zero(t, loaded.Warnings)
}

func TestFormLoader_LoadFromFile_IDFromFileName(t *testing.T) {
	path := writeFile(t, t.TempDir(), "signup.yml", signupForm)

	loaded, err := NewFormLoader(nil, nil).LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "signup", loaded.Form.ID)
}

func TestFormLoader_LoadFromFile_Warnings(t *testing.T) {
	path := writeFile(t, t.TempDir(), "stale.yaml", staleForm)

	loaded, err := NewFormLoader(nil, nil).LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Warnings)

	cfg := DefaultLoaderConfig()
	cfg.Strict = true
	_, err = NewFormLoader(cfg, nil).LoadFromFile(path)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.True(t, parseErr.Problems.HasErrors())
}

func TestFormLoader_LoadFromFile_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		setup     func() string
		config    func(*LoaderConfig)
		wantLoad  bool
		wantParse bool
		contains  string
	}{
		{
			name:     "missing file",
			setup:    func() string { return filepath.Join(dir, "missing.yaml") },
			wantLoad: true,
			contains: "file not found",
		},
		{
			name:     "directory",
			setup:    func() string { return dir },
			wantLoad: true,
			contains: "not a regular file",
		},
		{
			name:     "too large",
			setup:    func() string { return writeFile(t, dir, "big.yaml", feedbackForm) },
			config:   func(c *LoaderConfig) { c.MaxFileSize = 16 },
			wantLoad: true,
			contains: "exceeds maximum",
		},
		{
			name:     "invalid utf-8",
			setup:    func() string { return writeFile(t, dir, "bin.yaml", "- id: \xff\xfe\n") },
			wantLoad: true,
			contains: "invalid UTF-8",
		},
		{
			name:      "syntax error",
			setup:     func() string { return writeFile(t, dir, "broken.yaml", "- id: [unclosed") },
			wantParse: true,
			contains:  "broken.yaml",
		},
		{
			name:      "unknown field type",
			setup:     func() string { return writeFile(t, dir, "sig.yaml", "- id: a\n  type: signature\n") },
			wantParse: true,
			contains:  "sig.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultLoaderConfig()
			if tt.config != nil {
				tt.config(cfg)
			}

			_, err := NewFormLoader(cfg, nil).LoadFromFile(tt.setup())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)

			var loadErr *LoadError
			assert.Equal(t, tt.wantLoad, errors.As(err, &loadErr))

			var parseErr *ParseError
			assert.Equal(t, tt.wantParse, errors.As(err, &parseErr))
			if tt.wantParse {
				var list *formErrors.ErrorList
				assert.ErrorAs(t, err, &list)
			}
		})
	}
}

func TestFormLoader_LoadFromDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "feedback.yaml", feedbackForm)
	writeFile(t, dir, "nested/signup.yml", signupForm)
	writeFile(t, dir, ".drafts/draft.yaml", signupForm)
	writeFile(t, dir, ".hidden.yaml", signupForm)
	writeFile(t, dir, "README.txt", "not a form")

	loaded, err := NewFormLoader(nil, nil).LoadFromDirectory(dir)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "feedback", loaded[0].Form.ID)
	assert.Equal(t, "signup", loaded[1].Form.ID)
}

func TestFormLoader_LoadFromDirectory_IncludesHidden(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "feedback.yaml", feedbackForm)
	writeFile(t, dir, ".drafts/draft.yaml", signupForm)

	cfg := DefaultLoaderConfig()
	cfg.SkipHidden = false
	loaded, err := NewFormLoader(cfg, nil).LoadFromDirectory(dir)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func TestFormLoader_LoadFromDirectory_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "feedback.yaml", feedbackForm)
	writeFile(t, dir, "broken.yaml", "- id: [unclosed")

	loaded, err := NewFormLoader(nil, nil).LoadFromDirectory(dir)
	require.Len(t, loaded, 1)

	var list *ErrorList
	require.ErrorAs(t, err, &list)
	assert.Len(t, list.Errors, 1)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestFormLoader_LoadFromDirectory_Empty(t *testing.T) {
	_, err := NewFormLoader(nil, nil).LoadFromDirectory(t.TempDir())
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "no form files found in directory", loadErr.Message)
}

func TestFormLoader_Symlinks(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, t.TempDir(), "signup.yaml", signupForm)
	writeFile(t, dir, "feedback.yaml", feedbackForm)
	if err := os.Symlink(target, filepath.Join(dir, "signup.yaml")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	loaded, err := NewFormLoader(nil, nil).Load(dir)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)

	cfg := DefaultLoaderConfig()
	cfg.FollowSymlinks = false
	loaded, err = NewFormLoader(cfg, nil).Load(dir)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestFormLoader_Load_SingleFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "feedback.yaml", feedbackForm)

	loaded, err := NewFormLoader(nil, nil).Load(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "feedback", loaded[0].Form.ID)
}

func TestFormLoader_Inspect(t *testing.T) {
	dir := t.TempDir()
	stale := writeFile(t, dir, "stale.yaml", staleForm)
	broken := writeFile(t, dir, "broken.yaml", "- id: a\n  type: signature\n")

	loader := NewFormLoader(nil, logging.Discard())

	loaded, problems, err := loader.Inspect(stale)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 1, loaded.Warnings)
	assert.Len(t, problems.Warnings(), 1)

	loaded, problems, err = loader.Inspect(broken)
	require.NoError(t, err)
	assert.Nil(t, loaded)
	assert.True(t, problems.HasErrors())

	_, _, err = loader.Inspect(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFormLoader_Files(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", signupForm)
	writeFile(t, dir, "a.json", "[]")
	writeFile(t, dir, "notes.txt", "x")

	files, err := NewFormLoader(nil, nil).Files(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.json"), filepath.Join(dir, "b.yaml")}, files)

	files, err = NewFormLoader(nil, nil).Files(filepath.Join(dir, "notes.txt"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}
