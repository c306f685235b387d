package cli

import (
	"errors"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("forms.path", "missing required field")

	expected := "config error in forms.path: missing required field"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestCommandError(t *testing.T) {
	underlying := errors.New("underlying error")
	err := NewCommandError("serve", underlying)

	expected := "command serve failed: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, underlying) {
		t.Error("errors.Is() should find the underlying error")
	}
}

func TestExitError(t *testing.T) {
	tests := []struct {
		name string
		err  *ExitError
		want string
	}{
		{"without cause", NewExitError(1, nil), "exit status 1"},
		{"with cause", NewExitError(2, errors.New("2 files failed")), "2 files failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}

			var exitErr *ExitError
			wrapped := NewCommandError("lint", tt.err)
			if !errors.As(wrapped, &exitErr) || exitErr.Code != tt.err.Code {
				t.Errorf("errors.As() did not find exit code %d", tt.err.Code)
			}
		})
	}
}
