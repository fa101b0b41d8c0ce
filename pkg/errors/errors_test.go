package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeExternalProcess, cause, "failed to fetch")

	if err.Code != ErrCodeExternalProcess {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeExternalProcess)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeInvalidInput,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeExternalProcess,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeExternalProcess, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeExternalProcess,
			expected: true,
		},
		{
			name:     "inner code",
			err:      Wrap(ErrCodeDirective, fmt.Errorf("generate: %w", New(ErrCodeMissingEnv, "unset")), "line 3"),
			code:     ErrCodeMissingEnv,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidPackage, "test"),
			expected: ErrCodeInvalidPackage,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestProcessError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ProcessError
		expected string
	}{
		{
			name:     "with stderr",
			err:      &ProcessError{Program: "generate_graph.pl", ExitCode: 2, Stderr: "syntax error"},
			expected: "generate_graph.pl: exit status 2: syntax error",
		},
		{
			name:     "without stderr",
			err:      &ProcessError{Program: "generate_graph.pl", ExitCode: 1},
			expected: "generate_graph.pl: exit status 1",
		},
		{
			name:     "never started",
			err:      &ProcessError{Program: "generate_graph.pl", ExitCode: -1},
			expected: "generate_graph.pl: could not be started",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
			if tt.err.Code() != ErrCodeExternalProcess {
				t.Errorf("Code() = %v, want %v", tt.err.Code(), ErrCodeExternalProcess)
			}
		})
	}
}

func TestWrappedProcessError(t *testing.T) {
	cause := &ProcessError{Program: "generate_graph.pl", ExitCode: 3, Stderr: "boom"}
	err := Wrap(ErrCodeExternalProcess, cause, "generate diagram")

	var pe *ProcessError
	if !errors.As(err, &pe) {
		t.Fatal("errors.As should find the ProcessError")
	}
	if pe.Stderr != "boom" {
		t.Errorf("Stderr = %q, want %q", pe.Stderr, "boom")
	}
}
