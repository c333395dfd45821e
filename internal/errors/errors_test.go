package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{name: "config error type", errType: ErrTypeConfig, expected: "CONFIG"},
		{name: "integrity error type", errType: ErrTypeIntegrity, expected: "INTEGRITY"},
		{name: "lookup error type", errType: ErrTypeLookup, expected: "LOOKUP"},
		{name: "statistical error type", errType: ErrTypeStatistical, expected: "STATISTICAL"},
		{name: "parsing error type", errType: ErrTypeParsing, expected: "PARSING"},
		{name: "storage error type", errType: ErrTypeStorage, expected: "STORAGE"},
		{name: "validation error type", errType: ErrTypeValidation, expected: "VALIDATION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name:        "error without cause",
			appError:    NewConfigError("cost variable must be Driftskostnader or Varekostnader", nil),
			wantMessage: "[CONFIG] cost variable must be Driftskostnader or Varekostnader",
		},
		{
			name:        "error with cause",
			appError:    NewLookupError("no price index entry", errors.New("period 201913")),
			wantMessage: "[LOOKUP] no price index entry: period 201913",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	sentinel := errors.New("duplicate firm-year")
	appErr := NewIntegrityError("panel build failed", sentinel)

	assert.True(t, errors.Is(appErr, sentinel))

	wrapped := fmt.Errorf("load panel: %w", appErr)
	var target *AppError
	require.True(t, errors.As(wrapped, &target))
	assert.Equal(t, ErrTypeIntegrity, target.Type)
}

func TestAppError_WithContext(t *testing.T) {
	appErr := NewStatisticalError("design matrix is rank deficient", nil).
		WithContext("model", "Modell (2)").
		WithContext("rank", 11)

	assert.Equal(t, "Modell (2)", appErr.Context["model"])
	assert.Equal(t, 11, appErr.Context["rank"])

	bare := &AppError{Type: ErrTypeStorage, Message: "write failed"}
	bare.WithContext("path", "out.xlsx")
	assert.Equal(t, "out.xlsx", bare.Context["path"])
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrTypeParsing, TypeOf(fmt.Errorf("wrap: %w", NewParsingError("bad row", nil))))
	assert.Equal(t, ErrorType(""), TypeOf(errors.New("plain")))
	assert.Equal(t, ErrorType(""), TypeOf(nil))
}

func TestIsType(t *testing.T) {
	inner := NewLookupError("no CPI for 200713", nil)
	outer := NewStatisticalError("model failed", inner)

	assert.True(t, IsType(outer, ErrTypeStatistical))
	assert.True(t, IsType(outer, ErrTypeLookup))
	assert.False(t, IsType(outer, ErrTypeConfig))
	assert.False(t, IsType(errors.New("plain"), ErrTypeConfig))
}
