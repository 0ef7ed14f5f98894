package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseError(t *testing.T) {
	cause := fmt.Errorf("strconv failure")
	err := NewParseError("22,http", "http", cause)

	assert.Contains(t, err.Error(), "PARSE")
	assert.Contains(t, err.Error(), `"http"`)
	assert.ErrorIs(t, err, cause)

	empty := NewParseError("0,99999", "", nil)
	assert.Contains(t, empty.Error(), "no scannable ports")
	assert.NoError(t, empty.Unwrap())
}

func TestScanError(t *testing.T) {
	err := NewScanErrorWithTarget(CodeScanFailed, "probe dispatch failed", "10.0.0.1")

	assert.Equal(t, "[SCAN_FAILED] probe dispatch failed (target: 10.0.0.1)", err.Error())
	assert.Equal(t, CodeScanFailed, GetCode(err))

	plain := NewScanError(CodeTimeout, "deadline exceeded")
	assert.Equal(t, "[TIMEOUT] deadline exceeded", plain.Error())
}

func TestWrapScanErrorPreservesCause(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := WrapScanErrorWithTarget(CodeScanFailed, "host scan panicked", "10.0.0.1", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeScanFailed, GetCode(err))
	assert.Contains(t, err.Error(), "10.0.0.1")
}

func TestConfigError(t *testing.T) {
	err := NewConfigFieldError(CodeValidation, "must be positive", "scan.timeout")

	assert.Equal(t, "[VALIDATION] must be positive (field: scan.timeout)", err.Error())
	assert.Equal(t, CodeValidation, GetCode(err))

	wrapped := WrapConfigError(CodeConfiguration, "failed to read config file", stderrors.New("permission denied"))
	require.Error(t, wrapped.Unwrap())
	assert.True(t, IsCode(wrapped, CodeConfiguration))
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{"parse error", NewParseError("x", "x", nil), CodeParse},
		{"scan error", NewScanError(CodeCanceled, "stopped"), CodeCanceled},
		{"config error", NewConfigError(CodeFileWrite, "disk full"), CodeFileWrite},
		{"plain error", stderrors.New("anything"), CodeUnknown},
		{"nil error", nil, CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetCode(tt.err))
		})
	}
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(NewParseError("bad", "bad", nil)))
	assert.True(t, IsFatal(NewConfigError(CodeConfiguration, "broken config")))
	assert.True(t, IsFatal(NewConfigError(CodeValidation, "bad value")))

	assert.False(t, IsFatal(NewScanError(CodeScanFailed, "one host down")))
	assert.False(t, IsFatal(NewScanError(CodeTimeout, "slow host")))
	assert.False(t, IsFatal(stderrors.New("misc")))
	assert.False(t, IsFatal(nil))
}
