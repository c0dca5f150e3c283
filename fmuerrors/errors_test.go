package fmuerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	assert.EqualError(t, NewConfigurationError("missing %s", "masterdata"),
		"configuration error: missing masterdata")
	assert.EqualError(t, NewValidationError("bad content %q", "banana"),
		`validation error: bad content "banana"`)
	assert.EqualError(t, NewPathError("non-ascii path"),
		"path error: non-ascii path")
}

func TestValidationErrorUnwrap(t *testing.T) {
	inner := fmt.Errorf("field a differs; field b differs")
	err := &ValidationError{Reason: "inconsistent inputs", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "inconsistent inputs")
	assert.Contains(t, err.Error(), "field a differs")
}

func TestErrorTypesAreDistinct(t *testing.T) {
	var cfgErr *ConfigurationError
	require.True(t, errors.As(NewConfigurationError("x"), &cfgErr))

	var valErr *ValidationError
	assert.False(t, errors.As(NewConfigurationError("x"), &valErr))
}

func TestWarningsAdd(t *testing.T) {
	var ws Warnings
	ws.Add(WarnUser, "first %d", 1)
	ws.Add(WarnDeprecation, "second")

	require.Len(t, ws, 2)
	assert.Equal(t, WarnUser, ws[0].Kind)
	assert.Equal(t, []string{"first 1", "second"}, ws.Messages())
	assert.Equal(t, "deprecation: second", ws[1].String())
}
