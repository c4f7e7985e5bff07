package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsSentinel(t *testing.T) {
	err := Wrapf(ErrUnexpectedStatus, "create config %s", "demo")

	assert.True(t, Is(err, ErrUnexpectedStatus))
	assert.Equal(t, "create config demo: unexpected provider status", err.Error())
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestDomainError(t *testing.T) {
	err := NewDomainError("hume_conflict", "name taken", ErrAlreadyExists)

	assert.Equal(t, "hume_conflict: name taken: resource already exists", err.Error())
	assert.True(t, Is(err, ErrAlreadyExists))

	bare := NewDomainError("noop", "nothing wrapped", nil)
	assert.Equal(t, "noop: nothing wrapped", bare.Error())
}

func TestValidationErrorMatchesInvalidInput(t *testing.T) {
	err := Wrap(NewValidationError("name", "must not be empty", ""), "create agent")

	assert.True(t, Is(err, ErrInvalidInput))

	var vErr *ValidationError
	assert.True(t, As(err, &vErr))
	assert.Equal(t, "name", vErr.Field)
}
