package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NotFound("alarm.Toggle", "alarm not found"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))

	msg, ok := Message(err)
	assert.True(t, ok)
	assert.Equal(t, "alarm not found", msg)
}

func TestErrorWrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := &Error{Op: "sound.Upload", Kind: ErrValidation, Message: "bad file", Err: cause}

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "sound.Upload: bad file: disk full", err.Error())
}

func TestMessageOnPlainError(t *testing.T) {
	_, ok := Message(errors.New("boom"))
	assert.False(t, ok)
}
