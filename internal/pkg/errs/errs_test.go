//go:build unit

package errs_test

import (
	"errors"
	"testing"

	"roomchat/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestMark(t *testing.T) {
	t.Run("marked error matches sentinel and keeps message", func(t *testing.T) {
		base := errors.New("serialization failure")
		err := errs.Mark(base, errs.ErrTransient)

		assert.True(t, errs.Is(err, errs.ErrTransient))
		assert.False(t, errs.Is(err, errs.ErrConflict))
		assert.Contains(t, err.Error(), "serialization failure")
	})

	t.Run("nil error yields the mark itself", func(t *testing.T) {
		err := errs.Mark(nil, errs.ErrConflict)
		assert.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("wrap keeps the mark reachable", func(t *testing.T) {
		err := errs.Wrap(errs.Mark(errors.New("boom"), errs.ErrConflict), "commit")
		assert.True(t, errs.Is(err, errs.ErrConflict))
		assert.Contains(t, err.Error(), "commit: boom")
	})
}

func TestExtractStackLines(t *testing.T) {
	assert.Nil(t, errs.ExtractStackLines(nil, 3))

	lines := errs.ExtractStackLines(errs.New("boom"), 2)
	assert.Len(t, lines, 2)
	assert.Equal(t, "boom", lines[0])
}
