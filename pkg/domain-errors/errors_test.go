package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	base := errors.New("boom")

	t.Run("direct code", func(t *testing.T) {
		err := New(CodeNotFound, "claim not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeInternal))
	})

	t.Run("nested codes are all visible", func(t *testing.T) {
		inner := Wrap(base, CodeTimeout, "history lookup")
		outer := Wrap(inner, CodeUnavailable, "adjudicate")
		assert.True(t, HasCode(outer, CodeUnavailable))
		assert.True(t, HasCode(outer, CodeTimeout))
		assert.Equal(t, CodeUnavailable, CodeOf(outer))
		assert.True(t, Is(outer, base))
	})

	t.Run("fmt wrapping keeps the code reachable", func(t *testing.T) {
		err := fmt.Errorf("store: %w", New(CodeConflict, "duplicate claim id"))
		assert.True(t, HasCode(err, CodeConflict))
	})

	t.Run("plain errors default to internal", func(t *testing.T) {
		assert.False(t, HasCode(base, CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(base))
	})

	t.Run("wrap of nil is nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "nothing"))
	})
}
