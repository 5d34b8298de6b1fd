package errors_test

import (
	"fmt"
	"testing"

	"codeberg.org/mutker/iroverlay/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	f := errors.New()

	assert.Equal(t, "Failed to launch overlay", f.New(errors.ErrLaunch).Error())
	assert.Equal(t, "Failed to launch overlay: boom", f.Wrap(errors.ErrLaunch, fmt.Errorf("boom")).Error())
	assert.Equal(t, "custom", f.WithMessage(errors.ErrLaunch, "custom").Error())
	assert.Equal(t, "Failed to launch overlay: speed", f.WithData(errors.ErrLaunch, "speed").Error())
	assert.Equal(t, "unknown_code", f.New("unknown_code").Error())
}

func TestIsMatchesByCode(t *testing.T) {
	f := errors.New()
	sentinel := f.New(errors.ErrTimeout)

	wrapped := fmt.Errorf("sampling: %w", f.Wrap(errors.ErrTimeout, fmt.Errorf("no cycle")))
	assert.True(t, errors.Is(wrapped, sentinel))
	assert.False(t, errors.Is(wrapped, f.New(errors.ErrLaunch)))

	nested := f.Wrap(errors.ErrLaunch, f.New(errors.ErrTimeout))
	assert.True(t, errors.Is(nested, sentinel))
	assert.Equal(t, errors.ErrLaunch, errors.CodeOf(nested))
	assert.Equal(t, errors.ErrorCode(""), errors.CodeOf(fmt.Errorf("plain")))
}
