package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chenterphai/storefront-api/internal/utils"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindConflict, KindOf(Conflict("email", "taken")))
	assert.Equal(t, KindForbidden, KindOf(fmt.Errorf("wrapped: %w", Forbidden("no"))))
	assert.Equal(t, KindInvalidToken, KindOf(fmt.Errorf("%w: bad sig", utils.ErrInvalidToken)))
	assert.Equal(t, KindInvalidDuration, KindOf(utils.ErrInvalidDuration))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("db down")
	err := Internal("Error while fetching user.", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "db down")
}
