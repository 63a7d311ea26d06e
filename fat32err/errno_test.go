package fat32err_test

import (
	"errors"
	"testing"

	"github.com/dargueta/gofat32/fat32err"
	"github.com/stretchr/testify/assert"
)

func TestDiskoErrorWithMessage(t *testing.T) {
	newErr := fat32err.ErrCacheFull.WithMessage("16 of 16 slots leased")
	assert.Equal(
		t,
		"Sector cache is full and every resident entry is leased: 16 of 16 slots leased",
		newErr.Error(),
	)
	assert.ErrorIs(t, newErr, fat32err.ErrCacheFull)
}

func TestDiskoErrorWrapError(t *testing.T) {
	originalErr := errors.New("read past end of storage")
	newErr := fat32err.ErrOutOfRange.WrapError(originalErr)

	assert.Equal(
		t,
		"Requested offset falls outside the storage medium: read past end of storage",
		newErr.Error(),
	)
	assert.ErrorIs(t, newErr, originalErr)
}
