package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDuplicate(t *testing.T) {
	assert.True(t, isDuplicate(errors.New("Error 1062 (23000): Duplicate entry 'wx-cashbook' for key 'application.app_id'")))
	assert.False(t, isDuplicate(errors.New("Error 1451 (23000): Cannot delete or update a parent row")))
	assert.False(t, isDuplicate(nil))
}

func TestIsReferenced(t *testing.T) {
	assert.True(t, isReferenced(errors.New("Error 1451 (23000): Cannot delete or update a parent row: a foreign key constraint fails")))
	assert.False(t, isReferenced(errors.New("Error 1062 (23000): Duplicate entry")))
	assert.False(t, isReferenced(nil))
}

func TestNullable(t *testing.T) {
	assert.Nil(t, nullable(""))
	assert.Equal(t, "13800000001", nullable("13800000001"))
}
