package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllows(t *testing.T) {
	tests := []struct {
		name string
		mask int
		want int
		ok   bool
	}{
		{"full grants read", PermFull, PermRead, true},
		{"full grants write", PermFull, PermWrite, true},
		{"full grants delete", PermFull, PermDelete, true},
		{"read-only grants read", PermRead, PermRead, true},
		{"read-only denies write", PermRead, PermWrite, false},
		{"read-only denies delete", PermRead, PermDelete, false},
		{"read+write denies delete", PermRead | PermWrite, PermDelete, false},
		{"read+write grants both", PermRead | PermWrite, PermRead | PermWrite, true},
		{"write-only denies read", PermWrite, PermRead, false},
		{"zero denies everything", 0, PermRead, false},
		{"anything grants zero", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, Allows(tt.mask, tt.want))
		})
	}
}

func TestPermissionBits(t *testing.T) {
	// The bit layout is part of the stored data; rows in user_book
	// depend on these exact values.
	assert.Equal(t, 4, PermRead)
	assert.Equal(t, 2, PermWrite)
	assert.Equal(t, 1, PermDelete)
	assert.Equal(t, 7, PermFull)
}
