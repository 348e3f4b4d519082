package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Someone@Example.com", "someone@example.com"},
		{"gmail dots removed", "first.last@gmail.com", "firstlast@gmail.com"},
		{"gmail plus tag stripped", "user+spam@gmail.com", "user@gmail.com"},
		{"gmail dots and plus", "f.irst+x@googlemail.com", "first@googlemail.com"},
		{"outlook plus tag", "user+tag@outlook.com", "user@outlook.com"},
		{"hotmail plus tag", "user+tag@hotmail.com", "user@hotmail.com"},
		{"yahoo hyphen tag", "user-tag@yahoo.com", "user@yahoo.com"},
		{"fastmail plus tag", "user+tag@fastmail.fm", "user@fastmail.fm"},
		{"unknown provider untouched", "first.last+x@example.edu", "first.last+x@example.edu"},
		{"no at sign", "not-an-address", "not-an-address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestDomain(t *testing.T) {
	assert.Equal(t, "example.com", Domain("User@Example.com"))
	assert.Equal(t, "", Domain("no-domain"))
}
