package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenFromHeader(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"Bearer abc.def":   "abc.def",
		"abc.def":          "abc.def",
		"Bearer ":          "",
		"Token  x y z.w":   "z.w",
		"bearer lowercase": "lowercase",
	}
	for header, want := range tests {
		assert.Equal(t, want, tokenFromHeader(header), "header %q", header)
	}
}
