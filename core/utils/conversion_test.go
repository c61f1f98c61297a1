package utils_test

import (
	"testing"

	"gridfs-manager/core/utils"

	"github.com/stretchr/testify/assert"
)

func TestToString(t *testing.T) {
	assert.Equal(t, "abc", utils.ToString("abc"))
	assert.Equal(t, "d41d8cd9", utils.ToString([]byte("d41d8cd9")))
	assert.Equal(t, "42", utils.ToString(42))
	assert.Equal(t, "<nil>", utils.ToString(nil))
}

func TestToBool(t *testing.T) {
	tests := map[string]bool{
		"true":  true,
		"TRUE":  true,
		"1":     true,
		"yes":   true,
		" on ":  true,
		"":      false,
		"false": false,
		"0":     false,
		"maybe": false,
	}
	for in, want := range tests {
		assert.Equal(t, want, utils.ToBool(in), "input %q", in)
	}
}
