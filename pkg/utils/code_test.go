package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJoinCode_Shape(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := NewJoinCode()
		require.NoError(t, err)
		assert.Len(t, code, JoinCodeLen)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(CodeAlphabet, r), "unexpected rune %q in %s", r, code)
		}
	}
}

func TestNewJoinCode_Distinct(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		code, err := NewJoinCode()
		require.NoError(t, err)
		_, dup := seen[code]
		require.False(t, dup, "duplicate code %s", code)
		seen[code] = struct{}{}
	}
}

func TestNormalizeJoinCode(t *testing.T) {
	assert.Equal(t, "AB12CD34", NormalizeJoinCode("  ab12cd34\n"))
}
