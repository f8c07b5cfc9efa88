package security

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateResetCodeFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)

	for i := 0; i < 1000; i++ {
		code, err := GenerateResetCode()
		require.NoError(t, err)
		require.Regexp(t, pattern, code)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestGenerateResetCodeVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateResetCode()
		require.NoError(t, err)
		seen[code] = true
	}
	// 100 draws from 900k values collide rarely; all-equal means a broken source.
	assert.Greater(t, len(seen), 1)
}
