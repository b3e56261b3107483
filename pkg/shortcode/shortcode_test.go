package shortcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Run("length_and_alphabet", func(t *testing.T) {
		code, err := Generate(6)
		require.NoError(t, err)
		assert.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(Alphabet, r), "unexpected symbol %q", r)
		}
	})

	t.Run("default_length_for_non_positive", func(t *testing.T) {
		code, err := Generate(0)
		require.NoError(t, err)
		assert.Len(t, code, DefaultLength)
	})

	t.Run("codes_differ", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			code, err := Generate(8)
			require.NoError(t, err)
			seen[code] = true
		}
		// При 62^8 комбинаций коллизии в сотне кодов практически исключены
		assert.Len(t, seen, 100)
	})
}
