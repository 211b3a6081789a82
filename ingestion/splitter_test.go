package ingestion

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextWindows(t *testing.T) {
	text := strings.Repeat("a", 2000)
	chunks := SplitText(text, 800, 100)

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 800)
	assert.Len(t, chunks[1], 800)
	assert.Len(t, chunks[2], 600)
}

func TestSplitTextOffsets(t *testing.T) {
	// Distinct runes make window positions visible.
	var sb strings.Builder
	for i := 0; i < 2000; i++ {
		sb.WriteByte(byte('a' + i%26))
	}
	text := sb.String()

	chunks := SplitText(text, 800, 100)
	require.Len(t, chunks, 3)
	assert.Equal(t, text[0:800], chunks[0])
	assert.Equal(t, text[700:1500], chunks[1])
	assert.Equal(t, text[1400:2000], chunks[2])

	// Consecutive chunks share the overlap region.
	assert.Equal(t, chunks[0][700:], chunks[1][:100])
}

func TestSplitTextMultibyteRunes(t *testing.T) {
	t.Run("600 three-byte characters fit one window", func(t *testing.T) {
		text := strings.Repeat("€", 600) // 1800 bytes
		chunks := SplitText(text, 800, 100)
		require.Len(t, chunks, 1)
		assert.Equal(t, text, chunks[0])
	})

	t.Run("2000 two-byte characters split like 2000 ASCII ones", func(t *testing.T) {
		text := strings.Repeat("é", 2000)
		chunks := SplitText(text, 800, 100)
		require.Len(t, chunks, 3)

		for i, c := range chunks {
			assert.True(t, utf8.ValidString(c), "chunk %d is not valid UTF-8", i)
		}
		assert.Equal(t, 800, utf8.RuneCountInString(chunks[0]))
		assert.Equal(t, 800, utf8.RuneCountInString(chunks[1]))
		assert.Equal(t, 600, utf8.RuneCountInString(chunks[2]))

		// Overlap still lines up when measured in characters.
		first := []rune(chunks[0])
		second := []rune(chunks[1])
		assert.Equal(t, string(first[700:]), string(second[:100]))
	})
}

func TestSplitTextEdgeCases(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		assert.Empty(t, SplitText("", 800, 100))
	})

	t.Run("text shorter than chunk size", func(t *testing.T) {
		chunks := SplitText("short", 800, 100)
		require.Len(t, chunks, 1)
		assert.Equal(t, "short", chunks[0])
	})

	t.Run("text exactly chunk size", func(t *testing.T) {
		text := strings.Repeat("x", 800)
		chunks := SplitText(text, 800, 100)
		require.Len(t, chunks, 1)
		assert.Equal(t, text, chunks[0])
	})

	t.Run("overlap equal to chunk size still terminates", func(t *testing.T) {
		chunks := SplitText("abcde", 3, 3)
		require.NotEmpty(t, chunks)
		assert.Equal(t, "abc", chunks[0])
		assert.Equal(t, "bcd", chunks[1])
	})

	t.Run("overlap larger than chunk size still terminates", func(t *testing.T) {
		chunks := SplitText("abcdef", 2, 5)
		require.NotEmpty(t, chunks)
		for i := 1; i < len(chunks); i++ {
			assert.NotEqual(t, chunks[i-1], chunks[i])
		}
	})

	t.Run("zero overlap", func(t *testing.T) {
		chunks := SplitText(strings.Repeat("y", 1600), 800, 0)
		require.Len(t, chunks, 2)
	})
}
