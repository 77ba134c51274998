package decode

import (
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"unicode/utf8"

	"github.com/aretw0/tether/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/transform"
)

func TestLossy_Decode(t *testing.T) {
	t.Run("valid input is returned verbatim", func(t *testing.T) {
		text, replaced, err := Lossy.Decode([]byte("héllo\nwörld\n"))
		require.NoError(t, err)
		assert.False(t, replaced)
		assert.Equal(t, "héllo\nwörld\n", text)
	})

	t.Run("invalid bytes are replaced", func(t *testing.T) {
		text, replaced, err := Lossy.Decode([]byte("a\xffb\xfe"))
		require.NoError(t, err)
		assert.True(t, replaced)
		assert.Equal(t, "a\uFFFDb\uFFFD", text)
	})

	t.Run("one replacement per maximal subpart", func(t *testing.T) {
		tests := []struct {
			in   string
			want string
		}{
			{"ok \xe2\x82", "ok \uFFFD"},
			{"\xe2\x82A", "\uFFFDA"},
			{"\xf0\x9f\x98", "\uFFFD"},
			{"\xf0\x9f\x98\x80\xf0\x9f", "\U0001F600\uFFFD"},
			{"a\xffb\xfe", "a\uFFFDb\uFFFD"},
			{"\xc0\xaf", "\uFFFD\uFFFD"},
			{"\xed\xa0\x80", "\uFFFD\uFFFD\uFFFD"},
			{"\xf4\x90\x80\x80", "\uFFFD\uFFFD\uFFFD\uFFFD"},
			{"\xe0\x80", "\uFFFD\uFFFD"},
			{"caf\xc3\xa9 \xff done\n", "café \uFFFD done\n"},
			{"literal \uFFFD stays", "literal \uFFFD stays"},
		}
		for _, tt := range tests {
			text, replaced, err := Lossy.Decode([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, text, "input %q", tt.in)
			assert.Equal(t, !utf8.ValidString(tt.in), replaced, "input %q", tt.in)
		}
	})

	t.Run("streamed input splits sequences across chunks", func(t *testing.T) {
		r := transform.NewReader(iotest.OneByteReader(strings.NewReader("x\xe2\x82\xacy\xe2\x82")), replaceSubparts{})
		out, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, "x€y\uFFFD", string(out))
	})

	t.Run("empty input", func(t *testing.T) {
		text, replaced, err := Lossy.Decode(nil)
		require.NoError(t, err)
		assert.False(t, replaced)
		assert.Empty(t, text)
	})
}

func TestStrict_Decode(t *testing.T) {
	text, _, err := Strict.Decode([]byte("plain"))
	require.NoError(t, err)
	assert.Equal(t, "plain", text)

	_, _, err = Strict.Decode([]byte{0xff})
	assert.ErrorIs(t, err, domain.ErrInvalidEncoding)
}

func TestByName(t *testing.T) {
	p, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, NameLossy, p.Name())

	p, err = ByName("strict")
	require.NoError(t, err)
	assert.Equal(t, NameStrict, p.Name())

	_, err = ByName("latin1")
	assert.Error(t, err)
}
