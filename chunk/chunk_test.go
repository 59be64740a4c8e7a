package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Short input passes through untouched, whatever the mode says.
func TestSplitShortInput(t *testing.T) {
	for _, mode := range []ParseMode{ModePlain, ModeHTML, "Markdown", "nonsense"} {
		got, err := SplitAll("hello <world>", 100, mode)
		require.NoError(t, err, "mode %q", mode)
		assert.Equal(t, []string{"hello <world>"}, got, "mode %q", mode)
	}
}

func TestSplitUnsupportedMode(t *testing.T) {
	long := strings.Repeat("word ", 10)

	for _, mode := range []ParseMode{"Markdown", "MarkdownV2", "xml"} {
		_, err := Split(long, 10, mode)

		var uerr *UnsupportedModeError
		require.ErrorAs(t, err, &uerr, "mode %q", mode)
		assert.Equal(t, mode, uerr.Mode)
	}
}

func TestSplitModeHTMLCaseInsensitive(t *testing.T) {
	got, err := SplitAll("some\ntext\n!", 5, "html")
	require.NoError(t, err)
	assert.Equal(t, []string{"some\n", "text\n", "!"}, got)
}

func TestSplitBadMarkupSurfacesEarly(t *testing.T) {
	_, err := Split(strings.Repeat("x", 20)+"<b>oops", 10, ModeHTML)

	var merr *MarkupError
	require.ErrorAs(t, err, &merr)
}

// Stopping mid-iteration is allowed; the sequence is lazy and needs no
// cleanup.
func TestSplitEarlyStop(t *testing.T) {
	seq, err := Split("aaaa\nbbbb\ncccc\ndddd", 5, ModePlain)
	require.NoError(t, err)

	var first string
	for c, err := range seq {
		require.NoError(t, err)
		first = c
		break
	}
	assert.Equal(t, "aaaa", first)
}
