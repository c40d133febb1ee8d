package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/paper-genie/internal/pdftest"
)

func TestExtractPDFSinglePage(t *testing.T) {
	ext, err := ExtractPDF(pdftest.Build("Hello World"))
	require.NoError(t, err)

	assert.Equal(t, 1, ext.PageCount())
	assert.Equal(t, "Hello World", strings.TrimSpace(ext.Text))
}

func TestExtractPDFPreservesPageOrder(t *testing.T) {
	want := []string{"First page", "Second page", "Third page", "Fourth page"}

	ext, err := ExtractPDF(pdftest.Build(want...))
	require.NoError(t, err)

	require.Equal(t, len(want), ext.PageCount())
	assert.Equal(t, want, ext.Pages)

	last := -1
	for _, p := range want {
		idx := strings.Index(ext.Text, p)
		require.GreaterOrEqual(t, idx, 0, "missing %q", p)
		assert.Greater(t, idx, last, "%q out of order", p)
		last = idx
	}
}

func TestExtractPDFEmptyPageUsesFallback(t *testing.T) {
	ext, err := ExtractPDF(pdftest.Build("Intro", "", "Conclusion"))
	require.NoError(t, err)

	require.Equal(t, 3, ext.PageCount())
	assert.Equal(t, "Intro", ext.Pages[0])
	assert.Equal(t, PageFallback, ext.Pages[1])
	assert.Equal(t, "Conclusion", ext.Pages[2])
}

func TestExtractPDFNoTextAtAll(t *testing.T) {
	_, err := ExtractPDF(pdftest.Build("", ""))
	assert.ErrorIs(t, err, ErrNoText)
}

func TestExtractPDFRejectsNonPDF(t *testing.T) {
	_, err := ExtractPDF([]byte("<html>not a pdf</html>"))
	assert.ErrorIs(t, err, ErrNotPDF)
}

func TestExtractPDFRejectsCorruptPDF(t *testing.T) {
	data := []byte("%PDF-1.4\n" + strings.Repeat("garbage ", 40))

	ext, err := ExtractPDF(data)
	require.Error(t, err)
	assert.Nil(t, ext)
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"ﬁnite ﬂow":               "finite flow",
		"a\r\nb\rc":               "a\nb\nc",
		"  spaced  \n\n\n  out  ": "spaced\nout",
		"nul\x00byte":             "nulbyte",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}
