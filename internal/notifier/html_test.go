package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLHelpers(t *testing.T) {
	assert.Equal(t, "<h1>Feed &lt;news&gt;</h1>", HeadingOne("Feed <news>"))
	assert.Equal(t, "<h2>Missing</h2>", HeadingTwo("Missing"))
	assert.Equal(t, "<p>a &amp; b</p>", Paragraph("a & b"))
	assert.Equal(t, `<p><a href="https://x">x</a></p>`, RawParagraph(Link("https://x", "x")))
	assert.Equal(t, `<a href="https://example.com/?a=1&amp;b=2">site</a>`, Link("https://example.com/?a=1&b=2", "site"))
	assert.Equal(t, "<pre>+&lt;div&gt;</pre>", Pre("+<div>"))
}

func TestTable(t *testing.T) {
	got := Table([]string{"Title", "Link"}, [][]string{
		{"Release 1.0", Link("https://example.com/1", "open")},
	})
	assert.Equal(t,
		`<table><tr><th>Title</th><th>Link</th></tr><tr><td>Release 1.0</td><td><a href="https://example.com/1">open</a></td></tr></table>`,
		got)
}

func TestDocument(t *testing.T) {
	assert.Equal(t, "<h1>a</h1>\n<p>b</p>", Document(HeadingOne("a"), Paragraph("b")))
}
