package notifier

import (
	"html"
	"strings"
)

// HeadingOne renders text as <h1>.
func HeadingOne(text string) string {
	return "<h1>" + html.EscapeString(text) + "</h1>"
}

// HeadingTwo renders text as <h2>.
func HeadingTwo(text string) string {
	return "<h2>" + html.EscapeString(text) + "</h2>"
}

// Paragraph renders escaped text as <p>.
func Paragraph(text string) string {
	return "<p>" + html.EscapeString(text) + "</p>"
}

// RawParagraph wraps already rendered HTML in <p>.
func RawParagraph(innerHTML string) string {
	return "<p>" + innerHTML + "</p>"
}

// Link renders an anchor.
func Link(href, text string) string {
	return `<a href="` + html.EscapeString(href) + `">` + html.EscapeString(text) + "</a>"
}

// Pre renders escaped preformatted text.
func Pre(text string) string {
	return "<pre>" + html.EscapeString(text) + "</pre>"
}

// Table renders a table with an escaped header row. Cells are inserted as
// HTML so callers can embed links.
func Table(header []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("<table><tr>")
	for _, h := range header {
		b.WriteString("<th>" + html.EscapeString(h) + "</th>")
	}
	b.WriteString("</tr>")
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			b.WriteString("<td>" + cell + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return b.String()
}

// Document joins rendered fragments into a body.
func Document(parts ...string) string {
	return strings.Join(parts, "\n")
}
