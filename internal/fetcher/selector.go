package fetcher

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aleister1102/feedwatch/internal/common"
)

// ErrSelectorNotFound means the page loaded but nothing matched the selector.
var ErrSelectorNotFound = errors.New("selector matched no element")

// SelectOuterHTML returns the outer HTML of the first element in document
// matching selector. An empty selector returns the document unchanged.
func SelectOuterHTML(document, selector string) (string, error) {
	if selector == "" {
		return document, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return "", common.WrapError(err, "failed to parse HTML")
	}

	selection := doc.Find(selector).First()
	if selection.Length() == 0 {
		return "", common.WrapErrorf(ErrSelectorNotFound, "selector %q", selector)
	}

	html, err := goquery.OuterHtml(selection)
	if err != nil {
		return "", common.WrapError(err, "failed to render selected element")
	}
	return html, nil
}
