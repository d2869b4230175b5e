package detector

import (
	"context"
	"html"
	"strings"

	"github.com/aleister1102/feedwatch/internal/common"
	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/aleister1102/feedwatch/internal/fetcher"
	"github.com/aleister1102/feedwatch/internal/notifier"
	"github.com/antchfx/xmlquery"
	"github.com/rs/zerolog"
)

const missingField = "-"

// FeedItem is the part of an RSS item shown to the operator.
type FeedItem struct {
	Title     string
	Link      string
	Published string
}

// RSSDetector reports a feed as changed when its item list differs from
// the last saved document. A feed without any saved document is changed.
type RSSDetector struct {
	base
	fetcher fetcher.TextFetcher
	store   SnapshotStore
	log     OutcomeLog
}

// NewRSSDetector creates an RSS feed detector.
func NewRSSDetector(subject config.SubjectConfig, f fetcher.TextFetcher, store SnapshotStore, log OutcomeLog, n notifier.Notifier, logger zerolog.Logger) *RSSDetector {
	return &RSSDetector{
		base:    newBase(subject, n, logger, "RSSDetector"),
		fetcher: f,
		store:   store,
		log:     log,
	}
}

// Check fetches the feed and notifies when its items changed.
func (d *RSSDetector) Check(ctx context.Context) error {
	return d.run(ctx, d.check)
}

func (d *RSSDetector) check(ctx context.Context) error {
	document, err := d.fetcher.FetchText(ctx, d.subject.URL)
	if err != nil {
		return common.WrapError(err, "failed to fetch feed")
	}
	if strings.TrimSpace(document) == "" {
		return common.NewError("feed %s returned no content", d.subject.URL)
	}

	items, err := parseFeedItems(document)
	if err != nil {
		return err
	}

	changed, err := d.changed(items)
	if err != nil {
		return err
	}

	if !changed {
		d.logger.Info().Int("items", len(items)).Msg("Feed unchanged")
		return d.log.LogRequest(OutcomeUnchanged)
	}

	if err := d.log.LogRequest(OutcomeChanged); err != nil {
		return err
	}
	if _, err := d.store.SaveContent([]byte(document)); err != nil {
		return err
	}

	d.logger.Info().Int("items", len(items)).Msg("Feed updated")
	notifyErr := d.notifier.SendEmail(ctx, d.emailSubject(), d.emailBody(items))
	_, pruneErr := d.store.CleanUpContentDir()
	return common.CombineErrors([]error{notifyErr, pruneErr})
}

func (d *RSSDetector) changed(items []*xmlquery.Node) (bool, error) {
	previous, ok, err := d.store.ReadLatestContent()
	if err != nil {
		return false, err
	}
	if !ok {
		d.logger.Info().Msg("No saved feed, treating as updated")
		return true, nil
	}

	previousItems, err := parseFeedItems(string(previous))
	if err != nil {
		d.logger.Warn().Err(err).Msg("Saved feed is unreadable, treating as updated")
		return true, nil
	}

	return !common.ContentEquals(serializeItems(previousItems), serializeItems(items)), nil
}

func (d *RSSDetector) emailSubject() string {
	return "RSS feed " + d.subject.Name + " updated"
}

func (d *RSSDetector) emailBody(nodes []*xmlquery.Node) string {
	rows := make([][]string, 0, len(nodes))
	for _, item := range extractFeedItems(nodes) {
		link := missingField
		if item.Link != missingField {
			link = notifier.Link(item.Link, item.Link)
		}
		rows = append(rows, []string{html.EscapeString(item.Title), link, html.EscapeString(item.Published)})
	}

	return notifier.Document(
		notifier.HeadingOne(d.emailSubject()),
		notifier.RawParagraph("See "+notifier.Link(d.subject.URL, d.subject.URL)+"."),
		notifier.Paragraph("Saved copy: "+d.store.Dir()),
		notifier.Table([]string{"Title", "Link", "Published"}, rows),
	)
}

// parseFeedItems returns the <item> elements of the document's channel.
// A document without a channel or without items is an error.
func parseFeedItems(document string) ([]*xmlquery.Node, error) {
	doc, err := xmlquery.Parse(strings.NewReader(document))
	if err != nil {
		return nil, common.WrapError(err, "failed to parse feed")
	}

	channel := xmlquery.FindOne(doc, "//channel")
	if channel == nil {
		return nil, common.NewError("feed has no channel element")
	}

	items := xmlquery.Find(channel, "item")
	if len(items) == 0 {
		return nil, common.NewError("feed channel has no items")
	}
	return items, nil
}

func serializeItems(items []*xmlquery.Node) []byte {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(item.OutputXML(true))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func extractFeedItems(nodes []*xmlquery.Node) []FeedItem {
	items := make([]FeedItem, 0, len(nodes))
	for _, n := range nodes {
		items = append(items, FeedItem{
			Title:     childText(n, "title"),
			Link:      childText(n, "link"),
			Published: childText(n, "pubDate"),
		})
	}
	return items
}

func childText(n *xmlquery.Node, name string) string {
	child := xmlquery.FindOne(n, name)
	if child == nil {
		return missingField
	}
	text := strings.TrimSpace(child.InnerText())
	if text == "" {
		return missingField
	}
	return text
}
