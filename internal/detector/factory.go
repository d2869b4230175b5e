package detector

import (
	"path/filepath"
	"time"

	"github.com/aleister1102/feedwatch/internal/common"
	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/aleister1102/feedwatch/internal/contentstore"
	"github.com/aleister1102/feedwatch/internal/datastore"
	"github.com/aleister1102/feedwatch/internal/fetcher"
	"github.com/aleister1102/feedwatch/internal/notifier"
	"github.com/aleister1102/feedwatch/internal/requestlog"
	"github.com/aleister1102/feedwatch/internal/scanner"
	"github.com/rs/zerolog"
)

// ContentDirName is the snapshot subdirectory of page subjects.
const ContentDirName = "content"

// Deps holds the collaborators detectors are built with. Only the ones a
// configured subject kind needs must be set.
type Deps struct {
	TextFetcher     fetcher.TextFetcher
	StatusFetcher   fetcher.StatusFetcher
	RenderedFetcher fetcher.RenderedFetcher
	HostScanner     scanner.HostScanner
	Notifier        notifier.Notifier
	Storage         config.StorageConfig
	Now             func() time.Time
}

// NewDetectors builds one detector per subject, in configuration order.
func NewDetectors(subjects []config.SubjectConfig, deps Deps, logger zerolog.Logger) ([]Detector, error) {
	detectors := make([]Detector, 0, len(subjects))
	for _, subject := range subjects {
		d, err := NewDetector(subject, deps, logger)
		if err != nil {
			return nil, common.WrapErrorf(err, "subject %q", subject.Name)
		}
		detectors = append(detectors, d)
	}
	return detectors, nil
}

// NewDetector builds the detector matching subject.Kind.
func NewDetector(subject config.SubjectConfig, deps Deps, logger zerolog.Logger) (Detector, error) {
	if deps.Notifier == nil {
		return nil, common.NewValidationError("notifier", nil, "notifier is required")
	}

	dir := subject.ResolveDataDir(deps.Storage.BaseDir)

	switch subject.Kind {
	case config.SubjectKindRSS:
		if deps.TextFetcher == nil {
			return nil, common.NewValidationError("text_fetcher", nil, "rss subjects need a text fetcher")
		}
		store, err := newStore(subject, dir, ".xml", deps, logger)
		if err != nil {
			return nil, err
		}
		log, err := newRequestLog(dir, deps, logger)
		if err != nil {
			return nil, err
		}
		return NewRSSDetector(subject, deps.TextFetcher, store, log, deps.Notifier, logger), nil

	case config.SubjectKindPage, config.SubjectKindRenderedPage:
		source, err := newPageSource(subject, deps)
		if err != nil {
			return nil, err
		}
		store, err := newStore(subject, filepath.Join(dir, ContentDirName), ".html", deps, logger)
		if err != nil {
			return nil, err
		}
		log, err := newRequestLog(dir, deps, logger)
		if err != nil {
			return nil, err
		}
		return NewPageDetector(subject, source, store, log, deps.Notifier, logger), nil

	case config.SubjectKindURLAvailability:
		if deps.StatusFetcher == nil {
			return nil, common.NewValidationError("status_fetcher", nil, "url_availability subjects need a status fetcher")
		}
		log, err := newRequestLog(dir, deps, logger)
		if err != nil {
			return nil, err
		}
		return NewURLAvailabilityDetector(subject, deps.StatusFetcher, log, deps.Notifier, logger), nil

	case config.SubjectKindHostAvailability:
		if deps.HostScanner == nil {
			return nil, common.NewValidationError("host_scanner", nil, "host_availability subjects need a host scanner")
		}
		log, err := newRequestLog(dir, deps, logger)
		if err != nil {
			return nil, err
		}
		return NewHostDetector(subject, deps.HostScanner, log, deps.Notifier, logger), nil

	default:
		return nil, common.NewValidationError("type", subject.Kind, "unknown subject type")
	}
}

func newPageSource(subject config.SubjectConfig, deps Deps) (PageSource, error) {
	if subject.Kind == config.SubjectKindRenderedPage {
		if deps.RenderedFetcher == nil {
			return nil, common.NewValidationError("rendered_fetcher", nil, "rendered_page subjects need a browser")
		}
		return RenderedPageSource{
			Fetcher:         deps.RenderedFetcher,
			Target:          subject.URL,
			WaitSelector:    subject.CSSSelectorLoaded,
			ContentSelector: subject.CSSSelectorContent,
		}, nil
	}

	if deps.TextFetcher == nil {
		return nil, common.NewValidationError("text_fetcher", nil, "page subjects need a text fetcher")
	}
	return StaticPageSource{
		Fetcher:  deps.TextFetcher,
		Target:   subject.URL,
		Selector: subject.CSSSelector,
	}, nil
}

func newStore(subject config.SubjectConfig, dir, ext string, deps Deps, logger zerolog.Logger) (*contentstore.Store, error) {
	return contentstore.New(contentstore.Config{
		Dir:       dir,
		Name:      subject.Name,
		Extension: ext,
		Retention: subject.Retention(),
		Now:       deps.Now,
	}, logger)
}

func newRequestLog(dir string, deps Deps, logger zerolog.Logger) (*requestlog.Log, error) {
	cfg := requestlog.Config{
		Dir:       dir,
		Now:       deps.Now,
		MaxMonths: deps.Storage.MaxLogMonths,
	}
	if deps.Storage.MaxLogMonths > 0 && deps.Storage.ArchivePrunedLogs {
		cfg.Archiver = datastore.NewParquetLogArchiver(dir, deps.Storage.CompressionCodec, logger)
	}
	return requestlog.New(cfg, logger)
}
