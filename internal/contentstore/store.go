// Package contentstore keeps the timestamped snapshot history of one subject.
//
// Snapshots live in a single directory and are named
// <slug>_<UTC timestamp>.<ext>. The timestamp layout is fixed width, so
// lexicographic order of file names is chronological order.
package contentstore

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aleister1102/feedwatch/internal/common"
	"github.com/aleister1102/feedwatch/internal/differ"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
)

// TimestampLayout is the snapshot timestamp encoding.
const TimestampLayout = "2006-01-02-15-04-05.000000"

// DefaultExtension is used when Config.Extension is empty.
const DefaultExtension = ".html"

// Config describes one subject's snapshot directory.
type Config struct {
	Dir       string
	Name      string // subject name, slugified for file names
	Extension string // including the leading dot
	Retention int    // snapshots kept by CleanUpContentDir, must be > 0
	Now       func() time.Time
}

// Snapshot is one stored capture.
type Snapshot struct {
	Path       string
	CapturedAt time.Time
}

// Store manages the snapshot history of a subject.
type Store struct {
	dir         string
	prefix      string
	ext         string
	retention   int
	now         func() time.Time
	fileManager *common.FileManager
	logger      zerolog.Logger
}

// New creates a Store. The directory is created lazily on first save.
func New(cfg Config, logger zerolog.Logger) (*Store, error) {
	if cfg.Dir == "" {
		return nil, common.NewValidationError("dir", cfg.Dir, "snapshot directory is required")
	}
	if cfg.Retention <= 0 {
		return nil, common.NewValidationError("retention", cfg.Retention, "retention must be positive")
	}

	prefix := slug.Make(cfg.Name)
	if prefix == "" {
		return nil, common.NewValidationError("name", cfg.Name, "name must contain at least one letter or digit")
	}

	ext := cfg.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Store{
		dir:         cfg.Dir,
		prefix:      prefix,
		ext:         ext,
		retention:   cfg.Retention,
		now:         now,
		fileManager: common.NewFileManager(logger),
		logger: logger.With().
			Str("component", "ContentStore").
			Str("dir", cfg.Dir).
			Logger(),
	}, nil
}

// Dir returns the snapshot directory.
func (s *Store) Dir() string {
	return s.dir
}

// SaveContent writes content as a new snapshot and returns its path.
// The write is atomic, so a crash never leaves a partial snapshot behind.
func (s *Store) SaveContent(content []byte) (string, error) {
	if err := s.fileManager.EnsureDirectory(s.dir, 0755); err != nil {
		return "", common.WrapError(err, "failed to create snapshot directory")
	}

	ts := s.now().UTC()
	path := s.pathFor(ts)
	for s.fileManager.FileExists(path) {
		ts = ts.Add(time.Microsecond)
		path = s.pathFor(ts)
	}

	opts := common.DefaultFileWriteOptions()
	if err := s.fileManager.WriteFile(path, content, opts); err != nil {
		return "", common.WrapError(err, "failed to save snapshot")
	}

	s.logger.Debug().Str("path", path).Int("bytes", len(content)).Str("sha256", common.ContentHash(content)).Msg("Saved snapshot")
	return path, nil
}

// ReadLatestContent returns the newest snapshot's bytes. The boolean is false
// when no snapshot exists yet; that is not an error.
func (s *Store) ReadLatestContent() ([]byte, bool, error) {
	snapshots, err := s.ListSnapshots()
	if err != nil {
		return nil, false, err
	}
	if len(snapshots) == 0 {
		return nil, false, nil
	}

	data, err := s.fileManager.ReadFile(snapshots[0].Path, common.DefaultFileReadOptions())
	if err != nil {
		return nil, false, common.WrapError(err, "failed to read latest snapshot")
	}
	return data, true, nil
}

// CleanUpContentDir deletes all but the newest Retention snapshots and
// returns how many were removed. Files that are not snapshots are ignored.
func (s *Store) CleanUpContentDir() (int, error) {
	snapshots, err := s.ListSnapshots()
	if err != nil {
		return 0, err
	}
	if len(snapshots) <= s.retention {
		return 0, nil
	}

	var collector common.ErrorCollector
	removed := 0
	for _, snap := range snapshots[s.retention:] {
		if err := os.Remove(snap.Path); err != nil && !os.IsNotExist(err) {
			collector.AddWithContext(err, "failed to remove "+snap.Path)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Debug().Int("removed", removed).Int("retention", s.retention).Msg("Pruned snapshots")
	}
	return removed, collector.Error()
}

// GetDiff renders a unified diff of the newest snapshot against content.
// The boolean is false when there is no snapshot to compare with. Bytes of
// the stored snapshot that are not valid UTF-8 are replaced.
func (s *Store) GetDiff(content []byte) (string, bool, error) {
	previous, ok, err := s.ReadLatestContent()
	if err != nil || !ok {
		return "", false, err
	}

	diff, err := differ.Unified(toText(previous), toText(content))
	if err != nil {
		return "", false, err
	}
	return diff, true, nil
}

// ListSnapshots returns snapshots ordered newest first. A missing directory
// yields an empty list.
func (s *Store) ListSnapshots() ([]Snapshot, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, common.WrapError(err, "failed to list snapshot directory")
	}

	var snapshots []Snapshot
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, ok := s.parseName(entry.Name())
		if !ok {
			continue
		}
		snapshots = append(snapshots, Snapshot{
			Path:       filepath.Join(s.dir, entry.Name()),
			CapturedAt: ts,
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return filepath.Base(snapshots[i].Path) > filepath.Base(snapshots[j].Path)
	})
	return snapshots, nil
}

func (s *Store) pathFor(ts time.Time) string {
	return filepath.Join(s.dir, s.prefix+"_"+ts.Format(TimestampLayout)+s.ext)
}

func (s *Store) parseName(name string) (time.Time, bool) {
	rest, ok := strings.CutPrefix(name, s.prefix+"_")
	if !ok {
		return time.Time{}, false
	}
	stamp, ok := strings.CutSuffix(rest, s.ext)
	if !ok || len(stamp) != len(TimestampLayout) {
		return time.Time{}, false
	}
	ts, err := time.Parse(TimestampLayout, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func toText(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}
