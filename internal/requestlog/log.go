// Package requestlog records one line per check outcome in monthly files
// named requests_YYYY-MM.log inside the subject directory.
package requestlog

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aleister1102/feedwatch/internal/common"
	"github.com/rs/zerolog"
)

const (
	FilePrefix     = "requests_"
	FileExtension  = ".log"
	FieldSeparator = ";"
	monthLayout    = "2006-01"
)

var (
	ErrFieldIndexOutOfRange = errors.New("field index out of range")
	ErrInvalidValue         = errors.New("value contains a field or record separator")
)

// Record is one parsed log line.
type Record struct {
	Timestamp string
	Values    []string
}

// Archiver stores the records of a pruned month before its file is deleted.
type Archiver interface {
	Archive(month string, records []Record) (string, error)
}

// Config describes one subject's request log.
type Config struct {
	Dir string
	Now func() time.Time
	// MaxMonths keeps at most this many monthly files. Zero keeps all of them.
	MaxMonths int
	// Archiver receives pruned months. Nil deletes them outright.
	Archiver Archiver
}

// Log appends outcome records and reads back the most recent one.
type Log struct {
	dir         string
	now         func() time.Time
	maxMonths   int
	archiver    Archiver
	currentPath string
	logger      zerolog.Logger
}

// New opens the log for the current month.
func New(cfg Config, logger zerolog.Logger) (*Log, error) {
	if cfg.Dir == "" {
		return nil, common.NewValidationError("dir", cfg.Dir, "log directory is required")
	}
	if cfg.MaxMonths < 0 {
		return nil, common.NewValidationError("max_months", cfg.MaxMonths, "must not be negative")
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	l := &Log{
		dir:       cfg.Dir,
		now:       now,
		maxMonths: cfg.MaxMonths,
		archiver:  cfg.Archiver,
		logger: logger.With().
			Str("component", "RequestLog").
			Str("dir", cfg.Dir).
			Logger(),
	}
	l.rotate()
	return l, nil
}

// CurrentPath returns the file the next LogRequest call would target
// before rotation is considered.
func (l *Log) CurrentPath() string {
	return l.currentPath
}

// LogRequest appends "<timestamp>;<v1>;<v2>...\n" to the current month's file,
// switching files first when the month has changed.
func (l *Log) LogRequest(values ...string) error {
	for _, v := range values {
		if strings.ContainsAny(v, FieldSeparator+"\n\r") {
			return common.WrapErrorf(ErrInvalidValue, "value %q", v)
		}
	}

	l.rotate()

	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return common.WrapError(err, "failed to create log directory")
	}

	fields := append([]string{l.now().Format(time.RFC3339Nano)}, values...)
	line := strings.Join(fields, FieldSeparator) + "\n"

	f, err := os.OpenFile(l.currentPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return common.WrapError(err, "failed to open request log")
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return common.WrapError(err, "failed to append request log")
	}
	return nil
}

// GetLastRequestValue returns field index of the last line in the current
// file; index 0 is the timestamp. The boolean is false when the file is
// missing or empty. Reading never rotates.
func (l *Log) GetLastRequestValue(index int) (string, bool, error) {
	data, err := os.ReadFile(l.currentPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, common.WrapError(err, "failed to read request log")
	}

	line := lastLine(string(data))
	if line == "" {
		return "", false, nil
	}

	fields := strings.Split(line, FieldSeparator)
	if index < 0 || index >= len(fields) {
		return "", false, common.WrapErrorf(ErrFieldIndexOutOfRange, "index %d of %d fields", index, len(fields))
	}
	return fields[index], true, nil
}

// ParseFile reads every record in a log file.
func ParseFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []Record
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, FieldSeparator)
		records = append(records, Record{Timestamp: fields[0], Values: fields[1:]})
	}
	return records, nil
}

// MonthFiles lists the monthly log files in dir, newest first.
func MonthFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := monthOf(e.Name()); ok {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	return files, nil
}

func (l *Log) rotate() {
	path := filepath.Join(l.dir, FilePrefix+l.now().Format(monthLayout)+FileExtension)
	if path == l.currentPath {
		return
	}
	if l.currentPath != "" {
		l.logger.Debug().Str("from", l.currentPath).Str("to", path).Msg("Rotated request log")
	}
	l.currentPath = path

	if l.maxMonths > 0 {
		if err := l.prune(); err != nil {
			l.logger.Warn().Err(err).Msg("Failed to prune old request logs")
		}
	}
}

func (l *Log) prune() error {
	files, err := MonthFiles(l.dir)
	if err != nil {
		return err
	}

	var older []string
	for _, f := range files {
		if f != l.currentPath {
			older = append(older, f)
		}
	}
	// The current month always counts against the limit, even before it exists.
	keep := l.maxMonths - 1
	if len(older) <= keep {
		return nil
	}

	var collector common.ErrorCollector
	for _, path := range older[keep:] {
		collector.Add(l.retire(path))
	}
	return collector.Error()
}

func (l *Log) retire(path string) error {
	if l.archiver != nil {
		month, _ := monthOf(filepath.Base(path))
		records, err := ParseFile(path)
		if err != nil {
			return common.WrapError(err, "failed to read "+path)
		}
		archivePath, err := l.archiver.Archive(month, records)
		if err != nil {
			return common.WrapError(err, "failed to archive "+path)
		}
		l.logger.Info().Str("month", month).Str("archive", archivePath).Int("records", len(records)).Msg("Archived request log")
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return common.WrapError(err, "failed to remove "+path)
	}
	return nil
}

func monthOf(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, FilePrefix)
	if !ok {
		return "", false
	}
	month, ok := strings.CutSuffix(rest, FileExtension)
	if !ok {
		return "", false
	}
	if _, err := time.Parse(monthLayout, month); err != nil {
		return "", false
	}
	return month, true
}

func lastLine(s string) string {
	s = strings.TrimRight(s, "\n")
	if i := strings.LastIndex(s, "\n"); i >= 0 {
		return s[i+1:]
	}
	return s
}
