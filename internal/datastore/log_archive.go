package datastore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aleister1102/feedwatch/internal/common"
	"github.com/aleister1102/feedwatch/internal/requestlog"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

// ArchiveDirName is the subdirectory of a subject directory holding archives.
const ArchiveDirName = "archive"

// LogArchiveRow is the parquet schema of an archived request log line.
type LogArchiveRow struct {
	Timestamp string   `parquet:"timestamp"`
	Values    []string `parquet:"values,list"`
}

// ParquetLogArchiver converts pruned monthly request logs into parquet files.
type ParquetLogArchiver struct {
	dir              string
	compressionCodec string
	logger           zerolog.Logger
}

// NewParquetLogArchiver writes archives under <subjectDir>/archive.
func NewParquetLogArchiver(subjectDir, compressionCodec string, logger zerolog.Logger) *ParquetLogArchiver {
	return &ParquetLogArchiver{
		dir:              filepath.Join(subjectDir, ArchiveDirName),
		compressionCodec: compressionCodec,
		logger:           logger.With().Str("component", "ParquetLogArchiver").Logger(),
	}
}

// Archive writes records to requests_<month>.parquet. An existing archive for
// the same month is merged, so archiving twice never loses rows.
func (a *ParquetLogArchiver) Archive(month string, records []requestlog.Record) (string, error) {
	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return "", common.WrapError(err, "failed to create archive directory")
	}

	path := filepath.Join(a.dir, requestlog.FilePrefix+month+".parquet")

	rows, err := ReadLogArchive(path)
	if err != nil && !os.IsNotExist(err) {
		return "", common.WrapError(err, "failed to read existing archive")
	}
	for _, r := range records {
		rows = append(rows, LogArchiveRow{Timestamp: r.Timestamp, Values: r.Values})
	}

	tmpPath := path + ".tmp"
	if err := a.writeRows(tmpPath, rows); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", common.WrapError(err, "failed to move archive into place")
	}

	a.logger.Debug().Str("path", path).Int("rows", len(rows)).Msg("Wrote request log archive")
	return path, nil
}

func (a *ParquetLogArchiver) writeRows(path string, rows []LogArchiveRow) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("opening archive file '%s': %w", path, err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[LogArchiveRow](file, a.compressionOption())
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("writing archive rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing parquet writer: %w", err)
	}
	return file.Sync()
}

func (a *ParquetLogArchiver) compressionOption() parquet.WriterOption {
	switch strings.ToLower(a.compressionCodec) {
	case "snappy":
		return parquet.Compression(&parquet.Snappy)
	case "gzip":
		return parquet.Compression(&parquet.Gzip)
	case "zstd":
		return parquet.Compression(&parquet.Zstd)
	case "none", "uncompressed", "":
		return parquet.Compression(&parquet.Uncompressed)
	default:
		a.logger.Warn().Str("codec", a.compressionCodec).Msg("Unsupported compression codec string, defaulting to Uncompressed")
		return parquet.Compression(&parquet.Uncompressed)
	}
}

// ReadLogArchive returns the rows of an archive in file order.
func ReadLogArchive(path string) ([]LogArchiveRow, error) {
	osFile, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer osFile.Close()

	stat, err := osFile.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive '%s': %w", path, err)
	}
	if stat.Size() == 0 {
		return nil, nil
	}

	pqFile, err := parquet.OpenFile(osFile, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file '%s': %w", path, err)
	}

	reader := parquet.NewGenericReader[LogArchiveRow](pqFile)
	defer reader.Close()

	rows := make([]LogArchiveRow, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("error reading rows from '%s': %w", path, err)
	}
	return rows[:n], nil
}
